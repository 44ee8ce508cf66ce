// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package backend

import (
	"context"

	"github.com/poiesic/rankfuse/core"
)

// LexicalQuery describes a BM25 keyword search.
// When Keywords is non-empty every keyword becomes its own boosted
// multi_match clause joined under a should with minimum_should_match 1.
// Otherwise Text is searched as a single multi_match query.
//
// Fields lists boosted field expressions ("content^2"); Fuzziness is the
// edit-distance tolerance. Both fall back to the implementation's corpus
// defaults when empty.
type LexicalQuery struct {
	Index     string
	Keywords  []string
	Text      string
	Fields    []string
	Fuzziness string
	Size      int
}

// VectorQuery describes a k-NN similarity search over document embeddings.
type VectorQuery struct {
	Index  string
	Vector []float32
	K      int
	Size   int
}

// HybridQuery describes a backend-fused search: one composite query whose
// lexical and vector sub-queries are normalized and combined server-side by
// the named search pipeline.
type HybridQuery struct {
	Index    string
	Text     string
	Vector   []float32
	Pipeline string
	Size     int
}

// SearchBackend is the narrow retrieval surface the searcher depends on.
// Implementations report missing indices as core.ErrIndexNotFound and
// unreachable services as core.ErrBackendUnavailable so callers can tell
// a benign empty result from an outage.
type SearchBackend interface {
	// LexicalSearch runs a BM25 query and returns scored candidates.
	// Scores are raw BM25 scores, comparable only within this channel.
	LexicalSearch(ctx context.Context, query *LexicalQuery) ([]core.Candidate, error)

	// VectorSearch runs a k-NN query and returns scored candidates.
	// Scores are similarity scores, comparable only within this channel.
	VectorSearch(ctx context.Context, query *VectorQuery) ([]core.Candidate, error)

	// HybridSearch runs a composite query through a search pipeline.
	// Scores are already normalized and combined by the backend.
	HybridSearch(ctx context.Context, query *HybridQuery) ([]core.Candidate, error)
}

// IndexAdmin manages the document index lifecycle.
type IndexAdmin interface {
	// EnsureIndex creates the index with the hybrid-search mapping if it
	// does not already exist. dimension is the embedding vector width.
	EnsureIndex(ctx context.Context, index string, dimension int) error

	// IndexExists reports whether the index exists.
	IndexExists(ctx context.Context, index string) (bool, error)

	// DeleteIndex removes the index and all of its documents.
	DeleteIndex(ctx context.Context, index string) error

	// BulkIndex writes documents in one bulk request and refreshes the
	// index so they are immediately searchable.
	BulkIndex(ctx context.Context, index string, docs []*core.Document) error
}

// PipelineAdmin manages named search pipelines for backend-delegated fusion.
type PipelineAdmin interface {
	// EnsurePipeline creates or updates a min-max normalization pipeline
	// combining channel scores with the given weights.
	EnsurePipeline(ctx context.Context, id string, lexicalWeight, vectorWeight float64) error

	// PipelineExists reports whether the pipeline exists.
	PipelineExists(ctx context.Context, id string) (bool, error)

	// DeletePipeline removes the pipeline.
	DeletePipeline(ctx context.Context, id string) error
}

// Backend is the full backend surface: retrieval plus administration.
type Backend interface {
	SearchBackend
	IndexAdmin
	PipelineAdmin
}
