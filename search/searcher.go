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


package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

const (
	defaultChannelSize    = 10
	defaultTopK           = 5
	defaultRerankTopK     = 3
	defaultLexicalWeight  = 0.3
	defaultVectorWeight   = 0.7
	defaultChannelTimeout = 10 * time.Second

	retrievalPoolSize = 8
)

// Searcher answers natural-language queries by hybrid lexical+vector
// retrieval, weighted min-max fusion and cross-encoder reranking.
//
// A Searcher is constructed once and is safe for concurrent use: the
// backend, model handles and configuration are read-only on the request
// path, and all per-request state is function-local.
type Searcher struct {
	backend   backend.SearchBackend
	embedder  ai.Embedder
	extractor ai.KeywordExtractor
	rerank    *RerankStage
	fuser     *Fuser
	pool      *ants.Pool

	channelSize    int
	topK           int
	rerankTopK     int
	lexicalWeight  float64
	vectorWeight   float64
	channelTimeout time.Duration
	rerankEnabled  bool

	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithChannelSize sets how many candidates each retrieval channel
// requests. Must be between core.MinChannelSize and core.MaxChannelSize.
// Default is 10.
func WithChannelSize(size int) Option {
	return func(s *Searcher) error {
		if err := core.ValidateChannelSize(size); err != nil {
			return err
		}
		s.channelSize = size
		return nil
	}
}

// WithTopK sets how many records survive fusion. Default is 5.
func WithTopK(topK int) Option {
	return func(s *Searcher) error {
		if err := core.ValidateTopK(topK); err != nil {
			return err
		}
		s.topK = topK
		return nil
	}
}

// WithRerankTopK sets how many records the rerank stage returns.
// Default is 3.
func WithRerankTopK(topK int) Option {
	return func(s *Searcher) error {
		if err := core.ValidateTopK(topK); err != nil {
			return err
		}
		s.rerankTopK = topK
		return nil
	}
}

// WithWeights sets the fusion weights for the lexical and vector channels.
// Defaults are 0.3 and 0.7.
func WithWeights(lexical, vector float64) Option {
	return func(s *Searcher) error {
		if err := core.ValidateWeights(lexical, vector); err != nil {
			return err
		}
		s.lexicalWeight = lexical
		s.vectorWeight = vector
		return nil
	}
}

// WithChannelTimeout bounds each retrieval channel call. A channel that
// exceeds the deadline counts as failed and is absorbed like any other
// channel failure. Default is 10s.
func WithChannelTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return core.ErrMalformedConfig
		}
		s.channelTimeout = timeout
		return nil
	}
}

// WithoutRerank disables the cross-encoder stage; results finish in
// fused order.
func WithoutRerank() Option {
	return func(s *Searcher) error {
		s.rerankEnabled = false
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(searchBackend backend.SearchBackend, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if searchBackend == nil {
		return nil, ErrBackendRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		backend:        searchBackend,
		embedder:       provider.Embedder(),
		extractor:      provider.KeywordExtractor(),
		channelSize:    defaultChannelSize,
		topK:           defaultTopK,
		rerankTopK:     defaultRerankTopK,
		lexicalWeight:  defaultLexicalWeight,
		vectorWeight:   defaultVectorWeight,
		channelTimeout: defaultChannelTimeout,
		rerankEnabled:  true,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	fuser, err := NewFuser(s.lexicalWeight, s.vectorWeight)
	if err != nil {
		return nil, err
	}
	s.fuser = fuser

	rerank, err := NewRerankStage(provider.Reranker(), WithRerankLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.rerank = rerank

	pool, err := ants.NewPool(retrievalPoolSize)
	if err != nil {
		return nil, err
	}
	s.pool = pool

	return s, nil
}

// Search answers the query against the index with client-side fusion:
// parallel lexical and vector retrieval, weighted min-max fusion, then
// cross-encoder reranking.
//
// The result is always a well-formed ranked list. A blank query or a
// missing index yields an empty list; a failed retrieval channel is
// absorbed and the other channel carries the result alone.
func (s *Searcher) Search(ctx context.Context, index, query string) ([]core.FusedRecord, error) {
	return s.SearchWithMonitor(ctx, index, query, nil)
}

// SearchWithMonitor is Search with stage callbacks for observability.
func (s *Searcher) SearchWithMonitor(ctx context.Context, index, query string, monitor SearchMonitor) ([]core.FusedRecord, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	query = strings.TrimSpace(query)
	if query == "" {
		results := []core.FusedRecord{}
		monitor.Finish(results)
		return results, nil
	}

	keywords := s.extractKeywords(ctx, query)
	monitor.AfterKeywordExtraction(keywords)

	lexical, vector := s.retrieve(ctx, index, query, keywords, monitor)

	fused := s.fuser.Combine(lexical, vector, s.topK)
	monitor.AfterFusion(fused)

	results := fused
	if s.rerankEnabled && len(fused) > 0 {
		results = s.rerank.Apply(ctx, query, fused, s.rerankTopK)
	}

	monitor.Finish(results)
	return results, nil
}

// SearchWithPipeline answers the query with backend-delegated fusion: one
// composite hybrid query normalized and combined server-side by the named
// search pipeline. The rerank stage applies identically on top.
func (s *Searcher) SearchWithPipeline(ctx context.Context, index, pipeline, query string) ([]core.FusedRecord, error) {
	return s.SearchWithPipelineMonitor(ctx, index, pipeline, query, nil)
}

// SearchWithPipelineMonitor is SearchWithPipeline with stage callbacks.
func (s *Searcher) SearchWithPipelineMonitor(ctx context.Context, index, pipeline, query string, monitor SearchMonitor) ([]core.FusedRecord, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	query = strings.TrimSpace(query)
	if query == "" {
		results := []core.FusedRecord{}
		monitor.Finish(results)
		return results, nil
	}

	keywords := s.extractKeywords(ctx, query)
	monitor.AfterKeywordExtraction(keywords)

	// The composite query takes one keyword text, not a clause per keyword.
	keywordText := query
	if len(keywords) > 0 {
		keywordText = strings.Join(keywords, " ")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.channelTimeout)
	defer cancel()

	vector, err := s.embedder.EmbedText(callCtx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	hits, err := s.backend.HybridSearch(callCtx, &backend.HybridQuery{
		Index:    index,
		Text:     keywordText,
		Vector:   vector,
		Pipeline: pipeline,
		Size:     s.topK,
	})
	if err != nil {
		if errors.Is(err, core.ErrIndexNotFound) {
			s.logger.Debug("index not found", "index", index)
			results := []core.FusedRecord{}
			monitor.Finish(results)
			return results, nil
		}
		s.logger.Error("hybrid search failed", "index", index, "pipeline", pipeline, "err", err)
		return nil, err
	}

	// Backend scores are already normalized and combined.
	fused := make([]core.FusedRecord, len(hits))
	for i, hit := range hits {
		fused[i] = core.FusedRecord{
			Identity: hit.Identity,
			Combined: hit.Score,
			Doc:      hit.Doc,
		}
	}
	monitor.AfterFusion(fused)

	results := fused
	if s.rerankEnabled && len(fused) > 0 {
		results = s.rerank.Apply(ctx, query, fused, s.rerankTopK)
	}

	monitor.Finish(results)
	return results, nil
}

// extractKeywords asks the LLM for query keywords. Extraction is an
// enhancement, not a dependency: on failure the raw query text serves as
// the lexical query and the search proceeds.
func (s *Searcher) extractKeywords(ctx context.Context, query string) []string {
	keywords, err := s.extractor.ExtractKeywords(ctx, query)
	if err != nil {
		s.logger.Warn("keyword extraction failed, using raw query", "err", err)
		return nil
	}
	return keywords
}

// retrieve runs the lexical and vector channels in parallel and joins.
// Channel failures are absorbed here: a missing index or a failed channel
// contributes an empty candidate list and the request carries on.
func (s *Searcher) retrieve(ctx context.Context, index, query string, keywords []string, monitor SearchMonitor) (lexical, vector []core.Candidate) {
	var wg sync.WaitGroup
	var lexicalErr, vectorErr error

	wg.Add(2)
	s.submit(func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.channelTimeout)
		defer cancel()

		lexical, lexicalErr = s.backend.LexicalSearch(callCtx, &backend.LexicalQuery{
			Index:    index,
			Keywords: keywords,
			Text:     query,
			Size:     s.channelSize,
		})
	})
	s.submit(func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.channelTimeout)
		defer cancel()

		embedding, err := s.embedder.EmbedText(callCtx, query)
		if err != nil {
			vectorErr = err
			return
		}
		vector, vectorErr = s.backend.VectorSearch(callCtx, &backend.VectorQuery{
			Index:  index,
			Vector: embedding,
			K:      s.channelSize,
			Size:   s.channelSize,
		})
	})
	wg.Wait()

	lexical = s.absorbChannelFailure("lexical", index, lexical, lexicalErr, monitor)
	monitor.AfterLexicalSearch(lexical)

	vector = s.absorbChannelFailure("vector", index, vector, vectorErr, monitor)
	monitor.AfterVectorSearch(vector)

	return lexical, vector
}

// absorbChannelFailure turns a channel error into an empty candidate list.
// A missing index is routine and logged at debug; anything else means the
// channel is down and is logged at warn.
func (s *Searcher) absorbChannelFailure(channel, index string, candidates []core.Candidate, err error, monitor SearchMonitor) []core.Candidate {
	if err == nil {
		return candidates
	}
	if errors.Is(err, core.ErrIndexNotFound) {
		s.logger.Debug("index not found", "channel", channel, "index", index)
		return nil
	}

	s.logger.Warn("retrieval channel failed", "channel", channel, "index", index, "err", err)
	monitor.ChannelFailed(channel, err)
	return nil
}

// submit hands the task to the worker pool, falling back to inline
// execution if the pool rejects it.
func (s *Searcher) submit(task func()) {
	if err := s.pool.Submit(task); err != nil {
		task()
	}
}

// Close releases the retrieval worker pool.
// The searcher should not be used after calling Close.
func (s *Searcher) Close() error {
	if s.pool != nil {
		s.pool.Release()
	}
	return nil
}
