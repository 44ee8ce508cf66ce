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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

const (
	defaultPoolSize  = 4
	defaultBatchSize = 32
)

// Pipeline embeds document contents and bulk indexes them.
// Embedding runs batched across a worker pool; indexing is one bulk
// request per Ingest call so documents land atomically and searchable.
type Pipeline struct {
	admin         backend.IndexAdmin
	embedder      ai.Embedder
	embeddingPool *ants.Pool
	batchSize     int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithPoolSize sets the embedding worker pool size.
// Default is 4.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be positive, got %d", core.ErrMalformedConfig, size)
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithBatchSize sets how many documents each embedding call carries.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size must be positive, got %d", core.ErrMalformedConfig, size)
		}
		p.batchSize = size
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(admin backend.IndexAdmin, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if admin == nil {
		return nil, ErrBackendRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		admin:         admin,
		embedder:      provider.Embedder(),
		embeddingPool: pool,
		batchSize:     defaultBatchSize,
		logger:        slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	return p, nil
}

// Ingest embeds every document's content and bulk indexes the batch.
// Documents that already carry a vector are not re-embedded. The call is
// synchronous: when it returns without error, the documents are
// searchable.
func (p *Pipeline) Ingest(ctx context.Context, index string, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
	}

	if err := p.embedAll(ctx, docs); err != nil {
		return err
	}
	return p.admin.BulkIndex(ctx, index, docs)
}

// embedAll fills in missing vectors, one batch per worker task.
func (p *Pipeline) embedAll(ctx context.Context, docs []*core.Document) error {
	var pending []*core.Document
	for _, doc := range docs {
		if len(doc.Vector) == 0 {
			pending = append(pending, doc)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 0)
	var mu sync.Mutex

	for start := 0; start < len(pending); start += p.batchSize {
		end := min(start+p.batchSize, len(pending))
		batch := pending[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, doc := range batch {
				texts[i] = doc.Content
			}

			vectors, err := p.embedder.EmbedTexts(ctx, texts)
			if err == nil && len(vectors) != len(batch) {
				err = fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch))
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}

			for i, doc := range batch {
				doc.Vector = vectors[i]
			}
		}
		if err := p.embeddingPool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		p.logger.Error("embedding failed during ingestion", "batches_failed", len(errs), "err", errs[0])
		return errs[0]
	}
	return nil
}

// VectorDimension probes the embedder for its output width by embedding a
// short text. Used to size the index mapping before the first ingest.
func (p *Pipeline) VectorDimension(ctx context.Context) (int, error) {
	vector, err := p.embedder.EmbedText(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	if len(vector) == 0 {
		return 0, fmt.Errorf("embedder returned an empty vector")
	}
	return len(vector), nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
