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


package rankfuse

import (
	"log/slog"

	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/ai/openai"
	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/backend/opensearch"
	"github.com/poiesic/rankfuse/ingestion"
	"github.com/poiesic/rankfuse/search"
	"github.com/poiesic/rankfuse/storage"
	"github.com/poiesic/rankfuse/storage/badger"
)

// Engine is the service context: the backend client, AI provider and
// query-embedding cache, constructed once at startup and immutable
// afterwards. Searchers and ingestion pipelines hang off it.
type Engine struct {
	backend  *opensearch.Client
	cache    storage.VectorCache
	provider ai.Provider
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	backendConfig *opensearch.Config
	cachePath     string
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithBackendConfig sets the OpenSearch connection configuration.
// Default is opensearch.DefaultConfig().
func WithBackendConfig(config *opensearch.Config) EngineOption {
	return func(o *engineOptions) {
		o.backendConfig = config
	}
}

// WithCachePath persists the query-embedding cache at the given
// directory. Default is an in-memory cache that lives as long as the
// engine.
func WithCachePath(path string) EngineOption {
	return func(o *engineOptions) {
		o.cachePath = path
	}
}

// NewEngine constructs the service context.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		backendConfig: opensearch.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Connect backend
	client, err := opensearch.NewClient(options.backendConfig)
	if err != nil {
		return nil, err
	}

	// Open embedding cache
	var cache storage.VectorCache
	if options.cachePath != "" {
		cache, err = badger.OpenCache(options.cachePath, false)
	} else {
		cache, err = badger.NewMemoryCache()
	}
	if err != nil {
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		cache.Close()
		return nil, err
	}

	// Route embeddings through the cache
	cachedEmbedder, err := ai.NewCachedEmbedder(provider.Embedder(), cache, options.aiConfig.EmbeddingModel)
	if err != nil {
		provider.Close()
		cache.Close()
		return nil, err
	}

	return &Engine{
		backend:  client,
		cache:    cache,
		provider: &cachingProvider{Provider: provider, embedder: cachedEmbedder},
		logger:   slog.Default(),
	}, nil
}

// Close tears down the engine in reverse construction order.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.cache.Close(); err != nil {
		e.logger.Error("error closing embedding cache", "err", err)
		return err
	}
	return nil
}

// Backend returns the full backend surface for administration.
func (e *Engine) Backend() backend.Backend {
	return e.backend
}

// Provider returns the AI provider, with embeddings served through the
// engine's cache.
func (e *Engine) Provider() ai.Provider {
	return e.provider
}

// NewSearcher creates a searcher bound to the engine's backend and models.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(e.backend, e.provider, opts...)
}

// NewIngestionPipeline creates an ingestion pipeline bound to the
// engine's backend and models.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.backend, e.provider, opts...)
}

// cachingProvider swaps the provider's embedder for the cached one.
type cachingProvider struct {
	ai.Provider
	embedder ai.Embedder
}

func (p *cachingProvider) Embedder() ai.Embedder {
	return p.embedder
}
