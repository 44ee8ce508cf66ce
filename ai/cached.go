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


package ai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/rankfuse/core"
	"github.com/poiesic/rankfuse/storage"
)

// ErrEmbedderRequired is returned when an embedder is not provided.
var ErrEmbedderRequired = errors.New("embedder required")

// ErrCacheRequired is returned when a vector cache is not provided.
var ErrCacheRequired = errors.New("vector cache required")

// CachedEmbedder wraps an Embedder with a persistent vector cache.
// Cache keys include the model identifier, so switching models never
// serves stale vectors. Cache failures degrade to the inner embedder;
// they are logged, never returned.
type CachedEmbedder struct {
	inner  Embedder
	cache  storage.VectorCache
	model  string
	logger *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder creates a caching wrapper around inner. The model
// identifier distinguishes cache entries between embedding models.
func NewCachedEmbedder(inner Embedder, cache storage.VectorCache, model string) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		model:  model,
		logger: slog.Default().With("component", "cached-embedder"),
	}, nil
}

// EmbedText returns the cached vector for text if present, otherwise
// delegates to the inner embedder and caches the result.
func (e *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)

	if vector, ok, err := e.cache.Get(ctx, key); err != nil {
		e.logger.Warn("cache read failed, embedding directly", "err", err)
	} else if ok {
		return vector, nil
	}

	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Put(ctx, key, vector); err != nil {
		e.logger.Warn("cache write failed", "err", err)
	}
	return vector, nil
}

// EmbedTexts embeds texts in a batch, serving cached entries and sending
// only the misses to the inner embedder in a single call.
func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	missed := make([]int, 0, len(texts))

	for i, text := range texts {
		vector, ok, err := e.cache.Get(ctx, e.cacheKey(text))
		if err != nil {
			e.logger.Warn("cache read failed, embedding directly", "err", err)
		}
		if err == nil && ok {
			vectors[i] = vector
			continue
		}
		missed = append(missed, i)
	}

	if len(missed) == 0 {
		return vectors, nil
	}

	missedTexts := make([]string, len(missed))
	for i, idx := range missed {
		missedTexts[i] = texts[idx]
	}

	embedded, err := e.inner.EmbedTexts(ctx, missedTexts)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missed) {
		return nil, errors.New("embedder returned wrong batch size")
	}

	for i, idx := range missed {
		vectors[idx] = embedded[i]
		if err := e.cache.Put(ctx, e.cacheKey(texts[idx]), embedded[i]); err != nil {
			e.logger.Warn("cache write failed", "err", err)
		}
	}
	return vectors, nil
}

func (e *CachedEmbedder) cacheKey(text string) core.ID {
	return core.IDFromContent(e.model + "\x00" + text)
}
