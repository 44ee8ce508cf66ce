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
	"log/slog"
	"sort"

	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/core"
)

// RerankStage applies cross-encoder scoring on top of a fused ranking.
// The cross-encoder order replaces the fused order entirely; the fused
// ranking only decides which records get scored, not how they finish.
type RerankStage struct {
	reranker ai.Reranker
	logger   *slog.Logger
}

// NewRerankStage creates a rerank stage.
func NewRerankStage(reranker ai.Reranker, opts ...RerankOption) (*RerankStage, error) {
	if reranker == nil {
		return nil, ErrRerankerRequired
	}

	stage := &RerankStage{
		reranker: reranker,
		logger:   slog.Default().With("component", "rerank-stage"),
	}
	for _, opt := range opts {
		if err := opt(stage); err != nil {
			return nil, err
		}
	}
	return stage, nil
}

// RerankOption configures a RerankStage.
type RerankOption func(*RerankStage) error

// WithRerankLogger sets a custom logger.
// Default is slog.Default().
func WithRerankLogger(logger *slog.Logger) RerankOption {
	return func(s *RerankStage) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// Apply scores every fused record against the query in one batched call
// and returns up to topK records ordered by cross-encoder score.
//
// Degraded mode: when the reranker fails, the first topK records are
// returned in fused order, unmodified, and no error is raised. A ranked
// answer from fusion alone beats no answer.
func (s *RerankStage) Apply(ctx context.Context, query string, records []core.FusedRecord, topK int) []core.FusedRecord {
	if len(records) == 0 {
		return records
	}

	documents := make([]string, len(records))
	for i, record := range records {
		documents[i] = record.Doc.RerankText()
	}

	scores, err := s.reranker.Rerank(ctx, query, documents)
	if err != nil || len(scores) != len(records) {
		s.logger.Warn("rerank unavailable, falling back to fused order",
			"records", len(records), "err", err)
		return truncateRecords(records, topK)
	}

	reranked := make([]core.FusedRecord, len(records))
	copy(reranked, records)
	for i := range reranked {
		reranked[i].RerankScore = scores[i]
		reranked[i].Reranked = true
	}

	sort.SliceStable(reranked, func(a, b int) bool {
		return reranked[a].RerankScore > reranked[b].RerankScore
	})
	return truncateRecords(reranked, topK)
}

func truncateRecords(records []core.FusedRecord, topK int) []core.FusedRecord {
	if topK > 0 && len(records) > topK {
		return records[:topK]
	}
	return records
}
