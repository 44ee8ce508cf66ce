package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/rankfuse/ai"
	"github.com/poiesic/rankfuse/core"
)

const rerankRequestTimeout = 60 * time.Second

// Reranker implements ai.Reranker against a Cohere-compatible /rerank
// endpoint, as exposed by vLLM, Infinity and similar local servers.
// langchaingo has no rerank client, so this speaks HTTP directly.
type Reranker struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// newReranker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReranker(config *ai.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Reranker{
		endpoint: strings.TrimSuffix(config.RerankHost, "/") + "/rerank",
		model:    config.RerankModel,
		client:   &http.Client{Timeout: rerankRequestTimeout},
		logger:   slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new reranker using the provided configuration.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewReranker(config *ai.Config) (ai.Reranker, error) {
	return newReranker(config)
}

// Rerank scores every document against the query in a single batched call.
// The returned slice is aligned with the input: scores[i] belongs to
// documents[i]. Any transport or protocol failure is reported as
// core.ErrRerankUnavailable so callers can fall back to fused order.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", core.ErrRerankUnavailable, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", core.ErrRerankUnavailable, err)
	}
	request.Header.Set("Content-Type", "application/json")

	r.logger.Debug("reranking documents", "count", len(documents))

	response, err := r.client.Do(request)
	if err != nil {
		r.logger.Error("rerank request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrRerankUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		r.logger.Error("rerank service returned error", "status", response.StatusCode, "body", string(payload))
		return nil, fmt.Errorf("%w: status %d", core.ErrRerankUnavailable, response.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		r.logger.Error("failed to decode rerank response", "err", err)
		return nil, fmt.Errorf("%w: decode response: %w", core.ErrRerankUnavailable, err)
	}

	scores := make([]float64, len(documents))
	seen := 0
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(documents) {
			r.logger.Warn("rerank result index out of range", "index", result.Index)
			continue
		}
		scores[result.Index] = result.RelevanceScore
		seen++
	}

	if seen == 0 {
		return nil, fmt.Errorf("%w: response contained no usable scores", core.ErrRerankUnavailable)
	}

	return scores, nil
}
