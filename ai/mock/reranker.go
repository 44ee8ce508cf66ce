package mock

import (
	"context"
	"strings"
)

// MockReranker is a test double for ai.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, uses default token-overlap scoring.
	RerankFunc func(ctx context.Context, query string, documents []string) ([]float64, error)

	callCount int
}

// NewMockReranker creates a mock reranker with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockReranker().
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank scores documents deterministically.
// Default behavior: the score is the fraction of query tokens that appear
// in the document, so documents sharing more words with the query win.
func (m *MockReranker) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, documents)
	}

	queryTokens := strings.Fields(strings.ToLower(query))
	scores := make([]float64, len(documents))
	for i, doc := range documents {
		scores[i] = tokenOverlap(queryTokens, strings.ToLower(doc))
	}
	return scores, nil
}

// CallCount returns the number of times Rerank was called.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}

func tokenOverlap(queryTokens []string, doc string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	matched := 0
	for _, token := range queryTokens {
		if strings.Contains(doc, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
