// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Reranker,
// ai.KeywordExtractor and ai.Provider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockReranker := mock.NewMockReranker()
//	mockReranker.RerankFunc = func(ctx context.Context, query string, docs []string) ([]float64, error) {
//	    return []float64{0.9, 0.1}, nil
//	}
//
//	// Check call counts
//	count := mockReranker.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockReranker: Scores documents by query token overlap
//   - MockKeywordExtractor: Extracts simple keywords from words in text
//   - MockProvider: Aggregates the mock services
package mock
