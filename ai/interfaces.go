package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use. For a given model
// version the embedding is deterministic and its dimensionality is fixed.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores (query, document) pairs jointly with a cross-encoder model.
// Joint scoring is more accurate and more expensive than independent embedding
// similarity. Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank scores every document against the query in one batched call and
	// returns one relevance score per document, aligned with the input order.
	// Callers are expected to fall back to their pre-rerank ordering on error.
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)
}

// KeywordExtractor derives search keywords from free text.
// LLM-backed implementations emit an unreliable textual format; they are
// required to run the output through ParseKeywordList before returning.
type KeywordExtractor interface {
	// ExtractKeywords returns the keywords found in text, most salient first.
	// Returns an empty slice, not an error, when nothing is extracted.
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder, Reranker and
// KeywordExtractor instances, ensuring they share configuration. Instances
// are created once at startup and are read-only on the request path.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Reranker returns the cross-encoder scoring service.
	Reranker() Reranker

	// KeywordExtractor returns the keyword extraction service.
	KeywordExtractor() KeywordExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
