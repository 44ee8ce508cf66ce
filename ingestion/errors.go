package ingestion

import "errors"

var (
	// ErrBackendRequired is returned when a search backend is not provided.
	ErrBackendRequired = errors.New("search backend required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
