package mock

import (
	"context"
	"sync"

	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

// MockBackend is an in-memory test double for backend.Backend.
// Each channel can be loaded with canned candidates or a canned error;
// call counts let tests assert which channels were exercised.
type MockBackend struct {
	mu sync.Mutex

	// LexicalFunc is called by LexicalSearch if set.
	LexicalFunc func(ctx context.Context, query *backend.LexicalQuery) ([]core.Candidate, error)

	// VectorFunc is called by VectorSearch if set.
	VectorFunc func(ctx context.Context, query *backend.VectorQuery) ([]core.Candidate, error)

	// HybridFunc is called by HybridSearch if set.
	HybridFunc func(ctx context.Context, query *backend.HybridQuery) ([]core.Candidate, error)

	// Canned results returned when the corresponding func is nil.
	LexicalResults []core.Candidate
	VectorResults  []core.Candidate
	HybridResults  []core.Candidate

	// Canned errors returned when the corresponding func is nil.
	LexicalErr error
	VectorErr  error
	HybridErr  error

	lexicalCalls int
	vectorCalls  int
	hybridCalls  int

	indices   map[string][]*core.Document
	pipelines map[string]bool
}

// Statically ensure MockBackend satisfies the full backend surface.
var _ backend.Backend = (*MockBackend)(nil)

// NewMockBackend creates an empty mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		indices:   make(map[string][]*core.Document),
		pipelines: make(map[string]bool),
	}
}

// LexicalSearch returns the canned lexical channel.
func (m *MockBackend) LexicalSearch(ctx context.Context, query *backend.LexicalQuery) ([]core.Candidate, error) {
	m.mu.Lock()
	m.lexicalCalls++
	m.mu.Unlock()

	if m.LexicalFunc != nil {
		return m.LexicalFunc(ctx, query)
	}
	if m.LexicalErr != nil {
		return nil, m.LexicalErr
	}
	return truncate(m.LexicalResults, query.Size), nil
}

// VectorSearch returns the canned vector channel.
func (m *MockBackend) VectorSearch(ctx context.Context, query *backend.VectorQuery) ([]core.Candidate, error) {
	m.mu.Lock()
	m.vectorCalls++
	m.mu.Unlock()

	if m.VectorFunc != nil {
		return m.VectorFunc(ctx, query)
	}
	if m.VectorErr != nil {
		return nil, m.VectorErr
	}
	return truncate(m.VectorResults, query.Size), nil
}

// HybridSearch returns the canned hybrid channel.
func (m *MockBackend) HybridSearch(ctx context.Context, query *backend.HybridQuery) ([]core.Candidate, error) {
	m.mu.Lock()
	m.hybridCalls++
	m.mu.Unlock()

	if m.HybridFunc != nil {
		return m.HybridFunc(ctx, query)
	}
	if m.HybridErr != nil {
		return nil, m.HybridErr
	}
	return truncate(m.HybridResults, query.Size), nil
}

// EnsureIndex records the index.
func (m *MockBackend) EnsureIndex(ctx context.Context, index string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.indices[index]; !ok {
		m.indices[index] = nil
	}
	return nil
}

// IndexExists reports whether the index was recorded.
func (m *MockBackend) IndexExists(ctx context.Context, index string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.indices[index]
	return ok, nil
}

// DeleteIndex forgets the index. Deleting a missing index returns
// core.ErrIndexNotFound like the real backend.
func (m *MockBackend) DeleteIndex(ctx context.Context, index string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.indices[index]; !ok {
		return core.ErrIndexNotFound
	}
	delete(m.indices, index)
	return nil
}

// BulkIndex appends documents to the recorded index.
func (m *MockBackend) BulkIndex(ctx context.Context, index string, docs []*core.Document) error {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[index] = append(m.indices[index], docs...)
	return nil
}

// EnsurePipeline records the pipeline.
func (m *MockBackend) EnsurePipeline(ctx context.Context, id string, lexicalWeight, vectorWeight float64) error {
	if err := core.ValidateWeights(lexicalWeight, vectorWeight); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pipelines[id] = true
	return nil
}

// PipelineExists reports whether the pipeline was recorded.
func (m *MockBackend) PipelineExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipelines[id], nil
}

// DeletePipeline forgets the pipeline.
func (m *MockBackend) DeletePipeline(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pipelines, id)
	return nil
}

// Indexed returns the documents recorded for the index.
func (m *MockBackend) Indexed(index string) []*core.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indices[index]
}

// LexicalCalls returns how many times LexicalSearch was called.
func (m *MockBackend) LexicalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lexicalCalls
}

// VectorCalls returns how many times VectorSearch was called.
func (m *MockBackend) VectorCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vectorCalls
}

// HybridCalls returns how many times HybridSearch was called.
func (m *MockBackend) HybridCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hybridCalls
}

func truncate(candidates []core.Candidate, size int) []core.Candidate {
	if size > 0 && len(candidates) > size {
		return candidates[:size]
	}
	return candidates
}
