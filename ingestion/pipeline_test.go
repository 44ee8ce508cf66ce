package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/rankfuse/ai/mock"
	bemock "github.com/poiesic/rankfuse/backend/mock"
	"github.com/poiesic/rankfuse/core"
)

func newTestPipeline(t *testing.T, be *bemock.MockBackend, opts ...Option) (*Pipeline, *aimock.MockProvider) {
	t.Helper()

	provider := aimock.NewMockProvider().(*aimock.MockProvider)
	pipeline, err := NewPipeline(be, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, provider
}

func TestIngestEmbedsAndIndexes(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, _ := newTestPipeline(t, be)

	docs := []*core.Document{
		{Title: "Rules", Chapter: "Ch 1", Article: "Art 1", Content: "first"},
		{Title: "Rules", Chapter: "Ch 1", Article: "Art 2", Content: "second"},
	}
	require.NoError(t, pipeline.Ingest(context.Background(), "regulations", docs))

	indexed := be.Indexed("regulations")
	require.Len(t, indexed, 2)
	for _, doc := range indexed {
		assert.NotEmpty(t, doc.Vector)
	}
}

func TestIngestSkipsAlreadyEmbedded(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, provider := newTestPipeline(t, be)

	existing := []float32{0.5, 0.5}
	docs := []*core.Document{
		{Title: "Rules", Content: "text", Vector: existing},
	}
	require.NoError(t, pipeline.Ingest(context.Background(), "regulations", docs))

	assert.Equal(t, 0, provider.GetMockEmbedder().CallCount())
	assert.Equal(t, existing, be.Indexed("regulations")[0].Vector)
}

func TestIngestBatchesEmbeddingCalls(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, provider := newTestPipeline(t, be, WithBatchSize(2), WithPoolSize(1))

	docs := make([]*core.Document, 5)
	for i := range docs {
		docs[i] = &core.Document{Title: "Rules", Content: string(rune('a' + i))}
	}
	require.NoError(t, pipeline.Ingest(context.Background(), "regulations", docs))

	// 5 documents at batch size 2 means 3 embedding calls.
	assert.Equal(t, 3, provider.GetMockEmbedder().CallCount())
	assert.Len(t, be.Indexed("regulations"), 5)
}

func TestIngestRejectsInvalidDocument(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, _ := newTestPipeline(t, be)

	err := pipeline.Ingest(context.Background(), "regulations", []*core.Document{
		{Title: "Rules"}, // no content
	})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
	assert.Empty(t, be.Indexed("regulations"))
}

func TestIngestPropagatesEmbeddingFailure(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, provider := newTestPipeline(t, be)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, assert.AnError
	}

	err := pipeline.Ingest(context.Background(), "regulations", []*core.Document{
		{Title: "Rules", Content: "text"},
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, be.Indexed("regulations"))
}

func TestIngestEmptyInput(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, _ := newTestPipeline(t, be)

	require.NoError(t, pipeline.Ingest(context.Background(), "regulations", nil))
}

func TestVectorDimension(t *testing.T) {
	be := bemock.NewMockBackend()
	pipeline, _ := newTestPipeline(t, be)

	dim, err := pipeline.VectorDimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 384, dim) // mock embedder width
}

func TestNewPipelineValidation(t *testing.T) {
	provider := aimock.NewMockProvider()

	t.Run("nil backend", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.ErrorIs(t, err, ErrBackendRequired)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(bemock.NewMockBackend(), nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("bad batch size", func(t *testing.T) {
		_, err := NewPipeline(bemock.NewMockBackend(), provider, WithBatchSize(0))
		assert.ErrorIs(t, err, core.ErrMalformedConfig)
	})
}
