package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/ai/mock"
	"github.com/poiesic/rankfuse/core"
)

func fusedRecord(identity string, combined float64) core.FusedRecord {
	return core.FusedRecord{
		Identity: identity,
		Combined: combined,
		Doc:      &core.Document{Title: identity, Content: "content of " + identity},
	}
}

func TestRerankReplacesFusedOrder(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, documents []string) ([]float64, error) {
		require.Len(t, documents, 3)
		// Last fused record wins the cross-encoder round.
		return []float64{0.1, 0.2, 0.9}, nil
	}

	stage, err := NewRerankStage(reranker)
	require.NoError(t, err)

	records := []core.FusedRecord{
		fusedRecord("A", 0.9),
		fusedRecord("B", 0.5),
		fusedRecord("C", 0.1),
	}

	result := stage.Apply(context.Background(), "query", records, 3)
	require.Len(t, result, 3)
	assert.Equal(t, "C", result[0].Identity)
	assert.Equal(t, "B", result[1].Identity)
	assert.Equal(t, "A", result[2].Identity)
	for _, record := range result {
		assert.True(t, record.Reranked)
	}
	// One batched call, not one per document.
	assert.Equal(t, 1, reranker.CallCount())
}

func TestRerankFallbackKeepsFusedOrder(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, documents []string) ([]float64, error) {
		return nil, errors.New("model not loaded")
	}

	stage, err := NewRerankStage(reranker)
	require.NoError(t, err)

	records := []core.FusedRecord{
		fusedRecord("A", 0.9),
		fusedRecord("B", 0.5),
		fusedRecord("C", 0.1),
	}

	result := stage.Apply(context.Background(), "query", records, 2)
	require.Len(t, result, 2)
	assert.Equal(t, "A", result[0].Identity)
	assert.Equal(t, "B", result[1].Identity)
	for _, record := range result {
		assert.False(t, record.Reranked)
		assert.Equal(t, 0.0, record.RerankScore)
	}
}

func TestRerankMisalignedScoresFallBack(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, documents []string) ([]float64, error) {
		return []float64{0.5}, nil // fewer scores than documents
	}

	stage, err := NewRerankStage(reranker)
	require.NoError(t, err)

	records := []core.FusedRecord{fusedRecord("A", 0.9), fusedRecord("B", 0.5)}
	result := stage.Apply(context.Background(), "query", records, 5)
	require.Len(t, result, 2)
	assert.Equal(t, "A", result[0].Identity)
	assert.False(t, result[0].Reranked)
}

func TestRerankEmptyInputSkipsReranker(t *testing.T) {
	reranker := mock.NewMockReranker()
	stage, err := NewRerankStage(reranker)
	require.NoError(t, err)

	result := stage.Apply(context.Background(), "query", nil, 3)
	assert.Empty(t, result)
	assert.Equal(t, 0, reranker.CallCount())
}

func TestRerankDoesNotMutateInput(t *testing.T) {
	reranker := mock.NewMockReranker()
	reranker.RerankFunc = func(ctx context.Context, query string, documents []string) ([]float64, error) {
		return []float64{0.1, 0.9}, nil
	}

	stage, err := NewRerankStage(reranker)
	require.NoError(t, err)

	records := []core.FusedRecord{fusedRecord("A", 0.9), fusedRecord("B", 0.5)}
	stage.Apply(context.Background(), "query", records, 2)

	assert.Equal(t, "A", records[0].Identity)
	assert.False(t, records[0].Reranked)
}

func TestNewRerankStageRequiresReranker(t *testing.T) {
	_, err := NewRerankStage(nil)
	assert.ErrorIs(t, err, ErrRerankerRequired)
}
