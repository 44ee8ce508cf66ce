package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/core"
)

func lexicalCandidate(identity string, score float64) core.Candidate {
	return core.Candidate{
		Identity: identity,
		Score:    score,
		Doc:      &core.Document{Title: identity, Content: "content of " + identity},
	}
}

func TestFuserWeightedCombination(t *testing.T) {
	fuser, err := NewFuser(0.3, 0.7)
	require.NoError(t, err)

	lexical := []core.Candidate{
		lexicalCandidate("A", 10),
		lexicalCandidate("B", 5),
	}
	vector := []core.Candidate{
		lexicalCandidate("B", 0.9),
		lexicalCandidate("C", 0.5),
	}

	records := fuser.Combine(lexical, vector, 5)
	require.Len(t, records, 3)

	// Normalized lexical: A=1.0, B=0.0. Normalized vector: B=1.0, C=0.0.
	// Combined: A=0.3, B=0.7, C=0.0.
	assert.Equal(t, "B", records[0].Identity)
	assert.Equal(t, "A", records[1].Identity)
	assert.Equal(t, "C", records[2].Identity)

	assert.InDelta(t, 0.7, records[0].Combined, 1e-9)
	assert.InDelta(t, 0.3, records[1].Combined, 1e-9)
	assert.InDelta(t, 0.0, records[2].Combined, 1e-9)

	// B was seen by both channels.
	assert.InDelta(t, 0.0, records[0].BM25Norm, 1e-9)
	assert.InDelta(t, 1.0, records[0].VectorNorm, 1e-9)
	// C is vector-only, so its lexical contribution is zero.
	assert.Equal(t, 0.0, records[2].BM25Norm)
}

func TestFuserSingleChannel(t *testing.T) {
	fuser, err := NewFuser(0.3, 0.7)
	require.NoError(t, err)

	vector := []core.Candidate{
		lexicalCandidate("X", 0.9),
		lexicalCandidate("Y", 0.4),
	}

	records := fuser.Combine(nil, vector, 5)
	require.Len(t, records, 2)
	assert.Equal(t, "X", records[0].Identity)
	for _, record := range records {
		assert.Equal(t, 0.0, record.BM25Norm)
	}
}

func TestFuserEmptyChannels(t *testing.T) {
	fuser, err := NewFuser(0.3, 0.7)
	require.NoError(t, err)

	assert.Empty(t, fuser.Combine(nil, nil, 5))
}

func TestFuserTruncatesToTopK(t *testing.T) {
	fuser, err := NewFuser(0.5, 0.5)
	require.NoError(t, err)

	lexical := []core.Candidate{
		lexicalCandidate("A", 4),
		lexicalCandidate("B", 3),
		lexicalCandidate("C", 2),
		lexicalCandidate("D", 1),
	}

	records := fuser.Combine(lexical, nil, 2)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Identity)
	assert.Equal(t, "B", records[1].Identity)
}

func TestFuserTieBreakKeepsFirstSeenOrder(t *testing.T) {
	fuser, err := NewFuser(0.5, 0.5)
	require.NoError(t, err)

	// Identical scores normalize to 0.5 each, so every record ties.
	lexical := []core.Candidate{
		lexicalCandidate("first", 2),
		lexicalCandidate("second", 2),
		lexicalCandidate("third", 2),
	}

	records := fuser.Combine(lexical, nil, 5)
	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Identity)
	assert.Equal(t, "second", records[1].Identity)
	assert.Equal(t, "third", records[2].Identity)
}

func TestNewFuserRejectsBadWeights(t *testing.T) {
	_, err := NewFuser(-0.1, 0.7)
	assert.ErrorIs(t, err, core.ErrMalformedConfig)

	_, err = NewFuser(0, 0)
	assert.ErrorIs(t, err, core.ErrMalformedConfig)
}
