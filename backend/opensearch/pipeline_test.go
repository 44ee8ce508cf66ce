package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/core"
)

func TestEnsurePipeline(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{"acknowledged": true})
	})

	require.NoError(t, client.EnsurePipeline(context.Background(), "hybrid-minmax-pipeline", 0.3, 0.7))
	assert.Equal(t, "/_search/pipeline/hybrid-minmax-pipeline", path)

	processors := body["phase_results_processors"].([]any)
	require.Len(t, processors, 1)

	normalization := processors[0].(map[string]any)["normalization-processor"].(map[string]any)
	assert.Equal(t, "min_max", normalization["normalization"].(map[string]any)["technique"])

	combination := normalization["combination"].(map[string]any)
	assert.Equal(t, "arithmetic_mean", combination["technique"])
	assert.Equal(t, []any{0.3, 0.7}, combination["parameters"].(map[string]any)["weights"])
}

func TestEnsurePipelineRejectsBadWeights(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid weights")
	})

	err := client.EnsurePipeline(context.Background(), "p", -0.1, 0.7)
	assert.ErrorIs(t, err, core.ErrMalformedConfig)
}

func TestPipelineExists(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			json.NewEncoder(w).Encode(map[string]any{"hybrid-minmax-pipeline": map[string]any{}})
		})

		exists, err := client.PipelineExists(context.Background(), "hybrid-minmax-pipeline")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		exists, err := client.PipelineExists(context.Background(), "nope")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestDeletePipelineIgnoresMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	require.NoError(t, client.DeletePipeline(context.Background(), "nope"))
}
