package opensearch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/core"
)

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	var mapping map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapping))
			json.NewEncoder(w).Encode(map[string]any{"acknowledged": true})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	require.NoError(t, client.EnsureIndex(context.Background(), "regulations", 1024))

	settings := mapping["settings"].(map[string]any)["index"].(map[string]any)
	assert.Equal(t, true, settings["knn"])

	properties := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", properties["title"].(map[string]any)["type"])
	assert.Equal(t, "text", properties["content"].(map[string]any)["type"])

	vector := properties["content_vector"].(map[string]any)
	assert.Equal(t, "knn_vector", vector["type"])
	assert.Equal(t, float64(1024), vector["dimension"])

	method := vector["method"].(map[string]any)
	assert.Equal(t, "hnsw", method["name"])
	assert.Equal(t, "cosinesimil", method["space_type"])
	assert.Equal(t, "lucene", method["engine"])
}

func TestEnsureIndexSkipsExisting(t *testing.T) {
	created := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			created = true
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.EnsureIndex(context.Background(), "regulations", 1024))
	assert.False(t, created)
}

func TestEnsureIndexRejectsBadDimension(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	err := client.EnsureIndex(context.Background(), "regulations", 0)
	assert.ErrorIs(t, err, core.ErrMalformedConfig)
}

func TestBulkIndexPayload(t *testing.T) {
	var payload []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "refresh=true")
		payload, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{"errors": false})
	})

	docs := []*core.Document{
		{Title: "Rules", Chapter: "Ch 1", Article: "Art 1", Content: "first", Vector: []float32{0.1, 0.2}},
		{Title: "Rules", Chapter: "Ch 1", Article: "Art 2", Content: "second", Vector: []float32{0.3, 0.4}},
	}
	require.NoError(t, client.BulkIndex(context.Background(), "regulations", docs))

	// NDJSON: alternating action and source lines.
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 4)

	var action map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &action))
	assert.Equal(t, "regulations", action["index"].(map[string]any)["_index"])

	var source map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &source))
	assert.Equal(t, "first", source["content"])
	assert.Len(t, source["content_vector"], 2)
}

func TestBulkIndexRejectsInvalidDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid input")
	})

	err := client.BulkIndex(context.Background(), "regulations", []*core.Document{
		{Title: "Rules"}, // no content
	})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestBulkIndexReportsItemFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errors": true})
	})

	err := client.BulkIndex(context.Background(), "regulations", []*core.Document{
		{Title: "Rules", Content: "text"},
	})
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestBulkIndexEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	require.NoError(t, client.BulkIndex(context.Background(), "regulations", nil))
}
