package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(NewConfig(WithAddresses(server.URL)))
	require.NoError(t, err)
	return client
}

func searchHandler(t *testing.T, capture *map[string]any, hits ...map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		wrapped := make([]map[string]any, 0, len(hits))
		for i, hit := range hits {
			wrapped = append(wrapped, map[string]any{
				"_score":  1.0 - float64(i)*0.1,
				"_source": hit,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"hits": wrapped},
		})
	}
}

func TestLexicalSearchBuildsKeywordClauses(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, searchHandler(t, &body,
		map[string]any{"title": "Employment Rules", "chapter": "Chapter 3", "article": "Article 12", "content": "vacation days"},
	))

	candidates, err := client.LexicalSearch(context.Background(), &backend.LexicalQuery{
		Index:    "regulations",
		Keywords: []string{"vacation", "annual leave"},
		Size:     10,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Employment RulesChapter 3Article 12", candidates[0].Identity)
	assert.Equal(t, "vacation days", candidates[0].Doc.Content)

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	clauses := boolQuery["should"].([]any)
	require.Len(t, clauses, 2)
	assert.Equal(t, float64(1), boolQuery["minimum_should_match"])

	first := clauses[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "vacation", first["query"])
	assert.Equal(t, "AUTO", first["fuzziness"])
	assert.Equal(t, "best_fields", first["type"])
	assert.Contains(t, first["fields"], "content^2")
	assert.Contains(t, first["fields"], "title^1.5")

	source := body["_source"].(map[string]any)
	assert.Contains(t, source["excludes"], "content_vector")
}

func TestLexicalSearchFreeTextFallback(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, searchHandler(t, &body))

	_, err := client.LexicalSearch(context.Background(), &backend.LexicalQuery{
		Index: "regulations",
		Text:  "how many vacation days do I get",
		Size:  10,
	})
	require.NoError(t, err)

	// No keyword list means one plain multi_match, no bool wrapper.
	query := body["query"].(map[string]any)
	assert.NotContains(t, query, "bool")
	assert.Equal(t, "how many vacation days do I get", query["multi_match"].(map[string]any)["query"])
}

func TestLexicalSearchCustomFieldsAndFuzziness(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, searchHandler(t, &body))

	_, err := client.LexicalSearch(context.Background(), &backend.LexicalQuery{
		Index:     "regulations",
		Keywords:  []string{"vacation"},
		Fields:    []string{"content^3", "title"},
		Fuzziness: "2",
		Size:      10,
	})
	require.NoError(t, err)

	clauses := body["query"].(map[string]any)["bool"].(map[string]any)["should"].([]any)
	clause := clauses[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, []any{"content^3", "title"}, clause["fields"])
	assert.Equal(t, "2", clause["fuzziness"])
}

func TestVectorSearchBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, searchHandler(t, &body))

	_, err := client.VectorSearch(context.Background(), &backend.VectorQuery{
		Index:  "regulations",
		Vector: []float32{0.1, 0.2, 0.3},
		K:      10,
		Size:   10,
	})
	require.NoError(t, err)

	knn := body["query"].(map[string]any)["knn"].(map[string]any)["content_vector"].(map[string]any)
	assert.Equal(t, float64(10), knn["k"])
	assert.Len(t, knn["vector"], 3)
}

func TestHybridSearchUsesPipeline(t *testing.T) {
	var body map[string]any
	var pipelineParam string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pipelineParam = r.URL.Query().Get("search_pipeline")
		searchHandler(t, &body)(w, r)
	})

	_, err := client.HybridSearch(context.Background(), &backend.HybridQuery{
		Index:    "regulations",
		Text:     "vacation days",
		Vector:   []float32{0.1, 0.2},
		Pipeline: "hybrid-minmax-pipeline",
		Size:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "hybrid-minmax-pipeline", pipelineParam)

	queries := body["query"].(map[string]any)["hybrid"].(map[string]any)["queries"].([]any)
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0].(map[string]any), "multi_match")
	assert.Contains(t, queries[1].(map[string]any), "knn")
}

func TestSearchErrorMapping(t *testing.T) {
	t.Run("missing index", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
		})

		_, err := client.LexicalSearch(context.Background(), &backend.LexicalQuery{
			Index: "missing", Text: "q", Size: 10,
		})
		assert.ErrorIs(t, err, core.ErrIndexNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.VectorSearch(context.Background(), &backend.VectorQuery{
			Index: "regulations", Vector: []float32{0.1}, K: 5, Size: 5,
		})
		assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	})

	t.Run("unreachable cluster", func(t *testing.T) {
		client, err := NewClient(NewConfig(WithAddresses("http://127.0.0.1:1")))
		require.NoError(t, err)

		_, err = client.LexicalSearch(context.Background(), &backend.LexicalQuery{
			Index: "regulations", Text: "q", Size: 10,
		})
		assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	})
}

func TestSearchHonorsRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := NewClient(NewConfig(
		WithAddresses(server.URL),
		WithRequestTimeout(50*time.Millisecond),
	))
	require.NoError(t, err)

	start := time.Now()
	_, err = client.LexicalSearch(context.Background(), &backend.LexicalQuery{
		Index: "regulations", Text: "q", Size: 10,
	})
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDecodeDocumentExtraFields(t *testing.T) {
	doc, err := decodeDocument(json.RawMessage(`{
		"title": "Rules",
		"chapter": "Ch 1",
		"article": "Art 2",
		"content": "body text",
		"source_file": "rules.jsonl",
		"category": "hr",
		"revision": 3
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Rules", doc.Title)
	assert.Equal(t, "rules.jsonl", doc.SourceFile)
	assert.Equal(t, "hr", doc.Extra["category"])
	// Non-string extras are dropped, not coerced.
	assert.NotContains(t, doc.Extra, "revision")
}
