// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

// Index field names and lexical boosts. Content carries the highest boost,
// then title, chapter and article, mirroring how often each field decides
// relevance in the corpus.
const (
	fieldTitle      = "title"
	fieldChapter    = "chapter"
	fieldArticle    = "article"
	fieldContent    = "content"
	fieldSourceFile = "source_file"
	fieldVector     = "content_vector"
)

var lexicalFields = []string{
	fieldContent + "^2",
	fieldTitle + "^1.5",
	fieldChapter + "^1.2",
	fieldArticle + "^1.0",
}

const defaultFuzziness = "AUTO"

// sourceFilter keeps the embedding vector out of search responses.
var sourceFilter = map[string]any{"excludes": []string{fieldVector}}

func multiMatchClause(text string, fields []string, fuzziness string) map[string]any {
	if len(fields) == 0 {
		fields = lexicalFields
	}
	if fuzziness == "" {
		fuzziness = defaultFuzziness
	}
	return map[string]any{
		"multi_match": map[string]any{
			"query":     text,
			"fields":    fields,
			"type":      "best_fields",
			"fuzziness": fuzziness,
		},
	}
}

func buildLexicalBody(query *backend.LexicalQuery) map[string]any {
	var queryClause map[string]any
	if len(query.Keywords) > 0 {
		// One boosted fuzzy clause per keyword; a document matching any
		// keyword qualifies, matching more keywords scores higher.
		clauses := make([]map[string]any, 0, len(query.Keywords))
		for _, keyword := range query.Keywords {
			clauses = append(clauses, multiMatchClause(keyword, query.Fields, query.Fuzziness))
		}
		queryClause = map[string]any{
			"bool": map[string]any{
				"should":               clauses,
				"minimum_should_match": 1,
			},
		}
	} else {
		queryClause = multiMatchClause(query.Text, query.Fields, query.Fuzziness)
	}

	return map[string]any{
		"query":   queryClause,
		"size":    query.Size,
		"_source": sourceFilter,
	}
}

func buildVectorBody(query *backend.VectorQuery) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"knn": map[string]any{
				fieldVector: map[string]any{
					"vector": query.Vector,
					"k":      query.K,
				},
			},
		},
		"size":    query.Size,
		"_source": sourceFilter,
	}
}

func buildHybridBody(query *backend.HybridQuery) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"hybrid": map[string]any{
				"queries": []map[string]any{
					multiMatchClause(query.Text, nil, ""),
					{
						"knn": map[string]any{
							fieldVector: map[string]any{
								"vector": query.Vector,
								"k":      query.Size,
							},
						},
					},
				},
			},
		},
		"size":    query.Size,
		"_source": sourceFilter,
	}
}

// LexicalSearch runs a BM25 keyword query.
func (c *Client) LexicalSearch(ctx context.Context, query *backend.LexicalQuery) ([]core.Candidate, error) {
	c.logger.Debug("lexical search", "index", query.Index, "keywords", len(query.Keywords), "size", query.Size)
	return c.search(ctx, query.Index, buildLexicalBody(query), "")
}

// VectorSearch runs a k-NN similarity query.
func (c *Client) VectorSearch(ctx context.Context, query *backend.VectorQuery) ([]core.Candidate, error) {
	c.logger.Debug("vector search", "index", query.Index, "k", query.K, "size", query.Size)
	return c.search(ctx, query.Index, buildVectorBody(query), "")
}

// HybridSearch runs a composite query fused server-side by the named
// search pipeline.
func (c *Client) HybridSearch(ctx context.Context, query *backend.HybridQuery) ([]core.Candidate, error) {
	c.logger.Debug("hybrid search", "index", query.Index, "pipeline", query.Pipeline, "size", query.Size)
	return c.search(ctx, query.Index, buildHybridBody(query), query.Pipeline)
}

// performSearch issues the _search request. The search_pipeline query
// parameter has no typed counterpart in opensearchapi, so pipeline-fused
// searches go through the raw transport like the pipeline CRUD calls.
func (c *Client) performSearch(ctx context.Context, index, pipeline string, body []byte) (*opensearchapi.Response, error) {
	if pipeline == "" {
		return opensearchapi.SearchRequest{
			Index: []string{index},
			Body:  bytes.NewReader(body),
		}.Do(ctx, c.client)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, "/"+index+"/_search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	params := request.URL.Query()
	params.Set("search_pipeline", pipeline)
	request.URL.RawQuery = params.Encode()
	request.Header.Set("Content-Type", "application/json")

	raw, err := c.client.Perform(request)
	if err != nil {
		return nil, err
	}
	return &opensearchapi.Response{
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		Body:       raw.Body,
	}, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64         `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) search(ctx context.Context, index string, body map[string]any, pipeline string) ([]core.Candidate, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := c.performSearch(ctx, index, pipeline, encoded)
	if err != nil {
		c.logger.Error("search request failed", "index", index, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	if err := classifyResponse(response, "search "+index); err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", core.ErrBackendUnavailable, err)
	}

	candidates := make([]core.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc, err := decodeDocument(hit.Source)
		if err != nil {
			c.logger.Warn("skipping undecodable hit", "index", index, "err", err)
			continue
		}
		candidates = append(candidates, core.Candidate{
			Identity: doc.Identity(),
			Score:    hit.Score,
			Doc:      doc,
		})
	}
	return candidates, nil
}

// decodeDocument maps an index _source onto core.Document. Fields beyond
// the schema land in the Extra side-map so they survive round trips.
func decodeDocument(source json.RawMessage) (*core.Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(source, &raw); err != nil {
		return nil, err
	}

	doc := &core.Document{}
	for key, value := range raw {
		text, isString := value.(string)
		switch key {
		case fieldTitle:
			doc.Title = text
		case fieldChapter:
			doc.Chapter = text
		case fieldArticle:
			doc.Article = text
		case fieldContent:
			doc.Content = text
		case fieldSourceFile:
			doc.SourceFile = text
		case fieldVector:
			// Excluded from _source by the queries; ignore if present.
		default:
			if !isString {
				continue
			}
			if doc.Extra == nil {
				doc.Extra = make(map[string]string)
			}
			doc.Extra[key] = text
		}
	}
	return doc, nil
}

// encodeDocument maps a core.Document onto the index schema for ingestion.
func encodeDocument(doc *core.Document) map[string]any {
	encoded := map[string]any{
		fieldTitle:      doc.Title,
		fieldChapter:    doc.Chapter,
		fieldArticle:    doc.Article,
		fieldContent:    doc.Content,
		fieldSourceFile: doc.SourceFile,
	}
	if len(doc.Vector) > 0 {
		encoded[fieldVector] = doc.Vector
	}
	for key, value := range doc.Extra {
		encoded[key] = value
	}
	return encoded
}
