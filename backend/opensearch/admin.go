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

	"github.com/poiesic/rankfuse/core"
)

// buildIndexMapping returns the hybrid-search index definition: exact-match
// title and source file, full-text chapter/article/content, and an HNSW
// cosine-similarity vector field of the given dimension.
func buildIndexMapping(dimension int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"index": map[string]any{
				"knn": true,
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				fieldTitle:      map[string]any{"type": "keyword"},
				fieldChapter:    map[string]any{"type": "text"},
				fieldArticle:    map[string]any{"type": "text"},
				fieldContent:    map[string]any{"type": "text"},
				fieldSourceFile: map[string]any{"type": "keyword"},
				fieldVector: map[string]any{
					"type":      "knn_vector",
					"dimension": dimension,
					"method": map[string]any{
						"name":       "hnsw",
						"space_type": "cosinesimil",
						"engine":     "lucene",
					},
				},
			},
		},
	}
}

// EnsureIndex creates the index with the hybrid-search mapping when it does
// not already exist. Existing indices are left untouched, even if their
// mapping differs.
func (c *Client) EnsureIndex(ctx context.Context, index string, dimension int) error {
	if dimension < 1 {
		return fmt.Errorf("%w: vector dimension must be positive, got %d", core.ErrMalformedConfig, dimension)
	}

	exists, err := c.IndexExists(ctx, index)
	if err != nil {
		return err
	}
	if exists {
		c.logger.Debug("index already exists", "index", index)
		return nil
	}

	body, err := json.Marshal(buildIndexMapping(dimension))
	if err != nil {
		return fmt.Errorf("encode index mapping: %w", err)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := opensearchapi.IndicesCreateRequest{
		Index: index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	if err := classifyResponse(response, "create index "+index); err != nil {
		return err
	}

	c.logger.Info("created index", "index", index, "dimension", dimension)
	return nil
}

// IndexExists reports whether the index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := opensearchapi.IndicesExistsRequest{
		Index: []string{index},
	}.Do(ctx, c.client)
	if err != nil {
		return false, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: index exists check: status %d", core.ErrBackendUnavailable, response.StatusCode)
	}
}

// DeleteIndex removes the index and all of its documents.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := opensearchapi.IndicesDeleteRequest{
		Index: []string{index},
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	if err := classifyResponse(response, "delete index "+index); err != nil {
		return err
	}

	c.logger.Info("deleted index", "index", index)
	return nil
}

// BulkIndex writes documents in a single bulk request with refresh, so
// they are searchable as soon as the call returns.
func (c *Client) BulkIndex(ctx context.Context, index string, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buffer bytes.Buffer
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}

		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": index},
		})
		if err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		source, err := json.Marshal(encodeDocument(doc))
		if err != nil {
			return fmt.Errorf("encode bulk document: %w", err)
		}

		buffer.Write(action)
		buffer.WriteByte('\n')
		buffer.Write(source)
		buffer.WriteByte('\n')
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := opensearchapi.BulkRequest{
		Index:   index,
		Body:    &buffer,
		Refresh: "true",
	}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	if err := classifyResponse(response, "bulk index "+index); err != nil {
		return err
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: decode bulk response: %w", core.ErrBackendUnavailable, err)
	}
	if result.Errors {
		return fmt.Errorf("%w: bulk index reported item failures", core.ErrBackendUnavailable)
	}

	c.logger.Info("bulk indexed documents", "index", index, "count", len(docs))
	return nil
}
