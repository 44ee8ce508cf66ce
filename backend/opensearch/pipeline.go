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
	"io"
	"net/http"

	"github.com/poiesic/rankfuse/core"
)

// The search-pipeline API has no typed request in opensearchapi, so these
// calls go through the raw transport, the same way the _search/pipeline
// endpoint is usually driven.

func pipelinePath(id string) string {
	return "/_search/pipeline/" + id
}

// buildPipelineBody returns a phase-results processor that min-max
// normalizes each sub-query's scores and combines them as a weighted
// arithmetic mean. Weight order matches the hybrid query's sub-query
// order: lexical first, vector second.
func buildPipelineBody(lexicalWeight, vectorWeight float64) map[string]any {
	return map[string]any{
		"description": "hybrid score normalization and weighted combination",
		"phase_results_processors": []map[string]any{
			{
				"normalization-processor": map[string]any{
					"normalization": map[string]any{
						"technique": "min_max",
					},
					"combination": map[string]any{
						"technique": "arithmetic_mean",
						"parameters": map[string]any{
							"weights": []float64{lexicalWeight, vectorWeight},
						},
					},
				},
			},
		},
	}
}

func (c *Client) performPipeline(ctx context.Context, method, id string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, pipelinePath(id), reader)
	if err != nil {
		return nil, fmt.Errorf("build pipeline request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.client.Perform(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	return response, nil
}

// EnsurePipeline creates or updates the named search pipeline. PUT is
// idempotent, so no existence check is needed.
func (c *Client) EnsurePipeline(ctx context.Context, id string, lexicalWeight, vectorWeight float64) error {
	if err := core.ValidateWeights(lexicalWeight, vectorWeight); err != nil {
		return err
	}

	body, err := json.Marshal(buildPipelineBody(lexicalWeight, vectorWeight))
	if err != nil {
		return fmt.Errorf("encode pipeline body: %w", err)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := c.performPipeline(ctx, http.MethodPut, id, body)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("%w: create pipeline %s: status %d: %s", core.ErrBackendUnavailable, id, response.StatusCode, string(payload))
	}

	c.logger.Info("ensured search pipeline", "pipeline", id, "lexical_weight", lexicalWeight, "vector_weight", vectorWeight)
	return nil
}

// PipelineExists reports whether the named search pipeline exists.
func (c *Client) PipelineExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := c.performPipeline(ctx, http.MethodGet, id, nil)
	if err != nil {
		return false, err
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: get pipeline %s: status %d", core.ErrBackendUnavailable, id, response.StatusCode)
	}
}

// DeletePipeline removes the named search pipeline. Deleting a missing
// pipeline is not an error.
func (c *Client) DeletePipeline(ctx context.Context, id string) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := c.performPipeline(ctx, http.MethodDelete, id, nil)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: delete pipeline %s: status %d", core.ErrBackendUnavailable, id, response.StatusCode)
	}

	c.logger.Info("deleted search pipeline", "pipeline", id)
	return nil
}
