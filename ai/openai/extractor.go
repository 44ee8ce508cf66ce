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


package openai

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/rankfuse/ai"
)

// KeywordExtractor implements ai.KeywordExtractor using OpenAI-compatible
// chat APIs. The model is asked for a bracketed list, but its output is
// never trusted: everything goes through ai.ParseKeywordList.
type KeywordExtractor struct {
	client      llms.Model
	maxKeywords int
	logger      *slog.Logger
}

// newKeywordExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newKeywordExtractor(config *ai.Config) (*KeywordExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &KeywordExtractor{
		client:      client,
		maxKeywords: config.MaxKeywords,
		logger:      slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewKeywordExtractor creates a new keyword extractor using the provided
// configuration.
//
// Returns ai.KeywordExtractor interface to enforce abstraction.
func NewKeywordExtractor(config *ai.Config) (ai.KeywordExtractor, error) {
	return newKeywordExtractor(config)
}

// ExtractKeywords asks the LLM for search keywords and parses its ragged
// output defensively. Returns an empty slice when the model produces
// nothing usable.
func (e *KeywordExtractor) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildKeywordPrompt(e.maxKeywords)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		e.logger.Error("failed to generate content", "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		e.logger.Debug("no choices returned from model")
		return []string{}, nil
	}

	keywords := ai.ParseKeywordList(response.Choices[0].Content)
	if len(keywords) > e.maxKeywords {
		keywords = keywords[:e.maxKeywords]
	}

	e.logger.Debug("extracted keywords", "count", len(keywords))
	return keywords, nil
}
