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


// Package ai defines the model service abstractions consumed by the search
// pipeline: text embedding, cross-encoder reranking, and LLM keyword
// extraction, together with their shared configuration.
//
// Two implementations are provided: ai/openai talks to OpenAI-compatible
// services, ai/mock provides deterministic test doubles. ParseKeywordList
// implements the defensive parsing of extractor output that every
// implementation must apply.
package ai
