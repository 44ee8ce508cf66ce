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


package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// quotedToken matches a single- or double-quoted run of characters.
var quotedToken = regexp.MustCompile(`["']([^"']+)["']`)

// keywordParser is one parsing strategy. It reports whether it recognized
// the input; strategies are attempted in order and the first success wins.
type keywordParser func(string) ([]string, bool)

var keywordParsers = []keywordParser{
	parseBracketedList,
	parseQuotedTokens,
	parseCommaSeparated,
}

// ParseKeywordList parses the ragged textual output of an LLM keyword
// extractor into a token list. The format is unreliable, so parsing is an
// ordered chain of strategies:
//
//  1. a bracketed list literal, e.g. ["staff", "training"]
//  2. quoted tokens anywhere in the text
//  3. comma-separated tokens
//  4. the whole string as a single token
//
// Empty and whitespace-only tokens are dropped at every stage. The final
// fallback guarantees a non-empty result for any non-blank input.
func ParseKeywordList(raw string) []string {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return []string{}
	}

	for _, parse := range keywordParsers {
		if tokens, ok := parse(cleaned); ok {
			return tokens
		}
	}

	// Whole string as a single token.
	token := strings.TrimSpace(strings.Trim(cleaned, `"'`))
	if token == "" {
		return []string{}
	}
	return []string{token}
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// its output in, then trims whitespace.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseBracketedList recognizes a list literal like ["a", "b"]. It first
// tries strict JSON; if that fails it falls back to the quoted tokens
// inside the brackets.
func parseBracketedList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}

	var tokens []string
	if err := json.Unmarshal([]byte(s), &tokens); err == nil {
		return dropBlank(tokens), true
	}

	// Malformed literal (single quotes, trailing commas): salvage the
	// quoted tokens inside it.
	if tokens, ok := parseQuotedTokens(s); ok {
		return tokens, true
	}

	// Bracketed but quote-free, e.g. [staff, training].
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if tokens, ok := parseCommaSeparated(inner); ok {
		return tokens, true
	}
	return nil, false
}

// parseQuotedTokens extracts every quoted token in the text.
func parseQuotedTokens(s string) ([]string, bool) {
	matches := quotedToken.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil, false
	}
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, m[1])
	}
	tokens = dropBlank(tokens)
	return tokens, len(tokens) > 0
}

// parseCommaSeparated splits on commas, trimming stray quotes per token.
func parseCommaSeparated(s string) ([]string, bool) {
	if !strings.Contains(s, ",") {
		return nil, false
	}
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens, len(tokens) > 0
}

func dropBlank(tokens []string) []string {
	kept := tokens[:0]
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			kept = append(kept, t)
		}
	}
	return kept
}
