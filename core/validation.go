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


package core

import "fmt"

// Per-channel result sizes are bounded to keep retrieval and rerank
// batches small.
const (
	MinChannelSize = 1
	MaxChannelSize = 50
)

// ValidateChannelSize validates a per-channel result size.
func ValidateChannelSize(size int) error {
	if size < MinChannelSize || size > MaxChannelSize {
		return fmt.Errorf("%w: channel size %d out of range [%d,%d]",
			ErrMalformedConfig, size, MinChannelSize, MaxChannelSize)
	}
	return nil
}

// ValidateTopK validates a final result count.
func ValidateTopK(topK int) error {
	if topK < 1 {
		return fmt.Errorf("%w: topK must be positive, got %d", ErrMalformedConfig, topK)
	}
	return nil
}

// ValidateWeights validates the channel combination weights.
// Weights are not required to sum to 1; that is a convention, not a rule.
// Negative weights and the degenerate all-zero pair are rejected.
func ValidateWeights(wLex, wVec float64) error {
	if wLex < 0 || wVec < 0 {
		return fmt.Errorf("%w: weights must be non-negative, got lexical=%v vector=%v",
			ErrMalformedConfig, wLex, wVec)
	}
	if wLex == 0 && wVec == 0 {
		return fmt.Errorf("%w: at least one channel weight must be positive", ErrMalformedConfig)
	}
	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated (populated later or legitimately empty):
//   - Vector (populated at ingestion time)
//   - Title/Chapter/Article (sparse corpora leave some blank; identity
//     collisions from blank fields are a documented limitation)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}
