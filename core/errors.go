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

import "errors"

// Failure taxonomy for the search pipeline. Channel-level failures
// (ErrIndexNotFound, ErrBackendUnavailable) are absorbed at the retriever
// boundary and never surface to callers; ErrMalformedConfig is a caller
// error surfaced at request validation time; ErrRerankUnavailable triggers
// the degraded-ordering fallback.
var (
	// ErrIndexNotFound indicates the target index does not exist.
	// Non-fatal: treated as zero hits for that channel.
	ErrIndexNotFound = errors.New("index not found")

	// ErrBackendUnavailable indicates the search backend could not be reached.
	// Fatal for the affected channel call only.
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrMalformedConfig indicates invalid caller-supplied search parameters.
	ErrMalformedConfig = errors.New("malformed search configuration")

	// ErrRerankUnavailable indicates the cross-encoder call failed or
	// returned no usable scores. Non-fatal: fused order is kept.
	ErrRerankUnavailable = errors.New("reranker unavailable")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
