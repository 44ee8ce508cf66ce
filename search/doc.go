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


// Package search implements the hybrid retrieval pipeline: parallel
// lexical and vector candidate retrieval, min-max score normalization,
// weighted fusion, and cross-encoder reranking.
//
// Two execution modes share the same output shape. Client-side fusion
// (Searcher.Search) runs both channels itself and combines them with a
// Fuser; backend-delegated fusion (Searcher.SearchWithPipeline) sends one
// composite query and lets a named search pipeline normalize and combine
// server-side. The RerankStage applies identically on top of either.
//
// Retrieval channels fail independently: a missing index or an
// unreachable channel contributes an empty candidate list and the request
// carries on with whatever the other channel found. Callers always get a
// well-formed, possibly empty, ranked list.
package search
