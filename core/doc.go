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


// Package core defines the domain model shared across the search pipeline:
// documents, retrieval candidates, fused records, the failure taxonomy, and
// request parameter validation.
//
// All record types are request-scoped. A Candidate or FusedRecord is owned
// exclusively by the request that produced it; nothing in this package is
// persisted or shared across requests.
package core
