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


// Package opensearch implements backend.Backend against an OpenSearch
// cluster using the official opensearch-go client.
//
// The lexical channel uses boosted fuzzy multi_match queries, the vector
// channel uses k-NN over an HNSW cosine-similarity index, and the hybrid
// channel delegates fusion to a named search pipeline with a min-max
// normalization processor. Search-pipeline administration goes through the
// raw transport since opensearchapi has no typed requests for it.
//
// # Usage
//
//	client, err := opensearch.NewClient(opensearch.NewConfig(
//	    opensearch.WithAddresses("http://localhost:9200"),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.EnsureIndex(ctx, "regulations", 1024); err != nil {
//	    log.Fatal(err)
//	}
package opensearch
