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


package search

import (
	"sort"

	"github.com/poiesic/rankfuse/core"
)

// Fuser merges lexical and vector candidate sets into a single ranking by
// weighted combination of min-max normalized scores.
type Fuser struct {
	lexicalWeight float64
	vectorWeight  float64
}

// NewFuser creates a fuser with the given channel weights.
// Weights must be non-negative and not both zero; they are not required to
// sum to 1.
func NewFuser(lexicalWeight, vectorWeight float64) (*Fuser, error) {
	if err := core.ValidateWeights(lexicalWeight, vectorWeight); err != nil {
		return nil, err
	}
	return &Fuser{
		lexicalWeight: lexicalWeight,
		vectorWeight:  vectorWeight,
	}, nil
}

// Combine merges the two channels keyed by document identity and returns
// up to topK records ordered by combined score, highest first.
//
// Each channel is normalized independently. A document seen by only one
// channel contributes 0 for the other channel. Ties keep first-seen order:
// lexical candidates in channel order, then vector-only candidates in
// channel order.
func (f *Fuser) Combine(lexical, vector []core.Candidate, topK int) []core.FusedRecord {
	lexicalNorm := NormalizeScores(candidateScores(lexical))
	vectorNorm := NormalizeScores(candidateScores(vector))

	index := make(map[string]int)
	records := make([]core.FusedRecord, 0, len(lexical)+len(vector))

	for i, candidate := range lexical {
		if at, seen := index[candidate.Identity]; seen {
			// Identity collision within the channel: keep the higher score.
			if lexicalNorm[i] > records[at].BM25Norm {
				records[at].BM25Norm = lexicalNorm[i]
			}
			continue
		}
		index[candidate.Identity] = len(records)
		records = append(records, core.FusedRecord{
			Identity: candidate.Identity,
			BM25Norm: lexicalNorm[i],
			Doc:      candidate.Doc,
		})
	}

	for i, candidate := range vector {
		if at, seen := index[candidate.Identity]; seen {
			if vectorNorm[i] > records[at].VectorNorm {
				records[at].VectorNorm = vectorNorm[i]
			}
			continue
		}
		index[candidate.Identity] = len(records)
		records = append(records, core.FusedRecord{
			Identity:   candidate.Identity,
			VectorNorm: vectorNorm[i],
			Doc:        candidate.Doc,
		})
	}

	for i := range records {
		records[i].Combined = records[i].BM25Norm*f.lexicalWeight + records[i].VectorNorm*f.vectorWeight
	}

	// Stable keeps first-seen order for equal combined scores.
	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Combined > records[b].Combined
	})

	if topK > 0 && len(records) > topK {
		records = records[:topK]
	}
	return records
}

func candidateScores(candidates []core.Candidate) []float64 {
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		scores[i] = candidate.Score
	}
	return scores
}
