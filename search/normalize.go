package search

// NormalizeScores rescales raw channel scores to [0,1] with min-max
// normalization. When every score is identical there is no spread to
// stretch, so all scores map to the neutral midpoint 0.5 rather than
// dividing by zero. An empty input yields an empty output.
//
// The input is not modified.
func NormalizeScores(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	min, max := scores[0], scores[0]
	for _, score := range scores[1:] {
		if score < min {
			min = score
		}
		if score > max {
			max = score
		}
	}

	normalized := make([]float64, len(scores))
	if max == min {
		for i := range normalized {
			normalized[i] = 0.5
		}
		return normalized
	}

	spread := max - min
	for i, score := range scores {
		normalized[i] = (score - min) / spread
	}
	return normalized
}
