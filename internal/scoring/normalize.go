// Package scoring turns euro-normalized cost views into per-criterion
// scores, weighted composites, and a deterministic ranking.
package scoring

import (
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

// Normalize min-max scales one criterion across the whole batch.
//
// The range is computed over suppliers with known values only, then missing
// values receive the penalty score; one supplier's missing data never
// distorts the scale for the others. When every known value ties
// (max == min) the criterion discriminates nothing and every known supplier
// gets the neutral score.
func Normalize(criterion contracts.Criterion, direction contracts.Direction, values map[string]*float64, penalty, neutral float64) map[string]contracts.CriterionScore {
	var min, max float64
	known := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if known == 0 || *v < min {
			min = *v
		}
		if known == 0 || *v > max {
			max = *v
		}
		known++
	}

	scores := make(map[string]contracts.CriterionScore, len(values))
	for supplier, v := range values {
		if v == nil {
			scores[supplier] = contracts.CriterionScore{
				Criterion:  criterion,
				Normalized: penalty,
				WasMissing: true,
			}
			continue
		}

		raw := *v
		var normalized float64
		switch {
		case max == min:
			normalized = neutral
		case direction == contracts.HigherIsBetter:
			normalized = (raw - min) / (max - min)
		default:
			normalized = 1 - (raw-min)/(max-min)
		}

		scores[supplier] = contracts.CriterionScore{
			Criterion:  criterion,
			Raw:        &raw,
			Normalized: normalized,
		}
	}
	return scores
}
