package scoring

import (
	"sort"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// Scorer computes weighted composite scores and the final ranking.
type Scorer struct {
	cfg *engineconfig.Config
	log *logger.Logger
}

// New builds a Scorer. The config is validated here so a bad weight table
// fails construction instead of producing a plausible-looking ranking.
func New(cfg *engineconfig.Config, log *logger.Logger) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, log: log}, nil
}

// Score normalizes every criterion across the batch, weights the scores
// into composites, and returns the batch in rank order (rank 1 first).
// Ties break by fewer missing criteria, then lower TCO with unknown totals
// last, then supplier name ascending, so identical input always yields an
// identical order.
func (s *Scorer) Score(inputs []Input) []contracts.CompositeResult {
	if len(inputs) == 0 {
		return nil
	}

	weights := s.cfg.Weights.ByCriterion()
	directions := s.cfg.Scoring.Directions.ByCriterion()
	penalties := s.cfg.Scoring.MissingPenalty.ByCriterion()

	scoresBySupplier := make(map[string]map[contracts.Criterion]contracts.CriterionScore, len(inputs))
	for _, in := range inputs {
		scoresBySupplier[in.Supplier] = make(map[contracts.Criterion]contracts.CriterionScore, len(contracts.AllCriteria()))
	}

	for _, criterion := range contracts.AllCriteria() {
		values := make(map[string]*float64, len(inputs))
		for _, in := range inputs {
			values[in.Supplier] = in.Raw[criterion]
		}

		normalized := Normalize(criterion, directions[criterion], values, penalties[criterion], s.cfg.Scoring.NeutralScore)
		for supplier, score := range normalized {
			scoresBySupplier[supplier][criterion] = score
		}
	}

	results := make([]contracts.CompositeResult, 0, len(inputs))
	for _, in := range inputs {
		scores := scoresBySupplier[in.Supplier]

		missing := 0
		for _, criterion := range contracts.AllCriteria() {
			if scores[criterion].WasMissing {
				missing++
			}
		}

		results = append(results, contracts.CompositeResult{
			Supplier:     in.Supplier,
			Composite:    composite(scores, weights),
			Scores:       scores,
			MissingCount: missing,
			Incomplete:   in.Cost.Incomplete,
			Cost:         in.Cost,
		})
	}

	sortResults(results)
	for i := range results {
		results[i].Rank = i + 1
	}

	s.log.WithFields(map[string]interface{}{
		"suppliers":     len(results),
		"top_supplier":  results[0].Supplier,
		"top_composite": results[0].Composite,
	}).Info("Scoring completed")

	return results
}

// composite is the weighted sum over the five criteria, accumulated in
// canonical criterion order so equal score sets sum bit-identically.
func composite(scores map[contracts.Criterion]contracts.CriterionScore, weights map[contracts.Criterion]float64) float64 {
	var total float64
	for _, criterion := range contracts.AllCriteria() {
		total += scores[criterion].Normalized * weights[criterion]
	}
	return total
}

func sortResults(results []contracts.CompositeResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.MissingCount != b.MissingCount {
			return a.MissingCount < b.MissingCount
		}
		if c := compareTCO(a.Cost.TCOEUR, b.Cost.TCOEUR); c != 0 {
			return c < 0
		}
		return a.Supplier < b.Supplier
	})
}

// compareTCO orders known totals ascending and sorts unknown totals after
// any known one.
func compareTCO(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
