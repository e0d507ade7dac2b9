package engine

import (
	"fmt"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
)

// minMeaningfulBatch is the supplier count below which min-max normalization
// discriminates weakly. Smaller batches still score, with a warning.
const minMeaningfulBatch = 4

// summarize fills the batch-level summary and reports batches too small for
// normalization to mean much.
func (c *Comparator) summarize(supplierCount int, result *contracts.ComparisonResult) {
	summary := contracts.Summary{
		Methodology:   methodology(c.cfg),
		Weights:       weightTable(c.cfg.Weights),
		SupplierCount: supplierCount,
		ScoredCount:   len(result.Results),
		ExcludedCount: len(result.Excluded),
	}

	for i := range result.Results {
		r := &result.Results[i]
		if r.Incomplete {
			summary.IncompleteCount++
		}
		if r.Cost.TCOEUR == nil {
			continue
		}
		tco := *r.Cost.TCOEUR
		if summary.LowestTCOEUR == nil || tco < *summary.LowestTCOEUR {
			v := tco
			summary.LowestTCOEUR = &v
		}
		if summary.HighestTCOEUR == nil || tco > *summary.HighestTCOEUR {
			v := tco
			summary.HighestTCOEUR = &v
		}
	}

	if top := result.TopPick(); top != nil {
		summary.BestSupplier = top.Supplier
	}

	result.Summary = summary

	switch n := len(result.Results); {
	case n == 0:
		result.Warnings = append(result.Warnings, contracts.Warning{
			Code:    "EMPTY_BATCH",
			Message: "no suppliers scored; nothing to rank",
		})
	case n < minMeaningfulBatch:
		result.Warnings = append(result.Warnings, contracts.Warning{
			Code: "SMALL_BATCH",
			Message: fmt.Sprintf("only %d supplier(s) scored; relative scores carry little meaning below %d suppliers",
				n, minMeaningfulBatch),
		})
	}
}

// methodology renders the one-line description consumers see in report
// headers. Derived from config only, so identical configs describe runs
// identically.
func methodology(cfg *engineconfig.Config) string {
	return fmt.Sprintf("%s v%s: min-max normalized weighted scoring over TCO, delivery, payment, tooling and MOQ, EUR base",
		cfg.Meta.MethodologyID, cfg.Meta.Version)
}

func weightTable(w engineconfig.Weights) map[string]float64 {
	table := make(map[string]float64, 5)
	for criterion, weight := range w.ByCriterion() {
		table[string(criterion)] = weight
	}
	return table
}
