// Package recommend builds the synthesis payload from scored results,
// validates the returned narrative against the computed ranking, and hosts
// the chat-completion synthesizer. The model only ever sees the normalized,
// ranked table; raw extraction output stays out of the prompt.
package recommend

import (
	"fmt"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

// BuildPayload assembles the self-contained description of a scored batch
// for narrative synthesis. Missing raw values stay nil so the model cannot
// mistake absent data for a zero-cost quote.
func BuildPayload(methodology string, weights map[string]float64, results []contracts.CompositeResult) contracts.RecommendationPayload {
	rows := make([]contracts.PayloadRow, 0, len(results))
	for _, r := range results {
		row := contracts.PayloadRow{
			Rank:       r.Rank,
			Supplier:   r.Supplier,
			Composite:  r.Composite,
			ToolingEUR: r.Cost.ToolingEUR,
		}
		if r.Cost.TCOEUR != nil {
			tco := *r.Cost.TCOEUR
			row.TCOEUR = &tco
		}
		if s, ok := r.Scores[contracts.CriterionDelivery]; ok && s.Raw != nil {
			lead := *s.Raw
			row.LeadTimeDays = &lead
		}
		if s, ok := r.Scores[contracts.CriterionPayment]; ok && s.Raw != nil {
			days := *s.Raw
			row.PaymentDays = &days
		}
		if s, ok := r.Scores[contracts.CriterionMOQ]; ok && s.Raw != nil {
			moq := int64(*s.Raw)
			row.MOQ = &moq
		}
		for _, criterion := range contracts.AllCriteria() {
			if r.Scores[criterion].WasMissing {
				row.Missing = append(row.Missing, string(criterion))
			}
		}
		rows = append(rows, row)
	}

	return contracts.RecommendationPayload{
		Methodology: methodology,
		Weights:     weights,
		Rows:        rows,
	}
}

// ValidateNarrative reconciles the synthesized pick with the computed
// rank-1 supplier. An empty pick is backfilled with the top supplier; a
// conflicting pick gets MatchesRanking cleared and a warning. The numeric
// ranking is authoritative either way, so nothing here blocks output.
func ValidateNarrative(n *contracts.Narrative, payload contracts.RecommendationPayload) []contracts.Warning {
	best := payload.Best()
	if n == nil || best == nil {
		return nil
	}

	if n.RecommendedSupplier == "" {
		n.RecommendedSupplier = best.Supplier
		n.MatchesRanking = true
		return []contracts.Warning{{
			Code:    "NARRATIVE_NO_PICK",
			Message: fmt.Sprintf("narrative named no supplier; backfilled rank-1 %q", best.Supplier),
		}}
	}

	if n.RecommendedSupplier == best.Supplier {
		n.MatchesRanking = true
		return nil
	}

	n.MatchesRanking = false
	return []contracts.Warning{{
		Code: "NARRATIVE_MISMATCH",
		Message: fmt.Sprintf("narrative recommends %q but rank-1 is %q; the numeric ranking is authoritative",
			n.RecommendedSupplier, best.Supplier),
	}}
}
