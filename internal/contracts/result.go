package contracts

import "time"

// Warning is a non-fatal condition surfaced to the caller alongside results.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Exclusion records a supplier dropped from scoring and why.
type Exclusion struct {
	Supplier string `json:"supplier"`
	Currency string `json:"currency,omitempty"`
	Reason   string `json:"reason"`
}

// Narrative is the structured recommendation produced by the synthesis
// collaborator. It annotates the numeric ranking, it never overrides it.
type Narrative struct {
	RecommendedSupplier string   `json:"recommended_supplier"`
	Reasoning           string   `json:"reasoning"`
	KeyAdvantages       []string `json:"key_advantages,omitempty"`
	Considerations      []string `json:"considerations,omitempty"`
	MissingDataImpact   string   `json:"missing_data_impact,omitempty"`

	// MatchesRanking is false when the synthesized pick disagrees with the
	// computed rank-1 supplier. The numeric ranking stays authoritative.
	MatchesRanking bool `json:"matches_ranking"`
}

// NarrativeStatus tells callers what happened to the synthesis step.
type NarrativeStatus string

const (
	NarrativeOK          NarrativeStatus = "ok"
	NarrativeSkipped     NarrativeStatus = "skipped"
	NarrativeUnavailable NarrativeStatus = "unavailable"
)

// Summary condenses a comparison run for report headers and API consumers.
type Summary struct {
	Methodology     string             `json:"methodology"`
	Weights         map[string]float64 `json:"weights"`
	SupplierCount   int                `json:"supplier_count"`
	ScoredCount     int                `json:"scored_count"`
	ExcludedCount   int                `json:"excluded_count"`
	IncompleteCount int                `json:"incomplete_count"`
	BestSupplier    string             `json:"best_supplier,omitempty"`
	LowestTCOEUR    *float64           `json:"lowest_tco_eur,omitempty"`
	HighestTCOEUR   *float64           `json:"highest_tco_eur,omitempty"`
}

// ComparisonResult is the complete outcome of one scoring run: every scored
// supplier in rank order, exclusions, warnings, and the optional narrative.
// It is a pure function of the input batch and the engine configuration.
type ComparisonResult struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ConfigHash  string    `json:"config_hash"`

	Results  []CompositeResult `json:"results"`
	Excluded []Exclusion       `json:"excluded,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
	Summary  Summary           `json:"summary"`

	Narrative       *Narrative      `json:"narrative,omitempty"`
	NarrativeStatus NarrativeStatus `json:"narrative_status"`
}

// TopPick returns the rank-1 supplier, or nil for an empty result.
func (c *ComparisonResult) TopPick() *CompositeResult {
	for i := range c.Results {
		if c.Results[i].Rank == 1 {
			return &c.Results[i]
		}
	}
	return nil
}

// ByName returns the scored row for the named supplier, or nil.
func (c *ComparisonResult) ByName(supplier string) *CompositeResult {
	for i := range c.Results {
		if c.Results[i].Supplier == supplier {
			return &c.Results[i]
		}
	}
	return nil
}
