package contracts

// PayloadRow is one supplier's scored facts as handed to the synthesis
// collaborator. Missing raw values are carried as nil, never as zero, so
// the narrative cannot mistake absent data for a free quote.
type PayloadRow struct {
	Rank         int      `json:"rank"`
	Supplier     string   `json:"supplier"`
	Composite    float64  `json:"composite"`
	TCOEUR       *float64 `json:"tco_eur"`
	LeadTimeDays *float64 `json:"lead_time_days"`
	PaymentDays  *float64 `json:"payment_days"`
	ToolingEUR   float64  `json:"tooling_eur"`
	MOQ          *int64   `json:"moq"`
	Missing      []string `json:"missing,omitempty"`
}

// RecommendationPayload is the full context for narrative synthesis:
// the methodology text, the weight table, and every ranked supplier.
type RecommendationPayload struct {
	Methodology string             `json:"methodology"`
	Weights     map[string]float64 `json:"weights"`
	Rows        []PayloadRow       `json:"rows"`
}

// Best returns the rank-1 row, or nil for an empty payload.
func (p *RecommendationPayload) Best() *PayloadRow {
	for i := range p.Rows {
		if p.Rows[i].Rank == 1 {
			return &p.Rows[i]
		}
	}
	return nil
}
