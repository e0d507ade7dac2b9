package contracts

// Criterion identifies one scoring dimension of the comparison.
type Criterion string

const (
	CriterionTCO      Criterion = "tco"
	CriterionDelivery Criterion = "delivery"
	CriterionPayment  Criterion = "payment"
	CriterionTooling  Criterion = "tooling"
	CriterionMOQ      Criterion = "moq"
)

// AllCriteria returns the scoring dimensions in canonical order.
func AllCriteria() []Criterion {
	return []Criterion{
		CriterionTCO,
		CriterionDelivery,
		CriterionPayment,
		CriterionTooling,
		CriterionMOQ,
	}
}

// Direction states whether smaller or larger raw values win a criterion.
type Direction string

const (
	LowerIsBetter  Direction = "lower"
	HigherIsBetter Direction = "higher"
)

// YearCost is one year of a multi-year quotation, euro-denominated.
type YearCost struct {
	Year         int     `json:"year"`
	UnitPriceEUR float64 `json:"unit_price_eur"`
	Quantity     int64   `json:"quantity"`
	TotalEUR     float64 `json:"total_eur"`
}

// NormalizedCost is the euro-denominated cost view of one supplier.
// TCOEUR is nil when the record lacks volume information; such suppliers
// stay in the comparison and carry the incomplete flag instead of a
// fabricated total.
type NormalizedCost struct {
	Supplier     string   `json:"supplier"`
	Currency     string   `json:"currency"`
	UnitPriceEUR float64  `json:"unit_price_eur"`
	ToolingEUR   float64  `json:"tooling_eur"`
	TCOEUR       *float64 `json:"tco_eur,omitempty"`

	// TCOOriginal is the total in the record's own currency, kept for
	// report transparency.
	TCOOriginal *float64   `json:"tco_original,omitempty"`
	Breakdown   []YearCost `json:"breakdown,omitempty"`
	Incomplete  bool       `json:"incomplete,omitempty"`
}

// CriterionScore records how one supplier fared on one criterion. Raw is nil
// when the underlying value was missing; Normalized is always populated, in
// [0, 1], with missing values scored by the configured penalty.
type CriterionScore struct {
	Criterion  Criterion `json:"criterion"`
	Raw        *float64  `json:"raw,omitempty"`
	Normalized float64   `json:"normalized"`
	WasMissing bool      `json:"was_missing,omitempty"`
}

// CompositeResult is the final scored row for one supplier.
// Rank 1 is the best supplier in the batch.
type CompositeResult struct {
	Supplier     string                       `json:"supplier"`
	Composite    float64                      `json:"composite"`
	Rank         int                          `json:"rank"`
	Scores       map[Criterion]CriterionScore `json:"scores"`
	MissingCount int                          `json:"missing_count"`
	Incomplete   bool                         `json:"incomplete,omitempty"`
	Cost         NormalizedCost               `json:"cost"`
}

// Score returns the criterion score and whether it exists.
func (r *CompositeResult) Score(c Criterion) (CriterionScore, bool) {
	s, ok := r.Scores[c]
	return s, ok
}
