package scoring

import (
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

// RawValues holds one supplier's raw criterion values; nil means missing.
type RawValues map[contracts.Criterion]*float64

// Input is one supplier's scorable facts: the cost view plus the raw value
// per criterion. Supplier names must be unique within a batch.
type Input struct {
	Supplier string
	Cost     contracts.NormalizedCost
	Raw      RawValues
}

// BuildInput assembles the scoring input for one supplier. Tooling is
// always known (absent breakdowns total zero by policy); TCO, lead time,
// payment days, and MOQ stay nil when the record or cost view lacks them.
func BuildInput(r *contracts.QuotationRecord, cost *contracts.NormalizedCost) Input {
	tooling := cost.ToolingEUR
	return Input{
		Supplier: r.SupplierName,
		Cost:     *cost,
		Raw: RawValues{
			contracts.CriterionTCO:      copyFloat(cost.TCOEUR),
			contracts.CriterionDelivery: copyFloat(r.LeadTimeDays),
			contracts.CriterionPayment:  copyFloat(r.PaymentDays),
			contracts.CriterionTooling:  &tooling,
			contracts.CriterionMOQ:      intFloat(r.MOQ),
		},
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func intFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	c := float64(*v)
	return &c
}
