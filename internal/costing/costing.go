// Package costing turns validated quotation records into euro-denominated
// cost views: averaged unit price, tooling total, and the TCO over the
// quoted horizon. Records without volume information keep a nil TCO and an
// incomplete flag; a missing volume must never look like a free quote.
package costing

import (
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/currency"
)

// Calculator computes cost views against one rate table.
type Calculator struct {
	conv *currency.Converter
}

// New builds a Calculator over the given converter.
func New(conv *currency.Converter) *Calculator {
	return &Calculator{conv: conv}
}

// Normalize computes the cost view for one record. It returns an
// *contracts.UnknownCurrencyError when the record quotes in a currency the
// rate table does not list; the caller decides between excluding the
// supplier and aborting the batch.
//
// A record without any volume information comes back with Incomplete set,
// a nil TCO, and the tooling and unit-price figures still populated, since
// those criteria remain scorable.
func (c *Calculator) Normalize(r *contracts.QuotationRecord) (*contracts.NormalizedCost, error) {
	rate, ok := c.conv.Rate(r.CurrencyCode)
	if !ok {
		return nil, &contracts.UnknownCurrencyError{Supplier: r.SupplierName, Currency: r.CurrencyCode}
	}

	toolingOriginal := toolingTotal(r)
	cost := &contracts.NormalizedCost{
		Supplier:     r.SupplierName,
		Currency:     r.CurrencyCode,
		UnitPriceEUR: unitPriceAvg(r) * rate,
		ToolingEUR:   toolingOriginal * rate,
	}

	base, breakdown, ok := volumeBase(r)
	if !ok {
		cost.Incomplete = true
		return cost, nil
	}

	totalOriginal := base + toolingOriginal
	totalEUR := totalOriginal * rate
	cost.TCOOriginal = &totalOriginal
	cost.TCOEUR = &totalEUR

	for _, line := range breakdown {
		cost.Breakdown = append(cost.Breakdown, contracts.YearCost{
			Year:         line.year,
			UnitPriceEUR: line.price * rate,
			Quantity:     line.qty,
			TotalEUR:     line.price * float64(line.qty) * rate,
		})
	}
	return cost, nil
}

// toolingTotal sums the breakdown in the record's currency. Renewal items
// recur every quoted year. Empty and absent breakdowns both total zero.
func toolingTotal(r *contracts.QuotationRecord) float64 {
	horizon := float64(r.HorizonYears())
	var total float64
	for _, item := range r.Tooling {
		if item.Renewal {
			total += item.Amount * horizon
		} else {
			total += item.Amount
		}
	}
	return total
}

// unitPriceAvg is the plain average over quoted per-year prices, or the
// flat unit price for single-year quotations.
func unitPriceAvg(r *contracts.QuotationRecord) float64 {
	if len(r.AnnualPrices) == 0 {
		return r.UnitPrice
	}
	var sum float64
	for _, p := range r.AnnualPrices {
		sum += p
	}
	return sum / float64(len(r.AnnualPrices))
}

type yearLine struct {
	year  int
	price float64
	qty   int64
}

// volumeBase computes price x volume over the quoted horizon in the
// record's currency. Multi-year records sum each priced year against its
// own volume, with the flat annual volume as the per-year fallback; a year
// with no volume at all contributes nothing. The third return is false when
// the record carries no volume information whatsoever.
func volumeBase(r *contracts.QuotationRecord) (float64, []yearLine, bool) {
	if len(r.AnnualPrices) == 0 {
		if r.AnnualVolume == nil {
			return 0, nil, false
		}
		return r.UnitPrice * float64(*r.AnnualVolume), nil, true
	}

	if !r.HasVolume() {
		return 0, nil, false
	}

	var total float64
	var breakdown []yearLine
	for _, year := range r.QuotedYears() {
		price, priced := r.AnnualPrices[year]
		if !priced {
			continue
		}
		qty, found := r.AnnualVolumes[year]
		if !found && r.AnnualVolume != nil {
			qty = *r.AnnualVolume
		}
		total += price * float64(qty)
		breakdown = append(breakdown, yearLine{year: year, price: price, qty: qty})
	}
	return total, breakdown, true
}
