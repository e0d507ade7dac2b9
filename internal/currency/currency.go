// Package currency converts quotation amounts into euros using the
// configured rate table. Every comparison runs on a single reference
// currency so totals from different suppliers are commensurable.
package currency

import (
	"sort"
	"strings"
)

// Converter converts amounts into euros. Rates map a 3-letter currency code
// to its EUR multiplier; the table comes from the engine configuration and
// is validated there (EUR present and pinned to 1.0).
type Converter struct {
	rates map[string]float64
}

// New builds a Converter over a validated rate table.
func New(rates map[string]float64) *Converter {
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		normalized[normalizeCode(code)] = rate
	}
	return &Converter{rates: normalized}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Known reports whether the table lists a rate for code.
func (c *Converter) Known(code string) bool {
	_, ok := c.rates[normalizeCode(code)]
	return ok
}

// Rate returns the EUR multiplier for code.
func (c *Converter) Rate(code string) (float64, bool) {
	rate, ok := c.rates[normalizeCode(code)]
	return rate, ok
}

// ToEUR converts amount from code into euros. The second return is false
// when the currency is not in the table; the amount is then unusable and
// the caller decides between exclusion and abort.
func (c *Converter) ToEUR(amount float64, code string) (float64, bool) {
	rate, ok := c.rates[normalizeCode(code)]
	if !ok {
		return 0, false
	}
	return amount * rate, true
}

// Codes lists the known currency codes in ascending order.
func (c *Converter) Codes() []string {
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
