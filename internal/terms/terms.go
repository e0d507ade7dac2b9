// Package terms derives the numeric scoring inputs from free-text
// commercial terms: lead time in days from delivery wording, payment days
// from payment wording, and the incoterm. Parsers return nil when the text
// yields no number; zero is a real parsed value, never a fallback.
package terms

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

const (
	daysPerWeek  = 7.0
	daysPerMonth = 30.42
	daysPerYear  = 365.0
)

var (
	leadNumberRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	paymentDaysRe = regexp.MustCompile(`(\d+)\s*(?:days?|tage?)`)
	paymentNetRe  = regexp.MustCompile(`net\s*(\d+)`)
)

// Incoterms 2020 rules, in listing order. Detection returns the first hit,
// so combined wordings like "CIF/FOB" resolve to the earlier rule.
var incoterms = []string{"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DPU", "DDP"}

func blank(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.EqualFold(trimmed, "N/A")
}

// ParseLeadTimeDays reads the first number out of delivery wording and
// converts its unit to days. German units (Tage, Wochen, Monate, Jahre) are
// common in the source documents and handled alongside English. A range
// like "10-12 weeks" takes the lower bound; a bare number means days.
func ParseLeadTimeDays(text string) *float64 {
	if blank(text) {
		return nil
	}
	lower := strings.ToLower(text)

	numStr := leadNumberRe.FindString(lower)
	if numStr == "" {
		return nil
	}
	value, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return nil
	}

	switch {
	case strings.Contains(lower, "day"), strings.Contains(lower, "tag"):
		// already days
	case strings.Contains(lower, "week"), strings.Contains(lower, "woche"):
		value *= daysPerWeek
	case strings.Contains(lower, "month"), strings.Contains(lower, "monat"):
		value *= daysPerMonth
	case strings.Contains(lower, "year"), strings.Contains(lower, "jahr"):
		value *= daysPerYear
	}
	return &value
}

// ParsePaymentDays reads the payment term length in days from wordings like
// "net 60", "45 days end of month" or "30 Tage netto". Discount prefixes
// ("2% 10, net 30") resolve to the net term.
func ParsePaymentDays(text string) *float64 {
	if blank(text) {
		return nil
	}
	lower := strings.ToLower(text)

	m := paymentDaysRe.FindStringSubmatch(lower)
	if m == nil {
		m = paymentNetRe.FindStringSubmatch(lower)
	}
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

// DetectIncoterm returns the first incoterm appearing in the delivery
// wording, or "" when none is present.
func DetectIncoterm(text string) string {
	if blank(text) {
		return ""
	}
	upper := strings.ToUpper(text)
	for _, term := range incoterms {
		if strings.Contains(upper, term) {
			return term
		}
	}
	return ""
}

// Enrich fills the derived numeric fields of a record from its free-text
// terms. Fields the extractor already populated are left alone, so an
// explicit number in the source always beats a parse.
func Enrich(r *contracts.QuotationRecord) {
	if r.LeadTimeDays == nil {
		r.LeadTimeDays = ParseLeadTimeDays(r.DeliveryTerms)
	}
	if r.PaymentDays == nil {
		r.PaymentDays = ParsePaymentDays(r.PaymentTerms)
	}
	if r.Incoterm == "" {
		r.Incoterm = DetectIncoterm(r.DeliveryTerms)
	}
}
