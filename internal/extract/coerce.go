package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/terms"
)

// wireQuotation is the JSON shape the extraction prompt requests. Every
// optional numeric field is a pointer so a JSON null or absent key stays
// distinguishable from a real zero.
type wireQuotation struct {
	SupplierName     string             `json:"supplier_name"`
	AnnualPrices     map[string]float64 `json:"annual_prices"`
	AnnualQuantities map[string]int64   `json:"annual_quantities"`
	ToolingCost      *float64           `json:"tooling_cost"`
	ToolingCostType  string             `json:"tooling_cost_type"`
	DeliveryTerms    string             `json:"delivery_terms"`
	LeadTime         string             `json:"lead_time"`
	PaymentTerms     string             `json:"payment_terms"`
	Currency         string             `json:"currency"`
	QuotationDate    string             `json:"quotation_date"`
	MOQ              *int64             `json:"moq"`
}

// Coerce converts the model's JSON into a QuotationRecord. Coercion is
// strict about shape (bad JSON or non-year map keys fail) and conservative
// about values: anything absent stays nil. Validity of the resulting record
// is the comparison engine's call, not this package's.
func Coerce(raw []byte, source string) (*contracts.QuotationRecord, error) {
	var wire wireQuotation
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("malformed extraction JSON: %w", err)
	}

	record := &contracts.QuotationRecord{
		SupplierName:   strings.TrimSpace(wire.SupplierName),
		CurrencyCode:   coerceCurrency(wire.Currency),
		DeliveryTerms:  strings.TrimSpace(wire.DeliveryTerms),
		PaymentTerms:   strings.TrimSpace(wire.PaymentTerms),
		SourceDocument: source,
	}

	for key, price := range wire.AnnualPrices {
		year, err := parseYear("annual_prices", key)
		if err != nil {
			return nil, err
		}
		if record.AnnualPrices == nil {
			record.AnnualPrices = make(map[int]float64, len(wire.AnnualPrices))
		}
		record.AnnualPrices[year] = price
	}
	for key, qty := range wire.AnnualQuantities {
		year, err := parseYear("annual_quantities", key)
		if err != nil {
			return nil, err
		}
		if record.AnnualVolumes == nil {
			record.AnnualVolumes = make(map[int]int64, len(wire.AnnualQuantities))
		}
		record.AnnualVolumes[year] = qty
	}

	if wire.ToolingCost != nil {
		record.Tooling = []contracts.ToolingLineItem{{
			Name:    "tooling",
			Amount:  *wire.ToolingCost,
			Renewal: isRenewal(wire.ToolingCostType),
		}}
	}

	record.LeadTimeDays = terms.ParseLeadTimeDays(wire.LeadTime)
	record.QuotationDate = parseDate(wire.QuotationDate)

	if wire.MOQ != nil && *wire.MOQ > 0 {
		moq := *wire.MOQ
		record.MOQ = &moq
	}

	return record, nil
}

// coerceCurrency normalizes the code and falls back to USD when the model
// detected none, matching the source documents' dominant currency.
func coerceCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}

func isRenewal(costType string) bool {
	lower := strings.ToLower(costType)
	return strings.Contains(lower, "renew") || strings.Contains(lower, "recurring")
}

func parseYear(field, key string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || year < 1900 || year > 3000 {
		return 0, fmt.Errorf("malformed extraction: %s key %q is not a calendar year", field, key)
	}
	return year, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts the ISO-ish shapes the prompt allows. Unparseable dates
// are dropped rather than guessed; the date is informational only.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
