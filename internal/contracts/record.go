package contracts

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// ToolingLineItem is one named entry of a tooling cost breakdown, in the
// record's own currency. Renewal items recur every year of the quotation
// horizon instead of being paid once.
type ToolingLineItem struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Renewal bool    `json:"renewal,omitempty"`
}

// QuotationRecord is the structured form of one supplier quotation as
// produced by the extraction collaborator. The supplier name is the
// record's identity and must be unique within a batch.
//
// Optional fields are pointers: nil means the source document did not state
// a value. Zero never stands in for missing, because zero is a valid and
// favorable value for some criteria (tooling cost) and a worst case for
// others.
type QuotationRecord struct {
	SupplierName  string     `json:"supplier_name"`
	CurrencyCode  string     `json:"currency"`
	QuotationDate *time.Time `json:"quotation_date,omitempty"`

	UnitPrice    float64 `json:"unit_price"`
	AnnualVolume *int64  `json:"annual_volume,omitempty"`

	// Multi-year quotations carry per-year unit prices and volumes keyed by
	// calendar year. When both are present they drive the TCO computation;
	// UnitPrice and AnnualVolume then describe the first quoted year.
	AnnualPrices  map[int]float64 `json:"annual_prices,omitempty"`
	AnnualVolumes map[int]int64   `json:"annual_volumes,omitempty"`

	Tooling []ToolingLineItem `json:"tooling,omitempty"`

	DeliveryTerms string   `json:"delivery_terms,omitempty"`
	LeadTimeDays  *float64 `json:"lead_time_days,omitempty"`
	Incoterm      string   `json:"incoterm,omitempty"`

	PaymentTerms string   `json:"payment_terms,omitempty"`
	PaymentDays  *float64 `json:"payment_days,omitempty"`

	MOQ *int64 `json:"moq,omitempty"`

	SourceDocument string `json:"source_document,omitempty"`
}

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate flags malformed input at the extraction boundary, before any
// record reaches normalization.
func (r *QuotationRecord) Validate() error {
	if r.SupplierName == "" {
		return &ValidationError{Field: "supplier_name", Message: "required"}
	}
	if !currencyCodeRe.MatchString(r.CurrencyCode) {
		return &ValidationError{Field: "currency", Message: fmt.Sprintf("%q is not a 3-letter code", r.CurrencyCode)}
	}
	if r.UnitPrice <= 0 && len(r.AnnualPrices) == 0 {
		return &ValidationError{Field: "unit_price", Message: "must be positive"}
	}
	if r.AnnualVolume != nil && *r.AnnualVolume <= 0 {
		return &ValidationError{Field: "annual_volume", Message: "must be positive when present"}
	}
	if r.MOQ != nil && *r.MOQ <= 0 {
		return &ValidationError{Field: "moq", Message: "must be positive when present"}
	}
	if r.LeadTimeDays != nil && *r.LeadTimeDays < 0 {
		return &ValidationError{Field: "lead_time_days", Message: "must not be negative"}
	}
	if r.PaymentDays != nil && *r.PaymentDays < 0 {
		return &ValidationError{Field: "payment_days", Message: "must not be negative"}
	}
	for i, item := range r.Tooling {
		if item.Amount < 0 {
			return &ValidationError{Field: fmt.Sprintf("tooling[%d].amount", i), Message: "must not be negative"}
		}
	}
	for year, price := range r.AnnualPrices {
		if price <= 0 {
			return &ValidationError{Field: fmt.Sprintf("annual_prices[%d]", year), Message: "must be positive"}
		}
	}
	for year, qty := range r.AnnualVolumes {
		if qty <= 0 {
			return &ValidationError{Field: fmt.Sprintf("annual_volumes[%d]", year), Message: "must be positive"}
		}
	}
	return nil
}

// HasVolume reports whether the record carries enough volume information to
// define a TCO.
func (r *QuotationRecord) HasVolume() bool {
	return r.AnnualVolume != nil || len(r.AnnualVolumes) > 0
}

// MissingFields lists the optional commercial fields absent from the record,
// in stable order, for audit output.
func (r *QuotationRecord) MissingFields() []string {
	var missing []string
	if r.QuotationDate == nil {
		missing = append(missing, "quotation_date")
	}
	if !r.HasVolume() {
		missing = append(missing, "annual_volume")
	}
	if r.LeadTimeDays == nil {
		missing = append(missing, "lead_time_days")
	}
	if r.PaymentDays == nil {
		missing = append(missing, "payment_days")
	}
	if r.MOQ == nil {
		missing = append(missing, "moq")
	}
	return missing
}

// QuotedYears returns the quoted calendar years in ascending order.
func (r *QuotationRecord) QuotedYears() []int {
	set := map[int]struct{}{}
	for y := range r.AnnualPrices {
		set[y] = struct{}{}
	}
	for y := range r.AnnualVolumes {
		set[y] = struct{}{}
	}
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// HorizonYears is the number of quoted years, at least 1. Renewal tooling
// items are charged once per horizon year.
func (r *QuotationRecord) HorizonYears() int {
	if n := len(r.QuotedYears()); n > 0 {
		return n
	}
	return 1
}
