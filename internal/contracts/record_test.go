package contracts

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestQuotationRecordValidate(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	valid := QuotationRecord{
		SupplierName:  "Acme GmbH",
		CurrencyCode:  "EUR",
		QuotationDate: &date,
		UnitPrice:     4.20,
		AnnualVolume:  i64(50000),
		Tooling:       []ToolingLineItem{{Name: "injection mold", Amount: 18000}},
		LeadTimeDays:  f64(42),
		PaymentDays:   f64(30),
		MOQ:           i64(1000),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid record = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *QuotationRecord)
		field  string
	}{
		{"empty supplier", func(r *QuotationRecord) { r.SupplierName = "" }, "supplier_name"},
		{"lowercase currency", func(r *QuotationRecord) { r.CurrencyCode = "usd" }, "currency"},
		{"four letter currency", func(r *QuotationRecord) { r.CurrencyCode = "EURO" }, "currency"},
		{"zero unit price", func(r *QuotationRecord) { r.UnitPrice = 0 }, "unit_price"},
		{"negative unit price", func(r *QuotationRecord) { r.UnitPrice = -1 }, "unit_price"},
		{"zero volume", func(r *QuotationRecord) { r.AnnualVolume = i64(0) }, "annual_volume"},
		{"zero moq", func(r *QuotationRecord) { r.MOQ = i64(0) }, "moq"},
		{"negative lead time", func(r *QuotationRecord) { r.LeadTimeDays = f64(-3) }, "lead_time_days"},
		{"negative payment days", func(r *QuotationRecord) { r.PaymentDays = f64(-30) }, "payment_days"},
		{"negative tooling amount", func(r *QuotationRecord) { r.Tooling[0].Amount = -500 }, "tooling[0].amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.Tooling = []ToolingLineItem{{Name: "injection mold", Amount: 18000}}
			tt.mutate(&r)

			err := r.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestQuotationRecordValidateMultiYear(t *testing.T) {
	r := QuotationRecord{
		SupplierName: "Nordic Plast AS",
		CurrencyCode: "EUR",
		AnnualPrices: map[int]float64{2026: 3.10, 2027: 3.02},
		AnnualVolumes: map[int]int64{
			2026: 40000,
			2027: 45000,
		},
	}
	// No flat unit price: per-year prices are enough.
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	r.AnnualVolumes[2027] = 0
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for zero per-year volume")
	}
}

func TestQuotationRecordMissingFields(t *testing.T) {
	r := QuotationRecord{
		SupplierName: "Bare Quote Ltd",
		CurrencyCode: "GBP",
		UnitPrice:    2.50,
	}

	got := r.MissingFields()
	want := []string{"quotation_date", "annual_volume", "lead_time_days", "payment_days", "moq"}
	if len(got) != len(want) {
		t.Fatalf("MissingFields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingFields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	r.AnnualVolume = i64(10000)
	r.MOQ = i64(500)
	got = r.MissingFields()
	if len(got) != 3 {
		t.Fatalf("MissingFields() after filling = %v", got)
	}
	for _, f := range got {
		if f == "annual_volume" || f == "moq" {
			t.Errorf("MissingFields() still reports %q", f)
		}
	}
}

func TestQuotationRecordHasVolume(t *testing.T) {
	r := QuotationRecord{SupplierName: "X", CurrencyCode: "EUR", UnitPrice: 1}
	if r.HasVolume() {
		t.Error("HasVolume() = true for record without volume")
	}
	r.AnnualVolumes = map[int]int64{2026: 1000}
	if !r.HasVolume() {
		t.Error("HasVolume() = false with per-year volumes")
	}
}

func TestQuotationRecordQuotedYears(t *testing.T) {
	r := QuotationRecord{
		AnnualPrices:  map[int]float64{2027: 2.9, 2026: 3.0},
		AnnualVolumes: map[int]int64{2028: 50000},
	}
	years := r.QuotedYears()
	want := []int{2026, 2027, 2028}
	if len(years) != len(want) {
		t.Fatalf("QuotedYears() = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Errorf("QuotedYears()[%d] = %d, want %d", i, years[i], want[i])
		}
	}
	if r.HorizonYears() != 3 {
		t.Errorf("HorizonYears() = %d, want 3", r.HorizonYears())
	}

	single := QuotationRecord{}
	if single.HorizonYears() != 1 {
		t.Errorf("HorizonYears() on single-year record = %d, want 1", single.HorizonYears())
	}
}

func TestQuotationRecordJSONRoundTrip(t *testing.T) {
	date := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	r := QuotationRecord{
		SupplierName:  "Shenzhen Mold Co",
		CurrencyCode:  "USD",
		QuotationDate: &date,
		UnitPrice:     1.85,
		AnnualVolume:  i64(120000),
		Tooling: []ToolingLineItem{
			{Name: "mold base", Amount: 22000},
			{Name: "maintenance", Amount: 1500, Renewal: true},
		},
		DeliveryTerms: "8-10 weeks after PO",
		LeadTimeDays:  f64(63),
		Incoterm:      "FOB",
		PaymentTerms:  "net 60",
		PaymentDays:   f64(60),
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	// MOQ was never quoted and must not appear as zero.
	if strings.Contains(string(data), "\"moq\"") {
		t.Errorf("nil MOQ serialized: %s", data)
	}

	var back QuotationRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if back.SupplierName != r.SupplierName || back.CurrencyCode != r.CurrencyCode {
		t.Errorf("identity fields lost: %+v", back)
	}
	if back.MOQ != nil {
		t.Errorf("MOQ = %v, want nil", *back.MOQ)
	}
	if back.PaymentDays == nil || *back.PaymentDays != 60 {
		t.Errorf("PaymentDays = %v, want 60", back.PaymentDays)
	}
	if len(back.Tooling) != 2 || !back.Tooling[1].Renewal {
		t.Errorf("Tooling = %+v", back.Tooling)
	}
}

func TestDocumentHash(t *testing.T) {
	a := Document{Name: "acme.txt", Text: "unit price 4.20 EUR"}
	b := Document{Name: "acme-copy.txt", Text: "unit price 4.20 EUR"}
	c := Document{Name: "acme.txt", Text: "unit price 4.30 EUR"}

	if a.Hash() != b.Hash() {
		t.Error("identical text must hash identically regardless of name")
	}
	if a.Hash() == c.Hash() {
		t.Error("different text must hash differently")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex chars", len(a.Hash()))
	}
}
