package currency

import (
	"math"
	"testing"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
)

func TestToEUR(t *testing.T) {
	conv := New(engineconfig.Default().Rates)

	tests := []struct {
		amount float64
		code   string
		want   float64
	}{
		{100, "EUR", 100},
		{100, "USD", 92},
		{100, "GBP", 117},
		{100000, "JPY", 620},
		{0, "USD", 0},
	}

	for _, tc := range tests {
		got, ok := conv.ToEUR(tc.amount, tc.code)
		if !ok {
			t.Errorf("ToEUR(%g, %s) unexpectedly unknown", tc.amount, tc.code)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ToEUR(%g, %s) = %g, want %g", tc.amount, tc.code, got, tc.want)
		}
	}
}

func TestUnknownCurrency(t *testing.T) {
	conv := New(engineconfig.Default().Rates)

	if conv.Known("KRW") {
		t.Error("KRW should be unknown in the default table")
	}
	if _, ok := conv.ToEUR(1000, "KRW"); ok {
		t.Error("ToEUR must report unknown currencies, never fall back to 1.0")
	}
}

func TestCodeNormalization(t *testing.T) {
	conv := New(map[string]float64{"usd": 0.92, " EUR ": 1.0})

	if !conv.Known("USD") {
		t.Error("lowercase table entry should be reachable via uppercase code")
	}
	if got, ok := conv.ToEUR(50, " usd "); !ok || got != 46 {
		t.Errorf("ToEUR with padded code = %g, %v", got, ok)
	}
	if !conv.Known("EUR") {
		t.Error("padded table key should normalize")
	}
}

func TestCodes(t *testing.T) {
	conv := New(engineconfig.Default().Rates)

	codes := conv.Codes()
	want := []string{"EUR", "GBP", "JPY", "USD"}
	if len(codes) != len(want) {
		t.Fatalf("Codes() = %v", codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Codes()[%d] = %s, want %s", i, codes[i], want[i])
		}
	}
}
