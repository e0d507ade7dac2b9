package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

func fp(v float64) *float64 { return &v }

func fixtureResult() *contracts.ComparisonResult {
	return &contracts.ComparisonResult{
		RunID:       "run_test",
		GeneratedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		ConfigHash:  "abc123",
		Results: []contracts.CompositeResult{
			{
				Supplier:  "Acme GmbH",
				Composite: 0.83,
				Rank:      1,
				Scores: map[contracts.Criterion]contracts.CriterionScore{
					contracts.CriterionTCO:      {Criterion: contracts.CriterionTCO, Raw: fp(102400), Normalized: 1},
					contracts.CriterionDelivery: {Criterion: contracts.CriterionDelivery, Raw: fp(70), Normalized: 1},
					contracts.CriterionPayment:  {Criterion: contracts.CriterionPayment, Raw: fp(30), Normalized: 1},
					contracts.CriterionTooling:  {Criterion: contracts.CriterionTooling, Raw: fp(5000), Normalized: 1},
					contracts.CriterionMOQ:      {Criterion: contracts.CriterionMOQ, Raw: fp(1000), Normalized: 1},
				},
				Cost: contracts.NormalizedCost{
					Supplier: "Acme GmbH", Currency: "EUR",
					UnitPriceEUR: 2.05, ToolingEUR: 5000, TCOEUR: fp(102400),
				},
			},
			{
				Supplier:  "Beta Ltd",
				Composite: 0.41,
				Rank:      2,
				Scores: map[contracts.Criterion]contracts.CriterionScore{
					contracts.CriterionTCO:      {Criterion: contracts.CriterionTCO, WasMissing: true},
					contracts.CriterionDelivery: {Criterion: contracts.CriterionDelivery, Raw: fp(84), Normalized: 0},
					contracts.CriterionPayment:  {Criterion: contracts.CriterionPayment, WasMissing: true},
					contracts.CriterionTooling:  {Criterion: contracts.CriterionTooling, Raw: fp(9000), Normalized: 0},
					contracts.CriterionMOQ:      {Criterion: contracts.CriterionMOQ, Raw: fp(2000), Normalized: 0},
				},
				MissingCount: 2,
				Incomplete:   true,
				Cost: contracts.NormalizedCost{
					Supplier: "Beta Ltd", Currency: "GBP",
					UnitPriceEUR: 3.51, ToolingEUR: 9000, Incomplete: true,
				},
			},
		},
		Warnings: []contracts.Warning{{Code: "INCOMPLETE_RECORD", Message: "incomplete record"}},
		Summary: contracts.Summary{
			Methodology:     "supplier-quote-v1 v1.0",
			Weights:         map[string]float64{"tco": 0.35, "delivery": 0.25, "payment": 0.20, "tooling": 0.10, "moq": 0.10},
			SupplierCount:   2,
			ScoredCount:     2,
			IncompleteCount: 1,
			BestSupplier:    "Acme GmbH",
			LowestTCOEUR:    fp(102400),
			HighestTCOEUR:   fp(102400),
		},
		Narrative: &contracts.Narrative{
			RecommendedSupplier: "Acme GmbH",
			Reasoning:           "lowest cost",
			MatchesRanking:      true,
		},
		NarrativeStatus: contracts.NarrativeOK,
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLogger())

	path, err := e.WriteJSON(fixtureResult(), "result.json")
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded contracts.ComparisonResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written JSON does not parse: %v", err)
	}
	if decoded.RunID != "run_test" || len(decoded.Results) != 2 {
		t.Errorf("decoded = %q, %d results", decoded.RunID, len(decoded.Results))
	}
	if decoded.Results[1].Cost.TCOEUR != nil {
		t.Error("missing TCO deserialized as a value")
	}
	if decoded.Narrative == nil || decoded.Narrative.RecommendedSupplier != "Acme GmbH" {
		t.Errorf("narrative = %+v", decoded.Narrative)
	}
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLogger())

	snap, err := engineconfig.NewSnapshot(engineconfig.Default(), "")
	if err != nil {
		t.Fatal(err)
	}
	path, err := e.WriteSnapshot(snap, "result.methodology.json")
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded engineconfig.Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written JSON does not parse: %v", err)
	}
	if decoded.ConfigHash != snap.ConfigHash {
		t.Errorf("hash = %q, want %q", decoded.ConfigHash, snap.ConfigHash)
	}
	if decoded.MethodologyID != "supplier-quote-v1" {
		t.Errorf("methodology = %q", decoded.MethodologyID)
	}
	if decoded.ConfigYAML == "" {
		t.Error("snapshot lacks the config YAML")
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLogger())

	path, err := e.WriteCSV(fixtureResult(), "result.csv")
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("CSV parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][1] != "Supplier" {
		t.Errorf("header = %v", rows[0])
	}

	acme := rows[1]
	if acme[0] != "1" || acme[1] != "Acme GmbH" || acme[2] != "0.8300" || acme[3] != "102400.00" {
		t.Errorf("acme row = %v", acme)
	}
	if acme[10] != "" {
		t.Errorf("acme missing list = %q, want empty", acme[10])
	}

	beta := rows[2]
	if beta[3] != "" {
		t.Errorf("beta TCO = %q, want empty for missing", beta[3])
	}
	if beta[9] != "true" {
		t.Errorf("beta incomplete = %q", beta[9])
	}
	if beta[10] != "tco; payment" {
		t.Errorf("beta missing list = %q", beta[10])
	}
}

func TestWriteExcel(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLogger())

	path, err := e.WriteExcel(fixtureResult(), "result.xlsx")
	if err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Comparison" || sheets[1] != "Summary" {
		t.Fatalf("sheets = %v", sheets)
	}

	a1, _ := f.GetCellValue("Comparison", "A1")
	if a1 != "Rank" {
		t.Errorf("A1 = %q", a1)
	}
	b2, _ := f.GetCellValue("Comparison", "B2")
	if b2 != "Acme GmbH" {
		t.Errorf("B2 = %q", b2)
	}
	d3, _ := f.GetCellValue("Comparison", "D3")
	if d3 != "" {
		t.Errorf("D3 = %q, want empty for missing TCO", d3)
	}
	k3, _ := f.GetCellValue("Comparison", "K3")
	if k3 != "tco; payment" {
		t.Errorf("K3 = %q", k3)
	}

	sumA2, _ := f.GetCellValue("Summary", "A2")
	sumB2, _ := f.GetCellValue("Summary", "B2")
	if sumA2 != "Run ID" || sumB2 != "run_test" {
		t.Errorf("summary first row = %q %q", sumA2, sumB2)
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLogger())

	paths, err := e.WriteAll(fixtureResult(), "comparison_run_test")
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing export %s: %v", p, err)
		}
		if filepath.Dir(p) != dir {
			t.Errorf("export %s outside dir %s", p, dir)
		}
	}
}

func TestWriteCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	e := New(dir, testLogger())

	if _, err := e.WriteJSON(fixtureResult(), "r.json"); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("export dir not created: %v", err)
	}
}
