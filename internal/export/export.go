// Package export writes comparison results to JSON, CSV, and Excel files
// for downstream procurement workflows.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// comparisonHeaders is the column layout shared by the CSV and Excel
// comparison tables.
var comparisonHeaders = []string{
	"Rank", "Supplier", "Composite Score", "TCO (EUR)", "Avg Unit Price (EUR)",
	"Tooling (EUR)", "Lead Time (days)", "Payment (days)", "MOQ",
	"Incomplete", "Missing Criteria",
}

// Exporter writes result files into one output directory.
type Exporter struct {
	dir string
	log *logger.Logger
}

// New builds an Exporter rooted at dir. The directory is created on first
// write.
func New(dir string, log *logger.Logger) *Exporter {
	return &Exporter{
		dir: dir,
		log: log.WithField("component", "exporter"),
	}
}

// WriteAll writes the JSON, CSV, and Excel renditions of one result using a
// shared base name. It returns the written paths.
func (e *Exporter) WriteAll(result *contracts.ComparisonResult, baseName string) ([]string, error) {
	paths := make([]string, 0, 3)

	jsonPath, err := e.WriteJSON(result, baseName+".json")
	if err != nil {
		return nil, err
	}
	paths = append(paths, jsonPath)

	csvPath, err := e.WriteCSV(result, baseName+".csv")
	if err != nil {
		return nil, err
	}
	paths = append(paths, csvPath)

	xlsxPath, err := e.WriteExcel(result, baseName+".xlsx")
	if err != nil {
		return nil, err
	}
	paths = append(paths, xlsxPath)

	return paths, nil
}

// WriteJSON writes the full result, indented, so the file round-trips back
// through the API types.
func (e *Exporter) WriteJSON(result *contracts.ComparisonResult, filename string) (string, error) {
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return "", fmt.Errorf("encode JSON: %w", err)
	}

	e.log.WithField("path", path).Info("JSON export written")
	return path, nil
}

// WriteSnapshot writes the methodology snapshot a result was scored under,
// so an export directory is auditable on its own.
func (e *Exporter) WriteSnapshot(snap *engineconfig.Snapshot, filename string) (string, error) {
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	e.log.WithField("path", path).Info("Methodology snapshot written")
	return path, nil
}

// WriteCSV writes the ranked comparison table.
func (e *Exporter) WriteCSV(result *contracts.ComparisonResult, filename string) (string, error) {
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(comparisonHeaders); err != nil {
		return "", fmt.Errorf("write headers: %w", err)
	}

	for i := range result.Results {
		if err := writer.Write(comparisonRow(&result.Results[i])); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush CSV: %w", err)
	}

	e.log.WithField("path", path).Info("CSV export written")
	return path, nil
}

// WriteExcel writes a styled workbook with the comparison table and a run
// summary sheet.
func (e *Exporter) WriteExcel(result *contracts.ComparisonResult, filename string) (string, error) {
	path, err := e.preparePath(filename)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	if err := e.writeComparisonSheet(f, result, headerStyle); err != nil {
		return "", err
	}
	if err := e.writeSummarySheet(f, result, headerStyle); err != nil {
		return "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save Excel file: %w", err)
	}

	e.log.WithField("path", path).Info("Excel export written")
	return path, nil
}

func (e *Exporter) writeComparisonSheet(f *excelize.File, result *contracts.ComparisonResult, headerStyle int) error {
	const sheetName = "Comparison"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	for i, header := range comparisonHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range result.Results {
		r := &result.Results[rowIdx]
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Rank)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Supplier)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Composite)
		setOptionalCell(f, sheetName, fmt.Sprintf("D%d", row), r.Cost.TCOEUR)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Cost.UnitPriceEUR)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Cost.ToolingEUR)
		setOptionalCell(f, sheetName, fmt.Sprintf("G%d", row), rawScore(r, contracts.CriterionDelivery))
		setOptionalCell(f, sheetName, fmt.Sprintf("H%d", row), rawScore(r, contracts.CriterionPayment))
		setOptionalCell(f, sheetName, fmt.Sprintf("I%d", row), rawScore(r, contracts.CriterionMOQ))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), r.Incomplete)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), missingList(r))
	}

	for i := range comparisonHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 15.0
		if comparisonHeaders[i] == "Supplier" {
			width = 24.0
		}
		f.SetColWidth(sheetName, col, col, width)
	}

	f.SetActiveSheet(index)
	return nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, result *contracts.ComparisonResult, headerStyle int) error {
	const sheetName = "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Field")
	f.SetCellValue(sheetName, "B1", "Value")
	f.SetCellStyle(sheetName, "A1", "B1", headerStyle)

	s := result.Summary
	rows := [][2]interface{}{
		{"Run ID", result.RunID},
		{"Generated At", result.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Config Hash", result.ConfigHash},
		{"Methodology", s.Methodology},
		{"Suppliers", s.SupplierCount},
		{"Scored", s.ScoredCount},
		{"Excluded", s.ExcludedCount},
		{"Incomplete", s.IncompleteCount},
		{"Best Supplier", s.BestSupplier},
		{"Narrative", string(result.NarrativeStatus)},
	}
	if s.LowestTCOEUR != nil {
		rows = append(rows, [2]interface{}{"Lowest TCO (EUR)", *s.LowestTCOEUR})
	}
	if s.HighestTCOEUR != nil {
		rows = append(rows, [2]interface{}{"Highest TCO (EUR)", *s.HighestTCOEUR})
	}
	for _, criterion := range contracts.AllCriteria() {
		rows = append(rows, [2]interface{}{
			fmt.Sprintf("Weight: %s", criterion),
			s.Weights[string(criterion)],
		})
	}
	for _, w := range result.Warnings {
		rows = append(rows, [2]interface{}{"Warning: " + w.Code, w.Message})
	}
	if result.Narrative != nil {
		rows = append(rows, [2]interface{}{"Recommended Supplier", result.Narrative.RecommendedSupplier})
	}

	for i, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+2), row[1])
	}

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 64)
	return nil
}

func (e *Exporter) preparePath(filename string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return filepath.Join(e.dir, filename), nil
}

func comparisonRow(r *contracts.CompositeResult) []string {
	return []string{
		fmt.Sprintf("%d", r.Rank),
		r.Supplier,
		fmt.Sprintf("%.4f", r.Composite),
		formatOptional(r.Cost.TCOEUR, "%.2f"),
		fmt.Sprintf("%.2f", r.Cost.UnitPriceEUR),
		fmt.Sprintf("%.2f", r.Cost.ToolingEUR),
		formatOptional(rawScore(r, contracts.CriterionDelivery), "%.0f"),
		formatOptional(rawScore(r, contracts.CriterionPayment), "%.0f"),
		formatOptional(rawScore(r, contracts.CriterionMOQ), "%.0f"),
		fmt.Sprintf("%t", r.Incomplete),
		missingList(r),
	}
}

func rawScore(r *contracts.CompositeResult, criterion contracts.Criterion) *float64 {
	if s, ok := r.Scores[criterion]; ok {
		return s.Raw
	}
	return nil
}

func missingList(r *contracts.CompositeResult) string {
	var missing []string
	for _, criterion := range contracts.AllCriteria() {
		if r.Scores[criterion].WasMissing {
			missing = append(missing, string(criterion))
		}
	}
	return strings.Join(missing, "; ")
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(format, *v)
}

func setOptionalCell(f *excelize.File, sheet, cell string, v *float64) {
	if v == nil {
		return
	}
	f.SetCellValue(sheet, cell, *v)
}
