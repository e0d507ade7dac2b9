package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/extract"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured records from quotation documents",
	Long: `Extracts structured quotation records from free-form documents
without scoring them.

The output is a JSON array of records, suitable for review and for
feeding back into compare --records. Extraction results are cached in
Redis by document hash, so unchanged documents are not re-extracted.

Example:
  go run ./cmd/quote extract --docs ./quotes
  go run ./cmd/quote extract --docs ./quotes --out records.json
  go run ./cmd/quote extract --url https://supplier.example.com/quote.html`,
	RunE: runExtract,
}

var (
	extractDocs string
	extractURLs []string
	extractOut  string
)

func init() {
	rootCmd.AddCommand(extractCmd)

	// Flags
	extractCmd.Flags().StringVar(&extractDocs, "docs", "", "directory of quotation documents")
	extractCmd.Flags().StringSliceVar(&extractURLs, "url", nil, "quotation document URL (repeatable)")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "output file (default stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quotation Extraction ===")

	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required to extract documents")
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (extraction cache, optional)
	cache, closeRedis := initCache(cfg, log)
	defer closeRedis()

	// 4. Load documents
	docs, err := loadDocuments(ctx, cfg, log, extractDocs, extractURLs)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no input: pass --docs or --url")
	}

	fmt.Printf("📄 Extracting %d documents...\n\n", len(docs))

	// 5. Extract
	client := extract.NewClient(cfg.LLM, cache, log)

	records := make([]contracts.QuotationRecord, 0, len(docs))
	failed := 0
	for _, ex := range client.ExtractAll(ctx, docs) {
		if ex.Err != nil {
			PrintError(fmt.Sprintf("%s: %v", ex.Document.Name, ex.Err))
			failed++
			continue
		}
		PrintSuccess(fmt.Sprintf("%s → %s (%s)", ex.Document.Name, ex.Record.SupplierName, ex.Record.CurrencyCode))
		records = append(records, *ex.Record)
	}

	fmt.Printf("\n📦 %d records extracted, %d failed\n", len(records), failed)
	if len(records) == 0 {
		return fmt.Errorf("extraction produced no usable records")
	}

	// 6. Write records JSON
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	if extractOut == "" {
		fmt.Println()
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(extractOut, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", extractOut, err)
	}
	PrintSuccess(fmt.Sprintf("Wrote %s", extractOut))

	return nil
}
