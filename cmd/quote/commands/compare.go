package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/docsource"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engine"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/export"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/extract"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/recommend"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/database"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/httputil"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Extract, score, and rank supplier quotations",
	Long: `Runs the full comparison pipeline over supplier quotations.

Input is either a directory of quotation documents (extraction runs
first), document URLs, or a JSON file of already extracted records.
Results are printed as a ranking table and exported as JSON, CSV,
and Excel.

Example:
  go run ./cmd/quote compare --docs ./quotes
  go run ./cmd/quote compare --records records.json --narrative
  go run ./cmd/quote compare --docs ./quotes --scoring-config custom.yaml --out ./results`,
	RunE: runCompare,
}

var (
	compareDocs      string
	compareURLs      []string
	compareRecords   string
	compareNarrative bool
	compareScoring   string
	compareOut       string
	compareName      string
	compareSave      bool
)

func init() {
	rootCmd.AddCommand(compareCmd)

	// Flags
	compareCmd.Flags().StringVar(&compareDocs, "docs", "", "directory of quotation documents")
	compareCmd.Flags().StringSliceVar(&compareURLs, "url", nil, "quotation document URL (repeatable)")
	compareCmd.Flags().StringVar(&compareRecords, "records", "", "JSON file of extracted records (skips extraction)")
	compareCmd.Flags().BoolVar(&compareNarrative, "narrative", false, "synthesize a written recommendation")
	compareCmd.Flags().StringVar(&compareScoring, "scoring-config", "", "scoring methodology YAML (default built-in)")
	compareCmd.Flags().StringVar(&compareOut, "out", "", "export directory (default EXPORT_DIR)")
	compareCmd.Flags().StringVar(&compareName, "name", "comparison", "base name for export files")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "persist the run to the history database")
}

func runCompare(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Supplier Quotation Comparison ===")

	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if compareOut != "" {
		cfg.ExportDir = compareOut
	}
	if compareScoring != "" {
		cfg.ScoringConfigPath = compareScoring
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (extraction and narrative cache, optional)
	cache, closeRedis := initCache(cfg, log)
	defer closeRedis()

	// 4. Gather the input batch
	records, err := gatherRecords(ctx, cfg, cache, log)
	if err != nil {
		return err
	}
	fmt.Printf("📦 %d quotation records\n", len(records))

	// 5. Load scoring methodology
	engCfg, rawCfg, err := loadScoringConfig(cfg)
	if err != nil {
		return err
	}
	engCfg.Narrative.Enabled = compareNarrative

	// 6. Narrative synthesizer, only with an API key
	var synth contracts.Synthesizer
	if compareNarrative {
		if cfg.LLM.APIKey == "" {
			PrintWarning("LLM_API_KEY not set, narrative will be skipped")
		} else {
			synth = recommend.NewSynthesizer(cfg.LLM, cache, log)
		}
	}

	// 7. Run the comparison
	comp, err := engine.New(engCfg, synth, log)
	if err != nil {
		return fmt.Errorf("build comparator: %w", err)
	}

	result, err := comp.Compare(ctx, records)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	// 8. Print ranking and summary
	printComparison(result)

	// 9. Export JSON, CSV, Excel, and the methodology snapshot
	exp := export.New(cfg.ExportDir, log)
	paths, err := exp.WriteAll(result, compareName)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	snap, err := engineconfig.NewSnapshot(engCfg, rawCfg)
	if err != nil {
		return fmt.Errorf("config snapshot: %w", err)
	}
	snapPath, err := exp.WriteSnapshot(snap, compareName+".methodology.json")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Println()
	for _, p := range append(paths, snapPath) {
		PrintSuccess(fmt.Sprintf("Exported %s", p))
	}

	// 10. Persist run history
	if compareSave || cfg.History.Enabled {
		if err := persistRun(ctx, cfg, result); err != nil {
			return err
		}
	}

	return nil
}

// gatherRecords returns the input batch: decoded from --records, or
// extracted from the documents named by --docs and --url.
func gatherRecords(ctx context.Context, cfg *config.Config, cache *redis.Cache, log *logger.Logger) ([]contracts.QuotationRecord, error) {
	if compareRecords != "" {
		return readRecordsFile(compareRecords)
	}

	docs, err := loadDocuments(ctx, cfg, log, compareDocs, compareURLs)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no input: pass --docs, --url, or --records")
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required to extract documents")
	}

	fmt.Printf("📄 Extracting %d documents...\n", len(docs))

	client := extract.NewClient(cfg.LLM, cache, log)

	records := make([]contracts.QuotationRecord, 0, len(docs))
	for _, ex := range client.ExtractAll(ctx, docs) {
		if ex.Err != nil {
			PrintWarning(fmt.Sprintf("%s: %v", ex.Document.Name, ex.Err))
			continue
		}
		records = append(records, *ex.Record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("extraction produced no usable records")
	}
	return records, nil
}

// loadDocuments reads quotation documents from a directory and fetches any
// URLs, in that order.
func loadDocuments(ctx context.Context, cfg *config.Config, log *logger.Logger, dir string, urls []string) ([]contracts.Document, error) {
	loader := docsource.New(httputil.New(cfg, log), log)

	var docs []contracts.Document
	if dir != "" {
		loaded, err := loader.LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		docs = append(docs, loaded...)
	}
	if len(urls) > 0 {
		fetched, err := loader.FetchAll(ctx, urls)
		if err != nil {
			return nil, fmt.Errorf("fetch documents: %w", err)
		}
		docs = append(docs, fetched...)
	}
	return docs, nil
}

// readRecordsFile decodes a JSON array of quotation records.
func readRecordsFile(path string) ([]contracts.QuotationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []contracts.QuotationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return records, nil
}

// loadScoringConfig resolves the scoring methodology: an explicit YAML file
// when configured, the built-in defaults otherwise. The second return is the
// raw file contents for snapshotting, empty for defaults.
func loadScoringConfig(cfg *config.Config) (*engineconfig.Config, string, error) {
	if cfg.ScoringConfigPath == "" {
		return engineconfig.Default(), "", nil
	}
	engCfg, raw, err := engineconfig.Load(cfg.ScoringConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("load scoring config: %w", err)
	}
	fmt.Printf("📋 Scoring config: %s\n", cfg.ScoringConfigPath)
	return engCfg, raw, nil
}

// initCache connects to Redis when enabled and returns the shared cache plus
// a close function. A missing or disabled Redis degrades to no caching.
func initCache(cfg *config.Config, log *logger.Logger) (*redis.Cache, func()) {
	client, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		return nil, func() {}
	}
	if !client.Enabled() {
		return nil, func() {}
	}
	return redis.NewCache(client, "quote"), func() { _ = client.Close() }
}

// persistRun saves the finished run for later retrieval over the API.
func persistRun(ctx context.Context, cfg *config.Config, result *contracts.ComparisonResult) error {
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := history.NewStore(db.Pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if err := store.Save(ctx, history.NewRun(result)); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Run %s saved", result.RunID))
	return nil
}

// printComparison renders the ranking table, exclusions, warnings, the
// summary block, and the narrative when present.
func printComparison(result *contracts.ComparisonResult) {
	fmt.Println()

	widths := []int{4, 24, 10, 14, 8}
	PrintTableHeader([]string{"Rank", "Supplier", "Composite", "TCO (EUR)", "Missing"}, widths)
	for i := range result.Results {
		r := &result.Results[i]

		tco := "-"
		if r.Cost.TCOEUR != nil {
			tco = fmt.Sprintf("%.2f", *r.Cost.TCOEUR)
		}
		missing := ""
		if r.MissingCount > 0 {
			missing = fmt.Sprintf("%d", r.MissingCount)
		}

		PrintTableRow([]string{
			fmt.Sprintf("%d", r.Rank),
			r.Supplier,
			fmt.Sprintf("%.4f", r.Composite),
			tco,
			missing,
		}, widths)
	}

	if len(result.Excluded) > 0 {
		fmt.Println()
		for _, ex := range result.Excluded {
			PrintWarning(fmt.Sprintf("excluded %s: %s", ex.Supplier, ex.Reason))
		}
	}
	for _, w := range result.Warnings {
		PrintWarning(fmt.Sprintf("%s: %s", w.Code, w.Message))
	}

	fmt.Println()
	PrintKeyValue("Run ID", result.RunID, 12)
	PrintKeyValue("Config hash", shortHash(result.ConfigHash), 12)
	PrintKeyValue("Methodology", result.Summary.Methodology, 12)
	PrintKeyValue("Suppliers", fmt.Sprintf("%d scored, %d excluded", result.Summary.ScoredCount, result.Summary.ExcludedCount), 12)
	if result.Summary.BestSupplier != "" {
		PrintKeyValue("Best", result.Summary.BestSupplier, 12)
	}

	if result.Narrative != nil {
		n := result.Narrative
		fmt.Println()
		PrintDoubleSeparator()
		fmt.Printf("  Recommendation: %s\n", n.RecommendedSupplier)
		PrintSeparator()
		fmt.Println(n.Reasoning)
		if len(n.KeyAdvantages) > 0 {
			fmt.Println("\n  Key advantages:")
			PrintList(n.KeyAdvantages)
		}
		if len(n.Considerations) > 0 {
			fmt.Println("\n  Considerations:")
			PrintList(n.Considerations)
		}
		if n.MissingDataImpact != "" {
			fmt.Printf("\n  Missing data: %s\n", n.MissingDataImpact)
		}
		if !n.MatchesRanking {
			PrintWarning("narrative pick disagrees with the computed ranking; the ranking is authoritative")
		}
	} else if compareNarrative && result.NarrativeStatus == contracts.NarrativeUnavailable {
		PrintWarning("narrative synthesis unavailable; numeric results are complete")
	}
}

// shortHash abbreviates a config hash for terminal output.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
