package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/database"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Data cleanup tools",
	Long: `Performs database cleanup tasks.

Example:
  quote cleanup runs
  quote cleanup runs --days 30`,
}

var cleanupRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Prune old comparison runs",
	Long: `Deletes stored comparison runs older than the retention window.

The window defaults to HISTORY_RETENTION_DAYS and can be overridden
with --days. The scheduler runs the same pruning nightly; this command
is for running it on demand.

Example:
  quote cleanup runs --days 30`,
	RunE: runCleanupRuns,
}

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.AddCommand(cleanupRunsCmd)

	cleanupRunsCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (default HISTORY_RETENTION_DAYS)")
}

func runCleanupRuns(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Comparison Run Cleanup ===")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}

	days := cleanupDays
	if days <= 0 {
		days = cfg.History.RetentionDays
	}

	// Create database connection
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := history.NewStore(db.Pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("❌ Failed to ensure schema: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	// Count records before cleanup
	var beforeCount int64
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM comparison_runs WHERE created_at < $1
	`, cutoff).Scan(&beforeCount)
	if err != nil {
		return fmt.Errorf("❌ Failed to count runs: %w", err)
	}

	fmt.Printf("📊 Found %d runs older than %s (%d days)\n", beforeCount, cutoff.Format("2006-01-02"), days)

	if beforeCount == 0 {
		fmt.Println("✅ No runs to clean up")
		return nil
	}

	// Delete old runs
	fmt.Println("🗑️ Deleting old runs...")
	deleted, err := store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("❌ Failed to delete runs: %w", err)
	}

	fmt.Printf("✅ Deleted %d runs\n", deleted)

	// Count remaining runs
	var afterCount int64
	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM comparison_runs`).Scan(&afterCount)
	if err != nil {
		return fmt.Errorf("❌ Failed to count remaining runs: %w", err)
	}

	fmt.Printf("📊 Remaining runs: %d\n", afterCount)
	fmt.Println("\n✅ Cleanup complete!")

	return nil
}
