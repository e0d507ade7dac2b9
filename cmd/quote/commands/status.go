package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/database"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and connectivity",
	Long: `Prints the effective configuration and checks every configured
backing service.

Checks:
- Scoring methodology (source, hash, weights)
- Model provider settings
- PostgreSQL (when run history is enabled)
- Redis (when caching is enabled)

Example:
  go run ./cmd/quote status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quote Engine Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 2. Configuration summary
	fmt.Println("\n⚙️  Configuration")
	PrintSeparator()
	PrintKeyValue("Environment", cfg.Env, 12)
	PrintKeyValue("Port", cfg.Port, 12)
	PrintKeyValue("Export dir", cfg.ExportDir, 12)
	PrintKeyValue("Log level", cfg.LogLevel, 12)

	// 3. Scoring methodology
	source := "built-in defaults"
	engCfg := engineconfig.Default()
	if cfg.ScoringConfigPath != "" {
		engCfg, _, err = engineconfig.Load(cfg.ScoringConfigPath)
		if err != nil {
			return fmt.Errorf("load scoring config: %w", err)
		}
		source = cfg.ScoringConfigPath
	}
	hash, err := engineconfig.Hash(engCfg)
	if err != nil {
		return fmt.Errorf("config hash: %w", err)
	}

	fmt.Println("\n📋 Scoring")
	PrintSeparator()
	PrintKeyValue("Methodology", fmt.Sprintf("%s (v%s)", engCfg.Meta.MethodologyID, engCfg.Meta.Version), 12)
	PrintKeyValue("Source", source, 12)
	PrintKeyValue("Hash", shortHash(hash), 12)
	w := engCfg.Weights
	PrintKeyValue("Weights", fmt.Sprintf("tco %.2f, delivery %.2f, payment %.2f, tooling %.2f, moq %.2f",
		w.TCO, w.Delivery, w.Payment, w.Tooling, w.MOQ), 12)

	// 4. Model provider
	fmt.Println("\n🤖 Model Provider")
	PrintSeparator()
	PrintKeyValue("Provider", cfg.LLM.Provider, 12)
	PrintKeyValue("Base URL", cfg.LLM.ResolvedBaseURL(), 12)
	PrintKeyValue("Extract", cfg.LLM.ExtractModel, 12)
	PrintKeyValue("Narrative", cfg.LLM.NarrativeModel, 12)
	if cfg.LLM.APIKey != "" {
		PrintKeyValue("API key", "set", 12)
	} else {
		PrintKeyValue("API key", "missing (extraction and narrative disabled)", 12)
	}

	// 5. Connectivity
	fmt.Println("\n🔌 Connectivity")
	PrintSeparator()
	checkDatabase(ctx, cfg)
	checkRedis(cfg)

	return nil
}

// checkDatabase pings PostgreSQL and reports how many runs are stored.
func checkDatabase(ctx context.Context, cfg *config.Config) {
	if !cfg.History.Enabled {
		PrintInfo("PostgreSQL: disabled (HISTORY_ENABLED=false)")
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		PrintError(fmt.Sprintf("PostgreSQL: %v", err))
		return
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("PostgreSQL: %v", err))
		return
	}

	var runs int64
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM comparison_runs`).Scan(&runs); err != nil {
		PrintSuccess(fmt.Sprintf("PostgreSQL: ok in %v (schema not initialized)", health.ResponseTime.Round(time.Millisecond)))
		return
	}
	PrintSuccess(fmt.Sprintf("PostgreSQL: ok in %v (%d runs stored)", health.ResponseTime.Round(time.Millisecond), runs))
}

// checkRedis pings Redis. New pings internally, so construction succeeding
// means the server answered.
func checkRedis(cfg *config.Config) {
	if !cfg.Redis.Enabled {
		PrintInfo("Redis: disabled (REDIS_ENABLED=false)")
		return
	}

	client, err := redis.New(cfg)
	if err != nil {
		PrintError(fmt.Sprintf("Redis: %v", err))
		return
	}
	defer client.Close()

	PrintSuccess(fmt.Sprintf("Redis: ok (%s:%s)", cfg.Redis.Host, cfg.Redis.Port))
}
