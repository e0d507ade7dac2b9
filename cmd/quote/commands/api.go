package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/api"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/api/handlers"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engine"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/recommend"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/database"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the comparison API server",
	Long: `Starts the REST API server.

This command serves:
- Scoring of quotation record batches
- Optional narrative synthesis per request
- Run history retrieval when a database is configured

Endpoints:
  GET  /health               - Health check
  POST /api/v1/compare       - Score a batch of records
  GET  /api/v1/runs          - List stored runs
  GET  /api/v1/runs/{id}     - Fetch one stored run

Example:
  go run ./cmd/quote api
  go run ./cmd/quote api --port 8085`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quote Engine API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to Redis (cache and rate limiting, optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	var (
		cache   *redis.Cache
		limiter *redis.RateLimiter
	)
	if rdb.Enabled() {
		cache = redis.NewCache(rdb, "quote")
		limiter = redis.NewRateLimiter(rdb, "quote")
		log.Info("Redis cache and rate limiting enabled")
	}

	// 4. Open run history store (optional)
	var store contracts.RunStore
	if cfg.History.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		s := history.NewStore(db.Pool)
		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureSchema(schemaCtx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		store = s

		log.Info("Run history enabled")
	}

	// 5. Load scoring methodology
	engCfg, _, err := loadScoringConfig(cfg)
	if err != nil {
		return err
	}

	// 6. Build comparators: numeric always, narrative only with an API key
	numericCfg := *engCfg
	numericCfg.Narrative.Enabled = false
	numeric, err := engine.New(&numericCfg, nil, log)
	if err != nil {
		return fmt.Errorf("build comparator: %w", err)
	}

	var narrative *engine.Comparator
	if cfg.LLM.APIKey != "" {
		narrativeCfg := *engCfg
		narrativeCfg.Narrative.Enabled = true
		synth := recommend.NewSynthesizer(cfg.LLM, cache, log)
		narrative, err = engine.New(&narrativeCfg, synth, log)
		if err != nil {
			return fmt.Errorf("build narrative comparator: %w", err)
		}
		log.Info("Narrative synthesis enabled")
	} else {
		log.Warn("LLM_API_KEY not set, narrative requests degrade to numeric results")
	}

	// 7. Create handlers
	compareHandler := handlers.NewCompareHandler(numeric, narrative, store, log)
	runsHandler := handlers.NewRunsHandler(store, log)

	// 8. Create router
	router := api.NewRouter(compareHandler, runsHandler, limiter, log)

	// 9. Create server
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/v1/compare")
	fmt.Println("  GET  /api/v1/runs")
	fmt.Println("  GET  /api/v1/runs/{id}")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
