package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/scheduler"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/scheduler/jobs"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/database"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the maintenance scheduler",
	Long: `Starts the maintenance scheduler or manages its jobs.

Registered jobs depend on configuration:
- run_retention: daily at 03:00 UTC, prunes stored runs past the
  retention window (requires HISTORY_ENABLED)
- extraction_cache_sweep: daily at 03:30 UTC, re-arms cache TTLs
  (requires REDIS_ENABLED)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job immediately
  status  - show job statistics

Example:
  go run ./cmd/quote scheduler start
  go run ./cmd/quote scheduler list
  go run ./cmd/quote scheduler run run_retention`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long: `Starts the scheduler and keeps it running until interrupted.

The scheduler can be stopped with Ctrl+C; running jobs finish first.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job statistics",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quote Engine Scheduler ===")

	// Initialize dependencies
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Registered jobs:")
	for jobName, stat := range stats {
		fmt.Printf("  - %s (%s)\n", jobName, stat.Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build the configured jobs
	jobList, err := initJobs(cfg, log)
	if err != nil {
		return err
	}

	for _, job := range jobList {
		if job.Name() != jobName {
			continue
		}

		fmt.Printf("Running job: %s\n", jobName)
		started := time.Now()

		if err := job.Run(context.Background()); err != nil {
			return fmt.Errorf("run job: %w", err)
		}

		PrintSuccess(fmt.Sprintf("Job %s completed in %.2fs", jobName, time.Since(started).Seconds()))
		return nil
	}

	return fmt.Errorf("job %s not found", jobName)
}

func showStatus(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

func initScheduler() (*scheduler.Scheduler, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build the maintenance jobs
	jobList, err := initJobs(cfg, log)
	if err != nil {
		return nil, err
	}
	if len(jobList) == 0 {
		return nil, fmt.Errorf("no maintenance jobs configured: enable HISTORY_ENABLED or REDIS_ENABLED")
	}

	// 4. Create scheduler and register jobs
	sched := scheduler.New(log)
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// initJobs builds every maintenance job the current configuration supports.
// Connections stay open for the life of the scheduler process.
func initJobs(cfg *config.Config, log *logger.Logger) ([]scheduler.Job, error) {
	var jobList []scheduler.Job

	// Run-history retention needs the database
	if cfg.History.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		store := history.NewStore(db.Pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		jobList = append(jobList, jobs.NewRetentionJob(store, cfg.History.RetentionDays, log))
	}

	// Cache sweeps need Redis
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if rdb.Enabled() {
		jobList = append(jobList, jobs.NewCacheSweepJob(rdb, "quote", log))
	}

	return jobList, nil
}
