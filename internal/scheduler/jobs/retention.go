// Package jobs holds the concrete maintenance jobs the scheduler runs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// RetentionJob deletes comparison runs older than the retention window.
type RetentionJob struct {
	store         contracts.RunStore
	retentionDays int
	logger        *logger.Logger
}

// NewRetentionJob creates a new run retention job
func NewRetentionJob(store contracts.RunStore, retentionDays int, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		store:         store,
		retentionDays: retentionDays,
		logger:        log,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "run_retention"
}

// Schedule returns the cron schedule (3 AM daily)
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run deletes runs created before the retention cutoff
func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete runs: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cutoff":  cutoff.Format("2006-01-02"),
		"deleted": deleted,
	}).Info("Run retention applied")

	return nil
}
