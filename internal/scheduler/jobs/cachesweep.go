package jobs

import (
	"context"
	"fmt"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// CacheSweepJob walks the extraction cache and re-arms expiry on entries
// that lost their TTL, so an interrupted write can never pin a cached
// extraction forever.
type CacheSweepJob struct {
	client  *redis.Client
	pattern string
	logger  *logger.Logger
}

// NewCacheSweepJob creates a new extraction cache sweep job. prefix is the
// cache namespace the extraction client writes under.
func NewCacheSweepJob(client *redis.Client, prefix string, log *logger.Logger) *CacheSweepJob {
	return &CacheSweepJob{
		client:  client,
		pattern: fmt.Sprintf("%s:cache:extraction:*", prefix),
		logger:  log,
	}
}

// Name returns the job name
func (j *CacheSweepJob) Name() string {
	return "extraction_cache_sweep"
}

// Schedule returns the cron schedule (3:30 AM daily, after run retention)
func (j *CacheSweepJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run scans extraction cache keys and sets the standard TTL on any key that
// has none. EXPIRE NX leaves keys with a live TTL untouched.
func (j *CacheSweepJob) Run(ctx context.Context) error {
	if !j.client.Enabled() {
		j.logger.Debug("Redis disabled, skipping cache sweep")
		return nil
	}

	rdb := j.client.Redis()

	var scanned, armed int
	iter := rdb.Scan(ctx, 0, j.pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		scanned++

		set, err := rdb.ExpireNX(ctx, key, redis.TTLExtraction).Result()
		if err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
		if set {
			armed++
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", j.pattern, err)
	}

	if armed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"scanned": scanned,
			"armed":   armed,
		}).Info("Extraction cache swept")
	} else {
		j.logger.WithField("scanned", scanned).Debug("Extraction cache swept")
	}

	return nil
}
