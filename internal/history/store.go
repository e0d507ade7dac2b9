// Package history persists comparison runs in Postgres for later audit.
// Run history is stored and read here and nowhere else.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

// ErrNotFound reports a run id with no stored row.
var ErrNotFound = errors.New("run not found")

// Store implements contracts.RunStore on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a run store on an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
	CREATE TABLE IF NOT EXISTS comparison_runs (
		id               TEXT PRIMARY KEY,
		created_at       TIMESTAMPTZ NOT NULL,
		config_hash      TEXT NOT NULL,
		supplier_count   INTEGER NOT NULL,
		excluded_count   INTEGER NOT NULL,
		best_supplier    TEXT NOT NULL DEFAULT '',
		narrative_status TEXT NOT NULL,
		result           JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comparison_runs_created_at
		ON comparison_runs (created_at);
`

// EnsureSchema creates the comparison_runs table when it does not exist yet.
// The statement is idempotent, so callers run it unconditionally at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure comparison_runs schema: %w", err)
	}
	return nil
}

// NewRun builds the persisted form of a comparison result.
func NewRun(result *contracts.ComparisonResult) *contracts.ComparisonRun {
	return &contracts.ComparisonRun{
		ID:              result.RunID,
		CreatedAt:       result.GeneratedAt,
		ConfigHash:      result.ConfigHash,
		SupplierCount:   result.Summary.SupplierCount,
		ExcludedCount:   result.Summary.ExcludedCount,
		BestSupplier:    result.Summary.BestSupplier,
		NarrativeStatus: result.NarrativeStatus,
		Result:          result,
	}
}

// Save writes a run, replacing any previous row with the same id.
func (s *Store) Save(ctx context.Context, run *contracts.ComparisonRun) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO comparison_runs (
			id, created_at, config_hash, supplier_count, excluded_count,
			best_supplier, narrative_status, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			config_hash = EXCLUDED.config_hash,
			supplier_count = EXCLUDED.supplier_count,
			excluded_count = EXCLUDED.excluded_count,
			best_supplier = EXCLUDED.best_supplier,
			narrative_status = EXCLUDED.narrative_status,
			result = EXCLUDED.result
	`

	_, err = s.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, run.ConfigHash, run.SupplierCount,
		run.ExcludedCount, run.BestSupplier, string(run.NarrativeStatus), resultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Get retrieves one run with its full result payload.
func (s *Store) Get(ctx context.Context, id string) (*contracts.ComparisonRun, error) {
	query := `
		SELECT id, created_at, config_hash, supplier_count, excluded_count,
		       best_supplier, narrative_status, result
		FROM comparison_runs
		WHERE id = $1
	`

	var run contracts.ComparisonRun
	var status string
	var resultJSON []byte

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.CreatedAt, &run.ConfigHash, &run.SupplierCount,
		&run.ExcludedCount, &run.BestSupplier, &status, &resultJSON,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	run.NarrativeStatus = contracts.NarrativeStatus(status)
	if len(resultJSON) > 0 {
		var result contracts.ComparisonResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		run.Result = &result
	}

	return &run, nil
}

// List returns the most recent runs without their result payloads, newest
// first. A non-positive limit falls back to 50.
func (s *Store) List(ctx context.Context, limit int) ([]*contracts.ComparisonRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, created_at, config_hash, supplier_count, excluded_count,
		       best_supplier, narrative_status
		FROM comparison_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*contracts.ComparisonRun, 0)

	for rows.Next() {
		var run contracts.ComparisonRun
		var status string

		err := rows.Scan(
			&run.ID, &run.CreatedAt, &run.ConfigHash, &run.SupplierCount,
			&run.ExcludedCount, &run.BestSupplier, &status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.NarrativeStatus = contracts.NarrativeStatus(status)
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// DeleteBefore removes runs created before the cutoff and reports how many
// rows went away.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM comparison_runs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs before %s: %w",
			cutoff.Format("2006-01-02"), err)
	}

	return tag.RowsAffected(), nil
}
