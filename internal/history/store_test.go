package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

func fixtureResult(runID string, createdAt time.Time) *contracts.ComparisonResult {
	return &contracts.ComparisonResult{
		RunID:       runID,
		GeneratedAt: createdAt,
		ConfigHash:  "cfg123",
		Results: []contracts.CompositeResult{
			{Supplier: "Acme GmbH", Composite: 0.91, Rank: 1},
			{Supplier: "Beta Ltd", Composite: 0.42, Rank: 2},
		},
		Summary: contracts.Summary{
			SupplierCount: 3,
			ScoredCount:   2,
			ExcludedCount: 1,
			BestSupplier:  "Acme GmbH",
		},
		NarrativeStatus: contracts.NarrativeSkipped,
	}
}

func TestNewRun(t *testing.T) {
	result := fixtureResult("run_abc", time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))

	run := NewRun(result)

	assert.Equal(t, "run_abc", run.ID)
	assert.True(t, run.CreatedAt.Equal(result.GeneratedAt), "CreatedAt should mirror GeneratedAt")
	assert.Equal(t, "cfg123", run.ConfigHash)
	assert.Equal(t, 3, run.SupplierCount)
	assert.Equal(t, 1, run.ExcludedCount)
	assert.Equal(t, "Acme GmbH", run.BestSupplier)
	assert.Equal(t, contracts.NarrativeSkipped, run.NarrativeStatus)
	assert.Same(t, result, run.Result, "Result should reference the source result")
}

func testStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	require.NoError(t, store.EnsureSchema(context.Background()), "ensure schema failed")

	return store
}

func newRunID() string {
	return fmt.Sprintf("run_%s", uuid.NewString())
}

func TestSaveAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id := newRunID()
	run := NewRun(fixtureResult(id, time.Now().UTC().Truncate(time.Microsecond)))

	require.NoError(t, store.Save(ctx, run), "save failed")

	got, err := store.Get(ctx, id)
	require.NoError(t, err, "get failed")

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "cfg123", got.ConfigHash)
	assert.Equal(t, "Acme GmbH", got.BestSupplier)

	require.NotNil(t, got.Result, "get should return the full payload")
	assert.Len(t, got.Result.Results, 2)
	assert.Equal(t, "Acme GmbH", got.Result.Results[0].Supplier)
}

func TestGetNotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.Get(context.Background(), "run_does_not_exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplacesExisting(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id := newRunID()
	run := NewRun(fixtureResult(id, time.Now().UTC()))
	require.NoError(t, store.Save(ctx, run))

	run.BestSupplier = "Beta Ltd"
	require.NoError(t, store.Save(ctx, run), "second save should upsert")

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Beta Ltd", got.BestSupplier)
}

func TestListOmitsPayload(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id := newRunID()
	require.NoError(t, store.Save(ctx, NewRun(fixtureResult(id, time.Now().UTC()))))

	runs, err := store.List(ctx, 10)
	require.NoError(t, err, "list failed")
	require.NotEmpty(t, runs)

	found := false
	for _, run := range runs {
		assert.Nil(t, run.Result, "run %s carries a result payload in the listing", run.ID)
		if run.ID == id {
			found = true
		}
	}
	assert.True(t, found, "saved run should appear in the listing")
}

func TestDeleteBefore(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	old := newRunID()
	stale := NewRun(fixtureResult(old, time.Now().UTC().AddDate(0, 0, -30)))
	require.NoError(t, store.Save(ctx, stale))

	fresh := newRunID()
	require.NoError(t, store.Save(ctx, NewRun(fixtureResult(fresh, time.Now().UTC()))))

	deleted, err := store.DeleteBefore(ctx, time.Now().UTC().AddDate(0, 0, -7))
	require.NoError(t, err, "delete failed")
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = store.Get(ctx, old)
	assert.ErrorIs(t, err, ErrNotFound, "stale run should be gone")

	_, err = store.Get(ctx, fresh)
	assert.NoError(t, err, "fresh run should survive")
}
