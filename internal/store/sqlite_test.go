package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusCollecting, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusVerifying))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusVerifying, got.Status)
	assert.Nil(t, got.Result)

	result := &model.ReconcileResult{
		RunID:   run.ID,
		Success: true,
		Status:  model.RunStatusDone,
		Quality: model.QualityReport{AvgConfidence: 0.82},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusDone, got.Status)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.Success)
	assert.InDelta(t, 0.82, got.Result.Quality.AvgConfidence, 1e-9)
}

func TestSQLite_UpdateRunResult_FailedRunKeepsFailedStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunResult(ctx, run.ID, &model.ReconcileResult{
		RunID:   run.ID,
		Success: false,
		Status:  model.RunStatusFailed,
		Errors:  []model.PipelineError{{Source: "pipeline", Message: "boom"}},
	}))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_RunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "no-such-run")
	require.Error(t, err)

	err = s.UpdateRunStatus(ctx, "no-such-run", model.RunStatusDone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx)
	require.NoError(t, err)
	second, err := s.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, second.ID, model.RunStatusDone))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, second.ID, done[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_ = first
}

func TestSQLite_Phases(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)

	phase, err := s.CreatePhase(ctx, run.ID, "collecting")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStatusRunning, phase.Status)

	require.NoError(t, s.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Name:     "collecting",
		Status:   model.PhaseStatusComplete,
		Duration: 1200,
		Metadata: map[string]any{"base_count": 42},
	}))

	err = s.CompletePhase(ctx, "no-such-phase", &model.PhaseResult{Status: model.PhaseStatusComplete})
	require.Error(t, err)
}

func TestSQLite_SaveProducts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx)
	require.NoError(t, err)

	products := []model.EnrichedRecord{
		{
			BaseRecord: model.BaseRecord{
				ID: "shufersal:1", Name: "אנטריקוט בקר", Chain: "shufersal",
				Category: "beef", Price: 89.90,
			},
			HybridConfidence: 0.74,
			Verified:         true,
			Provenance:       model.ProvenanceHybridVerified,
		},
		{
			BaseRecord: model.BaseRecord{
				ID: "mega:2", Name: "חזה עוף", Chain: "mega", Price: 39.90,
			},
			HybridConfidence: 0.42,
			Provenance:       model.ProvenanceBulkOnly,
		},
	}

	require.NoError(t, s.SaveProducts(ctx, run.ID, products))
	// Idempotent on re-save of the same run.
	require.NoError(t, s.SaveProducts(ctx, run.ID, products))
	require.NoError(t, s.SaveProducts(ctx, run.ID, nil))
}

func TestSQLite_SearchCache(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	miss, err := s.GetCachedSearch(ctx, "shufersal.co.il", "אנטריקוט")
	require.NoError(t, err)
	assert.Nil(t, miss)

	candidates := []model.CandidateRecord{
		{Name: "אנטריקוט בקר טרי", Price: 91.00, Site: "shufersal.co.il"},
	}
	require.NoError(t, s.SetCachedSearch(ctx, "shufersal.co.il", "אנטריקוט", candidates, time.Hour))

	hit, err := s.GetCachedSearch(ctx, "shufersal.co.il", "אנטריקוט")
	require.NoError(t, err)
	assert.Equal(t, candidates, hit)

	// Upsert replaces the previous entry for the same site+query.
	updated := []model.CandidateRecord{
		{Name: "אנטריקוט עגלה", Price: 119.90, Site: "shufersal.co.il"},
	}
	require.NoError(t, s.SetCachedSearch(ctx, "shufersal.co.il", "אנטריקוט", updated, time.Hour))

	hit, err = s.GetCachedSearch(ctx, "shufersal.co.il", "אנטריקוט")
	require.NoError(t, err)
	assert.Equal(t, updated, hit)

	// Expired entries are misses and get swept.
	require.NoError(t, s.SetCachedSearch(ctx, "mega.co.il", "עוף", candidates, -time.Hour))

	miss, err = s.GetCachedSearch(ctx, "mega.co.il", "עוף")
	require.NoError(t, err)
	assert.Nil(t, miss)

	n, err := s.DeleteExpiredSearches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
