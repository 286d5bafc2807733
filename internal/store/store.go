// Package store persists run history for the ops surface. The pipeline
// itself carries no state between runs; the store records outcomes, final
// product sets, and a cross-run verifier search cache.
package store

import (
	"context"
	"time"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the reconciliation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.ReconcileResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Products
	SaveProducts(ctx context.Context, runID string, products []model.EnrichedRecord) error

	// Verifier search cache
	GetCachedSearch(ctx context.Context, site, query string) ([]model.CandidateRecord, error)
	SetCachedSearch(ctx context.Context, site, query string, candidates []model.CandidateRecord, ttl time.Duration) error
	DeleteExpiredSearches(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
