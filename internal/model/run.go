package model

import "time"

// RunStatus mirrors the orchestrator's state machine. Transitions are
// strictly sequential; failed is a parallel terminal reachable from any
// state.
type RunStatus string

const (
	RunStatusCollecting RunStatus = "collecting"
	RunStatusSelecting  RunStatus = "selecting"
	RunStatusVerifying  RunStatus = "verifying"
	RunStatusMerging    RunStatus = "merging"
	RunStatusDeduping   RunStatus = "deduping"
	RunStatusAssessing  RunStatus = "assessing"
	RunStatusDone       RunStatus = "done"
	RunStatusFailed     RunStatus = "failed"
)

// PhaseStatus is the outcome of a single pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusDegraded PhaseStatus = "degraded"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds per-phase bookkeeping for the final report.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PipelineError is a non-fatal error recorded during a run.
type PipelineError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// GradeDistribution counts records per confidence band. Bucket boundaries
// are half-open except the top: excellent >= 0.9, good [0.7, 0.9),
// fair [0.5, 0.7), poor < 0.5.
type GradeDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

// QualityReport aggregates statistics over the final deduplicated set.
type QualityReport struct {
	AvgConfidence   float64           `json:"avg_confidence"`
	UniqueChains    int               `json:"unique_chains"`
	VerifiedCount   int               `json:"verified_count"`
	CompleteCount   int               `json:"complete_count"`
	CoveragePercent float64           `json:"coverage_percent"`
	Grades          GradeDistribution `json:"grades"`
}

// ReconcileResult is the structured output of one pipeline run.
type ReconcileResult struct {
	RunID    string           `json:"run_id"`
	Success  bool             `json:"success"`
	Status   RunStatus        `json:"status"`
	Products []EnrichedRecord `json:"products"`
	Errors   []PipelineError  `json:"errors,omitempty"`
	Phases   []PhaseResult    `json:"phases"`
	Quality  QualityReport    `json:"quality_report"`

	BaseCount     int `json:"base_count"`
	SelectedCount int `json:"selected_count"`
	VerifiedCount int `json:"verified_count"`
	RemovedCount  int `json:"removed_count"`
}

// ProductCount returns the number of products in the final set.
func (r *ReconcileResult) ProductCount() int { return len(r.Products) }

// Run is a stored reconciliation run for the ops surface. The pipeline
// itself is self-contained per run; the store only records outcomes.
type Run struct {
	ID        string           `json:"id"`
	Status    RunStatus        `json:"status"`
	Result    *ReconcileResult `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RunPhase is a stored phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}
