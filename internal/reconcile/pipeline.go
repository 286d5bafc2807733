package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// BulkSource provides the low-confidence base catalog. It may return a
// partial list together with a non-nil error; whatever records arrived are
// still processed.
type BulkSource interface {
	FetchBaseRecords(ctx context.Context) ([]model.BaseRecord, error)
}

// Verifier performs high-confidence live lookups against retail sites.
type Verifier interface {
	// AvailableSites lists the sites the verifier can currently navigate.
	AvailableSites() []string
	// SearchSite scrapes candidate records for a query from one site.
	SearchSite(ctx context.Context, site, query string) ([]model.CandidateRecord, error)
}

// RunRecorder persists run outcomes for the ops surface. The pipeline
// itself carries no state between runs; a nil recorder disables recording.
type RunRecorder interface {
	CreateRun(ctx context.Context) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.ReconcileResult) error
	CreatePhase(ctx context.Context, runID, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error
}

// Options bounds one reconciliation run.
type Options struct {
	// SelectRatio is the fraction of base records sent to verification.
	SelectRatio float64
	// HardCap bounds the verification subset regardless of ratio.
	HardCap int
	// Workers is the number of parallel verification contexts. One worker
	// reproduces the strictly-serialized behavior of a single browser page.
	Workers int
	// SearchTimeout bounds each verifier call.
	SearchTimeout time.Duration
	// DefaultSite is the fallback verification site.
	DefaultSite string
}

// Pipeline sequences the reconciliation phases:
// collecting → selecting → verifying → merging → deduping → assessing → done,
// with failed as a parallel terminal for invariant breaks. Phase failures
// are recorded and the run continues with that phase's output empty.
type Pipeline struct {
	opts     Options
	bulk     BulkSource
	verifier Verifier
	recorder RunRecorder

	selector *Selector
	resolver *Resolver
	matcher  *Matcher
	fuser    *Fuser
	deduper  *Deduper
	assessor *Assessor
}

// NewPipeline wires a Pipeline from its collaborators and the policy.
// recorder may be nil.
func NewPipeline(pol policy.Policy, opts Options, bulk BulkSource, verifier Verifier, recorder RunRecorder) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 30 * time.Second
	}
	return &Pipeline{
		opts:     opts,
		bulk:     bulk,
		verifier: verifier,
		recorder: recorder,
		selector: NewSelector(pol.Selection),
		resolver: NewResolver(opts.DefaultSite),
		matcher:  NewMatcher(pol.Matching),
		fuser:    NewFuser(pol.Fusion),
		deduper:  NewDeduper(pol.Dedupe),
		assessor: NewAssessor(pol.Quality),
	}
}

// Run executes one full reconciliation run. Partial failure is non-fatal:
// the result carries whatever could be reconciled plus the error list.
// A panic inside a phase maps to the failed terminal state and is returned
// as an error alongside the partial stats collected so far.
func (p *Pipeline) Run(ctx context.Context) (result *model.ReconcileResult, err error) {
	runID := uuid.NewString()
	if p.recorder != nil {
		if run, createErr := p.recorder.CreateRun(ctx); createErr == nil {
			runID = run.ID
		} else {
			zap.L().Warn("pipeline: create run failed", zap.Error(createErr))
		}
	}

	log := zap.L().With(zap.String("run_id", runID))
	log.Info("pipeline: starting reconciliation run")

	result = &model.ReconcileResult{
		RunID:    runID,
		Success:  true,
		Products: []model.EnrichedRecord{},
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = model.RunStatusFailed
			result.Success = false
			err = eris.Errorf("pipeline: invariant violated: %v", r)
			log.Error("pipeline: run failed", zap.Any("panic", r))
			p.record(ctx, runID, model.RunStatusFailed, result)
		}
	}()

	run := &runState{pipeline: p, ctx: ctx, runID: runID, result: result, log: log}

	var (
		base          []model.BaseRecord
		collectFailed bool
	)
	run.phase(model.RunStatusCollecting, func(md map[string]any) {
		records, fetchErr := p.bulk.FetchBaseRecords(ctx)
		base = records
		if fetchErr != nil {
			collectFailed = true
			run.fail("bulk", fetchErr)
		}
		md["base_count"] = len(base)
	})
	result.BaseCount = len(base)

	var selected []model.BaseRecord
	run.phase(model.RunStatusSelecting, func(md map[string]any) {
		selected = p.selector.Select(base, p.opts.SelectRatio, p.opts.HardCap)
		md["selected_count"] = len(selected)
	})
	result.SelectedCount = len(selected)

	verifications := map[string]*model.VerificationResult{}
	run.phase(model.RunStatusVerifying, func(md map[string]any) {
		verifications = run.verify(selected)
		md["attempted"] = len(selected)
		md["matched"] = len(verifications)
	})

	var enriched []model.EnrichedRecord
	run.phase(model.RunStatusMerging, func(md map[string]any) {
		enriched = make([]model.EnrichedRecord, 0, len(base))
		for _, r := range base {
			enriched = append(enriched, p.fuser.Fuse(r, verifications[r.ID]))
		}
		md["merged_count"] = len(enriched)
	})

	run.phase(model.RunStatusDeduping, func(md map[string]any) {
		var removed int
		enriched, removed = p.deduper.Dedupe(enriched)
		result.RemovedCount = removed
		md["removed_count"] = removed
	})
	result.Products = enriched

	run.phase(model.RunStatusAssessing, func(md map[string]any) {
		result.Quality = p.assessor.Assess(result.Products)
		md["avg_confidence"] = result.Quality.AvgConfidence
	})
	result.VerifiedCount = result.Quality.VerifiedCount

	if run.cancelled {
		result.Success = false
		p.record(ctx, runID, result.Status, result)
		log.Warn("pipeline: run cancelled", zap.String("last_status", string(result.Status)))
		return result, ctx.Err()
	}

	// A run with no usable output at all is the only non-success outcome;
	// an empty but error-free catalog still completes successfully.
	if collectFailed && len(base) == 0 {
		result.Success = false
	}

	result.Status = model.RunStatusDone
	p.record(context.WithoutCancel(ctx), runID, model.RunStatusDone, result)

	log.Info("pipeline: run complete",
		zap.Bool("success", result.Success),
		zap.Int("products", result.ProductCount()),
		zap.Int("verified", result.VerifiedCount),
		zap.Int("removed", result.RemovedCount),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

func (p *Pipeline) record(ctx context.Context, runID string, status model.RunStatus, result *model.ReconcileResult) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: update run status failed", zap.Error(err))
	}
	if status == model.RunStatusDone || status == model.RunStatusFailed {
		if err := p.recorder.UpdateRunResult(ctx, runID, result); err != nil {
			zap.L().Warn("pipeline: save run result failed", zap.Error(err))
		}
	}
}

// runState carries the per-run bookkeeping shared by the phase helpers.
type runState struct {
	pipeline  *Pipeline
	ctx       context.Context
	runID     string
	result    *model.ReconcileResult
	log       *zap.Logger
	cancelled bool

	mu sync.Mutex
}

// phase advances the state machine one step. A phase is skipped once the
// run is cancelled; transitions are never revisited.
func (s *runState) phase(status model.RunStatus, fn func(md map[string]any)) {
	name := string(status)

	if s.cancelled || s.ctx.Err() != nil {
		s.cancelled = true
		s.result.Phases = append(s.result.Phases, model.PhaseResult{
			Name:   name,
			Status: model.PhaseStatusSkipped,
		})
		return
	}

	s.result.Status = status
	if s.pipeline.recorder != nil {
		if err := s.pipeline.recorder.UpdateRunStatus(s.ctx, s.runID, status); err != nil {
			s.log.Warn("pipeline: update run status failed", zap.Error(err))
		}
	}

	var stored *model.RunPhase
	if s.pipeline.recorder != nil {
		var err error
		if stored, err = s.pipeline.recorder.CreatePhase(s.ctx, s.runID, name); err != nil {
			s.log.Warn("pipeline: create phase failed", zap.String("phase", name), zap.Error(err))
		}
	}

	errsBefore := len(s.result.Errors)
	start := time.Now()
	md := make(map[string]any)
	fn(md)

	phase := model.PhaseResult{
		Name:     name,
		Status:   model.PhaseStatusComplete,
		Duration: time.Since(start).Milliseconds(),
		Metadata: md,
	}
	if len(s.result.Errors) > errsBefore {
		phase.Status = model.PhaseStatusDegraded
	}
	s.result.Phases = append(s.result.Phases, phase)

	if stored != nil {
		if err := s.pipeline.recorder.CompletePhase(s.ctx, stored.ID, &phase); err != nil {
			s.log.Warn("pipeline: complete phase failed", zap.String("phase", name), zap.Error(err))
		}
	}

	s.log.Info("pipeline: phase complete",
		zap.String("phase", name),
		zap.String("status", string(phase.Status)),
		zap.Int64("duration_ms", phase.Duration),
	)
}

// fail records a non-fatal error; the run continues.
func (s *runState) fail(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result.Errors = append(s.result.Errors, model.PipelineError{
		Source:  source,
		Message: err.Error(),
	})
	s.log.Warn("pipeline: phase error recorded",
		zap.String("source", source),
		zap.Error(err),
	)
}

// verify runs the verification subset through the resolver, the verifier,
// and the matcher. With multiple workers, results land in a map keyed by
// record ID, so the merge phase is deterministic regardless of completion
// order; the verifier's own rate limiter preserves per-site pacing.
func (s *runState) verify(selected []model.BaseRecord) map[string]*model.VerificationResult {
	results := make(map[string]*model.VerificationResult, len(selected))
	if len(selected) == 0 {
		return results
	}

	available := make(map[string]bool)
	for _, site := range s.pipeline.verifier.AvailableSites() {
		available[site] = true
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(s.ctx)
	g.SetLimit(s.pipeline.opts.Workers)

	for _, rec := range selected {
		g.Go(func() error {
			site, ok := s.pipeline.resolver.Resolve(rec.Chain, available)
			if !ok {
				s.log.Debug("verify: no site available", zap.String("record", rec.ID))
				return nil
			}

			query := rec.Category
			if query == "" {
				query = targetName(rec)
			}

			searchCtx, cancel := context.WithTimeout(gCtx, s.pipeline.opts.SearchTimeout)
			candidates, err := s.pipeline.verifier.SearchSite(searchCtx, site, query)
			cancel()
			if err != nil {
				// Timeouts and navigation failures alike: no verification
				// for this record, run continues.
				s.fail("verify:"+rec.ID, err)
				return nil
			}

			if vr := s.pipeline.matcher.Match(rec, candidates); vr != nil {
				mu.Lock()
				results[rec.ID] = vr
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
