package reconcile

import (
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// Assessor computes the final quality report over the deduplicated set.
type Assessor struct {
	pol policy.QualityPolicy
}

// NewAssessor creates an Assessor from the quality policy.
func NewAssessor(pol policy.QualityPolicy) *Assessor {
	return &Assessor{pol: pol}
}

// Assess aggregates confidence, coverage, and completeness statistics.
// An empty input yields a zero report.
func (a *Assessor) Assess(records []model.EnrichedRecord) model.QualityReport {
	report := model.QualityReport{}
	if len(records) == 0 {
		return report
	}

	chains := make(map[string]bool)
	sum := 0.0

	for _, r := range records {
		sum += r.HybridConfidence
		chains[r.Chain] = true

		if r.Provenance == model.ProvenanceHybridVerified {
			report.VerifiedCount++
		}
		if r.IsComplete() {
			report.CompleteCount++
		}

		switch {
		case r.HybridConfidence >= a.pol.ExcellentThreshold:
			report.Grades.Excellent++
		case r.HybridConfidence >= a.pol.GoodThreshold:
			report.Grades.Good++
		case r.HybridConfidence >= a.pol.FairThreshold:
			report.Grades.Fair++
		default:
			report.Grades.Poor++
		}
	}

	report.AvgConfidence = sum / float64(len(records))
	report.UniqueChains = len(chains)

	if a.pol.AssumedTotalChains > 0 {
		coverage := float64(report.UniqueChains) / float64(a.pol.AssumedTotalChains) * 100
		if coverage > 100 {
			coverage = 100
		}
		report.CoveragePercent = coverage
	}

	return report
}
