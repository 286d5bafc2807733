// Package reconcile implements the multi-source reconciliation pipeline:
// verification-candidate selection, site resolution, fuzzy record matching,
// confidence fusion, deduplication, quality assessment, and the
// orchestrator that sequences them.
package reconcile

import (
	"math"
	"sort"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// Selector ranks base records by verification priority and returns the
// bounded subset worth spending a live browser lookup on.
type Selector struct {
	pol policy.SelectionPolicy

	highVolume map[string]bool
}

// NewSelector creates a Selector from the selection policy.
func NewSelector(pol policy.SelectionPolicy) *Selector {
	hv := make(map[string]bool, len(pol.HighVolumeChains))
	for _, c := range pol.HighVolumeChains {
		hv[c] = true
	}
	return &Selector{pol: pol, highVolume: hv}
}

// PriorityScore computes the additive priority score for one record.
// Each signal is an independent penalty/bonus; low-confidence and
// high-price signals stack.
func (s *Selector) PriorityScore(r model.BaseRecord) int {
	score := 0

	if r.Confidence < s.pol.LowConfidence {
		score += s.pol.LowConfidenceBoost
	}
	if r.Confidence < s.pol.VeryLowConfidence {
		score += s.pol.VeryLowConfidenceBoost
	}

	if r.Price > s.pol.HighPrice {
		score += s.pol.HighPriceBoost
	}
	if r.Price > s.pol.VeryHighPrice {
		score += s.pol.VeryHighPriceBoost
	}
	if r.Price > 0 && r.Price < s.pol.CheapPrice {
		// Suspiciously cheap: error cost is high relative to value.
		score += s.pol.CheapPriceBoost
	}

	if !r.HasBrand() {
		score += s.pol.MissingBrandBoost
	}
	if !r.HasUnitPrice() {
		score += s.pol.MissingUnitPriceBoost
	}

	if s.highVolume[r.Chain] {
		score += s.pol.HighVolumeChainBoost
	}

	return score
}

// Select returns the top-priority records, at most ceil(len*ratio) and at
// most hardCap. The sort is stable, so records with equal scores keep
// their input order. Pure function of its inputs and the policy.
func (s *Selector) Select(records []model.BaseRecord, ratio float64, hardCap int) []model.BaseRecord {
	if len(records) == 0 {
		return []model.BaseRecord{}
	}

	limit := int(math.Ceil(float64(len(records)) * ratio))
	if hardCap < limit {
		limit = hardCap
	}
	if limit <= 0 {
		return []model.BaseRecord{}
	}
	if limit > len(records) {
		limit = len(records)
	}

	ranked := make([]model.BaseRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.PriorityScore(ranked[i]) > s.PriorityScore(ranked[j])
	})

	return ranked[:limit]
}
