package reconcile

import (
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// Matcher finds the best candidate for a target record using a weighted
// name/price/brand/category score on a 0-100 scale.
//
// The name measure is a deliberate token-overlap substring check, not edit
// distance. It systematically over-matches short names; kept as-is for
// behavioral compatibility with the established scoring.
type Matcher struct {
	pol policy.MatchingPolicy
}

// NewMatcher creates a Matcher from the matching policy.
func NewMatcher(pol policy.MatchingPolicy) *Matcher {
	return &Matcher{pol: pol}
}

// Match scores every candidate against the target and returns the best as
// a VerificationResult. Returns nil when no candidate reaches the minimum
// acceptance score; a best score exactly at the minimum is accepted.
func (m *Matcher) Match(target model.BaseRecord, candidates []model.CandidateRecord) *model.VerificationResult {
	if len(candidates) == 0 {
		return nil
	}

	var (
		best      *model.CandidateRecord
		bestScore float64
	)
	for i := range candidates {
		score := m.score(target, candidates[i])
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if bestScore < m.pol.MinScore {
		zap.L().Debug("matcher: no candidate above threshold",
			zap.String("record", target.ID),
			zap.Float64("best_score", bestScore),
			zap.Int("candidates", len(candidates)),
		)
		return nil
	}

	deltaPct, hasDelta := priceDeltaPercent(target.Price, best.Price)

	conf := m.pol.BaseConfidence
	if hasDelta {
		switch {
		case deltaPct < m.pol.TightDeltaPercent:
			conf += m.pol.TightDeltaBonus
		case deltaPct < m.pol.LooseDeltaPercent:
			conf += m.pol.LooseDeltaBonus
		}
		if deltaPct > m.pol.WildDeltaPercent {
			conf -= m.pol.WildDeltaPenalty
		}
	}
	if brandsMatch(target.Brand, best.Brand) {
		conf += m.pol.BrandConfidenceBonus
	}
	conf = clamp01(conf)

	return &model.VerificationResult{
		BaseRecordID:      target.ID,
		Candidate:         best,
		MatchScore:        bestScore,
		PriceDeltaPercent: deltaPct,
		Verified:          conf > m.pol.VerifiedThreshold,
		Confidence:        conf,
	}
}

// score computes the 0-100 weighted score, normalized to [0,1].
func (m *Matcher) score(target model.BaseRecord, c model.CandidateRecord) float64 {
	total := m.nameSimilarity(targetName(target), c.Name) * m.pol.NameWeight

	if target.Price > 0 && c.Price > 0 {
		maxPrice := math.Max(target.Price, c.Price)
		delta := math.Abs(target.Price - c.Price)
		total += math.Max(0, 1-2*delta/maxPrice) * m.pol.PriceWeight
	}

	if brandsMatch(target.Brand, c.Brand) {
		total += m.pol.BrandWeight
	}

	if target.Category != "" && target.Category == c.Category {
		total += m.pol.CategoryWeight
	}

	return total / 100
}

// nameSimilarity is the token-overlap measure: tokens of MinTokenRunes or
// fewer runes are dropped, a target token counts as matched when any
// candidate token contains it or is contained by it, and the ratio is
// taken against the larger token set.
func (m *Matcher) nameSimilarity(a, b string) float64 {
	ta := m.tokens(a)
	tb := m.tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	matched := 0
	for _, t := range ta {
		for _, u := range tb {
			if strings.Contains(u, t) || strings.Contains(t, u) {
				matched++
				break
			}
		}
	}

	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	return float64(matched) / float64(denom)
}

func (m *Matcher) tokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > m.pol.MinTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

func targetName(r model.BaseRecord) string {
	if r.NormalizedName != "" {
		return r.NormalizedName
	}
	return r.Name
}

func brandsMatch(a, b string) bool {
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// priceDeltaPercent is the absolute price delta relative to the target
// price. ok is false when either price is missing.
func priceDeltaPercent(target, candidate float64) (float64, bool) {
	if target <= 0 || candidate <= 0 {
		return 0, false
	}
	return math.Abs(target-candidate) / target * 100, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
