package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/hebrew"
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// Deduper collapses records that represent the same physical product:
// same chain, same cleaned name, same price rounded to one decimal.
type Deduper struct {
	pol policy.DedupePolicy
}

// NewDeduper creates a Deduper from the dedupe policy.
func NewDeduper(pol policy.DedupePolicy) *Deduper {
	return &Deduper{pol: pol}
}

// Key derives the deduplication key for a record. Records sharing a key
// are considered the same physical product.
func (d *Deduper) Key(r model.EnrichedRecord) string {
	name := r.NormalizedName
	if name == "" {
		name = hebrew.Normalize(r.Name)
	}
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if d.pol.MaxNameRunes > 0 {
		runes := []rune(name)
		if len(runes) > d.pol.MaxNameRunes {
			name = string(runes[:d.pol.MaxNameRunes])
		}
	}

	priceKey := "no-price"
	if r.Price > 0 {
		priceKey = fmt.Sprintf("%.1f", r.Price)
	}

	return r.Chain + "|" + name + "|" + priceKey
}

// Dedupe returns the deduplicated list in first-seen key order plus the
// number of records discarded. On a key collision the incumbent survives
// unless the incoming record's hybrid confidence is strictly greater, so
// first-seen wins on an exact tie.
func (d *Deduper) Dedupe(records []model.EnrichedRecord) ([]model.EnrichedRecord, int) {
	kept := make(map[string]model.EnrichedRecord, len(records))
	order := make([]string, 0, len(records))
	removed := 0

	for _, r := range records {
		key := d.Key(r)
		incumbent, ok := kept[key]
		if !ok {
			kept[key] = r
			order = append(order, key)
			continue
		}

		removed++
		if r.HybridConfidence > incumbent.HybridConfidence {
			zap.L().Debug("dedupe: replacing lower-confidence duplicate",
				zap.String("key", key),
				zap.String("kept", r.ID),
				zap.String("dropped", incumbent.ID),
			)
			kept[key] = r
		} else {
			zap.L().Debug("dedupe: dropping duplicate",
				zap.String("key", key),
				zap.String("dropped", r.ID),
			)
		}
	}

	out := make([]model.EnrichedRecord, 0, len(order))
	for _, key := range order {
		out = append(out, kept[key])
	}
	return out, removed
}
