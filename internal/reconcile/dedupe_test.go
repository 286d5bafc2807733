package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

func testDeduper() *Deduper {
	return NewDeduper(policy.Default().Dedupe)
}

func enriched(id, name, chain string, price, conf float64) model.EnrichedRecord {
	return model.EnrichedRecord{
		BaseRecord: model.BaseRecord{
			ID:    id,
			Name:  name,
			Chain: chain,
			Price: price,
		},
		HybridConfidence: conf,
		Provenance:       model.ProvenanceBulkOnly,
	}
}

func TestDedupe_KeyStableAcrossCaseAndWhitespace(t *testing.T) {
	d := testDeduper()

	a := enriched("a", "Chicken Breast", "shufersal", 24.9, 0.8)
	b := enriched("b", "chicken   breast", "shufersal", 24.91, 0.6)
	assert.Equal(t, d.Key(a), d.Key(b))

	out, removed := d.Dedupe([]model.EnrichedRecord{a, b})
	assert.Len(t, out, 1)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "a", out[0].ID)
}

func TestDedupe_PriceRoundedToOneDecimal(t *testing.T) {
	d := testDeduper()

	a := enriched("a", "steak", "mega", 50.04, 0.5)
	b := enriched("b", "steak", "mega", 50.01, 0.5)
	assert.Equal(t, d.Key(a), d.Key(b))

	c := enriched("c", "steak", "mega", 50.15, 0.5)
	assert.NotEqual(t, d.Key(a), d.Key(c))
}

func TestDedupe_NoPriceBucket(t *testing.T) {
	d := testDeduper()

	a := enriched("a", "steak", "mega", 0, 0.5)
	assert.Contains(t, d.Key(a), "no-price")
}

func TestDedupe_DifferentChainsKept(t *testing.T) {
	d := testDeduper()

	a := enriched("a", "steak", "mega", 50, 0.5)
	b := enriched("b", "steak", "victory", 50, 0.5)

	out, removed := d.Dedupe([]model.EnrichedRecord{a, b})
	assert.Len(t, out, 2)
	assert.Zero(t, removed)
}

func TestDedupe_HigherConfidenceWins(t *testing.T) {
	d := testDeduper()

	low := enriched("low", "steak", "mega", 50, 0.4)
	high := enriched("high", "steak", "mega", 50, 0.9)

	out, removed := d.Dedupe([]model.EnrichedRecord{low, high})
	assert.Len(t, out, 1)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "high", out[0].ID)
}

func TestDedupe_FirstSeenWinsOnExactTie(t *testing.T) {
	d := testDeduper()

	first := enriched("first", "steak", "mega", 50, 0.7)
	second := enriched("second", "steak", "mega", 50, 0.7)

	out, _ := d.Dedupe([]model.EnrichedRecord{first, second})
	assert.Equal(t, "first", out[0].ID)
}

func TestDedupe_Idempotent(t *testing.T) {
	d := testDeduper()

	in := []model.EnrichedRecord{
		enriched("a", "Chicken Breast", "shufersal", 24.9, 0.8),
		enriched("b", "chicken breast", "shufersal", 24.91, 0.6),
		enriched("c", "steak", "mega", 50, 0.5),
		enriched("d", "steak", "victory", 50, 0.5),
	}

	once, removedOnce := d.Dedupe(in)
	twice, removedTwice := d.Dedupe(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, removedOnce)
	assert.Zero(t, removedTwice)
}

func TestDedupe_PreservesFirstSeenOrder(t *testing.T) {
	d := testDeduper()

	in := []model.EnrichedRecord{
		enriched("a", "steak", "mega", 50, 0.2),
		enriched("b", "wings", "mega", 20, 0.9),
		enriched("c", "steak", "mega", 50, 0.8), // replaces a, keeps slot
	}

	out, _ := d.Dedupe(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

func TestDedupe_TruncatesLongNames(t *testing.T) {
	d := NewDeduper(policy.DedupePolicy{MaxNameRunes: 5})

	a := enriched("a", "abcde-one", "mega", 10, 0.5)
	b := enriched("b", "abcde-two", "mega", 10, 0.5)
	assert.Equal(t, d.Key(a), d.Key(b))
}
