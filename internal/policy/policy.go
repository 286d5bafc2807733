// Package policy holds the reconciliation weights and thresholds as one
// immutable value passed into each component constructor. Defaults are the
// production business policy; a YAML file can override them for testing
// with alternate weights.
package policy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy is the full reconciliation policy.
type Policy struct {
	Selection SelectionPolicy `yaml:"selection"`
	Matching  MatchingPolicy  `yaml:"matching"`
	Fusion    FusionPolicy    `yaml:"fusion"`
	Dedupe    DedupePolicy    `yaml:"dedupe"`
	Quality   QualityPolicy   `yaml:"quality"`
}

// SelectionPolicy drives verification-candidate priority scoring. Each
// field is an additive penalty/bonus, not a probability.
type SelectionPolicy struct {
	LowConfidence          float64  `yaml:"low_confidence"` // below this: +LowConfidenceBoost
	LowConfidenceBoost     int      `yaml:"low_confidence_boost"`
	VeryLowConfidence      float64  `yaml:"very_low_confidence"` // below this: additional boost (stacks)
	VeryLowConfidenceBoost int      `yaml:"very_low_confidence_boost"`
	HighPrice              float64  `yaml:"high_price"`
	HighPriceBoost         int      `yaml:"high_price_boost"`
	VeryHighPrice          float64  `yaml:"very_high_price"`
	VeryHighPriceBoost     int      `yaml:"very_high_price_boost"`
	CheapPrice             float64  `yaml:"cheap_price"`
	CheapPriceBoost        int      `yaml:"cheap_price_boost"`
	MissingBrandBoost      int      `yaml:"missing_brand_boost"`
	MissingUnitPriceBoost  int      `yaml:"missing_unit_price_boost"`
	HighVolumeChains       []string `yaml:"high_volume_chains"`
	HighVolumeChainBoost   int      `yaml:"high_volume_chain_boost"`
}

// MatchingPolicy drives fuzzy record matching and verification confidence.
type MatchingPolicy struct {
	NameWeight     float64 `yaml:"name_weight"`
	PriceWeight    float64 `yaml:"price_weight"`
	BrandWeight    float64 `yaml:"brand_weight"`
	CategoryWeight float64 `yaml:"category_weight"`

	// MinScore is the hard minimum-acceptance threshold on the normalized
	// [0,1] scale. A best score exactly at the threshold is accepted.
	MinScore float64 `yaml:"min_score"`

	// MinTokenRunes: name tokens of this many runes or fewer are dropped
	// before the substring-overlap check.
	MinTokenRunes int `yaml:"min_token_runes"`

	BaseConfidence       float64 `yaml:"base_confidence"`     // "a plausible match was found at all"
	TightDeltaPercent    float64 `yaml:"tight_delta_percent"` // below: +TightDeltaBonus
	TightDeltaBonus      float64 `yaml:"tight_delta_bonus"`
	LooseDeltaPercent    float64 `yaml:"loose_delta_percent"` // below: +LooseDeltaBonus (exclusive with tight)
	LooseDeltaBonus      float64 `yaml:"loose_delta_bonus"`
	WildDeltaPercent     float64 `yaml:"wild_delta_percent"`  // above: WildDeltaPenalty
	WildDeltaPenalty     float64 `yaml:"wild_delta_penalty"`
	BrandConfidenceBonus float64 `yaml:"brand_confidence_bonus"`
	VerifiedThreshold    float64 `yaml:"verified_threshold"` // strictly greater means verified
}

// FusionPolicy drives hybrid-confidence fusion.
type FusionPolicy struct {
	BulkWeight         float64 `yaml:"bulk_weight"`
	VerificationWeight float64 `yaml:"verification_weight"`
	BrandBonus         float64 `yaml:"brand_bonus"`
	UnitPriceBonus     float64 `yaml:"unit_price_bonus"`
	BarcodeBonus       float64 `yaml:"barcode_bonus"`
	TextQualityBonus   float64 `yaml:"text_quality_bonus"`
}

// DedupePolicy drives deduplication-key construction.
type DedupePolicy struct {
	// MaxNameRunes truncates the cleaned name component of the key.
	MaxNameRunes int `yaml:"max_name_runes"`
}

// QualityPolicy drives the final quality report.
type QualityPolicy struct {
	// AssumedTotalChains is the chain universe size used for coverage.
	AssumedTotalChains int     `yaml:"assumed_total_chains"`
	ExcellentThreshold float64 `yaml:"excellent_threshold"`
	GoodThreshold      float64 `yaml:"good_threshold"`
	FairThreshold      float64 `yaml:"fair_threshold"`
}

// Default returns the production reconciliation policy.
func Default() Policy {
	return Policy{
		Selection: SelectionPolicy{
			LowConfidence:          0.7,
			LowConfidenceBoost:     30,
			VeryLowConfidence:      0.5,
			VeryLowConfidenceBoost: 20,
			HighPrice:              100,
			HighPriceBoost:         20,
			VeryHighPrice:          200,
			VeryHighPriceBoost:     30,
			CheapPrice:             10,
			CheapPriceBoost:        25,
			MissingBrandBoost:      15,
			MissingUnitPriceBoost:  10,
			HighVolumeChains:       []string{"shufersal", "rami-levy", "victory", "mega"},
			HighVolumeChainBoost:   10,
		},
		Matching: MatchingPolicy{
			NameWeight:           40,
			PriceWeight:          30,
			BrandWeight:          20,
			CategoryWeight:       10,
			MinScore:             0.5,
			MinTokenRunes:        2,
			BaseConfidence:       0.7,
			TightDeltaPercent:    10,
			TightDeltaBonus:      0.2,
			LooseDeltaPercent:    20,
			LooseDeltaBonus:      0.1,
			WildDeltaPercent:     50,
			WildDeltaPenalty:     0.3,
			BrandConfidenceBonus: 0.1,
			VerifiedThreshold:    0.6,
		},
		Fusion: FusionPolicy{
			BulkWeight:         0.7,
			VerificationWeight: 0.3,
			BrandBonus:         0.02,
			UnitPriceBonus:     0.02,
			BarcodeBonus:       0.01,
			TextQualityBonus:   0.05,
		},
		Dedupe: DedupePolicy{
			MaxNameRunes: 50,
		},
		Quality: QualityPolicy{
			AssumedTotalChains: 8,
			ExcellentThreshold: 0.9,
			GoodThreshold:      0.7,
			FairThreshold:      0.5,
		},
	}
}

// Load reads a policy override file and merges it over the defaults.
// Fields absent from the file keep their default value.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, eris.Wrapf(err, "policy: read %s", path)
	}

	var wrapper struct {
		Policy Policy `yaml:"policy"`
	}
	wrapper.Policy = Default()
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Policy{}, eris.Wrap(err, "policy: parse")
	}

	return wrapper.Policy, nil
}
