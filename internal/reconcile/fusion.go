package reconcile

import (
	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/hebrew"
	"github.com/KingPinFPV/basarometer-sub000/internal/model"
	"github.com/KingPinFPV/basarometer-sub000/internal/policy"
)

// Fuser combines base confidence, verification confidence, and
// data-completeness signals into one hybrid confidence.
type Fuser struct {
	pol policy.FusionPolicy
}

// NewFuser creates a Fuser from the fusion policy.
func NewFuser(pol policy.FusionPolicy) *Fuser {
	return &Fuser{pol: pol}
}

// Fuse clones base into an EnrichedRecord carrying the hybrid confidence.
// A nil verification means the record flows through on bulk trust alone.
// Hybrid confidence is always clamped to [0,1], even against adversarial
// verification confidence fed in from upstream.
func (f *Fuser) Fuse(base model.BaseRecord, verification *model.VerificationResult) model.EnrichedRecord {
	hybrid := base.Confidence * f.pol.BulkWeight

	enriched := model.EnrichedRecord{
		BaseRecord: base,
		Provenance: model.ProvenanceBulkOnly,
	}

	if verification != nil {
		hybrid += clamp01(verification.Confidence) * f.pol.VerificationWeight
		enriched.Verified = verification.Verified
		if verification.Candidate != nil {
			enriched.VerificationSource = verification.Candidate.Site
		}
		if verification.Verified {
			enriched.Provenance = model.ProvenanceHybridVerified
		}
	}

	// Completeness bonuses apply with or without verification.
	if base.HasBrand() {
		hybrid += f.pol.BrandBonus
	}
	if base.HasUnitPrice() {
		hybrid += f.pol.UnitPriceBonus
	}
	if base.Barcode != "" {
		hybrid += f.pol.BarcodeBonus
	}
	if hebrew.HasQualityText(base.Name) {
		hybrid += f.pol.TextQualityBonus
	}

	if hybrid < 0 || hybrid > 1 {
		// Invariant break is clamped, never propagated.
		zap.L().Debug("fusion: hybrid confidence clamped",
			zap.String("record", base.ID),
			zap.Float64("raw", hybrid),
		)
	}
	enriched.HybridConfidence = clamp01(hybrid)

	return enriched
}
