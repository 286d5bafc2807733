// Package model defines the record shapes exchanged between reconciliation phases.
package model

import "time"

// BaseRecord is a product observation from the bulk/government source.
// It is read-only after collection; the merge phase clones it into an
// EnrichedRecord rather than mutating it.
type BaseRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Brand          string    `json:"brand,omitempty"`
	Price          float64   `json:"price"`
	PricePerUnit   float64   `json:"price_per_unit,omitempty"`
	Chain          string    `json:"chain"`
	Category       string    `json:"category,omitempty"`
	Barcode        string    `json:"barcode,omitempty"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}

// HasBrand reports whether the record carries a non-empty brand.
func (r BaseRecord) HasBrand() bool { return r.Brand != "" }

// HasUnitPrice reports whether a per-unit price was observed.
func (r BaseRecord) HasUnitPrice() bool { return r.PricePerUnit > 0 }

// CandidateRecord is a product observation scraped live from one
// verification site during a single match attempt. Candidates are
// transient: they exist only between search and match.
type CandidateRecord struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Site     string  `json:"site"`
}

// VerificationResult is the outcome of matching one BaseRecord against
// the candidates scraped from one site.
type VerificationResult struct {
	BaseRecordID      string           `json:"base_record_id"`
	Candidate         *CandidateRecord `json:"candidate,omitempty"`
	MatchScore        float64          `json:"match_score"`
	PriceDeltaPercent float64          `json:"price_delta_percent"`
	Verified          bool             `json:"verified"`
	Confidence        float64          `json:"confidence"`
}

// Provenance tags which sources contributed to a final record.
type Provenance string

const (
	ProvenanceBulkOnly       Provenance = "bulk-only"
	ProvenanceHybridVerified Provenance = "hybrid-verified"

	// ProvenanceVerificationOnly is reserved for a future verification-first
	// flow. The reconciliation pipeline never produces it.
	ProvenanceVerificationOnly Provenance = "verification-only"
)

// EnrichedRecord is a BaseRecord plus fusion outputs. It is built once
// during the merge phase and immutable afterward.
type EnrichedRecord struct {
	BaseRecord

	HybridConfidence   float64    `json:"hybrid_confidence"`
	Verified           bool       `json:"verified"`
	VerificationSource string     `json:"verification_source,omitempty"`
	Provenance         Provenance `json:"provenance"`
}

// IsComplete reports whether the record has both completeness signals
// the quality assessor counts.
func (r EnrichedRecord) IsComplete() bool {
	return r.HasBrand() && r.HasUnitPrice()
}
