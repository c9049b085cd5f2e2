package models

import (
	"github.com/google/uuid"
)

// Impact is the analyzer's estimate of how much a finding matters
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Confidence labels how well-corroborated a recommendation is.
// It is purely a function of distinct citation sources: two or more
// distinct sources make it verified, a single source leaves it emerging.
type Confidence string

const (
	ConfidenceVerified Confidence = "verified"
	ConfidenceEmerging Confidence = "emerging"
)

// Citation ties a recommendation back to the fetched article it came from
type Citation struct {
	FetchResultID uuid.UUID `json:"fetch_result_id"`
	SourceID      uuid.UUID `json:"source_id"`
	SourceName    string    `json:"source_name"`
	URL           string    `json:"url"`
	Excerpt       string    `json:"excerpt"`
}

// Recommendation is a structured, citation-backed finding extracted from
// analyzed content. Index is the position within the digest run and is kept
// for display ordering; drafts reference the generated ID.
type Recommendation struct {
	ID         uuid.UUID  `json:"id"`
	DigestID   uuid.UUID  `json:"digest_id"`
	Index      int        `json:"index"`
	Category   string     `json:"category"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Details    string     `json:"details"`
	Impact     Impact     `json:"impact"`
	Confidence Confidence `json:"confidence"`
	Citations  []Citation `json:"citations"`
}

// DistinctSourceCount counts the distinct sources cited
func (r *Recommendation) DistinctSourceCount() int {
	seen := make(map[uuid.UUID]struct{}, len(r.Citations))
	for _, c := range r.Citations {
		seen[c.SourceID] = struct{}{}
	}
	return len(seen)
}

// DeriveConfidence computes the confidence label from the citations
func DeriveConfidence(citations []Citation) Confidence {
	seen := make(map[uuid.UUID]struct{}, len(citations))
	for _, c := range citations {
		seen[c.SourceID] = struct{}{}
	}
	if len(seen) >= 2 {
		return ConfidenceVerified
	}
	return ConfidenceEmerging
}
