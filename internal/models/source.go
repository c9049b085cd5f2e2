package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceTier ranks the authority of a content source
type SourceTier string

const (
	// SourceTierOfficial is first-party documentation and announcements
	SourceTierOfficial SourceTier = "tier_1"
	// SourceTierExpert is recognized industry experts and publications
	SourceTierExpert SourceTier = "tier_2"
	// SourceTierCommunity is forums, subreddits and other community content
	SourceTierCommunity SourceTier = "tier_3"
)

// FetchMethod selects the fetch strategy for a source
type FetchMethod string

const (
	FetchMethodRSS     FetchMethod = "rss"
	FetchMethodYouTube FetchMethod = "youtube"
	FetchMethodReddit  FetchMethod = "reddit"
	FetchMethodWebpage FetchMethod = "webpage"
)

// Source is a configured content source the pipeline ingests from.
// Tier and category are passed through to the analyzer as prompt context;
// they have no other algorithmic effect.
type Source struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	Tier      SourceTier  `json:"tier"`
	Category  string      `json:"category"`
	Method    FetchMethod `json:"method"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// FetchResult is one normalized article fetched during a digest run.
// Immutable once persisted.
type FetchResult struct {
	ID        uuid.UUID `json:"id"`
	DigestID  uuid.UUID `json:"digest_id"`
	SourceID  uuid.UUID `json:"source_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}
