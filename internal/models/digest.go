package models

import (
	"time"

	"github.com/google/uuid"
)

// DigestStatus is the state of one pipeline run.
// Transitions: started -> completed | started -> failed. Terminal states
// are never re-entered for the same digest.
type DigestStatus string

const (
	DigestStatusStarted   DigestStatus = "started"
	DigestStatusCompleted DigestStatus = "completed"
	DigestStatusFailed    DigestStatus = "failed"
)

// Digest records one run of the intelligence pipeline for a period.
// The period is unique, which is what prevents duplicate runs when the
// scheduler fires more than once.
type Digest struct {
	ID                       uuid.UUID    `json:"id"`
	Period                   string       `json:"period"`
	Status                   DigestStatus `json:"status"`
	SourcesFetched           int          `json:"sources_fetched"`
	RecommendationsGenerated int          `json:"recommendations_generated"`
	TaskDraftsCreated        int          `json:"task_drafts_created"`
	SopDraftsCreated         int          `json:"sop_drafts_created"`
	ReportURL                *string      `json:"report_url,omitempty"`
	ErrorMessage             *string      `json:"error_message,omitempty"`
	StartedAt                time.Time    `json:"started_at"`
	CompletedAt              *time.Time   `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the digest reached a final state.
func (d *Digest) IsTerminal() bool {
	return d.Status == DigestStatusCompleted || d.Status == DigestStatusFailed
}
