package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus is the review state of a generated draft.
// Only pending drafts may be applied, dismissed or edited.
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "pending"
	DraftStatusApplied   DraftStatus = "applied"
	DraftStatusDismissed DraftStatus = "dismissed"
)

// TaskPriority mirrors the priority scale of the task tracker
type TaskPriority string

const (
	TaskPriorityUrgent TaskPriority = "urgent"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityLow    TaskPriority = "low"
)

// TaskDraft is a candidate work item derived from a recommendation.
// Applying it requires an operator-chosen project and due date.
type TaskDraft struct {
	ID                 uuid.UUID    `json:"id"`
	DigestID           uuid.UUID    `json:"digest_id"`
	RecommendationID   uuid.UUID    `json:"recommendation_id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	SuggestedPriority  TaskPriority `json:"suggested_priority"`
	SuggestedDueInDays int          `json:"suggested_due_in_days"`
	Status             DraftStatus  `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
}

// SopDraftType distinguishes edits to an existing procedure from
// entirely new procedure documents
type SopDraftType string

const (
	SopDraftTypeUpdate SopDraftType = "update"
	SopDraftTypeNew    SopDraftType = "new"
)

// SopDraft is a candidate change to the standard operating procedures.
// Update drafts reference an existing document and carry its content as
// BeforeContent; new drafts have no BeforeContent.
type SopDraft struct {
	ID               uuid.UUID    `json:"id"`
	DigestID         uuid.UUID    `json:"digest_id"`
	RecommendationID uuid.UUID    `json:"recommendation_id"`
	DraftType        SopDraftType `json:"draft_type"`
	TargetDocumentID *uuid.UUID   `json:"target_document_id,omitempty"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	BeforeContent    *string      `json:"before_content,omitempty"`
	AfterContent     string       `json:"after_content"`
	Status           DraftStatus  `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}
