package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a real work item created when a task draft is applied.
// The wider task tracker owns its lifecycle from then on.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     time.Time    `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Project is the minimal read model needed to validate a draft apply
type Project struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SopDocument is one standard-operating-procedure document. Applying an
// update draft overwrites Content; applying a new draft creates one.
type SopDocument struct {
	ID        uuid.UUID `json:"id"`
	SetID     uuid.UUID `json:"set_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
