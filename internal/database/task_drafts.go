package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// TaskDraftRepository handles task draft database operations
type TaskDraftRepository struct {
	db *DB
}

// NewTaskDraftRepository creates a new task draft repository
func NewTaskDraftRepository(db *DB) *TaskDraftRepository {
	return &TaskDraftRepository{db: db}
}

// Create persists a task draft in pending status
func (r *TaskDraftRepository) Create(ctx context.Context, draft *models.TaskDraft) error {
	query := `
		INSERT INTO task_drafts (id, digest_id, recommendation_id, title, description,
		                         suggested_priority, suggested_due_in_days, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		draft.ID,
		draft.DigestID,
		draft.RecommendationID,
		draft.Title,
		draft.Description,
		draft.SuggestedPriority,
		draft.SuggestedDueInDays,
		models.DraftStatusPending,
		time.Now(),
	).Scan(&draft.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task draft: %w", err)
	}

	draft.Status = models.DraftStatusPending
	return nil
}

// GetByID retrieves a task draft by ID
func (r *TaskDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TaskDraft, error) {
	draft := &models.TaskDraft{}
	query := `
		SELECT id, digest_id, recommendation_id, title, description,
		       suggested_priority, suggested_due_in_days, status, created_at
		FROM task_drafts
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&draft.ID,
		&draft.DigestID,
		&draft.RecommendationID,
		&draft.Title,
		&draft.Description,
		&draft.SuggestedPriority,
		&draft.SuggestedDueInDays,
		&draft.Status,
		&draft.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task draft: %w", err)
	}

	return draft, nil
}

// ListByDigest retrieves all task drafts for a digest
func (r *TaskDraftRepository) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.TaskDraft, error) {
	query := `
		SELECT id, digest_id, recommendation_id, title, description,
		       suggested_priority, suggested_due_in_days, status, created_at
		FROM task_drafts
		WHERE digest_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, digestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.TaskDraft
	for rows.Next() {
		draft := &models.TaskDraft{}
		err := rows.Scan(
			&draft.ID,
			&draft.DigestID,
			&draft.RecommendationID,
			&draft.Title,
			&draft.Description,
			&draft.SuggestedPriority,
			&draft.SuggestedDueInDays,
			&draft.Status,
			&draft.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task draft: %w", err)
		}
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task drafts: %w", err)
	}

	return drafts, nil
}

// TransitionStatus moves a pending draft to a terminal status. The status
// check is part of the UPDATE so two concurrent reviewers cannot both win;
// the loser gets ErrConflict.
func (r *TaskDraftRepository) TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error {
	query := `
		UPDATE task_drafts
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, to, models.DraftStatusPending)
	if err != nil {
		return fmt.Errorf("failed to transition task draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task draft %s is not pending: %w", id, ErrConflict)
	}

	return nil
}

// ResetToPending reverts a draft to pending. Used to roll back a claimed
// apply when the downstream task insert fails.
func (r *TaskDraftRepository) ResetToPending(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE task_drafts SET status = $2 WHERE id = $1`,
		id, models.DraftStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reset task draft: %w", err)
	}
	return nil
}

// CountByDigest counts persisted task drafts for a digest
func (r *TaskDraftRepository) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_drafts WHERE digest_id = $1`, digestID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count task drafts: %w", err)
	}
	return count, nil
}
