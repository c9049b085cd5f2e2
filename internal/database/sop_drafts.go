package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// SopDraftRepository handles SOP draft database operations
type SopDraftRepository struct {
	db *DB
}

// NewSopDraftRepository creates a new SOP draft repository
func NewSopDraftRepository(db *DB) *SopDraftRepository {
	return &SopDraftRepository{db: db}
}

// Create persists a SOP draft in pending status
func (r *SopDraftRepository) Create(ctx context.Context, draft *models.SopDraft) error {
	query := `
		INSERT INTO sop_drafts (id, digest_id, recommendation_id, draft_type, target_document_id,
		                        title, description, before_content, after_content, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		draft.ID,
		draft.DigestID,
		draft.RecommendationID,
		draft.DraftType,
		draft.TargetDocumentID,
		draft.Title,
		draft.Description,
		draft.BeforeContent,
		draft.AfterContent,
		models.DraftStatusPending,
		time.Now(),
	).Scan(&draft.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create sop draft: %w", err)
	}

	draft.Status = models.DraftStatusPending
	return nil
}

// GetByID retrieves a SOP draft by ID
func (r *SopDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SopDraft, error) {
	draft := &models.SopDraft{}
	var targetDocumentID uuid.NullUUID
	var beforeContent sql.NullString

	query := `
		SELECT id, digest_id, recommendation_id, draft_type, target_document_id,
		       title, description, before_content, after_content, status, created_at
		FROM sop_drafts
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&draft.ID,
		&draft.DigestID,
		&draft.RecommendationID,
		&draft.DraftType,
		&targetDocumentID,
		&draft.Title,
		&draft.Description,
		&beforeContent,
		&draft.AfterContent,
		&draft.Status,
		&draft.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sop draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop draft: %w", err)
	}

	if targetDocumentID.Valid {
		draft.TargetDocumentID = &targetDocumentID.UUID
	}
	if beforeContent.Valid {
		draft.BeforeContent = &beforeContent.String
	}

	return draft, nil
}

// ListByDigest retrieves all SOP drafts for a digest
func (r *SopDraftRepository) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.SopDraft, error) {
	query := `
		SELECT id, digest_id, recommendation_id, draft_type, target_document_id,
		       title, description, before_content, after_content, status, created_at
		FROM sop_drafts
		WHERE digest_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, digestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sop drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.SopDraft
	for rows.Next() {
		draft := &models.SopDraft{}
		var targetDocumentID uuid.NullUUID
		var beforeContent sql.NullString

		err := rows.Scan(
			&draft.ID,
			&draft.DigestID,
			&draft.RecommendationID,
			&draft.DraftType,
			&targetDocumentID,
			&draft.Title,
			&draft.Description,
			&beforeContent,
			&draft.AfterContent,
			&draft.Status,
			&draft.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sop draft: %w", err)
		}

		if targetDocumentID.Valid {
			draft.TargetDocumentID = &targetDocumentID.UUID
		}
		if beforeContent.Valid {
			draft.BeforeContent = &beforeContent.String
		}

		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sop drafts: %w", err)
	}

	return drafts, nil
}

// TransitionStatus moves a pending draft to a terminal status (compare-and-set)
func (r *SopDraftRepository) TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error {
	query := `
		UPDATE sop_drafts
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, to, models.DraftStatusPending)
	if err != nil {
		return fmt.Errorf("failed to transition sop draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sop draft %s is not pending: %w", id, ErrConflict)
	}

	return nil
}

// ResetToPending reverts a draft to pending after a failed apply
func (r *SopDraftRepository) ResetToPending(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sop_drafts SET status = $2 WHERE id = $1`,
		id, models.DraftStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to reset sop draft: %w", err)
	}
	return nil
}

// UpdateAfterContent overwrites the proposed content while the draft is
// still pending; an already-reviewed draft is immutable.
func (r *SopDraftRepository) UpdateAfterContent(ctx context.Context, id uuid.UUID, afterContent string) error {
	query := `
		UPDATE sop_drafts
		SET after_content = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, id, afterContent, models.DraftStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update sop draft content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sop draft %s is not pending: %w", id, ErrConflict)
	}

	return nil
}

// CountByDigest counts persisted SOP drafts for a digest
func (r *SopDraftRepository) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sop_drafts WHERE digest_id = $1`, digestID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sop drafts: %w", err)
	}
	return count, nil
}
