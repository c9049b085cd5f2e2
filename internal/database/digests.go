package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// DigestRepository handles digest database operations
type DigestRepository struct {
	db *DB
}

// NewDigestRepository creates a new digest repository
func NewDigestRepository(db *DB) *DigestRepository {
	return &DigestRepository{db: db}
}

// Create inserts a digest in started status. Two guards make the claim
// atomic across processes: the insert only proceeds while no digest is in
// started status, and the unique index on period rejects a second run for
// the same period. Either refusal surfaces as ErrDuplicateRun so callers
// treat both the same way.
func (r *DigestRepository) Create(ctx context.Context, digest *models.Digest) error {
	query := `
		INSERT INTO digests (id, period, status, started_at)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM digests WHERE status = $3)
		RETURNING started_at
	`

	err := r.db.QueryRowContext(ctx, query,
		digest.ID,
		digest.Period,
		models.DigestStatusStarted,
		time.Now(),
	).Scan(&digest.StartedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("a digest run is already in flight: %w", ErrDuplicateRun)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("period %s: %w", digest.Period, ErrDuplicateRun)
		}
		return fmt.Errorf("failed to create digest: %w", err)
	}

	digest.Status = models.DigestStatusStarted
	return nil
}

// GetByID retrieves a digest by ID
func (r *DigestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Digest, error) {
	query := `
		SELECT id, period, status, sources_fetched, recommendations_generated,
		       task_drafts_created, sop_drafts_created, report_url, error_message,
		       started_at, completed_at
		FROM digests
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByPeriod retrieves the digest for a period, if any
func (r *DigestRepository) GetByPeriod(ctx context.Context, period string) (*models.Digest, error) {
	query := `
		SELECT id, period, status, sources_fetched, recommendations_generated,
		       task_drafts_created, sop_drafts_created, report_url, error_message,
		       started_at, completed_at
		FROM digests
		WHERE period = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, period))
}

// List retrieves digests newest first
func (r *DigestRepository) List(ctx context.Context, limit int) ([]*models.Digest, error) {
	query := `
		SELECT id, period, status, sources_fetched, recommendations_generated,
		       task_drafts_created, sop_drafts_created, report_url, error_message,
		       started_at, completed_at
		FROM digests
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query digests: %w", err)
	}
	defer rows.Close()

	var digests []*models.Digest
	for rows.Next() {
		digest, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate digests: %w", err)
	}

	return digests, nil
}

// Complete finalizes a started digest with its counts. Guarded on status so
// a terminal digest is never re-entered.
func (r *DigestRepository) Complete(ctx context.Context, id uuid.UUID, counts models.Digest) error {
	query := `
		UPDATE digests
		SET status = $2, sources_fetched = $3, recommendations_generated = $4,
		    task_drafts_created = $5, sop_drafts_created = $6, report_url = $7,
		    completed_at = $8
		WHERE id = $1 AND status = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		models.DigestStatusCompleted,
		counts.SourcesFetched,
		counts.RecommendationsGenerated,
		counts.TaskDraftsCreated,
		counts.SopDraftsCreated,
		counts.ReportURL,
		time.Now(),
		models.DigestStatusStarted,
	)
	if err != nil {
		return fmt.Errorf("failed to complete digest: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("digest %s is not in started status: %w", id, ErrConflict)
	}

	return nil
}

// MarkFailed records the failure message on a started digest
func (r *DigestRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE digests
		SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		models.DigestStatusFailed,
		errorMessage,
		time.Now(),
		models.DigestStatusStarted,
	)
	if err != nil {
		return fmt.Errorf("failed to mark digest failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("digest %s is not in started status: %w", id, ErrConflict)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DigestRepository) scanOne(row *sql.Row) (*models.Digest, error) {
	digest, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("digest: %w", ErrNotFound)
	}
	return digest, err
}

func (r *DigestRepository) scanRow(row rowScanner) (*models.Digest, error) {
	digest := &models.Digest{}
	var reportURL, errorMessage sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&digest.ID,
		&digest.Period,
		&digest.Status,
		&digest.SourcesFetched,
		&digest.RecommendationsGenerated,
		&digest.TaskDraftsCreated,
		&digest.SopDraftsCreated,
		&reportURL,
		&errorMessage,
		&digest.StartedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan digest: %w", err)
	}

	if reportURL.Valid {
		digest.ReportURL = &reportURL.String
	}
	if errorMessage.Valid {
		digest.ErrorMessage = &errorMessage.String
	}
	if completedAt.Valid {
		digest.CompletedAt = &completedAt.Time
	}

	return digest, nil
}
