package database

import (
	"context"
	"fmt"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// FetchResultRepository handles fetch result database operations.
// Fetch results are immutable once created, so there is no update path.
type FetchResultRepository struct {
	db *DB
}

// NewFetchResultRepository creates a new fetch result repository
func NewFetchResultRepository(db *DB) *FetchResultRepository {
	return &FetchResultRepository{db: db}
}

// Create persists one fetched article
func (r *FetchResultRepository) Create(ctx context.Context, result *models.FetchResult) error {
	query := `
		INSERT INTO fetch_results (id, digest_id, source_id, url, title, content, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		result.DigestID,
		result.SourceID,
		result.URL,
		result.Title,
		result.Content,
		result.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch result: %w", err)
	}

	return nil
}

// ListByDigest retrieves all fetch results for a digest in insertion order
func (r *FetchResultRepository) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.FetchResult, error) {
	query := `
		SELECT id, digest_id, source_id, url, title, content, fetched_at
		FROM fetch_results
		WHERE digest_id = $1
		ORDER BY fetched_at
	`

	rows, err := r.db.QueryContext(ctx, query, digestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch results: %w", err)
	}
	defer rows.Close()

	var results []*models.FetchResult
	for rows.Next() {
		result := &models.FetchResult{}
		err := rows.Scan(
			&result.ID,
			&result.DigestID,
			&result.SourceID,
			&result.URL,
			&result.Title,
			&result.Content,
			&result.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fetch results: %w", err)
	}

	return results, nil
}

// CountByDigest counts persisted fetch results for a digest
func (r *FetchResultRepository) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fetch_results WHERE digest_id = $1`, digestID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count fetch results: %w", err)
	}
	return count, nil
}
