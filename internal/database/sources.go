package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// SourceRepository handles source database operations
type SourceRepository struct {
	db *DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create creates a new source
func (r *SourceRepository) Create(ctx context.Context, source *models.Source) error {
	query := `
		INSERT INTO sources (id, name, url, tier, category, method, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		source.ID,
		source.Name,
		source.URL,
		source.Tier,
		source.Category,
		source.Method,
		source.Active,
		now,
		now,
	).Scan(&source.CreatedAt, &source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	return nil
}

// GetByID retrieves a source by ID
func (r *SourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Source, error) {
	source := &models.Source{}
	query := `
		SELECT id, name, url, tier, category, method, active, created_at, updated_at
		FROM sources
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&source.ID,
		&source.Name,
		&source.URL,
		&source.Tier,
		&source.Category,
		&source.Method,
		&source.Active,
		&source.CreatedAt,
		&source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return source, nil
}

// List retrieves all sources, optionally restricted to active ones
func (r *SourceRepository) List(ctx context.Context, activeOnly bool) ([]*models.Source, error) {
	query := `
		SELECT id, name, url, tier, category, method, active, created_at, updated_at
		FROM sources
	`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY tier, name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		source := &models.Source{}
		err := rows.Scan(
			&source.ID,
			&source.Name,
			&source.URL,
			&source.Tier,
			&source.Category,
			&source.Method,
			&source.Active,
			&source.CreatedAt,
			&source.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sources: %w", err)
	}

	return sources, nil
}

// Update updates a source's editable fields
func (r *SourceRepository) Update(ctx context.Context, source *models.Source) error {
	query := `
		UPDATE sources
		SET name = $2, url = $3, tier = $4, category = $5, method = $6, active = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		source.ID,
		source.Name,
		source.URL,
		source.Tier,
		source.Category,
		source.Method,
		source.Active,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source %s: %w", source.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a source
func (r *SourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("source %s: %w", id, ErrNotFound)
	}

	return nil
}
