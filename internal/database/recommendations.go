package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// RecommendationRepository handles recommendation database operations.
// Citations are stored as a JSONB column since they are only ever read
// back alongside their recommendation.
type RecommendationRepository struct {
	db *DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create persists one recommendation with its citations
func (r *RecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	citationsJSON, err := json.Marshal(rec.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	query := `
		INSERT INTO recommendations (id, digest_id, index, category, title, summary, details, impact, confidence, citations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.DigestID,
		rec.Index,
		rec.Category,
		rec.Title,
		rec.Summary,
		rec.Details,
		rec.Impact,
		rec.Confidence,
		citationsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

// ListByDigest retrieves all recommendations for a digest ordered by index
func (r *RecommendationRepository) ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.Recommendation, error) {
	query := `
		SELECT id, digest_id, index, category, title, summary, details, impact, confidence, citations
		FROM recommendations
		WHERE digest_id = $1
		ORDER BY index
	`

	rows, err := r.db.QueryContext(ctx, query, digestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec := &models.Recommendation{}
		var citationsJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.DigestID,
			&rec.Index,
			&rec.Category,
			&rec.Title,
			&rec.Summary,
			&rec.Details,
			&rec.Impact,
			&rec.Confidence,
			&citationsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}

		if err := json.Unmarshal(citationsJSON, &rec.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}

	return recs, nil
}

// CountByDigest counts persisted recommendations for a digest
func (r *RecommendationRepository) CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE digest_id = $1`, digestID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommendations: %w", err)
	}
	return count, nil
}
