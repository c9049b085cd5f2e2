package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// SopDocumentRepository handles standard-operating-procedure documents
type SopDocumentRepository struct {
	db *DB
}

// NewSopDocumentRepository creates a new SOP document repository
func NewSopDocumentRepository(db *DB) *SopDocumentRepository {
	return &SopDocumentRepository{db: db}
}

// Create creates a new SOP document
func (r *SopDocumentRepository) Create(ctx context.Context, doc *models.SopDocument) error {
	query := `
		INSERT INTO sop_documents (id, set_id, title, content, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		doc.ID,
		doc.SetID,
		doc.Title,
		doc.Content,
		time.Now(),
	).Scan(&doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create sop document: %w", err)
	}

	return nil
}

// GetByID retrieves a SOP document by ID
func (r *SopDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SopDocument, error) {
	doc := &models.SopDocument{}
	query := `SELECT id, set_id, title, content, updated_at FROM sop_documents WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.SetID,
		&doc.Title,
		&doc.Content,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sop document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sop document: %w", err)
	}

	return doc, nil
}

// List retrieves all SOP documents
func (r *SopDocumentRepository) List(ctx context.Context) ([]*models.SopDocument, error) {
	query := `SELECT id, set_id, title, content, updated_at FROM sop_documents ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sop documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.SopDocument
	for rows.Next() {
		doc := &models.SopDocument{}
		err := rows.Scan(
			&doc.ID,
			&doc.SetID,
			&doc.Title,
			&doc.Content,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sop document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sop documents: %w", err)
	}

	return docs, nil
}

// UpdateContent overwrites a document's content. Used when an update-type
// SOP draft is applied.
func (r *SopDocumentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	query := `UPDATE sop_documents SET content = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, content, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update sop document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sop document %s: %w", id, ErrNotFound)
	}

	return nil
}
