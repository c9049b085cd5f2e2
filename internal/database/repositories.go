package database

import (
	"context"

	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
)

// SourceRepositoryInterface defines source repository operations.
// Interfaces here enable mock implementations in orchestrator and
// review-workflow tests.
type SourceRepositoryInterface interface {
	Create(ctx context.Context, source *models.Source) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Source, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Source, error)
	Update(ctx context.Context, source *models.Source) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DigestRepositoryInterface defines digest repository operations
type DigestRepositoryInterface interface {
	Create(ctx context.Context, digest *models.Digest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Digest, error)
	GetByPeriod(ctx context.Context, period string) (*models.Digest, error)
	List(ctx context.Context, limit int) ([]*models.Digest, error)
	Complete(ctx context.Context, id uuid.UUID, counts models.Digest) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// FetchResultRepositoryInterface defines fetch result repository operations
type FetchResultRepositoryInterface interface {
	Create(ctx context.Context, result *models.FetchResult) error
	ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.FetchResult, error)
	CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error)
}

// RecommendationRepositoryInterface defines recommendation repository operations
type RecommendationRepositoryInterface interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.Recommendation, error)
	CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error)
}

// TaskDraftRepositoryInterface defines task draft repository operations
type TaskDraftRepositoryInterface interface {
	Create(ctx context.Context, draft *models.TaskDraft) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TaskDraft, error)
	ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.TaskDraft, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error
	ResetToPending(ctx context.Context, id uuid.UUID) error
	CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error)
}

// SopDraftRepositoryInterface defines SOP draft repository operations
type SopDraftRepositoryInterface interface {
	Create(ctx context.Context, draft *models.SopDraft) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SopDraft, error)
	ListByDigest(ctx context.Context, digestID uuid.UUID) ([]*models.SopDraft, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, to models.DraftStatus) error
	ResetToPending(ctx context.Context, id uuid.UUID) error
	UpdateAfterContent(ctx context.Context, id uuid.UUID, afterContent string) error
	CountByDigest(ctx context.Context, digestID uuid.UUID) (int, error)
}

// TaskRepositoryInterface defines task creation operations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
}

// ProjectRepositoryInterface defines project lookup operations
type ProjectRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// SopDocumentRepositoryInterface defines SOP document operations
type SopDocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *models.SopDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SopDocument, error)
	List(ctx context.Context) ([]*models.SopDocument, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
}

// Ensure concrete types implement the interfaces
var (
	_ SourceRepositoryInterface         = (*SourceRepository)(nil)
	_ DigestRepositoryInterface         = (*DigestRepository)(nil)
	_ FetchResultRepositoryInterface    = (*FetchResultRepository)(nil)
	_ RecommendationRepositoryInterface = (*RecommendationRepository)(nil)
	_ TaskDraftRepositoryInterface      = (*TaskDraftRepository)(nil)
	_ SopDraftRepositoryInterface       = (*SopDraftRepository)(nil)
	_ TaskRepositoryInterface           = (*TaskRepository)(nil)
	_ ProjectRepositoryInterface        = (*ProjectRepository)(nil)
	_ SopDocumentRepositoryInterface    = (*SopDocumentRepository)(nil)
)
