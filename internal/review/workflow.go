// Package review gates draft application behind an operator decision.
// Every status mutation is a compare-and-set on pending, so two reviewers
// acting on the same draft cannot both win.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workflow applies, dismisses and edits drafts
type Workflow struct {
	taskDrafts database.TaskDraftRepositoryInterface
	sopDrafts  database.SopDraftRepositoryInterface
	tasks      database.TaskRepositoryInterface
	projects   database.ProjectRepositoryInterface
	sopDocs    database.SopDocumentRepositoryInterface
	logger     *zap.Logger
}

// NewWorkflow creates a review workflow
func NewWorkflow(
	taskDrafts database.TaskDraftRepositoryInterface,
	sopDrafts database.SopDraftRepositoryInterface,
	tasks database.TaskRepositoryInterface,
	projects database.ProjectRepositoryInterface,
	sopDocs database.SopDocumentRepositoryInterface,
	logger *zap.Logger,
) *Workflow {
	return &Workflow{
		taskDrafts: taskDrafts,
		sopDrafts:  sopDrafts,
		tasks:      tasks,
		projects:   projects,
		sopDocs:    sopDocs,
		logger:     logger,
	}
}

// ApplyTaskDraft converts a pending task draft into a real task in the
// operator-chosen project. The draft is claimed first (CAS on pending);
// if the task insert then fails, the claim is rolled back so the reviewer
// can retry.
func (w *Workflow) ApplyTaskDraft(ctx context.Context, draftID, projectID uuid.UUID, dueDate time.Time) (*models.Task, error) {
	draft, err := w.taskDrafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if _, err := w.projects.GetByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}

	if err := w.taskDrafts.TransitionStatus(ctx, draftID, models.DraftStatusApplied); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.SuggestedPriority,
		DueDate:     dueDate,
	}

	if err := w.tasks.Create(ctx, task); err != nil {
		if resetErr := w.taskDrafts.ResetToPending(ctx, draftID); resetErr != nil {
			w.logger.Error("task_draft_reset_failed",
				zap.String("draft_id", draftID.String()),
				zap.Error(resetErr),
			)
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	w.logger.Info("task_draft_applied",
		zap.String("draft_id", draftID.String()),
		zap.String("task_id", task.ID.String()),
		zap.String("project_id", projectID.String()),
	)

	return task, nil
}

// ApplySopDraft applies a pending SOP draft: update drafts overwrite the
// target document's content, new drafts create a document from AfterContent.
func (w *Workflow) ApplySopDraft(ctx context.Context, draftID uuid.UUID) (*models.SopDocument, error) {
	draft, err := w.sopDrafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	switch draft.DraftType {
	case models.SopDraftTypeUpdate:
		if draft.TargetDocumentID == nil {
			return nil, fmt.Errorf("update draft %s has no target document", draftID)
		}
		// Resolve the target before claiming the draft; a missing document
		// must leave the draft pending so the reviewer can correct it.
		doc, err := w.sopDocs.GetByID(ctx, *draft.TargetDocumentID)
		if err != nil {
			return nil, fmt.Errorf("target procedure: %w", err)
		}

		if err := w.sopDrafts.TransitionStatus(ctx, draftID, models.DraftStatusApplied); err != nil {
			return nil, err
		}

		if err := w.sopDocs.UpdateContent(ctx, doc.ID, draft.AfterContent); err != nil {
			w.resetSopDraft(ctx, draftID)
			return nil, fmt.Errorf("failed to update procedure: %w", err)
		}

		doc.Content = draft.AfterContent
		w.logger.Info("sop_draft_applied",
			zap.String("draft_id", draftID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("draft_type", string(draft.DraftType)),
		)
		return doc, nil

	case models.SopDraftTypeNew:
		if err := w.sopDrafts.TransitionStatus(ctx, draftID, models.DraftStatusApplied); err != nil {
			return nil, err
		}

		doc := &models.SopDocument{
			ID:      uuid.New(),
			Title:   draft.Title,
			Content: draft.AfterContent,
		}
		if err := w.sopDocs.Create(ctx, doc); err != nil {
			w.resetSopDraft(ctx, draftID)
			return nil, fmt.Errorf("failed to create procedure: %w", err)
		}

		w.logger.Info("sop_draft_applied",
			zap.String("draft_id", draftID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.String("draft_type", string(draft.DraftType)),
		)
		return doc, nil

	default:
		return nil, fmt.Errorf("unknown draft type %q", draft.DraftType)
	}
}

// DismissTaskDraft marks a pending task draft dismissed
func (w *Workflow) DismissTaskDraft(ctx context.Context, draftID uuid.UUID) error {
	return w.taskDrafts.TransitionStatus(ctx, draftID, models.DraftStatusDismissed)
}

// DismissSopDraft marks a pending SOP draft dismissed
func (w *Workflow) DismissSopDraft(ctx context.Context, draftID uuid.UUID) error {
	return w.sopDrafts.TransitionStatus(ctx, draftID, models.DraftStatusDismissed)
}

// EditSopDraft overwrites a pending draft's proposed content. Status is
// unchanged; the edit is rejected once the draft leaves pending.
func (w *Workflow) EditSopDraft(ctx context.Context, draftID uuid.UUID, afterContent string) error {
	return w.sopDrafts.UpdateAfterContent(ctx, draftID, afterContent)
}

func (w *Workflow) resetSopDraft(ctx context.Context, draftID uuid.UUID) {
	if err := w.sopDrafts.ResetToPending(ctx, draftID); err != nil {
		w.logger.Error("sop_draft_reset_failed",
			zap.String("draft_id", draftID.String()),
			zap.Error(err),
		)
	}
}
