package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/agencyops/seo-intel/internal/review"
	"github.com/agencyops/seo-intel/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DraftHandler handles draft review requests
type DraftHandler struct {
	workflow *review.Workflow
	logger   *zap.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(workflow *review.Workflow, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{workflow: workflow, logger: logger}
}

// RegisterRoutes registers draft review routes on the given router.
// The router should already have the /drafts prefix.
func (h *DraftHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks/{id}/apply", h.ApplyTaskDraft).Methods("POST")
	r.HandleFunc("/tasks/{id}/dismiss", h.DismissTaskDraft).Methods("POST")
	r.HandleFunc("/sops/{id}/apply", h.ApplySopDraft).Methods("POST")
	r.HandleFunc("/sops/{id}/dismiss", h.DismissSopDraft).Methods("POST")
	r.HandleFunc("/sops/{id}", h.EditSopDraft).Methods("PATCH")
}

// ApplyTaskDraftRequest carries the operator choices needed to turn a
// task draft into a real task
type ApplyTaskDraftRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid4"`
	DueDate   string `json:"due_date" validate:"required"`
}

// EditSopDraftRequest replaces a pending draft's proposed content
type EditSopDraftRequest struct {
	AfterContent string `json:"after_content" validate:"required,min=1"`
}

// ApplyTaskDraft converts a pending task draft into a task
func (h *DraftHandler) ApplyTaskDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid draft ID")
		return
	}

	var req ApplyTaskDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid project ID")
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "due_date must be YYYY-MM-DD")
		return
	}

	task, err := h.workflow.ApplyTaskDraft(r.Context(), draftID, projectID, dueDate)
	if err != nil {
		respondRepoError(w, err, "Draft or project not found")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DismissTaskDraft marks a pending task draft dismissed
func (h *DraftHandler) DismissTaskDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid draft ID")
		return
	}

	if err := h.workflow.DismissTaskDraft(r.Context(), draftID); err != nil {
		respondRepoError(w, err, "Draft not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// ApplySopDraft applies a pending procedure draft
func (h *DraftHandler) ApplySopDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid draft ID")
		return
	}

	doc, err := h.workflow.ApplySopDraft(r.Context(), draftID)
	if err != nil {
		respondRepoError(w, err, "Draft not found")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// DismissSopDraft marks a pending procedure draft dismissed
func (h *DraftHandler) DismissSopDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid draft ID")
		return
	}

	if err := h.workflow.DismissSopDraft(r.Context(), draftID); err != nil {
		respondRepoError(w, err, "Draft not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// EditSopDraft overwrites a pending draft's proposed content
func (h *DraftHandler) EditSopDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid draft ID")
		return
	}

	var req EditSopDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.workflow.EditSopDraft(r.Context(), draftID, req.AfterContent); err != nil {
		respondRepoError(w, err, "Draft not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
