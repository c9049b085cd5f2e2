package handlers

import (
	"net/http"
	"strconv"

	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/agencyops/seo-intel/internal/queue"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// DefaultDigestListLimit is the default number of digests returned
	DefaultDigestListLimit = 20
	// MaxDigestListLimit is the maximum number of digests returned
	MaxDigestListLimit = 100
)

// DigestHandler handles digest requests
type DigestHandler struct {
	digests         database.DigestRepositoryInterface
	recommendations database.RecommendationRepositoryInterface
	taskDrafts      database.TaskDraftRepositoryInterface
	sopDrafts       database.SopDraftRepositoryInterface
	jobQueue        queue.JobQueue
	logger          *zap.Logger
}

// NewDigestHandler creates a new digest handler
func NewDigestHandler(
	digests database.DigestRepositoryInterface,
	recommendations database.RecommendationRepositoryInterface,
	taskDrafts database.TaskDraftRepositoryInterface,
	sopDrafts database.SopDraftRepositoryInterface,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *DigestHandler {
	return &DigestHandler{
		digests:         digests,
		recommendations: recommendations,
		taskDrafts:      taskDrafts,
		sopDrafts:       sopDrafts,
		jobQueue:        jobQueue,
		logger:          logger,
	}
}

// RegisterRoutes registers digest routes on the given router.
// The router should already have the /digests prefix.
func (h *DigestHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDigests).Methods("GET")
	r.HandleFunc("/run", h.TriggerRun).Methods("POST")
	r.HandleFunc("/{id}", h.GetDigest).Methods("GET")
}

// DigestDetailResponse is one digest with its generated artifacts
type DigestDetailResponse struct {
	Digest          *models.Digest           `json:"digest"`
	Recommendations []*models.Recommendation `json:"recommendations"`
	TaskDrafts      []*models.TaskDraft      `json:"task_drafts"`
	SopDrafts       []*models.SopDraft       `json:"sop_drafts"`
}

// ListDigests lists recent digests, newest first
func (h *DigestHandler) ListDigests(w http.ResponseWriter, r *http.Request) {
	limit := DefaultDigestListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			if parsed > MaxDigestListLimit {
				limit = MaxDigestListLimit
			} else {
				limit = parsed
			}
		}
	}

	digests, err := h.digests.List(r.Context(), limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve digests")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"digests": digests, "count": len(digests)})
}

// GetDigest returns one digest with its recommendations and drafts
func (h *DigestHandler) GetDigest(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid digest ID")
		return
	}

	ctx := r.Context()

	digest, err := h.digests.GetByID(ctx, id)
	if err != nil {
		respondRepoError(w, err, "Digest not found")
		return
	}

	recs, err := h.recommendations.ListByDigest(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve recommendations")
		return
	}

	taskDrafts, err := h.taskDrafts.ListByDigest(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve task drafts")
		return
	}

	sopDrafts, err := h.sopDrafts.ListByDigest(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve procedure drafts")
		return
	}

	respondJSON(w, http.StatusOK, DigestDetailResponse{
		Digest:          digest,
		Recommendations: recs,
		TaskDrafts:      taskDrafts,
		SopDrafts:       sopDrafts,
	})
}

// TriggerRun enqueues a pipeline run. The worker enforces the one-run-per-
// period guard, so triggering twice in the same period is harmless.
func (h *DigestHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	job := queue.NewJob(queue.JobTypeDigestRun)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue digest run")
		return
	}

	h.logger.Info("digest_run_enqueued", zap.String("job_id", job.ID.String()))

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}
