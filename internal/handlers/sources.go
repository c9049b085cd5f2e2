package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/models"
	"github.com/agencyops/seo-intel/internal/queue"
	"github.com/agencyops/seo-intel/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SourceHandler handles source registry requests
type SourceHandler struct {
	sources  database.SourceRepositoryInterface
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sources database.SourceRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *SourceHandler {
	return &SourceHandler{sources: sources, jobQueue: jobQueue, logger: logger}
}

// RegisterRoutes registers source routes on the given router.
// The router should already have the /sources prefix.
func (h *SourceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListSources).Methods("GET")
	r.HandleFunc("", h.CreateSource).Methods("POST")
	r.HandleFunc("/{id}", h.GetSource).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateSource).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteSource).Methods("DELETE")
	r.HandleFunc("/{id}/test", h.TestSource).Methods("POST")
}

// CreateSourceRequest represents a create source request
type CreateSourceRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	URL      string `json:"url" validate:"required,url"`
	Tier     string `json:"tier" validate:"required,source_tier"`
	Category string `json:"category" validate:"required,min=1,max=100"`
	Method   string `json:"method" validate:"required,fetch_method"`
}

// UpdateSourceRequest represents an update source request
type UpdateSourceRequest struct {
	Name     *string `json:"name,omitempty"`
	URL      *string `json:"url,omitempty"`
	Tier     *string `json:"tier,omitempty"`
	Category *string `json:"category,omitempty"`
	Method   *string `json:"method,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// ListSources lists configured sources, optionally only active ones
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	sources, err := h.sources.List(r.Context(), activeOnly)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve sources")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"sources": sources, "count": len(sources)})
}

// CreateSource registers a new content source
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	source := &models.Source{
		ID:       uuid.New(),
		Name:     req.Name,
		URL:      req.URL,
		Tier:     models.SourceTier(req.Tier),
		Category: req.Category,
		Method:   models.FetchMethod(req.Method),
		Active:   true,
	}

	if err := h.sources.Create(r.Context(), source); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create source")
		return
	}

	h.logger.Info("source_created",
		zap.String("source_id", source.ID.String()),
		zap.String("name", source.Name),
		zap.String("method", string(source.Method)),
	)

	respondJSON(w, http.StatusCreated, source)
}

// GetSource returns one source by ID
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid source ID")
		return
	}

	source, err := h.sources.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Source not found")
		return
	}

	respondJSON(w, http.StatusOK, source)
}

// UpdateSource partially updates a source
func (h *SourceHandler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid source ID")
		return
	}

	var req UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	source, err := h.sources.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, err, "Source not found")
		return
	}

	if req.Name != nil {
		source.Name = *req.Name
	}
	if req.URL != nil {
		source.URL = *req.URL
	}
	if req.Tier != nil {
		if err := validation.ValidateSourceTier(*req.Tier); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		source.Tier = models.SourceTier(*req.Tier)
	}
	if req.Category != nil {
		source.Category = *req.Category
	}
	if req.Method != nil {
		if err := validation.ValidateFetchMethod(*req.Method); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		source.Method = models.FetchMethod(*req.Method)
	}
	if req.Active != nil {
		source.Active = *req.Active
	}

	if err := h.sources.Update(r.Context(), source); err != nil {
		respondRepoError(w, err, "Source not found")
		return
	}

	respondJSON(w, http.StatusOK, source)
}

// DeleteSource removes a source from the registry
func (h *SourceHandler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid source ID")
		return
	}

	if err := h.sources.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err, "Source not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TestSource enqueues a test fetch for one source. The fetch runs on the
// worker; its result shows up in the worker logs, not in this response.
func (h *SourceHandler) TestSource(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid source ID")
		return
	}

	if _, err := h.sources.GetByID(r.Context(), id); err != nil {
		respondRepoError(w, err, "Source not found")
		return
	}

	job := queue.NewSourceTestJob(id)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue test job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}
