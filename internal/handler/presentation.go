package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"slate/internal/domain/services"
	"slate/internal/httputil"
)

// PresentationHandler handles presentation HTTP requests
type PresentationHandler struct {
	presentations services.PresentationService
	logger        *slog.Logger
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(presentations services.PresentationService, logger *slog.Logger) *PresentationHandler {
	return &PresentationHandler{
		presentations: presentations,
		logger:        logger,
	}
}

// HealthCheck responds to liveness probes
// GET /health
func (h *PresentationHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreatePresentation creates a new presentation
// POST /api/presentations
func (h *PresentationHandler) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req services.CreatePresentationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.OwnerID = userID

	p, err := h.presentations.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, p)
}

// ListPresentations lists the caller's presentations
// GET /api/presentations?page=&limit=&search=
func (h *PresentationHandler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.presentations.List(r.Context(), userID, page, limit, query.Get("search"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SharedWithMe lists presentations shared with the caller
// GET /api/presentations/shared-with-me
func (h *PresentationHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	shared, err := h.presentations.SharedWithMe(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, shared)
}

// GetPresentation retrieves a presentation the caller can read
// GET /api/presentations/{id}
func (h *PresentationHandler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	result, err := h.presentations.Get(r.Context(), id, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdatePresentation updates content/metadata (requires write access)
// PATCH /api/presentations/{id}
func (h *PresentationHandler) UpdatePresentation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	var req services.UpdatePresentationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.presentations.Update(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, p)
}

// UpdateVisibility toggles public visibility (owner-only)
// PATCH /api/presentations/{id}/visibility
func (h *PresentationHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	var req services.UpdateVisibilityRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.presentations.UpdateVisibility(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, p)
}

// DeletePresentation deletes a presentation and cascades grants/links
// DELETE /api/presentations/{id}
func (h *PresentationHandler) DeletePresentation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	if err := h.presentations.Delete(r.Context(), id, userID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
