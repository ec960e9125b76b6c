package handler

import (
	"log/slog"
	"net/http"

	"slate/internal/domain/services"
	"slate/internal/httputil"
)

// SharingHandler handles explicit per-user grant HTTP requests
type SharingHandler struct {
	grants services.ShareGrantStore
	logger *slog.Logger
}

// NewSharingHandler creates a new sharing handler
func NewSharingHandler(grants services.ShareGrantStore, logger *slog.Logger) *SharingHandler {
	return &SharingHandler{
		grants: grants,
		logger: logger,
	}
}

// SharePresentation grants a user access by email (owner-only)
// POST /api/presentations/{id}/share
func (h *SharingHandler) SharePresentation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	presentationID := r.PathValue("id")
	if presentationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	var req services.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.grants.Share(r.Context(), presentationID, userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, grant)
}

// ListShares lists all grants of a presentation (owner-only)
// GET /api/presentations/{id}/share
func (h *SharingHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	presentationID := r.PathValue("id")
	if presentationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	grants, err := h.grants.List(r.Context(), presentationID, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

// RevokeShare removes a user's grant (owner-only)
// DELETE /api/presentations/{id}/share
func (h *SharingHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	presentationID := r.PathValue("id")
	if presentationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.grants.Revoke(r.Context(), presentationID, userID, req.UserID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
