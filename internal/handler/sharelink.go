package handler

import (
	"log/slog"
	"net/http"

	"slate/internal/domain/models"
	"slate/internal/domain/services"
	"slate/internal/httputil"
)

// ShareLinkHandler handles tokenized share-link HTTP requests
type ShareLinkHandler struct {
	links  services.ShareLinkManager
	logger *slog.Logger
}

// NewShareLinkHandler creates a new share-link handler
func NewShareLinkHandler(links services.ShareLinkManager, logger *slog.Logger) *ShareLinkHandler {
	return &ShareLinkHandler{
		links:  links,
		logger: logger,
	}
}

// IssueLink creates a share link (owner-only)
// POST /api/presentations/{id}/links
func (h *ShareLinkHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	presentationID := r.PathValue("id")
	if presentationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	var req services.IssueLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.links.Issue(r.Context(), presentationID, userID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, link)
}

// ListLinks lists all links of a presentation (owner-only)
// GET /api/presentations/{id}/links
func (h *ShareLinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	presentationID := r.PathValue("id")
	if presentationID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "presentation ID is required")
		return
	}

	links, err := h.links.ListForPresentation(r.Context(), presentationID, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, links)
}

// updateLinkRequest mirrors UpdateLinkFields with RFC 7396 tri-state
// fields, so clients can clear a password or an expiry with JSON null.
type updateLinkRequest struct {
	AccessLevel *models.AccessLevel     `json:"access_level"`
	IsActive    *bool                   `json:"is_active"`
	Password    httputil.OptionalString `json:"password"`
	ExpiresAt   httputil.OptionalTime   `json:"expires_at"`
	MaxViews    httputil.OptionalInt    `json:"max_views"`
}

// UpdateLink updates link policy fields (owner-only)
// PATCH /api/links/{linkId}
func (h *ShareLinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	linkID := r.PathValue("linkId")
	if linkID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "link ID is required")
		return
	}

	var req updateLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := &services.UpdateLinkFields{
		AccessLevel:  req.AccessLevel,
		IsActive:     req.IsActive,
		SetPassword:  req.Password.Present,
		Password:     req.Password.Value,
		SetExpiresAt: req.ExpiresAt.Present,
		ExpiresAt:    req.ExpiresAt.Value,
		SetMaxViews:  req.MaxViews.Present,
		MaxViews:     req.MaxViews.Value,
	}

	link, err := h.links.Update(r.Context(), linkID, userID, fields)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, link)
}

// RevokeLink deactivates a link (owner-only)
// POST /api/links/{linkId}/revoke
func (h *ShareLinkHandler) RevokeLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	linkID := r.PathValue("linkId")
	if linkID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "link ID is required")
		return
	}

	if err := h.links.Revoke(r.Context(), linkID, userID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteLink hard-deletes a link (owner-only)
// DELETE /api/links/{linkId}
func (h *ShareLinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	linkID := r.PathValue("linkId")
	if linkID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "link ID is required")
		return
	}

	if err := h.links.Delete(r.Context(), linkID, userID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LinkAnalytics reports usage for a link (owner-only)
// GET /api/links/{linkId}/analytics
func (h *ShareLinkHandler) LinkAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	linkID := r.PathValue("linkId")
	if linkID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "link ID is required")
		return
	}

	analytics, err := h.links.Analytics(r.Context(), linkID, userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, analytics)
}

// AccessSharedPresentation consumes one view of a link. Unauthenticated:
// the token is the credential.
// POST /api/shared/{token}
func (h *ShareLinkHandler) AccessSharedPresentation(w http.ResponseWriter, r *http.Request) {
	tok := r.PathValue("token")
	if tok == "" {
		httputil.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}

	// Body is optional: only password-gated links need one.
	var req struct {
		Password string `json:"password"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.links.Access(r.Context(), tok, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
