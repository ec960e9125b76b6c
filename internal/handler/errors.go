package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"slate/internal/domain"
	"slate/internal/httputil"
)

// handleError maps domain errors to RFC 7807 responses. Password errors
// carry a requires_password extra so clients can prompt versus reject;
// link-state errors carry the sub-reason so clients can render the right
// message. Error details never include hashes, tokens or another user's
// identity.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrPasswordRequired):
		httputil.RespondErrorWithExtras(w, http.StatusUnauthorized, "password required", map[string]interface{}{
			"requires_password": true,
		})
	case errors.Is(err, domain.ErrPasswordIncorrect):
		httputil.RespondErrorWithExtras(w, http.StatusUnauthorized, "incorrect password", map[string]interface{}{
			"requires_password": true,
		})
	case errors.Is(err, domain.ErrSelfShare):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		var linkErr *domain.LinkStateError
		if errors.As(err, &linkErr) {
			httputil.RespondErrorWithExtras(w, linkErr.StatusCode(), linkErr.Error(), map[string]interface{}{
				"reason": string(linkErr.Reason),
			})
			return
		}

		var httpErr domain.HTTPError
		if errors.As(err, &httpErr) {
			httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
			return
		}

		switch {
		case errors.Is(err, domain.ErrNotFound):
			httputil.RespondError(w, http.StatusNotFound, "resource not found")
		case errors.Is(err, domain.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrConflict):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrUnauthorized):
			httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, "forbidden")
		default:
			logger.Error("unexpected error", "error", err)
			httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// requirePrincipal extracts the authenticated user id or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
