package services

import (
	"context"
	"encoding/json"

	"slate/internal/domain/models"
)

// CreatePresentationRequest represents a request to create a presentation
type CreatePresentationRequest struct {
	OwnerID     string  `json:"-"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdatePresentationRequest represents a content/metadata update. Nil
// fields are left unchanged. Visibility is not updatable here; it has its
// own owner-only operation.
type UpdatePresentationRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	EditorData  json.RawMessage `json:"editor_data"`
	DrawingData json.RawMessage `json:"drawing_data"`
}

// UpdateVisibilityRequest toggles public visibility and the access level
// it implies. Owner-only.
type UpdateVisibilityRequest struct {
	IsPublic    *bool               `json:"is_public"`
	ShareAccess *models.AccessLevel `json:"share_access"`
}

// PresentationAccess is a presentation snapshot plus the level the caller
// was resolved to.
type PresentationAccess struct {
	Presentation *models.PresentationWithOwner `json:"presentation"`
	AccessLevel  models.MatchedLevel           `json:"access_level"`
}

// PresentationPage is one page of a presentation listing.
type PresentationPage struct {
	Presentations []models.Presentation `json:"presentations"`
	Total         int                   `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

// PresentationService defines business logic operations for presentations
type PresentationService interface {
	// Create creates a presentation owned by the caller.
	Create(ctx context.Context, req *CreatePresentationRequest) (*models.Presentation, error)

	// Get retrieves a presentation the caller can read, with the matched
	// access level attached.
	Get(ctx context.Context, id, principalID string) (*PresentationAccess, error)

	// List retrieves the caller's own presentations, paginated.
	List(ctx context.Context, ownerID string, page, limit int, search string) (*PresentationPage, error)

	// SharedWithMe retrieves presentations shared with the caller via
	// explicit grants, newest-first.
	SharedWithMe(ctx context.Context, userID string) ([]models.SharedPresentation, error)

	// Update mutates content/metadata. Requires write access.
	Update(ctx context.Context, id, principalID string, req *UpdatePresentationRequest) (*models.Presentation, error)

	// UpdateVisibility mutates isPublic/shareAccess. Owner-only.
	UpdateVisibility(ctx context.Context, id, ownerID string, req *UpdateVisibilityRequest) (*models.Presentation, error)

	// Delete destroys a presentation and cascades its grants and links.
	// Owner-only.
	Delete(ctx context.Context, id, ownerID string) error
}
