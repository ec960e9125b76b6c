package repositories

import (
	"context"

	"slate/internal/domain/models"
)

// ListOptions controls pagination and title search for presentation
// listings.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

// PresentationRepository is the storage gateway for presentations.
type PresentationRepository interface {
	// Create inserts a new presentation.
	Create(ctx context.Context, p *models.Presentation) error

	// GetByID retrieves a presentation regardless of caller. Access
	// decisions happen above this layer.
	GetByID(ctx context.Context, id string) (*models.Presentation, error)

	// GetOwned retrieves a presentation only when ownerID owns it.
	// Returns ErrNotFound otherwise, so owner-gated operations do not
	// leak existence.
	GetOwned(ctx context.Context, id, ownerID string) (*models.Presentation, error)

	// GetWithOwner retrieves a presentation joined with its owner's
	// display identity.
	GetWithOwner(ctx context.Context, id string) (*models.PresentationWithOwner, error)

	// ListOwned lists ownerID's presentations newest-first with optional
	// title search. Returns the page and the total match count.
	ListOwned(ctx context.Context, ownerID string, opts ListOptions) ([]models.Presentation, int, error)

	// Update persists title, description, content payloads, visibility
	// and share access.
	Update(ctx context.Context, p *models.Presentation) error

	// Delete removes a presentation row. Grant and link cleanup is the
	// service's job, inside one transaction.
	Delete(ctx context.Context, id, ownerID string) error
}
