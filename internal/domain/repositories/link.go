package repositories

import (
	"context"

	"slate/internal/domain/models"
)

// LinkRepository is the storage gateway for share links. Token uniqueness
// is guaranteed by a unique index; Create surfaces collisions as
// ErrConflict so the issuer can regenerate.
type LinkRepository interface {
	// Create inserts a new link. Returns ErrConflict on a token
	// collision.
	Create(ctx context.Context, l *models.ShareLink) error

	// GetByToken returns the link carrying the given token, or
	// ErrNotFound.
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)

	// GetByID returns the link by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.ShareLink, error)

	// Update persists access level, password hash, expiry, view cap and
	// active flag. It never writes view_count.
	Update(ctx context.Context, l *models.ShareLink) error

	// Delete hard-deletes a link, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteForPresentation removes every link of a presentation.
	// Used by the cascade delete.
	DeleteForPresentation(ctx context.Context, presentationID string) error

	// ListForPresentation returns all links of a presentation,
	// newest-first.
	ListForPresentation(ctx context.Context, presentationID string) ([]models.ShareLink, error)

	// ConsumeView performs the atomic conditional increment: view_count
	// gains 1 only if the link is still active and under its cap at
	// commit time. Reports whether the increment was applied. A false
	// return means the caller lost the race (or the link was revoked
	// concurrently) and must re-validate rather than succeed.
	ConsumeView(ctx context.Context, linkID string) (bool, error)
}
