package repositories

import (
	"context"

	"slate/internal/domain/models"
)

// GrantRepository is the storage gateway for explicit share grants. The
// (presentation_id, grantee_user_id) pair is unique at the storage level.
type GrantRepository interface {
	// Find returns the grant for (presentationID, userID), or ErrNotFound.
	Find(ctx context.Context, presentationID, userID string) (*models.ShareGrant, error)

	// Upsert inserts the grant or, when the pair already exists, updates
	// its access level in place. The stored row is written back to g.
	Upsert(ctx context.Context, g *models.ShareGrant) error

	// Delete removes the grant for (presentationID, userID), or
	// ErrNotFound when no such grant exists.
	Delete(ctx context.Context, presentationID, userID string) error

	// DeleteForPresentation removes every grant of a presentation.
	// Used by the cascade delete.
	DeleteForPresentation(ctx context.Context, presentationID string) error

	// ListForPresentation returns all grants of a presentation with
	// grantee identity attached, newest-first.
	ListForPresentation(ctx context.Context, presentationID string) ([]models.ShareGrantWithGrantee, error)

	// ListForGrantee returns the presentations shared with userID,
	// newest-first.
	ListForGrantee(ctx context.Context, userID string) ([]models.SharedPresentation, error)
}
