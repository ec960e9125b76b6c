package repositories

import (
	"context"

	"slate/internal/domain/models"
)

// UserRepository is the read-only identity lookup this engine needs.
// User writes belong to the auth service.
type UserRepository interface {
	// GetByID returns the user by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user registered under email, or ErrNotFound.
	// Grant-by-email resolution goes through here.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
