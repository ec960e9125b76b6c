package sharing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
	"slate/internal/domain/services"
	"slate/internal/notify"
)

// grantStore implements the ShareGrantStore interface
type grantStore struct {
	presentationRepo repositories.PresentationRepository
	grantRepo        repositories.GrantRepository
	userRepo         repositories.UserRepository
	dispatcher       notify.Dispatcher
	logger           *slog.Logger
}

// NewShareGrantStore creates a new grant store
func NewShareGrantStore(
	presentationRepo repositories.PresentationRepository,
	grantRepo repositories.GrantRepository,
	userRepo repositories.UserRepository,
	dispatcher notify.Dispatcher,
	logger *slog.Logger,
) services.ShareGrantStore {
	return &grantStore{
		presentationRepo: presentationRepo,
		grantRepo:        grantRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
		logger:           logger,
	}
}

// Share grants or updates access for the user registered under req.Email.
// The owner-scoped presentation lookup doubles as the permission check:
// a caller who is not the owner sees NotFound, never the presentation's
// existence.
func (s *grantStore) Share(ctx context.Context, presentationID, ownerID string, req *services.ShareRequest) (*models.ShareGrantWithGrantee, error) {
	if err := validateShareRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	p, err := s.presentationRepo.GetOwned(ctx, presentationID, ownerID)
	if err != nil {
		return nil, err
	}

	grantee, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if grantee.ID == ownerID {
		return nil, domain.ErrSelfShare
	}

	now := time.Now()
	grant := &models.ShareGrant{
		ID:              uuid.NewString(),
		PresentationID:  presentationID,
		GranteeUserID:   grantee.ID,
		AccessLevel:     req.AccessLevel,
		GrantedByUserID: ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Re-sharing an existing pair updates the level in place; the
	// storage upsert keeps at most one grant per (presentation, user).
	if err := s.grantRepo.Upsert(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("presentation shared",
		"presentation_id", presentationID,
		"grantee_id", grantee.ID,
		"access_level", grant.AccessLevel,
	)

	// Post-commit, fire-and-forget. Never on the decision path.
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("skipping share notification, owner lookup failed", "error", err)
	} else {
		s.dispatcher.Dispatch(notify.Event{
			Kind:              notify.EventPresentationShared,
			RecipientEmail:    grantee.Email,
			RecipientName:     grantee.Name,
			PresentationTitle: p.Title,
			ActorName:         owner.Name,
			AccessLevel:       string(grant.AccessLevel),
			OccurredAt:        now,
		})
	}

	return &models.ShareGrantWithGrantee{
		ShareGrant: *grant,
		Grantee:    grantee.Ref(),
	}, nil
}

// Revoke removes the grant for granteeUserID. Owner-only.
func (s *grantStore) Revoke(ctx context.Context, presentationID, ownerID, granteeUserID string) error {
	if granteeUserID == "" {
		return fmt.Errorf("%w: grantee user id is required", domain.ErrValidation)
	}

	if _, err := s.presentationRepo.GetOwned(ctx, presentationID, ownerID); err != nil {
		return err
	}

	if err := s.grantRepo.Delete(ctx, presentationID, granteeUserID); err != nil {
		return err
	}

	s.logger.Info("share revoked",
		"presentation_id", presentationID,
		"grantee_id", granteeUserID,
	)

	return nil
}

// List returns all grants of the presentation, newest-first. Owner-only.
func (s *grantStore) List(ctx context.Context, presentationID, ownerID string) ([]models.ShareGrantWithGrantee, error) {
	if _, err := s.presentationRepo.GetOwned(ctx, presentationID, ownerID); err != nil {
		return nil, err
	}

	return s.grantRepo.ListForPresentation(ctx, presentationID)
}

func validateShareRequest(req *services.ShareRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.AccessLevel,
			validation.Required,
			validation.In(models.AccessRead, models.AccessWrite),
		),
	)
}
