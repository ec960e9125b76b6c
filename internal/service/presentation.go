package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"slate/internal/config"
	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
	"slate/internal/domain/services"
	"slate/internal/service/access"
)

// presentationService implements the PresentationService interface
type presentationService struct {
	presentationRepo repositories.PresentationRepository
	grantRepo        repositories.GrantRepository
	linkRepo         repositories.LinkRepository
	txManager        repositories.TransactionManager
	logger           *slog.Logger
}

// NewPresentationService creates a new presentation service
func NewPresentationService(
	presentationRepo repositories.PresentationRepository,
	grantRepo repositories.GrantRepository,
	linkRepo repositories.LinkRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.PresentationService {
	return &presentationService{
		presentationRepo: presentationRepo,
		grantRepo:        grantRepo,
		linkRepo:         linkRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Create creates a presentation owned by the caller. New presentations
// start private with read as the implied public level.
func (s *presentationService) Create(ctx context.Context, req *services.CreatePresentationRequest) (*models.Presentation, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	p := &models.Presentation{
		ID:          uuid.NewString(),
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    false,
		ShareAccess: models.AccessRead,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.presentationRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("presentation created",
		"id", p.ID,
		"owner_id", p.OwnerID,
		"title", p.Title,
	)

	return p, nil
}

// Get retrieves a presentation the caller can read. The resolver runs on
// freshly loaded state every time; a revoke takes effect on the next
// request.
func (s *presentationService) Get(ctx context.Context, id, principalID string) (*services.PresentationAccess, error) {
	p, err := s.presentationRepo.GetWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	decision, err := s.resolve(ctx, &p.Presentation, principalID, models.AccessRead)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		// The caller guessed an id they cannot see; keep existence
		// hidden.
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}

	return &services.PresentationAccess{
		Presentation: p,
		AccessLevel:  decision.MatchedLevel,
	}, nil
}

// List retrieves the caller's own presentations, paginated newest-first.
func (s *presentationService) List(ctx context.Context, ownerID string, page, limit int, search string) (*services.PresentationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}

	presentations, total, err := s.presentationRepo.ListOwned(ctx, ownerID, repositories.ListOptions{
		Page:   page,
		Limit:  limit,
		Search: search,
	})
	if err != nil {
		return nil, err
	}

	return &services.PresentationPage{
		Presentations: presentations,
		Total:         total,
		Page:          page,
		Limit:         limit,
	}, nil
}

// SharedWithMe retrieves presentations shared with the caller.
func (s *presentationService) SharedWithMe(ctx context.Context, userID string) ([]models.SharedPresentation, error) {
	return s.grantRepo.ListForGrantee(ctx, userID)
}

// Update mutates content/metadata. Requires write access; a caller who
// can see the presentation but lacks write gets Forbidden, since
// existence is already implied for them.
func (s *presentationService) Update(ctx context.Context, id, principalID string, req *services.UpdatePresentationRequest) (*models.Presentation, error) {
	p, err := s.presentationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	readDecision, err := s.resolve(ctx, p, principalID, models.AccessRead)
	if err != nil {
		return nil, err
	}
	if !readDecision.Granted {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}

	writeDecision, err := s.resolve(ctx, p, principalID, models.AccessWrite)
	if err != nil {
		return nil, err
	}
	if !writeDecision.Granted {
		return nil, fmt.Errorf("write access to presentation %s: %w", id, domain.ErrForbidden)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > config.MaxPresentationTitleLength {
			return nil, fmt.Errorf("%w: title must be 1-%d characters", domain.ErrValidation, config.MaxPresentationTitleLength)
		}
		p.Title = title
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.EditorData != nil {
		p.EditorData = req.EditorData
	}
	if req.DrawingData != nil {
		p.DrawingData = req.DrawingData
	}

	p.UpdatedAt = time.Now()
	if err := s.presentationRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("presentation updated",
		"id", p.ID,
		"principal_id", principalID,
		"matched_level", writeDecision.MatchedLevel,
	)

	return p, nil
}

// UpdateVisibility mutates isPublic/shareAccess. Owner-only.
func (s *presentationService) UpdateVisibility(ctx context.Context, id, ownerID string, req *services.UpdateVisibilityRequest) (*models.Presentation, error) {
	p, err := s.presentationRepo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if req.ShareAccess != nil {
		if !req.ShareAccess.Valid() {
			return nil, fmt.Errorf("%w: share access must be read or write", domain.ErrValidation)
		}
		p.ShareAccess = *req.ShareAccess
	}

	p.UpdatedAt = time.Now()
	if err := s.presentationRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("presentation visibility updated",
		"id", p.ID,
		"is_public", p.IsPublic,
		"share_access", p.ShareAccess,
	)

	return p, nil
}

// Delete destroys a presentation and cascades its grants and links in
// one transaction. Owner-only.
func (s *presentationService) Delete(ctx context.Context, id, ownerID string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.grantRepo.DeleteForPresentation(txCtx, id); err != nil {
			return err
		}
		if err := s.linkRepo.DeleteForPresentation(txCtx, id); err != nil {
			return err
		}
		return s.presentationRepo.Delete(txCtx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("presentation deleted", "id", id, "owner_id", ownerID)
	return nil
}

// resolve loads the principal's grant fresh and runs the pure resolver.
func (s *presentationService) resolve(ctx context.Context, p *models.Presentation, principalID string, required models.AccessLevel) (access.Decision, error) {
	var grant *models.ShareGrant
	if principalID != p.OwnerID && !p.IsPublic {
		g, err := s.grantRepo.Find(ctx, p.ID, principalID)
		if err != nil && !isNotFound(err) {
			return access.Decision{}, err
		}
		grant = g
	}

	return access.Resolve(p, principalID, required, grant), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func (s *presentationService) validateCreateRequest(req *services.CreatePresentationRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxPresentationTitleLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxPresentationDescriptionLength),
		),
	)
}
