package sharing

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
	"slate/internal/hashing"
	"slate/internal/notify"
	"slate/internal/token"
)

// tokenIssueAttempts bounds the regenerate-on-collision loop. With
// 256-bit tokens a single collision is already astronomically unlikely;
// repeated collisions indicate a broken random source.
const tokenIssueAttempts = 5

// linkManager implements the ShareLinkManager interface
type linkManager struct {
	presentationRepo repositories.PresentationRepository
	linkRepo         repositories.LinkRepository
	userRepo         repositories.UserRepository
	tokens           *token.Generator
	hasher           *hashing.Hasher
	dispatcher       notify.Dispatcher
	clientURL        string
	logger           *slog.Logger
}

// NewShareLinkManager creates a new share-link manager
func NewShareLinkManager(
	presentationRepo repositories.PresentationRepository,
	linkRepo repositories.LinkRepository,
	userRepo repositories.UserRepository,
	tokens *token.Generator,
	hasher *hashing.Hasher,
	dispatcher notify.Dispatcher,
	clientURL string,
	logger *slog.Logger,
) services.ShareLinkManager {
	return &linkManager{
		presentationRepo: presentationRepo,
		linkRepo:         linkRepo,
		userRepo:         userRepo,
		tokens:           tokens,
		hasher:           hasher,
		dispatcher:       dispatcher,
		clientURL:        clientURL,
		logger:           logger,
	}
}

// Issue creates a link for a presentation the caller owns. Policy is
// fixed at issuance except for the fields Update may change later.
func (m *linkManager) Issue(ctx context.Context, presentationID, ownerID string, req *services.IssueLinkRequest) (*services.LinkInfo, error) {
	if req.AccessLevel == "" {
		req.AccessLevel = models.AccessRead
	}
	if err := validateIssueRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	p, err := m.presentationRepo.GetOwned(ctx, presentationID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// ExpiresAt wins over ExpiresInDays; both absent means no expiry.
	var expiresAt *time.Time
	switch {
	case req.ExpiresAt != nil:
		expiresAt = req.ExpiresAt
	case req.ExpiresInDays != nil:
		t := now.AddDate(0, 0, *req.ExpiresInDays)
		expiresAt = &t
	}

	var passwordHash *string
	if pw := strings.TrimSpace(req.Password); pw != "" {
		hashed, err := m.hasher.Hash(pw)
		if err != nil {
			return nil, err
		}
		passwordHash = &hashed
	}

	link := &models.ShareLink{
		ID:              uuid.NewString(),
		PresentationID:  presentationID,
		AccessLevel:     req.AccessLevel,
		PasswordHash:    passwordHash,
		ExpiresAt:       expiresAt,
		MaxViews:        req.MaxViews,
		ViewCount:       0,
		CreatedByUserID: ownerID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The unique token index is the source of truth for uniqueness;
	// regenerate on the rare collision instead of checking first.
	var created bool
	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		link.Token, err = m.tokens.Generate()
		if err != nil {
			return nil, err
		}
		err = m.linkRepo.Create(ctx, link)
		if err == nil {
			created = true
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		m.logger.Warn("share link token collision, regenerating", "attempt", attempt+1)
	}
	if !created {
		return nil, fmt.Errorf("issue share link: token collisions exhausted %d attempts", tokenIssueAttempts)
	}

	m.logger.Info("share link issued",
		"link_id", link.ID,
		"presentation_id", presentationID,
		"access_level", link.AccessLevel,
		"has_password", link.HasPassword(),
		"max_views", req.MaxViews,
	)

	if owner, err := m.userRepo.GetByID(ctx, ownerID); err != nil {
		m.logger.Warn("skipping link notification, owner lookup failed", "error", err)
	} else {
		m.dispatcher.Dispatch(notify.Event{
			Kind:              notify.EventLinkIssued,
			RecipientEmail:    owner.Email,
			RecipientName:     owner.Name,
			PresentationTitle: p.Title,
			ActorName:         owner.Name,
			AccessLevel:       string(link.AccessLevel),
			LinkURL:           m.linkURL(link.Token),
			OccurredAt:        now,
		})
	}

	info := m.linkInfo(link, now)
	return &info, nil
}

// Validate looks a link up by token and computes its state. No mutation.
func (m *linkManager) Validate(ctx context.Context, tok string) (*services.LinkValidation, error) {
	link, err := m.linkRepo.GetByToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	return &services.LinkValidation{
		State: models.ComputeLinkState(link.Snapshot(), time.Now()),
		Link:  link,
	}, nil
}

// Access consumes one view of an Active link. The order is fixed:
// state check, password gate, then the atomic conditional increment.
// Nothing before the increment mutates state, so a failed password
// attempt or an expired link never burns a view.
func (m *linkManager) Access(ctx context.Context, tok, passwordAttempt string) (*services.LinkAccess, error) {
	v, err := m.Validate(ctx, tok)
	if err != nil {
		return nil, err
	}
	if v.State != models.LinkStateActive {
		return nil, stateError(v.State)
	}

	link := v.Link
	if link.HasPassword() {
		if passwordAttempt == "" {
			return nil, domain.ErrPasswordRequired
		}
		ok, err := m.hasher.Compare(*link.PasswordHash, passwordAttempt)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrPasswordIncorrect
		}
	}

	// Single conditional write: the cap is re-checked at commit time.
	// Losing the race means the last slot went to a concurrent request.
	applied, err := m.linkRepo.ConsumeView(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Re-validate so a concurrent revoke reports Revoked rather
		// than a view-limit failure.
		if fresh, err := m.Validate(ctx, tok); err == nil && fresh.State != models.LinkStateActive {
			return nil, stateError(fresh.State)
		}
		return nil, &domain.LinkStateError{Reason: domain.LinkViewLimitExceeded}
	}
	link.ViewCount++

	presentation, err := m.presentationRepo.GetWithOwner(ctx, link.PresentationID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("share link consumed",
		"link_id", link.ID,
		"presentation_id", link.PresentationID,
		"view_count", link.ViewCount,
	)

	return &services.LinkAccess{
		Presentation: presentation,
		AccessLevel:  link.AccessLevel,
		Link:         m.linkInfo(link, time.Now()),
	}, nil
}

// ListForPresentation returns all links of a presentation the caller
// owns, newest-first, each with its computed state.
func (m *linkManager) ListForPresentation(ctx context.Context, presentationID, ownerID string) ([]services.LinkInfo, error) {
	if _, err := m.presentationRepo.GetOwned(ctx, presentationID, ownerID); err != nil {
		return nil, err
	}

	links, err := m.linkRepo.ListForPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	infos := make([]services.LinkInfo, 0, len(links))
	for i := range links {
		infos = append(infos, m.linkInfo(&links[i], now))
	}
	return infos, nil
}

// Update mutates link policy fields. ViewCount is untouchable here; the
// consume path owns it.
func (m *linkManager) Update(ctx context.Context, linkID, ownerID string, fields *services.UpdateLinkFields) (*services.LinkInfo, error) {
	link, err := m.getOwnedLink(ctx, linkID, ownerID)
	if err != nil {
		return nil, err
	}

	if fields.AccessLevel != nil {
		if !fields.AccessLevel.Valid() {
			return nil, fmt.Errorf("%w: access level must be read or write", domain.ErrValidation)
		}
		link.AccessLevel = *fields.AccessLevel
	}
	if fields.IsActive != nil {
		link.IsActive = *fields.IsActive
	}
	if fields.SetExpiresAt {
		link.ExpiresAt = fields.ExpiresAt
	}
	if fields.SetMaxViews {
		if fields.MaxViews != nil && *fields.MaxViews < 1 {
			return nil, fmt.Errorf("%w: max views must be positive", domain.ErrValidation)
		}
		link.MaxViews = fields.MaxViews
	}
	if fields.SetPassword {
		if fields.Password == nil || strings.TrimSpace(*fields.Password) == "" {
			link.PasswordHash = nil
		} else {
			pw := strings.TrimSpace(*fields.Password)
			if len(pw) > config.MaxLinkPasswordLength {
				return nil, fmt.Errorf("%w: password exceeds %d characters", domain.ErrValidation, config.MaxLinkPasswordLength)
			}
			hashed, err := m.hasher.Hash(pw)
			if err != nil {
				return nil, err
			}
			link.PasswordHash = &hashed
		}
	}

	link.UpdatedAt = time.Now()
	if err := m.linkRepo.Update(ctx, link); err != nil {
		return nil, err
	}

	m.logger.Info("share link updated", "link_id", link.ID)

	info := m.linkInfo(link, time.Now())
	return &info, nil
}

// Revoke flips the link inactive. Terminal state: the only recovery is
// issuing a new link.
func (m *linkManager) Revoke(ctx context.Context, linkID, ownerID string) error {
	link, err := m.getOwnedLink(ctx, linkID, ownerID)
	if err != nil {
		return err
	}

	if !link.IsActive {
		return nil
	}

	link.IsActive = false
	link.UpdatedAt = time.Now()
	if err := m.linkRepo.Update(ctx, link); err != nil {
		return err
	}

	m.logger.Info("share link revoked", "link_id", link.ID)
	return nil
}

// Delete hard-deletes the link.
func (m *linkManager) Delete(ctx context.Context, linkID, ownerID string) error {
	link, err := m.getOwnedLink(ctx, linkID, ownerID)
	if err != nil {
		return err
	}

	if err := m.linkRepo.Delete(ctx, link.ID); err != nil {
		return err
	}

	m.logger.Info("share link deleted", "link_id", link.ID)
	return nil
}

// Analytics reports usage for a link the caller owns. Read-only.
func (m *linkManager) Analytics(ctx context.Context, linkID, ownerID string) (*services.LinkAnalytics, error) {
	link, err := m.getOwnedLink(ctx, linkID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	analytics := &services.LinkAnalytics{
		TotalViews: link.ViewCount,
		MaxViews:   link.MaxViews,
		ExpiresAt:  link.ExpiresAt,
		IsExpired:  link.ExpiresAt != nil && now.After(*link.ExpiresAt),
		IsActive:   link.IsActive,
		CreatedAt:  link.CreatedAt,
	}
	if link.MaxViews != nil {
		remaining := *link.MaxViews - link.ViewCount
		if remaining < 0 {
			remaining = 0
		}
		analytics.Remaining = &remaining
	}

	return analytics, nil
}

// getOwnedLink loads a link and verifies ownership through its
// presentation. Both failure modes collapse to NotFound so non-owners
// learn nothing about the link's existence.
func (m *linkManager) getOwnedLink(ctx context.Context, linkID, ownerID string) (*models.ShareLink, error) {
	link, err := m.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if _, err := m.presentationRepo.GetOwned(ctx, link.PresentationID, ownerID); err != nil {
		return nil, err
	}

	return link, nil
}

func (m *linkManager) linkInfo(l *models.ShareLink, now time.Time) services.LinkInfo {
	return services.LinkInfo{
		ShareLink:   *l,
		State:       models.ComputeLinkState(l.Snapshot(), now),
		HasPassword: l.HasPassword(),
		URL:         m.linkURL(l.Token),
	}
}

func (m *linkManager) linkURL(tok string) string {
	return fmt.Sprintf("%s/shared/%s", strings.TrimRight(m.clientURL, "/"), tok)
}

func stateError(state models.LinkState) error {
	switch state {
	case models.LinkStateRevoked:
		return &domain.LinkStateError{Reason: domain.LinkRevoked}
	case models.LinkStateExpired:
		return &domain.LinkStateError{Reason: domain.LinkExpired}
	case models.LinkStateViewLimitExceeded:
		return &domain.LinkStateError{Reason: domain.LinkViewLimitExceeded}
	default:
		return &domain.LinkStateError{}
	}
}

func validateIssueRequest(req *services.IssueLinkRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.AccessLevel,
			validation.Required,
			validation.In(models.AccessRead, models.AccessWrite),
		),
		validation.Field(&req.Password,
			validation.Length(0, config.MaxLinkPasswordLength),
		),
		validation.Field(&req.ExpiresInDays,
			validation.Min(1),
		),
		validation.Field(&req.MaxViews,
			validation.Min(1),
		),
	)
}
