package sharing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
	"slate/internal/notify"
)

// In-memory repository fakes. They honor the same contracts as the
// postgres implementations: owner-scoped lookups return ErrNotFound on
// any mismatch, token uniqueness surfaces as ErrConflict, and
// ConsumeView applies the cap check and the increment under one lock.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePresentationRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Presentation
	owners map[string]models.UserRef
}

func newFakePresentationRepo() *fakePresentationRepo {
	return &fakePresentationRepo{
		items:  make(map[string]*models.Presentation),
		owners: make(map[string]models.UserRef),
	}
}

func (r *fakePresentationRepo) put(p *models.Presentation, owner models.UserRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.items[p.ID] = &cp
	r.owners[p.OwnerID] = owner
}

func (r *fakePresentationRepo) Create(_ context.Context, p *models.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePresentationRepo) GetByID(_ context.Context, id string) (*models.Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePresentationRepo) GetOwned(_ context.Context, id, ownerID string) (*models.Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePresentationRepo) GetWithOwner(_ context.Context, id string) (*models.PresentationWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	return &models.PresentationWithOwner{
		Presentation: *p,
		Owner:        r.owners[p.OwnerID],
	}, nil
}

func (r *fakePresentationRepo) ListOwned(_ context.Context, ownerID string, _ repositories.ListOptions) ([]models.Presentation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Presentation
	for _, p := range r.items {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *fakePresentationRepo) Update(_ context.Context, p *models.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return fmt.Errorf("presentation %s: %w", p.ID, domain.ErrNotFound)
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePresentationRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

type fakeLinkRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.ShareLink
	byToken map[string]string
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{
		byID:    make(map[string]*models.ShareLink),
		byToken: make(map[string]string),
	}
}

func (r *fakeLinkRepo) Create(_ context.Context, l *models.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byToken[l.Token]; exists {
		return fmt.Errorf("share link token: %w", domain.ErrConflict)
	}
	cp := *l
	r.byID[l.ID] = &cp
	r.byToken[l.Token] = l.ID
	return nil
}

func (r *fakeLinkRepo) GetByToken(_ context.Context, token string) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byToken[token]
	if !ok {
		return nil, fmt.Errorf("share link: %w", domain.ErrNotFound)
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *fakeLinkRepo) GetByID(_ context.Context, id string) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

// Update mirrors the SQL implementation: everything but view_count.
func (r *fakeLinkRepo) Update(_ context.Context, l *models.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[l.ID]
	if !ok {
		return fmt.Errorf("share link %s: %w", l.ID, domain.ErrNotFound)
	}
	stored.AccessLevel = l.AccessLevel
	stored.PasswordHash = l.PasswordHash
	stored.ExpiresAt = l.ExpiresAt
	stored.MaxViews = l.MaxViews
	stored.IsActive = l.IsActive
	stored.UpdatedAt = l.UpdatedAt
	return nil
}

func (r *fakeLinkRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
	}
	delete(r.byToken, l.Token)
	delete(r.byID, id)
	return nil
}

func (r *fakeLinkRepo) DeleteForPresentation(_ context.Context, presentationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.byID {
		if l.PresentationID == presentationID {
			delete(r.byToken, l.Token)
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *fakeLinkRepo) ListForPresentation(_ context.Context, presentationID string) ([]models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ShareLink
	for _, l := range r.byID {
		if l.PresentationID == presentationID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ConsumeView holds the lock across the check and the increment, matching
// the atomicity of the conditional UPDATE it stands in for.
func (r *fakeLinkRepo) ConsumeView(_ context.Context, linkID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[linkID]
	if !ok {
		return false, nil
	}
	if !l.IsActive {
		return false, nil
	}
	if l.MaxViews != nil && l.ViewCount >= *l.MaxViews {
		return false, nil
	}
	l.ViewCount++
	return true, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

type fakeGrantRepo struct {
	mu     sync.Mutex
	grants map[string]*models.ShareGrant
	users  *fakeUserRepo
}

func newFakeGrantRepo(users *fakeUserRepo) *fakeGrantRepo {
	return &fakeGrantRepo{
		grants: make(map[string]*models.ShareGrant),
		users:  users,
	}
}

func grantKey(presentationID, userID string) string {
	return presentationID + "|" + userID
}

func (r *fakeGrantRepo) Find(_ context.Context, presentationID, userID string) (*models.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[grantKey(presentationID, userID)]
	if !ok {
		return nil, fmt.Errorf("share grant: %w", domain.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

// Upsert mirrors ON CONFLICT DO UPDATE: an existing pair keeps its id
// and created_at, only the access level moves.
func (r *fakeGrantRepo) Upsert(_ context.Context, g *models.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := grantKey(g.PresentationID, g.GranteeUserID)
	if existing, ok := r.grants[key]; ok {
		existing.AccessLevel = g.AccessLevel
		existing.UpdatedAt = g.UpdatedAt
		*g = *existing
		return nil
	}
	cp := *g
	r.grants[key] = &cp
	return nil
}

func (r *fakeGrantRepo) Delete(_ context.Context, presentationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := grantKey(presentationID, userID)
	if _, ok := r.grants[key]; !ok {
		return fmt.Errorf("share grant: %w", domain.ErrNotFound)
	}
	delete(r.grants, key)
	return nil
}

func (r *fakeGrantRepo) DeleteForPresentation(_ context.Context, presentationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, g := range r.grants {
		if g.PresentationID == presentationID {
			delete(r.grants, key)
		}
	}
	return nil
}

func (r *fakeGrantRepo) ListForPresentation(_ context.Context, presentationID string) ([]models.ShareGrantWithGrantee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ShareGrantWithGrantee
	for _, g := range r.grants {
		if g.PresentationID != presentationID {
			continue
		}
		item := models.ShareGrantWithGrantee{ShareGrant: *g}
		if u, ok := r.users.users[g.GranteeUserID]; ok {
			item.Grantee = u.Ref()
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeGrantRepo) ListForGrantee(_ context.Context, userID string) ([]models.SharedPresentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SharedPresentation
	for _, g := range r.grants {
		if g.GranteeUserID == userID {
			out = append(out, models.SharedPresentation{
				AccessLevel: g.AccessLevel,
				SharedAt:    g.CreatedAt,
			})
		}
	}
	return out, nil
}

// captureDispatcher records dispatched events for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *captureDispatcher) Dispatch(event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *captureDispatcher) all() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Event(nil), d.events...)
}
