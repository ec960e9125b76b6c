package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"slate/internal/config"
	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
	"slate/internal/domain/services"
)

// Minimal in-memory fakes. They honor the repository contracts the
// service depends on: owner-scoped lookups hide existence, grant pairs
// are unique, and the tx manager just runs the function.

type memPresentationRepo struct {
	mu     sync.Mutex
	items  map[string]*models.Presentation
	owners map[string]models.UserRef
}

func newMemPresentationRepo() *memPresentationRepo {
	return &memPresentationRepo{
		items:  make(map[string]*models.Presentation),
		owners: make(map[string]models.UserRef),
	}
}

func (r *memPresentationRepo) Create(_ context.Context, p *models.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memPresentationRepo) GetByID(_ context.Context, id string) (*models.Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *memPresentationRepo) GetOwned(_ context.Context, id, ownerID string) (*models.Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *memPresentationRepo) GetWithOwner(_ context.Context, id string) (*models.PresentationWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	return &models.PresentationWithOwner{Presentation: *p, Owner: r.owners[p.OwnerID]}, nil
}

func (r *memPresentationRepo) ListOwned(_ context.Context, ownerID string, opts repositories.ListOptions) ([]models.Presentation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Presentation
	for _, p := range r.items {
		if p.OwnerID != ownerID {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(opts.Search)) {
			continue
		}
		all = append(all, *p)
	}
	total := len(all)
	start := (opts.Page - 1) * opts.Limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memPresentationRepo) Update(_ context.Context, p *models.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return fmt.Errorf("presentation %s: %w", p.ID, domain.ErrNotFound)
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memPresentationRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.OwnerID != ownerID {
		return fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

type memGrantRepo struct {
	mu     sync.Mutex
	grants map[string]*models.ShareGrant
}

func newMemGrantRepo() *memGrantRepo {
	return &memGrantRepo{grants: make(map[string]*models.ShareGrant)}
}

func (r *memGrantRepo) key(presentationID, userID string) string {
	return presentationID + "|" + userID
}

func (r *memGrantRepo) put(g *models.ShareGrant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.grants[r.key(g.PresentationID, g.GranteeUserID)] = &cp
}

func (r *memGrantRepo) Find(_ context.Context, presentationID, userID string) (*models.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[r.key(presentationID, userID)]
	if !ok {
		return nil, fmt.Errorf("share grant: %w", domain.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (r *memGrantRepo) Upsert(_ context.Context, g *models.ShareGrant) error {
	r.put(g)
	return nil
}

func (r *memGrantRepo) Delete(_ context.Context, presentationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.key(presentationID, userID)
	if _, ok := r.grants[key]; !ok {
		return fmt.Errorf("share grant: %w", domain.ErrNotFound)
	}
	delete(r.grants, key)
	return nil
}

func (r *memGrantRepo) DeleteForPresentation(_ context.Context, presentationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, g := range r.grants {
		if g.PresentationID == presentationID {
			delete(r.grants, key)
		}
	}
	return nil
}

func (r *memGrantRepo) ListForPresentation(_ context.Context, presentationID string) ([]models.ShareGrantWithGrantee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ShareGrantWithGrantee
	for _, g := range r.grants {
		if g.PresentationID == presentationID {
			out = append(out, models.ShareGrantWithGrantee{ShareGrant: *g})
		}
	}
	return out, nil
}

func (r *memGrantRepo) ListForGrantee(_ context.Context, userID string) ([]models.SharedPresentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SharedPresentation
	for _, g := range r.grants {
		if g.GranteeUserID == userID {
			out = append(out, models.SharedPresentation{AccessLevel: g.AccessLevel, SharedAt: g.CreatedAt})
		}
	}
	return out, nil
}

type memLinkRepo struct {
	mu    sync.Mutex
	links map[string]*models.ShareLink
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{links: make(map[string]*models.ShareLink)}
}

func (r *memLinkRepo) put(l *models.ShareLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.links[l.ID] = &cp
}

func (r *memLinkRepo) count(presentationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.links {
		if l.PresentationID == presentationID {
			n++
		}
	}
	return n
}

func (r *memLinkRepo) Create(_ context.Context, l *models.ShareLink) error {
	r.put(l)
	return nil
}

func (r *memLinkRepo) GetByToken(_ context.Context, token string) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("share link: %w", domain.ErrNotFound)
}

func (r *memLinkRepo) GetByID(_ context.Context, id string) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return nil, fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *memLinkRepo) Update(_ context.Context, l *models.ShareLink) error {
	r.put(l)
	return nil
}

func (r *memLinkRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, id)
	return nil
}

func (r *memLinkRepo) DeleteForPresentation(_ context.Context, presentationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.links {
		if l.PresentationID == presentationID {
			delete(r.links, id)
		}
	}
	return nil
}

func (r *memLinkRepo) ListForPresentation(_ context.Context, presentationID string) ([]models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ShareLink
	for _, l := range r.links {
		if l.PresentationID == presentationID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLinkRepo) ConsumeView(_ context.Context, linkID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[linkID]
	if !ok || !l.IsActive {
		return false, nil
	}
	if l.MaxViews != nil && l.ViewCount >= *l.MaxViews {
		return false, nil
	}
	l.ViewCount++
	return true, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type presentationTestEnv struct {
	svc           services.PresentationService
	presentations *memPresentationRepo
	grants        *memGrantRepo
	links         *memLinkRepo
}

func newPresentationTestEnv(t *testing.T) *presentationTestEnv {
	t.Helper()
	presentations := newMemPresentationRepo()
	grants := newMemGrantRepo()
	links := newMemLinkRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewPresentationService(presentations, grants, links, passthroughTxManager{}, logger)
	return &presentationTestEnv{svc: svc, presentations: presentations, grants: grants, links: links}
}

func (e *presentationTestEnv) seed(t *testing.T, p *models.Presentation) {
	t.Helper()
	cp := *p
	e.presentations.mu.Lock()
	e.presentations.items[p.ID] = &cp
	e.presentations.owners[p.OwnerID] = models.UserRef{ID: p.OwnerID, Name: "Owner", Email: "owner@example.com"}
	e.presentations.mu.Unlock()
}

func (e *presentationTestEnv) grantAccess(presentationID, userID string, level models.AccessLevel) {
	e.grants.put(&models.ShareGrant{
		ID:             "grant-" + userID,
		PresentationID: presentationID,
		GranteeUserID:  userID,
		AccessLevel:    level,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	})
}

func TestCreatePresentation(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	p, err := env.svc.Create(ctx, &services.CreatePresentationRequest{
		OwnerID: "owner-1",
		Title:   "  Roadmap  ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.Title != "Roadmap" {
		t.Errorf("Title = %q, want trimmed %q", p.Title, "Roadmap")
	}
	if p.IsPublic {
		t.Error("new presentations must start private")
	}
	if p.ShareAccess != models.AccessRead {
		t.Errorf("ShareAccess = %v, want read", p.ShareAccess)
	}
}

func TestCreatePresentationValidation(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.CreatePresentationRequest
	}{
		{"missing owner", services.CreatePresentationRequest{Title: "x"}},
		{"empty title", services.CreatePresentationRequest{OwnerID: "owner-1"}},
		{"whitespace title", services.CreatePresentationRequest{OwnerID: "owner-1", Title: "   "}},
		{"title too long", services.CreatePresentationRequest{OwnerID: "owner-1", Title: strings.Repeat("x", config.MaxPresentationTitleLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.Create(ctx, &tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGetAccessResolution(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "private-1", OwnerID: "owner-1", Title: "Private"})
	env.seed(t, &models.Presentation{ID: "public-1", OwnerID: "owner-1", Title: "Public", IsPublic: true, ShareAccess: models.AccessRead})
	env.grantAccess("private-1", "reader-1", models.AccessRead)

	tests := []struct {
		name        string
		id          string
		principal   string
		wantErr     error
		wantMatched models.MatchedLevel
	}{
		{"owner reads own private", "private-1", "owner-1", nil, models.MatchedOwner},
		{"grantee reads private", "private-1", "reader-1", nil, models.MatchedRead},
		{"stranger cannot see private", "private-1", "stranger-1", domain.ErrNotFound, ""},
		{"stranger reads public", "public-1", "stranger-1", nil, models.MatchedRead},
		{"unknown id", "missing-1", "owner-1", domain.ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.svc.Get(ctx, tt.id, tt.principal)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Get() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if result.AccessLevel != tt.wantMatched {
				t.Errorf("AccessLevel = %v, want %v", result.AccessLevel, tt.wantMatched)
			}
		})
	}
}

func TestUpdateAccessEscalation(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "pres-1", OwnerID: "owner-1", Title: "Draft"})
	env.grantAccess("pres-1", "editor-1", models.AccessRead)

	title := "Edited"
	req := &services.UpdatePresentationRequest{Title: &title}

	// A read grantee can see the presentation, so a write attempt is
	// Forbidden rather than NotFound.
	if _, err := env.svc.Update(ctx, "pres-1", "editor-1", req); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Update() with read grant error = %v, want ErrForbidden", err)
	}

	env.grantAccess("pres-1", "editor-1", models.AccessWrite)

	updated, err := env.svc.Update(ctx, "pres-1", "editor-1", req)
	if err != nil {
		t.Fatalf("Update() with write grant error = %v", err)
	}
	if updated.Title != "Edited" {
		t.Errorf("Title = %q, want %q", updated.Title, "Edited")
	}
}

func TestUpdateHiddenFromStranger(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "pres-1", OwnerID: "owner-1", Title: "Draft"})

	title := "Hijacked"
	_, err := env.svc.Update(ctx, "pres-1", "stranger-1", &services.UpdatePresentationRequest{Title: &title})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() by stranger error = %v, want ErrNotFound", err)
	}
}

func TestUpdateVisibility(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "pres-1", OwnerID: "owner-1", Title: "Draft"})

	public := true
	p, err := env.svc.UpdateVisibility(ctx, "pres-1", "owner-1", &services.UpdateVisibilityRequest{IsPublic: &public})
	if err != nil {
		t.Fatalf("UpdateVisibility() error = %v", err)
	}
	if !p.IsPublic {
		t.Error("IsPublic = false after enabling")
	}

	// Made public, any principal can now read.
	if _, err := env.svc.Get(ctx, "pres-1", "stranger-1"); err != nil {
		t.Errorf("Get() on public presentation error = %v", err)
	}

	bad := models.AccessLevel("admin")
	if _, err := env.svc.UpdateVisibility(ctx, "pres-1", "owner-1", &services.UpdateVisibilityRequest{ShareAccess: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateVisibility() with bad level error = %v, want ErrValidation", err)
	}

	if _, err := env.svc.UpdateVisibility(ctx, "pres-1", "stranger-1", &services.UpdateVisibilityRequest{IsPublic: &public}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateVisibility() by non-owner error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "pres-1", OwnerID: "owner-1", Title: "Doomed"})
	env.grantAccess("pres-1", "reader-1", models.AccessRead)
	env.links.put(&models.ShareLink{ID: "link-1", PresentationID: "pres-1", Token: "tok-1", IsActive: true})

	if err := env.svc.Delete(ctx, "pres-1", "owner-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.presentations.GetByID(ctx, "pres-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("presentation survived delete: err = %v", err)
	}
	if _, err := env.grants.Find(ctx, "pres-1", "reader-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("grant survived delete: err = %v", err)
	}
	if n := env.links.count("pres-1"); n != 0 {
		t.Errorf("%d links survived delete, want 0", n)
	}
}

func TestDeleteNonOwner(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	env.seed(t, &models.Presentation{ID: "pres-1", OwnerID: "owner-1", Title: "Safe"})

	if err := env.svc.Delete(ctx, "pres-1", "stranger-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}
	if _, err := env.presentations.GetByID(ctx, "pres-1"); err != nil {
		t.Errorf("presentation missing after failed delete: %v", err)
	}
}

func TestListClamping(t *testing.T) {
	env := newPresentationTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		env.seed(t, &models.Presentation{ID: fmt.Sprintf("pres-%d", i), OwnerID: "owner-1", Title: fmt.Sprintf("Deck %d", i)})
	}

	page, err := env.svc.List(ctx, "owner-1", 0, -5, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want clamped to 1", page.Page)
	}
	if page.Limit != config.DefaultPageSize {
		t.Errorf("Limit = %d, want default %d", page.Limit, config.DefaultPageSize)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want 3", page.Total)
	}

	page, err = env.svc.List(ctx, "owner-1", 1, config.MaxPageSize+50, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Limit != config.MaxPageSize {
		t.Errorf("Limit = %d, want clamped to %d", page.Limit, config.MaxPageSize)
	}

	page, err = env.svc.List(ctx, "owner-1", 1, 10, "Deck 1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("search Total = %d, want 1", page.Total)
	}
}
