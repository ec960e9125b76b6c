package services

import (
	"context"
	"time"

	"slate/internal/domain/models"
)

// ShareRequest grants a user access to a presentation by email.
type ShareRequest struct {
	Email       string             `json:"email"`
	AccessLevel models.AccessLevel `json:"access_level"`
}

// ShareGrantStore manages explicit per-user grants. Every operation is
// owner-gated via an owner-scoped presentation lookup.
type ShareGrantStore interface {
	// Share grants or updates access for the user registered under
	// req.Email. Re-sharing an existing pair updates the level in place.
	Share(ctx context.Context, presentationID, ownerID string, req *ShareRequest) (*models.ShareGrantWithGrantee, error)

	// Revoke removes the grant for granteeUserID.
	Revoke(ctx context.Context, presentationID, ownerID, granteeUserID string) error

	// List returns all grants of the presentation with grantee identity,
	// newest-first.
	List(ctx context.Context, presentationID, ownerID string) ([]models.ShareGrantWithGrantee, error)
}

// IssueLinkRequest carries share-link issuance policy. ExpiresAt wins
// over ExpiresInDays when both are set; both absent means no expiry.
type IssueLinkRequest struct {
	AccessLevel   models.AccessLevel `json:"access_level"`
	Password      string             `json:"password"`
	ExpiresAt     *time.Time         `json:"expires_at"`
	ExpiresInDays *int               `json:"expires_in_days"`
	MaxViews      *int               `json:"max_views"`
}

// UpdateLinkFields is the tri-state update set for a link. Set* flags
// distinguish "clear" from "leave unchanged". ViewCount is deliberately
// absent: only the consume path mutates it.
type UpdateLinkFields struct {
	AccessLevel *models.AccessLevel
	IsActive    *bool

	SetPassword bool
	Password    *string // nil or empty clears the password gate

	SetExpiresAt bool
	ExpiresAt    *time.Time

	SetMaxViews bool
	MaxViews    *int
}

// LinkInfo is the owner/client-safe projection of a link: no hash, with
// the computed state, a boolean password flag, and the public URL.
type LinkInfo struct {
	models.ShareLink
	State       models.LinkState `json:"state"`
	HasPassword bool             `json:"has_password"`
	URL         string           `json:"url"`
}

// LinkValidation is the result of a pure validity check.
type LinkValidation struct {
	State models.LinkState
	Link  *models.ShareLink
}

// LinkAccess is the result of a successful consume: the resource
// snapshot, the level the bearer token carries, and the link after its
// view was counted.
type LinkAccess struct {
	Presentation *models.PresentationWithOwner `json:"presentation"`
	AccessLevel  models.AccessLevel            `json:"access_level"`
	Link         LinkInfo                      `json:"share_link"`
}

// LinkAnalytics is the owner-facing usage report for a link. Remaining
// is nil when the link is uncapped.
type LinkAnalytics struct {
	TotalViews int        `json:"total_views"`
	MaxViews   *int       `json:"max_views"`
	Remaining  *int       `json:"remaining_views"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsExpired  bool       `json:"is_expired"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ShareLinkManager owns the tokenized-link lifecycle: issue, validate,
// consume, update, revoke, delete, analytics.
type ShareLinkManager interface {
	// Issue creates a link for a presentation the caller owns.
	Issue(ctx context.Context, presentationID, ownerID string, req *IssueLinkRequest) (*LinkInfo, error)

	// Validate looks a link up by token and computes its state. Pure
	// read, no mutation.
	Validate(ctx context.Context, token string) (*LinkValidation, error)

	// Access consumes one view of an Active link after the password
	// gate. Non-Active states, missing and mismatched passwords all fail
	// without mutating anything.
	Access(ctx context.Context, token, passwordAttempt string) (*LinkAccess, error)

	// ListForPresentation returns all links of a presentation the caller
	// owns, newest-first.
	ListForPresentation(ctx context.Context, presentationID, ownerID string) ([]LinkInfo, error)

	// Update mutates link policy fields. Owner-only via the link's
	// presentation.
	Update(ctx context.Context, linkID, ownerID string, fields *UpdateLinkFields) (*LinkInfo, error)

	// Revoke flips the link inactive. Terminal: recovery means issuing a
	// new link.
	Revoke(ctx context.Context, linkID, ownerID string) error

	// Delete hard-deletes the link.
	Delete(ctx context.Context, linkID, ownerID string) error

	// Analytics reports usage for a link the caller owns.
	Analytics(ctx context.Context, linkID, ownerID string) (*LinkAnalytics, error)
}
