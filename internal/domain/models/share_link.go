package models

import (
	"time"
)

// ShareLink is a bearer-token access mechanism with its own policy:
// optional password gate, expiry, and view cap. ViewCount is mutated only
// by the consume path, never by updates.
type ShareLink struct {
	ID             string      `json:"id" db:"id"`
	PresentationID string      `json:"presentation_id" db:"presentation_id"`
	Token          string      `json:"token" db:"token"`
	AccessLevel    AccessLevel `json:"access_level" db:"access_level"`
	// PasswordHash is never serialized; callers expose HasPassword instead.
	PasswordHash    *string    `json:"-" db:"password_hash"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	MaxViews        *int       `json:"max_views,omitempty" db:"max_views"`
	ViewCount       int        `json:"view_count" db:"view_count"`
	CreatedByUserID string     `json:"created_by_user_id" db:"created_by_user_id"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether the link is password-gated without exposing
// the hash.
func (l *ShareLink) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// Snapshot captures the fields link validity is a function of.
func (l *ShareLink) Snapshot() LinkSnapshot {
	return LinkSnapshot{
		IsActive:  l.IsActive,
		ExpiresAt: l.ExpiresAt,
		MaxViews:  l.MaxViews,
		ViewCount: l.ViewCount,
	}
}

// LinkState is the computed lifecycle state of a share link. Only the
// active/revoked flag is persisted; expiry and view exhaustion are derived
// lazily from the snapshot at evaluation time.
type LinkState string

const (
	LinkStateActive            LinkState = "active"
	LinkStateRevoked           LinkState = "revoked"
	LinkStateExpired           LinkState = "expired"
	LinkStateViewLimitExceeded LinkState = "view_limit_exceeded"
)

// LinkSnapshot is the value view of a link that validity depends on.
type LinkSnapshot struct {
	IsActive  bool
	ExpiresAt *time.Time
	MaxViews  *int
	ViewCount int
}

// ComputeLinkState derives the link state from a snapshot at the given
// instant. Check order is fixed: revoked, then expired, then view limit.
// A link is still usable at exactly its expiry instant; it becomes
// expired strictly after.
func ComputeLinkState(s LinkSnapshot, now time.Time) LinkState {
	if !s.IsActive {
		return LinkStateRevoked
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return LinkStateExpired
	}
	if s.MaxViews != nil && s.ViewCount >= *s.MaxViews {
		return LinkStateViewLimitExceeded
	}
	return LinkStateActive
}
