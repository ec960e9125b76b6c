package models

import (
	"time"
)

// ShareGrant is an explicit per-user authorization record. At most one
// grant exists per (presentation, grantee) pair; re-sharing updates the
// access level in place.
type ShareGrant struct {
	ID              string      `json:"id" db:"id"`
	PresentationID  string      `json:"presentation_id" db:"presentation_id"`
	GranteeUserID   string      `json:"grantee_user_id" db:"grantee_user_id"`
	AccessLevel     AccessLevel `json:"access_level" db:"access_level"`
	GrantedByUserID string      `json:"granted_by_user_id" db:"granted_by_user_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// ShareGrantWithGrantee attaches the grantee's display identity for
// owner-facing grant listings.
type ShareGrantWithGrantee struct {
	ShareGrant
	Grantee UserRef `json:"grantee"`
}

// SharedPresentation pairs a grant with its presentation for the
// "shared with me" listing.
type SharedPresentation struct {
	Presentation PresentationWithOwner `json:"presentation"`
	AccessLevel  AccessLevel           `json:"access_level"`
	SharedAt     time.Time             `json:"shared_at"`
}
