package models

import (
	"encoding/json"
	"time"
)

// Presentation is the shared resource. EditorData and ExcalidrawData are
// opaque JSONB payloads; the engine stores and returns them untouched.
type Presentation struct {
	ID          string          `json:"id" db:"id"`
	OwnerID     string          `json:"owner_id" db:"owner_id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	EditorData  json.RawMessage `json:"editor_data,omitempty" db:"editor_data"`
	DrawingData json.RawMessage `json:"drawing_data,omitempty" db:"drawing_data"`
	// IsPublic grants read access to every principal without an explicit
	// grant. ShareAccess is the level implied by public visibility.
	IsPublic    bool        `json:"is_public" db:"is_public"`
	ShareAccess AccessLevel `json:"share_access" db:"share_access"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// PresentationWithOwner attaches the owner's display identity for
// responses served to grantees and link visitors.
type PresentationWithOwner struct {
	Presentation
	Owner UserRef `json:"owner"`
}
