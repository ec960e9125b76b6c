package models

import (
	"time"
)

// User is the identity record this engine reads. Registration, credential
// storage and session issuance live in the auth service; this core only
// resolves emails to ids and attaches display identity to grants.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRef is the subset of identity safe to embed in responses another
// user is authorized to see (grant listings, shared-presentation owner).
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref projects a User to its shareable subset.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
