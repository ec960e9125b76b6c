// Package hashing wraps bcrypt for share-link passwords. Plaintext is
// never stored; comparison is one-way and constant-time inside bcrypt.
package hashing

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies share-link passwords with a configurable
// bcrypt cost factor.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher. Costs outside bcrypt's supported range
// fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of value.
func (h *Hasher) Hash(value string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(value), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether value matches hash. A mismatch is not an
// error; errors mean the hash itself is malformed.
func (h *Hasher) Compare(hash, value string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(value))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}
