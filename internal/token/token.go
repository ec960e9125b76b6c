// Package token generates share-link bearer tokens.
//
// Tokens are opaque, fixed-length, URL-safe and drawn from crypto/rand,
// so they are not derivable from any public field of the link or its
// presentation. Global uniqueness is enforced by the storage layer's
// unique index; the issuer regenerates on the (astronomically rare)
// collision.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Generator produces share-link tokens of a fixed byte length.
type Generator struct {
	numBytes int
}

// NewGenerator creates a token generator. numBytes must be positive;
// 32 bytes yields a 43-character token.
func NewGenerator(numBytes int) (*Generator, error) {
	if numBytes <= 0 {
		return nil, fmt.Errorf("token byte length must be positive, got %d", numBytes)
	}
	return &Generator{numBytes: numBytes}, nil
}

// Generate returns a new random token.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Length returns the encoded length of every token this generator
// produces.
func (g *Generator) Length() int {
	return base64.RawURLEncoding.EncodedLen(g.numBytes)
}
