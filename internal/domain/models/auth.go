package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the JWT claims structure issued by the auth service.
// The engine trusts the verified claims verbatim; it performs no
// credential verification of its own.
type IdentityClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *IdentityClaims) GetUserID() string {
	return c.Subject
}
