package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims of a session token from the session issuer.
// The user is identified by user_id when present, otherwise by sub.
type SessionClaims struct {
	jwt.RegisteredClaims
	RawUserID string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}

// UserID resolves the session user.
func (c *SessionClaims) UserID() (uuid.UUID, error) {
	if c.RawUserID != "" {
		return uuid.Parse(c.RawUserID)
	}
	return uuid.Parse(c.Subject)
}
