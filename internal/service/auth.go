package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/myancal/backend/internal/types"
)

// SessionService validates session tokens signed with the issuer's HS256
// secret. Signing in happens at the issuer, not here.
type SessionService struct {
	secret []byte
}

func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret)}
}

// ValidateToken parses and verifies a token and returns its claims.
func (s *SessionService) ValidateToken(tokenString string) (*types.SessionClaims, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: session secret not configured", ErrInvalidToken)
	}

	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := claims.UserID()
	if err != nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}
