package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nebula-cli/internal/models"
)

// Claims are the pieces of the bearer token the client cares about.
// The signature belongs to the backend; the client parses without
// verifying and only uses the claims for sanity checks (role
// consistency, expiry) before burning a network call.
type Claims struct {
	UserID    int64
	Email     string
	Role      models.Role
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim has passed. Tokens
// without an exp claim are treated as still valid and left for the
// backend to judge.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// ParseClaims extracts userId/role/sub/exp from a bearer token without
// validating the signature.
func ParseClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Email = sub
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = models.Role(role)
	}
	if userID, ok := mapClaims["userId"].(float64); ok {
		claims.UserID = int64(userID)
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}
