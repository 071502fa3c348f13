// Package identity verifies bearer tokens issued by the external identity provider.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrRevokedToken = errors.New("token revoked")
)

// Claims is what the rest of the service knows about a verified caller.
type Claims struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Verifier turns a raw bearer token into Claims or one of the Err*Token errors.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

func stringClaim(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
