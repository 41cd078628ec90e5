package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT reports a credential that is not a decodable JWT. Opaque credentials are
// legal; callers fall back to asking the backend.
var ErrNotJWT = errors.New("credential is not a jwt")

// Claims are the owner token claims issued by the backend.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the exp claim, if present.
func (c *Claims) Expiry() (time.Time, bool) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiredAt reports whether the token is expired at now, tolerating leeway of clock skew.
// Tokens without exp never expire locally.
func (c *Claims) ExpiredAt(now time.Time, leeway time.Duration) bool {
	exp, ok := c.Expiry()
	if !ok {
		return false
	}
	return !now.Before(exp.Add(leeway))
}

// Inspect decodes the claims of token WITHOUT verifying its signature. The result must
// only be used to skip work (an obviously expired token), never to grant access that the
// backend has not confirmed unless the caller explicitly opted into local trust.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNotJWT
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}
