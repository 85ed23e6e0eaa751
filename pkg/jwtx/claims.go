package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens limit the blast radius of a stolen
// bearer token; the refresh token carries the session lifetime.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the claim set we embed in every signed token. Registered claims
// carry subject, issuer, issued-at, expiry, and the unique token id (jti);
// the role claim is ours.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the storefront role of the subject ("user", "shop", "admin").
	Role string `json:"role,omitempty"`
}

// NewClaims builds minimally-correct claims for a token issued at now.
// Every call embeds a fresh random jti so each issued token is individually
// revocable.
func NewClaims(subject, role string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// TTLRemaining reports how long the token stays valid from now. Returns zero
// for already-expired tokens or tokens with no expiry.
func (c *Claims) TTLRemaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
