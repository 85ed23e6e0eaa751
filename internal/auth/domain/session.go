package domain

import (
	"slices"
	"time"
)

// Session is the persisted signing-key record for one login session. It is
// owned and mutated exclusively by the token service: created on login,
// rotated on every refresh, deleted on logout or on detected refresh-token
// reuse.
type Session struct {
	ID      string // ULID
	OwnerID string // the user this session belongs to; one active session per owner

	// AccessKey and RefreshKey are the independent HMAC signing keys
	// currently valid for this session. Rotation replaces both.
	AccessKey  []byte
	RefreshKey []byte

	// UsedRefreshTokens holds the fingerprints of refresh tokens this
	// session has already consumed. A fingerprint showing up here a second
	// time is evidence of token theft.
	UsedRefreshTokens []string

	// Version increments on every rotation and guards the rotate
	// check-and-set: an update conditioned on a stale version fails.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasUsedRefreshToken reports whether the fingerprint was already consumed.
func (s *Session) HasUsedRefreshToken(fingerprint string) bool {
	return slices.Contains(s.UsedRefreshTokens, fingerprint)
}
