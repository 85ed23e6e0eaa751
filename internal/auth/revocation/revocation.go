// Package revocation tracks centrally revoked tokens so that stateless
// access-token verification can still be cut short: a per-user
// invalidate-before timestamp kills every token issued earlier, and a
// per-token blacklist kills individual tokens before they expire.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any backend failure. Callers on the verification
// path must treat it as a denial, never as "not revoked".
var ErrUnavailable = errors.New("revocation_store_unavailable")

// Store is the shared revocation state consulted on every authenticated
// request and written on logout and invalidate-all.
type Store interface {
	// SetInvalidateBefore records that every token of the user issued
	// before ts is revoked. The stored value only ever moves forward;
	// a ts older than the current one is ignored.
	SetInvalidateBefore(ctx context.Context, userID string, ts time.Time) error

	// InvalidateBefore returns the user's revocation cutoff. ok is false
	// when no cutoff has been set.
	InvalidateBefore(ctx context.Context, userID string) (ts time.Time, ok bool, err error)

	// Blacklist revokes a single token until it would have expired
	// anyway. A non-positive ttl is a no-op.
	Blacklist(ctx context.Context, userID, tokenID string, ttl time.Duration) error

	// IsBlacklisted reports whether the token was individually revoked.
	IsBlacklisted(ctx context.Context, userID, tokenID string) (bool, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
