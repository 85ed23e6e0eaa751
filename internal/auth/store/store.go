package store

import (
	"context"
	"errors"
	"time"

	"github.com/loomandthread/storefront/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrStaleVersion reports a lost rotate race: the session record changed
	// between read and update. With one valid refresh token per session this
	// only happens when two requests present the same token concurrently.
	ErrStaleVersion = errors.New("store: stale session version")
)

// Store is the root data access interface for session signing-key records.
// Concrete drivers (sqlite today) implement it.
type Store interface {
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back on error and
	// committing on nil. This is the recommended way to run the multi-step
	// refresh rotation atomically.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// RotateParams carries one atomic key rotation: conditioned on Version, it
// appends the consumed token fingerprint and swaps in fresh signing keys.
type RotateParams struct {
	OwnerID string
	Version int64 // version observed when the record was read

	AccessKey  []byte
	RefreshKey []byte

	// ConsumedFingerprint is the fingerprint of the refresh token being
	// spent by this rotation.
	ConsumedFingerprint string
}

type Sessions interface {
	// CreateSession persists a new session record. An existing record for
	// the same owner is replaced: a fresh login supersedes the old session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByOwner returns the active session record for an owner.
	GetSessionByOwner(ctx context.Context, ownerID string) (domain.Session, error)

	// RotateSession applies p as a single check-and-set. Returns
	// ErrStaleVersion when the record's version no longer matches
	// p.Version, and ErrNotFound when no record exists.
	RotateSession(ctx context.Context, p RotateParams) error

	// DeleteSession removes the record, for logout and for the
	// reuse-detected compromise response.
	DeleteSession(ctx context.Context, ownerID string) error

	// DeleteIdleSessions removes records not touched since cutoff.
	// Housekeeping; a session idle longer than the refresh TTL can never
	// produce a valid token again.
	DeleteIdleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
