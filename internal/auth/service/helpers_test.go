package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/loomandthread/storefront/internal/auth/revocation"
	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

const testIssuer = "storefront-auth-test"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeRevocations is an in-memory revocation.Store for tests. Setting err
// makes every call fail, to exercise the fail-closed paths.
type fakeRevocations struct {
	mu  sync.Mutex
	nvb map[string]time.Time
	bl  map[string]time.Time // "user:jti" -> expiry
	err error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{
		nvb: make(map[string]time.Time),
		bl:  make(map[string]time.Time),
	}
}

func (f *fakeRevocations) SetInvalidateBefore(_ context.Context, userID string, ts time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if cur, ok := f.nvb[userID]; !ok || ts.After(cur) {
		f.nvb[userID] = ts
	}
	return nil
}

func (f *fakeRevocations) InvalidateBefore(_ context.Context, userID string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, false, f.err
	}
	ts, ok := f.nvb[userID]
	return ts, ok, nil
}

func (f *fakeRevocations) Blacklist(_ context.Context, userID, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if ttl > 0 {
		f.bl[userID+":"+tokenID] = time.Now().Add(ttl)
	}
	return nil
}

func (f *fakeRevocations) IsBlacklisted(_ context.Context, userID, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	expiry, ok := f.bl[userID+":"+tokenID]
	return ok && time.Now().Before(expiry), nil
}

func (f *fakeRevocations) Ping(context.Context) error { return f.err }
func (f *fakeRevocations) Close() error               { return nil }

func (f *fakeRevocations) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var _ revocation.Store = (*fakeRevocations)(nil)
