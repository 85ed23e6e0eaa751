package revocation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a throwaway Redis and returns its address.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, setupRedisContainer(t), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStoreInvalidateBefore(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)

	t.Run("unset user has no cutoff", func(t *testing.T) {
		_, ok, err := store.InvalidateBefore(ctx, "user-1")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("cutoff round-trips", func(t *testing.T) {
		cutoff := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, store.SetInvalidateBefore(ctx, "user-1", cutoff))

		got, ok, err := store.InvalidateBefore(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, got.Equal(cutoff))
	})

	t.Run("cutoff only moves forward", func(t *testing.T) {
		newer := time.Now().UTC().Truncate(time.Microsecond)
		older := newer.Add(-time.Hour)

		require.NoError(t, store.SetInvalidateBefore(ctx, "user-2", newer))
		require.NoError(t, store.SetInvalidateBefore(ctx, "user-2", older))

		got, ok, err := store.InvalidateBefore(ctx, "user-2")
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, got.Equal(newer))
	})

	t.Run("cutoffs are per user", func(t *testing.T) {
		_, ok, err := store.InvalidateBefore(ctx, "user-3")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestRedisStoreBlacklist(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)

	t.Run("unlisted token is not blacklisted", func(t *testing.T) {
		listed, err := store.IsBlacklisted(ctx, "user-1", "jti-1")
		require.NoError(t, err)
		require.False(t, listed)
	})

	t.Run("blacklisted token is found", func(t *testing.T) {
		require.NoError(t, store.Blacklist(ctx, "user-1", "jti-1", time.Minute))

		listed, err := store.IsBlacklisted(ctx, "user-1", "jti-1")
		require.NoError(t, err)
		require.True(t, listed)
	})

	t.Run("entries are scoped to the user", func(t *testing.T) {
		listed, err := store.IsBlacklisted(ctx, "user-2", "jti-1")
		require.NoError(t, err)
		require.False(t, listed)
	})

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		require.NoError(t, store.Blacklist(ctx, "user-1", "jti-expired", -time.Second))

		listed, err := store.IsBlacklisted(ctx, "user-1", "jti-expired")
		require.NoError(t, err)
		require.False(t, listed)
	})

	t.Run("entry expires with its ttl", func(t *testing.T) {
		require.NoError(t, store.Blacklist(ctx, "user-1", "jti-short", 500*time.Millisecond))

		require.Eventually(t, func() bool {
			listed, err := store.IsBlacklisted(ctx, "user-1", "jti-short")
			return err == nil && !listed
		}, 5*time.Second, 100*time.Millisecond)
	})
}

func TestRedisStoreUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	_, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0)
	require.ErrorIs(t, err, ErrUnavailable)
}
