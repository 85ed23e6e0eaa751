package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	nvbKeyPrefix       = "auth:nvb:"
	blacklistKeyPrefix = "auth:bl:"

	// DefaultOpTimeout bounds every backend call so a slow Redis cannot
	// stall the request path. Callers still fail closed on timeout.
	DefaultOpTimeout = 2 * time.Second
)

// setNvbScript stores the invalidate-before cutoff only if it moves the
// existing value forward, so concurrent invalidations can never roll the
// cutoff back.
var setNvbScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur == false or tonumber(ARGV[1]) > tonumber(cur) then
	redis.call('SET', KEYS[1], ARGV[1])
end
return redis.status_reply('OK')
`)

// RedisStore implements Store on a Redis backend. Invalidate-before
// cutoffs are plain unix-nano values under auth:nvb:<user>; blacklist
// entries live under auth:bl:<user>:<jti> with the token's remaining
// lifetime as TTL.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// NewRedisStore dials the given address and verifies connectivity.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	s := &RedisStore{client: client, opTimeout: DefaultOpTimeout}
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, opTimeout: DefaultOpTimeout}
}

func (s *RedisStore) SetInvalidateBefore(ctx context.Context, userID string, ts time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := nvbKeyPrefix + userID
	if err := setNvbScript.Run(ctx, s.client, []string{key}, ts.UnixNano()).Err(); err != nil {
		return fmt.Errorf("%w: set invalidate-before: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) InvalidateBefore(ctx context.Context, userID string) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, nvbKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: get invalidate-before: %w", ErrUnavailable, err)
	}

	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: malformed invalidate-before value %q", ErrUnavailable, val)
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (s *RedisStore) Blacklist(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired on its own
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := blacklistKey(userID, tokenID)
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: blacklist token: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, userID, tokenID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.client.Exists(ctx, blacklistKey(userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: check blacklist: %w", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func blacklistKey(userID, tokenID string) string {
	return blacklistKeyPrefix + userID + ":" + tokenID
}
