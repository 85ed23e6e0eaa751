package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loomandthread/storefront/internal/auth/domain"
	"github.com/loomandthread/storefront/internal/auth/revocation"
	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/pkg/cryptox"
	"github.com/loomandthread/storefront/pkg/idx"
	"github.com/loomandthread/storefront/pkg/jwtx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrInvalidRefresh  = errors.New("invalid_refresh_token")

	// ErrRefreshReused reports that a refresh token was presented a second
	// time. The whole session is destroyed when this happens: with rotation
	// in place a replay means either the original holder or the thief is now
	// working with a stolen token, and we cannot tell which.
	ErrRefreshReused = errors.New("refresh_token_reused")
)

// TokenService owns the session lifecycle: it mints token pairs on login,
// rotates them on refresh, and tears sessions down on logout, compromise,
// or account-wide invalidation.
type TokenService struct {
	Store       store.Store
	Revocations revocation.Store
	Issuer      string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
}

// Login establishes a fresh session for the user and issues its first token
// pair. Credential verification happens upstream; by the time this is called
// the user is authenticated. Any previous session for the same user is
// replaced, which renders its tokens unverifiable immediately.
func (s *TokenService) Login(ctx context.Context, userID, role string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	accessKey, err := cryptox.GenerateKey(cryptox.KeySize512)
	if err != nil {
		return nil, fmt.Errorf("generate access key: %w", err)
	}
	refreshKey, err := cryptox.GenerateKey(cryptox.KeySize512)
	if err != nil {
		return nil, fmt.Errorf("generate refresh key: %w", err)
	}

	session := domain.Session{
		ID:         idx.New().String(),
		OwnerID:    userID,
		AccessKey:  accessKey,
		RefreshKey: refreshKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(userID, role, accessKey, refreshKey, now)
	if err != nil {
		return nil, err
	}

	l.Info("session created",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
	)
	return pair, nil
}

// Refresh spends a refresh token and issues a new pair. Rotation replaces
// the refresh signing key, so the spent token can never verify again; the
// access key stays put, so access tokens issued earlier keep their remaining
// lifetime. The rotation is atomic: a concurrent refresh with the same
// token loses the version check-and-set and is treated exactly like a
// replay.
//
// The reuse check runs against the token fingerprint BEFORE signature
// verification. A replayed token was signed under a refresh key that
// rotation has already discarded, so it can never verify again; only the
// fingerprint trail can still recognise it.
func (s *TokenService) Refresh(ctx context.Context, userID, refreshToken string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	session, err := s.Store.Sessions().GetSessionByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	fp := cryptox.Fingerprint(refreshToken)
	if session.HasUsedRefreshToken(fp) {
		return nil, s.destroyReusedSession(ctx, session, fp)
	}

	claims, err := jwtx.Verify(refreshToken, session.RefreshKey, jwtx.VerifyOptions{Issuer: s.Issuer})
	if err != nil {
		l.Info("refresh token rejected",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, ErrInvalidRefresh
	}
	if claims.Subject != userID {
		return nil, ErrInvalidRefresh
	}

	refreshKey, err := cryptox.GenerateKey(cryptox.KeySize512)
	if err != nil {
		return nil, fmt.Errorf("generate refresh key: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().RotateSession(ctx, store.RotateParams{
			OwnerID:             userID,
			Version:             session.Version,
			AccessKey:           session.AccessKey,
			RefreshKey:          refreshKey,
			ConsumedFingerprint: fp,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleVersion) {
			// Someone else rotated first with this same token.
			return nil, s.destroyReusedSession(ctx, session, fp)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return s.issuePair(userID, claims.Role, session.AccessKey, refreshKey, now)
}

// destroyReusedSession tears down a session on detected refresh-token reuse
// and emits the security signal. Deletion failures are logged but do not
// change the caller-visible outcome.
func (s *TokenService) destroyReusedSession(ctx context.Context, session domain.Session, fp string) error {
	l := slogx.FromContext(ctx)

	l.Warn("refresh token reuse detected, destroying session",
		slog.String("user_id", session.OwnerID),
		slog.String("session_id", session.ID),
		slog.String("token_fingerprint", fp),
	)

	if err := s.Store.Sessions().DeleteSession(ctx, session.OwnerID); err != nil {
		l.Error("failed to destroy compromised session",
			slog.String("user_id", session.OwnerID),
			slog.Any("error", err),
		)
	}

	return ErrRefreshReused
}

// Logout ends the session. The presented access token keeps its remaining
// lifetime, so its jti goes onto the shared blacklist; the session record
// itself is removed, which invalidates the refresh token with it.
func (s *TokenService) Logout(ctx context.Context, userID, tokenID string, remaining time.Duration) error {
	l := slogx.FromContext(ctx)

	if tokenID != "" {
		if err := s.Revocations.Blacklist(ctx, userID, tokenID, remaining); err != nil {
			return err
		}
	}

	if err := s.Store.Sessions().DeleteSession(ctx, userID); err != nil {
		return err
	}

	l.Info("session ended", slog.String("user_id", userID))
	return nil
}

// InvalidateAll revokes every outstanding token of the user at once, for
// password changes and compromise response. The invalidate-before cutoff
// catches access tokens already in the wild; deleting the session kills
// the refresh path.
func (s *TokenService) InvalidateAll(ctx context.Context, userID string) error {
	l := slogx.FromContext(ctx)

	if err := s.Revocations.SetInvalidateBefore(ctx, userID, time.Now()); err != nil {
		return err
	}

	if err := s.Store.Sessions().DeleteSession(ctx, userID); err != nil {
		return err
	}

	l.Info("all tokens invalidated", slog.String("user_id", userID))
	return nil
}

func (s *TokenService) issuePair(userID, role string, accessKey, refreshKey []byte, now time.Time) (*domain.TokenPair, error) {
	accessTTL := s.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := s.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	accessToken, err := jwtx.Sign(jwtx.NewClaims(userID, role, accessTTL, s.Issuer, now), accessKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := jwtx.Sign(jwtx.NewClaims(userID, role, refreshTTL, s.Issuer, now), refreshKey)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessTTL,
	}, nil
}
