package service

import (
	"context"
	"errors"
	"time"

	"github.com/loomandthread/storefront/internal/auth/revocation"
	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/jwtx"
)

var (
	ErrInvalidAccess = errors.New("invalid_access_token")

	// ErrTokenRevoked covers both revocation paths: an invalidate-before
	// cutoff newer than the token and an individually blacklisted jti.
	ErrTokenRevoked = errors.New("access_token_revoked")
)

// Authenticator verifies access tokens on the request path. It implements
// httpx.Authenticator and fails closed: when the session store or the
// revocation backend cannot answer, the request is rejected.
type Authenticator struct {
	Store       store.Store
	Revocations revocation.Store
	Issuer      string

	// Leeway absorbs clock skew between token issuers and verifiers.
	Leeway time.Duration
}

// Authenticate resolves the session's signing key via clientID, verifies the
// token signature and time window, then consults the shared revocation state.
func (a *Authenticator) Authenticate(ctx context.Context, clientID, token string) (httpx.Identity, error) {
	session, err := a.Store.Sessions().GetSessionByOwner(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Identity{}, ErrSessionNotFound
		}
		return httpx.Identity{}, err
	}

	claims, err := jwtx.Verify(token, session.AccessKey, jwtx.VerifyOptions{
		Issuer: a.Issuer,
		Leeway: a.Leeway,
	})
	if err != nil {
		return httpx.Identity{}, ErrInvalidAccess
	}

	// The token must be about the session owner it was looked up under,
	// otherwise a valid token of user A could ride on user B's session.
	if claims.Subject != clientID {
		return httpx.Identity{}, ErrInvalidAccess
	}

	if err := a.checkRevocation(ctx, clientID, claims); err != nil {
		return httpx.Identity{}, err
	}

	return httpx.Identity{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *Authenticator) checkRevocation(ctx context.Context, userID string, claims jwtx.Claims) error {
	cutoff, ok, err := a.Revocations.InvalidateBefore(ctx, userID)
	if err != nil {
		return err // fail closed
	}
	if ok && claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoff) {
		return ErrTokenRevoked
	}

	listed, err := a.Revocations.IsBlacklisted(ctx, userID, claims.ID)
	if err != nil {
		return err
	}
	if listed {
		return ErrTokenRevoked
	}

	return nil
}
