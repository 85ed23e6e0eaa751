package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	ident Identity
	err   error

	gotClientID string
	gotToken    string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, clientID, token string) (Identity, error) {
	f.gotClientID = clientID
	f.gotToken = token
	if f.err != nil {
		return Identity{}, f.err
	}
	return f.ident, nil
}

func identityEcho(t *testing.T, captured *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident, ok := IdentityFromContext(r.Context()); ok {
			*captured = ident
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	ident := Identity{
		SubjectID: "user-1",
		Role:      "shop",
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	t.Run("valid credentials reach the handler with identity", func(t *testing.T) {
		auth := &fakeAuthenticator{ident: ident}
		var got Identity
		handler := RequireAuth(auth)(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
		req.Header.Set(ClientIDHeader, "user-1")
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, ident, got)
		require.Equal(t, "user-1", auth.gotClientID)
		require.Equal(t, "some-token", auth.gotToken)
	})

	t.Run("missing client id header rejects", func(t *testing.T) {
		handler := RequireAuth(&fakeAuthenticator{ident: ident})(identityEcho(t, &Identity{}))

		req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("missing bearer token rejects", func(t *testing.T) {
		handler := RequireAuth(&fakeAuthenticator{ident: ident})(identityEcho(t, &Identity{}))

		req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
		req.Header.Set(ClientIDHeader, "user-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authentication failure is a generic 401", func(t *testing.T) {
		auth := &fakeAuthenticator{err: errors.New("token expired")}
		handler := RequireAuth(auth)(identityEcho(t, &Identity{}))

		req := httptest.NewRequest(http.MethodGet, "/v1/protected", nil)
		req.Header.Set(ClientIDHeader, "user-1")
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid or expired session")
		require.NotContains(t, rec.Body.String(), "expired token")
	})
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()

	ident := Identity{SubjectID: "user-1", Role: "user", TokenID: "jti-1"}

	t.Run("valid credentials attach identity", func(t *testing.T) {
		var got Identity
		handler := OptionalAuth(&fakeAuthenticator{ident: ident})(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
		req.Header.Set(ClientIDHeader, "user-1")
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, ident, got)
	})

	t.Run("anonymous request proceeds without identity", func(t *testing.T) {
		var got Identity
		handler := OptionalAuth(&fakeAuthenticator{ident: ident})(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, got.SubjectID)
	})

	t.Run("failed verification proceeds anonymously instead of rejecting", func(t *testing.T) {
		var got Identity
		handler := OptionalAuth(&fakeAuthenticator{err: errors.New("bad signature")})(identityEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/v1/catalog", nil)
		req.Header.Set(ClientIDHeader, "user-1")
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, got.SubjectID)
	})
}
