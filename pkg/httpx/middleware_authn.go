package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/loomandthread/storefront/pkg/slogx"
)

// ClientIDHeader carries the session owner identifier used to locate the
// session's signing keys. Issued tokens are only verifiable together with
// this header.
const ClientIDHeader = "X-Client-ID"

// Authenticator verifies a presented bearer token for the session identified
// by clientID and returns the caller's identity. Implementations must fail
// closed: any doubt, including an unreachable revocation store, is an error.
type Authenticator interface {
	Authenticate(ctx context.Context, clientID, token string) (Identity, error)
}

// RequireAuth rejects any request without a verifiable bearer token. On
// success the identity is attached to the request context for downstream
// handlers and authorization middleware.
func RequireAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			clientID, token, ok := bearerCredentials(r)
			if !ok {
				WriteUnauthenticated(w)
				return
			}

			ident, err := a.Authenticate(ctx, clientID, token)
			if err != nil {
				log.Warn("authentication failed", "err", err)
				WriteUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, ident)))
		})
	}
}

// OptionalAuth attaches an identity when a valid bearer token is presented
// and otherwise lets the request through anonymously. Used for guest-visible
// endpoints that personalize when logged in; it never rejects.
func OptionalAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			clientID, token, ok := bearerCredentials(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ident, err := a.Authenticate(ctx, clientID, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, ident)))
		})
	}
}

// bearerCredentials extracts the session owner header and the bearer token.
func bearerCredentials(r *http.Request) (clientID, token string, ok bool) {
	clientID = strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if clientID == "" {
		return "", "", false
	}

	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", "", false
	}
	token = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	if token == "" {
		return "", "", false
	}

	return clientID, token, true
}
