package httpx

import (
	"net/http"
	"slices"

	"github.com/loomandthread/storefront/pkg/rbac"
)

// RequireRole is the coarse gate: the authenticated caller must hold one of
// the listed roles to reach the route group at all. Fine-grained grants are
// checked separately by RequirePermission.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteUnauthenticated(w)
				return
			}

			if !slices.Contains(roles, ident.Role) {
				WriteForbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks the caller's role against the grant table for the
// given action and resource. On success the resulting permission is attached
// to the request context so the handler can filter response attributes.
//
// Possession is fixed per route here; handlers that decide own-versus-any
// per record consult the engine directly instead.
func RequirePermission(e *rbac.Engine, action rbac.Action, resource string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ident, ok := IdentityFromContext(ctx)
			if !ok {
				WriteUnauthenticated(w)
				return
			}

			perm := e.Can(ident.Role, action, resource)
			if !perm.Granted {
				WriteForbidden(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithPermission(ctx, perm)))
		})
	}
}
