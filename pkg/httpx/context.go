package httpx

import (
	"context"
	"time"

	"github.com/loomandthread/storefront/pkg/rbac"
)

// Identity is the authenticated caller attached to the request context by
// the authentication middleware.
type Identity struct {
	SubjectID string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type ctxKey string

const (
	ctxKeyIdentity   ctxKey = "identity"
	ctxKeyPermission ctxKey = "permission"
)

func contextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, ident)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return ident, ok
}

func contextWithPermission(ctx context.Context, p rbac.Permission) context.Context {
	return context.WithValue(ctx, ctxKeyPermission, p)
}

// PermissionFromContext returns the permission granted by the authorization
// middleware, so handlers can filter response attributes.
func PermissionFromContext(ctx context.Context) (rbac.Permission, bool) {
	p, ok := ctx.Value(ctxKeyPermission).(rbac.Permission)
	return p, ok
}
