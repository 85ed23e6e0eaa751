package http

import (
	"net/http"
	"time"

	"github.com/loomandthread/storefront/internal/auth/service"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. Requires authentication: the
// identity on the context names the session to destroy and the access token
// to blacklist for its remaining lifetime.
type LogoutHandler struct {
	TokenService *service.TokenService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ident, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteUnauthenticated(w)
		return
	}

	remaining := time.Until(ident.ExpiresAt)
	if err := h.TokenService.Logout(ctx, ident.SubjectID, ident.TokenID, remaining); err != nil {
		log.Error("logout failed", "user_id", ident.SubjectID, "err", err)
		httpx.WriteUnauthenticated(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
