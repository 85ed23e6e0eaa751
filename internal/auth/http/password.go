package http

import (
	"net/http"

	"github.com/loomandthread/storefront/internal/auth/service"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// PasswordChangedHandler serves POST /v1/auth/password. The actual password
// update happens in the commerce backend; this endpoint is the security
// follow-up, revoking every token the user holds so a thief who prompted
// the change is locked out everywhere at once.
type PasswordChangedHandler struct {
	TokenService *service.TokenService
}

func (h *PasswordChangedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	ident, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteUnauthenticated(w)
		return
	}

	if err := h.TokenService.InvalidateAll(ctx, ident.SubjectID); err != nil {
		log.Error("invalidate-all failed", "user_id", ident.SubjectID, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
