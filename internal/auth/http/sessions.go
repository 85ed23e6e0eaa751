package http

import (
	"errors"
	"net/http"

	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// SessionsHandler serves GET /v1/sessions/{owner_id} for operators
// investigating a session. The response goes through the caller's attribute
// filter, so the signing keys never leave the service even for admins.
type SessionsHandler struct {
	Store store.Store
}

func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	perm, ok := httpx.PermissionFromContext(ctx)
	if !ok {
		httpx.WriteForbidden(w)
		return
	}

	ownerID := r.PathValue("owner_id")
	session, err := h.Store.Sessions().GetSessionByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		log.Error("session lookup failed", "owner_id", ownerID, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	record := map[string]any{
		"id":                  session.ID,
		"owner_id":            session.OwnerID,
		"access_key":          session.AccessKey,
		"refresh_key":         session.RefreshKey,
		"used_refresh_tokens": session.UsedRefreshTokens,
		"version":             session.Version,
		"created_at":          session.CreatedAt,
		"updated_at":          session.UpdatedAt,
	}

	httpx.WriteJSON(w, http.StatusOK, perm.Filter(record))
}
