package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/loomandthread/storefront/internal/auth/service"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh.
//
// The session owner comes from the X-Client-ID header, the spent refresh
// token from the body. Every failure maps to the same generic 401 so the
// response cannot be used as an oracle for which check failed; the
// distinction lives in the server logs.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(r.Header.Get(httpx.ClientIDHeader))
	if clientID == "" {
		httpx.WriteUnauthenticated(w)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteUnauthenticated(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, clientID, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshReused):
			// Already logged as a security event by the token service.
		case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrInvalidRefresh):
			log.Info("refresh rejected", "client_id", clientID, "err", err)
		default:
			log.Error("refresh failed", "client_id", clientID, "err", err)
		}
		httpx.WriteUnauthenticated(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}
