package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/loomandthread/storefront/internal/auth/service"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
//
// Credential verification (password check, social login) lives with the
// commerce backend; by the time a request reaches this endpoint the gateway
// has already authenticated the user and forwards the verified identity.
// This handler only establishes the session and mints the first token pair.
type LoginHandler struct {
	TokenService *service.TokenService
}

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Role = strings.TrimSpace(req.Role)
	if req.UserID == "" || req.Role == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and role are required"})
		return
	}

	pair, err := h.TokenService.Login(ctx, req.UserID, req.Role)
	if err != nil {
		log.Error("login failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}
