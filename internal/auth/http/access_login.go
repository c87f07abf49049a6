package http

import (
	"encoding/json"
	"net/http"

	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

type LoginHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /v1/access/login: email+password in, token pair out.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
