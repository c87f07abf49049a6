package http

import (
	"net/http"

	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles DELETE /v1/access/logout. Runs behind AuthnMiddleware;
// removes exactly the calling session's keystore row.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ks, ok := KeystoreFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TokenService.Logout(r.Context(), ks.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "logged_out"})
}
