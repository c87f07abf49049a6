package http

import (
	"net/http"

	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

type UserInfoHandler struct{}

// ServeHTTP handles GET /v1/userinfo: echoes the authenticated user and
// their role codes. Everything needed is already on the context.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfoResponse{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Roles:  roleCodes(u),
	})
}
