package http

import (
	"encoding/json"
	"net/http"

	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /v1/access/token/refresh. The (possibly expired)
// access token rides in the Authorization header, the refresh token in the
// body; the response is a brand-new pair. This route is deliberately not
// behind AuthnMiddleware - the whole point is that the access token may no
// longer authenticate.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)
	if accessToken == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), accessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
