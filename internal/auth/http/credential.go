package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

type CredentialHandler struct {
	CredentialService *service.CredentialService
}

// ServeHTTP handles POST /v1/credential/assign. Gated behind the ADMIN role
// by the router; resets the target user's password and revokes every one of
// their sessions.
func (h *CredentialHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.CredentialService.AssignPassword(r.Context(), req.Email, req.Password); err != nil {
		// Unknown target email is a bad request here, not a token problem.
		if errors.Is(err, service.ErrUserNotRegistered) {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "assigned"})
}
