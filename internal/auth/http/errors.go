package http

import (
	"errors"
	"net/http"

	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

// writeServiceError maps service failures onto the wire error set. Expected
// auth failures log at debug; anything else is a server error and logs the
// cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	l := slogx.FromContext(r.Context())

	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		apiErr = authsdk.ErrTokenExpired
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrPermissionDenied):
		apiErr = authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrInvalidAPIKey):
		apiErr = authsdk.ErrMissingAPIKey
	case errors.Is(err, service.ErrAuthFailure):
		// invalid access token, unknown subject, bad refresh, and the
		// rest of the family all collapse to invalid_token.
		apiErr = authsdk.ErrInvalidToken
	default:
		l.Error("request failed", "err", err)
		apiErr = authsdk.ErrServerError
	}

	if apiErr != authsdk.ErrServerError {
		l.Debug("auth rejection", "err", err)
	}
	apiErr.WriteError(w)
}
