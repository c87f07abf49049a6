package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sableforge/gatekeeper/pkg/httpx"
)

// Wire error codes. External responses collapse internal detail into this
// small set; logs keep the precise cause.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeTokenExpired       = "token_expired"
	ErrorCodeAccessDenied       = "access_denied"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error payload of every non-2xx response. It implements
// error so the SDK client can surface it directly, and the server uses
// WriteError to emit it.
type APIError struct {
	// StatusCode is the HTTP status this error travels with.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a short human-readable explanation.
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest covers malformed bodies and missing parameters.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is the login failure. Deliberately identical
	// for unknown emails and wrong passwords.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrInvalidToken means the presented token or its session is not
	// usable and will never become usable.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "invalid or revoked token",
	}

	// ErrTokenExpired means the access token lapsed; the client should
	// refresh and retry.
	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "access token expired",
	}

	// ErrAccessDenied means authentication succeeded but the caller lacks
	// the required role or API-key permission.
	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrMissingAPIKey is the caller-tier rejection: no usable x-api-key.
	ErrMissingAPIKey = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAccessDenied,
		Description: "missing or invalid api key",
	}

	// ErrServerError is the generic 500.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
