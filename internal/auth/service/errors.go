package service

import (
	"errors"
	"fmt"
)

// ErrAuthFailure is the umbrella for every expected authentication or
// authorization rejection. Handlers can errors.Is against it to separate
// "request was bad" from "the service broke".
var ErrAuthFailure = errors.New("auth_failure")

// Concrete failures. Each wraps ErrAuthFailure; handlers map them onto the
// wire error codes, and anything outside the family is a server error.
var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords
	// during login, so callers cannot probe which emails are registered.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid_credentials", ErrAuthFailure)

	// ErrUserNotRegistered means the token's subject no longer resolves to
	// an active user.
	ErrUserNotRegistered = fmt.Errorf("%w: user_not_registered", ErrAuthFailure)

	// ErrInvalidAccessToken means the presented token or its session is no
	// longer usable: bad signature, useless claims, or no matching
	// keystore row.
	ErrInvalidAccessToken = fmt.Errorf("%w: invalid_access_token", ErrAuthFailure)

	// ErrTokenExpired means the token verified fine but its exp has
	// lapsed. Clients should refresh and retry.
	ErrTokenExpired = fmt.Errorf("%w: token_expired", ErrAuthFailure)

	// ErrInvalidRefresh means the refresh half of a rotation did not check
	// out: bad token, subject mismatch, or a replayed (already rotated)
	// pair.
	ErrInvalidRefresh = fmt.Errorf("%w: invalid_refresh_token", ErrAuthFailure)

	// ErrPermissionDenied means the authenticated user holds none of the
	// required roles.
	ErrPermissionDenied = fmt.Errorf("%w: permission_denied", ErrAuthFailure)

	// ErrInvalidAPIKey means the x-api-key header is missing, unknown, or
	// lacks the required permission.
	ErrInvalidAPIKey = fmt.Errorf("%w: invalid_api_key", ErrAuthFailure)
)
