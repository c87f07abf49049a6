package http

import (
	"net/http"
	"strings"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/pkg/authsdk"
	"github.com/sableforge/gatekeeper/pkg/httpx"
)

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// APIKeyMiddleware is the caller tier: every request must present an
// x-api-key with the given permission before any user-level check runs.
func APIKeyMiddleware(auth *service.AuthService, permission string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("x-api-key")
			if _, err := auth.CheckAPIKey(r.Context(), key, permission); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthnMiddleware is the user tier: it resolves the bearer token to a live
// session and attaches the user and keystore row to the context. Rejections
// are terminal; there is no anonymous fall-through.
func AuthnMiddleware(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}

			u, ks, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			ctx := withSession(r.Context(), u, ks)
			ctx = httpx.WithUserID(ctx, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole passes when the authenticated user holds at least one of
// the named roles. Must run inside AuthnMiddleware.
func RequireAnyRole(auth *service.AuthService, roleCodes ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}
			if err := auth.AuthorizeAny(r.Context(), u, roleCodes...); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAllRoles is the strict variant of RequireAnyRole.
func RequireAllRoles(auth *service.AuthService, roleCodes ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				authsdk.ErrInvalidToken.WriteError(w)
				return
			}
			if err := auth.AuthorizeAll(r.Context(), u, roleCodes...); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// roleCodes flattens a user's memberships for responses.
func roleCodes(u domain.User) []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return codes
}
