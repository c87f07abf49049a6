package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/service"
	"github.com/sableforge/gatekeeper/internal/auth/store"
	"github.com/sableforge/gatekeeper/pkg/httpx"
	"github.com/sableforge/gatekeeper/pkg/jwtx"
	"github.com/sableforge/gatekeeper/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService       *service.AuthService
	TokenService      *service.TokenService
	CredentialService *service.CredentialService
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccess()
	r.registerCredential()
	r.registerUserInfo()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// apiKeyGate is the caller tier shared by every /v1 route.
func (r *Router) apiKeyGate() httpx.Middleware {
	return APIKeyMiddleware(r.AuthService, domain.APIPermissionGeneral)
}

func (r *Router) registerAccess() {
	// POST /login - strict limit by IP, it is the brute force target
	login := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/access/login",
		httpx.Chain(login,
			r.apiKeyGate(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /token/refresh - no AuthnMiddleware here, the access token may
	// be expired; the rotation protocol does its own verification
	refresh := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/access/token/refresh",
		httpx.Chain(refresh,
			r.apiKeyGate(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// DELETE /logout - authenticated, per-user limit
	logout := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("DELETE /v1/access/logout",
		httpx.Chain(logout,
			r.apiKeyGate(),
			AuthnMiddleware(r.AuthService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCredential() {
	h := &CredentialHandler{CredentialService: r.CredentialService}
	r.Mux.Handle("POST /v1/credential/assign",
		httpx.Chain(h,
			r.apiKeyGate(),
			AuthnMiddleware(r.AuthService),
			RequireAnyRole(r.AuthService, domain.RoleCodeAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUserInfo() {
	h := &UserInfoHandler{}
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(h,
			r.apiKeyGate(),
			AuthnMiddleware(r.AuthService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health endpoints stay outside the API-key gate so probes work
	// without credentials
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
