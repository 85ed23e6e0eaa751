package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/loomandthread/storefront/internal/auth/revocation"
	"github.com/loomandthread/storefront/internal/auth/service"
	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/pkg/httpx"
	"github.com/loomandthread/storefront/pkg/rbac"
	"github.com/loomandthread/storefront/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	revocations revocation.Store

	TokenService  *service.TokenService
	Authenticator *service.Authenticator
	Engine        *rbac.Engine
}

func NewRouter(
	buildVersion string,
	st store.Store,
	rev revocation.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		revocations:  rev,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSessions()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - strict rate limit keyed by IP + session owner, so one
	// client hammering refresh cannot starve others behind the same NAT
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByClientID(httpx.StrictLimit),
		),
	)

	// POST /logout - requires a valid access token
	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RequireAuth(r.Authenticator),
			httpx.RateLimitByClientID(httpx.ModerateLimit),
		),
	)

	// POST /password - credential change; invalidates every outstanding token
	passwordHandler := &PasswordChangedHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(passwordHandler,
			httpx.RequireAuth(r.Authenticator),
			httpx.RateLimitByClientID(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{Store: r.store}

	// GET /sessions/{owner_id} - admin inspection, attribute-filtered
	secured := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.RequireAuth(r.Authenticator),
		httpx.RequirePermission(r.Engine, rbac.ReadAny, "session"),
		httpx.RateLimitByClientID(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/sessions/{owner_id}", secured)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.revocations),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
