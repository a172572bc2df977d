package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/handler"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/middleware"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/response"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

// Config holds the per-route limits and the CORS policy.
type Config struct {
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	LoginLimit    middleware.RateLimitRule
	RegisterLimit middleware.RateLimitRule
	RefreshLimit  middleware.RateLimitRule
}

type Deps struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserManagementHandler
	Guard     *middleware.AuthMiddleware
	RateLimit *middleware.RateLimitMiddleware
	Logger    logger.Logger
}

// New builds the API handler. Guards are attached per route; nothing under
// /api/auth except profile and change-password needs a token.
func New(cfg Config, d Deps) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Resource not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessFields(w, http.StatusOK, "", response.Fields{"status": "healthy"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/register", limit(d, "register", cfg.RegisterLimit, d.Auth.Register)).Methods(http.MethodPost)
	auth.Handle("/login", limit(d, "login", cfg.LoginLimit, d.Auth.Login)).Methods(http.MethodPost)
	auth.Handle("/refresh", limit(d, "refresh", cfg.RefreshLimit, d.Auth.Refresh)).Methods(http.MethodPost)
	auth.HandleFunc("/verify", d.Auth.Verify).Methods(http.MethodPost)
	auth.Handle("/profile", d.Guard.RequireAuth(http.HandlerFunc(d.Auth.Profile))).Methods(http.MethodGet)
	auth.Handle("/change-password", d.Guard.RequireAuth(http.HandlerFunc(d.Auth.ChangePassword))).Methods(http.MethodPut)

	users := api.PathPrefix("/users").Subrouter()
	admin := func(h http.HandlerFunc) http.Handler { return d.Guard.RequireAdminAuth(h) }
	authed := func(h http.HandlerFunc) http.Handler { return d.Guard.RequireAuth(h) }

	// Fixed paths go before /{id} so they are never read as an id.
	users.Handle("", admin(d.Users.ListUsers)).Methods(http.MethodGet)
	users.Handle("/", admin(d.Users.ListUsers)).Methods(http.MethodGet)
	users.Handle("/me", authed(d.Users.Me)).Methods(http.MethodGet)
	users.Handle("/me", authed(d.Users.UpdateMe)).Methods(http.MethodPut)
	users.Handle("/stats", admin(d.Users.Stats)).Methods(http.MethodGet)
	users.Handle("/search", admin(d.Users.SearchUsers)).Methods(http.MethodGet)
	users.Handle("/by-role/{role}", admin(d.Users.UsersByRole)).Methods(http.MethodGet)
	users.Handle("/by-email/{email}", admin(d.Users.UserByEmail)).Methods(http.MethodGet)
	users.Handle("/{id:[0-9]+}", authed(d.Users.GetUser)).Methods(http.MethodGet)
	users.Handle("/{id:[0-9]+}", authed(d.Users.UpdateUser)).Methods(http.MethodPut)
	users.Handle("/{id:[0-9]+}", admin(d.Users.DeleteUser)).Methods(http.MethodDelete)

	var h http.Handler = router
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		h = middleware.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)(h)
	}
	h = middleware.RequestLogger(d.Logger)(h)
	h = middleware.Recovery(d.Logger)(h)
	return middleware.CorrelationID(h)
}

func limit(d Deps, scope string, rule middleware.RateLimitRule, h http.HandlerFunc) http.Handler {
	if d.RateLimit == nil || rule.Limit <= 0 {
		return h
	}
	return d.RateLimit.Limit(scope, rule)(h)
}
