package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/auth"
	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/metrics"
	"github.com/itemvault-io/itemvault/internal/service"
	"github.com/itemvault-io/itemvault/internal/token"
)

// RouterConfig bundles the dependencies of the HTTP router.
type RouterConfig struct {
	Users   *service.UserService
	Items   *service.ItemService
	Tokens  *token.Manager
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  zerolog.Logger
	Version string
}

// NewRouter builds the HTTP router with all middleware and routes wired.
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(rc.Logger))
	r.Use(middleware.Recoverer)
	if rc.Config.Server.MaxBodySize > 0 {
		r.Use(middleware.RequestSize(rc.Config.Server.MaxBodySize))
	}
	if rc.Metrics != nil {
		r.Use(MetricsMiddleware(rc.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rc.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: rc.Config.CORS.AllowCredentials,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(rc.Users, rc.Tokens, rc.Logger)
	itemHandler := NewItemHandler(rc.Items, rc.Logger)

	r.Get("/health", healthHandler(rc.Version))

	// Public routes
	authHandler.RegisterPublicRoutes(r)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(rc.Tokens, rc.Users, rc.Logger))
		authHandler.RegisterProtectedRoutes(r)
		itemHandler.RegisterRoutes(r)
	})

	return r
}

// healthHandler reports liveness. It touches no dependencies so it stays
// useful when the database is down.
func healthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	}
}
