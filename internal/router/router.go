package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-auth-api/docs"
	"github.com/FACorreiaa/go-auth-api/internal/api/auth"
	"github.com/FACorreiaa/go-auth-api/internal/api/diagnostics"
	"github.com/FACorreiaa/go-auth-api/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.AuthHandler
	UserHandler            user.Handler
	DiagnosticsHandler     *diagnostics.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	AllowedMethods         []string
	AllowedHeaders         []string
	CORSMaxAge             int
}

var (
	defaultCORSMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"*"}
)

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: orDefault(cfg.AllowedOrigins, []string{"*"}),
		AllowedMethods: orDefault(cfg.AllowedMethods, defaultCORSMethods),
		AllowedHeaders: orDefault(cfg.AllowedHeaders, defaultCORSHeaders),
		ExposedHeaders: []string{"Link", "X-Request-Id"},
		MaxAge:         cfg.CORSMaxAge,
	}))

	r.Get("/ping", cfg.DiagnosticsHandler.Ping)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/test", cfg.DiagnosticsHandler.Echo)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Get("/users/{id}", cfg.UserHandler.GetUser)
		})
	})

	return r
}
