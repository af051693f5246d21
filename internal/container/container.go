package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-auth-api/app/db"
	"github.com/FACorreiaa/go-auth-api/app/observability/metrics"
	"github.com/FACorreiaa/go-auth-api/config"
	"github.com/FACorreiaa/go-auth-api/internal/api/auth"
	"github.com/FACorreiaa/go-auth-api/internal/api/diagnostics"
	"github.com/FACorreiaa/go-auth-api/internal/api/user"
	"github.com/FACorreiaa/go-auth-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *slog.Logger
	Pool               *pgxpool.Pool
	Metrics            *metrics.AppMetrics
	Tokens             *auth.TokenService
	AuthHandler        *auth.AuthHandler
	UserHandler        *user.HandlerImpl
	DiagnosticsHandler *diagnostics.HandlerImpl
}

// NewContainer opens the database pool and wires every repository, service and handler on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	pool, err := database.Init(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	c, err := Build(cfg, pool, m, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	c.Pool = pool
	return c, nil
}

// Build wires the application on an existing database handle.
func Build(cfg *config.Config, db database.DBTX, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	hasher := auth.NewArgon2Hasher(auth.HasherConfig{
		Time:          cfg.Hashing.Time,
		Memory:        cfg.Hashing.Memory,
		Threads:       cfg.Hashing.Threads,
		MaxConcurrent: cfg.Hashing.MaxConcurrent,
	})

	authRepo := auth.NewPostgresAuthRepo(db, m, logger)
	authService := auth.NewAuthService(authRepo, hasher, tokens, m, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	userRepo := user.NewPostgresUserRepo(db, m, logger)
	userService := user.NewUserService(userRepo, cfg.Cache.UserTTL, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	return &Container{
		Config:             cfg,
		Logger:             logger,
		Metrics:            m,
		Tokens:             tokens,
		AuthHandler:        authHandler,
		UserHandler:        userHandler,
		DiagnosticsHandler: diagnostics.NewHandlerImpl(logger),
	}, nil
}

// Router returns the API routes with the authentication gate bound to the container's token service.
func (c *Container) Router() chi.Router {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		UserHandler:            c.UserHandler,
		DiagnosticsHandler:     c.DiagnosticsHandler,
		AuthenticateMiddleware: auth.Authenticate(c.Logger, c.Tokens, c.Metrics),
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
		AllowedMethods:         c.Config.CORS.AllowedMethods,
		AllowedHeaders:         c.Config.CORS.AllowedHeaders,
		CORSMaxAge:             c.Config.CORS.MaxAge,
	})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
