package user

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-auth-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
type UserService interface {
	GetUser(ctx context.Context, userID int64) (*types.PublicUser, error)
}

// UserServiceImpl reads users through an in-process cache.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	cache  *cache.Cache
}

// NewUserService creates a new user service instance. ttl <= 0 disables caching.
func NewUserService(repo UserRepo, ttl time.Duration, logger *slog.Logger) *UserServiceImpl {
	s := &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// GetUser returns the public view of a user, or types.ErrNotFound.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*types.PublicUser, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetUser"), slog.Int64("userID", userID))
	key := strconv.FormatInt(userID, 10)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "served from cache")
			public := cached.(types.PublicUser)
			return &public, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		l.DebugContext(ctx, "Failed to fetch user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user")
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	public := user.Public()
	if s.cache != nil {
		s.cache.SetDefault(key, public)
	}
	span.SetStatus(codes.Ok, "User fetched")
	return &public, nil
}
