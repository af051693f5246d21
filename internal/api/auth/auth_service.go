package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-auth-api/app/observability/metrics"
	"github.com/FACorreiaa/go-auth-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService orchestrates registration and login.
type AuthService interface {
	// Register returns types.ErrConflict when the email or username is taken.
	Register(ctx context.Context, req types.RegisterRequest) (*types.PublicUser, error)
	// Login returns types.ErrUnauthenticated for an unknown email, a wrong password
	// or an unusable stored hash, so callers cannot tell them apart.
	Login(ctx context.Context, email, password string) (*types.LoginResponse, error)
}

type AuthServiceImpl struct {
	logger  *slog.Logger
	repo    AuthRepo
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics *metrics.AppMetrics
	// dummyHash is verified on unknown emails so they cost the same as a wrong password.
	dummyHash string
}

type dummyHasher interface {
	DummyHash() string
}

var defaultDummyHash = NewArgon2Hasher(HasherConfig{MaxConcurrent: 1}).DummyHash()

func NewAuthService(repo AuthRepo, hasher PasswordHasher, tokens TokenIssuer, m *metrics.AppMetrics, logger *slog.Logger) *AuthServiceImpl {
	dummy := defaultDummyHash
	if d, ok := hasher.(dummyHasher); ok {
		dummy = d.DummyHash()
	}
	return &AuthServiceImpl{
		logger:    logger,
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   m,
		dummyHash: dummy,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (_ *types.PublicUser, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.username", req.Username),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))
	start := time.Now()
	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, types.ErrConflict):
			outcome = "conflict"
		case err != nil:
			outcome = "error"
		}
		s.metrics.RegisterRequestsTotal.Add(ctx, 1, metrics.Outcome(outcome))
		s.metrics.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds(), metrics.Outcome(outcome))
	}()

	existing, err := s.repo.GetUserByEmailOrUsername(ctx, req.Email, req.Username)
	switch {
	case err == nil:
		l.InfoContext(ctx, "Registration rejected, identity already taken", slog.Int64("existingID", existing.ID))
		span.SetStatus(codes.Error, "conflict")
		return nil, fmt.Errorf("user %q: %w", req.Username, types.ErrConflict)
	case !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := types.RoleUser
	if req.Role != "" {
		role = types.Role(req.Role)
	}

	user, err := s.repo.CreateUser(ctx, req.Username, req.Email, hash, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, fmt.Errorf("creating user: %w", err)
	}

	public := user.Public()
	span.SetAttributes(attribute.Int64("user.id", public.ID))
	span.SetStatus(codes.Ok, "registered")
	l.InfoContext(ctx, "User registered", slog.Int64("userID", public.ID), slog.String("role", public.Role.String()))
	return &public, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (_ *types.LoginResponse, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))
	start := time.Now()
	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			outcome = "invalid_credentials"
		case err != nil:
			outcome = "error"
		}
		s.metrics.LoginRequestsTotal.Add(ctx, 1, metrics.Outcome(outcome))
		s.metrics.LoginDurationSeconds.Record(ctx, time.Since(start).Seconds(), metrics.Outcome(outcome))
	}()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) {
		if _, verr := s.hasher.Verify(ctx, s.dummyHash, password); verr != nil && !errors.Is(verr, ErrMalformedHash) {
			l.WarnContext(ctx, "Dummy password verification failed", slog.Any("error", verr))
		}
		l.InfoContext(ctx, "Login failed: unknown email")
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, types.ErrUnauthenticated
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, user.PasswordHash, password)
	switch {
	case errors.Is(err, ErrMalformedHash):
		l.ErrorContext(ctx, "Stored password hash is unusable", slog.Int64("userID", user.ID))
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, types.ErrUnauthenticated
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify failed")
		return nil, fmt.Errorf("verifying password: %w", err)
	case !ok:
		l.InfoContext(ctx, "Login failed: password mismatch", slog.Int64("userID", user.ID))
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, types.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "token issue failed")
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	span.SetStatus(codes.Ok, "logged in")
	l.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return &types.LoginResponse{Token: token, User: user.Public()}, nil
}
