package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-auth-api/app/db"
	"github.com/FACorreiaa/go-auth-api/app/observability/metrics"
	"github.com/FACorreiaa/go-auth-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the persistence contract of the credential flow.
type AuthRepo interface {
	// GetUserByEmailOrUsername returns any user whose email or username matches.
	// Returns types.ErrNotFound when neither is taken.
	GetUserByEmailOrUsername(ctx context.Context, email, username string) (*types.User, error)
	// GetUserByEmail returns types.ErrNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	// CreateUser inserts a user and returns it with its store-assigned id.
	// A uniqueness violation is reported as types.ErrConflict.
	CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger  *slog.Logger
	db      database.DBTX
	metrics *metrics.AppMetrics
}

func NewPostgresAuthRepo(db database.DBTX, m *metrics.AppMetrics, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger:  logger,
		db:      db,
		metrics: m,
	}
}

const selectUserColumns = `SELECT id, username, email, password_hash, role, created_at FROM users`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	return &u, nil
}

func (r *PostgresAuthRepo) GetUserByEmailOrUsername(ctx context.Context, email, username string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmailOrUsername", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByEmailOrUsername"))
	start := time.Now()

	user, err := scanUser(r.db.QueryRow(ctx,
		selectUserColumns+` WHERE email = $1 OR username = $2 LIMIT 1`,
		email, username))
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "select_user_by_email_or_username", start, nil)
		span.SetStatus(codes.Ok, "no match")
		return nil, types.ErrNotFound
	}
	r.metrics.ObserveQuery(ctx, "select_user_by_email_or_username", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error looking up user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	span.SetStatus(codes.Ok, "User found")
	return user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByEmail"))
	start := time.Now()

	user, err := scanUser(r.db.QueryRow(ctx, selectUserColumns+` WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "select_user_by_email", start, nil)
		span.SetStatus(codes.Ok, "no match")
		return nil, types.ErrNotFound
	}
	r.metrics.ObserveQuery(ctx, "select_user_by_email", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to look up user by email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	span.SetStatus(codes.Ok, "User found")
	return user, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"))
	start := time.Now()

	user := &types.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		username, email, passwordHash, role.String(),
	).Scan(&user.ID, &user.CreatedAt)
	r.metrics.ObserveQuery(ctx, "insert_user", start, err)
	if err != nil {
		if database.IsUniqueViolation(err) {
			l.WarnContext(ctx, "Insert hit unique constraint", slog.String("username", username))
			span.SetStatus(codes.Error, "unique violation")
			return nil, fmt.Errorf("username or email already taken: %w", types.ErrConflict)
		}
		l.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	span.SetStatus(codes.Ok, "User created")
	l.InfoContext(ctx, "User created", slog.Int64("userID", user.ID))
	return user, nil
}
