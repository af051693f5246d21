package user

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

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// GetUserByID retrieves a user by id.
	// Returns types.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID int64) (*types.User, error)
}

type PostgresUserRepo struct {
	logger  *slog.Logger
	db      database.DBTX
	metrics *metrics.AppMetrics
}

func NewPostgresUserRepo(db database.DBTX, m *metrics.AppMetrics, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger:  logger,
		db:      db,
		metrics: m,
	}
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, userID int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetUserByID"), slog.Int64("userID", userID))
	start := time.Now()

	var u types.User
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "select_user_by_id", start, nil)
		l.DebugContext(ctx, "User not found")
		span.SetStatus(codes.Error, "User not found")
		return nil, fmt.Errorf("user %d: %w", userID, types.ErrNotFound)
	}
	r.metrics.ObserveQuery(ctx, "select_user_by_id", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query user by ID", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	u.Role = types.Role(role)
	span.SetStatus(codes.Ok, "User found")
	return &u, nil
}
