package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-auth-api/app/observability/metrics"
	"github.com/FACorreiaa/go-auth-api/internal/api"
	"github.com/FACorreiaa/go-auth-api/internal/types"
)

// Define typed context keys
type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

const bearerPrefix = "Bearer "

const (
	msgNoToken      = "No authentication token provided"
	msgTokenFormat  = "Invalid token format"
	msgInvalidToken = "Invalid or expired token"
)

// Authenticate is middleware that validates the bearer token and stores the
// caller's id and role in the request context.
func Authenticate(logger *slog.Logger, tokens TokenIssuer, m *metrics.AppMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			reject := func(reason, msg string) {
				m.TokenRejectionsTotal.Add(ctx, 1, metrics.Outcome(reason))
				api.ErrorResponse(w, r, http.StatusUnauthorized, msg)
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.DebugContext(ctx, "Missing Authorization header")
				reject("missing", msgNoToken)
				return
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				l.WarnContext(ctx, "Invalid Authorization header format")
				reject("format", msgTokenFormat)
				return
			}

			claims, err := tokens.Validate(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				reject("invalid", msgInvalidToken)
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				l.WarnContext(ctx, "Token subject is not a user id", slog.String("sub", claims.Subject))
				reject("invalid", msgInvalidToken)
				return
			}
			role := types.Role(claims.Role)

			ctx = context.WithValue(ctx, userIDKey, userID)
			ctx = context.WithValue(ctx, userRoleKey, role)
			l.DebugContext(ctx, "Authentication successful",
				slog.Int64("userID", userID),
				slog.String("role", role.String()),
				slog.String("jti", claims.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext returns the authenticated user id set by Authenticate.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func GetUserRoleFromContext(ctx context.Context) (types.Role, bool) {
	role, ok := ctx.Value(userRoleKey).(types.Role)
	return role, ok
}
