package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-auth-api/internal/types"
)

// ErrInvalidToken is the only error Validate returns. The underlying reason is logged, never surfaced.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed token payload: sub carries the user id as a decimal string.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig is the immutable signing configuration.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenIssuer issues and validates access tokens.
type TokenIssuer interface {
	Issue(userID int64, role types.Role) (string, error)
	Validate(token string) (*Claims, error)
}

var _ TokenIssuer = (*TokenService)(nil)

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewTokenService(cfg TokenConfig, logger *slog.Logger) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("jwt: token ttl must be positive (got: %s)", cfg.TTL)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Issue signs an HS256 token for the user, expiring ttl from now.
func (s *TokenService) Issue(userID int64, role types.Role) (string, error) {
	now := s.now()
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm and expiry. No clock-skew leeway is applied.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("Token rejected", slog.String("reason", err.Error()))
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		s.logger.Debug("Token rejected", slog.String("reason", "invalid claims"))
		return nil, ErrInvalidToken
	}
	return claims, nil
}
