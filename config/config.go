package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

var ErrMissingDatabaseURL = errors.New("database connection string is not configured (DATABASE_URL)")
var ErrMissingJWTSecret = errors.New("JWT signing secret is not configured (JWT_SECRET)")

type ServerConfig struct {
	Host    string        `mapstructure:"host"`
	Port    string        `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// JWTConfig holds the single process-wide signing secret and the token lifetime in minutes.
type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	ExpiresIn int    `mapstructure:"expires_in"`
}

// TTL returns the access token lifetime.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiresIn) * time.Minute
}

type HashingConfig struct {
	Memory        uint32 `mapstructure:"memory"`
	Time          uint32 `mapstructure:"time"`
	Threads       uint8  `mapstructure:"threads"`
	MaxConcurrent int64  `mapstructure:"max_concurrent"`
}

type CacheConfig struct {
	UserTTL time.Duration `mapstructure:"user_ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type Config struct {
	Mode     string         `mapstructure:"mode"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Hashing  HashingConfig  `mapstructure:"hashing"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// Address is the host:port the HTTP server binds to.
func (c Config) Address() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// Validate fails when a setting the process cannot start without is missing.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return ErrMissingDatabaseURL
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("jwt.expires_in must be a positive number of minutes (got: %d)", c.JWT.ExpiresIn)
	}
	return nil
}

// envBindings maps config keys to the environment variable names operators already use.
var envBindings = map[string]string{
	"mode":               "APP_ENV",
	"database.url":       "DATABASE_URL",
	"database.max_conns": "DATABASE_MAX_CONNS",
	"jwt.secret":         "JWT_SECRET",
	"jwt.expires_in":     "JWT_EXPIRES_IN",
	"server.host":        "HOST",
	"server.port":        "PORT",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
