package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	TokenStoreCookie = "cookie"
	TokenStoreRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionSecret signs the flash and client-id cookies.
	SessionSecret  string        `env:"SESSION_SECRET"`
	RestoreWait    time.Duration `env:"RESTORE_WAIT,    default=1500ms"`
	DefaultLanding string        `env:"DEFAULT_LANDING, default=/dashboard"`

	API   APIConfig
	Token TokenConfig
	Redis RedisConfig
	Login LoginConfig
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:3000/api"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

type TokenConfig struct {
	Store      string        `env:"TOKEN_STORE,       default=cookie"`
	CookieName string        `env:"TOKEN_COOKIE_NAME, default=lms_token"`
	TTL        time.Duration `env:"TOKEN_TTL,         default=720h"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type LoginConfig struct {
	RatePerMinute float64 `env:"LOGIN_RATE_LIMIT, default=5"`
	Burst         int     `env:"LOGIN_RATE_BURST, default=10"`
}

// IsProduction reports whether cookies must be marked Secure and logs
// written as JSON.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Token.Store {
	case TokenStoreCookie, TokenStoreRedis:
	default:
		return fmt.Errorf("TOKEN_STORE must be %q or %q, got %q", TokenStoreCookie, TokenStoreRedis, c.Token.Store)
	}
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes in production")
	}
	if !strings.HasPrefix(c.DefaultLanding, "/") {
		return errors.New("DEFAULT_LANDING must be a local path")
	}
	return nil
}
