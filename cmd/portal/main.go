package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/api"
	"github.com/coursehub/learning-portal/internal/api/handler"
	"github.com/coursehub/learning-portal/internal/api/middleware"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/core/service"
	"github.com/coursehub/learning-portal/internal/infrastructure/backend"
	"github.com/coursehub/learning-portal/internal/infrastructure/config"
	"github.com/coursehub/learning-portal/internal/infrastructure/db/redis"
	"github.com/coursehub/learning-portal/internal/infrastructure/tokenstore"
	"github.com/coursehub/learning-portal/pkg/logger"
)

func setupConfig() *config.Config {
	cfg, err := config.Load(context.Background())
	if err != nil {
		// The logger is not initialised yet.
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupCookieStore(cfg *config.Config, lg zerolog.Logger) sessions.Store {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		lg.Warn().Msg("SESSION_SECRET not set, using a random key; flashes will not survive restarts")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			lg.Fatal().Err(err).Msg("failed to generate session key")
		}
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Token.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func setupTokens(cfg *config.Config, cookies sessions.Store, lg zerolog.Logger) (tokenstore.Factory, *goredis.Client) {
	if cfg.Token.Store != config.TokenStoreRedis {
		return tokenstore.NewCookieFactory(tokenstore.CookieOptions{
			Name:   cfg.Token.CookieName,
			TTL:    cfg.Token.TTL,
			Secure: cfg.IsProduction(),
		}), nil
	}

	rdb, err := redis.Connect(context.Background(), redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	return tokenstore.NewRedisFactory(rdb, cookies, cfg.Token.TTL), rdb
}

func runGracefulShutdown(e *echo.Echo, lg zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		lg.Info().Msg("shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			lg.Error().Err(err).Msg("server shutdown error")
		}
		close(done)
	}()

	return done
}

func main() {
	cfg := setupConfig()

	lg := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})
	lg.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("api", cfg.API.BaseURL).Msg("portal starting")

	cookies := setupCookieStore(cfg, lg)
	tokens, rdb := setupTokens(cfg, cookies, lg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	client := backend.NewClient(backend.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, lg)
	sessionsFactory := service.NewSessionFactory(func(t ports.TokenReader) ports.Backend {
		return backend.NewAPI(client.WithTokens(t))
	}, lg)

	health := map[string]handler.Pinger{"backend": client}
	if rdb != nil {
		health["redis"] = redis.Pinger{Client: rdb}
	}

	e, err := api.NewRouter(api.Deps{
		Log:      lg,
		Sessions: sessionsFactory,
		Tokens:   tokens,
		Catalog:  service.NewCatalogService(lg),
		Cookies:  cookies,
		Guards: middleware.GuardConfig{
			RestoreWait: cfg.RestoreWait,
			Landing:     cfg.DefaultLanding,
		},
		LoginLimiter: middleware.NewLoginLimiter(cfg.Login.RatePerMinute, cfg.Login.Burst),
		Health:       health,
		SecureCookie: cfg.IsProduction(),
		Registerer:   prometheus.DefaultRegisterer,
		Gatherer:     prometheus.DefaultGatherer,
	})
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to build router")
	}

	done := runGracefulShutdown(e, lg)

	lg.Info().Str("port", cfg.Port).Msg("server listening")
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal().Err(err).Msg("server error")
	}

	<-done
}
