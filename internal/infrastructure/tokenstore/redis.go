package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"

	"github.com/coursehub/learning-portal/internal/core/ports"
)

const (
	clientSessionName = "portal_client"
	clientIDKey       = "client_id"
	keyPrefix         = "portal:token:"
)

// RedisFactory builds Redis stores, assigning each browser a client id.
type RedisFactory struct {
	rdb      *goredis.Client
	sessions sessions.Store
	ttl      time.Duration
	now      func() time.Time
}

func NewRedisFactory(rdb *goredis.Client, store sessions.Store, ttl time.Duration) *RedisFactory {
	return &RedisFactory{rdb: rdb, sessions: store, ttl: ttl, now: time.Now}
}

// ForRequest resolves the client id synchronously, writing the session
// cookie for first-time visitors, before any goroutine touches the store.
func (f *RedisFactory) ForRequest(c echo.Context) (ports.TokenStore, error) {
	id, err := ClientID(c, f.sessions)
	if err != nil {
		return nil, err
	}
	return NewRedis(f.rdb, id, f.ttl, f.now), nil
}

// ClientID returns the browser's client id, creating one when absent.
func ClientID(c echo.Context, store sessions.Store) (string, error) {
	sess, err := store.Get(c.Request(), clientSessionName)
	if err != nil {
		// A cookie signed with a rotated secret decodes as an error; start over.
		sess, err = store.New(c.Request(), clientSessionName)
		if err != nil && sess == nil {
			return "", fmt.Errorf("client session: %w", err)
		}
	}
	if id, ok := sess.Values[clientIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[clientIDKey] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("save client session: %w", err)
	}
	return id, nil
}

// Redis keeps the token server-side under portal:token:<client id>.
type Redis struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
	now func() time.Time
}

func NewRedis(rdb *goredis.Client, clientID string, ttl time.Duration, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{rdb: rdb, key: keyPrefix + clientID, ttl: ttl, now: now}
}

// Token treats a Redis failure as "no token": the caller falls back to the
// anonymous path instead of failing the page.
func (s *Redis) Token(ctx context.Context) (string, bool) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		return "", false
	}
	return token, token != ""
}

func (s *Redis) SetToken(ctx context.Context, token string) error {
	now := s.now()
	ttl := expiresAt(token, now, s.ttl).Sub(now)
	if ttl <= 0 {
		return s.ClearToken(ctx)
	}
	if err := s.rdb.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *Redis) ClearToken(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
