package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/metrics"
)

// DefaultLanding is where users go after login when no safe redirect was given.
const DefaultLanding = "/dashboard"

// BackendBinder returns the backend APIs authenticated with tokens.
type BackendBinder func(tokens ports.TokenReader) ports.Backend

// SessionFactory is built once at startup and creates the session of each
// client context.
type SessionFactory struct {
	bind BackendBinder
	log  zerolog.Logger
}

func NewSessionFactory(bind BackendBinder, log zerolog.Logger) *SessionFactory {
	return &SessionFactory{bind: bind, log: log}
}

// New returns a session over tokens together with the backend APIs bound to
// the same token slot.
func (f *SessionFactory) New(tokens ports.TokenStore) (*SessionService, ports.Backend) {
	api := f.bind(tokens)
	return NewSessionService(api.Auth, tokens, f.log), api
}

// SessionService owns the Identity of one client context.
//
// Uninitialized -> Restoring -> Authenticated | Anonymous, then
// Anonymous <-> Authenticated through Login, Register and Logout.
type SessionService struct {
	auth   ports.AuthAPI
	tokens ports.TokenStore
	log    zerolog.Logger

	once  sync.Once
	ready chan struct{}

	// mu also serializes writes to tokens, so a stale restoration can never
	// clear a token stored by a later login.
	mu       sync.RWMutex
	state    domain.SessionState
	identity *domain.User
	// gen changes on every explicit login/logout; a restoration that started
	// under an older generation must not overwrite the newer outcome.
	gen uint64
}

var _ ports.Session = (*SessionService)(nil)

func NewSessionService(auth ports.AuthAPI, tokens ports.TokenStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		auth:   auth,
		tokens: tokens,
		log:    log,
		ready:  make(chan struct{}),
	}
}

// Start begins restoration in the background. Only the first call has an effect.
func (s *SessionService) Start(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = domain.SessionRestoring
		gen := s.gen
		s.mu.Unlock()

		go s.restore(ctx, gen)
	})
}

// Restore runs restoration synchronously. Only the first Start or Restore has an effect.
func (s *SessionService) Restore(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		s.state = domain.SessionRestoring
		gen := s.gen
		s.mu.Unlock()

		s.restore(ctx, gen)
	})
}

func (s *SessionService) restore(ctx context.Context, gen uint64) {
	defer close(s.ready)

	if _, ok := s.tokens.Token(ctx); !ok {
		metrics.SessionRestoresTotal.WithLabelValues("no_token").Inc()
		s.resolve(gen, nil)
		return
	}

	res := s.auth.Me(ctx)
	user, ok := res.Data()
	if !ok {
		metrics.SessionRestoresTotal.WithLabelValues("rejected").Inc()
		s.log.Debug().Str("error", res.Err()).Msg("stored token rejected, clearing session")
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		// A cancelled request says nothing about the token.
		if ctx.Err() == nil {
			if err := s.tokens.ClearToken(ctx); err != nil {
				s.log.Warn().Err(err).Msg("failed to clear rejected token")
			}
		}
		s.setLocked(nil)
		return
	}

	metrics.SessionRestoresTotal.WithLabelValues("restored").Inc()
	s.resolve(gen, &user)
}

func (s *SessionService) resolve(gen uint64, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.setLocked(user)
}

func (s *SessionService) setLocked(user *domain.User) {
	s.identity = user
	if user != nil {
		s.state = domain.SessionAuthenticated
	} else {
		s.state = domain.SessionAnonymous
	}
}

// Identity returns a copy of the current identity, or nil.
func (s *SessionService) Identity() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	u := *s.identity
	return &u
}

func (s *SessionService) IsRestoring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == domain.SessionRestoring
}

func (s *SessionService) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready is closed once restoration has resolved.
func (s *SessionService) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionService) Login(ctx context.Context, email, password string) domain.AuthOutcome {
	res := s.auth.Login(ctx, email, password)
	return s.establish(ctx, "login", res)
}

// Register creates a student account and signs it in.
func (s *SessionService) Register(ctx context.Context, name, email, password string) domain.AuthOutcome {
	res := s.auth.Register(ctx, name, email, password, domain.RoleStudent)
	return s.establish(ctx, "register", res)
}

func (s *SessionService) establish(ctx context.Context, action string, res domain.Result[domain.AuthResult]) domain.AuthOutcome {
	auth, ok := res.Data()
	if !ok {
		metrics.LoginsTotal.WithLabelValues(action, "failure").Inc()
		return domain.AuthOutcome{Error: res.Err()}
	}

	s.mu.Lock()
	s.gen++
	if err := s.tokens.SetToken(ctx, auth.Token); err != nil {
		// Any restoration in flight is now stale, so settle the state here.
		s.setLocked(nil)
		s.mu.Unlock()
		metrics.LoginsTotal.WithLabelValues(action, "failure").Inc()
		s.log.Error().Err(err).Str("action", action).Msg("failed to persist token")
		return domain.AuthOutcome{Error: domain.DefaultErrorMessage}
	}
	user := auth.User
	s.setLocked(&user)
	s.mu.Unlock()

	metrics.LoginsTotal.WithLabelValues(action, "success").Inc()
	s.log.Info().Str("action", action).Str("user_id", user.ID).Msg("session established")
	return domain.AuthOutcome{Success: true}
}

// Logout forgets the identity and clears the stored token.
func (s *SessionService) Logout(ctx context.Context) domain.AuthOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.setLocked(nil)

	if err := s.tokens.ClearToken(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear token on logout")
		return domain.AuthOutcome{Error: domain.DefaultErrorMessage}
	}
	return domain.AuthOutcome{Success: true}
}

// RedirectTarget returns target when it is a local absolute path, and
// fallback otherwise. Protocol-relative and backslash forms are rejected.
func RedirectTarget(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
