package ports

import (
	"context"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// Session is the public read/action surface of the Session Store.
// Guards and pages depend on this and nothing else.
type Session interface {
	Identity() *domain.User
	IsRestoring() bool
	// Ready is closed once restoration has resolved.
	Ready() <-chan struct{}

	Login(ctx context.Context, email, password string) domain.AuthOutcome
	Register(ctx context.Context, name, email, password string) domain.AuthOutcome
	Logout(ctx context.Context) domain.AuthOutcome
}
