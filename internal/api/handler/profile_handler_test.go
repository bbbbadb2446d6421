package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/coursehub/learning-portal/internal/api/middleware"
	"github.com/coursehub/learning-portal/internal/core/domain"
	"github.com/coursehub/learning-portal/internal/core/ports"
	"github.com/coursehub/learning-portal/internal/core/service"
)

type stubUserAPI struct {
	ports.UserAPI
	deleted []string
}

func (s *stubUserAPI) Delete(_ context.Context, id string) domain.Result[struct{}] {
	s.deleted = append(s.deleted, id)
	return domain.Ok(struct{}{})
}

func TestProfileHandler_DeleteAccount_LogsFailedLogout(t *testing.T) {
	e := newTestEcho(t)
	var logs bytes.Buffer
	log := zerolog.New(&logs)
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	h := New(service.NewCatalogService(log), NewNotifier(store, log), log, "")

	users := &stubUserAPI{}
	sess := &stubSession{
		identity:  &domain.User{ID: "u1", Role: domain.RoleStudent},
		logoutOut: domain.AuthOutcome{Error: domain.DefaultErrorMessage},
	}
	c, rec := postForm(e, "/profile/delete", nil, sess)
	middleware.SetSession(c, sess, ports.Backend{Users: users})

	if err := h.DeleteAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if len(users.deleted) != 1 || users.deleted[0] != "u1" {
		t.Fatalf("unexpected deletes: %v", users.deleted)
	}
	if sess.logouts != 1 {
		t.Fatalf("expected one logout, got %d", sess.logouts)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if !strings.Contains(logs.String(), "did not clear the stored token") {
		t.Fatalf("expected failed logout to be logged, got %q", logs.String())
	}
}
