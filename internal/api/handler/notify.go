package handler

import (
	"encoding/gob"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const flashSessionName = "portal_flash"

// Flash is a one-shot, dismissable notification shown on the next page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Notifier stores flashes in a signed cookie session.
type Notifier struct {
	store sessions.Store
	log   zerolog.Logger
}

func NewNotifier(store sessions.Store, log zerolog.Logger) *Notifier {
	return &Notifier{store: store, log: log}
}

func (n *Notifier) Success(c echo.Context, msg string) {
	n.add(c, Flash{Kind: "success", Message: msg})
}

func (n *Notifier) Error(c echo.Context, msg string) {
	n.add(c, Flash{Kind: "error", Message: msg})
}

func (n *Notifier) add(c echo.Context, f Flash) {
	sess, _ := n.store.Get(c.Request(), flashSessionName)
	if sess == nil {
		return
	}
	sess.AddFlash(f)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		n.log.Warn().Err(err).Msg("failed to save flash")
	}
}

// Pop returns and clears the pending flashes.
func (n *Notifier) Pop(c echo.Context) []Flash {
	sess, _ := n.store.Get(c.Request(), flashSessionName)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		n.log.Warn().Err(err).Msg("failed to clear flashes")
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	return out
}
