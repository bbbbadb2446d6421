// Package correlation carries the request id through context so that calls to
// the backend can be tied back to the page request that triggered them.
package correlation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// Header is the header used to propagate the id to the backend.
const Header = "X-Request-ID"

type contextKey struct{}

// NewID generates an 8-character hex id.
func NewID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithID returns a new context carrying the given id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ID extracts the id from ctx, returning ("", false) if not present.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
