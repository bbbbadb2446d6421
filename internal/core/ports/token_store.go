package ports

import "context"

// TokenReader resolves the Credential Token of the current client context.
type TokenReader interface {
	// Token returns the stored token and whether one is present.
	Token(ctx context.Context) (string, bool)
}

// TokenStore is the client-persisted slot holding at most one Credential Token.
// Writes are last-write-wins.
type TokenStore interface {
	TokenReader
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
