package domain

// SessionState is the lifecycle state of a client session.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionRestoring
	SessionAnonymous
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionRestoring:
		return "restoring"
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}
