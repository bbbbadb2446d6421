package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
)

// APIError carries a message reported by the backend or the transport.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }
