package domain

// DefaultErrorMessage is used whenever a failure carries no usable message.
const DefaultErrorMessage = "An error occurred"

// NetworkErrorMessage is reported when a request could not be sent or received.
const NetworkErrorMessage = "Network error"

// Result is the outcome of a backend call: exactly one of a value or an
// error message. The zero value is a failure with DefaultErrorMessage.
type Result[T any] struct {
	data T
	err  string
	ok   bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{data: v, ok: true}
}

// Fail wraps an error message. An empty message becomes DefaultErrorMessage.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return Result[T]{err: msg}
}

// OK reports whether the result carries data.
func (r Result[T]) OK() bool { return r.ok }

// Data returns the value and whether it is present.
func (r Result[T]) Data() (T, bool) { return r.data, r.ok }

// Err returns the error message, or "" for a successful result.
func (r Result[T]) Err() string {
	if r.ok {
		return ""
	}
	if r.err == "" {
		return DefaultErrorMessage
	}
	return r.err
}

// Or returns the value, or fallback when the result is a failure.
func (r Result[T]) Or(fallback T) T {
	if r.ok {
		return r.data
	}
	return fallback
}

// Unwrap converts the result into Go's (value, error) form.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.data, nil
	}
	var zero T
	return zero, &APIError{Message: r.Err()}
}

// MapResult transforms the value of a successful result and passes failures through.
func MapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.Err())
	}
	return Ok(fn(r.data))
}
