package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream API operations.
var (
	ErrNotFound     = errors.New("upstream: not found")
	ErrRateLimited  = errors.New("upstream: rate limited by server")
	ErrBadRequest   = errors.New("upstream: bad request")
	ErrUnauthorized = errors.New("upstream: unauthorized")
	ErrServer       = errors.New("upstream: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "sendCode", "listEvents", "starEvent", ...
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
