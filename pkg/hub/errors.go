package hub

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = &AuthenticationError{Op: "session", Message: "no active session, please authenticate"}

	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
)

// AuthenticationError reports a failed or missing authentication.
type AuthenticationError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("authentication %s: %s", e.Op, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ValidationError reports a stored payload with the wrong shape.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid content at %s: %s", e.Path, e.Message)
}

// NotFoundError reports a resource missing by natural key.
type NotFoundError struct {
	Kind     string
	Username string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s/%s not found in the hub", e.Kind, e.Username, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
