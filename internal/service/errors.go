package service

import (
	"errors"
	"fmt"
)

// Error kinds reported by the workflows. Transports map them to responses
// with errors.Is; the wrapped cause is kept for logging.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrNotCheckedIn        = errors.New("not checked in today")
	ErrNoActiveSession     = errors.New("no active attendance session")
	ErrAlreadyCheckedIn    = errors.New("already checked in")
	ErrInvalidInput        = errors.New("invalid input")
	ErrLeaveAlreadyDecided = errors.New("leave request already decided")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.cause
}

// storeError marks a persistence failure during op
func storeError(op string, err error) error {
	return &kindError{kind: ErrStoreUnavailable, msg: op, cause: err}
}

func invalidInput(format string, args ...interface{}) error {
	return &kindError{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}
