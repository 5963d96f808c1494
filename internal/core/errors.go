package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNotFound            = "not_found"
	ErrCodeDuplicateConnection = "duplicate_connection"
	ErrCodeNotJoined           = "not_joined"
	ErrCodeStoreError          = "store_error"
	ErrCodeBadRequest          = "bad_request"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrNotJoined           = errors.New("not joined")
)

// CoreError wraps a code and human-readable message, optionally
// carrying the sentinel that classified it.
type CoreError struct {
	Code    string
	Message string
	cause   error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.cause
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func coreErrorFrom(code string, cause error, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg, cause: cause}
}
