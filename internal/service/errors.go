package service

import "errors"

// Failure taxonomy for the attempt lifecycle. All are terminal: the caller
// gets the error as-is and no retry happens below the transport layer.
var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidState         = errors.New("invalid state")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrQuizUnavailable      = errors.New("quiz unavailable")

	// ErrValidation marks malformed input caught below the binding layer.
	ErrValidation = errors.New("validation failed")
)
