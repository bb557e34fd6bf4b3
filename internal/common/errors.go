package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrExtractionFailed means the completion collaborator's response could
	// not be parsed or the call itself failed. Never retried here: a
	// fabricated or partially-populated financial record would be worse than
	// an explicit failure.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoAppealableIssues means appeal-letter generation was requested for
	// a record with no denial, duplicate-billing, or out-of-network issues.
	// User-correctable, not a system fault.
	ErrNoAppealableIssues = errors.New("no appealable issues")

	// ErrUnsupportedDocument means the detector gate classified the document
	// below the confidence threshold. The caller decides whether to proceed.
	ErrUnsupportedDocument = errors.New("document does not look like an EOB")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
