package service

import (
	"errors"
	"fmt"
)

// Common service errors.
var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many login attempts, try again later")
	// ErrStoreUnavailable wraps every failed store round-trip. It is retryable.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationKind identifies why a question was rejected.
type ValidationKind string

const (
	InvalidVersion      ValidationKind = "INVALID_VERSION"
	QuestionTooShort    ValidationKind = "QUESTION_TOO_SHORT"
	InsufficientOptions ValidationKind = "INSUFFICIENT_OPTIONS"
	CorrectNotInOptions ValidationKind = "CORRECT_NOT_IN_OPTIONS"
	DuplicateQuestion   ValidationKind = "DUPLICATE_QUESTION"
)

// ValidationError is a recoverable rejection of a proposed question.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func rejectf(kind ValidationKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError extracts a ValidationError from err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
