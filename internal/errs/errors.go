package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates that the caller may not see or change the record.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyProcessed indicates that a support request was already processed.
	ErrAlreadyProcessed = errors.New("request already processed")
	// ErrAlreadyApproved indicates that a person request was already approved.
	ErrAlreadyApproved = errors.New("request already approved")
	// ErrInvalidTransition indicates a move out of a terminal or draft approval state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrReasonRequired indicates a rejection without a reason.
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrStorage indicates a persistence failure.
	ErrStorage = errors.New("storage failure")
)

// ValidationError carries per-field messages keyed by input field name.
type ValidationError struct {
	Fields map[string]string
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError builds a ValidationError for one field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// StorageError wraps a database failure. Message is safe to show to clients.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err as a StorageError with a generic client message.
// Nil stays nil; errors that already carry a domain meaning pass through.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	for _, domain := range []error{ErrNotFound, ErrForbidden, ErrAlreadyProcessed, ErrAlreadyApproved, ErrInvalidTransition} {
		if errors.Is(err, domain) {
			return err
		}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &StorageError{Op: op, Message: "could not save changes, please try again later", Err: err}
}

// IsValidation reports whether err is a ValidationError and returns it
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
