package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string      `json:"error"`
	Message       string      `json:"message"`
	CorrelationID string      `json:"correlationId,omitempty"`
	Violations    []Violation `json:"violations,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeReplication     = "REPLICATION_PENDING"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrArgument     = errors.New("invalid argument")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorised = errors.New("unauthorised")
	ErrForbidden    = errors.New("forbidden")
	ErrReplication  = errors.New("replication failed")
)

// DomainError is a business error tagged with one of the error kinds above.
type DomainError struct {
	Code    string
	Message string
	kind    error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.kind
}

// NewDomainError creates a new domain error
func NewDomainError(kind error, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		kind:    kind,
	}
}

// NewArgumentError reports a violated caller contract (nil input, mismatched id, ...).
func NewArgumentError(format string, args ...any) *DomainError {
	return NewDomainError(ErrArgument, ErrCodeInvalidArgument, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports that a referenced entity does not exist.
func NewNotFoundError(format string, args ...any) *DomainError {
	return NewDomainError(ErrNotFound, ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// NewConflictError reports a duplicate identifier.
func NewConflictError(format string, args ...any) *DomainError {
	return NewDomainError(ErrConflict, ErrCodeConflict, fmt.Sprintf(format, args...))
}

func NewUnauthorisedError(format string, args ...any) *DomainError {
	return NewDomainError(ErrUnauthorised, ErrCodeUnauthorised, fmt.Sprintf(format, args...))
}

func NewForbiddenError(format string, args ...any) *DomainError {
	return NewDomainError(ErrForbidden, ErrCodeForbidden, fmt.Sprintf(format, args...))
}

// Violation is a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every violation found on an input, not only the first.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError creates a validation error from one or more violations.
func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	msg := e.Violations[0].Message
	if extra := len(e.Violations) - 1; extra > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, extra)
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// HasCode reports whether any violation carries the given code.
func (e *ValidationError) HasCode(code string) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ReplicationError is returned when the primary write committed but the mirror
// could not be brought up to date. The outbox event stays pending.
type ReplicationError struct {
	Op      string
	EventID int64
	Err     error
}

func (e *ReplicationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s committed to primary store but mirror update failed", e.Op)
	if e.EventID > 0 {
		fmt.Fprintf(&b, " (outbox event %d pending)", e.EventID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ReplicationError) Unwrap() []error {
	return []error{ErrReplication, e.Err}
}
