// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrValueOutOfRange = errors.New("value out of range")
)

// Domain names used in DomainError.Domain.
const (
	DomainCourse   = "course"
	DomainVideo    = "video"
	DomainArticle  = "article"
	DomainProgress = "progress"
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain   string // e.g., "course", "video", "article"
	Op       string // Operation that failed, e.g., "GetByID", "Update"
	Kind     error  // Base error type for errors.Is() checking
	Message  string // Human-readable message
	EntityID int    // Identifier the operation targeted, 0 when not applicable
	Err      error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := e.Message
	if e.EntityID != 0 {
		msg = fmt.Sprintf("%s (id=%d)", msg, e.EntityID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, msg)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// NewNotFound builds the error every store returns for an absent identifier.
// It carries the entity kind and the id so callers can build a message.
func NewNotFound(domain, op string, id int) *DomainError {
	return &DomainError{
		Domain:   domain,
		Op:       op,
		Kind:     ErrNotFound,
		Message:  domain + " not found",
		EntityID: id,
	}
}

// NewValidation builds a validation error for the calling layer.
func NewValidation(domain, op, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

// ParseID converts an identifier received from a caller into an int.
// Anything that is not a positive integer that fits into int is reported
// as NotFound for the given domain: no entity can carry such an id.
func ParseID(domain, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt {
		return 0, &DomainError{
			Domain:  domain,
			Op:      "ParseID",
			Kind:    ErrNotFound,
			Message: fmt.Sprintf("%s not found: %q is not a valid identifier", domain, raw),
		}
	}
	return int(n), nil
}

// EntityIDOf extracts the targeted identifier from a DomainError chain.
func EntityIDOf(err error) (int, bool) {
	var de *DomainError
	if errors.As(err, &de) && de.EntityID != 0 {
		return de.EntityID, true
	}
	return 0, false
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange)
}
