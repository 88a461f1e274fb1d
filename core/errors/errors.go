// Package errors provides the typed errors used across lectio.
//
// Every structured error matches its category sentinel with errors.Is,
// and also its cause when one is attached:
//
//	err := errors.NewPrecondition("verse counts", "book 41", dbErr)
//	errors.Is(err, errors.ErrPrecondition) // true
//	errors.Is(err, dbErr)                  // true
package errors

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	// ErrNotFound: a book, location or other resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: malformed citation, notation, document or setting.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal: a bug or broken invariant.
	ErrInternal = errors.New("internal error")
	// ErrUnsupported: a format or feature lectio does not handle.
	ErrUnsupported = errors.New("unsupported")
	// ErrPrecondition: data an operation depends on was never loaded.
	ErrPrecondition = errors.New("precondition failed")
)

// chain is the Unwrap result of a categorized error.
func chain(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string // e.g. "book", "citation"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() []error { return chain(ErrNotFound, e.Err) }

// ValidationError reports input that failed a check. Value is the
// offending input, kept for callers; it is not part of the message.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error { return chain(ErrInvalidInput, e.Err) }

// IOError reports a failed file or stream operation. It matches only its
// cause, so os.ErrNotExist and friends keep working.
type IOError struct {
	Operation string // "open", "read", "write", ...
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a malformed document or notation.
type ParseError struct {
	Format  string // e.g. "catalog XML", "location notation"
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
}

func (e *ParseError) Unwrap() []error { return chain(ErrInvalidInput, e.Err) }

// UnsupportedError reports a format or feature lectio does not handle.
type UnsupportedError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return "unsupported " + e.Feature
	}
	return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
}

func (e *UnsupportedError) Unwrap() []error { return chain(ErrUnsupported, e.Err) }

// PreconditionError reports data that had to be present before an
// operation ran. The catalog panics with one when verse counts are needed
// for interval expansion but were never supplied.
type PreconditionError struct {
	Requirement string // e.g. "verse counts"
	Subject     string // e.g. "book 41"
	Err         error
}

func (e *PreconditionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("precondition failed: %s required", e.Requirement)
	}
	return fmt.Sprintf("precondition failed: %s required for %s", e.Requirement, e.Subject)
}

func (e *PreconditionError) Unwrap() []error { return chain(ErrPrecondition, e.Err) }

// NewNotFound creates a NotFoundError.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation creates a ValidationError.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError.
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse creates a ParseError.
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// NewUnsupported creates an UnsupportedError.
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// NewPrecondition creates a PreconditionError.
func NewPrecondition(requirement, subject string, err error) *PreconditionError {
	return &PreconditionError{Requirement: requirement, Subject: subject, Err: err}
}

// Wrap prefixes err with message. It returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
