// Package apierr defines the error taxonomy shared by the editor, the remote
// API client and the mock API. Each concrete error carries the HTTP status it
// maps to so transports on either side of the wire agree on the meaning.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("apierr: validation failed")
	// ErrNotFound marks a referenced identifier that does not exist.
	ErrNotFound = errors.New("apierr: not found")
	// ErrPersistence marks a storage-layer failure.
	ErrPersistence = errors.New("apierr: persistence failure")
	// ErrOutOfRange marks a local command invoked with an out-of-bounds index.
	ErrOutOfRange = errors.New("apierr: index out of range")
	// ErrUnknownSchema marks introspection of an undeclared schema name.
	ErrUnknownSchema = errors.New("apierr: unknown schema")
)

// HTTPError is implemented by errors that know which status code they map to.
type HTTPError interface {
	error
	StatusCode() int
}

// ValidationError reports invalid input with a human-readable message. Field
// is the offending attribute when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s does not exist", e.ID)
	}
	return fmt.Sprintf("%s %q does not exist", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// PersistenceError wraps a storage or server-side failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence: " + e.Op
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// RangeError reports an index outside [0, Length) for the named collection.
type RangeError struct {
	Collection string
	Index      int
	Length     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.Collection, e.Index, e.Length)
}

func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// UnknownSchemaError reports an undeclared schema name. Introspection surfaces
// it as a nil result; validation returns it.
type UnknownSchemaError struct {
	Name string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("schema %q is not declared", e.Name)
}

func (e *UnknownSchemaError) Is(target error) bool { return target == ErrUnknownSchema }

// Validation is a shorthand constructor.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CheckIndex returns a RangeError when index does not address an element of a
// collection of the given length.
func CheckIndex(collection string, index, length int) error {
	if index < 0 || index >= length {
		return &RangeError{Collection: collection, Index: index, Length: length}
	}
	return nil
}

// StatusCode resolves the status for err, defaulting to 500.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if code := httpErr.StatusCode(); code > 0 {
			return code
		}
	}
	return http.StatusInternalServerError
}
