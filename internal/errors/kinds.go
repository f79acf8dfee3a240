package errors

import (
	stderrors "errors"
	"fmt"
)

// ValidationError reports input rejected before any persistence call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an operation targeting an id that no longer exists.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Validation builds a ValidationError for field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Persistence wraps err as a PersistenceError for op. Errors that already carry
// a kind (validation, not found, persistence) are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsPersistence(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return stderrors.As(err, &target)
}
