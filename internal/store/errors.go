package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all backend implementations.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	// This is the generic version of the entity-specific not found
	// errors (e.g. ErrDeckNotFound, ErrCardNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation would violate a
	// uniqueness rule (e.g. a duplicate deck name). Never a silent
	// overwrite; the caller decides what to do.
	ErrConflict = errors.New("entity already exists")

	// ErrValidation is returned when an entity fails validation before
	// any persistence attempt. Check the wrapped error for details.
	ErrValidation = errors.New("invalid entity")

	// ErrStorage is returned for I/O and transaction failures. The
	// wrapped error carries enough context to distinguish transient
	// failures (retryable by the caller) from structural ones (corrupt
	// file, schema mismatch).
	ErrStorage = errors.New("storage failure")

	// Entity-specific "not found" errors

	// ErrDeckNotFound indicates that the requested deck does not exist.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrCardNotFound indicates that the requested card does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// Entity-specific "conflict" errors

	// ErrDeckNameExists indicates that a deck with the given name
	// already exists.
	ErrDeckNameExists = fmt.Errorf("%w: deck name", ErrConflict)
)

// IsNotFound checks if the error is any kind of "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is any kind of uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if the error is a validation rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStorage checks if the error is a storage-layer failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// StoreError tags a failure with the entity and operation that hit it,
// on top of the sentinel taxonomy. errors.Is still classifies through
// the sentinel; errors.As extracts the context for logging.
type StoreError struct {
	Entity    string // e.g. "deck", "card", "review"
	Operation string // e.g. "insert", "scan", "delete"
	Kind      error  // taxonomy sentinel, usually ErrStorage
	Err       error  // underlying driver or I/O error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Operation, e.Entity, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Entity, e.Kind)
}

// Unwrap exposes both the taxonomy sentinel and the underlying error to
// errors.Is and errors.As.
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StorageError wraps a driver or I/O error as an ErrStorage failure
// tagged with the entity and operation that produced it.
func StorageError(entity, operation string, err error) error {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Kind:      ErrStorage,
		Err:       err,
	}
}
