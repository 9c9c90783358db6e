package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create a duplicate entity
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotCancellable is returned when cancelling a session that is already terminal
	ErrNotCancellable = errors.New("session is not cancellable")

	// ErrNotResumable is returned when resuming a session that is not paused
	ErrNotResumable = errors.New("session is not paused")

	// ErrQueueFull is returned when the pending session count is at max_queue_size
	ErrQueueFull = errors.New("session queue is full")
)

// QueueFullError carries the queue numbers for the 429 response body.
// errors.Is(err, ErrQueueFull) matches it.
type QueueFullError struct {
	QueueSize    int
	MaxQueueSize int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("queue full: %d of %d", e.QueueSize, e.MaxQueueSize)
}

func (e *QueueFullError) Unwrap() error { return ErrQueueFull }

// ValidationError wraps field-specific validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
