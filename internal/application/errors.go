package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrNotInitialized   = errors.New("record not initialized")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrReconcile        = errors.New("reconcile failed")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReconcileError wraps a failure raised while processing one event
type ReconcileError struct {
	Event string
	Path  string
	Err   error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Event, e.Path, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

func (e *ReconcileError) Is(target error) bool {
	return target == ErrReconcile
}
