// Package domain defines core types, interfaces, and errors for the query hub.
package domain

import "fmt"

// NotFoundError indicates a resource was not found or is not visible to the
// caller. Missing and unowned resources are deliberately indistinguishable.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// LoadError indicates a dataset could not be fetched or parsed into the
// workspace. It aborts the whole submission before the query runs.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }

// QueryExecutionError carries the engine's message for user SQL that is
// invalid or fails at runtime. This is an expected outcome class: it is
// recorded into the query record, never surfaced as a transport failure.
type QueryExecutionError struct {
	Message string
}

func (e *QueryExecutionError) Error() string { return e.Message }

// ResourceExceededError indicates the query breached a resource bound
// (wall-clock timeout or cancellation). The message distinguishes "too
// expensive" from "wrong".
type ResourceExceededError struct {
	Message string
}

func (e *ResourceExceededError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrLoad creates a LoadError with a formatted message.
func ErrLoad(format string, args ...interface{}) *LoadError {
	return &LoadError{Message: fmt.Sprintf(format, args...)}
}

// ErrQueryExecution creates a QueryExecutionError with a formatted message.
func ErrQueryExecution(format string, args ...interface{}) *QueryExecutionError {
	return &QueryExecutionError{Message: fmt.Sprintf(format, args...)}
}

// ErrResourceExceeded creates a ResourceExceededError with a formatted message.
func ErrResourceExceeded(format string, args ...interface{}) *ResourceExceededError {
	return &ResourceExceededError{Message: fmt.Sprintf(format, args...)}
}
