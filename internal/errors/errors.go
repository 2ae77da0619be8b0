// Package errors provides centralized error definitions and error handling
// utilities for the Fuji codebase. It defines sentinel errors for the
// server/session subsystems, semantic error types for common conditions,
// and classification helpers used by the CLI layer to decide what is safe
// to show the operator.
//
// Creating errors:
//
//	// Semantic error
//	err := errors.NewNotFoundError("server", "survival")
//
//	// Format error with position context
//	err := errors.NewFormatError("missing '=' separator").WithLine(3)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrServerNotRunning) { ... }
//
//	var notFound *errors.NotFoundError
//	if errors.As(err, &notFound) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Server-related sentinel errors
var (
	// ErrServerNotFound indicates that a server directory could not be found.
	ErrServerNotFound = New("server not found")
	// ErrServerExists indicates that a server with the name already exists.
	ErrServerExists = New("server already exists")
	// ErrServerNotRunning indicates that no session exists for the server.
	ErrServerNotRunning = New("server is not running")
	// ErrServerLocked indicates that a start sequence is already in flight.
	ErrServerLocked = New("server start already in flight")
)

// Session-related sentinel errors
var (
	// ErrSessionNotFound indicates that a tmux session could not be found.
	ErrSessionNotFound = New("session not found")
	// ErrSessionCreateFailed indicates that tmux failed to create a session.
	ErrSessionCreateFailed = New("failed to create session")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("server", "survival")
//	fmt.Println(err) // "server 'survival' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrServerNotFound) {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *AlreadyExistsError) WithCause(cause error) *AlreadyExistsError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *AlreadyExistsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' already exists: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' already exists", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	if errors.Is(target, ErrServerExists) {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input, such as a malformed server name.
//
// Example:
//
//	err := errors.NewValidationError("server name must start with a letter")
//	err = err.WithField("name").WithValue("1server")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// NotRunningError is returned by stop when no session exists for the server.
type NotRunningError struct {
	baseError
	ServerName string
}

// NewNotRunningError creates a new NotRunningError.
func NewNotRunningError(serverName string) *NotRunningError {
	return &NotRunningError{
		baseError: baseError{
			message:    fmt.Sprintf("server '%s' is not running", serverName),
			retryable:  false,
			userFacing: true,
		},
		ServerName: serverName,
	}
}

// Error returns the formatted error message.
func (e *NotRunningError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *NotRunningError) Is(target error) bool {
	if _, ok := target.(*NotRunningError); ok {
		return true
	}
	if errors.Is(target, ErrServerNotRunning) {
		return true
	}
	return e.baseError.Is(target)
}

// FormatError represents text that does not match the server.properties
// key=value grammar.
type FormatError struct {
	baseError
	Line int // 1-based line number, 0 when unknown
}

// NewFormatError creates a new FormatError.
func NewFormatError(message string) *FormatError {
	return &FormatError{
		baseError: baseError{
			message:    message,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithLine adds the offending line number to the error context.
func (e *FormatError) WithLine(line int) *FormatError {
	e.Line = line
	return e
}

// WithCause adds a cause to the error.
func (e *FormatError) WithCause(cause error) *FormatError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *FormatError) Error() string {
	prefix := "format error"
	if e.Line > 0 {
		prefix = fmt.Sprintf("format error [line %d]", e.Line)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *FormatError) Is(target error) bool {
	if _, ok := target.(*FormatError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// classifier is implemented by errors that carry classification metadata.
type classifier interface {
	error
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var c classifier
	if As(err, &c) {
		return c.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to the
// operator. Internal errors should be logged instead.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var c classifier
	if As(err, &c) {
		return c.IsUserFacing()
	}

	return false
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
