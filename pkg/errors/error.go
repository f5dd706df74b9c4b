// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, fills, ticks and configuration
//   - Data/Resource errors (200-299): Missing files and unknown orders
//   - Engine errors (400-499): Order book and engine lifecycle errors
//   - Trading errors (500-599): Order routing and gateway errors
//   - Market data errors (700-799): Quote feed errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeUnknownOrder, "unknown order %s", orderID)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeOrderFailed, "failed to submit order", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeUnknownOrder) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InvalidFillError is returned by the position ledger when a fill carries a
// non-positive size or price. The ledger state is left untouched.
type InvalidFillError struct {
	Size    float64 // Size reported by the fill
	Price   float64 // Price reported by the fill
	Message string  // Human-readable message
}

// NewInvalidFillError creates a new InvalidFillError.
func NewInvalidFillError(size, price float64, message string) *InvalidFillError {
	return &InvalidFillError{
		Size:    size,
		Price:   price,
		Message: message,
	}
}

// NewInvalidFillErrorf creates a new InvalidFillError with a formatted message.
func NewInvalidFillErrorf(size, price float64, format string, args ...any) *InvalidFillError {
	return &InvalidFillError{
		Size:    size,
		Price:   price,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InvalidFillError) Error() string {
	return fmt.Sprintf("[%d] %s", ErrCodeInvalidFill, e.Message)
}

// IsInvalidFillError checks if an error is an InvalidFillError.
// It uses errors.As to check the error chain.
func IsInvalidFillError(err error) bool {
	var fillErr *InvalidFillError

	return errors.As(err, &fillErr)
}
