package errors

import (
	"fmt"
	"time"
)

// Error is a structured error carrying a code, a category, and optional
// task context. All failures crossing the transport boundary are wrapped
// into this type so the coordinator can branch on category alone.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	taskID    int64
	route     string
	timestamp time.Time
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// TaskID returns the related task id, or 0 if not task-scoped.
func (e *Error) TaskID() int64 {
	return e.taskID
}

// Route returns the transport route that produced the error, if any.
func (e *Error) Route() string {
	return e.route
}

// Timestamp returns when the error occurred.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithCategory overrides the default category for the code.
func WithCategory(cat ErrorCategory) Option {
	return func(e *Error) {
		e.category = cat
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// WithTaskID sets the related task id.
func WithTaskID(id int64) Option {
	return func(e *Error) {
		e.taskID = id
	}
}

// WithRoute sets the transport route that produced the error.
func WithRoute(route string) Option {
	return func(e *Error) {
		e.route = route
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:      code,
		category:  code.DefaultCategory(),
		message:   message,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// FromCode creates an error with the default description for the code.
func FromCode(code ErrorCode, opts ...Option) *Error {
	return New(code, code.Description(), opts...)
}

// Timeout creates a timeout error.
func Timeout(message string, opts ...Option) *Error {
	return New(ErrCodeTimeout, message, opts...)
}

// Network creates a network connectivity error.
func Network(message string, opts ...Option) *Error {
	return New(ErrCodeNetworkErr, message, opts...)
}

// Unauthorized creates an authorization error.
func Unauthorized(message string, opts ...Option) *Error {
	return New(ErrCodeUnauthorized, message, opts...)
}

// Forbidden creates a permission-denied error.
func Forbidden(message string, opts ...Option) *Error {
	return New(ErrCodeForbidden, message, opts...)
}

// NotFound creates a not found error.
func NotFound(message string, opts ...Option) *Error {
	return New(ErrCodeNotFound, message, opts...)
}

// InvalidInput creates an invalid input error.
func InvalidInput(message string, opts ...Option) *Error {
	return New(ErrCodeInvalidInput, message, opts...)
}

// UpdateFailed creates an error for a rejected review status mutation.
func UpdateFailed(taskID int64, reason string, opts ...Option) *Error {
	opts = append([]Option{WithTaskID(taskID)}, opts...)
	return New(ErrCodeUpdateFailed, fmt.Sprintf("task %d update failed: %s", taskID, reason), opts...)
}

// Decode creates an error for a response that could not be decoded.
func Decode(message string, opts ...Option) *Error {
	return New(ErrCodeDecode, message, opts...)
}

// Internal creates an internal error.
func Internal(message string, opts ...Option) *Error {
	return New(ErrCodeInternal, message, opts...)
}
