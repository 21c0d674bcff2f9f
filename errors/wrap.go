package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already an *Error, its code and category are preserved.
// Otherwise a new Internal error wraps the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var re *Error
	if errors.As(err, &re) {
		wrapped := &Error{
			code:      re.code,
			category:  re.category,
			message:   message,
			cause:     err,
			taskID:    re.taskID,
			route:     re.route,
			timestamp: re.timestamp,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error under a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.code == code
	}
	return false
}

// IsCategory checks if any error in the chain has the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.category == category
	}
	return false
}

// IsSecurity reports whether the error is an authorization/permission
// denial. This is the classifier the coordinator branches on when deciding
// between re-authentication and a generic failure surface.
func IsSecurity(err error) bool {
	return IsCategory(err, CategorySecurity)
}

// IsTransient reports whether the error is a transport-level failure.
func IsTransient(err error) bool {
	return IsCategory(err, CategoryTransient)
}

// Code extracts the error code from an error, if available.
// Returns empty string if err is not an *Error.
func Code(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.code
	}
	return ""
}

// Category extracts the error category from an error, if available.
// Returns empty string if err is not an *Error.
func Category(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.category
	}
	return ""
}

// Cause returns the root cause of the error chain.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := unwrapper.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}
