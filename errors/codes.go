package errors

// ErrorCategory classifies errors by how the coordinator should react.
type ErrorCategory string

// Error categories define the recovery action for a failed operation.
const (
	// CategoryTransient indicates a transport-level failure (network error,
	// timeout, server unavailable). Recovery is a corrective refetch of
	// authoritative state, never an automatic retry of the same request.
	CategoryTransient ErrorCategory = "transient"

	// CategorySecurity indicates an authorization or permission denial.
	// Recovery is re-authentication followed by a user-visible error.
	CategorySecurity ErrorCategory = "security"

	// CategoryPermanent indicates failures where neither retry nor refetch
	// will help. Examples: invalid input, resource not found.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or corrupted state.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// ErrorCode identifies specific failure types within categories.
type ErrorCode string

// Error codes for the failure scenarios this client distinguishes.
const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeNetworkErr  ErrorCode = "NETWORK_ERR" // Network connectivity issue
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Server temporarily unavailable

	// Security errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED" // Authentication failed or expired
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"    // Caller lacks permission

	// Permanent errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Resource does not exist
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled
	ErrCodeUpdateFailed ErrorCode = "UPDATE_FAILED" // Review status mutation rejected

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
	ErrCodeDecode   ErrorCode = "DECODE"   // Response could not be decoded
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeNetworkErr, ErrCodeUnavailable:
		return CategoryTransient
	case ErrCodeUnauthorized, ErrCodeForbidden:
		return CategorySecurity
	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeCanceled, ErrCodeUpdateFailed:
		return CategoryPermanent
	default:
		return CategoryInternal
	}
}

// Description returns a human-readable default description for the code.
func (c ErrorCode) Description() string {
	switch c {
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeNetworkErr:
		return "network error"
	case ErrCodeUnavailable:
		return "server unavailable"
	case ErrCodeUnauthorized:
		return "not authorized"
	case ErrCodeForbidden:
		return "permission denied"
	case ErrCodeNotFound:
		return "not found"
	case ErrCodeInvalidInput:
		return "invalid input"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeUpdateFailed:
		return "review status update failed"
	case ErrCodeDecode:
		return "malformed server response"
	default:
		return "internal error"
	}
}
