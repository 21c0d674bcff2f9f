// Package errors provides the structured error taxonomy for the review
// synchronization client. Every failure crossing the transport boundary is
// wrapped into an *Error carrying a code and a category, so higher layers
// branch on category alone rather than inspecting transport details.
//
// # Error Categories
//
// Errors are classified into four categories:
//
//   - Transient: transport-level failures (timeouts, network errors,
//     server unavailable). Recovery is a corrective refetch of
//     authoritative state, never an automatic retry.
//   - Security: authorization/permission denials. Recovery is
//     re-authentication followed by a user-visible error.
//   - Permanent: failures where refetching will not help (invalid input,
//     not found, rejected mutation).
//   - Internal: unexpected errors indicating bugs.
//
// # Usage
//
// Create a new error:
//
//	err := errors.Unauthorized("session expired")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "updating review status")
//
// Branch on classification:
//
//	if errors.IsSecurity(err) {
//	    // re-authenticate, then surface unauthorized
//	}
package errors
