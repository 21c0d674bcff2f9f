// Package sequence issues monotonically increasing fetch identifiers and
// implements the out-of-order response guard.
//
// Multiple cluster fetches may be in flight at once; each is tagged with a
// FetchID assigned at call start. Responses may arrive in any order, and a
// response is applied only if its id is not older than the last applied id.
// The snapshot therefore always reflects the most recently issued request
// that has returned, not the most recently arrived response.
package sequence
