package transport

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Operation describes one remote call: a route with {var} path variables,
// flat query parameters, and an optional JSON request body. Operations are
// plain data so endpoints stay interchangeable (HTTP, in-memory, traced).
type Operation struct {
	// Method is the HTTP verb. Empty means GET.
	Method string

	// Route is the server route relative to the API base, with path
	// variables in {braces}, e.g. "tasks/review/{type}/metrics".
	Route string

	// PathVars substitutes the route's {var} placeholders.
	PathVars map[string]string

	// Params are the flat query parameters.
	Params map[string]string

	// Body is the JSON request payload for mutating operations.
	Body interface{}
}

// Endpoint executes operations against the review service. Errors are
// classified by the implementation: authorization denials carry the
// security category, transport-level failures the transient category
// (see the errors package).
type Endpoint interface {
	Execute(ctx context.Context, op Operation) (json.RawMessage, error)
}

// ExpandRoute substitutes {var} placeholders with their escaped values.
// Unmatched placeholders are left in place.
func ExpandRoute(route string, vars map[string]string) string {
	expanded := route
	for name, value := range vars {
		expanded = strings.ReplaceAll(expanded, "{"+name+"}", url.PathEscape(value))
	}
	return expanded
}

// EncodeParams renders flat parameters as a query string with stable
// ordering.
func EncodeParams(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
