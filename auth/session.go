// Package auth provides the re-authentication surface the review
// coordinator invokes after a security failure. The actual login flow
// (OAuth redirect, token refresh) lives outside this module; callers
// plug it in through the Session interface.
package auth

import (
	"context"

	rkerrors "github.com/taskmapper/reviewkit/errors"
	"github.com/taskmapper/reviewkit/transport"
)

// Session triggers re-authentication of the current user.
type Session interface {
	// EnsureUserLoggedIn blocks until re-authentication completes,
	// returning an error if it fails. It is invoked after an
	// authorization failure and never retries the failed operation.
	EnsureUserLoggedIn(ctx context.Context) error
}

// SessionFunc adapts a function to the Session interface.
type SessionFunc func(ctx context.Context) error

// EnsureUserLoggedIn calls the wrapped function.
func (f SessionFunc) EnsureUserLoggedIn(ctx context.Context) error {
	return f(ctx)
}

// EndpointSession re-validates the session by executing a probe route.
// It suits deployments where authentication rides on cookies or an API
// key and "re-authentication" means confirming the credential still
// holds.
type EndpointSession struct {
	endpoint transport.Endpoint
	route    string
}

// NewEndpointSession creates a session validator probing the given route
// (typically the current-user route).
func NewEndpointSession(endpoint transport.Endpoint, route string) *EndpointSession {
	return &EndpointSession{
		endpoint: endpoint,
		route:    route,
	}
}

// EnsureUserLoggedIn executes the probe route and reports failure as an
// unauthorized error.
func (s *EndpointSession) EnsureUserLoggedIn(ctx context.Context) error {
	if _, err := s.endpoint.Execute(ctx, transport.Operation{Route: s.route}); err != nil {
		return rkerrors.WrapWithCode(err, rkerrors.ErrCodeUnauthorized, "session validation failed")
	}
	return nil
}
