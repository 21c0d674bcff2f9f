package auth

import (
	"context"
	"testing"

	rkerrors "github.com/taskmapper/reviewkit/errors"
	"github.com/taskmapper/reviewkit/transport"
)

func TestEndpointSession_Valid(t *testing.T) {
	endpoint := transport.NewMemoryEndpoint()
	endpoint.HandleJSON("GET", "user/whoami", map[string]int{"id": 1})

	session := NewEndpointSession(endpoint, "user/whoami")
	if err := session.EnsureUserLoggedIn(context.Background()); err != nil {
		t.Errorf("expected valid session, got %v", err)
	}
}

func TestEndpointSession_Invalid(t *testing.T) {
	endpoint := transport.NewMemoryEndpoint()
	endpoint.HandleError("GET", "user/whoami", rkerrors.Unauthorized("expired"))

	session := NewEndpointSession(endpoint, "user/whoami")
	err := session.EnsureUserLoggedIn(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !rkerrors.IsSecurity(err) {
		t.Errorf("expected security classification, got %v", rkerrors.Category(err))
	}
}

func TestSessionFunc(t *testing.T) {
	called := false
	session := SessionFunc(func(ctx context.Context) error {
		called = true
		return nil
	})
	if err := session.EnsureUserLoggedIn(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("adapter must call the wrapped function")
	}
}
