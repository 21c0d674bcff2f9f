package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestDefaultCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorCategory
	}{
		{ErrCodeTimeout, CategoryTransient},
		{ErrCodeNetworkErr, CategoryTransient},
		{ErrCodeUnavailable, CategoryTransient},
		{ErrCodeUnauthorized, CategorySecurity},
		{ErrCodeForbidden, CategorySecurity},
		{ErrCodeNotFound, CategoryPermanent},
		{ErrCodeUpdateFailed, CategoryPermanent},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeDecode, CategoryInternal},
		{ErrorCode("BOGUS"), CategoryInternal},
	}

	for _, tt := range tests {
		if got := tt.code.DefaultCategory(); got != tt.want {
			t.Errorf("%s: expected category %s, got %s", tt.code, tt.want, got)
		}
	}
}

func TestNew_SetsCodeAndCategory(t *testing.T) {
	err := New(ErrCodeUnauthorized, "session expired")

	if err.Code() != ErrCodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %s", err.Code())
	}
	if err.Category() != CategorySecurity {
		t.Errorf("expected security category, got %s", err.Category())
	}
	if err.Timestamp().IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestError_MessageWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Network("fetching metrics", WithCause(cause))

	want := "fetching metrics: connection refused"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be in the error chain")
	}
}

func TestIsSecurity(t *testing.T) {
	if !IsSecurity(Unauthorized("nope")) {
		t.Error("Unauthorized should classify as security")
	}
	if !IsSecurity(Forbidden("nope")) {
		t.Error("Forbidden should classify as security")
	}
	if IsSecurity(Network("down")) {
		t.Error("Network should not classify as security")
	}
	if IsSecurity(fmt.Errorf("plain error")) {
		t.Error("plain error should not classify as security")
	}
}

func TestIsSecurity_Wrapped(t *testing.T) {
	inner := Unauthorized("session expired")
	outer := Wrap(inner, "updating review status", WithTaskID(42))

	if !IsSecurity(outer) {
		t.Error("wrapping must preserve the security classification")
	}
	if outer.Code() != ErrCodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %s", outer.Code())
	}
	if outer.TaskID() != 42 {
		t.Errorf("expected task id 42, got %d", outer.TaskID())
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "anything") != nil {
		t.Error("wrapping nil must return nil")
	}
}

func TestWrap_ContextErrors(t *testing.T) {
	if Code(Wrap(context.DeadlineExceeded, "fetch")) != ErrCodeTimeout {
		t.Error("deadline exceeded should map to TIMEOUT")
	}
	if Code(Wrap(context.Canceled, "fetch")) != ErrCodeCanceled {
		t.Error("context canceled should map to CANCELED")
	}
}

func TestWrap_UnknownError(t *testing.T) {
	err := Wrap(fmt.Errorf("mystery"), "doing a thing")
	if err.Code() != ErrCodeInternal {
		t.Errorf("expected INTERNAL, got %s", err.Code())
	}
}

func TestWrapWithCode(t *testing.T) {
	cause := fmt.Errorf("403 from server")
	err := WrapWithCode(cause, ErrCodeForbidden, "cancel claim rejected")

	if !IsSecurity(err) {
		t.Error("expected security classification")
	}
	if Cause(err) != cause {
		t.Errorf("expected root cause preserved, got %v", Cause(err))
	}
}

func TestUpdateFailed(t *testing.T) {
	err := UpdateFailed(7, "conflict")
	if err.TaskID() != 7 {
		t.Errorf("expected task id 7, got %d", err.TaskID())
	}
	if err.Category() != CategoryPermanent {
		t.Errorf("expected permanent, got %s", err.Category())
	}
}
