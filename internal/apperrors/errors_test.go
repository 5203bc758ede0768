package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("name", "name is required"), http.StatusBadRequest},
		{SelfParent(), http.StatusBadRequest},
		{CrossBot(), http.StatusBadRequest},
		{Cycle(), http.StatusBadRequest},
		{NotFound("folder"), http.StatusNotFound},
		{Forbidden(), http.StatusForbidden},
		{HasDependents("bot has dependent folders"), http.StatusConflict},
		{Storage("query failed", errors.New("timeout")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.err.Kind, got, tc.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := NotFound("bot")
	if !IsKind(err, KindNotFound) {
		t.Error("IsKind missed a direct error")
	}
	if IsKind(err, KindValidation) {
		t.Error("IsKind matched the wrong kind")
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	if !IsKind(wrapped, KindNotFound) {
		t.Error("IsKind missed a wrapped error")
	}

	if IsKind(errors.New("plain"), KindStorage) {
		t.Error("IsKind matched a non-app error")
	}
	if IsKind(nil, KindNotFound) {
		t.Error("IsKind matched nil")
	}
}

func TestAsError(t *testing.T) {
	appErr := Forbidden()
	if got := AsError(fmt.Errorf("call: %w", appErr)); got.Kind != KindAuthorization {
		t.Errorf("AsError kind = %s, want authorization_error", got.Kind)
	}

	// Unknown errors surface as storage errors with the cause preserved
	cause := errors.New("broken pipe")
	got := AsError(cause)
	if got.Kind != KindStorage {
		t.Errorf("AsError kind = %s, want storage_error", got.Kind)
	}
	if !errors.Is(got, cause) {
		t.Error("AsError dropped the cause")
	}
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("failed to query", cause)
	if !errors.Is(err, cause) {
		t.Error("storage error does not unwrap to its cause")
	}
}
