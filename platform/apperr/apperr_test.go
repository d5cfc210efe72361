package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{KindUnknown, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Errorf("kind %d: HTTPStatus() = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestGetKindFollowsWrapChain(t *testing.T) {
	base := Conflict("lead is dropped")
	wrapped := fmt.Errorf("drop lead 7: %w", base)

	if !Is(wrapped, KindConflict) {
		t.Fatalf("Is(wrapped, KindConflict) = false")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("plain error should have KindUnknown")
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("lock timeout")
	err := Unavailable("entity is busy", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Unavailable should wrap its cause")
	}
	if err.Error() != "entity is busy" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if got := err.WithOp("advance_stage").Error(); got != "advance_stage: entity is busy" {
		t.Fatalf("WithOp Error() = %q", got)
	}
}

func TestConstructorsSetKind(t *testing.T) {
	cause := errors.New("minio: connection refused")
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"bad request", BadRequest("malformed body"), http.StatusBadRequest},
		{"internal", Internal("failed to store file", cause), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
	if !errors.Is(Internal("x", cause), cause) {
		t.Fatal("Internal should wrap its cause")
	}
}
