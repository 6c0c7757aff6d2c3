package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUpstream, http.StatusBadGateway},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("%s.Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestAsWrappedError(t *testing.T) {
	base := Conflict("cnpj already registered")
	wrapped := fmt.Errorf("submit store step: %w", base)

	got := As(wrapped)
	if got != base {
		t.Fatalf("As() = %v, want the original *Error", got)
	}
	if !Is(wrapped, KindConflict) {
		t.Error("Is(wrapped, KindConflict) = false")
	}
}

func TestAsForeignErrorBecomesInternal(t *testing.T) {
	got := As(fmt.Errorf("connection refused"))
	if got.Kind != KindInternal {
		t.Fatalf("Kind = %s, want internal", got.Kind)
	}
	if got.Cause() == nil {
		t.Error("internal error should keep its cause")
	}
	if got.Message != "internal server error" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(nil, KindUpstream, "geocoder unavailable")
	if err.Cause() != nil {
		t.Error("Wrap(nil) should not set a cause")
	}
	if err.Error() != "upstream: geocoder unavailable" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsNil(t *testing.T) {
	if Is(nil, KindInternal) {
		t.Error("Is(nil) = true")
	}
	if As(nil) != nil {
		t.Error("As(nil) != nil")
	}
}

func TestWithRedirectCopies(t *testing.T) {
	base := Conflict("store already registered")
	routed := base.WithRedirect("/dashboard")

	if routed.Redirect != "/dashboard" || routed.Kind != KindConflict || routed.Message != base.Message {
		t.Errorf("WithRedirect() = %+v", routed)
	}
	if base.Redirect != "" {
		t.Errorf("original changed: redirect = %q", base.Redirect)
	}
}
