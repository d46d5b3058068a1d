package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"auth", Auth("no token"), KindAuth},
		{"forbidden", Forbidden("not your squad"), KindForbidden},
		{"not found", NotFound("player missing"), KindNotFound},
		{"conflict", Conflict("already completed"), KindConflict},
		{"infra", Infra("db write failed", cause), KindInfra},
		{"plain error", cause, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := NotFoundf("player %s not found", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("did not expect errors.Is to match ErrConflict")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInfra, "sweep failed", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}
	if KindOf(err) != KindInfra {
		t.Fatalf("expected KindInfra, got %v", KindOf(err))
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Infra("advisory lock failed", cause)

	got := err.Error()
	want := fmt.Sprintf("advisory lock failed: %v", cause)
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
