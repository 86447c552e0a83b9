package cerr

import (
	"errors"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := map[Code]int{
		OK:              0,
		InvalidArgument: 64,
		NotFound:        64,
		Unavailable:     69,
		Internal:        70,
	}
	for code, want := range cases {
		if got := code.ExitCode(); got != want {
			t.Errorf("%v.ExitCode() = %d, want %d", code, got, want)
		}
	}
}

func TestNewErrorCapturesStackOnlyForInternal(t *testing.T) {
	internal := NewError(Internal, "boom", nil)
	if internal.Stack == "" {
		t.Error("expected Internal error to capture a stack trace")
	}

	notFound := NewError(NotFound, "missing", nil)
	if notFound.Stack != "" {
		t.Error("expected NotFound error to skip stack capture")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewError(Internal, "wrapped", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorMessageFormat(t *testing.T) {
	err := NewError(NotFound, "no such file", nil)
	if !strings.Contains(err.Error(), "no such file") {
		t.Errorf("Error() = %q, want it to contain the message", err.Error())
	}
	if !strings.Contains(err.Error(), "not_found") {
		t.Errorf("Error() = %q, want it to contain the code", err.Error())
	}
}
