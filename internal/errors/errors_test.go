package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeInvalidParams, "symbol is required")
	want := "INVALID_PARAMS: symbol is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeSourceUnavailable, "eastmoney failed", cause)

	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("wrapped cause missing from message: %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCode(t *testing.T) {
	if got := Code(nil); got != "" {
		t.Errorf("Code(nil) = %q, want empty", got)
	}
	if got := Code(fmt.Errorf("plain")); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
	if got := Code(UnknownSource("x")); got != CodeUnknownSource {
		t.Errorf("Code = %q, want %q", got, CodeUnknownSource)
	}

	// The code survives further wrapping.
	wrapped := fmt.Errorf("handler: %w", EmptyResult("sina"))
	if got := Code(wrapped); got != CodeEmptyResult {
		t.Errorf("Code through wrapping = %q, want %q", got, CodeEmptyResult)
	}
}

func TestIs(t *testing.T) {
	err := UnsupportedFormat("yaml")
	if !Is(err, CodeUnsupportedFormat) {
		t.Error("Is should match the error's code")
	}
	if Is(err, CodeInternalError) {
		t.Error("Is should not match a different code")
	}
}

func TestAllSourcesFailedMessage(t *testing.T) {
	err := AllSourcesFailed([]string{"eastmoney: down", "sina: empty"})
	if Code(err) != CodeAllSourcesFailed {
		t.Fatalf("Code = %q", Code(err))
	}
	for _, part := range []string{"eastmoney: down", "sina: empty"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("aggregate message missing %q: %q", part, err.Error())
		}
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{InvalidParams("x"), CodeInvalidParams},
		{UnknownSource("x"), CodeUnknownSource},
		{SourceUnavailable("x", fmt.Errorf("y")), CodeSourceUnavailable},
		{EmptyResult("x"), CodeEmptyResult},
		{UnsupportedFormat("x"), CodeUnsupportedFormat},
		{EncodeFailed("x", fmt.Errorf("y")), CodeEncodeFailed},
		{CacheFailed(fmt.Errorf("y")), CodeCacheFailed},
		{Internal(fmt.Errorf("y")), CodeInternalError},
	}
	for _, tt := range tests {
		if got := Code(tt.err); got != tt.code {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.code)
		}
	}
}
