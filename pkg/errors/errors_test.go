package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorRendering(t *testing.T) {
	err := New(CodeModelMissing, "model file not found").WithContext("path", "m.decl")
	got := err.Error()
	if !strings.HasPrefix(got, "[E101] model file not found") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains(got, "path=m.decl") {
		t.Errorf("Error() = %q, missing context", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(cause, CodeFilePermission, "opening input file")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}

	if Wrap(nil, CodeFilePermission, "noop") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestWrapf(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrapf(cause, CodeFilePermission, "opening %s", "stats.csv")
	if err.Code != CodeFilePermission {
		t.Errorf("code = %s", err.Code)
	}
	if err.Message != "opening stats.csv" {
		t.Errorf("message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("cause lost through Wrapf")
	}
}

func TestInvalidTimestamp(t *testing.T) {
	err := InvalidTimestamp("not-a-date")
	if err.Code != CodeInvalidTimestamp {
		t.Errorf("code = %s", err.Code)
	}
	if err.Context["value"] != "not-a-date" {
		t.Errorf("context = %v", err.Context)
	}
}

func TestCodeHelpers(t *testing.T) {
	err := ModelMissing("m.decl")
	if !IsCode(err, CodeModelMissing) {
		t.Error("IsCode failed on direct error")
	}
	wrapped := fmt.Errorf("run failed: %w", err)
	if GetCode(wrapped) != CodeModelMissing {
		t.Errorf("GetCode(wrapped) = %s", GetCode(wrapped))
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("plain error should map to CodeUnknown")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{ModelMissing("m.decl"), true},
		{ModelUnparsable("m.decl"), true},
		{New(CodeFilePermission, "denied"), true},
		{InvalidTimestamp("x"), false},
		{ContextCanceled("load"), false},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
}
