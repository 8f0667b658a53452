package clierr

import (
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	base := New(InvalidCommand, "title is required")
	wrapped := fmt.Errorf("applying command: %w", base)

	if !HasCode(base, InvalidCommand) {
		t.Error("expected direct error to carry INVALID_COMMAND")
	}
	if !HasCode(wrapped, InvalidCommand) {
		t.Error("expected wrapped error to carry INVALID_COMMAND")
	}
	if HasCode(wrapped, TaskNotFound) {
		t.Error("wrapped error should not match TASK_NOT_FOUND")
	}
	if HasCode(fmt.Errorf("plain"), InvalidCommand) {
		t.Error("plain error should not match any code")
	}
	if HasCode(nil, InvalidCommand) {
		t.Error("nil error should not match")
	}
}

func TestExitCode(t *testing.T) {
	if got := New(InternalError, "boom").ExitCode(); got != 2 {
		t.Errorf("internal error exit code = %d, want 2", got)
	}
	if got := Newf(InvalidCommand, "bad %s", "shape").ExitCode(); got != 1 {
		t.Errorf("invalid command exit code = %d, want 1", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := Newf(ColumnNotFound, "column %q not found", "Later").
		WithDetails(map[string]any{"column": "Later"})
	if err.Message != `column "Later" not found` {
		t.Errorf("message = %q", err.Message)
	}
	if err.Details["column"] != "Later" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestSilentError(t *testing.T) {
	err := &SilentError{Code: 1}
	if err.Error() != "exit 1" {
		t.Errorf("Error() = %q", err.Error())
	}
}
