package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseMeasure,
				Kind:   KindChildCount,
				Path:   []string{"root", "panel", "row"},
				Node:   "row#2",
				Detail: "requires 2 children",
			},
			contains: []string{"[measure]", "child_count", "root/panel/row", "row#2", "requires 2 children"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseBuild,
				Kind:  KindScopeUnderflow,
			},
			contains: []string{"[build]", "scope_underflow"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseProfile,
				Kind:   KindSinkClosed,
				Detail: "record dropped",
				Cause:  errors.New("channel closed"),
			},
			contains: []string{"[profile]", "sink_closed", "record dropped", "caused by", "channel closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMeasure,
		Kind:  KindUnboundedFill,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseMeasure,
		Kind:  KindSpecMismatch,
		Node:  "list#0",
	}

	if !errors.Is(err, &Error{Phase: PhaseMeasure, Kind: KindSpecMismatch}) {
		t.Error("Is should match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseBuild, Kind: KindSpecMismatch}) {
		t.Error("Is should not match a different phase")
	}
	if errors.Is(err, errors.New("plain")) {
		t.Error("Is should not match a non-structured error")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("io failure")
	err := New(PhaseRecord, KindInternal).
		Path("root", "canvas").
		Node("canvas#0").
		Detail("fragment %d unplaced", 7).
		Value(7).
		Cause(cause).
		Build()

	if err.Phase != PhaseRecord || err.Kind != KindInternal {
		t.Fatalf("builder lost phase/kind: %v", err)
	}
	if err.Detail != "fragment 7 unplaced" {
		t.Errorf("detail = %q", err.Detail)
	}
	if err.Value != 7 {
		t.Errorf("value = %v", err.Value)
	}
	if !errors.Is(err.Unwrap(), cause) {
		t.Error("builder lost cause")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		sub  string
	}{
		{"unbounded fill", UnboundedFill("spacer#1", "width"), KindUnboundedFill, "no ancestor supplies a maximum"},
		{"child count", ChildCount("split#0", 2, 3), KindChildCount, "requires 2 children, tree has 3"},
		{"spec mismatch", SpecMismatch("row#4", "stack", "flow"), KindSpecMismatch, "cached spec stack"},
		{"scope underflow", ScopeUnderflow(PhaseBuild), KindScopeUnderflow, "empty scope stack"},
		{"invalid input", InvalidInput(PhaseInput, "nil batch"), KindInvalidInput, "nil batch"},
		{"not initialized", NotInitialized(PhaseRuntime, "runtime"), KindNotInitialized, "runtime not initialized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.sub) {
				t.Errorf("message %q missing %q", tt.err.Error(), tt.sub)
			}
		})
	}
}
