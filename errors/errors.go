package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which frame pass the error occurred in
type Phase string

const (
	PhaseBuild   Phase = "build"   // component body execution
	PhaseMeasure Phase = "measure" // constraint resolution and layout
	PhaseRecord  Phase = "record"  // draw fragment emission
	PhaseInput   Phase = "input"   // event dispatch
	PhaseProfile Phase = "profile" // diagnostics sink
	PhaseRuntime Phase = "runtime" // frame orchestration
)

// Kind categorizes the error
type Kind string

const (
	KindConstraintViolation Kind = "constraint_violation"
	KindUnboundedFill       Kind = "unbounded_fill"
	KindChildCount          Kind = "child_count"
	KindSpecMismatch        Kind = "spec_mismatch"
	KindDuplicateNode       Kind = "duplicate_node"
	KindScopeUnderflow      Kind = "scope_underflow"
	KindInvalidInput        Kind = "invalid_input"
	KindNotInitialized      Kind = "not_initialized"
	KindSinkClosed          Kind = "sink_closed"
	KindInternal            Kind = "internal"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Node   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Node != "" {
		b.WriteString(": node ")
		b.WriteString(e.Node)
	}

	if e.Detail != "" {
		if e.Node != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the component path from the tree root
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Node sets the failing node's identity string
func (b *Builder) Node(node string) *Builder {
	b.err.Node = node
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnboundedFill creates the fatal error for a Fill dimension with no
// resolvable maximum anywhere in the ancestor chain.
func UnboundedFill(node, axis string) *Error {
	return &Error{
		Phase:  PhaseMeasure,
		Kind:   KindUnboundedFill,
		Node:   node,
		Detail: fmt.Sprintf("%s axis wants to fill but no ancestor supplies a maximum", axis),
	}
}

// ChildCount creates a measurement failure for a layout spec whose child
// count invariant is violated.
func ChildCount(node string, want, got int) *Error {
	return &Error{
		Phase:  PhaseMeasure,
		Kind:   KindChildCount,
		Node:   node,
		Detail: fmt.Sprintf("layout spec requires %d children, tree has %d", want, got),
		Value:  got,
	}
}

// SpecMismatch creates the error for a cached layout result whose stored
// spec type no longer matches the spec registered this frame.
func SpecMismatch(node, stored, registered string) *Error {
	return &Error{
		Phase:  PhaseMeasure,
		Kind:   KindSpecMismatch,
		Node:   node,
		Detail: fmt.Sprintf("cached spec %s, registered %s", stored, registered),
	}
}

// ScopeUnderflow creates the error for an Exit without a matching Enter.
func ScopeUnderflow(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindScopeUnderflow,
		Detail: "exit called on an empty scope stack",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotInitialized creates a not initialized error
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: what + " not initialized",
	}
}

// Internal creates an internal invariant failure error
func Internal(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}
