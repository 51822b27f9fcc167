package interpreter

import (
	"errors"

	"quill/interpreter-go/pkg/runtime"
)

// CompletionKind says how a statement finished.
type CompletionKind uint8

const (
	Normal CompletionKind = iota
	Break
	Continue
	Return
	Throw
	Fault
)

func (k CompletionKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	case Throw:
		return "throw"
	case Fault:
		return "fault"
	}
	return "unknown"
}

// Completion is the result of running a statement. Value carries the
// statement value for Normal, the returned value for Return and the thrown
// value for Throw. Err is set for Fault.
type Completion struct {
	Kind  CompletionKind
	Value runtime.Value
	Err   error
}

// Abrupt reports whether the completion leaves the enclosing statement list.
func (c Completion) Abrupt() bool { return c.Kind != Normal }

func normal(v runtime.Value) Completion { return Completion{Kind: Normal, Value: v} }

func faulted(err error) Completion { return Completion{Kind: Fault, Err: err} }

// fromError maps an expression error back into a completion.
func fromError(err error) Completion {
	var sig *ThrowSignal
	if errors.As(err, &sig) {
		return Completion{Kind: Throw, Value: sig.Value}
	}
	return faulted(err)
}

// Error converts a Throw or Fault completion into the error an expression
// returns. It is nil for the other kinds.
func (c Completion) Error() error {
	switch c.Kind {
	case Throw:
		return &ThrowSignal{Value: c.Value}
	case Fault:
		return c.Err
	}
	return nil
}

// ThrowSignal carries an interpreted exception across expression boundaries,
// out of a function call and to the host when nothing catches it.
type ThrowSignal struct {
	Value runtime.Value
}

func (t *ThrowSignal) Error() string {
	if inst, ok := t.Value.(*runtime.InstanceValue); ok {
		if msg, ok := inst.Field("message"); ok && !runtime.IsNull(msg) {
			return "uncaught " + inst.Class.ClassName + ": " + runtime.ToString(msg)
		}
	}
	return "uncaught exception: " + runtime.ToString(t.Value)
}

// controlEscape reports a break or continue that left a function or program.
func controlEscape(kind CompletionKind, subject string) error {
	return runtime.NewFault(runtime.FaultControlEscape, subject, "%s outside of a loop or switch", kind)
}
