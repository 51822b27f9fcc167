package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// FaultCode classifies typed runtime faults.
type FaultCode string

const (
	FaultTypeMismatch  FaultCode = "TypeMismatch"
	FaultFinalAssign   FaultCode = "FinalAssign"
	FaultInternal      FaultCode = "Internal"
	FaultCancelled     FaultCode = "Cancelled"
	FaultArithmetic    FaultCode = "Arithmetic"
	FaultIndex         FaultCode = "Index"
	FaultNoSuchField   FaultCode = "NoSuchField"
	FaultNotCallable   FaultCode = "NotCallable"
	FaultArity         FaultCode = "Arity"
	FaultUndefined     FaultCode = "Undefined"
	FaultControlEscape FaultCode = "ControlEscape"
	FaultDepth         FaultCode = "Depth"
)

// Fault is the single typed runtime fault. Subject names the operator,
// variable or function involved.
type Fault struct {
	Code     FaultCode
	Subject  string
	Message  string
	Expected string
	Actual   string
	Cause    error
}

func (f *Fault) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Code))
	if f.Subject != "" {
		b.WriteString(" in ")
		b.WriteString(f.Subject)
	}
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	if f.Expected != "" || f.Actual != "" {
		fmt.Fprintf(&b, " (expected %s, got %s)", f.Expected, f.Actual)
	}
	if f.Cause != nil {
		b.WriteString(": ")
		b.WriteString(f.Cause.Error())
	}
	return b.String()
}

func (f *Fault) Unwrap() error { return f.Cause }

// Is matches faults by code so errors.Is(err, &Fault{Code: ...}) works.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Code == f.Code && t.Subject == "" && t.Message == ""
}

func NewFault(code FaultCode, subject, format string, args ...any) *Fault {
	return &Fault{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// TypeMismatch names both the expected and the actual representation.
func TypeMismatch(subject, expected, actual string) *Fault {
	return &Fault{Code: FaultTypeMismatch, Subject: subject, Expected: expected, Actual: actual}
}

func FinalAssignment(name string) *Fault {
	return &Fault{Code: FaultFinalAssign, Subject: name, Message: "cannot assign to final variable"}
}

func Internal(subject, format string, args ...any) *Fault {
	return NewFault(FaultInternal, subject, format, args...)
}

func Cancelled(subject string, cause error) *Fault {
	return &Fault{Code: FaultCancelled, Subject: subject, Message: "evaluation cancelled", Cause: cause}
}

// AsFault extracts a fault from an error chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsCancellation reports whether err is a cancellation fault.
func IsCancellation(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Code == FaultCancelled
}

// Recovered converts a host panic caught by recover into an internal fault.
func Recovered(subject string, r any) *Fault {
	if f, ok := r.(*Fault); ok {
		return f
	}
	if err, ok := r.(error); ok {
		return &Fault{Code: FaultInternal, Subject: subject, Message: "host failure", Cause: err}
	}
	return Internal(subject, "host failure: %v", r)
}

// Describe returns the representation name used in fault messages.
func Describe(v Value) string {
	if v == nil {
		return "null"
	}
	switch val := v.(type) {
	case *InstanceValue:
		if val.Class != nil {
			return "instance:" + val.Class.ClassName
		}
	case *ClassValue:
		return "class:" + val.ClassName
	}
	return v.Kind().String()
}
