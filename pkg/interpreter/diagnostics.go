package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one static finding of CheckCode.
type Diagnostic struct {
	Severity Severity
	Message  string
	Node     ast.Node
}

func (d Diagnostic) String() string {
	if d.Node != nil && !d.Node.Span().IsZero() {
		start := d.Node.Span().Start
		return fmt.Sprintf("%s: %d:%d: %s", d.Severity, start.Line, start.Column, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

type Diagnostics []Diagnostic

func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins the error diagnostics, or returns nil when there are none.
func (ds Diagnostics) Err() error {
	var errs []error
	for _, d := range ds {
		if d.Severity == SeverityError {
			errs = append(errs, errors.New(d.String()))
		}
	}
	return errors.Join(errs...)
}

func (ds Diagnostics) String() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// DescribeError renders an error escaping a top-level evaluation for people:
// faults list their code, subject and both representations, uncaught throws
// render the thrown value.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	var sig *ThrowSignal
	if errors.As(err, &sig) {
		return sig.Error()
	}
	if f, ok := runtime.AsFault(err); ok {
		return "fault " + f.Error()
	}
	return err.Error()
}
