package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

// runSwitch evaluates the subject once and scans the arms in order. The
// first arm whose guard equals the subject, or the first default arm reached,
// starts execution; later arms run too until a break.
func (i *Interpreter) runSwitch(n *ast.Switch, frame *env.Environment) Completion {
	subject, err := i.evaluateExpression(n.Subject, frame)
	if err != nil {
		return fromError(err)
	}
	arms := frame.Extend(n.Size)
	for _, c := range n.Cases {
		if err := i.hoist(arms, c.Body); err != nil {
			return faulted(err)
		}
	}
	start := -1
	for idx, c := range n.Cases {
		if c.Guard == nil {
			start = idx
			break
		}
		guard, err := i.evaluateExpression(c.Guard, arms)
		if err != nil {
			return fromError(err)
		}
		if runtime.Equal(subject, guard) {
			start = idx
			break
		}
	}
	if start < 0 {
		return normal(runtime.Null)
	}
	for _, c := range n.Cases[start:] {
		for _, stmt := range c.Body {
			out := i.runStatement(stmt, arms)
			switch out.Kind {
			case Normal:
				continue
			case Break:
				return normal(runtime.Null)
			default:
				return out
			}
		}
	}
	return normal(runtime.Null)
}

// runTry gives break, continue and return straight to finally. A throw or a
// catchable fault is offered to the clauses in order. A finally block that
// completes abruptly replaces whatever the body or the handler produced.
func (i *Interpreter) runTry(n *ast.Try, frame *env.Environment) Completion {
	result := i.runBlock(n.Body, frame)
	if result.Kind == Throw || result.Kind == Fault {
		for idx := range n.Catches {
			clause := &n.Catches[idx]
			caught, ok := catchValue(clause, result)
			if !ok {
				continue
			}
			result = i.runCatch(clause, caught, frame)
			break
		}
	}
	if n.Finally != nil {
		if fin := i.runBlock(n.Finally, frame); fin.Abrupt() {
			return fin
		}
	}
	return result
}

// catchValue reports the value a clause binds, if it accepts the completion.
// Typed faults are only visible to clauses naming the Fault class, and
// cancellation is never caught. A thrown null matches any other clause type
// but never a Fault clause, whose handler always sees a fault instance.
func catchValue(clause *ast.Catch, c Completion) (runtime.Value, bool) {
	if c.Kind == Throw {
		if runtime.IsNull(c.Value) && clause.Type.Class() == runtime.FaultClass {
			return nil, false
		}
		return c.Value, clause.Type.ContainsValue(c.Value)
	}
	f, ok := runtime.AsFault(c.Err)
	if !ok || f.Code == runtime.FaultCancelled {
		return nil, false
	}
	if clause.Type.Class() != runtime.FaultClass {
		return nil, false
	}
	return runtime.FaultInstance(f), true
}

func (i *Interpreter) runCatch(clause *ast.Catch, caught runtime.Value, frame *env.Environment) Completion {
	handler := frame.Extend(clause.Size)
	cell, err := handler.Declare(clause.Index, clause.Name, nil, false)
	if err != nil {
		return faulted(err)
	}
	if _, err := cell.Initialize(env.InitDeclaration, caught); err != nil {
		return faulted(err)
	}
	return i.runBlock(clause.Body, handler)
}
