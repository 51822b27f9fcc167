package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

// loopBody folds a body completion into the loop's control decision. It
// reports whether the loop should stop and, if so, the completion to return.
func loopBody(c Completion) (bool, Completion) {
	switch c.Kind {
	case Normal, Continue:
		return false, Completion{}
	case Break:
		return true, normal(runtime.Null)
	default:
		return true, c
	}
}

func (i *Interpreter) runWhile(n *ast.While, frame *env.Environment) Completion {
	ctx := frame.Context()
	for {
		test, err := i.condition("while", n.Cond, frame)
		if err != nil {
			return fromError(err)
		}
		if !test {
			return normal(runtime.Null)
		}
		if stop, c := loopBody(i.runStatement(n.Body, frame)); stop {
			return c
		}
		if err := ctx.Poll("while"); err != nil {
			return faulted(err)
		}
	}
}

func (i *Interpreter) runDoWhile(n *ast.DoWhile, frame *env.Environment) Completion {
	ctx := frame.Context()
	for {
		if stop, c := loopBody(i.runStatement(n.Body, frame)); stop {
			return c
		}
		test, err := i.condition("do", n.Cond, frame)
		if err != nil {
			return fromError(err)
		}
		if !test {
			return normal(runtime.Null)
		}
		if err := ctx.Poll("do"); err != nil {
			return faulted(err)
		}
	}
}

// runFor runs the three-clause loop. Init declarations live in one loop
// frame shared by every iteration.
func (i *Interpreter) runFor(n *ast.For, frame *env.Environment) Completion {
	ctx := frame.Context()
	loop := frame.Extend(n.Size)
	for _, init := range n.Init {
		if c := i.runStatement(init, loop); c.Abrupt() {
			return c
		}
	}
	for {
		if n.Cond != nil {
			test, err := i.condition("for", n.Cond, loop)
			if err != nil {
				return fromError(err)
			}
			if !test {
				return normal(runtime.Null)
			}
		}
		if stop, c := loopBody(i.runStatement(n.Body, loop)); stop {
			return c
		}
		for _, step := range n.Step {
			if _, err := i.evaluateExpression(step, loop); err != nil {
				return fromError(err)
			}
		}
		if err := ctx.Poll("for"); err != nil {
			return faulted(err)
		}
	}
}

// runForIn walks a sequence. The loop frame and its counter cell are only
// created once the first element arrives; an empty sequence allocates
// neither and yields null.
func (i *Interpreter) runForIn(n *ast.ForIn, frame *env.Environment) Completion {
	ctx := frame.Context()
	seq, err := i.evaluateExpression(n.Seq, frame)
	if err != nil {
		return fromError(err)
	}
	next, done, err := elementsOf(seq)
	if err != nil {
		return faulted(err)
	}
	defer done()
	var (
		loop    *env.Environment
		counter *env.Variable
	)
	for {
		el, finished, err := next()
		if err != nil {
			return fromError(err)
		}
		if finished {
			return normal(runtime.Null)
		}
		if loop == nil {
			loop = frame.Extend(n.Size)
			if counter, err = loop.Declare(n.Index, n.Name, n.VarType, true); err != nil {
				return faulted(err)
			}
		}
		if _, err := counter.Initialize(env.InitLoopCounter, el); err != nil {
			return faulted(err)
		}
		if stop, c := loopBody(i.runStatement(n.Body, loop)); stop {
			return c
		}
		if err := ctx.Poll("for"); err != nil {
			return faulted(err)
		}
	}
}

// elementsOf adapts every iterable value to one step function. The returned
// cleanup closes iterators abandoned by break, return or a fault.
func elementsOf(seq runtime.Value) (func() (runtime.Value, bool, error), func(), error) {
	noop := func() {}
	switch s := seq.(type) {
	case nil, runtime.NullValue:
		return func() (runtime.Value, bool, error) { return nil, true, nil }, noop, nil
	case *runtime.IteratorValue:
		return s.Next, s.Close, nil
	case *runtime.MapValue:
		return sliceStep(s.Keys()), noop, nil
	case runtime.StringValue:
		return sliceStep(chars(s.Val)), noop, nil
	case *runtime.StringBufferValue:
		return sliceStep(chars(s.String())), noop, nil
	}
	if elems, ok := runtime.Sequence(seq); ok {
		return sliceStep(elems), noop, nil
	}
	return nil, nil, runtime.TypeMismatch("for", "sequence", runtime.Describe(seq))
}

func sliceStep(values []runtime.Value) func() (runtime.Value, bool, error) {
	idx := 0
	return func() (runtime.Value, bool, error) {
		if idx >= len(values) {
			return nil, true, nil
		}
		v := values[idx]
		idx++
		return v, false, nil
	}
}

func chars(s string) []runtime.Value {
	out := make([]runtime.Value, 0, len(s))
	for _, r := range s {
		out = append(out, runtime.CharValue{Val: r})
	}
	return out
}
