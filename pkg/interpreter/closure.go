package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Closure is an interpreted function value. Its body was linked when the
// closure was created, so every outer variable it uses is a captured cell
// and the call frame needs no parent.
type Closure struct {
	interp *Interpreter
	fn     *ast.Function
}

func (*Closure) Kind() runtime.Kind { return runtime.KindFunction }

func (c *Closure) Name() string {
	if c.fn.Name == "" {
		return "<anonymous>"
	}
	return c.fn.Name
}

func (c *Closure) Arity() int { return len(c.fn.Params) }

// Function returns the linked function tree.
func (c *Closure) Function() *ast.Function { return c.fn }

// Call binds arguments to parameters, runs the body and converts the result
// to the declared return type. Missing arguments take their default, which
// is evaluated in the call frame and may use earlier parameters, or null.
func (c *Closure) Call(ctx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	if ctx == nil {
		ctx = runtime.Background()
	}
	name := c.Name()
	if len(args) > len(c.fn.Params) {
		return nil, runtime.NewFault(runtime.FaultArity, name, "%s takes at most %d argument(s), got %d", name, len(c.fn.Params), len(args))
	}
	if err := ctx.Enter(name); err != nil {
		return nil, err
	}
	defer ctx.Leave()
	if c.fn.Synchronized {
		release, err := ctx.Lock(c)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	frame := env.NewEnvironment(ctx, c.fn.FrameSize)
	for idx, p := range c.fn.Params {
		var value runtime.Value = runtime.Null
		switch {
		case idx < len(args):
			value = args[idx]
		case p.Default != nil:
			v, err := c.interp.evaluateExpression(p.Default, frame)
			if err != nil {
				return nil, err
			}
			value = v
		}
		cell, err := frame.Declare(p.Index, p.Name, p.Type, false)
		if err != nil {
			return nil, err
		}
		if _, err := cell.Initialize(env.InitDeclaration, value); err != nil {
			return nil, err
		}
	}

	out := c.interp.runBlock(c.fn.Body, frame)
	var result runtime.Value
	switch out.Kind {
	case Normal:
		result = runtime.Void
	case Return:
		result = valueOrVoid(out.Value)
	case Break, Continue:
		return nil, controlEscape(out.Kind, name)
	default:
		return nil, out.Error()
	}
	if c.fn.Return == nil || c.fn.Return == types.Any {
		return result, nil
	}
	return c.fn.Return.Convert(name, result)
}
