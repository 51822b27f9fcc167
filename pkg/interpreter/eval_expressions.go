package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/ops"
	"quill/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, frame *env.Environment) (runtime.Value, error) {
	if node == nil {
		return runtime.Null, nil
	}
	ctx := frame.Context()
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Var:
		cell, err := lookupVar(n, frame)
		if err != nil {
			return nil, err
		}
		return cell.Read()
	case *ast.Captured:
		return n.Cell.Read()
	case *ast.Binary:
		left, err := i.evaluateExpression(n.Left, frame)
		if err != nil {
			return nil, err
		}
		right, err := i.evaluateExpression(n.Right, frame)
		if err != nil {
			return nil, err
		}
		return n.Op.Call(ctx, []runtime.Value{left, right})
	case *ast.Unary:
		operand, err := i.evaluateExpression(n.Operand, frame)
		if err != nil {
			return nil, err
		}
		return n.Op.Call(ctx, []runtime.Value{operand})
	case *ast.Logical:
		return i.evaluateLogical(n, frame)
	case *ast.Conditional:
		test, err := i.condition("?:", n.Test, frame)
		if err != nil {
			return nil, err
		}
		if test {
			return i.evaluateExpression(n.Then, frame)
		}
		return i.evaluateExpression(n.Else, frame)
	case *ast.Assign:
		return i.evaluateAssign(n, frame)
	case *ast.IncDec:
		return i.evaluateIncDec(n, frame)
	case *ast.Call:
		return i.evaluateCall(n, frame)
	case *ast.Index, *ast.Field:
		lv := i.lvalue(n.(ast.Assignable))
		r, err := lv.Resolve(frame)
		if err != nil {
			return nil, err
		}
		return lv.Get(r)
	case *ast.Collection:
		elems, err := i.evaluateList(n.Elements, frame)
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case ast.CollectionSet:
			return runtime.NewSet(elems...), nil
		case ast.CollectionArray:
			return runtime.NewArray(elems...), nil
		default:
			return runtime.NewList(elems...), nil
		}
	case *ast.MapLiteral:
		m := runtime.NewMap()
		for _, entry := range n.Entries {
			key, err := i.evaluateExpression(entry.Key, frame)
			if err != nil {
				return nil, err
			}
			value, err := i.evaluateExpression(entry.Value, frame)
			if err != nil {
				return nil, err
			}
			m.Put(key, value)
		}
		return m, nil
	case *ast.Function:
		return i.makeClosure(n, frame)
	case *ast.New:
		return i.evaluateNew(n, frame)
	case *ast.Cast:
		operand, err := i.evaluateExpression(n.Operand, frame)
		if err != nil {
			return nil, err
		}
		return n.Target.Convert("cast", operand)
	case *ast.InstanceOf:
		operand, err := i.evaluateExpression(n.Operand, frame)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(!runtime.IsNull(operand) && n.Target.ContainsValue(operand)), nil
	}
	return nil, runtime.Internal(string(node.NodeType()), "cannot evaluate %T", node)
}

func lookupVar(n *ast.Var, frame *env.Environment) (*env.Variable, error) {
	if !n.Bound {
		return nil, runtime.NewFault(runtime.FaultUndefined, n.Name, "unbound reference to '%s'", n.Name)
	}
	return frame.Lookup(n.Name, n.Addr)
}

func (i *Interpreter) evaluateList(exprs []ast.Expression, frame *env.Environment) ([]runtime.Value, error) {
	out := make([]runtime.Value, len(exprs))
	for idx, e := range exprs {
		v, err := i.evaluateExpression(e, frame)
		if err != nil {
			return nil, err
		}
		out[idx] = v
	}
	return out, nil
}

// condition evaluates a test that must yield a boolean.
func (i *Interpreter) condition(subject string, e ast.Expression, frame *env.Environment) (bool, error) {
	v, err := i.evaluateExpression(e, frame)
	if err != nil {
		return false, err
	}
	b, ok := runtime.Truthy(v)
	if !ok {
		return false, runtime.TypeMismatch(subject, "boolean", runtime.Describe(v))
	}
	return b, nil
}

func (i *Interpreter) evaluateLogical(n *ast.Logical, frame *env.Environment) (runtime.Value, error) {
	subject := string(n.Op)
	left, err := i.condition(subject, n.Left, frame)
	if err != nil {
		return nil, err
	}
	if n.Op == ast.LogicalAnd && !left {
		return runtime.False, nil
	}
	if n.Op == ast.LogicalOr && left {
		return runtime.True, nil
	}
	right, err := i.condition(subject, n.Right, frame)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(right), nil
}

// evaluateAssign resolves the target once, then reads it (for compound
// assignment) and writes it.
func (i *Interpreter) evaluateAssign(n *ast.Assign, frame *env.Environment) (runtime.Value, error) {
	lv := i.lvalue(n.Target)
	r, err := lv.Resolve(frame)
	if err != nil {
		return nil, err
	}
	var current runtime.Value
	if n.Op != nil {
		if current, err = lv.Get(r); err != nil {
			return nil, err
		}
	}
	value, err := i.evaluateExpression(n.Value, frame)
	if err != nil {
		return nil, err
	}
	if n.Op != nil {
		if value, err = n.Op.Call(frame.Context(), []runtime.Value{current, value}); err != nil {
			return nil, err
		}
	}
	return lv.Set(r, value)
}

func (i *Interpreter) evaluateIncDec(n *ast.IncDec, frame *env.Environment) (runtime.Value, error) {
	lv := i.lvalue(n.Target)
	r, err := lv.Resolve(frame)
	if err != nil {
		return nil, err
	}
	current, err := lv.Get(r)
	if err != nil {
		return nil, err
	}
	if !runtime.IsNumber(current) {
		symbol := "++"
		if n.Delta < 0 {
			symbol = "--"
		}
		return nil, runtime.TypeMismatch(symbol, "number", runtime.Describe(current))
	}
	updated, err := ops.Get(ops.OpAdd).Invoke(current, runtime.Int(int32(n.Delta)))
	if err != nil {
		return nil, err
	}
	// A narrowing delta must not widen the variable's representation.
	if rank, ok := runtime.RankOf(current); ok {
		updated = runtime.ToRank(updated, rank)
	}
	stored, err := lv.Set(r, updated)
	if err != nil {
		return nil, err
	}
	if n.Prefix {
		return stored, nil
	}
	return current, nil
}

func (i *Interpreter) evaluateCall(n *ast.Call, frame *env.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(n.Callee, frame)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateList(n.Args, frame)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(runtime.Callable)
	if !ok {
		return nil, &runtime.Fault{
			Code:     runtime.FaultNotCallable,
			Subject:  calleeName(n.Callee),
			Message:  "value is not callable",
			Expected: "function",
			Actual:   runtime.Describe(callee),
		}
	}
	return fn.Call(frame.Context(), args)
}

func calleeName(e ast.Expression) string {
	switch c := e.(type) {
	case *ast.Var:
		return c.Name
	case *ast.Captured:
		return c.Name
	case *ast.Field:
		return c.Name
	}
	return "call"
}

// evaluateNew instantiates a class, initialising fields positionally in
// declaration order, inherited fields first.
func (i *Interpreter) evaluateNew(n *ast.New, frame *env.Environment) (runtime.Value, error) {
	target, err := i.evaluateExpression(n.Class, frame)
	if err != nil {
		return nil, err
	}
	class, ok := target.(*runtime.ClassValue)
	if !ok {
		return nil, runtime.TypeMismatch("new", "class", runtime.Describe(target))
	}
	fields := class.AllFields()
	if len(n.Args) > len(fields) {
		return nil, runtime.NewFault(runtime.FaultArity, class.ClassName, "%s has %d field(s), got %d argument(s)", class.ClassName, len(fields), len(n.Args))
	}
	args, err := i.evaluateList(n.Args, frame)
	if err != nil {
		return nil, err
	}
	inst := runtime.NewInstance(class)
	for idx, v := range args {
		inst.SetField(fields[idx], v)
	}
	return inst, nil
}
