package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

// lvalue adapts an assignable node to the resolve/get/set protocol.
func (i *Interpreter) lvalue(target ast.Assignable) env.LValue {
	switch t := target.(type) {
	case *ast.Var:
		return varLValue{node: t}
	case *ast.Captured:
		return env.Cell{Var: t.Cell}
	case *ast.Index:
		return indexLValue{interp: i, node: t}
	case *ast.Field:
		return fieldLValue{interp: i, node: t}
	}
	return invalidLValue{node: target}
}

// varLValue checks that the binder resolved the reference before delegating
// to the frame slot.
type varLValue struct {
	node *ast.Var
}

func (v varLValue) Resolve(frame *env.Environment) (env.Resolvent, error) {
	if !v.node.Bound {
		return nil, runtime.NewFault(runtime.FaultUndefined, v.node.Name, "unbound reference to '%s'", v.node.Name)
	}
	return env.Slot{Name: v.node.Name, Addr: v.node.Addr}.Resolve(frame)
}

func (v varLValue) Get(r env.Resolvent) (runtime.Value, error) {
	return env.Slot{Name: v.node.Name}.Get(r)
}

func (v varLValue) Set(r env.Resolvent, x runtime.Value) (runtime.Value, error) {
	return env.Slot{Name: v.node.Name}.Set(r, x)
}

// elementRef is the resolvent of an index access: the container and the key,
// both evaluated exactly once.
type elementRef struct {
	target runtime.Value
	key    runtime.Value
}

type indexLValue struct {
	interp *Interpreter
	node   *ast.Index
}

func (l indexLValue) Resolve(frame *env.Environment) (env.Resolvent, error) {
	target, err := l.interp.evaluateExpression(l.node.Target, frame)
	if err != nil {
		return nil, err
	}
	key, err := l.interp.evaluateExpression(l.node.Key, frame)
	if err != nil {
		return nil, err
	}
	return elementRef{target: target, key: key}, nil
}

func (l indexLValue) Get(r env.Resolvent) (runtime.Value, error) {
	ref, ok := r.(elementRef)
	if !ok {
		return nil, runtime.Internal("[]", "unexpected resolvent %T", r)
	}
	switch c := ref.target.(type) {
	case *runtime.MapValue:
		if v, ok := c.Get(ref.key); ok {
			return v, nil
		}
		return runtime.Null, nil
	case *runtime.ListValue:
		return elementAt(c.At, c.Len(), ref.key)
	case *runtime.ArrayValue:
		return elementAt(c.At, c.Len(), ref.key)
	case runtime.StringValue:
		return charAt(c.Val, ref.key)
	case *runtime.StringBufferValue:
		return charAt(c.String(), ref.key)
	}
	return nil, runtime.TypeMismatch("[]", "indexable", runtime.Describe(ref.target))
}

func (l indexLValue) Set(r env.Resolvent, x runtime.Value) (runtime.Value, error) {
	ref, ok := r.(elementRef)
	if !ok {
		return nil, runtime.Internal("[]", "unexpected resolvent %T", r)
	}
	switch c := ref.target.(type) {
	case *runtime.MapValue:
		c.Put(ref.key, x)
		return x, nil
	case *runtime.ListValue:
		idx, err := position(ref.key)
		if err != nil {
			return nil, err
		}
		if !c.SetAt(idx, x) {
			return nil, outOfRange(idx, c.Len())
		}
		return x, nil
	case *runtime.ArrayValue:
		idx, err := position(ref.key)
		if err != nil {
			return nil, err
		}
		if !c.SetAt(idx, x) {
			return nil, outOfRange(idx, c.Len())
		}
		return x, nil
	}
	return nil, runtime.TypeMismatch("[]=", "mutable list, array or map", runtime.Describe(ref.target))
}

func position(key runtime.Value) (int, error) {
	rank, ok := runtime.RankOf(key)
	if !ok || !rank.IsIntegral() {
		return 0, runtime.TypeMismatch("[]", "int", runtime.Describe(key))
	}
	return int(runtime.ToInt64(key)), nil
}

func elementAt(at func(int) (runtime.Value, bool), length int, key runtime.Value) (runtime.Value, error) {
	idx, err := position(key)
	if err != nil {
		return nil, err
	}
	v, ok := at(idx)
	if !ok {
		return nil, outOfRange(idx, length)
	}
	return v, nil
}

func outOfRange(idx, length int) error {
	return runtime.NewFault(runtime.FaultIndex, "[]", "index %d out of range for length %d", idx, length)
}

func charAt(s string, key runtime.Value) (runtime.Value, error) {
	idx, err := position(key)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if idx < 0 || idx >= len(runes) {
		return nil, outOfRange(idx, len(runes))
	}
	return runtime.CharValue{Val: runes[idx]}, nil
}

// fieldLValue reads instance fields and string keys of maps.
type fieldLValue struct {
	interp *Interpreter
	node   *ast.Field
}

func (l fieldLValue) Resolve(frame *env.Environment) (env.Resolvent, error) {
	return l.interp.evaluateExpression(l.node.Target, frame)
}

func (l fieldLValue) Get(r env.Resolvent) (runtime.Value, error) {
	switch target := r.(type) {
	case *runtime.InstanceValue:
		if v, ok := target.Field(l.node.Name); ok {
			return v, nil
		}
		return nil, l.noSuchField(target)
	case *runtime.MapValue:
		if v, ok := target.Get(runtime.StringValue{Val: l.node.Name}); ok {
			return v, nil
		}
		return runtime.Null, nil
	case *runtime.ClassValue:
		if l.node.Name == "name" {
			return runtime.StringValue{Val: target.ClassName}, nil
		}
	}
	return nil, l.mismatch(r)
}

func (l fieldLValue) Set(r env.Resolvent, x runtime.Value) (runtime.Value, error) {
	switch target := r.(type) {
	case *runtime.InstanceValue:
		if !target.SetField(l.node.Name, x) {
			return nil, l.noSuchField(target)
		}
		return x, nil
	case *runtime.MapValue:
		target.Put(runtime.StringValue{Val: l.node.Name}, x)
		return x, nil
	}
	return nil, l.mismatch(r)
}

func (l fieldLValue) noSuchField(inst *runtime.InstanceValue) error {
	return runtime.NewFault(runtime.FaultNoSuchField, l.node.Name, "%s has no field '%s'", inst.Class.ClassName, l.node.Name)
}

func (l fieldLValue) mismatch(r env.Resolvent) error {
	v, _ := r.(runtime.Value)
	return runtime.TypeMismatch("."+l.node.Name, "instance or map", runtime.Describe(v))
}

type invalidLValue struct {
	node ast.Assignable
}

func (l invalidLValue) Resolve(*env.Environment) (env.Resolvent, error) {
	return nil, runtime.Internal(string(l.node.NodeType()), "%T is not assignable", l.node)
}

func (l invalidLValue) Get(env.Resolvent) (runtime.Value, error) { return nil, l.err() }

func (l invalidLValue) Set(env.Resolvent, runtime.Value) (runtime.Value, error) { return nil, l.err() }

func (l invalidLValue) err() error {
	return runtime.Internal(string(l.node.NodeType()), "%T is not assignable", l.node)
}
