package interpreter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// globalNames fixes the order of the builtin slots in every root frame.
var globalNames = []string{
	"print", "len", "str", "typeOf", "range", "pattern", "now",
	"Object", "Exception", "Fault",
}

// GlobalNames lists the builtins a binder must reserve in the root scope.
func GlobalNames() []string {
	return append([]string(nil), globalNames...)
}

func (i *Interpreter) initBuiltins() {
	native := func(name string, arity int, impl runtime.NativeFunc) {
		i.builtins[name] = &runtime.NativeFunction{FnName: name, NArgs: arity, Impl: impl}
	}
	native("print", -1, builtinPrint)
	native("len", 1, builtinLen)
	native("str", 1, func(_ *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: runtime.ToString(arg(args, 0))}, nil
	})
	native("typeOf", 1, func(_ *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: types.Of(arg(args, 0)).String()}, nil
	})
	native("range", 2, builtinRange)
	native("pattern", 1, func(ctx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		s, ok := arg(args, 0).(runtime.StringValue)
		if !ok {
			return nil, runtime.TypeMismatch("pattern", "string", runtime.Describe(arg(args, 0)))
		}
		re, err := ctx.Pattern(s.Val)
		if err != nil {
			return nil, err
		}
		return runtime.PatternValue{Re: re}, nil
	})
	native("now", 0, func(*runtime.Context, []runtime.Value) (runtime.Value, error) {
		return runtime.DateValue{Val: time.Now()}, nil
	})
	i.builtins["Object"] = runtime.ObjectClass
	i.builtins["Exception"] = runtime.ExceptionClass
	i.builtins["Fault"] = runtime.FaultClass
}

func arg(args []runtime.Value, idx int) runtime.Value {
	if idx < len(args) && args[idx] != nil {
		return args[idx]
	}
	return runtime.Null
}

func builtinPrint(ctx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for idx, a := range args {
		parts[idx] = runtime.ToString(a)
	}
	if _, err := fmt.Fprintln(ctx.Stdout(), strings.Join(parts, " ")); err != nil {
		return nil, runtime.Internal("print", "write failed: %v", err)
	}
	return runtime.Void, nil
}

func builtinLen(_ *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	switch v := arg(args, 0).(type) {
	case runtime.StringValue:
		return runtime.Int(int32(utf8.RuneCountInString(v.Val))), nil
	case *runtime.StringBufferValue:
		return runtime.Int(int32(utf8.RuneCountInString(v.String()))), nil
	case *runtime.MapValue:
		return runtime.Int(int32(v.Len())), nil
	default:
		if elems, ok := runtime.Sequence(v); ok {
			return runtime.Int(int32(len(elems))), nil
		}
		return nil, runtime.TypeMismatch("len", "sized", runtime.Describe(v))
	}
}

// builtinRange yields start..end-1 lazily. With one argument the range
// starts at zero. The element rank is the promoted rank of the bounds.
func builtinRange(_ *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, runtime.NewFault(runtime.FaultArity, "range", "range takes 1 or 2 arguments, got 0")
	}
	bounds := []runtime.Value{runtime.Int(0), args[0]}
	if len(args) == 2 {
		bounds = args
	}
	rank := runtime.RankInt
	for _, b := range bounds {
		r, ok := runtime.RankOf(b)
		if !ok || !r.IsIntegral() || r == runtime.RankBigInt {
			return nil, runtime.TypeMismatch("range", "int or long", runtime.Describe(b))
		}
		rank = runtime.PromoteRank(rank, r)
	}
	cur, end := runtime.ToInt64(bounds[0]), runtime.ToInt64(bounds[1])
	return runtime.NewIterator(func() (runtime.Value, bool, error) {
		if cur >= end {
			return nil, true, nil
		}
		v := runtime.ToRank(runtime.Long(cur), rank)
		cur++
		return v, false, nil
	}, nil), nil
}
