// Package ops holds the closed set of Quill operators. Each operator is an
// immutable process-wide singleton with static type inference and dynamic
// dispatch over runtime values; per-invocation state such as the pattern
// cache lives in runtime.Context and reaches an operator only through Call.
package ops

import (
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Op identifies an operator.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpUShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpMatch
	OpNeg
	OpPlus
	OpNot
	OpBitNot
	opCount
)

// Class is the coarse inference family of an operator.
type Class uint8

const (
	ClassMixed Class = iota + 1
	ClassNumeric
	ClassBoolean
	ClassNumericOrBoolean
	ClassBitOp
	ClassCompare
	ClassShift
)

func (c Class) String() string {
	switch c {
	case ClassMixed:
		return "mixed"
	case ClassNumeric:
		return "numeric"
	case ClassBoolean:
		return "boolean"
	case ClassNumericOrBoolean:
		return "numeric-or-boolean"
	case ClassBitOp:
		return "bit-op"
	case ClassCompare:
		return "compare"
	case ClassShift:
		return "shift"
	}
	return "unknown"
}

// Operator is a pure function value. It satisfies runtime.Callable so that
// operators can be passed around like any other function.
type Operator struct {
	op     Op
	name   string
	symbol string
	arity  int
	class  Class
}

var table = [opCount]*Operator{
	OpAdd:    {OpAdd, "add", "+", 2, ClassMixed},
	OpSub:    {OpSub, "subtract", "-", 2, ClassMixed},
	OpMul:    {OpMul, "multiply", "*", 2, ClassMixed},
	OpDiv:    {OpDiv, "divide", "/", 2, ClassNumeric},
	OpMod:    {OpMod, "modulo", "%", 2, ClassNumeric},
	OpBitAnd: {OpBitAnd, "and", "&", 2, ClassNumericOrBoolean},
	OpBitOr:  {OpBitOr, "or", "|", 2, ClassNumericOrBoolean},
	OpBitXor: {OpBitXor, "xor", "^", 2, ClassNumericOrBoolean},
	OpShl:    {OpShl, "shiftLeft", "<<", 2, ClassShift},
	OpShr:    {OpShr, "shiftRight", ">>", 2, ClassShift},
	OpUShr:   {OpUShr, "shiftRightUnsigned", ">>>", 2, ClassShift},
	OpEq:     {OpEq, "equals", "==", 2, ClassCompare},
	OpNe:     {OpNe, "notEquals", "!=", 2, ClassCompare},
	OpLt:     {OpLt, "lessThan", "<", 2, ClassCompare},
	OpLe:     {OpLe, "lessOrEqual", "<=", 2, ClassCompare},
	OpGt:     {OpGt, "greaterThan", ">", 2, ClassCompare},
	OpGe:     {OpGe, "greaterOrEqual", ">=", 2, ClassCompare},
	OpMatch:  {OpMatch, "matches", "=~", 2, ClassCompare},
	OpNeg:    {OpNeg, "negate", "-", 1, ClassNumeric},
	OpPlus:   {OpPlus, "plus", "+", 1, ClassNumeric},
	OpNot:    {OpNot, "not", "!", 1, ClassBoolean},
	OpBitNot: {OpBitNot, "complement", "~", 1, ClassBitOp},
}

// Get returns the singleton for op.
func Get(op Op) *Operator {
	if op == 0 || op >= opCount {
		return nil
	}
	return table[op]
}

// Lookup finds an operator by symbol and arity.
func Lookup(symbol string, arity int) (*Operator, bool) {
	for _, o := range table {
		if o != nil && o.symbol == symbol && o.arity == arity {
			return o, true
		}
	}
	return nil, false
}

// All lists every operator in declaration order.
func All() []*Operator {
	out := make([]*Operator, 0, len(table))
	for _, o := range table {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (o *Operator) Op() Op           { return o.op }
func (o *Operator) Symbol() string   { return o.symbol }
func (o *Operator) Class() Class     { return o.class }
func (o *Operator) String() string   { return o.symbol }
func (*Operator) Kind() runtime.Kind { return runtime.KindFunction }
func (o *Operator) Name() string     { return o.name }
func (o *Operator) Arity() int       { return o.arity }

// ParamType is the broadest operand type the operator accepts.
func (o *Operator) ParamType() *types.Type {
	switch o.class {
	case ClassNumeric, ClassShift, ClassBitOp:
		return types.Number
	case ClassBoolean:
		return types.Boolean
	default:
		return types.Any
	}
}

// ReturnType is the result type when nothing is known about the operands.
func (o *Operator) ReturnType() *types.Type {
	switch o.class {
	case ClassCompare, ClassBoolean:
		return types.Boolean
	case ClassNumeric, ClassShift, ClassBitOp:
		return types.Number
	default:
		return types.Any
	}
}

// Call invokes the operator from interpreted code. String patterns given to
// =~ are compiled through the context cache.
func (o *Operator) Call(ctx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
	if len(args) != o.arity {
		return nil, runtime.NewFault(runtime.FaultArity, o.symbol, "expects %d operands, got %d", o.arity, len(args))
	}
	if o.op == OpMatch && ctx != nil {
		if s, ok := args[1].(runtime.StringValue); ok {
			re, err := ctx.Pattern(s.Val)
			if err != nil {
				return nil, err
			}
			args = []runtime.Value{args[0], runtime.PatternValue{Re: re}}
		}
	}
	return o.Invoke(args...)
}

// Invoke applies the operator. Host panics are reported as internal faults.
func (o *Operator) Invoke(args ...runtime.Value) (result runtime.Value, err error) {
	if len(args) != o.arity {
		return nil, runtime.NewFault(runtime.FaultArity, o.symbol, "expects %d operands, got %d", o.arity, len(args))
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, runtime.Recovered(o.symbol, r)
		}
	}()
	if o.arity == 1 {
		return o.unary(orNull(args[0]))
	}
	return o.binary(orNull(args[0]), orNull(args[1]))
}

func orNull(v runtime.Value) runtime.Value {
	if v == nil {
		return runtime.Null
	}
	return v
}

func (o *Operator) binary(a, b runtime.Value) (runtime.Value, error) {
	switch o.op {
	case OpAdd:
		return add(a, b)
	case OpSub:
		return subtract(a, b)
	case OpMul:
		return multiply(a, b)
	case OpDiv, OpMod:
		if !runtime.IsNumber(a) || !runtime.IsNumber(b) {
			return nil, mismatch(o.symbol, "number", a, b)
		}
		return arithmetic(o.op, o.symbol, a, b)
	case OpBitAnd, OpBitOr, OpBitXor:
		return bitwise(o.op, o.symbol, a, b)
	case OpShl, OpShr, OpUShr:
		return shift(o.op, o.symbol, a, b)
	case OpEq:
		return runtime.Bool(runtime.Equal(a, b)), nil
	case OpNe:
		return runtime.Bool(!runtime.Equal(a, b)), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compare(o.op, o.symbol, a, b)
	case OpMatch:
		return match(a, b)
	}
	return nil, runtime.Internal(o.symbol, "not a binary operator")
}

func (o *Operator) unary(a runtime.Value) (runtime.Value, error) {
	switch o.op {
	case OpNeg:
		return negate(a)
	case OpPlus:
		if !runtime.IsNumber(a) {
			return nil, runtime.TypeMismatch(o.symbol, "number", runtime.Describe(a))
		}
		return a, nil
	case OpNot:
		b, ok := a.(runtime.BoolValue)
		if !ok {
			return nil, runtime.TypeMismatch(o.symbol, "boolean", runtime.Describe(a))
		}
		return runtime.Bool(!b.Val), nil
	case OpBitNot:
		return complement(a)
	}
	return nil, runtime.Internal(o.symbol, "not a unary operator")
}

// mismatch names the first operand that is not of the expected kind.
func mismatch(symbol, expected string, a, b runtime.Value) *runtime.Fault {
	actual := runtime.Describe(a)
	if expected == "number" && runtime.IsNumber(a) {
		actual = runtime.Describe(b)
	}
	return runtime.TypeMismatch(symbol, expected, actual)
}
