package ops

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"quill/interpreter-go/pkg/runtime"
)

func add(a, b runtime.Value) (runtime.Value, error) {
	if isText(a) || isText(b) {
		return runtime.StringValue{Val: runtime.ToString(a) + runtime.ToString(b)}, nil
	}
	switch left := a.(type) {
	case *runtime.ListValue:
		return runtime.NewList(appendOperand(left.Elements(), b)...), nil
	case *runtime.ArrayValue:
		return runtime.NewArray(appendOperand(left.Elements(), b)...), nil
	case *runtime.SetValue:
		out := runtime.NewSet(left.Elements()...)
		if elems, ok := runtime.Sequence(b); ok {
			out.Add(elems...)
		} else {
			out.Add(b)
		}
		return out, nil
	case *runtime.MapValue:
		right, ok := b.(*runtime.MapValue)
		if !ok {
			return nil, runtime.TypeMismatch("+", "map", runtime.Describe(b))
		}
		merged := left.Copy()
		right.Each(func(k, v runtime.Value) { merged.Put(k, v) })
		return merged, nil
	case *runtime.IteratorValue:
		return concatIterators(left, b), nil
	}
	if runtime.IsNull(a) && (runtime.IsNumber(b) || runtime.IsNull(b)) {
		a = runtime.IntValue{Val: 0}
	}
	if runtime.IsNull(b) && runtime.IsNumber(a) {
		b = runtime.IntValue{Val: 0}
	}
	if runtime.IsNumber(a) && runtime.IsNumber(b) {
		return arithmetic(OpAdd, "+", a, b)
	}
	return nil, mismatch("+", "number", a, b)
}

func isText(v runtime.Value) bool {
	switch v.(type) {
	case runtime.StringValue, *runtime.StringBufferValue, runtime.CharValue:
		return true
	}
	return false
}

func appendOperand(elems []runtime.Value, b runtime.Value) []runtime.Value {
	if more, ok := runtime.Sequence(b); ok {
		return append(elems, more...)
	}
	return append(elems, b)
}

// concatIterators yields the rest of first, then the elements of second.
// Nothing is drawn from either side until the result is advanced.
func concatIterators(first *runtime.IteratorValue, second runtime.Value) *runtime.IteratorValue {
	var tail *runtime.IteratorValue
	onFirst := true
	return runtime.NewIterator(func() (runtime.Value, bool, error) {
		if onFirst {
			v, done, err := first.Next()
			if err != nil || !done {
				return v, done, err
			}
			onFirst = false
			switch s := second.(type) {
			case *runtime.IteratorValue:
				tail = s
			default:
				if elems, ok := runtime.Sequence(second); ok {
					tail = runtime.SliceIterator(elems)
				} else {
					tail = runtime.SliceIterator([]runtime.Value{second})
				}
			}
		}
		return tail.Next()
	}, func() {
		first.Close()
		if tail != nil {
			tail.Close()
		}
	})
}

func subtract(a, b runtime.Value) (runtime.Value, error) {
	switch left := a.(type) {
	case *runtime.ListValue:
		return runtime.NewList(removeOperand(left.Elements(), b)...), nil
	case *runtime.ArrayValue:
		return runtime.NewArray(removeOperand(left.Elements(), b)...), nil
	case *runtime.SetValue:
		out := runtime.NewSet(left.Elements()...)
		if elems, ok := runtime.Sequence(b); ok {
			out.Remove(elems...)
		} else {
			out.Remove(b)
		}
		return out, nil
	case *runtime.MapValue:
		out := left.Copy()
		if keys, ok := runtime.Sequence(b); ok {
			for _, k := range keys {
				out.Remove(k)
			}
		} else {
			out.Remove(b)
		}
		return out, nil
	}
	if runtime.IsNumber(a) && runtime.IsNumber(b) {
		return arithmetic(OpSub, "-", a, b)
	}
	return nil, mismatch("-", "number", a, b)
}

func removeOperand(elems []runtime.Value, b runtime.Value) []runtime.Value {
	drop, ok := runtime.Sequence(b)
	if !ok {
		drop = []runtime.Value{b}
	}
	out := elems[:0:0]
	for _, el := range elems {
		keep := true
		for _, d := range drop {
			if runtime.Equal(el, d) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, el)
		}
	}
	return out
}

func multiply(a, b runtime.Value) (runtime.Value, error) {
	switch left := a.(type) {
	case runtime.StringValue, *runtime.StringBufferValue:
		n, err := repeatCount(b)
		if err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: strings.Repeat(runtime.ToString(left), n)}, nil
	case *runtime.ListValue:
		n, err := repeatCount(b)
		if err != nil {
			return nil, err
		}
		elems := left.Elements()
		out := make([]runtime.Value, 0, len(elems)*n)
		for i := 0; i < n; i++ {
			out = append(out, elems...)
		}
		return runtime.NewList(out...), nil
	}
	if runtime.IsNumber(a) && runtime.IsNumber(b) {
		return arithmetic(OpMul, "*", a, b)
	}
	return nil, mismatch("*", "number", a, b)
}

func repeatCount(v runtime.Value) (int, error) {
	r, ok := runtime.RankOf(v)
	if !ok || !r.IsIntegral() {
		return 0, runtime.TypeMismatch("*", "integer", runtime.Describe(v))
	}
	n := runtime.ToInt64(v)
	if n < 0 {
		return 0, runtime.NewFault(runtime.FaultArithmetic, "*", "negative repeat count %d", n)
	}
	return int(n), nil
}

func divisionByZero(symbol string) *runtime.Fault {
	return runtime.NewFault(runtime.FaultArithmetic, symbol, "division by zero")
}

// arithmetic applies + - * / % to two numbers promoted to a common rank.
// Fixed-width ranks wrap on overflow.
func arithmetic(op Op, symbol string, a, b runtime.Value) (runtime.Value, error) {
	ra, _ := runtime.RankOf(a)
	rb, _ := runtime.RankOf(b)
	switch runtime.PromoteRank(ra, rb) {
	case runtime.RankInt:
		x, y := int32(runtime.ToInt64(a)), int32(runtime.ToInt64(b))
		if (op == OpDiv || op == OpMod) && y == 0 {
			return nil, divisionByZero(symbol)
		}
		switch op {
		case OpAdd:
			return runtime.IntValue{Val: x + y}, nil
		case OpSub:
			return runtime.IntValue{Val: x - y}, nil
		case OpMul:
			return runtime.IntValue{Val: x * y}, nil
		case OpDiv:
			return runtime.IntValue{Val: x / y}, nil
		default:
			return runtime.IntValue{Val: x % y}, nil
		}
	case runtime.RankLong:
		x, y := runtime.ToInt64(a), runtime.ToInt64(b)
		if (op == OpDiv || op == OpMod) && y == 0 {
			return nil, divisionByZero(symbol)
		}
		switch op {
		case OpAdd:
			return runtime.LongValue{Val: x + y}, nil
		case OpSub:
			return runtime.LongValue{Val: x - y}, nil
		case OpMul:
			return runtime.LongValue{Val: x * y}, nil
		case OpDiv:
			return runtime.LongValue{Val: x / y}, nil
		default:
			return runtime.LongValue{Val: x % y}, nil
		}
	case runtime.RankBigInt:
		x, y := runtime.ToBig(a), runtime.ToBig(b)
		if (op == OpDiv || op == OpMod) && y.Sign() == 0 {
			return nil, divisionByZero(symbol)
		}
		out := new(big.Int)
		switch op {
		case OpAdd:
			out.Add(x, y)
		case OpSub:
			out.Sub(x, y)
		case OpMul:
			out.Mul(x, y)
		case OpDiv:
			out.Quo(x, y)
		default:
			out.Rem(x, y)
		}
		return runtime.BigIntValue{Val: out}, nil
	case runtime.RankFloat:
		x, y := float32(runtime.ToFloat64(a)), float32(runtime.ToFloat64(b))
		switch op {
		case OpAdd:
			return runtime.FloatValue{Val: x + y}, nil
		case OpSub:
			return runtime.FloatValue{Val: x - y}, nil
		case OpMul:
			return runtime.FloatValue{Val: x * y}, nil
		case OpDiv:
			return runtime.FloatValue{Val: x / y}, nil
		default:
			return runtime.FloatValue{Val: float32(math.Mod(float64(x), float64(y)))}, nil
		}
	case runtime.RankDouble:
		x, y := runtime.ToFloat64(a), runtime.ToFloat64(b)
		switch op {
		case OpAdd:
			return runtime.DoubleValue{Val: x + y}, nil
		case OpSub:
			return runtime.DoubleValue{Val: x - y}, nil
		case OpMul:
			return runtime.DoubleValue{Val: x * y}, nil
		case OpDiv:
			return runtime.DoubleValue{Val: x / y}, nil
		default:
			return runtime.DoubleValue{Val: math.Mod(x, y)}, nil
		}
	case runtime.RankBigDec:
		x, y := runtime.ToDecimal(a), runtime.ToDecimal(b)
		if (op == OpDiv || op == OpMod) && y.IsZero() {
			return nil, divisionByZero(symbol)
		}
		var out decimal.Decimal
		switch op {
		case OpAdd:
			out = x.Add(y)
		case OpSub:
			out = x.Sub(y)
		case OpMul:
			out = x.Mul(y)
		case OpDiv:
			out = x.Div(y)
		default:
			out = x.Mod(y)
		}
		return runtime.DecimalValue{Val: out}, nil
	}
	return nil, mismatch(symbol, "number", a, b)
}

func integral(v runtime.Value) (runtime.NumRank, bool) {
	r, ok := runtime.RankOf(v)
	return r, ok && r.IsIntegral()
}

func bitwise(op Op, symbol string, a, b runtime.Value) (runtime.Value, error) {
	if x, ok := a.(runtime.BoolValue); ok {
		y, ok := b.(runtime.BoolValue)
		if !ok {
			return nil, runtime.TypeMismatch(symbol, "boolean", runtime.Describe(b))
		}
		switch op {
		case OpBitAnd:
			return runtime.Bool(x.Val && y.Val), nil
		case OpBitOr:
			return runtime.Bool(x.Val || y.Val), nil
		default:
			return runtime.Bool(x.Val != y.Val), nil
		}
	}
	ra, okA := integral(a)
	rb, okB := integral(b)
	if !okA {
		return nil, runtime.TypeMismatch(symbol, "integer or boolean", runtime.Describe(a))
	}
	if !okB {
		return nil, runtime.TypeMismatch(symbol, "integer", runtime.Describe(b))
	}
	switch runtime.PromoteRank(ra, rb) {
	case runtime.RankInt, runtime.RankLong:
		x, y := runtime.ToInt64(a), runtime.ToInt64(b)
		var out int64
		switch op {
		case OpBitAnd:
			out = x & y
		case OpBitOr:
			out = x | y
		default:
			out = x ^ y
		}
		if runtime.PromoteRank(ra, rb) == runtime.RankInt {
			return runtime.IntValue{Val: int32(out)}, nil
		}
		return runtime.LongValue{Val: out}, nil
	default:
		x, y := runtime.ToBig(a), runtime.ToBig(b)
		out := new(big.Int)
		switch op {
		case OpBitAnd:
			out.And(x, y)
		case OpBitOr:
			out.Or(x, y)
		default:
			out.Xor(x, y)
		}
		return runtime.BigIntValue{Val: out}, nil
	}
}

// shift masks the count to the operand width for fixed-width ranks.
func shift(op Op, symbol string, a, b runtime.Value) (runtime.Value, error) {
	ra, ok := integral(a)
	if !ok {
		return nil, runtime.TypeMismatch(symbol, "integer", runtime.Describe(a))
	}
	if _, ok := integral(b); !ok {
		return nil, runtime.TypeMismatch(symbol, "integer", runtime.Describe(b))
	}
	n := runtime.ToInt64(b)
	switch ra {
	case runtime.RankInt:
		x := int32(runtime.ToInt64(a))
		s := uint(n & 31)
		switch op {
		case OpShl:
			return runtime.IntValue{Val: x << s}, nil
		case OpShr:
			return runtime.IntValue{Val: x >> s}, nil
		default:
			return runtime.IntValue{Val: int32(uint32(x) >> s)}, nil
		}
	case runtime.RankLong:
		x := runtime.ToInt64(a)
		s := uint(n & 63)
		switch op {
		case OpShl:
			return runtime.LongValue{Val: x << s}, nil
		case OpShr:
			return runtime.LongValue{Val: x >> s}, nil
		default:
			return runtime.LongValue{Val: int64(uint64(x) >> s)}, nil
		}
	default:
		if n < 0 {
			return nil, runtime.NewFault(runtime.FaultArithmetic, symbol, "negative shift count %d", n)
		}
		x := runtime.ToBig(a)
		if op == OpShl {
			return runtime.BigIntValue{Val: new(big.Int).Lsh(x, uint(n))}, nil
		}
		return runtime.BigIntValue{Val: new(big.Int).Rsh(x, uint(n))}, nil
	}
}

// order compares two values that support ordering.
func order(symbol string, a, b runtime.Value) (int, error) {
	if runtime.IsNumber(a) && runtime.IsNumber(b) {
		return runtime.CompareNumbers(a, b), nil
	}
	switch x := a.(type) {
	case runtime.StringValue, *runtime.StringBufferValue:
		switch b.(type) {
		case runtime.StringValue, *runtime.StringBufferValue:
			return strings.Compare(runtime.ToString(x), runtime.ToString(b)), nil
		}
	case runtime.CharValue:
		if y, ok := b.(runtime.CharValue); ok {
			switch {
			case x.Val < y.Val:
				return -1, nil
			case x.Val > y.Val:
				return 1, nil
			}
			return 0, nil
		}
	case runtime.DateValue:
		if y, ok := b.(runtime.DateValue); ok {
			return x.Val.Compare(y.Val), nil
		}
	}
	return 0, runtime.TypeMismatch(symbol, "ordered", runtime.Describe(a)+" and "+runtime.Describe(b))
}

func compare(op Op, symbol string, a, b runtime.Value) (runtime.Value, error) {
	if isNaN(a) || isNaN(b) {
		if runtime.IsNumber(a) && runtime.IsNumber(b) {
			return runtime.False, nil
		}
	}
	c, err := order(symbol, a, b)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpLt:
		return runtime.Bool(c < 0), nil
	case OpLe:
		return runtime.Bool(c <= 0), nil
	case OpGt:
		return runtime.Bool(c > 0), nil
	default:
		return runtime.Bool(c >= 0), nil
	}
}

func isNaN(v runtime.Value) bool {
	switch n := v.(type) {
	case runtime.DoubleValue:
		return math.IsNaN(n.Val)
	case runtime.FloatValue:
		return math.IsNaN(float64(n.Val))
	}
	return false
}

// match reports whether the pattern finds a match anywhere in the text.
// Prefer Operator.Call, which compiles string patterns through the context
// cache.
func match(a, b runtime.Value) (runtime.Value, error) {
	if !isText(a) {
		return nil, runtime.TypeMismatch("=~", "charsequence", runtime.Describe(a))
	}
	switch p := b.(type) {
	case runtime.PatternValue:
		return runtime.Bool(p.Re.MatchString(runtime.ToString(a))), nil
	case runtime.StringValue:
		re, err := runtime.CompilePattern(p.Val)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(re.MatchString(runtime.ToString(a))), nil
	}
	return nil, runtime.TypeMismatch("=~", "pattern", runtime.Describe(b))
}

func negate(a runtime.Value) (runtime.Value, error) {
	switch n := a.(type) {
	case runtime.IntValue:
		return runtime.IntValue{Val: -n.Val}, nil
	case runtime.LongValue:
		return runtime.LongValue{Val: -n.Val}, nil
	case runtime.FloatValue:
		return runtime.FloatValue{Val: -n.Val}, nil
	case runtime.DoubleValue:
		return runtime.DoubleValue{Val: -n.Val}, nil
	case runtime.BigIntValue:
		return runtime.BigIntValue{Val: new(big.Int).Neg(n.Val)}, nil
	case runtime.DecimalValue:
		return runtime.DecimalValue{Val: n.Val.Neg()}, nil
	}
	return nil, runtime.TypeMismatch("-", "number", runtime.Describe(a))
}

func complement(a runtime.Value) (runtime.Value, error) {
	switch n := a.(type) {
	case runtime.IntValue:
		return runtime.IntValue{Val: ^n.Val}, nil
	case runtime.LongValue:
		return runtime.LongValue{Val: ^n.Val}, nil
	case runtime.BigIntValue:
		return runtime.BigIntValue{Val: new(big.Int).Not(n.Val)}, nil
	}
	return nil, runtime.TypeMismatch("~", "integer", runtime.Describe(a))
}
