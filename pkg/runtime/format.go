package runtime

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ToString renders a value the way string concatenation sees it.
func ToString(v Value) string {
	var b strings.Builder
	writeValue(&b, v, 0)
	return b.String()
}

const maxRenderDepth = 16

func writeValue(b *strings.Builder, v Value, depth int) {
	if depth > maxRenderDepth {
		b.WriteString("...")
		return
	}
	switch val := v.(type) {
	case nil, NullValue:
		b.WriteString("null")
	case VoidValue:
		b.WriteString("void")
	case BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case CharValue:
		b.WriteRune(val.Val)
	case StringValue:
		b.WriteString(val.Val)
	case *StringBufferValue:
		b.WriteString(val.String())
	case DateValue:
		b.WriteString(val.Val.Format(time.RFC3339))
	case PatternValue:
		b.WriteString(val.Re.String())
	case IntValue:
		b.WriteString(strconv.FormatInt(int64(val.Val), 10))
	case LongValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case BigIntValue:
		b.WriteString(val.Val.String())
	case FloatValue:
		b.WriteString(formatFloat(float64(val.Val), 32))
	case DoubleValue:
		b.WriteString(formatFloat(val.Val, 64))
	case DecimalValue:
		b.WriteString(val.Val.String())
	case *ListValue:
		writeSeq(b, val.Elements(), depth)
	case *ArrayValue:
		writeSeq(b, val.Elements(), depth)
	case *SetValue:
		writeSeq(b, val.Elements(), depth)
	case *MapValue:
		b.WriteByte('{')
		first := true
		val.Each(func(k, item Value) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			writeValue(b, k, depth+1)
			b.WriteByte('=')
			writeValue(b, item, depth+1)
		})
		b.WriteByte('}')
	case *IteratorValue:
		b.WriteString("iterator")
	case *ClassValue:
		b.WriteString("class ")
		b.WriteString(val.ClassName)
	case *InstanceValue:
		b.WriteString(val.Class.ClassName)
		b.WriteByte('{')
		for i, f := range val.Class.AllFields() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f)
			b.WriteByte('=')
			fv, _ := val.Field(f)
			writeValue(b, fv, depth+1)
		}
		b.WriteByte('}')
	case Callable:
		b.WriteString("function ")
		b.WriteString(val.Name())
	default:
		b.WriteString(v.Kind().String())
	}
}

func writeSeq(b *strings.Builder, elems []Value, depth int) {
	b.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, el, depth+1)
	}
	b.WriteByte(']')
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Equal is structural equality: numbers compare by value across ranks,
// sequences and maps element-wise, instances and functions by identity.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if IsNumber(a) && IsNumber(b) {
		return CompareNumbers(a, b) == 0
	}
	switch x := a.(type) {
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x.Val == y.Val
	case CharValue:
		y, ok := b.(CharValue)
		return ok && x.Val == y.Val
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x.Val == y.Val
	case VoidValue:
		_, ok := b.(VoidValue)
		return ok
	case DateValue:
		y, ok := b.(DateValue)
		return ok && x.Val.Equal(y.Val)
	case PatternValue:
		y, ok := b.(PatternValue)
		return ok && x.Re.String() == y.Re.String()
	case *ListValue:
		y, ok := b.(*ListValue)
		return ok && (x == y || seqEqual(x.Elements(), y.Elements()))
	case *ArrayValue:
		y, ok := b.(*ArrayValue)
		return ok && (x == y || seqEqual(x.Elements(), y.Elements()))
	case *SetValue:
		y, ok := b.(*SetValue)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x.Len() != y.Len() {
			return false
		}
		for _, el := range x.Elements() {
			if !y.Contains(el) {
				return false
			}
		}
		return true
	case *MapValue:
		y, ok := b.(*MapValue)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		if x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Each(func(k, v Value) {
			other, found := y.Get(k)
			if !found || !Equal(v, other) {
				equal = false
			}
		})
		return equal
	default:
		return a == b
	}
}

func seqEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Truthy is the strict boolean test used by conditions.
func Truthy(v Value) (bool, bool) {
	b, ok := v.(BoolValue)
	return b.Val, ok
}
