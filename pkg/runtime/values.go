package runtime

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindVoid
	KindBool
	KindChar
	KindDate
	KindString
	KindStringBuffer
	KindPattern
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBigInteger
	KindBigDecimal
	KindFunction
	KindIterator
	KindList
	KindSet
	KindArray
	KindMap
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindBool:
		return "boolean"
	case KindChar:
		return "char"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindStringBuffer:
		return "stringbuffer"
	case KindPattern:
		return "pattern"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBigInteger:
		return "biginteger"
	case KindBigDecimal:
		return "bigdecimal"
	case KindFunction:
		return "function"
	case KindIterator:
		return "iterator"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

type CharValue struct {
	Val rune
}

func (CharValue) Kind() Kind { return KindChar }

type DateValue struct {
	Val time.Time
}

func (DateValue) Kind() Kind { return KindDate }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

// StringBufferValue is the one mutable character sequence.
type StringBufferValue struct {
	mu  sync.Mutex
	buf strings.Builder
}

func NewStringBuffer(initial string) *StringBufferValue {
	sb := &StringBufferValue{}
	sb.buf.WriteString(initial)
	return sb
}

func (*StringBufferValue) Kind() Kind { return KindStringBuffer }

func (b *StringBufferValue) Append(s string) {
	b.mu.Lock()
	b.buf.WriteString(s)
	b.mu.Unlock()
}

func (b *StringBufferValue) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type PatternValue struct {
	Re *regexp.Regexp
}

func (PatternValue) Kind() Kind { return KindPattern }

//-----------------------------------------------------------------------------
// Numbers
//-----------------------------------------------------------------------------

type IntValue struct {
	Val int32
}

func (IntValue) Kind() Kind { return KindInt }

type LongValue struct {
	Val int64
}

func (LongValue) Kind() Kind { return KindLong }

type FloatValue struct {
	Val float32
}

func (FloatValue) Kind() Kind { return KindFloat }

type DoubleValue struct {
	Val float64
}

func (DoubleValue) Kind() Kind { return KindDouble }

type BigIntValue struct {
	Val *big.Int
}

func (BigIntValue) Kind() Kind { return KindBigInteger }

type DecimalValue struct {
	Val decimal.Decimal
}

func (DecimalValue) Kind() Kind { return KindBigDecimal }

// Shared immutable scalars.
var (
	Null  Value = NullValue{}
	Void  Value = VoidValue{}
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(v int32) Value      { return IntValue{Val: v} }
func Long(v int64) Value     { return LongValue{Val: v} }
func Double(v float64) Value { return DoubleValue{Val: v} }
func String(s string) Value  { return StringValue{Val: s} }

func BigInt(v *big.Int) Value {
	return BigIntValue{Val: new(big.Int).Set(v)}
}

// IsNull reports whether v is absent or the null value.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// Callable is implemented by every function value: interpreted closures,
// native builtins and operators.
type Callable interface {
	Value
	Name() string
	// Arity is the maximum positional argument count; -1 means variadic.
	Arity() int
	Call(ctx *Context, args []Value) (Value, error)
}

type NativeFunc func(ctx *Context, args []Value) (Value, error)

type NativeFunction struct {
	FnName string
	NArgs  int
	Impl   NativeFunc
}

func (*NativeFunction) Kind() Kind     { return KindFunction }
func (f *NativeFunction) Name() string { return f.FnName }
func (f *NativeFunction) Arity() int   { return f.NArgs }

func (f *NativeFunction) Call(ctx *Context, args []Value) (Value, error) {
	if f.NArgs >= 0 && len(args) > f.NArgs {
		return nil, NewFault(FaultArity, f.FnName, "%s takes at most %d argument(s), got %d", f.FnName, f.NArgs, len(args))
	}
	return f.Impl(ctx, args)
}

//-----------------------------------------------------------------------------
// Iterators
//-----------------------------------------------------------------------------

// IteratorValue is a lazily evaluated sequence.
type IteratorValue struct {
	mu     sync.Mutex
	next   func() (Value, bool, error)
	closer func()
	closed bool
}

// NewIterator constructs an iterator with the provided step function. The
// step's bool result reports whether iteration has completed.
func NewIterator(step func() (Value, bool, error), finalize func()) *IteratorValue {
	if step == nil {
		step = func() (Value, bool, error) { return nil, true, nil }
	}
	return &IteratorValue{next: step, closer: finalize}
}

// SliceIterator walks a snapshot of values.
func SliceIterator(values []Value) *IteratorValue {
	idx := 0
	return NewIterator(func() (Value, bool, error) {
		if idx >= len(values) {
			return nil, true, nil
		}
		v := values[idx]
		idx++
		return v, false, nil
	}, nil)
}

func (*IteratorValue) Kind() Kind { return KindIterator }

func (v *IteratorValue) Next() (Value, bool, error) {
	if v == nil {
		return nil, true, nil
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, true, nil
	}
	step := v.next
	v.mu.Unlock()
	return step()
}

// Close releases any resources held by the iterator.
func (v *IteratorValue) Close() {
	if v == nil {
		return
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	closer := v.closer
	v.mu.Unlock()
	if closer != nil {
		closer()
	}
}

//-----------------------------------------------------------------------------
// Classes
//-----------------------------------------------------------------------------

type ClassValue struct {
	ClassName string
	Super     *ClassValue
	Fields    []string
}

func (*ClassValue) Kind() Kind { return KindClass }

// AllFields lists inherited fields first.
func (c *ClassValue) AllFields() []string {
	if c == nil {
		return nil
	}
	out := append([]string(nil), c.Super.AllFields()...)
	for _, f := range c.Fields {
		if !containsString(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *ClassValue) IsSubclassOf(other *ClassValue) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

type InstanceValue struct {
	Class  *ClassValue
	mu     sync.RWMutex
	fields map[string]Value
}

// NewInstance builds an instance with every field set to null.
func NewInstance(class *ClassValue) *InstanceValue {
	inst := &InstanceValue{Class: class, fields: make(map[string]Value)}
	for _, f := range class.AllFields() {
		inst.fields[f] = Null
	}
	return inst
}

func (*InstanceValue) Kind() Kind { return KindInstance }

func (i *InstanceValue) Field(name string) (Value, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

func (i *InstanceValue) SetField(name string, v Value) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.fields[name]; !ok {
		return false
	}
	i.fields[name] = v
	return true
}

var (
	ObjectClass    = &ClassValue{ClassName: "Object"}
	ExceptionClass = &ClassValue{ClassName: "Exception", Super: ObjectClass, Fields: []string{"message"}}
	FaultClass     = &ClassValue{ClassName: "Fault", Super: ExceptionClass, Fields: []string{"code"}}
)

// FaultInstance exposes a typed fault to interpreted catch handlers.
func FaultInstance(f *Fault) *InstanceValue {
	inst := NewInstance(FaultClass)
	inst.SetField("message", StringValue{Val: f.Error()})
	inst.SetField("code", StringValue{Val: string(f.Code)})
	return inst
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
