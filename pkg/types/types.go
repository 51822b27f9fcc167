// Package types implements the runtime type descriptors of Quill: the kind
// lattice used for static inference, containment checks and value coercion.
// Descriptors are immutable and may be shared freely.
package types

import (
	"strings"

	"quill/interpreter-go/pkg/runtime"
)

// Kind is the type discriminant.
type Kind int

const (
	KindAny Kind = iota
	KindNull
	KindVoid
	KindBoolean
	KindChar
	KindDate
	KindCharSequence
	KindString
	KindStringBuffer
	KindPattern
	KindNumber
	KindFunction
	KindIterator
	KindCollection
	KindList
	KindSet
	KindArray
	KindMap
	KindClass
	KindInstance
)

var kindNames = [...]string{
	KindAny:          "any",
	KindNull:         "null",
	KindVoid:         "void",
	KindBoolean:      "boolean",
	KindChar:         "char",
	KindDate:         "date",
	KindCharSequence: "charsequence",
	KindString:       "string",
	KindStringBuffer: "stringbuffer",
	KindPattern:      "pattern",
	KindNumber:       "number",
	KindFunction:     "function",
	KindIterator:     "iterator",
	KindCollection:   "collection",
	KindList:         "list",
	KindSet:          "set",
	KindArray:        "array",
	KindMap:          "map",
	KindClass:        "class",
	KindInstance:     "instance",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "any"
}

// Type is an immutable type descriptor.
type Type struct {
	kind  Kind
	rank  runtime.NumRank
	elem  *Type
	class *runtime.ClassValue
}

var (
	Any          = &Type{kind: KindAny}
	Null         = &Type{kind: KindNull}
	Void         = &Type{kind: KindVoid}
	Boolean      = &Type{kind: KindBoolean}
	Char         = &Type{kind: KindChar}
	Date         = &Type{kind: KindDate}
	CharSequence = &Type{kind: KindCharSequence}
	String       = &Type{kind: KindString}
	StringBuffer = &Type{kind: KindStringBuffer}
	Pattern      = &Type{kind: KindPattern}
	Number       = &Type{kind: KindNumber, rank: runtime.RankNone}
	Int          = &Type{kind: KindNumber, rank: runtime.RankInt}
	Long         = &Type{kind: KindNumber, rank: runtime.RankLong}
	Float        = &Type{kind: KindNumber, rank: runtime.RankFloat}
	Double       = &Type{kind: KindNumber, rank: runtime.RankDouble}
	BigInteger   = &Type{kind: KindNumber, rank: runtime.RankBigInt}
	BigDecimal   = &Type{kind: KindNumber, rank: runtime.RankBigDec}
	Function     = &Type{kind: KindFunction}
	Iterator     = &Type{kind: KindIterator, elem: Any}
	Collection   = &Type{kind: KindCollection, elem: Any}
	List         = &Type{kind: KindList, elem: Any}
	Set          = &Type{kind: KindSet, elem: Any}
	Array        = &Type{kind: KindArray, elem: Any}
	Map          = &Type{kind: KindMap, elem: Any}
	ClassObject  = &Type{kind: KindClass}
	Instance     = &Type{kind: KindInstance}
	// Fault is the catch type that matches typed runtime faults.
	Fault = InstanceOf(runtime.FaultClass)
)

// ForRank returns the shared numeric descriptor of a rank.
func ForRank(r runtime.NumRank) *Type {
	switch r {
	case runtime.RankInt:
		return Int
	case runtime.RankLong:
		return Long
	case runtime.RankFloat:
		return Float
	case runtime.RankDouble:
		return Double
	case runtime.RankBigInt:
		return BigInteger
	case runtime.RankBigDec:
		return BigDecimal
	default:
		return Number
	}
}

func container(kind Kind, elem *Type) *Type {
	if elem == nil || elem == Any {
		switch kind {
		case KindIterator:
			return Iterator
		case KindCollection:
			return Collection
		case KindList:
			return List
		case KindSet:
			return Set
		case KindArray:
			return Array
		case KindMap:
			return Map
		}
	}
	return &Type{kind: kind, elem: elem}
}

func ListOf(elem *Type) *Type       { return container(KindList, elem) }
func SetOf(elem *Type) *Type        { return container(KindSet, elem) }
func ArrayOf(elem *Type) *Type      { return container(KindArray, elem) }
func IteratorOf(elem *Type) *Type   { return container(KindIterator, elem) }
func CollectionOf(elem *Type) *Type { return container(KindCollection, elem) }

// MapOf types a map by its value type.
func MapOf(elem *Type) *Type { return container(KindMap, elem) }

// WithElem returns the container type of the same kind with a new element
// type. Non-containers are returned unchanged.
func (t *Type) WithElem(elem *Type) *Type {
	if !t.isContainer() {
		return t
	}
	return container(t.kind, elem)
}

// IsContainer reports whether t carries an element type.
func (t *Type) IsContainer() bool { return t.isContainer() }

// InstanceOf types instances of class and its subclasses.
func InstanceOf(class *runtime.ClassValue) *Type {
	if class == nil {
		return Instance
	}
	return &Type{kind: KindInstance, class: class}
}

func (t *Type) Kind() Kind { return t.kind }

// Rank is the numeric rank; RankNone for the generic number type and for
// non-numbers.
func (t *Type) Rank() runtime.NumRank { return t.rank }

func (t *Type) IsNumeric() bool { return t.kind == KindNumber }

// Class is the class of an instance type, nil when unconstrained.
func (t *Type) Class() *runtime.ClassValue { return t.class }

// Elem is the container element type; Any by default.
func (t *Type) Elem() *Type {
	if t.elem == nil {
		return Any
	}
	return t.elem
}

// ReprName is the representation tag used in diagnostics.
func (t *Type) ReprName() string {
	switch t.kind {
	case KindNumber:
		return t.rank.String()
	case KindInstance:
		if t.class != nil {
			return "instance:" + t.class.ClassName
		}
	}
	return t.kind.String()
}

func (t *Type) String() string {
	if t.isContainer() && t.elem != nil && t.elem != Any {
		return t.kind.String() + "<" + t.elem.String() + ">"
	}
	return t.ReprName()
}

func (t *Type) isContainer() bool {
	switch t.kind {
	case KindIterator, KindCollection, KindList, KindSet, KindArray, KindMap:
		return true
	}
	return false
}

// Contains reports whether every value of other is a value of t.
func (t *Type) Contains(other *Type) bool {
	if t == other || t.kind == KindAny || other.kind == KindNull {
		return true
	}
	switch t.kind {
	case KindNumber:
		return other.kind == KindNumber && (t.rank == runtime.RankNone || t.rank == other.rank)
	case KindCharSequence:
		return other.kind == KindCharSequence || other.kind == KindString || other.kind == KindStringBuffer
	case KindCollection:
		return (other.kind == KindCollection || other.kind == KindList || other.kind == KindSet) &&
			t.Elem().Contains(other.Elem())
	case KindIterator, KindList, KindSet, KindArray, KindMap:
		return other.kind == t.kind && t.Elem().Contains(other.Elem())
	case KindInstance:
		if other.kind != KindInstance {
			return false
		}
		if t.class == nil {
			return true
		}
		return other.class != nil && other.class.IsSubclassOf(t.class)
	default:
		return other.kind == t.kind
	}
}

// Union is the smallest type containing both operands; Any when neither
// contains the other.
func (t *Type) Union(other *Type) *Type {
	if t.Contains(other) {
		return t
	}
	if other.Contains(t) {
		return other
	}
	return Any
}

// IsConstant reports whether every value of t is immutable.
func (t *Type) IsConstant() bool {
	switch t.kind {
	case KindNull, KindVoid, KindBoolean, KindChar, KindDate, KindString, KindPattern, KindNumber, KindFunction:
		return true
	default:
		return false
	}
}

// ContainsValue is the runtime membership test used by casts, instanceof
// and catch clauses.
func (t *Type) ContainsValue(v runtime.Value) bool {
	return t.Contains(Of(v))
}

// Convert coerces v to a value of t. Numbers change rank, characters and
// string buffers become strings, containers are checked element-wise.
// Anything else fails with a TypeMismatch fault naming subject.
func (t *Type) Convert(subject string, v runtime.Value) (out runtime.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, runtime.Recovered(subject, r)
		}
	}()
	return t.convert(subject, v)
}

func (t *Type) convert(subject string, v runtime.Value) (runtime.Value, error) {
	if v == nil {
		v = runtime.Null
	}
	if t.ContainsValue(v) {
		return v, nil
	}
	switch t.kind {
	case KindNumber:
		if runtime.IsNumber(v) {
			return runtime.ToRank(v, t.rank), nil
		}
	case KindString, KindCharSequence:
		switch v.(type) {
		case runtime.CharValue, *runtime.StringBufferValue:
			return runtime.StringValue{Val: runtime.ToString(v)}, nil
		}
	case KindList, KindSet, KindArray, KindCollection:
		elems, ok := runtime.Sequence(v)
		if !ok {
			break
		}
		same := container(t.kind, Any).Contains(Of(v))
		out := make([]runtime.Value, len(elems))
		for i, el := range elems {
			conv, err := t.Elem().Convert(subject, el)
			if err != nil {
				return nil, runtime.TypeMismatch(subject, t.String(), runtime.Describe(v)+" with "+runtime.Describe(el))
			}
			same = same && conv == el
			out[i] = conv
		}
		if same {
			return v, nil
		}
		switch t.kind {
		case KindSet:
			return runtime.NewSet(out...), nil
		case KindArray:
			return runtime.NewArray(out...), nil
		default:
			return runtime.NewList(out...), nil
		}
	case KindMap:
		if m, ok := v.(*runtime.MapValue); ok {
			var bad runtime.Value
			m.Each(func(_, item runtime.Value) {
				if bad == nil && !t.Elem().ContainsValue(item) {
					bad = item
				}
			})
			if bad == nil {
				return v, nil
			}
			return nil, runtime.TypeMismatch(subject, t.String(), "map with "+runtime.Describe(bad))
		}
	}
	return nil, runtime.TypeMismatch(subject, t.String(), runtime.Describe(v))
}

// Of returns the runtime type of a value.
func Of(v runtime.Value) *Type {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return Null
	case runtime.VoidValue:
		return Void
	case runtime.BoolValue:
		return Boolean
	case runtime.CharValue:
		return Char
	case runtime.DateValue:
		return Date
	case runtime.StringValue:
		return String
	case *runtime.StringBufferValue:
		return StringBuffer
	case runtime.PatternValue:
		return Pattern
	case *runtime.ListValue:
		return List
	case *runtime.SetValue:
		return Set
	case *runtime.ArrayValue:
		return Array
	case *runtime.MapValue:
		return Map
	case *runtime.IteratorValue:
		return Iterator
	case *runtime.ClassValue:
		return ClassObject
	case *runtime.InstanceValue:
		return InstanceOf(val.Class)
	case runtime.Callable:
		return Function
	}
	if r, ok := runtime.RankOf(v); ok {
		return ForRank(r)
	}
	return Any
}

// Resolver finds class objects by name while parsing type names.
type Resolver func(name string) (*runtime.ClassValue, bool)

// Parse reads a type name such as "int", "list<string>" or "instance:Point".
func Parse(name string, classes Resolver) (*Type, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Any, true
	}
	if open := strings.IndexByte(name, '<'); open > 0 && strings.HasSuffix(name, ">") {
		elem, ok := Parse(name[open+1:len(name)-1], classes)
		if !ok {
			return nil, false
		}
		switch name[:open] {
		case "list":
			return ListOf(elem), true
		case "set":
			return SetOf(elem), true
		case "array":
			return ArrayOf(elem), true
		case "iterator":
			return IteratorOf(elem), true
		case "collection":
			return CollectionOf(elem), true
		case "map":
			return MapOf(elem), true
		}
		return nil, false
	}
	if className, ok := strings.CutPrefix(name, "instance:"); ok {
		if classes == nil {
			return nil, false
		}
		class, found := classes(className)
		if !found {
			return nil, false
		}
		return InstanceOf(class), true
	}
	switch name {
	case "any", "object":
		return Any, true
	case "null":
		return Null, true
	case "void":
		return Void, true
	case "boolean", "bool":
		return Boolean, true
	case "char":
		return Char, true
	case "date":
		return Date, true
	case "charsequence":
		return CharSequence, true
	case "string":
		return String, true
	case "stringbuffer":
		return StringBuffer, true
	case "pattern":
		return Pattern, true
	case "number":
		return Number, true
	case "int":
		return Int, true
	case "long":
		return Long, true
	case "float":
		return Float, true
	case "double":
		return Double, true
	case "biginteger":
		return BigInteger, true
	case "bigdecimal":
		return BigDecimal, true
	case "function":
		return Function, true
	case "iterator":
		return Iterator, true
	case "collection":
		return Collection, true
	case "list":
		return List, true
	case "set":
		return Set, true
	case "array":
		return Array, true
	case "map":
		return Map, true
	case "class":
		return ClassObject, true
	case "instance":
		return Instance, true
	case "Fault":
		return Fault, true
	}
	if classes != nil {
		if class, found := classes(name); found {
			return InstanceOf(class), true
		}
	}
	return nil, false
}
