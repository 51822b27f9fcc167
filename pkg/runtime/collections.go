package runtime

import (
	"math"
	"math/big"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ListValue is a growable ordered sequence.
type ListValue struct {
	mu       sync.RWMutex
	elements []Value
}

func NewList(elements ...Value) *ListValue {
	return &ListValue{elements: append([]Value(nil), elements...)}
}

func (*ListValue) Kind() Kind { return KindList }

func (l *ListValue) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.elements)
}

// Elements returns a snapshot.
func (l *ListValue) Elements() []Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Value(nil), l.elements...)
}

func (l *ListValue) Append(v ...Value) {
	l.mu.Lock()
	l.elements = append(l.elements, v...)
	l.mu.Unlock()
}

func (l *ListValue) At(i int) (Value, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.elements) {
		return nil, false
	}
	return l.elements[i], true
}

func (l *ListValue) SetAt(i int, v Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elements) {
		return false
	}
	l.elements[i] = v
	return true
}

// ArrayValue is a fixed-length sequence.
type ArrayValue struct {
	mu       sync.RWMutex
	elements []Value
}

func NewArray(elements ...Value) *ArrayValue {
	return &ArrayValue{elements: append([]Value(nil), elements...)}
}

func (*ArrayValue) Kind() Kind { return KindArray }

func (a *ArrayValue) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.elements)
}

func (a *ArrayValue) Elements() []Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Value(nil), a.elements...)
}

func (a *ArrayValue) At(i int) (Value, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if i < 0 || i >= len(a.elements) {
		return nil, false
	}
	return a.elements[i], true
}

func (a *ArrayValue) SetAt(i int, v Value) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.elements) {
		return false
	}
	a.elements[i] = v
	return true
}

// SetValue is an insertion-ordered set keyed by HashKey.
type SetValue struct {
	mu      sync.RWMutex
	entries *linkedhashmap.Map
}

func NewSet(elements ...Value) *SetValue {
	s := &SetValue{entries: linkedhashmap.New()}
	s.Add(elements...)
	return s
}

func (*SetValue) Kind() Kind { return KindSet }

func (s *SetValue) Add(elements ...Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range elements {
		key := HashKey(el)
		if _, found := s.entries.Get(key); !found {
			s.entries.Put(key, el)
		}
	}
}

func (s *SetValue) Remove(elements ...Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, el := range elements {
		s.entries.Remove(HashKey(el))
	}
}

func (s *SetValue) Contains(v Value) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.entries.Get(HashKey(v))
	return found
}

func (s *SetValue) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Size()
}

func (s *SetValue) Elements() []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw := s.entries.Values()
	out := make([]Value, len(raw))
	for i, v := range raw {
		out[i] = v.(Value)
	}
	return out
}

type mapEntry struct {
	key   Value
	value Value
}

// MapValue is an insertion-ordered map keyed by HashKey.
type MapValue struct {
	mu      sync.RWMutex
	entries *linkedhashmap.Map
}

func NewMap() *MapValue {
	return &MapValue{entries: linkedhashmap.New()}
}

func (*MapValue) Kind() Kind { return KindMap }

func (m *MapValue) Put(key, value Value) {
	m.mu.Lock()
	m.entries.Put(HashKey(key), mapEntry{key: key, value: value})
	m.mu.Unlock()
}

func (m *MapValue) Get(key Value) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, found := m.entries.Get(HashKey(key))
	if !found {
		return nil, false
	}
	return raw.(mapEntry).value, true
}

func (m *MapValue) Remove(key Value) {
	m.mu.Lock()
	m.entries.Remove(HashKey(key))
	m.mu.Unlock()
}

func (m *MapValue) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.Size()
}

// Keys returns the keys in insertion order.
func (m *MapValue) Keys() []Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Value, 0, m.entries.Size())
	it := m.entries.Iterator()
	for it.Next() {
		out = append(out, it.Value().(mapEntry).key)
	}
	return out
}

// Each visits entries in insertion order over a snapshot.
func (m *MapValue) Each(fn func(key, value Value)) {
	m.mu.RLock()
	entries := make([]mapEntry, 0, m.entries.Size())
	it := m.entries.Iterator()
	for it.Next() {
		entries = append(entries, it.Value().(mapEntry))
	}
	m.mu.RUnlock()
	for _, e := range entries {
		fn(e.key, e.value)
	}
}

// Copy returns a shallow copy preserving order.
func (m *MapValue) Copy() *MapValue {
	out := NewMap()
	m.Each(func(k, v Value) { out.Put(k, v) })
	return out
}

// Sequence reports the elements of any sized container.
func Sequence(v Value) ([]Value, bool) {
	switch c := v.(type) {
	case *ListValue:
		return c.Elements(), true
	case *ArrayValue:
		return c.Elements(), true
	case *SetValue:
		return c.Elements(), true
	default:
		return nil, false
	}
}

type (
	nullKey   struct{}
	intKey    int64
	bigKey    string
	floatKey  float64
	decKey    string
	strKey    string
	charKey   rune
	dateKey   int64
	patternKy string
)

// HashKey maps a value to a comparable key consistent with Equal for
// scalars. Mutable containers, instances and functions key by identity.
func HashKey(v Value) any {
	switch val := v.(type) {
	case nil, NullValue:
		return nullKey{}
	case BoolValue:
		return val.Val
	case CharValue:
		return charKey(val.Val)
	case StringValue:
		return strKey(val.Val)
	case DateValue:
		return dateKey(val.Val.UnixNano())
	case PatternValue:
		return patternKy(val.Re.String())
	case IntValue:
		return intKey(val.Val)
	case LongValue:
		return intKey(val.Val)
	case BigIntValue:
		if val.Val.IsInt64() {
			return intKey(val.Val.Int64())
		}
		return bigKey(val.Val.String())
	case FloatValue:
		return floatKeyOf(float64(val.Val))
	case DoubleValue:
		return floatKeyOf(val.Val)
	case DecimalValue:
		if val.Val.IsInteger() {
			bi := val.Val.BigInt()
			if bi.IsInt64() {
				return intKey(bi.Int64())
			}
			return bigKey(bi.String())
		}
		return decKey(val.Val.String())
	default:
		return v
	}
}

func floatKeyOf(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<62 {
		return intKey(int64(f))
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		bf := new(big.Float).SetFloat64(f)
		bi, _ := bf.Int(nil)
		return bigKey(bi.String())
	}
	return floatKey(f)
}
