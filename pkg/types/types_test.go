package types

import (
	"testing"

	"quill/interpreter-go/pkg/runtime"
)

var point = &runtime.ClassValue{ClassName: "Point", Super: runtime.ObjectClass, Fields: []string{"x", "y"}}

func sampleTypes() []*Type {
	return []*Type{
		Any, Null, Void, Boolean, Char, Date, CharSequence, String, StringBuffer, Pattern,
		Number, Int, Long, Float, Double, BigInteger, BigDecimal, Function,
		Iterator, Collection, List, Set, Array, Map, ClassObject, Instance,
		ListOf(Int), ListOf(Number), SetOf(String), CollectionOf(Int), ArrayOf(Double),
		InstanceOf(point), InstanceOf(runtime.ExceptionClass), Fault,
	}
}

func TestUnionAgreesWithContains(t *testing.T) {
	for _, a := range sampleTypes() {
		if a.Union(a) != a {
			t.Fatalf("%s.Union(%s) is not reflexive", a, a)
		}
		for _, b := range sampleTypes() {
			u := a.Union(b)
			switch {
			case a.Contains(b):
				if u != a {
					t.Fatalf("%s contains %s but union is %s", a, b, u)
				}
			case b.Contains(a):
				if u != b {
					t.Fatalf("%s contains %s but union is %s", b, a, u)
				}
			default:
				if u != Any {
					t.Fatalf("unrelated %s and %s should union to any, got %s", a, b, u)
				}
			}
		}
	}
}

func TestContainment(t *testing.T) {
	cases := []struct {
		outer, inner *Type
		want         bool
	}{
		{Int, Null, true},
		{Number, Double, true},
		{Int, Long, false},
		{CharSequence, StringBuffer, true},
		{String, CharSequence, false},
		{Collection, ListOf(Int), true},
		{CollectionOf(Int), SetOf(String), false},
		{ListOf(Number), ListOf(Int), true},
		{ListOf(Int), ListOf(Number), false},
		{Array, List, false},
		{Instance, InstanceOf(point), true},
		{InstanceOf(runtime.ExceptionClass), Fault, true},
		{Fault, InstanceOf(runtime.ExceptionClass), false},
	}
	for _, tc := range cases {
		if got := tc.outer.Contains(tc.inner); got != tc.want {
			t.Fatalf("%s.Contains(%s) = %v, want %v", tc.outer, tc.inner, got, tc.want)
		}
	}
}

func TestIsConstant(t *testing.T) {
	for _, typ := range []*Type{Null, Boolean, String, Int, BigDecimal, Function, Pattern} {
		if !typ.IsConstant() {
			t.Fatalf("expected %s to be constant", typ)
		}
	}
	for _, typ := range []*Type{Any, List, Map, StringBuffer, Instance, CharSequence} {
		if typ.IsConstant() {
			t.Fatalf("expected %s not to be constant", typ)
		}
	}
}

func TestConvert(t *testing.T) {
	v, err := Int.Convert("x", runtime.DoubleValue{Val: 3.9})
	if err != nil || !runtime.Equal(v, runtime.IntValue{Val: 3}) {
		t.Fatalf("expected narrowing to 3, got %v (%v)", v, err)
	}
	if _, ok := v.(runtime.IntValue); !ok {
		t.Fatalf("expected an int representation, got %T", v)
	}
	v, err = String.Convert("s", runtime.CharValue{Val: 'q'})
	if err != nil || !runtime.Equal(v, runtime.StringValue{Val: "q"}) {
		t.Fatalf("expected char to become string, got %v (%v)", v, err)
	}
	if _, err := Int.Convert("x", runtime.StringValue{Val: "1"}); err == nil {
		t.Fatalf("expected string to int conversion to fail")
	} else if f, ok := runtime.AsFault(err); !ok || f.Code != runtime.FaultTypeMismatch || f.Subject != "x" {
		t.Fatalf("expected type mismatch naming x, got %v", err)
	}

	list := runtime.NewList(runtime.IntValue{Val: 1}, runtime.IntValue{Val: 2})
	v, err = ListOf(Int).Convert("xs", list)
	if err != nil || v != runtime.Value(list) {
		t.Fatalf("expected list<int> conversion to keep identity, got %v (%v)", v, err)
	}
	v, err = ListOf(Long).Convert("xs", list)
	if err != nil {
		t.Fatalf("convert list<long>: %v", err)
	}
	if el, _ := v.(*runtime.ListValue).At(0); el.Kind() != runtime.KindLong {
		t.Fatalf("expected elements to be coerced to long, got %s", el.Kind())
	}
	if _, err := ListOf(Int).Convert("xs", runtime.NewList(runtime.StringValue{Val: "a"})); err == nil {
		t.Fatalf("expected element mismatch to fail")
	}
	v, err = Set.Convert("s", runtime.NewArray(runtime.IntValue{Val: 1}, runtime.IntValue{Val: 1}))
	if err != nil || v.(*runtime.SetValue).Len() != 1 {
		t.Fatalf("expected array to convert into a deduplicated set, got %v (%v)", v, err)
	}
}

func TestOfAndParse(t *testing.T) {
	if Of(runtime.Null) != Null || Of(runtime.IntValue{Val: 1}) != Int || Of(runtime.NewList()) != List {
		t.Fatalf("unexpected runtime types")
	}
	if got := Of(runtime.NewInstance(point)); !InstanceOf(point).Contains(got) {
		t.Fatalf("expected instance type of Point, got %s", got)
	}
	resolver := func(name string) (*runtime.ClassValue, bool) {
		if name == "Point" {
			return point, true
		}
		return nil, false
	}
	for name, want := range map[string]string{
		"int":            "int",
		"list<string>":   "list<string>",
		"map<list<int>>": "map<list<int>>",
		"instance:Point": "instance:Point",
		"Point":          "instance:Point",
		"Fault":          "instance:Fault",
	} {
		typ, ok := Parse(name, resolver)
		if !ok {
			t.Fatalf("failed to parse %q", name)
		}
		if typ.String() != want {
			t.Fatalf("Parse(%q) = %s, want %s", name, typ, want)
		}
	}
	if _, ok := Parse("list<nope>", resolver); ok {
		t.Fatalf("expected unknown element type to fail")
	}
}
