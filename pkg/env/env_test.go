package env

import (
	"testing"

	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

func TestCompilerEnvironmentAddressing(t *testing.T) {
	root := NewCompilerEnvironment()
	if _, err := root.Alloc("x", types.Int, 0); err != nil {
		t.Fatalf("alloc x: %v", err)
	}
	if _, err := root.Alloc("x", nil, 0); err == nil {
		t.Fatalf("expected redeclaration in the same scope to fail")
	}

	block := root.Block()
	shadow, err := block.Alloc("x", types.String, ModFinal)
	if err != nil {
		t.Fatalf("shadowing alloc: %v", err)
	}
	if shadow != (Address{Index: 0, Depth: 0, Level: 0}) {
		t.Fatalf("unexpected shadow address %s", shadow)
	}

	fn := block.Function()
	y, _ := fn.Alloc("y", nil, 0)
	if y.Level != 1 {
		t.Fatalf("expected function scope at level 1, got %d", y.Level)
	}
	addr, b, ok := fn.Lookup("x")
	if !ok || addr != (Address{Index: 0, Depth: 1, Level: 0}) || !b.Mods.Has(ModFinal) {
		t.Fatalf("unexpected lookup result %s %+v", addr, b)
	}
	if !block.Remove("x") {
		t.Fatalf("expected x to be removable from the block")
	}
	addr, b, _ = fn.Lookup("x")
	if addr.Depth != 2 || b.Type != types.Int {
		t.Fatalf("expected removal to expose the outer binding, got %s", addr)
	}
	next, _ := block.Alloc("z", nil, 0)
	if next.Index != 1 {
		t.Fatalf("expected monotonic slot allocation, got %d", next.Index)
	}
}

func TestEnvironmentAllocRejectsCollision(t *testing.T) {
	e := NewEnvironment(runtime.Background(), 1)
	if _, err := e.Declare(0, "a", nil, false); err != nil {
		t.Fatalf("declare: %v", err)
	}
	_, err := e.Declare(0, "b", nil, false)
	if f, ok := runtime.AsFault(err); !ok || f.Code != runtime.FaultInternal {
		t.Fatalf("expected internal fault on slot collision, got %v", err)
	}
	child := e.Extend(0)
	if _, err := child.Declare(3, "c", nil, false); err != nil {
		t.Fatalf("frames grow on demand: %v", err)
	}
	v, err := child.Lookup("a", Address{Index: 0, Depth: 1})
	if err != nil || v.Name != "a" {
		t.Fatalf("lookup through parent: %v", err)
	}
	if _, err := child.Lookup("q", Address{Index: 5, Depth: 1}); err == nil {
		t.Fatalf("expected undefined fault")
	}
}

func TestFinalVariableRejectsSet(t *testing.T) {
	v := NewVariable("k", nil, true)
	if _, err := v.Initialize(InitDeclaration, runtime.IntValue{Val: 1}); err != nil {
		t.Fatalf("declaration bypass: %v", err)
	}
	for _, r := range []Resolvent{v, nil, "anything"} {
		_, err := Slot{Name: "k"}.Set(r, runtime.IntValue{Val: 2})
		if err == nil {
			t.Fatalf("expected set through resolvent %v to fail", r)
		}
	}
	_, err := v.Set(runtime.IntValue{Val: 2})
	if f, ok := runtime.AsFault(err); !ok || f.Code != runtime.FaultFinalAssign || f.Subject != "k" {
		t.Fatalf("expected final assignment fault naming k, got %v", err)
	}
	if _, err := (Cell{Var: v}).Set(nil, runtime.Null); err == nil {
		t.Fatalf("expected captured final cell to reject set")
	}
	if _, err := v.Initialize(InitLoopCounter, runtime.IntValue{Val: 3}); err != nil {
		t.Fatalf("loop counter bypass: %v", err)
	}
	if !runtime.Equal(v.Get(), runtime.IntValue{Val: 3}) {
		t.Fatalf("expected loop counter value, got %s", runtime.ToString(v.Get()))
	}
}

func TestRecursiveBindingInitializesOnce(t *testing.T) {
	v := NewVariable("f", types.Function, true)
	fn := &runtime.NativeFunction{FnName: "f"}
	if _, err := v.Initialize(InitRecursiveBinding, fn); err != nil {
		t.Fatalf("first binding: %v", err)
	}
	if _, err := v.Initialize(InitRecursiveBinding, fn); err == nil {
		t.Fatalf("expected second recursive binding to fail")
	}
	if _, err := v.Initialize(InitSite(42), fn); err == nil {
		t.Fatalf("expected unknown site to fail")
	}
}

func TestReadOfUninitializedFinalCell(t *testing.T) {
	v := NewVariable("f", nil, true)
	_, err := v.Read()
	if f, ok := runtime.AsFault(err); !ok || f.Code != runtime.FaultUndefined || f.Subject != "f" {
		t.Fatalf("expected an Undefined fault naming f, got %v", err)
	}
	if _, err := v.Initialize(InitRecursiveBinding, runtime.Int(1)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got, err := v.Read(); err != nil || !runtime.Equal(got, runtime.Int(1)) {
		t.Fatalf("expected 1 after initialization, got %v %v", got, err)
	}

	plain := NewVariable("x", nil, false)
	if got, err := plain.Read(); err != nil || !runtime.IsNull(got) {
		t.Fatalf("a normal cell reads null before its first write, got %v %v", got, err)
	}
}

func TestTypedVariableConvertsStoredValue(t *testing.T) {
	v := NewVariable("n", types.Long, false)
	got, err := v.Set(runtime.IntValue{Val: 7})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := got.(runtime.LongValue); !ok {
		t.Fatalf("expected stored value to be converted to long, got %T", got)
	}
	if _, ok := v.Get().(runtime.LongValue); !ok {
		t.Fatalf("expected the converted value to be stored, got %T", v.Get())
	}
	if _, err := v.Set(runtime.StringValue{Val: "x"}); err == nil {
		t.Fatalf("expected type mismatch")
	}
}

func TestSlotResolvesOnce(t *testing.T) {
	e := NewEnvironment(runtime.Background(), 1)
	e.Declare(0, "i", nil, false)
	slot := Slot{Name: "i", Addr: Address{Index: 0}}
	r, err := slot.Resolve(e)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := slot.Set(r, runtime.IntValue{Val: 4}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := slot.Get(r)
	if !runtime.Equal(got, runtime.IntValue{Val: 4}) {
		t.Fatalf("expected 4, got %s", runtime.ToString(got))
	}
}
