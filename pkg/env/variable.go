package env

import (
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// InitSite names the places allowed to write a final cell without going
// through Set. The set is closed.
type InitSite uint8

const (
	// InitDeclaration is the initializer of a variable declaration.
	InitDeclaration InitSite = iota + 1
	// InitLoopCounter rebinds a for-in loop variable on each iteration.
	InitLoopCounter
	// InitRecursiveBinding fills a hoisted function cell once its closure
	// exists. It may only run against an uninitialized cell.
	InitRecursiveBinding
)

func (s InitSite) String() string {
	switch s {
	case InitDeclaration:
		return "declaration"
	case InitLoopCounter:
		return "loop counter"
	case InitRecursiveBinding:
		return "recursive binding"
	default:
		return "unknown"
	}
}

// Variable is a mutable cell. A cell with a declared type other than any
// converts every value written to it; a final cell rejects Set.
type Variable struct {
	Name        string
	typ         *types.Type
	final       bool
	initialized bool
	value       runtime.Value
}

func NewVariable(name string, typ *types.Type, final bool) *Variable {
	if typ == nil {
		typ = types.Any
	}
	return &Variable{Name: name, typ: typ, final: final, value: runtime.Null}
}

func (v *Variable) Type() *types.Type { return v.typ }

func (v *Variable) Final() bool { return v.final }

func (v *Variable) Initialized() bool { return v.initialized }

func (v *Variable) Get() runtime.Value { return v.value }

// Read is Get for interpreted code. A final cell that has not been
// initialized yet is a hoisted declaration whose statement has not run.
func (v *Variable) Read() (runtime.Value, error) {
	if v.final && !v.initialized {
		return nil, runtime.NewFault(runtime.FaultUndefined, v.Name, "'%s' is used before its declaration runs", v.Name)
	}
	return v.value, nil
}

// Set writes x and returns the stored value.
func (v *Variable) Set(x runtime.Value) (runtime.Value, error) {
	if v.final {
		return nil, runtime.FinalAssignment(v.Name)
	}
	return v.store(x)
}

// Initialize writes x from one of the enumerated bypass sites.
func (v *Variable) Initialize(site InitSite, x runtime.Value) (runtime.Value, error) {
	switch site {
	case InitDeclaration, InitLoopCounter:
	case InitRecursiveBinding:
		if v.initialized {
			return nil, runtime.FinalAssignment(v.Name)
		}
	default:
		return nil, runtime.Internal(v.Name, "invalid initialization site %d", site)
	}
	return v.store(x)
}

func (v *Variable) store(x runtime.Value) (runtime.Value, error) {
	if x == nil {
		x = runtime.Null
	}
	if v.typ != types.Any {
		converted, err := v.typ.Convert(v.Name, x)
		if err != nil {
			return nil, err
		}
		x = converted
	}
	v.value = x
	v.initialized = true
	return x, nil
}
