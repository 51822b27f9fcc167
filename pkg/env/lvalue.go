package env

import "quill/interpreter-go/pkg/runtime"

// Resolvent is whatever an LValue needs to finish a get or set without
// evaluating its subexpressions again.
type Resolvent any

// LValue is an assignable location. Resolve runs once per logical access;
// Get and Set may then be called any number of times on its result. Set
// returns the stored value.
type LValue interface {
	Resolve(env *Environment) (Resolvent, error)
	Get(r Resolvent) (runtime.Value, error)
	Set(r Resolvent, v runtime.Value) (runtime.Value, error)
}

// Slot is the LValue of an addressed local variable.
type Slot struct {
	Name string
	Addr Address
}

func (s Slot) Resolve(e *Environment) (Resolvent, error) {
	return e.Lookup(s.Name, s.Addr)
}

func (s Slot) Get(r Resolvent) (runtime.Value, error) {
	v, err := cellOf(s.Name, r)
	if err != nil {
		return nil, err
	}
	return v.Read()
}

func (s Slot) Set(r Resolvent, x runtime.Value) (runtime.Value, error) {
	v, err := cellOf(s.Name, r)
	if err != nil {
		return nil, err
	}
	return v.Set(x)
}

// Cell is the LValue of a captured variable; it needs no frame.
type Cell struct {
	Var *Variable
}

func (c Cell) Resolve(*Environment) (Resolvent, error) { return c.Var, nil }

func (c Cell) Get(Resolvent) (runtime.Value, error) { return c.Var.Read() }

func (c Cell) Set(_ Resolvent, x runtime.Value) (runtime.Value, error) { return c.Var.Set(x) }

func cellOf(name string, r Resolvent) (*Variable, error) {
	v, ok := r.(*Variable)
	if !ok || v == nil {
		return nil, runtime.Internal(name, "resolvent is not a variable cell")
	}
	return v, nil
}
