package env

import (
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Environment is one run-time frame: an indexable set of variable cells with
// a parent link that mirrors the compile-time scope chain. Frames are
// single-writer; only the owning evaluation mutates them.
type Environment struct {
	parent *Environment
	vars   []*Variable
	ctx    *runtime.Context
}

// NewEnvironment creates a root frame bound to ctx.
func NewEnvironment(ctx *runtime.Context, size int) *Environment {
	if ctx == nil {
		ctx = runtime.Background()
	}
	ctx.CountFrame()
	return &Environment{vars: make([]*Variable, size), ctx: ctx}
}

// Extend creates a child frame sharing this frame's context.
func (e *Environment) Extend(size int) *Environment {
	return e.ExtendWith(e.ctx, size)
}

// ExtendWith creates a child frame running under a different context. Calls
// into a closure use it so the callee sees the caller's invocation state.
func (e *Environment) ExtendWith(ctx *runtime.Context, size int) *Environment {
	ctx.CountFrame()
	return &Environment{parent: e, vars: make([]*Variable, size), ctx: ctx}
}

func (e *Environment) Parent() *Environment { return e.parent }

func (e *Environment) Context() *runtime.Context { return e.ctx }

func (e *Environment) Size() int { return len(e.vars) }

// Alloc creates the cell at index. An occupied slot is an internal fault.
func (e *Environment) Alloc(index int, v *Variable) error {
	if index < 0 {
		return runtime.Internal(v.Name, "negative frame slot %d", index)
	}
	if index >= len(e.vars) {
		grown := make([]*Variable, index+1)
		copy(grown, e.vars)
		e.vars = grown
	}
	if existing := e.vars[index]; existing != nil {
		return runtime.Internal(v.Name, "frame slot %d already holds '%s'", index, existing.Name)
	}
	e.vars[index] = v
	e.ctx.CountCell()
	return nil
}

// Declare allocates a fresh cell and returns it.
func (e *Environment) Declare(index int, name string, typ *types.Type, final bool) (*Variable, error) {
	v := NewVariable(name, typ, final)
	if err := e.Alloc(index, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Frame walks depth parents up.
func (e *Environment) Frame(depth int) *Environment {
	frame := e
	for i := 0; i < depth && frame != nil; i++ {
		frame = frame.parent
	}
	return frame
}

// Lookup returns the cell at addr, relative to this frame.
func (e *Environment) Lookup(name string, addr Address) (*Variable, error) {
	frame := e.Frame(addr.Depth)
	if frame == nil || addr.Index < 0 || addr.Index >= len(frame.vars) || frame.vars[addr.Index] == nil {
		return nil, runtime.NewFault(runtime.FaultUndefined, name, "no variable at %s", addr)
	}
	return frame.vars[addr.Index], nil
}

// At returns the cell at index in this frame, or nil.
func (e *Environment) At(index int) *Variable {
	if index < 0 || index >= len(e.vars) {
		return nil
	}
	return e.vars[index]
}
