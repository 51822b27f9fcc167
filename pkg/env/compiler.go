package env

import (
	"fmt"

	"quill/interpreter-go/pkg/types"
)

// Modifiers are declaration modifiers recorded with a binding.
type Modifiers uint8

const (
	ModFinal Modifiers = 1 << iota
	ModPublic
	ModSynchronized
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

func (m Modifiers) String() string {
	out := ""
	for _, item := range []struct {
		flag Modifiers
		name string
	}{{ModPublic, "public"}, {ModFinal, "final"}, {ModSynchronized, "synchronized"}} {
		if m.Has(item.flag) {
			if out != "" {
				out += " "
			}
			out += item.name
		}
	}
	return out
}

// Address locates a variable at run time: the slot index inside its frame,
// the number of frames to walk up, and the function-nesting level of the
// declaring scope.
type Address struct {
	Index int
	Depth int
	Level int
}

func (a Address) String() string {
	return fmt.Sprintf("%d@%d/L%d", a.Index, a.Depth, a.Level)
}

// Binding is the compile-time record of a declared name.
type Binding struct {
	Name  string
	Index int
	Level int
	Mods  Modifiers
	Type  *types.Type
}

// CompilerEnvironment is one compile-time scope. Every scope maps to exactly
// one run-time frame; Function scopes additionally bump the nesting level.
type CompilerEnvironment struct {
	parent *CompilerEnvironment
	level  int
	names  map[string]*Binding
	next   int
}

// NewCompilerEnvironment creates the top-level scope at level 0.
func NewCompilerEnvironment() *CompilerEnvironment {
	return &CompilerEnvironment{names: make(map[string]*Binding)}
}

// Block opens a nested scope at the same function level.
func (c *CompilerEnvironment) Block() *CompilerEnvironment {
	return &CompilerEnvironment{parent: c, level: c.level, names: make(map[string]*Binding)}
}

// Function opens the call scope of a nested function.
func (c *CompilerEnvironment) Function() *CompilerEnvironment {
	return &CompilerEnvironment{parent: c, level: c.level + 1, names: make(map[string]*Binding)}
}

func (c *CompilerEnvironment) Parent() *CompilerEnvironment { return c.parent }

func (c *CompilerEnvironment) Level() int { return c.level }

// Size is the number of slots the run-time frame for this scope needs.
func (c *CompilerEnvironment) Size() int { return c.next }

// Alloc binds name in this scope at the next free slot. Slots are never
// reused, so a removed name keeps its index reserved.
func (c *CompilerEnvironment) Alloc(name string, typ *types.Type, mods Modifiers) (Address, error) {
	if _, exists := c.names[name]; exists {
		return Address{}, fmt.Errorf("'%s' is already declared in this scope", name)
	}
	if typ == nil {
		typ = types.Any
	}
	b := &Binding{Name: name, Index: c.next, Level: c.level, Mods: mods, Type: typ}
	c.names[name] = b
	c.next++
	return Address{Index: b.Index, Depth: 0, Level: b.Level}, nil
}

// Remove frees the binding for name in this scope only.
func (c *CompilerEnvironment) Remove(name string) bool {
	if _, ok := c.names[name]; !ok {
		return false
	}
	delete(c.names, name)
	return true
}

// Lookup resolves name through the scope chain. Depth counts the scopes
// between this one and the declaring scope.
func (c *CompilerEnvironment) Lookup(name string) (Address, *Binding, bool) {
	depth := 0
	for scope := c; scope != nil; scope = scope.parent {
		if b, ok := scope.names[name]; ok {
			return Address{Index: b.Index, Depth: depth, Level: b.Level}, b, true
		}
		depth++
	}
	return Address{}, nil, false
}

// Local returns the binding for name declared directly in this scope.
func (c *CompilerEnvironment) Local(name string) (*Binding, bool) {
	b, ok := c.names[name]
	return b, ok
}
