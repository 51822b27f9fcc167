package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

// LinkVars replaces every variable reference whose level is at most
// maxLevel with a Captured node holding the cell, taken from frame. Frames
// entered inside the subtree are counted, so a reference's depth is adjusted
// by the distance between its own scope and the root of the subtree. The same
// node is returned when nothing references an outer level, which makes
// relinking with the same bound a no-op.
func LinkVars(node ast.Node, frame *env.Environment, maxLevel int) (ast.Node, error) {
	l := &linker{frame: frame, maxLevel: maxLevel}
	out := l.link(node, 0)
	if l.err != nil {
		return nil, l.err
	}
	return out, nil
}

type linker struct {
	frame    *env.Environment
	maxLevel int
	err      error
}

func (l *linker) link(node ast.Node, inner int) ast.Node {
	if l.err != nil {
		return node
	}
	switch n := node.(type) {
	case *ast.Var:
		if !n.Bound || n.Addr.Level > l.maxLevel {
			return n
		}
		hops := n.Addr.Depth - inner
		if hops < 0 {
			l.err = runtime.Internal(n.Name, "reference at %s escapes a frame entered at depth %d", n.Addr, inner)
			return n
		}
		cell, err := l.frame.Lookup(n.Name, env.Address{Index: n.Addr.Index, Depth: hops, Level: n.Addr.Level})
		if err != nil {
			l.err = err
			return n
		}
		captured := ast.NewCaptured(n.Name, cell)
		ast.SetSpan(captured, n.Span())
		return captured
	}
	return ast.MapChildren(node, func(child ast.Node, frames int) ast.Node {
		return l.link(child, inner+frames)
	})
}

// makeClosure links a function literal against the frame it is evaluated in.
// The closure keeps no reference to that frame.
func (i *Interpreter) makeClosure(fn *ast.Function, frame *env.Environment) (runtime.Value, error) {
	linked, err := LinkVars(fn, frame, fn.Level-1)
	if err != nil {
		return nil, err
	}
	return &Closure{interp: i, fn: linked.(*ast.Function)}, nil
}
