// Package binder resolves names in a freshly built tree to lexical
// addresses. Every scope it opens corresponds to exactly one frame the
// interpreter creates at run time, so the depth recorded for a reference is
// the number of frames to walk up.
package binder

import (
	"errors"
	"fmt"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/types"
)

// Error is a name-resolution failure at one node.
type Error struct {
	Node    ast.Node
	Message string
}

func (e *Error) Error() string {
	if e.Node != nil && !e.Node.Span().IsZero() {
		start := e.Node.Span().Start
		return fmt.Sprintf("%d:%d: %s", start.Line, start.Column, e.Message)
	}
	return e.Message
}

// Binder keeps the root scope across programs. Binding mutates the tree in
// place and must happen before anything asks a node for its type.
type Binder struct {
	root    *env.CompilerEnvironment
	globals []string
	errs    []error
	added   []string
}

// New creates a binder whose root scope starts with globals, all final, in
// slots 0..len(globals)-1.
func New(globals []string) *Binder {
	b := &Binder{root: env.NewCompilerEnvironment(), globals: append([]string(nil), globals...)}
	for _, name := range globals {
		if _, err := b.root.Alloc(name, nil, env.ModFinal|env.ModPublic); err != nil {
			panic(fmt.Sprintf("binder: duplicate global %q", name))
		}
	}
	return b
}

// Bind resolves a program in a fresh binder.
func Bind(prog *ast.Program, globals []string) error {
	return New(globals).Bind(prog)
}

func (b *Binder) Root() *env.CompilerEnvironment { return b.root }

// Bind resolves prog against the root scope. When it fails, the root names
// the program declared are removed again so a later program can reuse them;
// their slots stay reserved.
func (b *Binder) Bind(prog *ast.Program) error {
	b.errs, b.added = nil, nil
	b.hoist(b.root, prog.Body)
	for _, stmt := range prog.Body {
		b.statement(stmt, b.root)
	}
	prog.Size = b.root.Size()
	prog.Globals = append([]string(nil), b.globals...)
	if len(b.errs) > 0 {
		for _, name := range b.added {
			b.root.Remove(name)
		}
		return errors.Join(b.errs...)
	}
	return nil
}

func (b *Binder) errorf(n ast.Node, format string, args ...any) {
	b.errs = append(b.errs, &Error{Node: n, Message: fmt.Sprintf(format, args...)})
}

func (b *Binder) alloc(scope *env.CompilerEnvironment, n ast.Node, name string, typ *types.Type, mods env.Modifiers) int {
	addr, err := scope.Alloc(name, typ, mods)
	if err != nil {
		b.errorf(n, "%v", err)
		if existing, ok := scope.Local(name); ok {
			return existing.Index
		}
		return 0
	}
	if scope == b.root {
		b.added = append(b.added, name)
	}
	return addr.Index
}

// hoist allocates the function declarations of a statement list before any
// statement is bound, so they can be called ahead of their declaration.
func (b *Binder) hoist(scope *env.CompilerEnvironment, body []ast.Statement) {
	for _, stmt := range body {
		decl, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		mods := env.ModFinal
		if decl.Func.Synchronized {
			mods |= env.ModSynchronized
		}
		decl.Index = b.alloc(scope, decl, decl.Func.Name, types.Function, mods)
	}
}

// nested binds a statement in a position that does not open a list of its
// own, such as an if branch or a loop body.
func (b *Binder) nested(s ast.Statement, scope *env.CompilerEnvironment) {
	switch s.(type) {
	case *ast.VarDecl, *ast.FuncDecl, *ast.ClassDecl:
		b.errorf(s, "declaration must appear directly in a block")
		return
	}
	b.statement(s, scope)
}

func (b *Binder) block(n *ast.Block, scope *env.CompilerEnvironment) {
	if n == nil {
		return
	}
	inner := scope.Block()
	b.hoist(inner, n.Body)
	for _, stmt := range n.Body {
		b.statement(stmt, inner)
	}
	n.Size = inner.Size()
}

func (b *Binder) statement(node ast.Statement, scope *env.CompilerEnvironment) {
	switch n := node.(type) {
	case nil, *ast.Break, *ast.Continue, *ast.Empty:
	case *ast.ExprStmt:
		b.expression(n.Expr, scope)
	case *ast.VarDecl:
		b.expression(n.Init, scope)
		var mods env.Modifiers
		if n.Final {
			mods = env.ModFinal
		}
		n.Index = b.alloc(scope, n, n.Name, n.Type, mods)
	case *ast.FuncDecl:
		if _, ok := scope.Local(n.Func.Name); !ok {
			b.errorf(n, "function '%s' was not hoisted", n.Func.Name)
		}
		b.function(n.Func, scope)
	case *ast.ClassDecl:
		n.Index = b.alloc(scope, n, n.Class.ClassName, types.ClassObject, env.ModFinal)
	case *ast.Block:
		b.block(n, scope)
	case *ast.If:
		b.expression(n.Cond, scope)
		b.nested(n.Then, scope)
		b.nested(n.Else, scope)
	case *ast.While:
		b.expression(n.Cond, scope)
		b.nested(n.Body, scope)
	case *ast.DoWhile:
		b.nested(n.Body, scope)
		b.expression(n.Cond, scope)
	case *ast.For:
		loop := scope.Block()
		for _, init := range n.Init {
			b.statement(init, loop)
		}
		b.expression(n.Cond, loop)
		for _, step := range n.Step {
			b.expression(step, loop)
		}
		b.nested(n.Body, loop)
		n.Size = loop.Size()
	case *ast.ForIn:
		b.expression(n.Seq, scope)
		loop := scope.Block()
		n.Index = b.alloc(loop, n, n.Name, n.VarType, env.ModFinal)
		b.nested(n.Body, loop)
		n.Size = loop.Size()
	case *ast.Switch:
		b.expression(n.Subject, scope)
		arms := scope.Block()
		for _, c := range n.Cases {
			b.hoist(arms, c.Body)
		}
		for _, c := range n.Cases {
			b.expression(c.Guard, arms)
			for _, stmt := range c.Body {
				b.statement(stmt, arms)
			}
		}
		n.Size = arms.Size()
	case *ast.Try:
		b.block(n.Body, scope)
		for idx := range n.Catches {
			clause := &n.Catches[idx]
			handler := scope.Block()
			clause.Index = b.alloc(handler, n, clause.Name, clause.Type, 0)
			b.block(clause.Body, handler)
			clause.Size = handler.Size()
		}
		b.block(n.Finally, scope)
	case *ast.Throw:
		b.expression(n.Value, scope)
	case *ast.Return:
		b.expression(n.Value, scope)
	case *ast.Synchronized:
		b.expression(n.Guard, scope)
		b.block(n.Body, scope)
	default:
		b.errorf(node, "cannot bind %T", node)
	}
}

func (b *Binder) function(fn *ast.Function, scope *env.CompilerEnvironment) {
	call := scope.Function()
	for idx := range fn.Params {
		p := &fn.Params[idx]
		b.expression(p.Default, call)
		p.Index = b.alloc(call, fn, p.Name, p.Type, 0)
	}
	fn.Level = call.Level()
	b.block(fn.Body, call)
	fn.FrameSize = call.Size()
}

func (b *Binder) expression(node ast.Expression, scope *env.CompilerEnvironment) {
	switch n := node.(type) {
	case nil, *ast.Literal, *ast.Captured:
	case *ast.Var:
		b.reference(n, scope)
	case *ast.Assign:
		b.assignable(n.Target, scope)
		b.expression(n.Value, scope)
	case *ast.IncDec:
		b.assignable(n.Target, scope)
	case *ast.Function:
		b.function(n, scope)
	default:
		for _, child := range ast.Children(node) {
			if e, ok := child.(ast.Expression); ok {
				b.expression(e, scope)
			}
		}
	}
}

func (b *Binder) reference(n *ast.Var, scope *env.CompilerEnvironment) {
	addr, binding, ok := scope.Lookup(n.Name)
	if !ok {
		b.errorf(n, "undefined variable '%s'", n.Name)
		return
	}
	n.Addr, n.Decl, n.Bound = addr, binding.Type, true
}

// assignable binds an assignment target and rejects writes to names that are
// statically final.
func (b *Binder) assignable(target ast.Assignable, scope *env.CompilerEnvironment) {
	v, ok := target.(*ast.Var)
	if !ok {
		b.expression(target, scope)
		return
	}
	b.reference(v, scope)
	if !v.Bound {
		return
	}
	if _, binding, _ := scope.Lookup(v.Name); binding.Mods.Has(env.ModFinal) {
		b.errorf(v, "cannot assign to final variable '%s'", v.Name)
	}
}
