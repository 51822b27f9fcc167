package ast

import "fmt"

// Mapper rewrites one child. frames is the number of run-time frames the
// parent itself enters before the child runs; a Block child adds its own
// frame for its statements when it is mapped in turn.
type Mapper func(child Node, frames int) Node

// MapChildren applies fn to every direct child of n. When fn returns every
// child unchanged, n itself is returned; otherwise a new node is built with
// the same metadata and span.
func MapChildren(n Node, fn Mapper) Node {
	m := &mapping{fn: fn}
	out := m.node(n)
	if !m.changed {
		return n
	}
	SetSpan(out, n.Span())
	return out
}

type mapping struct {
	fn      Mapper
	changed bool
}

func (m *mapping) expr(e Expression, frames int) Expression {
	if e == nil {
		return nil
	}
	out, ok := m.fn(e, frames).(Expression)
	if !ok || out == nil {
		return e
	}
	if out != e {
		m.changed = true
	}
	return out
}

func (m *mapping) target(a Assignable, frames int) Assignable {
	out, ok := m.expr(a, frames).(Assignable)
	if !ok {
		return a
	}
	return out
}

func (m *mapping) stmt(s Statement, frames int) Statement {
	if s == nil {
		return nil
	}
	out, ok := m.fn(s, frames).(Statement)
	if !ok || out == nil {
		return s
	}
	if out != s {
		m.changed = true
	}
	return out
}

func (m *mapping) block(b *Block, frames int) *Block {
	if b == nil {
		return nil
	}
	out, ok := m.stmt(b, frames).(*Block)
	if !ok {
		return b
	}
	return out
}

func (m *mapping) exprs(in []Expression, frames int) []Expression {
	if in == nil {
		return nil
	}
	out := make([]Expression, len(in))
	for i, e := range in {
		out[i] = m.expr(e, frames)
	}
	return out
}

func (m *mapping) stmts(in []Statement, frames int) []Statement {
	if in == nil {
		return nil
	}
	out := make([]Statement, len(in))
	for i, s := range in {
		out[i] = m.stmt(s, frames)
	}
	return out
}

func (m *mapping) node(n Node) Node {
	switch n := n.(type) {
	case *Literal, *Var, *Captured, *Break, *Continue, *Empty, *ClassDecl:
		return n
	case *Binary:
		return NewBinary(n.Op, m.expr(n.Left, 0), m.expr(n.Right, 0))
	case *Unary:
		return NewUnary(n.Op, m.expr(n.Operand, 0))
	case *Logical:
		return NewLogical(n.Op, m.expr(n.Left, 0), m.expr(n.Right, 0))
	case *Conditional:
		return NewConditional(m.expr(n.Test, 0), m.expr(n.Then, 0), m.expr(n.Else, 0))
	case *Assign:
		return NewAssign(m.target(n.Target, 0), n.Op, m.expr(n.Value, 0))
	case *IncDec:
		return NewIncDec(m.target(n.Target, 0), n.Delta, n.Prefix)
	case *Call:
		return NewCall(m.expr(n.Callee, 0), m.exprs(n.Args, 0))
	case *Index:
		return NewIndex(m.expr(n.Target, 0), m.expr(n.Key, 0))
	case *Field:
		return NewField(m.expr(n.Target, 0), n.Name)
	case *Collection:
		return NewCollection(n.Kind, m.exprs(n.Elements, 0))
	case *MapLiteral:
		entries := make([]MapEntry, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = MapEntry{Key: m.expr(e.Key, 0), Value: m.expr(e.Value, 0)}
		}
		return NewMapLiteral(entries)
	case *Function:
		return m.function(n)
	case *New:
		return NewNew(m.expr(n.Class, 0), m.exprs(n.Args, 0))
	case *Cast:
		return NewCast(n.Target, m.expr(n.Operand, 0))
	case *InstanceOf:
		return NewInstanceOf(n.Target, m.expr(n.Operand, 0))

	case *ExprStmt:
		return NewExprStmt(m.expr(n.Expr, 0))
	case *VarDecl:
		d := NewVarDecl(n.Name, n.Type, n.Final, m.expr(n.Init, 0))
		d.Index = n.Index
		return d
	case *FuncDecl:
		fn, ok := m.expr(n.Func, 0).(*Function)
		if !ok {
			fn = n.Func
		}
		d := NewFuncDecl(fn)
		d.Index = n.Index
		return d
	case *Block:
		b := NewBlock(m.stmts(n.Body, 1))
		b.Size = n.Size
		return b
	case *If:
		return NewIf(m.expr(n.Cond, 0), m.stmt(n.Then, 0), m.stmt(n.Else, 0))
	case *While:
		return NewWhile(m.expr(n.Cond, 0), m.stmt(n.Body, 0))
	case *DoWhile:
		return NewDoWhile(m.stmt(n.Body, 0), m.expr(n.Cond, 0))
	case *For:
		f := NewFor(m.stmts(n.Init, 1), m.expr(n.Cond, 1), m.exprs(n.Step, 1), m.stmt(n.Body, 1))
		f.Size = n.Size
		return f
	case *ForIn:
		f := NewForIn(n.Name, n.VarType, m.expr(n.Seq, 0), m.stmt(n.Body, 1))
		f.Index, f.Size = n.Index, n.Size
		return f
	case *Switch:
		cases := make([]Case, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = Case{Guard: m.expr(c.Guard, 1), Body: m.stmts(c.Body, 1)}
		}
		sw := NewSwitch(m.expr(n.Subject, 0), cases)
		sw.Size = n.Size
		return sw
	case *Try:
		catches := make([]Catch, len(n.Catches))
		for i, c := range n.Catches {
			catches[i] = c
			catches[i].Body = m.block(c.Body, 1)
		}
		return NewTry(m.block(n.Body, 0), catches, m.block(n.Finally, 0))
	case *Throw:
		return NewThrow(m.expr(n.Value, 0))
	case *Return:
		return NewReturn(m.expr(n.Value, 0))
	case *Synchronized:
		return NewSynchronized(m.expr(n.Guard, 0), m.block(n.Body, 0))
	case *Program:
		p := NewProgram(m.stmts(n.Body, 0))
		p.Size, p.Globals = n.Size, n.Globals
		return p
	}
	panic(fmt.Sprintf("ast: cannot map children of %T", n))
}

// function maps defaults and body in the call frame.
func (m *mapping) function(n *Function) *Function {
	params := make([]Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = p
		params[i].Default = m.expr(p.Default, 1)
	}
	fn := NewFunction(n.Name, params, n.Return, m.block(n.Body, 1))
	fn.Synchronized, fn.Level, fn.FrameSize = n.Synchronized, n.Level, n.FrameSize
	SetSpan(fn, n.Span())
	return fn
}

// Children lists the direct children of n in evaluation order.
func Children(n Node) []Node {
	var out []Node
	MapChildren(n, func(child Node, _ int) Node {
		out = append(out, child)
		return child
	})
	return out
}
