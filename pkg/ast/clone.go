package ast

import "fmt"

// Clone deep-copies a tree. Type caches start empty in the copy. Captured
// references keep pointing at the same cells, and literal values are shared.
func Clone(n Node) Node {
	switch node := n.(type) {
	case nil:
		return nil
	case Expression:
		return CloneExpr(node)
	case Statement:
		return CloneStmt(node)
	case *Program:
		out := NewProgram(cloneStmts(node.Body))
		out.Size = node.Size
		out.Globals = append([]string(nil), node.Globals...)
		out.span = node.span
		return out
	}
	panic(fmt.Sprintf("ast: cannot clone %T", n))
}

func CloneExpr(e Expression) Expression {
	if e == nil {
		return nil
	}
	var out Expression
	switch n := e.(type) {
	case *Literal:
		out = NewLiteral(n.Value)
	case *Var:
		v := NewVar(n.Name)
		v.Addr, v.Decl, v.Bound = n.Addr, n.Decl, n.Bound
		out = v
	case *Captured:
		out = NewCaptured(n.Name, n.Cell)
	case *Binary:
		out = NewBinary(n.Op, CloneExpr(n.Left), CloneExpr(n.Right))
	case *Unary:
		out = NewUnary(n.Op, CloneExpr(n.Operand))
	case *Logical:
		out = NewLogical(n.Op, CloneExpr(n.Left), CloneExpr(n.Right))
	case *Conditional:
		out = NewConditional(CloneExpr(n.Test), CloneExpr(n.Then), CloneExpr(n.Else))
	case *Assign:
		out = NewAssign(cloneTarget(n.Target), n.Op, CloneExpr(n.Value))
	case *IncDec:
		out = NewIncDec(cloneTarget(n.Target), n.Delta, n.Prefix)
	case *Call:
		out = NewCall(CloneExpr(n.Callee), cloneExprs(n.Args))
	case *Index:
		out = NewIndex(CloneExpr(n.Target), CloneExpr(n.Key))
	case *Field:
		out = NewField(CloneExpr(n.Target), n.Name)
	case *Collection:
		out = NewCollection(n.Kind, cloneExprs(n.Elements))
	case *MapLiteral:
		entries := make([]MapEntry, len(n.Entries))
		for i, entry := range n.Entries {
			entries[i] = MapEntry{Key: CloneExpr(entry.Key), Value: CloneExpr(entry.Value)}
		}
		out = NewMapLiteral(entries)
	case *Function:
		out = cloneFunction(n)
	case *New:
		out = NewNew(CloneExpr(n.Class), cloneExprs(n.Args))
	case *Cast:
		out = NewCast(n.Target, CloneExpr(n.Operand))
	case *InstanceOf:
		out = NewInstanceOf(n.Target, CloneExpr(n.Operand))
	default:
		panic(fmt.Sprintf("ast: cannot clone expression %T", e))
	}
	SetSpan(out, e.Span())
	return out
}

func cloneTarget(a Assignable) Assignable {
	return CloneExpr(a).(Assignable)
}

func cloneFunction(n *Function) *Function {
	params := make([]Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = Param{Name: p.Name, Type: p.Type, Default: CloneExpr(p.Default), Index: p.Index}
	}
	fn := NewFunction(n.Name, params, n.Return, cloneBlock(n.Body))
	fn.Synchronized, fn.Level, fn.FrameSize = n.Synchronized, n.Level, n.FrameSize
	SetSpan(fn, n.Span())
	return fn
}

func cloneExprs(in []Expression) []Expression {
	if in == nil {
		return nil
	}
	out := make([]Expression, len(in))
	for i, e := range in {
		out[i] = CloneExpr(e)
	}
	return out
}

func cloneStmts(in []Statement) []Statement {
	if in == nil {
		return nil
	}
	out := make([]Statement, len(in))
	for i, s := range in {
		out[i] = CloneStmt(s)
	}
	return out
}

func cloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	return CloneStmt(b).(*Block)
}

func CloneStmt(s Statement) Statement {
	if s == nil {
		return nil
	}
	var out Statement
	switch n := s.(type) {
	case *ExprStmt:
		out = NewExprStmt(CloneExpr(n.Expr))
	case *VarDecl:
		d := NewVarDecl(n.Name, n.Type, n.Final, CloneExpr(n.Init))
		d.Index = n.Index
		out = d
	case *FuncDecl:
		d := NewFuncDecl(cloneFunction(n.Func))
		d.Index = n.Index
		out = d
	case *ClassDecl:
		d := NewClassDecl(n.Class)
		d.Index = n.Index
		out = d
	case *Block:
		b := NewBlock(cloneStmts(n.Body))
		b.Size = n.Size
		out = b
	case *If:
		out = NewIf(CloneExpr(n.Cond), CloneStmt(n.Then), CloneStmt(n.Else))
	case *While:
		out = NewWhile(CloneExpr(n.Cond), CloneStmt(n.Body))
	case *DoWhile:
		out = NewDoWhile(CloneStmt(n.Body), CloneExpr(n.Cond))
	case *For:
		f := NewFor(cloneStmts(n.Init), CloneExpr(n.Cond), cloneExprs(n.Step), CloneStmt(n.Body))
		f.Size = n.Size
		out = f
	case *ForIn:
		f := NewForIn(n.Name, n.VarType, CloneExpr(n.Seq), CloneStmt(n.Body))
		f.Index, f.Size = n.Index, n.Size
		out = f
	case *Switch:
		cases := make([]Case, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = Case{Guard: CloneExpr(c.Guard), Body: cloneStmts(c.Body)}
		}
		sw := NewSwitch(CloneExpr(n.Subject), cases)
		sw.Size = n.Size
		out = sw
	case *Try:
		catches := make([]Catch, len(n.Catches))
		for i, c := range n.Catches {
			catches[i] = Catch{Type: c.Type, Name: c.Name, Index: c.Index, Body: cloneBlock(c.Body), Size: c.Size}
		}
		out = NewTry(cloneBlock(n.Body), catches, cloneBlock(n.Finally))
	case *Throw:
		out = NewThrow(CloneExpr(n.Value))
	case *Return:
		out = NewReturn(CloneExpr(n.Value))
	case *Break:
		out = NewBreak()
	case *Continue:
		out = NewContinue()
	case *Synchronized:
		out = NewSynchronized(CloneExpr(n.Guard), cloneBlock(n.Body))
	case *Empty:
		out = NewEmpty()
	default:
		panic(fmt.Sprintf("ast: cannot clone statement %T", s))
	}
	SetSpan(out, s.Span())
	return out
}
