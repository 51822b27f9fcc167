package ast

import (
	"sync"
	"testing"

	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/types"
)

func TestTypeCacheRunsHookOnce(t *testing.T) {
	var cache TypeCache
	calls := 0
	hook := func() *types.Type {
		calls++
		return types.Long
	}
	var wg sync.WaitGroup
	results := make([]*types.Type, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(hook)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		if r != types.Long {
			t.Fatalf("expected long, got %s", r)
		}
	}
	if calls != 1 {
		t.Fatalf("expected hook to run once, ran %d times", calls)
	}
}

func TestExpressionTypeIsIdempotent(t *testing.T) {
	exprs := []Expression{
		Bin("+", Int(1), Long(2)),
		Bin("+", Str("a"), Int(1)),
		Bin("<", Int(1), Dbl(2)),
		Un("-", Dbl(1)),
		Cond(Bool(true), Int(1), Int(2)),
		List(Int(1), Int(2)),
		Idx(List(Str("x")), Int(0)),
		ID("unbound"),
	}
	want := []*types.Type{types.Long, types.String, types.Boolean, types.Double, types.Int, types.ListOf(types.Int), types.String, types.Any}
	for i, e := range exprs {
		first := e.Type()
		if first != e.Type() {
			t.Fatalf("%T: Type() returned different instances", e)
		}
		if first.String() != want[i].String() {
			t.Fatalf("%T: inferred %s, want %s", e, first, want[i])
		}
	}
}

func TestInvalidOperandsInferAny(t *testing.T) {
	e := Bin("-", Null(), Int(5))
	if e.Type() != types.Any {
		t.Fatalf("expected uninferable expression to cache any, got %s", e.Type())
	}
	if e.IsConst() {
		t.Fatalf("uninferable expression must not be constant")
	}
	if !Bin("*", Int(2), Int(3)).IsConst() {
		t.Fatalf("expected int product of literals to be constant")
	}
	if List(Int(1)).IsConst() {
		t.Fatalf("list literals are mutable")
	}
}

func TestControlTransfer(t *testing.T) {
	cases := []struct {
		stmt Statement
		want bool
	}{
		{Ret(nil), true},
		{Brk(), true},
		{Expr(Int(1)), false},
		{IfS(Bool(true), Ret(nil), nil), false},
		{IfS(Bool(true), Ret(nil), ThrowS(Str("x"))), true},
		{Blk(Expr(Int(1)), Cont()), true},
		{WhileS(Bool(true), Brk()), false},
		{TryS(Blk(Ret(nil)), []Catch{CatchS(nil, "e", Expr(Int(1)))}, nil), false},
		{TryS(Blk(Expr(Int(1))), nil, Blk(ThrowS(Str("x")))), true},
	}
	for i, tc := range cases {
		if got := tc.stmt.IsControlTransfer(); got != tc.want {
			t.Fatalf("case %d (%s): IsControlTransfer = %v, want %v", i, tc.stmt.NodeType(), got, tc.want)
		}
	}
	if !Expr(Int(1)).HasValue() || Let("x", nil).HasValue() {
		t.Fatalf("only expression statements have a value")
	}
}

func TestCloneProducesIndependentTree(t *testing.T) {
	v := NewBoundVar("x", env.Address{Index: 1, Depth: 2}, types.Int)
	orig := Blk(
		Expr(Set(v, Bin("+", v, Int(1)))),
		IfS(Bin(">", v, Int(3)), Ret(v), nil),
	)
	orig.Size = 4
	SetSpan(orig, Span{Start: Position{Line: 3, Column: 1}})

	copied := Clone(orig).(*Block)
	if copied == orig || copied.Size != 4 || copied.Span() != orig.Span() {
		t.Fatalf("expected a distinct block with the same size and span")
	}
	assign := copied.Body[0].(*ExprStmt).Expr.(*Assign)
	target := assign.Target.(*Var)
	if target == v || target.Addr != v.Addr || target.Decl != types.Int || !target.Bound {
		t.Fatalf("expected a bound copy of the variable, got %+v", target)
	}
	if assign.Type() != types.Int {
		t.Fatalf("expected copied assignment to infer int, got %s", assign.Type())
	}
	if _, ok := copied.Body[1].(*If).Else.(Statement); ok {
		t.Fatalf("expected missing else branch to stay nil")
	}
}
