package binder

import (
	"strings"
	"testing"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/types"
)

var testGlobals = []string{"print", "len"}

func expectAddr(t *testing.T, v *ast.Var, want env.Address) {
	t.Helper()
	if !v.Bound {
		t.Fatalf("%s was not bound", v.Name)
	}
	if v.Addr != want {
		t.Fatalf("%s: expected %s, got %s", v.Name, want, v.Addr)
	}
}

func expectBindError(t *testing.T, prog *ast.Program, want string) {
	t.Helper()
	err := Bind(prog, testGlobals)
	if err == nil {
		t.Fatalf("expected an error containing %q", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %q", want, err.Error())
	}
}

func TestBlockAddresses(t *testing.T) {
	outer := ast.Let("a", ast.Int(1))
	inner := ast.Let("b", ast.Int(2))
	refA, refB := ast.ID("a"), ast.ID("b")
	block := ast.Blk(inner, ast.Expr(ast.Bin("+", refA, refB)))
	prog := ast.Prog(outer, block)
	if err := Bind(prog, testGlobals); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if outer.Index != len(testGlobals) || prog.Size != len(testGlobals)+1 {
		t.Fatalf("expected a after the globals, got index %d size %d", outer.Index, prog.Size)
	}
	if inner.Index != 0 || block.Size != 1 {
		t.Fatalf("expected b in slot 0 of a one-slot block, got %d/%d", inner.Index, block.Size)
	}
	expectAddr(t, refA, env.Address{Index: len(testGlobals), Depth: 1, Level: 0})
	expectAddr(t, refB, env.Address{Index: 0, Depth: 0, Level: 0})
	if len(prog.Globals) != len(testGlobals) {
		t.Fatalf("expected globals recorded on the program, got %v", prog.Globals)
	}
}

func TestFunctionScopes(t *testing.T) {
	refP, refPrint, refLocal := ast.ID("p"), ast.ID("print"), ast.ID("local")
	fn := ast.NewFunction("f", []ast.Param{ast.P("p")}, nil, ast.Blk(
		ast.Let("local", refP),
		ast.Expr(ast.CallE(refPrint, refLocal)),
	))
	prog := ast.Prog(ast.NewFuncDecl(fn))
	if err := Bind(prog, testGlobals); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if fn.Level != 1 || fn.FrameSize != 1 || fn.Params[0].Index != 0 {
		t.Fatalf("unexpected function layout level=%d frame=%d param=%d", fn.Level, fn.FrameSize, fn.Params[0].Index)
	}
	expectAddr(t, refP, env.Address{Index: 0, Depth: 1, Level: 1})
	expectAddr(t, refLocal, env.Address{Index: 0, Depth: 0, Level: 1})
	expectAddr(t, refPrint, env.Address{Index: 0, Depth: 2, Level: 0})
	if fn.Body.Size != 1 {
		t.Fatalf("expected one slot in the body block, got %d", fn.Body.Size)
	}
}

func TestLoopAndHandlerScopes(t *testing.T) {
	refI, refE := ast.ID("i"), ast.ID("e")
	loop := ast.ForEach("i", ast.List(), ast.Expr(refI))
	try := ast.TryS(ast.Blk(), []ast.Catch{ast.CatchS(types.Any, "e", ast.Expr(refE))}, nil)
	prog := ast.Prog(loop, try)
	if err := Bind(prog, testGlobals); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectAddr(t, refI, env.Address{Index: 0, Depth: 1, Level: 0})
	expectAddr(t, refE, env.Address{Index: 0, Depth: 1, Level: 0})
	if loop.Size != 1 || try.Catches[0].Size != 1 {
		t.Fatalf("expected one-slot loop and handler frames")
	}
}

func TestFunctionsAreHoisted(t *testing.T) {
	ref := ast.ID("later")
	decl := ast.Def("later", nil)
	prog := ast.Prog(ast.Expr(ast.CallE(ref)), decl)
	if err := Bind(prog, testGlobals); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectAddr(t, ref, env.Address{Index: decl.Index, Depth: 0, Level: 0})
}

func TestBindErrors(t *testing.T) {
	cases := []struct {
		name string
		body []ast.Statement
		want string
	}{
		{"undefined", []ast.Statement{ast.Expr(ast.ID("nope"))}, "undefined variable 'nope'"},
		{"self initializer", []ast.Statement{ast.Let("x", ast.ID("x"))}, "undefined variable 'x'"},
		{"redeclared", []ast.Statement{ast.Let("x", nil), ast.Let("x", nil)}, "already declared"},
		{"final", []ast.Statement{ast.Final("k", ast.Int(1)), ast.Expr(ast.Inc(ast.ID("k")))}, "cannot assign to final variable 'k'"},
		{"builtin", []ast.Statement{ast.Expr(ast.Set(ast.ID("print"), ast.Null()))}, "cannot assign to final variable 'print'"},
		{"loop variable", []ast.Statement{ast.ForEach("i", ast.List(), ast.Expr(ast.Set(ast.ID("i"), ast.Int(1))))}, "cannot assign to final variable 'i'"},
		{"nested declaration", []ast.Statement{ast.IfS(ast.Bool(true), ast.Let("x", nil), nil)}, "declaration must appear directly in a block"},
		{"catch variable scope", []ast.Statement{
			ast.TryS(ast.Blk(), []ast.Catch{ast.CatchS(nil, "e")}, nil),
			ast.Expr(ast.ID("e")),
		}, "undefined variable 'e'"},
		{"parameter default order", []ast.Statement{
			ast.Def("f", []ast.Param{ast.PD("a", ast.ID("b")), ast.P("b")}),
		}, "undefined variable 'b'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectBindError(t, ast.Prog(tc.body...), tc.want)
		})
	}
}

func TestShadowingInInnerScope(t *testing.T) {
	ref := ast.ID("x")
	prog := ast.Prog(ast.Let("x", ast.Int(1)), ast.Blk(ast.Let("x", ast.Int(2)), ast.Expr(ref)))
	if err := Bind(prog, testGlobals); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectAddr(t, ref, env.Address{Index: 0, Depth: 0, Level: 0})
}

func TestFailedBindRollsBackRootNames(t *testing.T) {
	b := New(testGlobals)
	bad := ast.Prog(ast.Let("x", ast.Int(1)), ast.Expr(ast.ID("missing")))
	if err := b.Bind(bad); err == nil {
		t.Fatalf("expected the first program to fail")
	}
	if _, ok := b.Root().Local("x"); ok {
		t.Fatalf("x should have been removed after the failed bind")
	}

	decl := ast.Let("x", ast.Int(2))
	good := ast.Prog(decl)
	if err := b.Bind(good); err != nil {
		t.Fatalf("rebinding x: %v", err)
	}
	if decl.Index != len(testGlobals)+1 {
		t.Fatalf("expected the removed slot to stay reserved, got index %d", decl.Index)
	}

	ref := ast.ID("x")
	if err := b.Bind(ast.Prog(ast.Expr(ref))); err != nil {
		t.Fatalf("later program: %v", err)
	}
	expectAddr(t, ref, env.Address{Index: decl.Index, Depth: 0, Level: 0})
}
