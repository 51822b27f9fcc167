package interpreter

import (
	"context"
	"testing"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/binder"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

func TestCapturedCellOutlivesItsFrame(t *testing.T) {
	v, _ := mustExec(t,
		ast.Def("counter", nil,
			ast.Let("n", ast.Int(0)),
			ast.Ret(ast.Fn(nil, ast.Ret(ast.PreInc(ast.ID("n"))))),
		),
		ast.Let("c", ast.CallN("counter")),
		ast.Expr(ast.CallN("c")),
		ast.Expr(ast.CallN("c")),
		ast.Let("d", ast.CallN("counter")),
		ast.Expr(ast.CallN("d")),
		ast.Expr(ast.List(ast.CallN("c"), ast.CallN("d"))),
	)
	if got := runtime.ToString(v); got != "[3, 2]" {
		t.Fatalf("expected independent counters [3, 2], got %s", got)
	}
}

func TestNestedClosuresReachEveryLevel(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("base", ast.Int(100)),
		ast.Def("outer", []ast.Param{ast.P("a")},
			ast.Ret(ast.Fn([]ast.Param{ast.P("b")},
				ast.Ret(ast.Fn([]ast.Param{ast.P("c")},
					ast.Ret(ast.Bin("+", ast.ID("base"), ast.Bin("+", ast.ID("a"), ast.Bin("+", ast.ID("b"), ast.ID("c"))))),
				)),
			)),
		),
		ast.Expr(ast.CallE(ast.CallE(ast.CallN("outer", ast.Int(1)), ast.Int(10)), ast.Int(20))),
	)
	expectInt(t, v, 131)
}

func TestHoistedDeclarationsAreMutuallyRecursive(t *testing.T) {
	n := func() *ast.Var { return ast.ID("n") }
	v, _ := mustExec(t,
		ast.Def("isEven", []ast.Param{ast.P("n")},
			ast.IfS(ast.Bin("==", n(), ast.Int(0)), ast.Ret(ast.Bool(true)), nil),
			ast.Ret(ast.CallN("isOdd", ast.Bin("-", n(), ast.Int(1)))),
		),
		ast.Def("isOdd", []ast.Param{ast.P("n")},
			ast.IfS(ast.Bin("==", n(), ast.Int(0)), ast.Ret(ast.Bool(false)), nil),
			ast.Ret(ast.CallN("isEven", ast.Bin("-", n(), ast.Int(1)))),
		),
		ast.Expr(ast.List(ast.CallN("isEven", ast.Int(10)), ast.CallN("isOdd", ast.Int(7)))),
	)
	if got := runtime.ToString(v); got != "[true, true]" {
		t.Fatalf("expected [true, true], got %s", got)
	}
}

func TestRecursiveFunctionInsideBlock(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("out", ast.Null()),
		ast.Blk(
			ast.Def("fact", []ast.Param{ast.P("k")},
				ast.IfS(ast.Bin("<=", ast.ID("k"), ast.Int(1)), ast.Ret(ast.Int(1)), nil),
				ast.Ret(ast.Bin("*", ast.ID("k"), ast.CallN("fact", ast.Bin("-", ast.ID("k"), ast.Int(1))))),
			),
			ast.Expr(ast.Set(ast.ID("out"), ast.CallN("fact", ast.Int(5)))),
		),
		ast.Expr(ast.ID("out")),
	)
	expectInt(t, v, 120)
}

func TestLinkVarsIsIdempotent(t *testing.T) {
	decl := ast.Let("x", ast.Int(1))
	fn := ast.Fn(nil, ast.Ret(ast.ID("x")))
	prog := ast.Prog(decl, ast.Expr(fn))
	if err := binder.Bind(prog, GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	sess := New(Options{}).NewSession(context.Background())
	if _, _, err := sess.Run(prog); err != nil {
		t.Fatalf("run: %v", err)
	}

	linked, err := LinkVars(fn, sess.Root(), 0)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked == ast.Node(fn) {
		t.Fatalf("expected a rewritten function")
	}
	ret := linked.(*ast.Function).Body.Body[0].(*ast.Return)
	captured, ok := ret.Value.(*ast.Captured)
	if !ok {
		t.Fatalf("expected a captured reference, got %T", ret.Value)
	}
	if captured.Cell != sess.Root().At(decl.Index) {
		t.Fatalf("captured cell is not the root cell of x")
	}
	if _, isVar := fn.Body.Body[0].(*ast.Return).Value.(*ast.Var); !isVar {
		t.Fatalf("linking modified the original tree")
	}

	again, err := LinkVars(linked, sess.Root(), 0)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if again != linked {
		t.Fatalf("relinking changed the tree")
	}

	local := ast.Fn([]ast.Param{ast.P("a")}, ast.Ret(ast.ID("a")))
	if err := binder.Bind(ast.Prog(ast.Expr(local)), GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	same, err := LinkVars(local, sess.Root(), 0)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if same != ast.Node(local) {
		t.Fatalf("a function without outer references must link to itself")
	}
}

func TestDefaultParameters(t *testing.T) {
	def := ast.Def("f", []ast.Param{ast.P("a"), ast.PD("b", ast.ID("a"))},
		ast.Ret(ast.Bin("*", ast.ID("a"), ast.ID("b"))),
	)
	v, _ := mustExec(t, def, ast.Expr(ast.List(ast.CallN("f", ast.Int(3)), ast.CallN("f", ast.Int(3), ast.Int(1)))))
	if got := runtime.ToString(v); got != "[9, 3]" {
		t.Fatalf("expected [9, 3], got %s", got)
	}

	_, _, err := exec(t, Options{},
		ast.Def("g", []ast.Param{ast.P("a")}, ast.Ret(ast.ID("a"))),
		ast.Expr(ast.CallN("g", ast.Int(1), ast.Int(2))),
	)
	expectFault(t, err, runtime.FaultArity)

	v, _ = mustExec(t,
		ast.Def("h", []ast.Param{ast.P("a")}, ast.Ret(ast.ID("a"))),
		ast.Expr(ast.CallN("h")),
	)
	if !runtime.IsNull(v) {
		t.Fatalf("expected a missing argument to be null, got %s", runtime.ToString(v))
	}
}

func TestReturnTypeConvertsResult(t *testing.T) {
	v, _ := mustExec(t,
		ast.NewFuncDecl(ast.FnTyped("wide", nil, types.Long, ast.Ret(ast.Int(5)))),
		ast.Expr(ast.CallN("wide")),
	)
	if lv, ok := v.(runtime.LongValue); !ok || lv.Val != 5 {
		t.Fatalf("expected long 5, got %s", runtime.Describe(v))
	}

	_, _, err := exec(t, Options{},
		ast.NewFuncDecl(ast.FnTyped("num", nil, types.Int, ast.Ret(ast.Str("five")))),
		ast.Expr(ast.CallN("num")),
	)
	expectFault(t, err, runtime.FaultTypeMismatch)
}

func TestFallingOffTheEndReturnsVoid(t *testing.T) {
	v, _ := mustExec(t,
		ast.Def("noop", nil, ast.Expr(ast.Int(1))),
		ast.Expr(ast.CallN("noop")),
	)
	if _, ok := v.(runtime.VoidValue); !ok {
		t.Fatalf("expected void, got %s", runtime.Describe(v))
	}
}

func TestParameterTypesConvertArguments(t *testing.T) {
	v, _ := mustExec(t,
		ast.Def("half", []ast.Param{ast.PT("x", types.Double)}, ast.Ret(ast.Bin("/", ast.ID("x"), ast.Int(2)))),
		ast.Expr(ast.CallN("half", ast.Int(3))),
	)
	if d, ok := v.(runtime.DoubleValue); !ok || d.Val != 1.5 {
		t.Fatalf("expected 1.5, got %s %s", runtime.Describe(v), runtime.ToString(v))
	}
}

func TestSynchronizedFunctionCanRecurse(t *testing.T) {
	fn := ast.NewFunction("down", []ast.Param{ast.P("k")}, nil, ast.Blk(
		ast.IfS(ast.Bin("<=", ast.ID("k"), ast.Int(0)), ast.Ret(ast.Int(0)), nil),
		ast.Ret(ast.CallN("down", ast.Bin("-", ast.ID("k"), ast.Int(1)))),
	))
	fn.Synchronized = true
	v, _ := mustExec(t, ast.NewFuncDecl(fn), ast.Expr(ast.CallN("down", ast.Int(3))))
	expectInt(t, v, 0)
}

func TestClosureIsHostCallable(t *testing.T) {
	fn := ast.Fn([]ast.Param{ast.P("a"), ast.P("b")}, ast.Ret(ast.Bin("-", ast.ID("a"), ast.ID("b"))))
	v, _ := mustExec(t, ast.Expr(fn))
	c, ok := v.(*Closure)
	if !ok {
		t.Fatalf("expected a closure, got %T", v)
	}
	if c.Name() != "<anonymous>" || c.Arity() != 2 {
		t.Fatalf("unexpected closure %s/%d", c.Name(), c.Arity())
	}
	out, err := c.Call(nil, []runtime.Value{runtime.IntValue{Val: 7}, runtime.IntValue{Val: 2}})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	expectInt(t, out, 5)
}

func TestCallBeforeDeclarationRunsIsUndefined(t *testing.T) {
	_, _, err := exec(t, Options{},
		ast.Expr(ast.CallN("f")),
		ast.Def("f", nil, ast.Ret(ast.Int(1))),
	)
	f := expectFault(t, err, runtime.FaultUndefined)
	if f.Subject != "f" {
		t.Fatalf("expected the function to be named, got %+v", f)
	}

	// A closure that captured the hoisted cell sees the same fault.
	_, _, err = exec(t, Options{},
		ast.Def("g", nil, ast.Ret(ast.CallN("h"))),
		ast.Expr(ast.CallN("g")),
		ast.Def("h", nil, ast.Ret(ast.Int(2))),
	)
	f = expectFault(t, err, runtime.FaultUndefined)
	if f.Subject != "h" {
		t.Fatalf("expected h to be named, got %+v", f)
	}

	v, _ := mustExec(t,
		ast.Def("g", nil, ast.Ret(ast.CallN("h"))),
		ast.Def("h", nil, ast.Ret(ast.Int(2))),
		ast.Expr(ast.CallN("g")),
	)
	expectInt(t, v, 2)
}
