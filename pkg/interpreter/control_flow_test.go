package interpreter

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/binder"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

func say(s string) ast.Statement { return ast.Expr(ast.CallN("print", ast.Str(s))) }

func TestForInOverEmptySequenceAllocatesNothing(t *testing.T) {
	prog := ast.Prog(ast.ForEach("x", ast.List(), ast.Expr(ast.CallN("print", ast.ID("x")))))
	if err := binder.Bind(prog, GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	sess := New(Options{}).NewSession(context.Background())
	v, _, err := sess.Run(prog)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !runtime.IsNull(v) {
		t.Fatalf("expected null, got %s", runtime.ToString(v))
	}
	stats := sess.Context().Stats()
	if stats.Frames != 1 {
		t.Fatalf("expected only the root frame, got %d frames", stats.Frames)
	}
	if stats.Cells != int64(len(GlobalNames())) {
		t.Fatalf("expected only builtin cells, got %d", stats.Cells)
	}
}

func TestForInCreatesOneLoopFrame(t *testing.T) {
	prog := ast.Prog(ast.NewForIn("x", nil, ast.List(ast.Int(1), ast.Int(2), ast.Int(3)),
		ast.Expr(ast.CallN("print", ast.ID("x")))))
	if err := binder.Bind(prog, GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	sess := New(Options{Stdout: &discard{}}).NewSession(context.Background())
	if _, _, err := sess.Run(prog); err != nil {
		t.Fatalf("run: %v", err)
	}
	stats := sess.Context().Stats()
	if stats.Frames != 2 {
		t.Fatalf("expected root and loop frames, got %d", stats.Frames)
	}
	if stats.Cells != int64(len(GlobalNames()))+1 {
		t.Fatalf("expected one counter cell, got %d cells", stats.Cells)
	}
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestFinallyThrowReplacesHandlerThrow(t *testing.T) {
	_, _, err := exec(t, Options{},
		ast.TryS(
			ast.Blk(ast.ThrowS(ast.Str("A"))),
			[]ast.Catch{ast.CatchS(nil, "e", ast.ThrowS(ast.Str("B")))},
			ast.Blk(ast.ThrowS(ast.Str("C"))),
		),
	)
	var sig *ThrowSignal
	if !errors.As(err, &sig) {
		t.Fatalf("expected a throw, got %v", err)
	}
	if s, ok := sig.Value.(runtime.StringValue); !ok || s.Val != "C" {
		t.Fatalf("expected C to propagate, got %s", runtime.ToString(sig.Value))
	}
}

func TestCaughtThrowRunsFinallyAndCompletes(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("log", ast.Str("")),
		ast.TryS(
			ast.Blk(ast.ThrowS(ast.Str("A"))),
			[]ast.Catch{ast.CatchS(nil, "e", ast.Expr(ast.SetOp("+", ast.ID("log"), ast.ID("e"))))},
			ast.Blk(ast.Expr(ast.SetOp("+", ast.ID("log"), ast.Str("fin")))),
		),
		ast.Expr(ast.ID("log")),
	)
	if got := runtime.ToString(v); got != "Afin" {
		t.Fatalf("expected Afin, got %s", got)
	}
}

func TestCatchClausesMatchInOrder(t *testing.T) {
	decl := ast.Class("Oops", runtime.ExceptionClass)
	errType := types.InstanceOf(decl.Class)
	_, out := mustExec(t,
		decl,
		ast.TryS(
			ast.Blk(ast.ThrowS(ast.Obj(ast.ID("Oops"), ast.Str("bad")))),
			[]ast.Catch{
				ast.CatchS(types.Fault, "f", say("fault")),
				ast.CatchS(errType, "e", say("oops")),
				ast.CatchS(nil, "x", say("any")),
			},
			nil,
		),
	)
	if out != "oops\n" {
		t.Fatalf("expected the Oops clause only, got %q", out)
	}
}

func TestSwitchFallsThroughUntilBreak(t *testing.T) {
	cases := []struct {
		name    string
		subject int32
		want    string
	}{
		{"first arm falls through", 0, "zero\none\ndefault\ntwo\n"},
		{"match falls into default", 1, "one\ndefault\ntwo\n"},
		{"default reached before a later guard", 3, "default\ntwo\n"},
		{"no match", 9, "default\ntwo\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, out := mustExec(t,
				ast.SwitchS(ast.Int(tc.subject),
					ast.CaseS(ast.Int(0), say("zero")),
					ast.CaseS(ast.Int(1), say("one")),
					ast.Default(say("default")),
					ast.CaseS(ast.Int(2), say("two"), ast.Brk()),
					ast.CaseS(ast.Int(3), say("three")),
				),
			)
			if out != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, out)
			}
		})
	}
}

func TestSwitchTrailingDefaultRunsAfterMatch(t *testing.T) {
	_, out := mustExec(t,
		ast.SwitchS(ast.Int(3),
			ast.CaseS(ast.Int(2), say("two")),
			ast.CaseS(ast.Int(3), say("three")),
			ast.Default(say("default")),
		),
	)
	if out != "three\ndefault\n" {
		t.Fatalf("expected the match to fall into default, got %q", out)
	}
}

func TestSwitchWithoutMatchingArm(t *testing.T) {
	_, out := mustExec(t, ast.SwitchS(ast.Int(9), ast.CaseS(ast.Int(1), say("one"))))
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestForLoopContinueAndBreak(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("total", ast.Int(0)),
		ast.ForS(
			[]ast.Statement{ast.Let("i", ast.Int(0))},
			ast.Bin("<", ast.ID("i"), ast.Int(10)),
			[]ast.Expression{ast.Inc(ast.ID("i"))},
			ast.IfS(ast.Bin("==", ast.Bin("%", ast.ID("i"), ast.Int(2)), ast.Int(1)), ast.Cont(), nil),
			ast.IfS(ast.Bin(">", ast.ID("i"), ast.Int(6)), ast.Brk(), nil),
			ast.Expr(ast.SetOp("+", ast.ID("total"), ast.ID("i"))),
		),
		ast.Expr(ast.ID("total")),
	)
	expectInt(t, v, 12)
}

func TestWhileAndDoWhile(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("n", ast.Int(0)),
		ast.WhileS(ast.Bin("<", ast.ID("n"), ast.Int(5)), ast.Expr(ast.Inc(ast.ID("n")))),
		ast.DoS(ast.Bool(false), ast.Expr(ast.SetOp("*", ast.ID("n"), ast.Int(3)))),
		ast.Expr(ast.ID("n")),
	)
	expectInt(t, v, 15)

	_, _, err := exec(t, Options{}, ast.WhileS(ast.Int(1)))
	expectFault(t, err, runtime.FaultTypeMismatch)
}

func TestReturnPassesThroughFinally(t *testing.T) {
	v, out := mustExec(t,
		ast.Def("f", nil, ast.TryS(ast.Blk(ast.Ret(ast.Int(1))), nil, ast.Blk(say("fin")))),
		ast.Expr(ast.CallN("f")),
	)
	expectInt(t, v, 1)
	if out != "fin\n" {
		t.Fatalf("expected finally to run, got %q", out)
	}

	v, _ = mustExec(t,
		ast.Def("g", nil, ast.TryS(ast.Blk(ast.Ret(ast.Int(1))), nil, ast.Blk(ast.Ret(ast.Int(2))))),
		ast.Expr(ast.CallN("g")),
	)
	expectInt(t, v, 2)
}

func TestBreakLeavesLoopThroughFinally(t *testing.T) {
	_, out := mustExec(t,
		ast.WhileS(ast.Bool(true),
			ast.TryS(ast.Blk(ast.Brk()), []ast.Catch{ast.CatchS(nil, "e", say("caught"))}, ast.Blk(say("fin"))),
		),
		say("after"),
	)
	if out != "fin\nafter\n" {
		t.Fatalf("expected break to bypass catch, got %q", out)
	}
}

func TestFaultsAreCaughtOnlyAsFault(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("code", ast.Null()),
		ast.TryS(
			ast.Blk(ast.Expr(ast.Bin("/", ast.Int(1), ast.Int(0)))),
			[]ast.Catch{ast.CatchS(types.Fault, "e", ast.Expr(ast.Set(ast.ID("code"), ast.Fld(ast.ID("e"), "code"))))},
			nil,
		),
		ast.Expr(ast.ID("code")),
	)
	if got := runtime.ToString(v); got != "Arithmetic" {
		t.Fatalf("expected Arithmetic, got %s", got)
	}

	_, _, err := exec(t, Options{},
		ast.TryS(
			ast.Blk(ast.Expr(ast.Bin("/", ast.Int(1), ast.Int(0)))),
			[]ast.Catch{
				ast.CatchS(nil, "e", say("any")),
				ast.CatchS(types.InstanceOf(runtime.ExceptionClass), "e", say("exception")),
			},
			nil,
		),
	)
	expectFault(t, err, runtime.FaultArithmetic)
}

func TestCancellationIsNeverCaught(t *testing.T) {
	prog := ast.Prog(ast.TryS(
		ast.Blk(ast.WhileS(ast.Bool(true), ast.Expr(ast.Int(1)))),
		[]ast.Catch{ast.CatchS(types.Fault, "e", say("caught"))},
		nil,
	))
	if err := binder.Bind(prog, GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	sess := New(Options{}).NewSession(context.Background())
	sess.Context().Interrupt()
	_, _, err := sess.Run(prog)
	expectFault(t, err, runtime.FaultCancelled)
}

func TestHostContextCancelsLoops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prog := ast.Prog(ast.ForS(nil, nil, nil, ast.Expr(ast.Int(1))))
	if err := binder.Bind(prog, GlobalNames()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	_, _, err := New(Options{}).Execute(ctx, prog)
	f := expectFault(t, err, runtime.FaultCancelled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the host cause to be kept, got %v", f)
	}
}

func TestSynchronizedIsReentrant(t *testing.T) {
	_, out := mustExec(t,
		ast.Let("o", ast.List()),
		ast.Sync(ast.ID("o"), ast.Sync(ast.ID("o"), say("inside"))),
		ast.Sync(ast.ID("o"), say("again")),
	)
	if out != "inside\nagain\n" {
		t.Fatalf("unexpected output %q", out)
	}

	_, _, err := exec(t, Options{}, ast.Sync(ast.Null(), say("never")))
	expectFault(t, err, runtime.FaultTypeMismatch)
}

// expectMonitorFree fails unless a second context can take v's monitor.
func expectMonitorFree(t *testing.T, v runtime.Value) {
	t.Helper()
	other := runtime.NewContext(context.Background(), runtime.Options{})
	done := make(chan error, 1)
	go func() {
		release, err := other.Lock(v)
		if err == nil {
			release()
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("lock %s: %v", runtime.Describe(v), err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("monitor of %s is still held", runtime.Describe(v))
	}
}

func TestSynchronizedReleasesOnEveryExit(t *testing.T) {
	cases := []struct {
		name string
		body []ast.Statement
	}{
		{"normal", []ast.Statement{
			ast.Sync(ast.ID("o"), say("x")),
		}},
		{"throw", []ast.Statement{
			ast.TryS(ast.Blk(ast.Sync(ast.ID("o"), ast.ThrowS(ast.Str("boom")))),
				[]ast.Catch{ast.CatchS(nil, "e", say("caught"))}, nil),
		}},
		{"fault", []ast.Statement{
			ast.TryS(ast.Blk(ast.Sync(ast.ID("o"), ast.Expr(ast.Bin("/", ast.Int(1), ast.Int(0))))),
				[]ast.Catch{ast.CatchS(types.Fault, "f", say("caught"))}, nil),
		}},
		{"return", []ast.Statement{
			ast.Def("f", nil, ast.Sync(ast.ID("o"), ast.Ret(ast.Int(1)))),
			ast.Expr(ast.CallN("f")),
		}},
		{"break", []ast.Statement{
			ast.WhileS(ast.Bool(true), ast.Sync(ast.ID("o"), ast.Brk())),
		}},
		{"continue", []ast.Statement{
			ast.Let("n", ast.Int(0)),
			ast.WhileS(ast.Bin("<", ast.ID("n"), ast.Int(2)),
				ast.Expr(ast.Inc(ast.ID("n"))),
				ast.Sync(ast.ID("o"), ast.Cont()),
			),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := append([]ast.Statement{ast.Let("o", ast.List())}, tc.body...)
			body = append(body, ast.Expr(ast.ID("o")))
			v, _ := mustExec(t, body...)
			expectMonitorFree(t, v)
		})
	}
}

func TestSynchronizedFunctionReleasesWhenItThrows(t *testing.T) {
	decl := ast.Def("f", nil, ast.ThrowS(ast.Str("boom")))
	decl.Func.Synchronized = true
	v, out := mustExec(t,
		decl,
		ast.TryS(ast.Blk(ast.Expr(ast.CallN("f"))), []ast.Catch{ast.CatchS(nil, "e", say("caught"))}, nil),
		ast.Expr(ast.ID("f")),
	)
	if out != "caught\n" {
		t.Fatalf("expected the throw to be caught, got %q", out)
	}
	expectMonitorFree(t, v)
}

func TestThrownNullSkipsFaultClauses(t *testing.T) {
	_, out := mustExec(t,
		ast.TryS(ast.Blk(ast.ThrowS(ast.Null())),
			[]ast.Catch{
				ast.CatchS(types.Fault, "f", say("fault")),
				ast.CatchS(types.InstanceOf(runtime.ExceptionClass), "e", say("exception")),
			},
			nil,
		),
	)
	if out != "exception\n" {
		t.Fatalf("expected the Exception clause, got %q", out)
	}
}

func TestForInClosuresShareTheCounterCell(t *testing.T) {
	v, _ := mustExec(t,
		ast.Let("first", ast.Null()),
		ast.ForEach("x", ast.List(ast.Int(1), ast.Int(2)),
			ast.IfS(ast.Bin("==", ast.ID("x"), ast.Int(1)),
				ast.Expr(ast.Set(ast.ID("first"), ast.Fn(nil, ast.Ret(ast.ID("x"))))), nil),
		),
		ast.Expr(ast.CallN("first")),
	)
	expectInt(t, v, 2)
}

func TestControlEscapesAtBoundaries(t *testing.T) {
	_, _, err := exec(t, Options{}, ast.Brk())
	expectFault(t, err, runtime.FaultControlEscape)

	_, _, err = exec(t, Options{},
		ast.Def("f", nil, ast.Cont()),
		ast.Expr(ast.CallN("f")),
	)
	f := expectFault(t, err, runtime.FaultControlEscape)
	if f.Subject != "f" {
		t.Fatalf("expected the function to be named, got %+v", f)
	}
}

func TestCallDepthIsBounded(t *testing.T) {
	_, _, err := exec(t, Options{MaxDepth: 32},
		ast.Def("r", nil, ast.Ret(ast.CallN("r"))),
		ast.Expr(ast.CallN("r")),
	)
	expectFault(t, err, runtime.FaultDepth)
}
