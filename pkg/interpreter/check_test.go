package interpreter

import (
	"strings"
	"testing"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/types"
)

func messages(ds Diagnostics) string { return ds.String() }

func TestCheckCodeReportsProblems(t *testing.T) {
	cases := []struct {
		name string
		stmt ast.Statement
		ret  *types.Type
		want string
	}{
		{"unreachable", ast.Blk(ast.Ret(ast.Int(1)), ast.Expr(ast.Int(2))), nil, "unreachable statement after return"},
		{"return mismatch", ast.Blk(ast.Ret(ast.Str("x"))), types.Int, "cannot return string"},
		{"condition", ast.IfS(ast.Int(1), ast.Expr(ast.Int(2)), nil), nil, "condition of if must be boolean"},
		{"break", ast.Brk(), nil, "break outside of a loop or switch"},
		{"continue in switch", ast.SwitchS(ast.Int(1), ast.CaseS(ast.Int(1), ast.Cont())), nil, "continue outside of a loop"},
		{"nested function", ast.Expr(ast.FnTyped("f", nil, types.Int, ast.Ret(ast.Bool(true)))), nil, "cannot return boolean"},
	}
	interp := New(Options{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := interp.CheckCode(tc.stmt, tc.ret)
			if !diags.HasErrors() {
				t.Fatalf("expected an error, got %q", messages(diags))
			}
			if !strings.Contains(messages(diags), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, messages(diags))
			}
		})
	}
}

func TestCheckCodeAcceptsValidCode(t *testing.T) {
	cases := []struct {
		name string
		stmt ast.Statement
		ret  *types.Type
	}{
		{"convertible return", ast.Blk(ast.Ret(ast.Dbl(1))), types.Int},
		{"break in loop", ast.WhileS(ast.Bool(true), ast.Brk()), nil},
		{"break in switch", ast.SwitchS(ast.Int(1), ast.CaseS(ast.Int(1), ast.Brk())), nil},
		{"return anything", ast.Blk(ast.Ret(ast.List())), nil},
	}
	interp := New(Options{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, diags := interp.CheckCode(tc.stmt, tc.ret); len(diags) > 0 {
				t.Fatalf("unexpected diagnostics %q", messages(diags))
			}
		})
	}
}

func TestCheckCodeInfersReturnType(t *testing.T) {
	interp := New(Options{})
	if got, _ := interp.CheckCode(ast.Ret(ast.Int(1)), nil); got.String() != "int" {
		t.Fatalf("expected int, got %s", got)
	}
	if got, _ := interp.CheckCode(ast.Expr(ast.Int(1)), nil); got != types.Void {
		t.Fatalf("expected void, got %s", got)
	}
}

func TestInferenceFailuresAreWarningsUnlessStrict(t *testing.T) {
	stmt := ast.Expr(ast.Bin("-", ast.Null(), ast.Int(5)))

	_, diags := New(Options{}).CheckCode(stmt, nil)
	if len(diags) != 1 || diags[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %q", messages(diags))
	}
	if !strings.HasPrefix(diags[0].String(), "warning: ") {
		t.Fatalf("unexpected rendering %q", diags[0].String())
	}

	_, diags = New(Options{WarningsAsErrors: true}).CheckCode(stmt, nil)
	if !diags.HasErrors() || diags.Err() == nil {
		t.Fatalf("expected the warning to become an error, got %q", messages(diags))
	}
}
