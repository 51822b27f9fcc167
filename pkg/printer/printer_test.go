package printer

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/types"
)

// expectText fails with a character diff when got differs from want.
func expectText(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	t.Fatalf("rendered text differs (-want +got):\n%s", dmp.DiffPrettyText(diffs))
}

func sampleProgram() *ast.Program {
	return ast.Prog(
		ast.Let("x", ast.Bin("*", ast.Bin("+", ast.Int(1), ast.Int(2)), ast.Int(3))),
		ast.Def("add", []ast.Param{ast.P("a"), ast.PD("b", ast.Int(1))},
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		),
		ast.IfS(ast.Bin("<", ast.ID("x"), ast.Int(10)),
			ast.Blk(ast.Expr(ast.CallN("print", ast.Str("small")))),
			ast.Blk(ast.Expr(ast.Inc(ast.ID("x")))),
		),
		ast.ForEach("i", ast.List(ast.Int(1), ast.Long(2)), ast.Expr(ast.CallN("print", ast.ID("i")))),
		ast.TryS(
			ast.Blk(ast.ThrowS(ast.Str("boom"))),
			[]ast.Catch{ast.CatchS(types.Fault, "e", ast.Ret(nil))},
			ast.Blk(),
		),
	)
}

func TestProgramGolden(t *testing.T) {
	want := `var x = (1 + 2) * 3;
function add(a, b = 1) {
    return a + b;
}
if (x < 10) {
    print("small");
} else {
    x++;
}
for (i in [1, 2L]) {
    print(i);
}
try {
    throw "boom";
} catch (instance:Fault e) {
    return;
} finally {}`
	expectText(t, want, String(sampleProgram(), nil, DefaultFormat(), 0))
}

func TestFormatOptions(t *testing.T) {
	stmt := ast.WhileS(ast.Bin(">", ast.ID("n"), ast.Int(0)),
		ast.Expr(ast.SetOp("-", ast.ID("n"), ast.Int(1))),
		ast.IfS(ast.Bool(true), ast.Brk(), nil),
	)
	want := "\twhile (n>0)\n\t{\n\t\tn-=1;\n\t\tif (true)\n\t\t\tbreak;\n\t}"
	cfg := FormatConfig{Tabs: true, BraceNewline: true}
	expectText(t, want, String(stmt, nil, cfg, 1))
}

func TestSyntaxTableRespells(t *testing.T) {
	syntax := &SyntaxTable{
		Keywords:  map[string]string{"var": "let", "null": "nil", "function": "fn"},
		Operators: map[string]string{"&&": "and", "!": "not"},
	}
	prog := ast.Prog(
		ast.Let("ok", ast.And(ast.Un("!", ast.ID("a")), ast.Bin("==", ast.ID("b"), ast.Null()))),
		ast.Expr(ast.Fn([]ast.Param{ast.PT("n", types.Int)}, ast.Ret(ast.ID("n")))),
	)
	want := "let ok = not a and b == nil;\nfn(n: int) {\n  return n;\n};"
	expectText(t, want, String(prog, syntax, FormatConfig{Indent: 2, OperatorSpacing: true}, 0))
}

func TestExpressionPrecedence(t *testing.T) {
	cases := []struct {
		expr ast.Expression
		want string
	}{
		{ast.Bin("-", ast.Int(1), ast.Bin("-", ast.Int(2), ast.Int(3))), "1 - (2 - 3)"},
		{ast.Bin("-", ast.Bin("-", ast.Int(1), ast.Int(2)), ast.Int(3)), "1 - 2 - 3"},
		{ast.Un("-", ast.Int(-4)), "- -4"},
		{ast.Cond(ast.Or(ast.ID("a"), ast.ID("b")), ast.Int(1), ast.Cond(ast.ID("c"), ast.Int(2), ast.Int(3))), "a || b ? 1 : c ? 2 : 3"},
		{ast.Fld(ast.Bin("+", ast.ID("p"), ast.ID("q")), "x"), "(p + q).x"},
		{ast.As(types.Long, ast.Idx(ast.ID("xs"), ast.Int(0))), "(long) xs[0]"},
		{ast.Is(types.ListOf(types.String), ast.ID("v")), "v instanceof list<string>"},
		{ast.Obj(ast.ID("Point"), ast.Int(1), ast.Chr('y')), "new Point(1, 'y')"},
		{ast.Map(ast.Entry(ast.Str("k"), ast.SetOf(ast.Int(1)))), `{"k": #{1}}`},
		{ast.CallE(ast.Fn(nil)), "(function() {})()"},
		{ast.Set(ast.ID("a"), ast.Set(ast.ID("b"), ast.PreInc(ast.ID("c")))), "a = b = ++c"},
	}
	for _, tc := range cases {
		got := String(tc.expr, nil, DefaultFormat(), 0)
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
