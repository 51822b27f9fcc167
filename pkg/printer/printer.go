package printer

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Binding strength, weakest first.
const (
	precLowest = iota
	precAssign
	precCond
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelation
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrec = map[string]int{
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"==": precEquality, "!=": precEquality, "=~": precEquality,
	"<": precRelation, "<=": precRelation, ">": precRelation, ">=": precRelation,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

// String renders node. Statements and programs start at the given
// indentation level; the result has no trailing newline.
func String(node ast.Node, syntax *SyntaxTable, cfg FormatConfig, indent int) string {
	if syntax == nil {
		syntax = DefaultSyntax()
	}
	p := &printer{buf: new(bytes.Buffer), syn: syntax, cfg: cfg, unit: cfg.unit(), level: indent}
	switch n := node.(type) {
	case nil:
	case *ast.Program:
		p.indentation()
		for idx, stmt := range n.Body {
			if idx > 0 {
				p.newline()
			}
			p.stmt(stmt)
		}
	case ast.Expression:
		p.expr(n, precLowest)
	case ast.Statement:
		p.indentation()
		p.stmt(n)
	}
	return p.buf.String()
}

type printer struct {
	buf   *bytes.Buffer
	syn   *SyntaxTable
	cfg   FormatConfig
	unit  string
	level int
}

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.buf.WriteString(s)
	}
}

func (p *printer) indentation() {
	for i := 0; i < p.level; i++ {
		p.buf.WriteString(p.unit)
	}
}

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.indentation()
}

func (p *printer) kw(k string) string { return p.syn.keyword(k) }

// capture renders into a scratch buffer and returns the text.
func (p *printer) capture(fn func()) string {
	saved := p.buf
	p.buf = new(bytes.Buffer)
	fn()
	out := p.buf.String()
	p.buf = saved
	return out
}

// infix spells a binary operator with the configured spacing. Operators
// spelled as words are always spaced.
func (p *printer) infix(sym string) string {
	spelled := p.syn.operator(sym)
	if p.cfg.OperatorSpacing || isWord(spelled) {
		return " " + spelled + " "
	}
	return spelled
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

// Statements

func (p *printer) stmt(s ast.Statement) {
	switch n := s.(type) {
	case nil, *ast.Empty:
		p.write(";")
	case *ast.ExprStmt, *ast.VarDecl, *ast.Throw, *ast.Return, *ast.Break, *ast.Continue:
		p.simple(n)
		p.write(";")
	case *ast.FuncDecl:
		p.function(n.Func)
	case *ast.ClassDecl:
		p.class(n.Class)
		p.write(";")
	case *ast.Block:
		p.block(n)
	case *ast.If:
		p.ifStmt(n)
	case *ast.While:
		p.write(p.kw("while"), " (")
		p.expr(n.Cond, precLowest)
		p.write(")")
		p.body(n.Body)
	case *ast.DoWhile:
		p.write(p.kw("do"))
		p.body(n.Body)
		p.continuation(n.Body)
		p.write(p.kw("while"), " (")
		p.expr(n.Cond, precLowest)
		p.write(");")
	case *ast.For:
		p.forStmt(n)
	case *ast.ForIn:
		p.write(p.kw("for"), " (")
		p.write(n.Name)
		p.typeSuffix(n.VarType)
		p.write(" ", p.kw("in"), " ")
		p.expr(n.Seq, precLowest)
		p.write(")")
		p.body(n.Body)
	case *ast.Switch:
		p.switchStmt(n)
	case *ast.Try:
		p.tryStmt(n)
	case *ast.Synchronized:
		p.write(p.kw("synchronized"), " (")
		p.expr(n.Guard, precLowest)
		p.write(")")
		p.body(n.Body)
	default:
		p.write("/* ", string(s.NodeType()), " */")
	}
}

// simple renders a statement that fits on one line, without its
// terminator.
func (p *printer) simple(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		p.expr(n.Expr, precLowest)
	case *ast.VarDecl:
		if n.Final {
			p.write(p.kw("final"), " ")
		} else {
			p.write(p.kw("var"), " ")
		}
		p.write(n.Name)
		p.typeSuffix(n.Type)
		if n.Init != nil {
			p.write(p.infix("="))
			p.expr(n.Init, precAssign)
		}
	case *ast.Throw:
		p.write(p.kw("throw"), " ")
		p.expr(n.Value, precLowest)
	case *ast.Return:
		p.write(p.kw("return"))
		if n.Value != nil {
			p.write(" ")
			p.expr(n.Value, precLowest)
		}
	case *ast.Break:
		p.write(p.kw("break"))
	case *ast.Continue:
		p.write(p.kw("continue"))
	default:
		p.stmt(s)
	}
}

func (p *printer) typeSuffix(t *types.Type) {
	if t != nil && t != types.Any {
		p.write(": ", t.String())
	}
}

func (p *printer) openBrace() {
	if p.cfg.BraceNewline {
		p.newline()
	} else {
		p.write(" ")
	}
	p.write("{")
}

func (p *printer) block(b *ast.Block) {
	p.write("{")
	if b == nil || len(b.Body) == 0 {
		p.write("}")
		return
	}
	p.lines(b.Body)
	p.newline()
	p.write("}")
}

func (p *printer) lines(body []ast.Statement) {
	p.level++
	for _, s := range body {
		p.newline()
		p.stmt(s)
	}
	p.level--
}

// body renders the statement governed by a header such as if or while.
func (p *printer) body(s ast.Statement) {
	if b, ok := s.(*ast.Block); ok {
		if p.cfg.BraceNewline {
			p.newline()
		} else {
			p.write(" ")
		}
		p.block(b)
		return
	}
	p.level++
	p.newline()
	p.stmt(s)
	p.level--
}

// continuation separates a closed body from the keyword that follows it.
func (p *printer) continuation(prev ast.Statement) {
	if _, ok := prev.(*ast.Block); ok && !p.cfg.BraceNewline {
		p.write(" ")
		return
	}
	p.newline()
}

func (p *printer) ifStmt(n *ast.If) {
	p.write(p.kw("if"), " (")
	p.expr(n.Cond, precLowest)
	p.write(")")
	p.body(n.Then)
	if n.Else == nil {
		return
	}
	p.continuation(n.Then)
	p.write(p.kw("else"))
	if chained, ok := n.Else.(*ast.If); ok {
		p.write(" ")
		p.ifStmt(chained)
		return
	}
	p.body(n.Else)
}

func (p *printer) forStmt(n *ast.For) {
	p.write(p.kw("for"), " (")
	for idx, init := range n.Init {
		if idx > 0 {
			p.write(", ")
		}
		p.simple(init)
	}
	p.write(";")
	if n.Cond != nil {
		p.write(" ")
		p.expr(n.Cond, precLowest)
	}
	p.write(";")
	for idx, step := range n.Step {
		if idx == 0 {
			p.write(" ")
		} else {
			p.write(", ")
		}
		p.expr(step, precAssign)
	}
	p.write(")")
	p.body(n.Body)
}

func (p *printer) switchStmt(n *ast.Switch) {
	p.write(p.kw("switch"), " (")
	p.expr(n.Subject, precLowest)
	p.write(")")
	p.openBrace()
	for _, c := range n.Cases {
		p.newline()
		if c.Guard == nil {
			p.write(p.kw("default"), ":")
		} else {
			p.write(p.kw("case"), " ")
			p.expr(c.Guard, precLowest)
			p.write(":")
		}
		p.lines(c.Body)
	}
	p.newline()
	p.write("}")
}

func (p *printer) tryStmt(n *ast.Try) {
	p.write(p.kw("try"))
	p.body(n.Body)
	for _, clause := range n.Catches {
		p.continuation(n.Body)
		p.write(p.kw("catch"), " (")
		if clause.Type != nil && clause.Type != types.Any {
			p.write(clause.Type.String(), " ")
		}
		p.write(clause.Name, ")")
		p.body(clause.Body)
	}
	if n.Finally != nil {
		p.continuation(n.Body)
		p.write(p.kw("finally"))
		p.body(n.Finally)
	}
}

func (p *printer) function(fn *ast.Function) {
	if fn.Synchronized {
		p.write(p.kw("synchronized"), " ")
	}
	p.write(p.kw("function"))
	if fn.Name != "" {
		p.write(" ", fn.Name)
	}
	p.write("(")
	for idx, param := range fn.Params {
		if idx > 0 {
			p.write(", ")
		}
		p.write(param.Name)
		p.typeSuffix(param.Type)
		if param.Default != nil {
			p.write(p.infix("="))
			p.expr(param.Default, precAssign)
		}
	}
	p.write(")")
	p.typeSuffix(fn.Return)
	p.body(fn.Body)
}

func (p *printer) class(c *runtime.ClassValue) {
	p.write(p.kw("class"), " ", c.ClassName, "(", strings.Join(c.Fields, ", "), ")")
	if c.Super != nil && c.Super != runtime.ObjectClass {
		p.write(" ", p.kw("extends"), " ", c.Super.ClassName)
	}
}

// Expressions

func (p *printer) expr(e ast.Expression, min int) {
	prec := precedence(e)
	if prec < min {
		p.write("(")
		defer p.write(")")
	}
	switch n := e.(type) {
	case nil:
		p.write(p.kw("null"))
	case *ast.Literal:
		p.write(p.literal(n.Value))
	case *ast.Var:
		p.write(n.Name)
	case *ast.Captured:
		p.write(n.Name)
	case *ast.Binary:
		p.expr(n.Left, prec)
		p.write(p.infix(n.Op.Symbol()))
		p.expr(n.Right, prec+1)
	case *ast.Logical:
		p.expr(n.Left, prec)
		p.write(p.infix(string(n.Op)))
		p.expr(n.Right, prec+1)
	case *ast.Unary:
		operand := p.capture(func() { p.expr(n.Operand, precUnary) })
		op := p.syn.operator(n.Op.Symbol())
		if isWord(op) || strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+") {
			op += " "
		}
		p.write(op, operand)
	case *ast.Conditional:
		p.expr(n.Test, precCond+1)
		p.write(p.infix("?"))
		p.expr(n.Then, precAssign)
		p.write(p.infix(":"))
		p.expr(n.Else, precCond)
	case *ast.Assign:
		p.expr(n.Target, precPostfix)
		if n.Op == nil {
			p.write(p.infix("="))
		} else {
			p.write(p.infix(n.Op.Symbol() + "="))
		}
		p.expr(n.Value, precAssign)
	case *ast.IncDec:
		op := "++"
		if n.Delta < 0 {
			op = "--"
		}
		if n.Prefix {
			p.write(op)
			p.expr(n.Target, precUnary)
		} else {
			p.expr(n.Target, precPostfix)
			p.write(op)
		}
	case *ast.Call:
		p.expr(n.Callee, precPostfix)
		p.args(n.Args)
	case *ast.Index:
		p.expr(n.Target, precPostfix)
		p.write("[")
		p.expr(n.Key, precLowest)
		p.write("]")
	case *ast.Field:
		p.expr(n.Target, precPostfix)
		p.write(".", n.Name)
	case *ast.Collection:
		switch n.Kind {
		case ast.CollectionSet:
			p.write("#{")
		case ast.CollectionArray:
			p.write("#[")
		default:
			p.write("[")
		}
		p.exprList(n.Elements)
		if n.Kind == ast.CollectionSet {
			p.write("}")
		} else {
			p.write("]")
		}
	case *ast.MapLiteral:
		p.write("{")
		for idx, entry := range n.Entries {
			if idx > 0 {
				p.write(", ")
			}
			p.expr(entry.Key, precAssign)
			p.write(": ")
			p.expr(entry.Value, precAssign)
		}
		p.write("}")
	case *ast.Function:
		p.function(n)
	case *ast.New:
		p.write(p.kw("new"), " ")
		p.expr(n.Class, precPostfix)
		p.args(n.Args)
	case *ast.Cast:
		p.write("(", n.Target.String(), ") ")
		p.expr(n.Operand, precUnary)
	case *ast.InstanceOf:
		p.expr(n.Operand, precRelation)
		p.write(" ", p.kw("instanceof"), " ", n.Target.String())
	default:
		p.write("/* ", string(e.NodeType()), " */")
	}
}

func (p *printer) args(args []ast.Expression) {
	p.write("(")
	p.exprList(args)
	p.write(")")
}

func (p *printer) exprList(list []ast.Expression) {
	for idx, e := range list {
		if idx > 0 {
			p.write(", ")
		}
		p.expr(e, precAssign)
	}
}

func precedence(e ast.Expression) int {
	switch n := e.(type) {
	case *ast.Assign:
		return precAssign
	case *ast.Conditional:
		return precCond
	case *ast.Logical:
		if n.Op == ast.LogicalOr {
			return precOr
		}
		return precAnd
	case *ast.Binary:
		if prec, ok := binaryPrec[n.Op.Symbol()]; ok {
			return prec
		}
		return precMultiplicative
	case *ast.InstanceOf:
		return precRelation
	case *ast.Unary, *ast.Cast:
		return precUnary
	case *ast.IncDec:
		if n.Prefix {
			return precUnary
		}
		return precPostfix
	case *ast.Call, *ast.Index, *ast.Field:
		return precPostfix
	case *ast.Function:
		return precAssign
	}
	return precPrimary
}

func (p *printer) literal(v runtime.Value) string {
	switch x := v.(type) {
	case nil, runtime.NullValue:
		return p.kw("null")
	case runtime.BoolValue:
		if x.Val {
			return p.kw("true")
		}
		return p.kw("false")
	case runtime.StringValue:
		return strconv.Quote(x.Val)
	case runtime.CharValue:
		return strconv.QuoteRune(x.Val)
	case runtime.LongValue:
		return strconv.FormatInt(x.Val, 10) + "L"
	case runtime.FloatValue:
		return runtime.ToString(x) + "f"
	case runtime.BigIntValue, runtime.DecimalValue:
		return runtime.ToString(x) + "G"
	}
	return runtime.ToString(v)
}
