package interpreter

import (
	"fmt"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/types"
)

// CheckCode verifies a statement before its first run: code after a
// statement that always transfers control is rejected, every return value
// must fit ret, break and continue must have a target, and operators whose
// operand types can never succeed are reported. It returns the union of the
// types the statement can return, with void included when it can complete
// normally.
func (i *Interpreter) CheckCode(stmt ast.Statement, ret *types.Type) (*types.Type, Diagnostics) {
	c := &checker{strict: i.opts.WarningsAsErrors, ret: orAny(ret)}
	c.statement(stmt)
	inferred := c.returned
	if stmt == nil || !stmt.IsControlTransfer() {
		inferred = union(inferred, types.Void)
	}
	if inferred == nil {
		inferred = types.Void
	}
	return inferred, c.diags
}

// CheckProgram checks every top-level statement. A top-level return may
// carry any value.
func (i *Interpreter) CheckProgram(prog *ast.Program) Diagnostics {
	c := &checker{strict: i.opts.WarningsAsErrors, ret: types.Any}
	c.list(prog.Body)
	return c.diags
}

type checker struct {
	strict   bool
	ret      *types.Type
	returned *types.Type
	loops    int
	switches int
	diags    Diagnostics
}

func orAny(t *types.Type) *types.Type {
	if t == nil {
		return types.Any
	}
	return t
}

func union(a, b *types.Type) *types.Type {
	if a == nil {
		return b
	}
	return a.Union(b)
}

func (c *checker) errorf(n ast.Node, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Node: n})
}

// warnf reports a finding that only fails the check in strict mode.
func (c *checker) warnf(n ast.Node, format string, args ...any) {
	sev := SeverityWarning
	if c.strict {
		sev = SeverityError
	}
	c.diags = append(c.diags, Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...), Node: n})
}

func (c *checker) list(body []ast.Statement) {
	for idx, stmt := range body {
		c.statement(stmt)
		if stmt.IsControlTransfer() && idx+1 < len(body) {
			c.errorf(body[idx+1], "unreachable statement after %s", describeTransfer(stmt))
			for _, rest := range body[idx+1:] {
				c.statement(rest)
			}
			return
		}
	}
}

func describeTransfer(s ast.Statement) string {
	switch s.(type) {
	case *ast.Return:
		return "return"
	case *ast.Break:
		return "break"
	case *ast.Continue:
		return "continue"
	case *ast.Throw:
		return "throw"
	}
	return "a statement that always exits"
}

func (c *checker) statement(node ast.Statement) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Block:
		c.list(n.Body)
	case *ast.If:
		c.condition("if", n.Cond)
		c.statement(n.Then)
		c.statement(n.Else)
	case *ast.While:
		c.condition("while", n.Cond)
		c.loop(n.Body)
	case *ast.DoWhile:
		c.loop(n.Body)
		c.condition("do", n.Cond)
	case *ast.For:
		c.list(n.Init)
		if n.Cond != nil {
			c.condition("for", n.Cond)
		}
		for _, step := range n.Step {
			c.expression(step)
		}
		c.loop(n.Body)
	case *ast.ForIn:
		c.expression(n.Seq)
		c.loop(n.Body)
	case *ast.Switch:
		c.expression(n.Subject)
		c.switches++
		for _, arm := range n.Cases {
			if arm.Guard != nil {
				c.expression(arm.Guard)
			}
			c.list(arm.Body)
		}
		c.switches--
	case *ast.Try:
		c.statement(n.Body)
		for _, clause := range n.Catches {
			c.statement(clause.Body)
		}
		if n.Finally != nil {
			c.statement(n.Finally)
		}
	case *ast.Return:
		c.checkReturn(n)
	case *ast.Break:
		if c.loops == 0 && c.switches == 0 {
			c.errorf(n, "break outside of a loop or switch")
		}
	case *ast.Continue:
		if c.loops == 0 {
			c.errorf(n, "continue outside of a loop")
		}
	default:
		for _, child := range ast.Children(node) {
			c.node(child)
		}
	}
}

func (c *checker) loop(body ast.Statement) {
	c.loops++
	c.statement(body)
	c.loops--
}

func (c *checker) checkReturn(n *ast.Return) {
	t := types.Void
	if n.Value != nil {
		c.expression(n.Value)
		t = n.Value.Type()
	}
	c.returned = union(c.returned, t)
	if t.Kind() == types.KindAny || c.ret.Kind() == types.KindAny {
		return
	}
	if !c.ret.Contains(t) && !convertible(c.ret, t) {
		c.errorf(n, "cannot return %s from a function declared to return %s", t, c.ret)
	}
}

// convertible covers the coercions Convert performs between statically
// distinct types.
func convertible(to, from *types.Type) bool {
	if to.IsNumeric() && from.IsNumeric() {
		return true
	}
	switch to.Kind() {
	case types.KindString, types.KindCharSequence:
		return from.Kind() == types.KindChar || from.Kind() == types.KindStringBuffer
	case types.KindList, types.KindSet, types.KindArray, types.KindCollection:
		return from.IsContainer() && from.Kind() != types.KindMap && from.Kind() != types.KindIterator
	}
	return false
}

func (c *checker) condition(subject string, e ast.Expression) {
	c.expression(e)
	t := e.Type()
	if t.Kind() != types.KindAny && t.Kind() != types.KindBoolean {
		c.errorf(e, "condition of %s must be boolean, got %s", subject, t)
	}
}

func (c *checker) node(n ast.Node) {
	switch v := n.(type) {
	case ast.Statement:
		c.statement(v)
	case ast.Expression:
		c.expression(v)
	}
}

func (c *checker) expression(node ast.Expression) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Binary:
		c.expression(n.Left)
		c.expression(n.Right)
		if n.Op.InferType(n.Left.Type(), n.Right.Type()) == nil {
			c.warnf(n, "operator %s cannot apply to %s and %s", n.Op.Symbol(), n.Left.Type(), n.Right.Type())
		}
		return
	case *ast.Unary:
		c.expression(n.Operand)
		if n.Op.InferType(n.Operand.Type()) == nil {
			c.warnf(n, "operator %s cannot apply to %s", n.Op.Symbol(), n.Operand.Type())
		}
		return
	case *ast.Assign:
		c.expression(n.Target)
		c.expression(n.Value)
		if n.Op != nil && n.Op.InferType(n.Target.Type(), n.Value.Type()) == nil {
			c.warnf(n, "operator %s= cannot apply to %s and %s", n.Op.Symbol(), n.Target.Type(), n.Value.Type())
		}
		return
	case *ast.Function:
		inner := &checker{strict: c.strict, ret: orAny(n.Return)}
		for _, p := range n.Params {
			inner.expression(p.Default)
		}
		inner.statement(n.Body)
		c.diags = append(c.diags, inner.diags...)
		return
	}
	for _, child := range ast.Children(node) {
		c.node(child)
	}
}
