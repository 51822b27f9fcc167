package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Optimization levels.
const (
	OptimizeNone  = 0
	OptimizeFold  = 1
	OptimizePrune = 2
)

// Optimize returns a tree that behaves like node. Level 1 folds operators,
// casts, instanceof tests, ?: and the logical operators over constant
// operands. Level 2 also drops constant if branches, while(false) loops and
// empty statements. Children are optimized before their parents and shared
// nodes are never modified.
func Optimize(node ast.Node, level int) ast.Node {
	if level <= OptimizeNone || node == nil {
		return node
	}
	o := optimizer{level: level}
	return o.optimize(node)
}

type optimizer struct {
	level int
}

func (o optimizer) optimize(node ast.Node) ast.Node {
	node = ast.MapChildren(node, func(child ast.Node, _ int) ast.Node {
		return o.optimize(child)
	})
	switch n := node.(type) {
	case *ast.Binary:
		if n.IsConst() {
			if l, r, ok := literals(n.Left, n.Right); ok {
				return foldWith(n, func() (runtime.Value, error) { return n.Op.Invoke(l, r) })
			}
		}
	case *ast.Unary:
		if n.IsConst() {
			if v, _, ok := literals(n.Operand, n.Operand); ok {
				return foldWith(n, func() (runtime.Value, error) { return n.Op.Invoke(v) })
			}
		}
	case *ast.Cast:
		if n.IsConst() {
			if v, _, ok := literals(n.Operand, n.Operand); ok {
				return foldWith(n, func() (runtime.Value, error) { return n.Target.Convert("cast", v) })
			}
		}
	case *ast.InstanceOf:
		if v, _, ok := literals(n.Operand, n.Operand); ok {
			return foldWith(n, func() (runtime.Value, error) {
				return runtime.Bool(!runtime.IsNull(v) && n.Target.ContainsValue(v)), nil
			})
		}
	case *ast.Conditional:
		if test, ok := constBool(n.Test); ok {
			if test {
				return n.Then
			}
			return n.Else
		}
	case *ast.Logical:
		return foldLogical(n)
	}
	if o.level >= OptimizePrune {
		return prune(node)
	}
	return node
}

func literals(a, b ast.Expression) (runtime.Value, runtime.Value, bool) {
	la, ok := a.(*ast.Literal)
	if !ok {
		return nil, nil, false
	}
	lb, ok := b.(*ast.Literal)
	if !ok {
		return nil, nil, false
	}
	return la.Value, lb.Value, true
}

// foldWith replaces n by the literal eval produces. Operations that fault
// stay in the tree so the fault is raised at run time.
func foldWith(n ast.Expression, eval func() (runtime.Value, error)) ast.Expression {
	v, err := eval()
	if err != nil || v == nil || !types.Of(v).IsConstant() {
		return n
	}
	lit := ast.NewLiteral(v)
	ast.SetSpan(lit, n.Span())
	return lit
}

func constBool(e ast.Expression) (bool, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return false, false
	}
	return runtime.Truthy(lit.Value)
}

// foldLogical drops a constant left operand. The right operand may only
// stand alone when it is statically boolean, since the operator itself would
// reject anything else.
func foldLogical(n *ast.Logical) ast.Expression {
	left, ok := constBool(n.Left)
	if !ok {
		return n
	}
	short := (n.Op == ast.LogicalAnd && !left) || (n.Op == ast.LogicalOr && left)
	if short {
		lit := ast.NewLiteral(runtime.Bool(left))
		ast.SetSpan(lit, n.Span())
		return lit
	}
	if n.Right.Type() == types.Boolean {
		return n.Right
	}
	return n
}

func prune(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.If:
		test, ok := constBool(n.Cond)
		if !ok {
			return n
		}
		branch := n.Else
		if test {
			branch = n.Then
		}
		if branch == nil {
			return emptyAt(n)
		}
		return branch
	case *ast.While:
		if test, ok := constBool(n.Cond); ok && !test {
			return emptyAt(n)
		}
	case *ast.Block:
		body, dropped := dropEmpty(n.Body)
		if dropped {
			b := ast.NewBlock(body)
			b.Size = n.Size
			ast.SetSpan(b, n.Span())
			return b
		}
	case *ast.Program:
		body, dropped := dropEmpty(n.Body)
		if dropped {
			p := ast.NewProgram(body)
			p.Size, p.Globals = n.Size, n.Globals
			ast.SetSpan(p, n.Span())
			return p
		}
	}
	return node
}

func emptyAt(n ast.Node) *ast.Empty {
	e := ast.NewEmpty()
	ast.SetSpan(e, n.Span())
	return e
}

func dropEmpty(body []ast.Statement) ([]ast.Statement, bool) {
	out := make([]ast.Statement, 0, len(body))
	for _, s := range body {
		if _, ok := s.(*ast.Empty); !ok {
			out = append(out, s)
		}
	}
	return out, len(out) != len(body)
}
