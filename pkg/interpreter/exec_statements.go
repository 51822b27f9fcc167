package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

func (i *Interpreter) runStatement(node ast.Statement, frame *env.Environment) Completion {
	switch n := node.(type) {
	case nil, *ast.Empty:
		return normal(nil)
	case *ast.ExprStmt:
		v, err := i.evaluateExpression(n.Expr, frame)
		if err != nil {
			return fromError(err)
		}
		return normal(v)
	case *ast.VarDecl:
		return i.runVarDecl(n, frame)
	case *ast.FuncDecl:
		return i.runFuncDecl(n, frame)
	case *ast.ClassDecl:
		cell, err := frame.Declare(n.Index, n.Class.ClassName, nil, true)
		if err != nil {
			return faulted(err)
		}
		if _, err := cell.Initialize(env.InitDeclaration, n.Class); err != nil {
			return faulted(err)
		}
		return normal(nil)
	case *ast.Block:
		return i.runBlock(n, frame)
	case *ast.If:
		test, err := i.condition("if", n.Cond, frame)
		if err != nil {
			return fromError(err)
		}
		if test {
			return i.runStatement(n.Then, frame)
		}
		return i.runStatement(n.Else, frame)
	case *ast.While:
		return i.runWhile(n, frame)
	case *ast.DoWhile:
		return i.runDoWhile(n, frame)
	case *ast.For:
		return i.runFor(n, frame)
	case *ast.ForIn:
		return i.runForIn(n, frame)
	case *ast.Switch:
		return i.runSwitch(n, frame)
	case *ast.Try:
		return i.runTry(n, frame)
	case *ast.Synchronized:
		return i.runSynchronized(n, frame)
	case *ast.Throw:
		v, err := i.evaluateExpression(n.Value, frame)
		if err != nil {
			return fromError(err)
		}
		return Completion{Kind: Throw, Value: v}
	case *ast.Return:
		if n.Value == nil {
			return Completion{Kind: Return, Value: runtime.Void}
		}
		v, err := i.evaluateExpression(n.Value, frame)
		if err != nil {
			return fromError(err)
		}
		return Completion{Kind: Return, Value: v}
	case *ast.Break:
		return Completion{Kind: Break}
	case *ast.Continue:
		return Completion{Kind: Continue}
	}
	return faulted(runtime.Internal(string(node.NodeType()), "cannot run %T", node))
}

func (i *Interpreter) runVarDecl(n *ast.VarDecl, frame *env.Environment) Completion {
	var value runtime.Value = runtime.Null
	if n.Init != nil {
		v, err := i.evaluateExpression(n.Init, frame)
		if err != nil {
			return fromError(err)
		}
		value = v
	}
	cell, err := frame.Declare(n.Index, n.Name, n.Type, n.Final)
	if err != nil {
		return faulted(err)
	}
	if _, err := cell.Initialize(env.InitDeclaration, value); err != nil {
		return faulted(err)
	}
	return normal(nil)
}

// runFuncDecl fills the cell hoisted at block entry. Declarations that were
// not hoisted, such as a function declared as the sole body of an if, get
// their cell here.
func (i *Interpreter) runFuncDecl(n *ast.FuncDecl, frame *env.Environment) Completion {
	cell := frame.At(n.Index)
	if cell == nil {
		var err error
		if cell, err = frame.Declare(n.Index, n.Func.Name, nil, true); err != nil {
			return faulted(err)
		}
	}
	closure, err := i.makeClosure(n.Func, frame)
	if err != nil {
		return fromError(err)
	}
	if _, err := cell.Initialize(env.InitRecursiveBinding, closure); err != nil {
		return faulted(err)
	}
	return normal(nil)
}

// hoist pre-creates the empty final cells of the function declarations
// directly inside body, so the functions can refer to each other and to
// themselves before their declarations run.
func (i *Interpreter) hoist(frame *env.Environment, body []ast.Statement) error {
	for _, stmt := range body {
		decl, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if _, err := frame.Declare(decl.Index, decl.Func.Name, nil, true); err != nil {
			return err
		}
	}
	return nil
}

// runBlock runs body in a fresh frame. The block value is the value of its
// last expression statement.
func (i *Interpreter) runBlock(n *ast.Block, frame *env.Environment) Completion {
	inner := frame.Extend(n.Size)
	if err := i.hoist(inner, n.Body); err != nil {
		return faulted(err)
	}
	return i.runList(n.Body, inner)
}

func (i *Interpreter) runList(body []ast.Statement, frame *env.Environment) Completion {
	var last runtime.Value
	for _, stmt := range body {
		c := i.runStatement(stmt, frame)
		if c.Abrupt() {
			return c
		}
		if stmt.HasValue() {
			last = c.Value
		}
	}
	return normal(last)
}

func (i *Interpreter) runSynchronized(n *ast.Synchronized, frame *env.Environment) Completion {
	guard, err := i.evaluateExpression(n.Guard, frame)
	if err != nil {
		return fromError(err)
	}
	release, err := frame.Context().Lock(guard)
	if err != nil {
		return faulted(err)
	}
	defer release()
	return i.runBlock(n.Body, frame)
}
