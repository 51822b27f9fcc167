package interpreter

import (
	"context"
	"io"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/runtime"
)

// Options tunes program preparation and the invocation context.
type Options struct {
	// Optimize is the rewrite level applied before execution (0, 1 or 2).
	Optimize int
	// Check runs CheckCode over the program and refuses to execute it when
	// errors are reported.
	Check            bool
	WarningsAsErrors bool
	MaxDepth         int
	PatternCacheSize int
	Stdout           io.Writer
}

// Interpreter evaluates bound trees. It holds no per-invocation state, so a
// single instance may serve many sessions.
type Interpreter struct {
	opts     Options
	builtins map[string]runtime.Value
}

// New returns an interpreter with the builtin functions and classes
// installed.
func New(opts Options) *Interpreter {
	i := &Interpreter{opts: opts, builtins: make(map[string]runtime.Value)}
	i.initBuiltins()
	return i
}

func (i *Interpreter) Options() Options { return i.opts }

// NewContext creates an invocation context configured from the options.
func (i *Interpreter) NewContext(parent context.Context) *runtime.Context {
	return runtime.NewContext(parent, runtime.Options{
		Stdout:           i.opts.Stdout,
		MaxDepth:         i.opts.MaxDepth,
		PatternCacheSize: i.opts.PatternCacheSize,
	})
}

// Xeq evaluates an expression in frame.
func (i *Interpreter) Xeq(expr ast.Expression, frame *env.Environment) (runtime.Value, error) {
	return i.evaluateExpression(expr, frame)
}

// Run executes a statement in frame.
func (i *Interpreter) Run(stmt ast.Statement, frame *env.Environment) Completion {
	return i.runStatement(stmt, frame)
}

// Prepare optimizes and checks a program according to the options. The
// returned program is the one to execute.
func (i *Interpreter) Prepare(prog *ast.Program) (*ast.Program, Diagnostics, error) {
	if i.opts.Optimize > 0 {
		prog = Optimize(prog, i.opts.Optimize).(*ast.Program)
	}
	if !i.opts.Check {
		return prog, nil, nil
	}
	diags := i.CheckProgram(prog)
	if diags.HasErrors() {
		return prog, diags, diags.Err()
	}
	return prog, diags, nil
}

// Execute prepares and runs a program in a fresh session.
func (i *Interpreter) Execute(parent context.Context, prog *ast.Program) (runtime.Value, Diagnostics, error) {
	return i.NewSession(parent).Run(prog)
}

// Session keeps a root frame alive across programs, for the REPL and for
// hosts that feed a program in pieces bound against one scope chain.
type Session struct {
	interp *Interpreter
	ctx    *runtime.Context
	root   *env.Environment
}

func (i *Interpreter) NewSession(parent context.Context) *Session {
	ctx := i.NewContext(parent)
	return &Session{interp: i, ctx: ctx, root: env.NewEnvironment(ctx, 0)}
}

func (s *Session) Context() *runtime.Context { return s.ctx }

func (s *Session) Root() *env.Environment { return s.root }

// Run prepares prog and runs it in the session root frame. It returns the
// value of the last expression statement, or the value given to a top-level
// return.
func (s *Session) Run(prog *ast.Program) (runtime.Value, Diagnostics, error) {
	prog, diags, err := s.interp.Prepare(prog)
	if err != nil {
		return nil, diags, err
	}
	if err := s.interp.installGlobals(s.root, prog.Globals); err != nil {
		return nil, diags, err
	}
	if err := s.interp.hoist(s.root, prog.Body); err != nil {
		return nil, diags, err
	}
	var result runtime.Value = runtime.Null
	for _, stmt := range prog.Body {
		c := s.interp.runStatement(stmt, s.root)
		switch c.Kind {
		case Normal:
			if stmt.HasValue() && c.Value != nil {
				result = c.Value
			}
			continue
		case Return:
			return valueOrVoid(c.Value), diags, nil
		case Break, Continue:
			return nil, diags, controlEscape(c.Kind, "program")
		default:
			return nil, diags, c.Error()
		}
	}
	return result, diags, nil
}

// installGlobals fills the builtin slots the binder reserved, skipping any
// that an earlier program in the session already filled.
func (i *Interpreter) installGlobals(root *env.Environment, names []string) error {
	for idx, name := range names {
		if root.At(idx) != nil {
			continue
		}
		value, ok := i.builtins[name]
		if !ok {
			return runtime.NewFault(runtime.FaultUndefined, name, "no builtin named '%s'", name)
		}
		cell, err := root.Declare(idx, name, nil, true)
		if err != nil {
			return err
		}
		if _, err := cell.Initialize(env.InitDeclaration, value); err != nil {
			return err
		}
	}
	return nil
}

func valueOrVoid(v runtime.Value) runtime.Value {
	if v == nil {
		return runtime.Void
	}
	return v
}
