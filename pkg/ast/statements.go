package ast

import (
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// ExprStmt evaluates an expression for effect; it is the only statement with
// a value.
type ExprStmt struct {
	stmtBase

	Expr Expression
}

func NewExprStmt(expr Expression) *ExprStmt {
	return &ExprStmt{stmtBase: newStmtBase(NodeExprStmt), Expr: expr}
}

func (*ExprStmt) HasValue() bool          { return true }
func (*ExprStmt) IsControlTransfer() bool { return false }

// Declarations

// VarDecl declares a variable in the current frame at slot Index.
type VarDecl struct {
	stmtBase

	Name  string
	Index int
	Type  *types.Type
	Final bool
	Init  Expression
}

func NewVarDecl(name string, typ *types.Type, final bool, init Expression) *VarDecl {
	if typ == nil {
		typ = types.Any
	}
	return &VarDecl{stmtBase: newStmtBase(NodeVarDecl), Name: name, Type: typ, Final: final, Init: init}
}

func (*VarDecl) IsControlTransfer() bool { return false }

// FuncDecl binds a named function. Its cell is created when the enclosing
// block is entered, so the function can be referenced before and within its
// own body.
type FuncDecl struct {
	stmtBase

	Func  *Function
	Index int
}

func NewFuncDecl(fn *Function) *FuncDecl {
	return &FuncDecl{stmtBase: newStmtBase(NodeFuncDecl), Func: fn}
}

func (*FuncDecl) IsControlTransfer() bool { return false }

// ClassDecl binds a class object in the current frame.
type ClassDecl struct {
	stmtBase

	Class *runtime.ClassValue
	Index int
}

func NewClassDecl(class *runtime.ClassValue) *ClassDecl {
	return &ClassDecl{stmtBase: newStmtBase(NodeClassDecl), Class: class}
}

func (*ClassDecl) IsControlTransfer() bool { return false }

// Blocks and branches

// Block runs its statements in a fresh frame of Size slots.
type Block struct {
	stmtBase

	Body []Statement
	Size int
}

func NewBlock(body []Statement) *Block {
	return &Block{stmtBase: newStmtBase(NodeBlock), Body: body}
}

func (n *Block) IsControlTransfer() bool { return anyTransfers(n.Body) }

func anyTransfers(body []Statement) bool {
	for _, s := range body {
		if s.IsControlTransfer() {
			return true
		}
	}
	return false
}

type If struct {
	stmtBase

	Cond Expression
	Then Statement
	Else Statement
}

func NewIf(cond Expression, then, els Statement) *If {
	return &If{stmtBase: newStmtBase(NodeIf), Cond: cond, Then: then, Else: els}
}

func (n *If) IsControlTransfer() bool {
	return n.Else != nil && n.Then.IsControlTransfer() && n.Else.IsControlTransfer()
}

// Loops

type While struct {
	stmtBase

	Cond Expression
	Body Statement
}

func NewWhile(cond Expression, body Statement) *While {
	return &While{stmtBase: newStmtBase(NodeWhile), Cond: cond, Body: body}
}

func (*While) IsControlTransfer() bool { return false }

type DoWhile struct {
	stmtBase

	Body Statement
	Cond Expression
}

func NewDoWhile(body Statement, cond Expression) *DoWhile {
	return &DoWhile{stmtBase: newStmtBase(NodeDoWhile), Body: body, Cond: cond}
}

func (*DoWhile) IsControlTransfer() bool { return false }

// For is the three-clause loop. Init declarations live in the loop frame.
// A nil Cond loops until break.
type For struct {
	stmtBase

	Init []Statement
	Cond Expression
	Step []Expression
	Body Statement
	Size int
}

func NewFor(init []Statement, cond Expression, step []Expression, body Statement) *For {
	return &For{stmtBase: newStmtBase(NodeFor), Init: init, Cond: cond, Step: step, Body: body}
}

func (*For) IsControlTransfer() bool { return false }

// ForIn iterates a sequence. The loop frame, holding the loop variable at
// Index, is created on the first element.
type ForIn struct {
	stmtBase

	Name    string
	Index   int
	VarType *types.Type
	Seq     Expression
	Body    Statement
	Size    int
}

func NewForIn(name string, varType *types.Type, seq Expression, body Statement) *ForIn {
	if varType == nil {
		varType = types.Any
	}
	return &ForIn{stmtBase: newStmtBase(NodeForIn), Name: name, VarType: varType, Seq: seq, Body: body}
}

func (*ForIn) IsControlTransfer() bool { return false }

// Switch

// Case is one switch arm. A nil Guard is the default arm.
type Case struct {
	Guard Expression
	Body  []Statement
}

// Switch runs with C-style fall-through. All arms share one frame.
type Switch struct {
	stmtBase

	Subject Expression
	Cases   []Case
	Size    int
}

func NewSwitch(subject Expression, cases []Case) *Switch {
	return &Switch{stmtBase: newStmtBase(NodeSwitch), Subject: subject, Cases: cases}
}

func (*Switch) IsControlTransfer() bool { return false }

// Exceptions

// Catch binds the caught value at Index in its own frame.
type Catch struct {
	Type  *types.Type
	Name  string
	Index int
	Body  *Block
	Size  int
}

type Try struct {
	stmtBase

	Body    *Block
	Catches []Catch
	Finally *Block
}

func NewTry(body *Block, catches []Catch, finally *Block) *Try {
	return &Try{stmtBase: newStmtBase(NodeTry), Body: body, Catches: catches, Finally: finally}
}

func (n *Try) IsControlTransfer() bool {
	if n.Finally != nil && n.Finally.IsControlTransfer() {
		return true
	}
	if !n.Body.IsControlTransfer() {
		return false
	}
	for _, c := range n.Catches {
		if !c.Body.IsControlTransfer() {
			return false
		}
	}
	return true
}

type Throw struct {
	stmtBase

	Value Expression
}

func NewThrow(value Expression) *Throw {
	return &Throw{stmtBase: newStmtBase(NodeThrow), Value: value}
}

func (*Throw) IsControlTransfer() bool { return true }

// Jumps

// Return exits the enclosing function; a nil Value returns void.
type Return struct {
	stmtBase

	Value Expression
}

func NewReturn(value Expression) *Return {
	return &Return{stmtBase: newStmtBase(NodeReturn), Value: value}
}

func (*Return) IsControlTransfer() bool { return true }

type Break struct {
	stmtBase
}

func NewBreak() *Break { return &Break{stmtBase: newStmtBase(NodeBreak)} }

func (*Break) IsControlTransfer() bool { return true }

type Continue struct {
	stmtBase
}

func NewContinue() *Continue { return &Continue{stmtBase: newStmtBase(NodeContinue)} }

func (*Continue) IsControlTransfer() bool { return true }

// Synchronized holds the monitor of Guard while Body runs.
type Synchronized struct {
	stmtBase

	Guard Expression
	Body  *Block
}

func NewSynchronized(guard Expression, body *Block) *Synchronized {
	return &Synchronized{stmtBase: newStmtBase(NodeSynchronized), Guard: guard, Body: body}
}

func (n *Synchronized) IsControlTransfer() bool { return n.Body.IsControlTransfer() }

type Empty struct {
	stmtBase
}

func NewEmpty() *Empty { return &Empty{stmtBase: newStmtBase(NodeEmpty)} }

func (*Empty) IsControlTransfer() bool { return false }

// Program is a top-level statement list run in a root frame of Size slots.
// Globals names the builtins the binder placed in slots 0..len(Globals)-1.
type Program struct {
	nodeImpl

	Body    []Statement
	Size    int
	Globals []string
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}
