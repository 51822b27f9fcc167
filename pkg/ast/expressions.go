package ast

import (
	"quill/interpreter-go/pkg/env"
	"quill/interpreter-go/pkg/ops"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Literal

type Literal struct {
	exprBase

	Value runtime.Value
}

func NewLiteral(v runtime.Value) *Literal {
	if v == nil {
		v = runtime.Null
	}
	return &Literal{exprBase: exprBase{nodeImpl: newNodeImpl(NodeLiteral)}, Value: v}
}

func (n *Literal) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return types.Of(n.Value) })
}

func (n *Literal) IsConst() bool { return n.Type().IsConstant() }

// Var reads a variable through its lexical address. Addr, Decl and Bound are
// filled in by the binder.
type Var struct {
	exprBase
	assignableMarker

	Name  string
	Addr  env.Address
	Decl  *types.Type
	Bound bool
}

func NewVar(name string) *Var {
	return &Var{exprBase: exprBase{nodeImpl: newNodeImpl(NodeVar)}, Name: name}
}

// NewBoundVar builds a reference that is already resolved.
func NewBoundVar(name string, addr env.Address, decl *types.Type) *Var {
	v := NewVar(name)
	v.Addr, v.Decl, v.Bound = addr, decl, true
	return v
}

func (n *Var) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Decl })
}

func (*Var) IsConst() bool { return false }

// Captured is a variable reference linked directly to its cell when a
// closure was created.
type Captured struct {
	exprBase
	assignableMarker

	Name string
	Cell *env.Variable
}

func NewCaptured(name string, cell *env.Variable) *Captured {
	return &Captured{exprBase: exprBase{nodeImpl: newNodeImpl(NodeCaptured)}, Name: name, Cell: cell}
}

func (n *Captured) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Cell.Type() })
}

func (*Captured) IsConst() bool { return false }

// Operators

type Binary struct {
	exprBase

	Op    *ops.Operator
	Left  Expression
	Right Expression
}

func NewBinary(op *ops.Operator, left, right Expression) *Binary {
	return &Binary{exprBase: exprBase{nodeImpl: newNodeImpl(NodeBinary)}, Op: op, Left: left, Right: right}
}

func (n *Binary) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Op.InferType(n.Left.Type(), n.Right.Type()) })
}

func (n *Binary) IsConst() bool {
	return n.Left.IsConst() && n.Right.IsConst() && n.Type().IsConstant()
}

type Unary struct {
	exprBase

	Op      *ops.Operator
	Operand Expression
}

func NewUnary(op *ops.Operator, operand Expression) *Unary {
	return &Unary{exprBase: exprBase{nodeImpl: newNodeImpl(NodeUnary)}, Op: op, Operand: operand}
}

func (n *Unary) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Op.InferType(n.Operand.Type()) })
}

func (n *Unary) IsConst() bool { return n.Operand.IsConst() && n.Type().IsConstant() }

type LogicalOp string

const (
	LogicalAnd LogicalOp = "&&"
	LogicalOr  LogicalOp = "||"
)

// Logical is a short-circuiting boolean operator.
type Logical struct {
	exprBase

	Op    LogicalOp
	Left  Expression
	Right Expression
}

func NewLogical(op LogicalOp, left, right Expression) *Logical {
	return &Logical{exprBase: exprBase{nodeImpl: newNodeImpl(NodeLogical)}, Op: op, Left: left, Right: right}
}

func (n *Logical) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return types.Boolean })
}

func (n *Logical) IsConst() bool { return n.Left.IsConst() && n.Right.IsConst() }

// Conditional is the ?: expression.
type Conditional struct {
	exprBase

	Test Expression
	Then Expression
	Else Expression
}

func NewConditional(test, then, els Expression) *Conditional {
	return &Conditional{exprBase: exprBase{nodeImpl: newNodeImpl(NodeConditional)}, Test: test, Then: then, Else: els}
}

func (n *Conditional) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Then.Type().Union(n.Else.Type()) })
}

func (n *Conditional) IsConst() bool {
	return n.Test.IsConst() && n.Then.IsConst() && n.Else.IsConst()
}

// Assignment

// Assign stores Value into Target. A non-nil Op makes it a compound
// assignment; the target is resolved once either way.
type Assign struct {
	exprBase

	Target Assignable
	Op     *ops.Operator
	Value  Expression
}

func NewAssign(target Assignable, op *ops.Operator, value Expression) *Assign {
	return &Assign{exprBase: exprBase{nodeImpl: newNodeImpl(NodeAssign)}, Target: target, Op: op, Value: value}
}

func (n *Assign) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		declared := n.Target.Type()
		if n.Op != nil {
			inferred := n.Op.InferType(declared, n.Value.Type())
			if inferred == nil || declared.Kind() != types.KindAny {
				return declared
			}
			return inferred
		}
		if declared.Kind() != types.KindAny {
			return declared
		}
		return n.Value.Type()
	})
}

func (*Assign) IsConst() bool { return false }

// IncDec is ++ or -- in prefix or postfix position.
type IncDec struct {
	exprBase

	Target Assignable
	Delta  int
	Prefix bool
}

func NewIncDec(target Assignable, delta int, prefix bool) *IncDec {
	return &IncDec{exprBase: exprBase{nodeImpl: newNodeImpl(NodeIncDec)}, Target: target, Delta: delta, Prefix: prefix}
}

func (n *IncDec) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Target.Type() })
}

func (*IncDec) IsConst() bool { return false }

// Calls and access

type Call struct {
	exprBase

	Callee Expression
	Args   []Expression
}

func NewCall(callee Expression, args []Expression) *Call {
	return &Call{exprBase: exprBase{nodeImpl: newNodeImpl(NodeCall)}, Callee: callee, Args: args}
}

func (n *Call) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		if fn, ok := n.Callee.(*Function); ok {
			return fn.Return
		}
		return types.Any
	})
}

func (*Call) IsConst() bool { return false }

// Index reads or writes an element of a list, array, map or string.
type Index struct {
	exprBase
	assignableMarker

	Target Expression
	Key    Expression
}

func NewIndex(target, key Expression) *Index {
	return &Index{exprBase: exprBase{nodeImpl: newNodeImpl(NodeIndex)}, Target: target, Key: key}
}

func (n *Index) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		t := n.Target.Type()
		switch t.Kind() {
		case types.KindList, types.KindArray, types.KindMap:
			return t.Elem()
		case types.KindString, types.KindStringBuffer, types.KindCharSequence:
			return types.Char
		}
		return types.Any
	})
}

func (*Index) IsConst() bool { return false }

// Field reads or writes an instance field or a string-keyed map entry.
type Field struct {
	exprBase
	assignableMarker

	Target Expression
	Name   string
}

func NewField(target Expression, name string) *Field {
	return &Field{exprBase: exprBase{nodeImpl: newNodeImpl(NodeField)}, Target: target, Name: name}
}

func (n *Field) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		if n.Target.Type().Kind() == types.KindMap {
			return n.Target.Type().Elem()
		}
		return types.Any
	})
}

func (*Field) IsConst() bool { return false }

// Literals of containers

type CollectionKind string

const (
	CollectionList  CollectionKind = "list"
	CollectionSet   CollectionKind = "set"
	CollectionArray CollectionKind = "array"
)

type Collection struct {
	exprBase

	Kind     CollectionKind
	Elements []Expression
}

func NewCollection(kind CollectionKind, elements []Expression) *Collection {
	return &Collection{exprBase: exprBase{nodeImpl: newNodeImpl(NodeCollection)}, Kind: kind, Elements: elements}
}

func (n *Collection) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		elem := unionOf(n.Elements)
		switch n.Kind {
		case CollectionSet:
			return types.SetOf(elem)
		case CollectionArray:
			return types.ArrayOf(elem)
		default:
			return types.ListOf(elem)
		}
	})
}

func (*Collection) IsConst() bool { return false }

type MapEntry struct {
	Key   Expression
	Value Expression
}

type MapLiteral struct {
	exprBase

	Entries []MapEntry
}

func NewMapLiteral(entries []MapEntry) *MapLiteral {
	return &MapLiteral{exprBase: exprBase{nodeImpl: newNodeImpl(NodeMapLiteral)}, Entries: entries}
}

func (n *MapLiteral) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		values := make([]Expression, len(n.Entries))
		for i, e := range n.Entries {
			values[i] = e.Value
		}
		return types.MapOf(unionOf(values))
	})
}

func (*MapLiteral) IsConst() bool { return false }

func unionOf(exprs []Expression) *types.Type {
	if len(exprs) == 0 {
		return types.Any
	}
	t := exprs[0].Type()
	for _, e := range exprs[1:] {
		t = t.Union(e.Type())
	}
	return t
}

// Functions

// Param is a declared function parameter. Index is its slot in the call
// frame.
type Param struct {
	Name    string
	Type    *types.Type
	Default Expression
	Index   int
}

// Function is a function literal. Evaluating it links the body against the
// defining frame and yields a closure. Level is the nesting level of the call
// frame and FrameSize the number of parameter slots it holds.
type Function struct {
	exprBase

	Name         string
	Params       []Param
	Return       *types.Type
	Body         *Block
	Synchronized bool
	Level        int
	FrameSize    int
}

func NewFunction(name string, params []Param, ret *types.Type, body *Block) *Function {
	if ret == nil {
		ret = types.Any
	}
	return &Function{exprBase: exprBase{nodeImpl: newNodeImpl(NodeFunction)}, Name: name, Params: params, Return: ret, Body: body}
}

func (n *Function) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return types.Function })
}

func (*Function) IsConst() bool { return false }

// Classes and types

type New struct {
	exprBase

	Class Expression
	Args  []Expression
}

func NewNew(class Expression, args []Expression) *New {
	return &New{exprBase: exprBase{nodeImpl: newNodeImpl(NodeNew)}, Class: class, Args: args}
}

func (n *New) Type() *types.Type {
	return n.cache.Get(func() *types.Type {
		if lit, ok := n.Class.(*Literal); ok {
			if class, ok := lit.Value.(*runtime.ClassValue); ok {
				return types.InstanceOf(class)
			}
		}
		return types.Instance
	})
}

func (*New) IsConst() bool { return false }

// Cast converts its operand to Target.
type Cast struct {
	exprBase

	Target  *types.Type
	Operand Expression
}

func NewCast(target *types.Type, operand Expression) *Cast {
	return &Cast{exprBase: exprBase{nodeImpl: newNodeImpl(NodeCast)}, Target: target, Operand: operand}
}

func (n *Cast) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return n.Target })
}

func (n *Cast) IsConst() bool { return n.Operand.IsConst() && n.Target.IsConstant() }

type InstanceOf struct {
	exprBase

	Target  *types.Type
	Operand Expression
}

func NewInstanceOf(target *types.Type, operand Expression) *InstanceOf {
	return &InstanceOf{exprBase: exprBase{nodeImpl: newNodeImpl(NodeInstanceOf)}, Target: target, Operand: operand}
}

func (n *InstanceOf) Type() *types.Type {
	return n.cache.Get(func() *types.Type { return types.Boolean })
}

func (n *InstanceOf) IsConst() bool { return n.Operand.IsConst() }
