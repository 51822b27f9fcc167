// Package ast defines the closed node families executed by the interpreter:
// expressions, which produce values and cache their inferred type, and
// statements, which complete normally or abruptly.
//
// Nodes are built once and then shared. Passes that rewrite a tree build new
// nodes with the constructors below instead of copying or mutating existing
// ones, so a node's cached type always describes the children it was built
// with.
package ast

import (
	"sync"

	"quill/interpreter-go/pkg/types"
)

type NodeType string

const (
	NodeLiteral      NodeType = "Literal"
	NodeVar          NodeType = "Var"
	NodeCaptured     NodeType = "Captured"
	NodeBinary       NodeType = "Binary"
	NodeUnary        NodeType = "Unary"
	NodeLogical      NodeType = "Logical"
	NodeConditional  NodeType = "Conditional"
	NodeAssign       NodeType = "Assign"
	NodeIncDec       NodeType = "IncDec"
	NodeCall         NodeType = "Call"
	NodeIndex        NodeType = "Index"
	NodeField        NodeType = "Field"
	NodeCollection   NodeType = "Collection"
	NodeMapLiteral   NodeType = "MapLiteral"
	NodeFunction     NodeType = "Function"
	NodeNew          NodeType = "New"
	NodeCast         NodeType = "Cast"
	NodeInstanceOf   NodeType = "InstanceOf"
	NodeExprStmt     NodeType = "ExprStmt"
	NodeVarDecl      NodeType = "VarDecl"
	NodeFuncDecl     NodeType = "FuncDecl"
	NodeClassDecl    NodeType = "ClassDecl"
	NodeBlock        NodeType = "Block"
	NodeIf           NodeType = "If"
	NodeWhile        NodeType = "While"
	NodeDoWhile      NodeType = "DoWhile"
	NodeFor          NodeType = "For"
	NodeForIn        NodeType = "ForIn"
	NodeSwitch       NodeType = "Switch"
	NodeTry          NodeType = "Try"
	NodeThrow        NodeType = "Throw"
	NodeReturn       NodeType = "Return"
	NodeBreak        NodeType = "Break"
	NodeContinue     NodeType = "Continue"
	NodeSynchronized NodeType = "Synchronized"
	NodeEmpty        NodeType = "Empty"
	NodeProgram      NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

func (s Span) IsZero() bool { return s == Span{} }

type nodeImpl struct {
	kind NodeType
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{kind: kind}
}

func (n *nodeImpl) NodeType() NodeType { return n.kind }
func (n *nodeImpl) Span() Span          { return n.span }
func (*nodeImpl) isNode()               {}
func (n *nodeImpl) setSpan(span Span)   { n.span = span }

type spanned interface{ setSpan(Span) }

// SetSpan records the source span of a node.
func SetSpan(n Node, span Span) {
	if s, ok := n.(spanned); ok {
		s.setSpan(span)
	}
}

// Expression nodes produce a value. Type is memoized per node.
type Expression interface {
	Node
	Type() *types.Type
	IsConst() bool
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Statement nodes run for effect.
type Statement interface {
	Node
	// HasValue is true only for expression statements.
	HasValue() bool
	// IsControlTransfer is true when the statement always completes abruptly.
	IsControlTransfer() bool
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}
func (statementMarker) HasValue() bool { return false }

// Assignable expressions can be the target of an assignment.
type Assignable interface {
	Expression
	assignableNode()
}

type assignableMarker struct{}

func (assignableMarker) assignableNode() {}

// TypeCache memoizes the inferred type of one expression. The hook runs at
// most once even when the node is shared by concurrent evaluations.
type TypeCache struct {
	once sync.Once
	typ  *types.Type
}

// Get returns the cached type, computing it with infer on first use. A nil
// result from infer is cached as any.
func (c *TypeCache) Get(infer func() *types.Type) *types.Type {
	c.once.Do(func() {
		c.typ = infer()
		if c.typ == nil {
			c.typ = types.Any
		}
	})
	return c.typ
}

// exprBase is embedded by every expression node. It holds the type cache,
// so expression nodes must not be copied.
type exprBase struct {
	nodeImpl
	expressionMarker
	cache TypeCache
}

// stmtBase is embedded by every statement node.
type stmtBase struct {
	nodeImpl
	statementMarker
}

func newStmtBase(kind NodeType) stmtBase {
	return stmtBase{nodeImpl: newNodeImpl(kind)}
}
