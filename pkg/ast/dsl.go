package ast

import (
	"fmt"

	"quill/interpreter-go/pkg/ops"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Literal helpers.

func Lit(v runtime.Value) *Literal { return NewLiteral(v) }

func Int(v int32) *Literal { return NewLiteral(runtime.IntValue{Val: v}) }

func Long(v int64) *Literal { return NewLiteral(runtime.LongValue{Val: v}) }

func Dbl(v float64) *Literal { return NewLiteral(runtime.DoubleValue{Val: v}) }

func Str(s string) *Literal { return NewLiteral(runtime.StringValue{Val: s}) }

func Chr(r rune) *Literal { return NewLiteral(runtime.CharValue{Val: r}) }

func Bool(b bool) *Literal { return NewLiteral(runtime.Bool(b)) }

func Null() *Literal { return NewLiteral(runtime.Null) }

func ID(name string) *Var { return NewVar(name) }

// Operator helpers. Unknown symbols panic; these build trees in code, not
// from untrusted input.

func operator(symbol string, arity int) *ops.Operator {
	op, ok := ops.Lookup(symbol, arity)
	if !ok {
		panic(fmt.Sprintf("ast: no %d-ary operator %q", arity, symbol))
	}
	return op
}

func Bin(symbol string, left, right Expression) *Binary {
	return NewBinary(operator(symbol, 2), left, right)
}

func Un(symbol string, operand Expression) *Unary {
	return NewUnary(operator(symbol, 1), operand)
}

func And(left, right Expression) *Logical { return NewLogical(LogicalAnd, left, right) }

func Or(left, right Expression) *Logical { return NewLogical(LogicalOr, left, right) }

func Cond(test, then, els Expression) *Conditional { return NewConditional(test, then, els) }

func Set(target Assignable, value Expression) *Assign { return NewAssign(target, nil, value) }

func SetOp(symbol string, target Assignable, value Expression) *Assign {
	return NewAssign(target, operator(symbol, 2), value)
}

func Inc(target Assignable) *IncDec { return NewIncDec(target, 1, false) }

func Dec(target Assignable) *IncDec { return NewIncDec(target, -1, false) }

func PreInc(target Assignable) *IncDec { return NewIncDec(target, 1, true) }

func CallE(callee Expression, args ...Expression) *Call { return NewCall(callee, args) }

// CallN calls the function bound to name.
func CallN(name string, args ...Expression) *Call { return NewCall(ID(name), args) }

func Idx(target, key Expression) *Index { return NewIndex(target, key) }

func Fld(target Expression, name string) *Field { return NewField(target, name) }

func List(elements ...Expression) *Collection { return NewCollection(CollectionList, elements) }

func SetOf(elements ...Expression) *Collection { return NewCollection(CollectionSet, elements) }

func Arr(elements ...Expression) *Collection { return NewCollection(CollectionArray, elements) }

func Entry(key, value Expression) MapEntry { return MapEntry{Key: key, Value: value} }

func Map(entries ...MapEntry) *MapLiteral { return NewMapLiteral(entries) }

func Obj(class Expression, args ...Expression) *New { return NewNew(class, args) }

func As(target *types.Type, operand Expression) *Cast { return NewCast(target, operand) }

func Is(target *types.Type, operand Expression) *InstanceOf { return NewInstanceOf(target, operand) }

// Function helpers.

func P(name string) Param { return Param{Name: name, Type: types.Any} }

func PT(name string, typ *types.Type) Param { return Param{Name: name, Type: typ} }

func PD(name string, def Expression) Param { return Param{Name: name, Type: types.Any, Default: def} }

// Fn builds an untyped function literal.
func Fn(params []Param, body ...Statement) *Function {
	return NewFunction("", params, nil, Blk(body...))
}

func FnTyped(name string, params []Param, ret *types.Type, body ...Statement) *Function {
	return NewFunction(name, params, ret, Blk(body...))
}

func Def(name string, params []Param, body ...Statement) *FuncDecl {
	return NewFuncDecl(NewFunction(name, params, nil, Blk(body...)))
}

func Class(name string, super *runtime.ClassValue, fields ...string) *ClassDecl {
	if super == nil {
		super = runtime.ObjectClass
	}
	return NewClassDecl(&runtime.ClassValue{ClassName: name, Super: super, Fields: fields})
}

// Statement helpers.

func Expr(e Expression) *ExprStmt { return NewExprStmt(e) }

func Let(name string, init Expression) *VarDecl { return NewVarDecl(name, nil, false, init) }

func Final(name string, init Expression) *VarDecl { return NewVarDecl(name, nil, true, init) }

func Typed(name string, typ *types.Type, init Expression) *VarDecl {
	return NewVarDecl(name, typ, false, init)
}

func Blk(body ...Statement) *Block { return NewBlock(body) }

func IfS(cond Expression, then Statement, els Statement) *If { return NewIf(cond, then, els) }

func WhileS(cond Expression, body ...Statement) *While { return NewWhile(cond, Blk(body...)) }

func DoS(cond Expression, body ...Statement) *DoWhile { return NewDoWhile(Blk(body...), cond) }

func ForS(init []Statement, cond Expression, step []Expression, body ...Statement) *For {
	return NewFor(init, cond, step, Blk(body...))
}

func ForEach(name string, seq Expression, body ...Statement) *ForIn {
	return NewForIn(name, nil, seq, Blk(body...))
}

func SwitchS(subject Expression, cases ...Case) *Switch { return NewSwitch(subject, cases) }

func CaseS(guard Expression, body ...Statement) Case { return Case{Guard: guard, Body: body} }

func Default(body ...Statement) Case { return Case{Body: body} }

func TryS(body *Block, catches []Catch, finally *Block) *Try { return NewTry(body, catches, finally) }

func CatchS(typ *types.Type, name string, body ...Statement) Catch {
	if typ == nil {
		typ = types.Any
	}
	return Catch{Type: typ, Name: name, Body: Blk(body...)}
}

func ThrowS(value Expression) *Throw { return NewThrow(value) }

func Ret(value Expression) *Return { return NewReturn(value) }

func Brk() *Break { return NewBreak() }

func Cont() *Continue { return NewContinue() }

func Sync(guard Expression, body ...Statement) *Synchronized {
	return NewSynchronized(guard, Blk(body...))
}

func Prog(body ...Statement) *Program { return NewProgram(body) }
