// Package fixture reads and writes programs as YAML or JSON documents. A
// document names node kinds under "type" and refers to variables by name;
// the result still has to go through the binder before it can run.
package fixture

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"math/big"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/ops"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// ErrInvalid marks a document that does not describe a node.
var ErrInvalid = errors.New("invalid fixture node")

// Decode reads a program. The document is either a mapping with a "body"
// list (optionally typed Program) or a bare list of statements. JSON input
// is accepted as well, being a subset of YAML.
func Decode(data []byte) (*ast.Program, error) {
	return NewDecoder().Decode(data)
}

// Decode reads one document. Classes declared by earlier documents stay
// visible to later ones.
func (d *Decoder) Decode(data []byte) (*ast.Program, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture: parse: %w", err)
	}
	var body []any
	switch doc := raw.(type) {
	case nil:
	case []any:
		body = doc
	case map[string]any:
		if typ, ok := doc["type"]; ok && typ != "Program" {
			return nil, fmt.Errorf("fixture: top-level node must be a Program, got %v", typ)
		}
		list, ok := doc["body"].([]any)
		if !ok && doc["body"] != nil {
			return nil, fmt.Errorf("fixture: program body must be a list")
		}
		body = list
	default:
		return nil, fmt.Errorf("fixture: unexpected document %T", raw)
	}

	if err := d.scanClasses(body); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	stmts, err := d.statements(body)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return ast.NewProgram(stmts), nil
}

type nodeCategoryDecoder func(*Decoder, map[string]any, string) (ast.Node, bool, error)

var nodeDecoders []nodeCategoryDecoder

func init() {
	nodeDecoders = []nodeCategoryDecoder{
		decodeLiteralNodes,
		decodeExpressionNodes,
		decodeControlFlowNodes,
		decodeDefinitionNodes,
	}
}

// Decoder holds the classes seen so far, so types and superclass references
// can name them regardless of declaration order.
type Decoder struct {
	classes map[string]*runtime.ClassValue
}

func NewDecoder() *Decoder {
	d := &Decoder{classes: make(map[string]*runtime.ClassValue)}
	for _, class := range []*runtime.ClassValue{runtime.ObjectClass, runtime.ExceptionClass, runtime.FaultClass} {
		d.classes[class.ClassName] = class
	}
	return d
}

// Probe decodes data without keeping the classes it declares.
func (d *Decoder) Probe(data []byte) (*ast.Program, error) {
	scratch := &Decoder{classes: maps.Clone(d.classes)}
	return scratch.Decode(data)
}

func (d *Decoder) resolve(name string) (*runtime.ClassValue, bool) {
	class, ok := d.classes[name]
	return class, ok
}

// scanClasses creates every ClassDecl in the document before anything is
// decoded, then links superclasses.
func (d *Decoder) scanClasses(body []any) error {
	var decls []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch x := v.(type) {
		case []any:
			for _, item := range x {
				walk(item)
			}
		case map[string]any:
			if x["type"] == "ClassDecl" {
				decls = append(decls, x)
			}
			for _, child := range x {
				walk(child)
			}
		}
	}
	walk(body)

	for _, decl := range decls {
		name, _ := decl["name"].(string)
		if name == "" {
			return fmt.Errorf("decode ClassDecl: missing name")
		}
		fields, err := stringList(decl["fields"])
		if err != nil {
			return fmt.Errorf("decode ClassDecl %s: %w", name, err)
		}
		d.classes[name] = &runtime.ClassValue{ClassName: name, Fields: fields}
	}
	for _, decl := range decls {
		class := d.classes[decl["name"].(string)]
		superName, _ := decl["super"].(string)
		if superName == "" {
			superName = runtime.ObjectClass.ClassName
		}
		super, ok := d.classes[superName]
		if !ok {
			return fmt.Errorf("decode ClassDecl %s: unknown superclass %s", class.ClassName, superName)
		}
		class.Super = super
	}
	for _, decl := range decls {
		class := d.classes[decl["name"].(string)]
		steps := 0
		for cur := class.Super; cur != nil; cur = cur.Super {
			if cur == class || steps > len(d.classes) {
				return fmt.Errorf("decode ClassDecl %s: cyclic superclass chain", class.ClassName)
			}
			steps++
		}
	}
	return nil
}

func (d *Decoder) node(raw any) (ast.Node, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		if lit, ok := scalarLiteral(raw); ok {
			return lit, nil
		}
		return nil, fmt.Errorf("%w: %T", ErrInvalid, raw)
	}
	typ, _ := node["type"].(string)
	for _, decode := range nodeDecoders {
		decoded, handled, err := decode(d, node, typ)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		if handled {
			if span, ok := decodeSpan(node["span"]); ok {
				ast.SetSpan(decoded, span)
			}
			return decoded, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, typ)
}

func (d *Decoder) expr(raw any) (ast.Expression, error) {
	if raw == nil {
		return nil, nil
	}
	n, err := d.node(raw)
	if err != nil {
		return nil, err
	}
	e, ok := n.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an expression", ErrInvalid, n.NodeType())
	}
	return e, nil
}

func (d *Decoder) requiredExpr(node map[string]any, key string) (ast.Expression, error) {
	e, err := d.expr(node[key])
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	return e, nil
}

func (d *Decoder) target(raw any) (ast.Assignable, error) {
	e, err := d.expr(raw)
	if err != nil {
		return nil, err
	}
	t, ok := e.(ast.Assignable)
	if !ok {
		return nil, fmt.Errorf("%w: cannot assign to %T", ErrInvalid, e)
	}
	return t, nil
}

func (d *Decoder) exprs(raw any) ([]ast.Expression, error) {
	list, err := asList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Expression, 0, len(list))
	for _, item := range list {
		e, err := d.expr(item)
		if err != nil {
			return nil, err
		}
		if e == nil {
			e = ast.Null()
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *Decoder) stmt(raw any) (ast.Statement, error) {
	if raw == nil {
		return nil, nil
	}
	if list, ok := raw.([]any); ok {
		return d.block(list)
	}
	n, err := d.node(raw)
	if err != nil {
		return nil, err
	}
	switch s := n.(type) {
	case ast.Statement:
		return s, nil
	case ast.Expression:
		return ast.NewExprStmt(s), nil
	}
	return nil, fmt.Errorf("%w: %s is not a statement", ErrInvalid, n.NodeType())
}

func (d *Decoder) statements(list []any) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(list))
	for _, item := range list {
		s, err := d.stmt(item)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = ast.NewEmpty()
		}
		out = append(out, s)
	}
	return out, nil
}

// block accepts a list of statements or a Block node.
func (d *Decoder) block(raw any) (*ast.Block, error) {
	if raw == nil {
		return nil, nil
	}
	if node, ok := raw.(map[string]any); ok && node["type"] == "Block" {
		n, err := d.node(node)
		if err != nil {
			return nil, err
		}
		return n.(*ast.Block), nil
	}
	list, err := asList(raw)
	if err != nil {
		return nil, err
	}
	body, err := d.statements(list)
	if err != nil {
		return nil, err
	}
	return ast.NewBlock(body), nil
}

func (d *Decoder) typ(raw any) (*types.Type, error) {
	if raw == nil {
		return nil, nil
	}
	name, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("type name must be a string, got %T", raw)
	}
	t, ok := types.Parse(name, d.resolve)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

func operator(node map[string]any, arity int) (*ops.Operator, error) {
	symbol, _ := node["op"].(string)
	op, ok := ops.Lookup(symbol, arity)
	if !ok {
		return nil, fmt.Errorf("no %d-ary operator %q", arity, symbol)
	}
	return op, nil
}

func decodeLiteralNodes(_ *Decoder, node map[string]any, typ string) (ast.Node, bool, error) {
	if typ != "Literal" {
		return nil, false, nil
	}
	kind, _ := node["kind"].(string)
	if kind == "" {
		lit, ok := scalarLiteral(node["value"])
		if !ok {
			return nil, true, fmt.Errorf("literal without kind has non-scalar value %T", node["value"])
		}
		return lit, true, nil
	}
	v, err := literalValue(kind, node["value"])
	if err != nil {
		return nil, true, err
	}
	return ast.NewLiteral(v), true, nil
}

// scalarLiteral turns a plain YAML scalar into a literal: integers that fit
// become int, larger ones long, fractions double.
func scalarLiteral(raw any) (*ast.Literal, bool) {
	switch v := raw.(type) {
	case nil:
		return ast.Null(), true
	case bool:
		return ast.Bool(v), true
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return ast.Int(int32(v)), true
		}
		return ast.Long(int64(v)), true
	case float64:
		return ast.Dbl(v), true
	case string:
		return ast.Str(v), true
	}
	return nil, false
}

func literalValue(kind string, raw any) (runtime.Value, error) {
	switch kind {
	case "null":
		return runtime.Null, nil
	case "boolean":
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("boolean literal needs true or false, got %v", raw)
		}
		return runtime.Bool(b), nil
	case "string":
		return runtime.StringValue{Val: fmt.Sprint(raw)}, nil
	case "char":
		s := fmt.Sprint(raw)
		runes := []rune(s)
		if len(runes) != 1 {
			return nil, fmt.Errorf("char literal must be one character, got %q", s)
		}
		return runtime.CharValue{Val: runes[0]}, nil
	case "int", "long":
		n, err := integer(raw)
		if err != nil {
			return nil, err
		}
		if kind == "long" {
			return runtime.LongValue{Val: n}, nil
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("int literal %d out of range", n)
		}
		return runtime.IntValue{Val: int32(n)}, nil
	case "float", "double":
		f, err := float(raw)
		if err != nil {
			return nil, err
		}
		if kind == "float" {
			return runtime.FloatValue{Val: float32(f)}, nil
		}
		return runtime.DoubleValue{Val: f}, nil
	case "biginteger":
		bi, ok := new(big.Int).SetString(fmt.Sprint(raw), 10)
		if !ok {
			return nil, fmt.Errorf("invalid biginteger %v", raw)
		}
		return runtime.BigIntValue{Val: bi}, nil
	case "bigdecimal":
		dec, err := decimal.NewFromString(fmt.Sprint(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid bigdecimal %v: %w", raw, err)
		}
		return runtime.DecimalValue{Val: dec}, nil
	case "date":
		t, err := time.Parse(time.RFC3339, fmt.Sprint(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid date %v: %w", raw, err)
		}
		return runtime.DateValue{Val: t}, nil
	case "pattern":
		re, err := regexp.Compile(fmt.Sprint(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %v: %w", raw, err)
		}
		return runtime.PatternValue{Re: re}, nil
	}
	return nil, fmt.Errorf("unknown literal kind %q", kind)
}

func integer(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("integer literal has a fraction: %v", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", raw)
}

func float(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}

func decodeExpressionNodes(d *Decoder, node map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "Var":
		name, _ := node["name"].(string)
		if name == "" {
			return nil, true, fmt.Errorf("missing name")
		}
		return ast.NewVar(name), true, nil
	case "Binary":
		op, err := operator(node, 2)
		if err != nil {
			return nil, true, err
		}
		left, err := d.requiredExpr(node, "left")
		if err != nil {
			return nil, true, err
		}
		right, err := d.requiredExpr(node, "right")
		if err != nil {
			return nil, true, err
		}
		return ast.NewBinary(op, left, right), true, nil
	case "Unary":
		op, err := operator(node, 1)
		if err != nil {
			return nil, true, err
		}
		operand, err := d.requiredExpr(node, "operand")
		if err != nil {
			return nil, true, err
		}
		return ast.NewUnary(op, operand), true, nil
	case "Logical":
		symbol, _ := node["op"].(string)
		op := ast.LogicalOp(symbol)
		if op != ast.LogicalAnd && op != ast.LogicalOr {
			return nil, true, fmt.Errorf("unknown logical operator %q", symbol)
		}
		left, err := d.requiredExpr(node, "left")
		if err != nil {
			return nil, true, err
		}
		right, err := d.requiredExpr(node, "right")
		if err != nil {
			return nil, true, err
		}
		return ast.NewLogical(op, left, right), true, nil
	case "Conditional":
		test, err := d.requiredExpr(node, "test")
		if err != nil {
			return nil, true, err
		}
		then, err := d.requiredExpr(node, "then")
		if err != nil {
			return nil, true, err
		}
		els, err := d.requiredExpr(node, "else")
		if err != nil {
			return nil, true, err
		}
		return ast.NewConditional(test, then, els), true, nil
	case "Assign":
		target, err := d.target(node["target"])
		if err != nil {
			return nil, true, err
		}
		var op *ops.Operator
		if _, compound := node["op"]; compound {
			if op, err = operator(node, 2); err != nil {
				return nil, true, err
			}
		}
		value, err := d.requiredExpr(node, "value")
		if err != nil {
			return nil, true, err
		}
		return ast.NewAssign(target, op, value), true, nil
	case "IncDec":
		target, err := d.target(node["target"])
		if err != nil {
			return nil, true, err
		}
		delta := 1
		switch node["op"] {
		case "++", nil:
		case "--":
			delta = -1
		default:
			return nil, true, fmt.Errorf("unknown increment operator %v", node["op"])
		}
		prefix, _ := node["prefix"].(bool)
		return ast.NewIncDec(target, delta, prefix), true, nil
	case "Call":
		callee, err := d.requiredExpr(node, "callee")
		if err != nil {
			return nil, true, err
		}
		args, err := d.exprs(node["args"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewCall(callee, args), true, nil
	case "Index":
		target, err := d.requiredExpr(node, "target")
		if err != nil {
			return nil, true, err
		}
		key, err := d.requiredExpr(node, "key")
		if err != nil {
			return nil, true, err
		}
		return ast.NewIndex(target, key), true, nil
	case "Field":
		target, err := d.requiredExpr(node, "target")
		if err != nil {
			return nil, true, err
		}
		name, _ := node["name"].(string)
		return ast.NewField(target, name), true, nil
	case "Collection":
		kind := ast.CollectionList
		if k, ok := node["kind"].(string); ok {
			kind = ast.CollectionKind(k)
		}
		switch kind {
		case ast.CollectionList, ast.CollectionSet, ast.CollectionArray:
		default:
			return nil, true, fmt.Errorf("unknown collection kind %q", kind)
		}
		elems, err := d.exprs(node["elements"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewCollection(kind, elems), true, nil
	case "MapLiteral":
		list, err := asList(node["entries"])
		if err != nil {
			return nil, true, err
		}
		entries := make([]ast.MapEntry, 0, len(list))
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, true, fmt.Errorf("map entry must be a mapping, got %T", item)
			}
			key, err := d.requiredExpr(entry, "key")
			if err != nil {
				return nil, true, err
			}
			value, err := d.expr(entry["value"])
			if err != nil {
				return nil, true, err
			}
			if value == nil {
				value = ast.Null()
			}
			entries = append(entries, ast.MapEntry{Key: key, Value: value})
		}
		return ast.NewMapLiteral(entries), true, nil
	case "Function":
		fn, err := d.function(node)
		if err != nil {
			return nil, true, err
		}
		return fn, true, nil
	case "New":
		class, err := d.requiredExpr(node, "class")
		if err != nil {
			return nil, true, err
		}
		args, err := d.exprs(node["args"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewNew(class, args), true, nil
	case "Cast", "InstanceOf":
		target, err := d.typ(node["target"])
		if err != nil {
			return nil, true, err
		}
		if target == nil {
			return nil, true, fmt.Errorf("missing target type")
		}
		operand, err := d.requiredExpr(node, "operand")
		if err != nil {
			return nil, true, err
		}
		if typ == "Cast" {
			return ast.NewCast(target, operand), true, nil
		}
		return ast.NewInstanceOf(target, operand), true, nil
	}
	return nil, false, nil
}

func (d *Decoder) function(node map[string]any) (*ast.Function, error) {
	name, _ := node["name"].(string)
	list, err := asList(node["params"])
	if err != nil {
		return nil, err
	}
	params := make([]ast.Param, 0, len(list))
	for _, item := range list {
		var param ast.Param
		switch p := item.(type) {
		case string:
			param = ast.P(p)
		case map[string]any:
			param.Name, _ = p["name"].(string)
			if param.Type, err = d.typ(p["type"]); err != nil {
				return nil, err
			}
			if param.Type == nil {
				param.Type = types.Any
			}
			if param.Default, err = d.expr(p["default"]); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("parameter must be a name or mapping, got %T", item)
		}
		if param.Name == "" {
			return nil, fmt.Errorf("parameter without a name")
		}
		params = append(params, param)
	}
	ret, err := d.typ(node["returns"])
	if err != nil {
		return nil, err
	}
	body, err := d.block(node["body"])
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = ast.NewBlock(nil)
	}
	fn := ast.NewFunction(name, params, ret, body)
	fn.Synchronized, _ = node["synchronized"].(bool)
	return fn, nil
}

func decodeControlFlowNodes(d *Decoder, node map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "Block":
		list, err := asList(node["body"])
		if err != nil {
			return nil, true, err
		}
		body, err := d.statements(list)
		if err != nil {
			return nil, true, err
		}
		return ast.NewBlock(body), true, nil
	case "If":
		cond, err := d.requiredExpr(node, "cond")
		if err != nil {
			return nil, true, err
		}
		then, err := d.stmt(node["then"])
		if err != nil {
			return nil, true, err
		}
		if then == nil {
			then = ast.NewEmpty()
		}
		els, err := d.stmt(node["else"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewIf(cond, then, els), true, nil
	case "While", "DoWhile":
		cond, err := d.requiredExpr(node, "cond")
		if err != nil {
			return nil, true, err
		}
		body, err := d.loopBody(node)
		if err != nil {
			return nil, true, err
		}
		if typ == "DoWhile" {
			return ast.NewDoWhile(body, cond), true, nil
		}
		return ast.NewWhile(cond, body), true, nil
	case "For":
		initList, err := asList(node["init"])
		if err != nil {
			return nil, true, err
		}
		init, err := d.statements(initList)
		if err != nil {
			return nil, true, err
		}
		cond, err := d.expr(node["cond"])
		if err != nil {
			return nil, true, err
		}
		step, err := d.exprs(node["step"])
		if err != nil {
			return nil, true, err
		}
		body, err := d.loopBody(node)
		if err != nil {
			return nil, true, err
		}
		return ast.NewFor(init, cond, step, body), true, nil
	case "ForIn":
		name, _ := node["name"].(string)
		if name == "" {
			return nil, true, fmt.Errorf("missing loop variable name")
		}
		varType, err := d.typ(node["varType"])
		if err != nil {
			return nil, true, err
		}
		seq, err := d.requiredExpr(node, "seq")
		if err != nil {
			return nil, true, err
		}
		body, err := d.loopBody(node)
		if err != nil {
			return nil, true, err
		}
		return ast.NewForIn(name, varType, seq, body), true, nil
	case "Switch":
		subject, err := d.requiredExpr(node, "subject")
		if err != nil {
			return nil, true, err
		}
		list, err := asList(node["cases"])
		if err != nil {
			return nil, true, err
		}
		cases := make([]ast.Case, 0, len(list))
		for _, item := range list {
			arm, ok := item.(map[string]any)
			if !ok {
				return nil, true, fmt.Errorf("switch case must be a mapping, got %T", item)
			}
			guard, err := d.expr(arm["guard"])
			if err != nil {
				return nil, true, err
			}
			bodyList, err := asList(arm["body"])
			if err != nil {
				return nil, true, err
			}
			body, err := d.statements(bodyList)
			if err != nil {
				return nil, true, err
			}
			cases = append(cases, ast.Case{Guard: guard, Body: body})
		}
		return ast.NewSwitch(subject, cases), true, nil
	case "Try":
		body, err := d.block(node["body"])
		if err != nil {
			return nil, true, err
		}
		if body == nil {
			body = ast.NewBlock(nil)
		}
		list, err := asList(node["catches"])
		if err != nil {
			return nil, true, err
		}
		catches := make([]ast.Catch, 0, len(list))
		for _, item := range list {
			raw, ok := item.(map[string]any)
			if !ok {
				return nil, true, fmt.Errorf("catch clause must be a mapping, got %T", item)
			}
			clause := ast.Catch{Type: types.Any}
			if clause.Name, _ = raw["name"].(string); clause.Name == "" {
				return nil, true, fmt.Errorf("catch clause without a variable name")
			}
			if t, err := d.typ(raw["type"]); err != nil {
				return nil, true, err
			} else if t != nil {
				clause.Type = t
			}
			if clause.Body, err = d.block(raw["body"]); err != nil {
				return nil, true, err
			}
			if clause.Body == nil {
				clause.Body = ast.NewBlock(nil)
			}
			catches = append(catches, clause)
		}
		finally, err := d.block(node["finally"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewTry(body, catches, finally), true, nil
	case "Throw":
		value, err := d.requiredExpr(node, "value")
		if err != nil {
			return nil, true, err
		}
		return ast.NewThrow(value), true, nil
	case "Return":
		value, err := d.expr(node["value"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewReturn(value), true, nil
	case "Break":
		return ast.NewBreak(), true, nil
	case "Continue":
		return ast.NewContinue(), true, nil
	case "Synchronized":
		guard, err := d.requiredExpr(node, "guard")
		if err != nil {
			return nil, true, err
		}
		body, err := d.block(node["body"])
		if err != nil {
			return nil, true, err
		}
		if body == nil {
			body = ast.NewBlock(nil)
		}
		return ast.NewSynchronized(guard, body), true, nil
	case "Empty":
		return ast.NewEmpty(), true, nil
	}
	return nil, false, nil
}

func (d *Decoder) loopBody(node map[string]any) (ast.Statement, error) {
	body, err := d.stmt(node["body"])
	if err != nil {
		return nil, err
	}
	if body == nil {
		return ast.NewBlock(nil), nil
	}
	return body, nil
}

func decodeDefinitionNodes(d *Decoder, node map[string]any, typ string) (ast.Node, bool, error) {
	switch typ {
	case "ExprStmt":
		e, err := d.requiredExpr(node, "expr")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExprStmt(e), true, nil
	case "VarDecl":
		name, _ := node["name"].(string)
		if name == "" {
			return nil, true, fmt.Errorf("missing name")
		}
		varType, err := d.typ(node["varType"])
		if err != nil {
			return nil, true, err
		}
		final, _ := node["final"].(bool)
		init, err := d.expr(node["init"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewVarDecl(name, varType, final, init), true, nil
	case "FuncDecl":
		fn, err := d.function(node)
		if err != nil {
			return nil, true, err
		}
		if fn.Name == "" {
			return nil, true, fmt.Errorf("function declaration without a name")
		}
		return ast.NewFuncDecl(fn), true, nil
	case "ClassDecl":
		name, _ := node["name"].(string)
		return ast.NewClassDecl(d.classes[name]), true, nil
	}
	return nil, false, nil
}

func decodeSpan(raw any) (ast.Span, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return ast.Span{}, false
	}
	return ast.Span{Start: decodePosition(m["start"]), End: decodePosition(m["end"])}, true
}

func decodePosition(raw any) ast.Position {
	m, _ := raw.(map[string]any)
	line, _ := m["line"].(int)
	column, _ := m["column"].(int)
	return ast.Position{Line: line, Column: column}
}

func asList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", raw)
}

func stringList(raw any) ([]string, error) {
	list, err := asList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a name, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
