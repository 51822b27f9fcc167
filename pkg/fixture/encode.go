package fixture

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// Format selects the document syntax Marshal writes.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Marshal encodes prog as a fixture document.
func Marshal(prog *ast.Program, format Format) ([]byte, error) {
	doc, err := Encode(prog)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("fixture: unknown format %q", format)
}

// Encode turns prog into the generic document shape Decode reads. Bound or
// captured variables are written by name. Classes are written once, at their
// declaration.
func Encode(prog *ast.Program) (map[string]any, error) {
	body, err := encodeStatements(prog.Body)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return map[string]any{"type": "Program", "body": body}, nil
}

func encodeStatements(stmts []ast.Statement) ([]any, error) {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		enc, err := encodeNode(s)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func encodeExprs(exprs []ast.Expression) ([]any, error) {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		enc, err := encodeNode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

func encodeOptional(n ast.Node, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	return encodeNode(n)
}

func encodeBlock(b *ast.Block) (any, error) {
	if b == nil {
		return nil, nil
	}
	return encodeStatements(b.Body)
}

func encodeNode(n ast.Node) (any, error) {
	enc, err := encodeFields(n)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", n.NodeType(), err)
	}
	if m, ok := enc.(map[string]any); ok {
		if span := n.Span(); !span.IsZero() {
			m["span"] = map[string]any{
				"start": map[string]any{"line": span.Start.Line, "column": span.Start.Column},
				"end":   map[string]any{"line": span.End.Line, "column": span.End.Column},
			}
		}
	}
	return enc, nil
}

func node(typ string, fields ...any) map[string]any {
	m := map[string]any{"type": typ}
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] != nil {
			m[fields[i].(string)] = fields[i+1]
		}
	}
	return m
}

func encodeFields(n ast.Node) (any, error) {
	switch n := n.(type) {
	case *ast.Literal:
		return encodeLiteral(n.Value)
	case *ast.Var:
		return node("Var", "name", n.Name), nil
	case *ast.Captured:
		return node("Var", "name", n.Name), nil
	case *ast.Binary:
		left, right, err := encodePair(n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return node("Binary", "op", n.Op.Symbol(), "left", left, "right", right), nil
	case *ast.Unary:
		operand, err := encodeNode(n.Operand)
		if err != nil {
			return nil, err
		}
		return node("Unary", "op", n.Op.Symbol(), "operand", operand), nil
	case *ast.Logical:
		left, right, err := encodePair(n.Left, n.Right)
		if err != nil {
			return nil, err
		}
		return node("Logical", "op", string(n.Op), "left", left, "right", right), nil
	case *ast.Conditional:
		parts, err := encodeExprs([]ast.Expression{n.Test, n.Then, n.Else})
		if err != nil {
			return nil, err
		}
		return node("Conditional", "test", parts[0], "then", parts[1], "else", parts[2]), nil
	case *ast.Assign:
		target, value, err := encodePair(n.Target, n.Value)
		if err != nil {
			return nil, err
		}
		var op any
		if n.Op != nil {
			op = n.Op.Symbol()
		}
		return node("Assign", "target", target, "op", op, "value", value), nil
	case *ast.IncDec:
		target, err := encodeNode(n.Target)
		if err != nil {
			return nil, err
		}
		op := "++"
		if n.Delta < 0 {
			op = "--"
		}
		return node("IncDec", "target", target, "op", op, "prefix", n.Prefix), nil
	case *ast.Call:
		callee, err := encodeNode(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := encodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return node("Call", "callee", callee, "args", args), nil
	case *ast.Index:
		target, key, err := encodePair(n.Target, n.Key)
		if err != nil {
			return nil, err
		}
		return node("Index", "target", target, "key", key), nil
	case *ast.Field:
		target, err := encodeNode(n.Target)
		if err != nil {
			return nil, err
		}
		return node("Field", "target", target, "name", n.Name), nil
	case *ast.Collection:
		elems, err := encodeExprs(n.Elements)
		if err != nil {
			return nil, err
		}
		return node("Collection", "kind", string(n.Kind), "elements", elems), nil
	case *ast.MapLiteral:
		entries := make([]any, 0, len(n.Entries))
		for _, e := range n.Entries {
			key, value, err := encodePair(e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, map[string]any{"key": key, "value": value})
		}
		return node("MapLiteral", "entries", entries), nil
	case *ast.Function:
		return encodeFunction("Function", n)
	case *ast.New:
		class, err := encodeNode(n.Class)
		if err != nil {
			return nil, err
		}
		args, err := encodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return node("New", "class", class, "args", args), nil
	case *ast.Cast:
		operand, err := encodeNode(n.Operand)
		if err != nil {
			return nil, err
		}
		return node("Cast", "target", n.Target.String(), "operand", operand), nil
	case *ast.InstanceOf:
		operand, err := encodeNode(n.Operand)
		if err != nil {
			return nil, err
		}
		return node("InstanceOf", "target", n.Target.String(), "operand", operand), nil

	case *ast.ExprStmt:
		expr, err := encodeNode(n.Expr)
		if err != nil {
			return nil, err
		}
		return node("ExprStmt", "expr", expr), nil
	case *ast.VarDecl:
		init, err := encodeOptional(n.Init, n.Init == nil)
		if err != nil {
			return nil, err
		}
		var varType any
		if n.Type != nil && n.Type.Kind() != types.KindAny {
			varType = n.Type.String()
		}
		var final any
		if n.Final {
			final = true
		}
		return node("VarDecl", "name", n.Name, "varType", varType, "final", final, "init", init), nil
	case *ast.FuncDecl:
		return encodeFunction("FuncDecl", n.Func)
	case *ast.ClassDecl:
		var super any
		if n.Class.Super != nil && n.Class.Super != runtime.ObjectClass {
			super = n.Class.Super.ClassName
		}
		fields := make([]any, 0, len(n.Class.Fields))
		for _, f := range n.Class.Fields {
			fields = append(fields, f)
		}
		return node("ClassDecl", "name", n.Class.ClassName, "super", super, "fields", fields), nil
	case *ast.Block:
		body, err := encodeStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return node("Block", "body", body), nil
	case *ast.If:
		cond, err := encodeNode(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeNode(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := encodeOptional(n.Else, n.Else == nil)
		if err != nil {
			return nil, err
		}
		return node("If", "cond", cond, "then", then, "else", els), nil
	case *ast.While:
		cond, body, err := encodePair(n.Cond, n.Body)
		if err != nil {
			return nil, err
		}
		return node("While", "cond", cond, "body", body), nil
	case *ast.DoWhile:
		cond, body, err := encodePair(n.Cond, n.Body)
		if err != nil {
			return nil, err
		}
		return node("DoWhile", "cond", cond, "body", body), nil
	case *ast.For:
		init, err := encodeStatements(n.Init)
		if err != nil {
			return nil, err
		}
		cond, err := encodeOptional(n.Cond, n.Cond == nil)
		if err != nil {
			return nil, err
		}
		step, err := encodeExprs(n.Step)
		if err != nil {
			return nil, err
		}
		body, err := encodeNode(n.Body)
		if err != nil {
			return nil, err
		}
		return node("For", "init", init, "cond", cond, "step", step, "body", body), nil
	case *ast.ForIn:
		seq, body, err := encodePair(n.Seq, n.Body)
		if err != nil {
			return nil, err
		}
		var varType any
		if n.VarType != nil {
			varType = n.VarType.String()
		}
		return node("ForIn", "name", n.Name, "varType", varType, "seq", seq, "body", body), nil
	case *ast.Switch:
		subject, err := encodeNode(n.Subject)
		if err != nil {
			return nil, err
		}
		cases := make([]any, 0, len(n.Cases))
		for _, c := range n.Cases {
			guard, err := encodeOptional(c.Guard, c.Guard == nil)
			if err != nil {
				return nil, err
			}
			body, err := encodeStatements(c.Body)
			if err != nil {
				return nil, err
			}
			arm := map[string]any{"body": body}
			if guard != nil {
				arm["guard"] = guard
			}
			cases = append(cases, arm)
		}
		return node("Switch", "subject", subject, "cases", cases), nil
	case *ast.Try:
		body, err := encodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		catches := make([]any, 0, len(n.Catches))
		for _, c := range n.Catches {
			handler, err := encodeBlock(c.Body)
			if err != nil {
				return nil, err
			}
			clause := map[string]any{"name": c.Name, "body": handler}
			if c.Type != nil {
				clause["type"] = c.Type.String()
			}
			catches = append(catches, clause)
		}
		finally, err := encodeBlock(n.Finally)
		if err != nil {
			return nil, err
		}
		return node("Try", "body", body, "catches", catches, "finally", finally), nil
	case *ast.Throw:
		value, err := encodeNode(n.Value)
		if err != nil {
			return nil, err
		}
		return node("Throw", "value", value), nil
	case *ast.Return:
		value, err := encodeOptional(n.Value, n.Value == nil)
		if err != nil {
			return nil, err
		}
		return node("Return", "value", value), nil
	case *ast.Break:
		return node("Break"), nil
	case *ast.Continue:
		return node("Continue"), nil
	case *ast.Synchronized:
		guard, err := encodeNode(n.Guard)
		if err != nil {
			return nil, err
		}
		body, err := encodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return node("Synchronized", "guard", guard, "body", body), nil
	case *ast.Empty:
		return node("Empty"), nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T", ErrInvalid, n)
}

func encodePair(a, b ast.Node) (any, any, error) {
	left, err := encodeNode(a)
	if err != nil {
		return nil, nil, err
	}
	right, err := encodeNode(b)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func encodeFunction(typ string, fn *ast.Function) (any, error) {
	params := make([]any, 0, len(fn.Params))
	for _, p := range fn.Params {
		param := map[string]any{"name": p.Name}
		if p.Type != nil && p.Type.Kind() != types.KindAny {
			param["type"] = p.Type.String()
		}
		if p.Default != nil {
			def, err := encodeNode(p.Default)
			if err != nil {
				return nil, err
			}
			param["default"] = def
		}
		params = append(params, param)
	}
	body, err := encodeBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	var name, returns, sync any
	if fn.Name != "" {
		name = fn.Name
	}
	if fn.Return != nil && fn.Return.Kind() != types.KindAny {
		returns = fn.Return.String()
	}
	if fn.Synchronized {
		sync = true
	}
	return node(typ, "name", name, "params", params, "returns", returns, "body", body, "synchronized", sync), nil
}

// encodeLiteral writes int, string and boolean literals as plain scalars.
// Null is spelled out so it survives in fields that drop absent values.
// The rest carry their kind so a round trip keeps the exact value type.
func encodeLiteral(v runtime.Value) (any, error) {
	var value any
	switch v := v.(type) {
	case runtime.NullValue:
		return map[string]any{"type": "Literal", "kind": "null"}, nil
	case runtime.BoolValue:
		return v.Val, nil
	case runtime.IntValue:
		return int(v.Val), nil
	case runtime.StringValue:
		return v.Val, nil
	case runtime.CharValue:
		value = string(v.Val)
	case runtime.LongValue:
		value = v.Val
	case runtime.FloatValue:
		value = float64(v.Val)
	case runtime.DoubleValue:
		value = v.Val
	case runtime.BigIntValue:
		value = v.Val.String()
	case runtime.DecimalValue:
		value = v.Val.String()
	case runtime.DateValue:
		value = v.Val.Format(time.RFC3339Nano)
	case runtime.PatternValue:
		value = v.Re.String()
	default:
		return nil, fmt.Errorf("%w: no literal form for %s", ErrInvalid, v.Kind())
	}
	return map[string]any{"type": "Literal", "kind": v.Kind().String(), "value": value}, nil
}
