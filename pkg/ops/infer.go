package ops

import (
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/types"
)

// InferType computes the result type for the given operand types. A nil
// result means no operands of these types can ever succeed.
func (o *Operator) InferType(args ...*types.Type) *types.Type {
	if len(args) != o.arity {
		return nil
	}
	if o.arity == 1 {
		return o.inferUnary(orAny(args[0]))
	}
	return o.inferBinary(orAny(args[0]), orAny(args[1]))
}

func orAny(t *types.Type) *types.Type {
	if t == nil {
		return types.Any
	}
	return t
}

func isAny(t *types.Type) bool { return t.Kind() == types.KindAny }

func isNull(t *types.Type) bool { return t.Kind() == types.KindNull }

func isTextType(t *types.Type) bool {
	switch t.Kind() {
	case types.KindString, types.KindStringBuffer, types.KindCharSequence, types.KindChar:
		return true
	}
	return false
}

func isIntegralType(t *types.Type) bool {
	return t.IsNumeric() && t.Rank().IsIntegral()
}

// maybeIntegral admits types whose values may be integers.
func maybeIntegral(t *types.Type) bool {
	return isAny(t) || t.IsNumeric() && (t.Rank() == runtime.RankNone || t.Rank().IsIntegral())
}

// promote applies the numeric promotion table to two numeric types.
func promote(a, b *types.Type) *types.Type {
	return types.ForRank(runtime.PromoteRank(a.Rank(), b.Rank()))
}

// numeric types operands that must both be numbers, letting any through.
func numeric(a, b *types.Type) *types.Type {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return promote(a, b)
	case isAny(a) && (isAny(b) || b.IsNumeric()), isAny(b) && a.IsNumeric():
		return types.Number
	}
	return nil
}

func (o *Operator) inferBinary(a, b *types.Type) *types.Type {
	switch o.op {
	case OpAdd:
		return inferAdd(a, b)
	case OpSub:
		if a.IsContainer() && a.Kind() != types.KindIterator {
			return a
		}
		return numeric(a, b)
	case OpMul:
		switch a.Kind() {
		case types.KindString, types.KindStringBuffer, types.KindCharSequence:
			if maybeIntegral(b) {
				return types.String
			}
			return nil
		case types.KindList:
			if maybeIntegral(b) {
				return a
			}
			return nil
		}
		if isAny(a) && !b.IsNumeric() && !isAny(b) {
			return nil
		}
		if isAny(a) {
			return types.Any
		}
		return numeric(a, b)
	case OpDiv, OpMod:
		return numeric(a, b)
	case OpBitAnd, OpBitOr, OpBitXor:
		switch {
		case a.Kind() == types.KindBoolean && (b.Kind() == types.KindBoolean || isAny(b)):
			return types.Boolean
		case isIntegralType(a) && isIntegralType(b):
			return promote(a, b)
		case isAny(a) && isAny(b):
			return types.Any
		case isAny(a) && b.Kind() == types.KindBoolean:
			return types.Boolean
		case maybeIntegral(a) && maybeIntegral(b):
			return types.Number
		}
		return nil
	case OpShl, OpShr, OpUShr:
		switch {
		case !maybeIntegral(b):
			return nil
		case isIntegralType(a):
			return a
		case maybeIntegral(a):
			return types.Number
		}
		return nil
	case OpEq, OpNe:
		return types.Boolean
	case OpLt, OpLe, OpGt, OpGe:
		if ordered(a, b) {
			return types.Boolean
		}
		return nil
	case OpMatch:
		textOK := isTextType(a) && a.Kind() != types.KindChar || isAny(a)
		patternOK := b.Kind() == types.KindPattern || b.Kind() == types.KindString || isAny(b)
		if textOK && patternOK {
			return types.Boolean
		}
		return nil
	}
	return nil
}

func ordered(a, b *types.Type) bool {
	if isAny(a) || isAny(b) {
		return true
	}
	switch {
	case a.IsNumeric():
		return b.IsNumeric()
	case a.Kind() == types.KindChar:
		return b.Kind() == types.KindChar
	case a.Kind() == types.KindDate:
		return b.Kind() == types.KindDate
	case types.CharSequence.Contains(a) && !isNull(a):
		return types.CharSequence.Contains(b) && !isNull(b)
	}
	return false
}

func inferAdd(a, b *types.Type) *types.Type {
	if isTextType(a) || isTextType(b) {
		return types.String
	}
	switch a.Kind() {
	case types.KindList, types.KindSet, types.KindArray, types.KindCollection:
		if b.IsContainer() && b.Kind() != types.KindMap && b.Kind() != types.KindIterator {
			return a.WithElem(a.Elem().Union(b.Elem()))
		}
		return a.WithElem(a.Elem().Union(b))
	case types.KindMap:
		if b.Kind() == types.KindMap || isAny(b) {
			return types.Map
		}
		return nil
	case types.KindIterator:
		if b.IsContainer() && b.Kind() != types.KindMap {
			return types.IteratorOf(a.Elem().Union(b.Elem()))
		}
		return types.Iterator
	}
	switch {
	case isNull(a) && (b.IsNumeric() || isNull(b)):
		return promote(types.Int, nullAsInt(b))
	case isNull(b) && a.IsNumeric():
		return promote(a, types.Int)
	case isAny(a) || isAny(b):
		return types.Any
	}
	return numeric(a, b)
}

func nullAsInt(t *types.Type) *types.Type {
	if isNull(t) {
		return types.Int
	}
	return t
}

func (o *Operator) inferUnary(a *types.Type) *types.Type {
	switch o.op {
	case OpNeg, OpPlus:
		if a.IsNumeric() {
			return a
		}
		if isAny(a) {
			return types.Number
		}
	case OpNot:
		if a.Kind() == types.KindBoolean || isAny(a) {
			return types.Boolean
		}
	case OpBitNot:
		if isIntegralType(a) {
			return a
		}
		if maybeIntegral(a) {
			return types.Number
		}
	}
	return nil
}
