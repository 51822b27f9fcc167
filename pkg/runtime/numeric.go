package runtime

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// NumRank orders the numeric representations for promotion.
type NumRank int

const (
	RankNone NumRank = iota
	RankInt
	RankLong
	RankBigInt
	RankFloat
	RankDouble
	RankBigDec
)

func (r NumRank) String() string {
	switch r {
	case RankInt:
		return "int"
	case RankLong:
		return "long"
	case RankBigInt:
		return "biginteger"
	case RankFloat:
		return "float"
	case RankDouble:
		return "double"
	case RankBigDec:
		return "bigdecimal"
	default:
		return "number"
	}
}

// IsIntegral reports whether the rank has no fractional part.
func (r NumRank) IsIntegral() bool {
	return r == RankInt || r == RankLong || r == RankBigInt
}

// RankOf returns the numeric rank of v, or false for non-numbers.
func RankOf(v Value) (NumRank, bool) {
	switch v.(type) {
	case IntValue:
		return RankInt, true
	case LongValue:
		return RankLong, true
	case BigIntValue:
		return RankBigInt, true
	case FloatValue:
		return RankFloat, true
	case DoubleValue:
		return RankDouble, true
	case DecimalValue:
		return RankBigDec, true
	default:
		return RankNone, false
	}
}

func IsNumber(v Value) bool {
	_, ok := RankOf(v)
	return ok
}

// PromoteRank is the result rank of mixed arithmetic. RankNone stands for a
// statically unknown number and absorbs everything.
func PromoteRank(a, b NumRank) NumRank {
	switch {
	case a == RankNone || b == RankNone:
		return RankNone
	case a == RankBigDec || b == RankBigDec:
		return RankBigDec
	case (a == RankBigInt && !b.IsIntegral()) || (b == RankBigInt && !a.IsIntegral()):
		return RankBigDec
	case a == RankDouble || b == RankDouble:
		return RankDouble
	case a == RankFloat || b == RankFloat:
		return RankFloat
	case a == RankBigInt || b == RankBigInt:
		return RankBigInt
	case a == RankLong || b == RankLong:
		return RankLong
	default:
		return RankInt
	}
}

// ToBig returns the integral value of v, truncating fractions.
func ToBig(v Value) *big.Int {
	switch n := v.(type) {
	case IntValue:
		return big.NewInt(int64(n.Val))
	case LongValue:
		return big.NewInt(n.Val)
	case BigIntValue:
		return new(big.Int).Set(n.Val)
	case FloatValue:
		return floatToBig(float64(n.Val))
	case DoubleValue:
		return floatToBig(n.Val)
	case DecimalValue:
		return n.Val.BigInt()
	default:
		return new(big.Int)
	}
}

func floatToBig(f float64) *big.Int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return new(big.Int)
	}
	bi, _ := new(big.Float).SetFloat64(math.Trunc(f)).Int(nil)
	return bi
}

// ToInt64 truncates v to 64 bits the way a host cast does.
func ToInt64(v Value) int64 {
	switch n := v.(type) {
	case IntValue:
		return int64(n.Val)
	case LongValue:
		return n.Val
	case FloatValue:
		return int64(n.Val)
	case DoubleValue:
		return int64(n.Val)
	default:
		return ToBig(v).Int64()
	}
}

func ToFloat64(v Value) float64 {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Val)
	case LongValue:
		return float64(n.Val)
	case BigIntValue:
		f, _ := new(big.Float).SetInt(n.Val).Float64()
		return f
	case FloatValue:
		return float64(n.Val)
	case DoubleValue:
		return n.Val
	case DecimalValue:
		f, _ := n.Val.Float64()
		return f
	default:
		return 0
	}
}

func ToDecimal(v Value) decimal.Decimal {
	switch n := v.(type) {
	case IntValue:
		return decimal.NewFromInt(int64(n.Val))
	case LongValue:
		return decimal.NewFromInt(n.Val)
	case BigIntValue:
		return decimal.NewFromBigInt(n.Val, 0)
	case FloatValue:
		return decimal.NewFromFloat32(n.Val)
	case DoubleValue:
		return decimal.NewFromFloat(n.Val)
	case DecimalValue:
		return n.Val
	default:
		return decimal.Zero
	}
}

// ToRank converts v to the representation of rank r.
func ToRank(v Value, r NumRank) Value {
	switch r {
	case RankInt:
		return IntValue{Val: int32(ToInt64(v))}
	case RankLong:
		return LongValue{Val: ToInt64(v)}
	case RankBigInt:
		return BigIntValue{Val: ToBig(v)}
	case RankFloat:
		return FloatValue{Val: float32(ToFloat64(v))}
	case RankDouble:
		return DoubleValue{Val: ToFloat64(v)}
	case RankBigDec:
		return DecimalValue{Val: ToDecimal(v)}
	default:
		return v
	}
}

// CompareNumbers orders two numbers by value across ranks.
func CompareNumbers(a, b Value) int {
	ra, _ := RankOf(a)
	rb, _ := RankOf(b)
	switch PromoteRank(ra, rb) {
	case RankInt, RankLong:
		x, y := ToInt64(a), ToInt64(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case RankBigInt:
		return ToBig(a).Cmp(ToBig(b))
	case RankBigDec:
		return ToDecimal(a).Cmp(ToDecimal(b))
	default:
		x, y := ToFloat64(a), ToFloat64(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}
