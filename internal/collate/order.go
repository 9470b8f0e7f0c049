package collate

import (
	"fmt"
	"math"
	"strings"
)

// TypeOrder orders types canonically: 1 if left's strata is greater than
// right's, 0 if both are in the same strata, -1 otherwise. Unsupported
// types return an error.
func TypeOrder(left, right any) (int, error) {
	leftStrata := TypeStrata(left)
	rightStrata := TypeStrata(right)

	if leftStrata == InvalidStrata || rightStrata == InvalidStrata {
		return 0, fmt.Errorf("collate: unsupported type comparison between %T and %T", left, right)
	}

	switch {
	case leftStrata > rightStrata:
		return 1, nil
	case leftStrata == rightStrata:
		return 0, nil
	default:
		return -1, nil
	}
}

type floatClass int

const (
	// Ordered low-to-high to keep Float64Compare deterministic for special values.
	floatClassNegInf floatClass = iota
	floatClassFinite
	floatClassPosInf
	floatClassNaN // sorts after all other float classes
)

func classifyFloat64(v float64) floatClass {
	switch {
	case math.IsNaN(v):
		return floatClassNaN
	case math.IsInf(v, -1):
		return floatClassNegInf
	case math.IsInf(v, 1):
		return floatClassPosInf
	default:
		return floatClassFinite
	}
}

// ValueOrder returns the canonical order of two values, using TypeOrder to
// compare across strata first and a strata-specific comparison when both
// values land in the same strata. Floats order as -Inf < finite < +Inf <
// NaN, with NaN equal to NaN, to keep the order total and deterministic.
func ValueOrder(left, right any) (int, error) {
	if to, err := TypeOrder(left, right); err != nil {
		return 0, err
	} else if to != 0 {
		return to, nil
	}
	switch TypeStrata(left) {
	case NilStrata:
		return 0, nil
	case BoolStrata:
		lb, lbok := left.(bool)
		rb, rbok := right.(bool)
		if !lbok || !rbok {
			return 0, fmt.Errorf("collate: expected boolean values (left %T, right %T)", left, right)
		}
		if lb == rb {
			return 0, nil
		}
		if lb {
			return 1, nil
		}
		return -1, nil
	case NumericStrata:
		return numericOrder(left, right)
	case StringStrata:
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return 0, fmt.Errorf("collate: expected string values (left %T, right %T)", left, right)
		}
		return strings.Compare(ls, rs), nil
	case SliceStrata:
		return sliceOrder(left, right)
	}
	return 0, fmt.Errorf("collate: unknown strata for comparison between %T and %T", left, right)
}

func numericOrder(left, right any) (int, error) {
	li, liok := GetInt64(left)
	lu, luok := GetUint64(left)
	lf, lfok := GetFloat64(left)
	ri, riok := GetInt64(right)
	ru, ruok := GetUint64(right)
	rf, rfok := GetFloat64(right)

	switch {
	case liok && riok:
		return Int64Compare(li, ri), nil
	case luok && ruok:
		return Uint64Compare(lu, ru), nil
	case lfok && rfok:
		return Float64Compare(lf, rf), nil
	case liok && ruok:
		if li < 0 {
			return -1, nil
		}
		return Uint64Compare(uint64(li), ru), nil
	case luok && riok:
		if ri < 0 {
			return 1, nil
		}
		return Uint64Compare(lu, uint64(ri)), nil
	case lfok && riok:
		return -CompareInt64Float64(ri, lf), nil
	case liok && rfok:
		return CompareInt64Float64(li, rf), nil
	case lfok && ruok:
		return -CompareUint64Float64(ru, lf), nil
	case luok && rfok:
		return CompareUint64Float64(lu, rf), nil
	}
	return 0, fmt.Errorf("collate: expected numeric values (left %T, right %T)", left, right)
}

func sliceOrder(left, right any) (int, error) {
	ls, lok := asSlice(left)
	rs, rok := asSlice(right)
	if !lok || !rok {
		return 0, fmt.Errorf("collate: expected slice values (left %T, right %T)", left, right)
	}
	minLen := Min(len(ls), len(rs))
	for i := range minLen {
		which, err := ValueOrder(ls[i], rs[i])
		if err != nil {
			return 0, err
		}
		if which != 0 {
			return which, nil
		}
	}
	switch {
	case len(ls) == len(rs):
		return 0, nil
	case len(ls) > len(rs):
		return 1, nil
	default:
		return -1, nil
	}
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	default:
		return nil, false
	}
}

// Less reports whether left sorts strictly before right under ValueOrder.
// Callers must handle the returned error for unsupported inputs.
func Less(left, right any) (bool, error) {
	cmp, err := ValueOrder(left, right)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

// GetInt64 extracts an int64 from any predeclared integer type. Returns
// (0, false) for non-integer types or unsigned values above math.MaxInt64.
func GetInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		n64 := uint64(x)
		if n64 > uint64(math.MaxInt64) {
			return 0, false
		}
		return int64(n64), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uintptr:
		if uint64(x) > uint64(math.MaxInt64) {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

// GetUint64 extracts a uint64 from any predeclared unsigned integer type,
// including values above math.MaxInt64 that GetInt64 would reject.
func GetUint64(val any) (uint64, bool) {
	switch x := val.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uintptr:
		return uint64(x), true
	}
	return 0, false
}

// GetFloat64 extracts a float64 from a float32 or float64. Returns
// (0, false) for non-float types.
func GetFloat64(val any) (float64, bool) {
	switch x := val.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Int64Compare returns 1 if left > right, 0 if equal, -1 if left < right.
func Int64Compare(left, right int64) int {
	switch {
	case left == right:
		return 0
	case left > right:
		return 1
	default:
		return -1
	}
}

// Uint64Compare returns 1 if left > right, 0 if equal, -1 if left < right.
func Uint64Compare(left, right uint64) int {
	switch {
	case left == right:
		return 0
	case left > right:
		return 1
	default:
		return -1
	}
}

// Float64Compare returns 1 if left > right, 0 if equal, -1 if left < right.
// Special values order as -Inf < finite < +Inf < NaN, with NaN equal to NaN.
func Float64Compare(left, right float64) int {
	leftClass := classifyFloat64(left)
	rightClass := classifyFloat64(right)

	if leftClass != floatClassFinite || rightClass != floatClassFinite {
		switch {
		case leftClass == rightClass:
			return 0
		case leftClass < rightClass:
			return -1
		default:
			return 1
		}
	}

	switch {
	case left == right:
		return 0
	case left > right:
		return 1
	default:
		return -1
	}
}

// CompareInt64Float64 compares an int64 against a float64 exactly, without
// precision loss: it truncates the float and compares as int64 rather than
// converting the int64 to float64, which preserves transitivity for values
// beyond 2^53. Returns -1 if i < f, 0 if equal, 1 if i > f.
func CompareInt64Float64(i int64, f float64) int {
	switch classifyFloat64(f) {
	case floatClassNegInf:
		return 1
	case floatClassPosInf:
		return -1
	case floatClassNaN:
		return -1
	}

	trunc, frac := math.Modf(f)

	if frac != 0 {
		if trunc > float64(math.MaxInt64) {
			return -1
		}
		if trunc < float64(math.MinInt64) {
			return 1
		}
		fi := int64(trunc)
		switch {
		case i < fi:
			return -1
		case i > fi:
			return 1
		case frac > 0:
			return -1
		default:
			return 1
		}
	}

	const maxInt64AsFloat = float64(1 << 63)
	const minInt64AsFloat = -float64(1 << 63)

	if f >= maxInt64AsFloat {
		return -1
	}
	if f < minInt64AsFloat {
		return 1
	}
	return Int64Compare(i, int64(f))
}

// CompareUint64Float64 compares a uint64 against a float64 exactly, using
// the same truncate-and-compare-as-integer approach as CompareInt64Float64.
// Returns -1 if u < f, 0 if equal, 1 if u > f.
func CompareUint64Float64(u uint64, f float64) int {
	switch classifyFloat64(f) {
	case floatClassNegInf:
		return 1
	case floatClassPosInf:
		return -1
	case floatClassNaN:
		return -1
	}

	if f < 0 {
		return 1
	}

	trunc, frac := math.Modf(f)
	const maxUint64AsFloat = float64(1<<63) * 2

	if frac != 0 {
		if trunc >= maxUint64AsFloat {
			return -1
		}
		fu := uint64(trunc)
		switch {
		case u < fu:
			return -1
		case u > fu:
			return 1
		default:
			return -1
		}
	}

	if f >= maxUint64AsFloat {
		return -1
	}
	return Uint64Compare(u, uint64(f))
}
