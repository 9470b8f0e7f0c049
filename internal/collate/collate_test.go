package collate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeStrata(t *testing.T) {
	assert.Equal(t, NilStrata, TypeStrata(nil))
	assert.Equal(t, BoolStrata, TypeStrata(true))
	assert.Equal(t, NumericStrata, TypeStrata(int64(1)))
	assert.Equal(t, NumericStrata, TypeStrata(uint8(1)))
	assert.Equal(t, NumericStrata, TypeStrata(1.5))
	assert.Equal(t, StringStrata, TypeStrata("x"))
	assert.Equal(t, SliceStrata, TypeStrata([]any{1, 2}))
	assert.Equal(t, InvalidStrata, TypeStrata(struct{}{}))

	type namedInt int
	assert.Equal(t, InvalidStrata, TypeStrata(namedInt(1)))
}

func TestValueOrderCrossStrata(t *testing.T) {
	cmp, err := ValueOrder(nil, false)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = ValueOrder("a", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestValueOrderNumericMixedSignedUnsigned(t *testing.T) {
	less, err := Less(int64(-1), uint64(1))
	require.NoError(t, err)
	assert.True(t, less)

	less, err = Less(uint64(1), int64(-1))
	require.NoError(t, err)
	assert.False(t, less)
}

func TestValueOrderFloatVsIntPrecision(t *testing.T) {
	// 2^53+1 is not exactly representable as float64; CompareInt64Float64
	// must compare by truncating the float, not by converting the int.
	const big = int64(1) << 53
	cmp, err := ValueOrder(big+1, float64(big))
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestFloat64CompareSpecialValues(t *testing.T) {
	assert.Equal(t, -1, Float64Compare(math.Inf(-1), 0))
	assert.Equal(t, 1, Float64Compare(math.Inf(1), 0))
	assert.Equal(t, 0, Float64Compare(math.NaN(), math.NaN()))
	assert.Equal(t, -1, Float64Compare(0, math.NaN()))
}

func TestValueOrderStrings(t *testing.T) {
	less, err := Less("abc", "abd")
	require.NoError(t, err)
	assert.True(t, less)
}

func TestValueOrderSlicesLexicographic(t *testing.T) {
	cmp, err := ValueOrder([]any{1, 2}, []any{1, 3})
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = ValueOrder([]any{1}, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestValueOrderUnsupportedType(t *testing.T) {
	_, err := ValueOrder(struct{}{}, 1)
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, UnspecifiedKind, Classify(nil))
	assert.Equal(t, BoolKind, Classify(true))
	assert.Equal(t, StringKind, Classify("x"))
	assert.Equal(t, IntKind, Classify(int32(1)))
	assert.Equal(t, FloatKind, Classify(1.5))
	assert.Equal(t, SliceKind, Classify([]any{1}))

	n := 5
	assert.Equal(t, IntKind, Classify(&n))

	var pn *int
	assert.Equal(t, UnspecifiedKind, Classify(pn))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, 5, Max(2, 5))
}
