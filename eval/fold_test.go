package eval

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/ir"
)

func group(rows []int64, mults []int64) iter.Seq2[Scope, int64] {
	return func(yield func(Scope, int64) bool) {
		for i, v := range rows {
			row := immutable.WrapRow(map[string]any{"amount": v}, []any{v})
			scope := NewScope().WithRow("t", row)
			if !yield(scope, mults[i]) {
				return
			}
		}
	}
}

func TestFoldCount(t *testing.T) {
	e := NewEvaluator()
	v, err := Fold(e, ir.AggregateCount, nil, "t", group([]int64{1, 2, 3}, []int64{1, 2, 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestFoldSumWeightsByMultiplicity(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Ref{Alias: "t", Field: "amount"}
	v, err := Fold(e, ir.AggregateSum, arg, "t", group([]int64{10, 5}, []int64{2, 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(25), v)
}

func TestFoldAvg(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Ref{Alias: "t", Field: "amount"}
	v, err := Fold(e, ir.AggregateAvg, arg, "t", group([]int64{10, 20}, []int64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestFoldAvgEmptyGroupIsNil(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Ref{Alias: "t", Field: "amount"}
	v, err := Fold(e, ir.AggregateAvg, arg, "t", group(nil, nil))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFoldMinMax(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Ref{Alias: "t", Field: "amount"}

	minV, err := Fold(e, ir.AggregateMin, arg, "t", group([]int64{7, 2, 9}, []int64{1, 1, 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), minV)

	maxV, err := Fold(e, ir.AggregateMax, arg, "t", group([]int64{7, 2, 9}, []int64{1, 1, 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(9), maxV)
}

func TestFoldExtremeIgnoresNonPositiveMultiplicity(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Ref{Alias: "t", Field: "amount"}
	maxV, err := Fold(e, ir.AggregateMax, arg, "t", group([]int64{100, 5}, []int64{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(5), maxV)
}

func TestFoldSumRejectsNonNumeric(t *testing.T) {
	e := NewEvaluator()
	arg := ir.Val{Value: "nope"}
	_, err := Fold(e, ir.AggregateSum, arg, "t", group([]int64{1}, []int64{1}))
	assert.Error(t, err)
}

func TestFoldUnknownKindErrors(t *testing.T) {
	e := NewEvaluator()
	_, err := Fold(e, ir.AggregateKind("bogus"), nil, "t", group(nil, nil))
	assert.Error(t, err)
}
