package dataflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/ivm/immutable"
)

func scoreRow(id int, score int64) immutable.Row {
	return immutable.WrapRow(map[string]any{"id": int64(id), "score": score}, []any{int64(id)})
}

func extractScore(r immutable.Row) any {
	v, _ := r.Fields().Get("score")
	n, _ := v.Int()
	return n
}

func TestOrderByWindowKeepsOnlyTopN(t *testing.T) {
	g := New()
	in := g.Input("s")
	out := g.OrderByWithFractionalIndex(in, extractScore, OrderByOptions{Limit: 2})

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: scoreRow(1, 30)}, 1)
	d.Insert(Entry{Key: "2", Value: scoreRow(2, 10)}, 1)
	d.Insert(Entry{Key: "3", Value: scoreRow(3, 20)}, 1)
	g.Append("s", d)
	require.NoError(t, g.Run(context.Background()))

	require.Equal(t, 2, captured.Len())
	for e, m := range captured.Iter() {
		assert.Equal(t, int64(1), m)
		assert.NotEqual(t, "1", e.Key, "highest score should be outside a limit-2 window")
		fi, ok := e.Value.Fields().Get(FractionalIndexField)
		require.True(t, ok)
		s, _ := fi.String()
		assert.NotEmpty(t, s)
	}
}

func TestOrderBySetSizeCallbackReportsWindowSize(t *testing.T) {
	g := New()
	in := g.Input("s")
	var size func() int
	out := g.OrderByWithFractionalIndex(in, extractScore, OrderByOptions{
		Limit:           5,
		SetSizeCallback: func(f func() int) { size = f },
	})
	g.Output(out, func(d *Delta) {})

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: scoreRow(1, 1)}, 1)
	d.Insert(Entry{Key: "2", Value: scoreRow(2, 2)}, 1)
	g.Append("s", d)
	require.NoError(t, g.Run(context.Background()))

	require.NotNil(t, size)
	assert.Equal(t, 2, size())
}

func TestOrderByEmitsRetractionWhenRowLeavesWindow(t *testing.T) {
	g := New()
	in := g.Input("s")
	out := g.OrderByWithFractionalIndex(in, extractScore, OrderByOptions{Limit: 1})

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d1 := NewDelta()
	d1.Insert(Entry{Key: "1", Value: scoreRow(1, 5)}, 1)
	g.Append("s", d1)
	require.NoError(t, g.Run(context.Background()))
	require.Equal(t, 1, captured.Len())

	d2 := NewDelta()
	d2.Insert(Entry{Key: "2", Value: scoreRow(2, 1)}, 1)
	g.Append("s", d2)
	require.NoError(t, g.Run(context.Background()))

	sawRetraction := false
	for e, m := range captured.Iter() {
		if e.Key == "1" && m == -1 {
			sawRetraction = true
		}
	}
	assert.True(t, sawRetraction)
}
