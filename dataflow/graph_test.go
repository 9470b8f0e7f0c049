package dataflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/ivm/immutable"
)

func row(id int, name string) immutable.Row {
	return immutable.WrapRow(map[string]any{"id": int64(id), "name": name}, []any{int64(id)})
}

func TestMapTransformsEveryEntry(t *testing.T) {
	g := New()
	in := g.Input("t")
	out := g.Map(in, func(key string, r immutable.Row) (string, immutable.Row) {
		fields := r.Clone()
		fields["shouted"] = true
		return key, immutable.WrapRowClone(fields, r.Key().Clone())
	})

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "ann")}, 1)
	g.Append("t", d)
	require.NoError(t, g.Run(context.Background()))

	require.Equal(t, 1, captured.Len())
	for e, m := range captured.Iter() {
		assert.Equal(t, int64(1), m)
		v, ok := e.Value.Fields().Get("shouted")
		require.True(t, ok)
		b, _ := v.Bool()
		assert.True(t, b)
	}
}

func TestFilterDropsNonMatchingEntries(t *testing.T) {
	g := New()
	in := g.Input("t")
	out := g.Filter(in, func(key string, r immutable.Row) bool {
		v, _ := r.Fields().Get("id")
		n, _ := v.Int()
		return n > 1
	})

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 1)
	d.Insert(Entry{Key: "2", Value: row(2, "b")}, 1)
	g.Append("t", d)
	require.NoError(t, g.Run(context.Background()))

	require.Equal(t, 1, captured.Len())
}

func TestNegateFlipsMultiplicity(t *testing.T) {
	g := New()
	in := g.Input("t")
	out := g.Negate(in)

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 3)
	g.Append("t", d)
	require.NoError(t, g.Run(context.Background()))

	for _, m := range captured.Iter() {
		assert.Equal(t, int64(-3), m)
	}
}

func TestConsolidateDropsNetZero(t *testing.T) {
	g := New()
	in := g.Input("t")
	out := g.Consolidate(in)

	var captured *Delta
	g.Output(out, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 1)
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, -1)
	g.Append("t", d)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, 0, captured.Len())
}

func TestRunDrainsPendingWork(t *testing.T) {
	g := New()
	in := g.Input("t")
	g.Output(in, func(d *Delta) {})

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 1)
	g.Append("t", d)
	assert.True(t, g.HasPendingWork())

	require.NoError(t, g.Run(context.Background()))
	assert.False(t, g.HasPendingWork())
}

func TestTapObservesWithoutAltering(t *testing.T) {
	g := New()
	in := g.Input("t")

	var seen []string
	tapped := g.Tap(in, func(key string, mult int64) {
		seen = append(seen, key)
	})

	var captured *Delta
	g.Output(tapped, func(d *Delta) { captured = d })

	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 1)
	g.Append("t", d)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, []string{"1"}, seen)
	require.Equal(t, 1, captured.Len())
}

func TestAppendToUnknownAliasIsNoOp(t *testing.T) {
	g := New()
	d := NewDelta()
	d.Insert(Entry{Key: "1", Value: row(1, "a")}, 1)
	assert.NotPanics(t, func() { g.Append("missing", d) })
}
