package dataflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/ir"
)

func userRow(id int, name string) immutable.Row {
	return immutable.WrapRow(map[string]any{"id": int64(id), "name": name}, []any{int64(id)})
}

func orderRow(id, userID int) immutable.Row {
	return immutable.WrapRow(map[string]any{"id": int64(id), "user_id": int64(userID)}, []any{int64(id)})
}

func keyOfID(r immutable.Row) string {
	v, _ := r.Fields().Get("id")
	n, _ := v.Int()
	return idStr(n)
}

func keyOfUserID(r immutable.Row) string {
	v, _ := r.Fields().Get("user_id")
	n, _ := v.Int()
	return idStr(n)
}

func idStr(n int64) string {
	return string(rune('0' + n))
}

func mergeRows(left immutable.Row, leftPresent bool, right immutable.Row, rightPresent bool) (string, immutable.Row) {
	fields := map[string]any{"leftPresent": leftPresent, "rightPresent": rightPresent}
	if leftPresent {
		fields["left"] = left.Clone()
	}
	if rightPresent {
		fields["right"] = right.Clone()
	}
	return "joined", immutable.WrapRow(fields, nil)
}

func buildJoinGraph(kind ir.JoinKind) (*Graph, NodeID, NodeID, func() *Delta) {
	g := New()
	left := g.Input("u")
	right := g.Input("o")
	joined := g.Join(left, right, kind, keyOfID, keyOfUserID, mergeRows)

	var captured *Delta
	g.Output(joined, func(d *Delta) { captured = d })
	return g, left, right, func() *Delta { return captured }
}

func TestJoinInnerEmitsOnlyMatches(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinInner)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)

	o := NewDelta()
	o.Insert(Entry{Key: "1", Value: orderRow(1, 1)}, 1)
	o.Insert(Entry{Key: "2", Value: orderRow(2, 2)}, 1)
	g.Append("o", o)

	require.NoError(t, g.Run(context.Background()))
	require.Equal(t, 1, result().Len())
}

func TestJoinInnerMatchesAcrossTicks(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinInner)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)
	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 0, result().Len())

	o := NewDelta()
	o.Insert(Entry{Key: "1", Value: orderRow(1, 1)}, 1)
	g.Append("o", o)
	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 1, result().Len())
}

func TestJoinLeftEmitsUnmatchedLeftRow(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinLeft)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)
	require.NoError(t, g.Run(context.Background()))

	d := result()
	require.Equal(t, 1, d.Len())
	for e := range d.Iter() {
		v, _ := e.Value.Fields().Get("rightPresent")
		b, _ := v.Bool()
		assert.False(t, b)
	}
}

func TestJoinFullEmitsBothUnmatchedSides(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinFull)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)

	o := NewDelta()
	o.Insert(Entry{Key: "2", Value: orderRow(9, 2)}, 1)
	g.Append("o", o)

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 2, result().Len())
}

func TestJoinLeftUnmatchedRowNotReemittedOnUnrelatedTick(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinLeft)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)
	require.NoError(t, g.Run(context.Background()))
	require.Equal(t, 1, result().Len())

	// An unrelated insert on a later tick must not re-emit user 1's
	// already-emitted unmatched row: user 1's key was not touched.
	u2 := NewDelta()
	u2.Insert(Entry{Key: "5", Value: userRow(5, "bob")}, 1)
	g.Append("u", u2)
	require.NoError(t, g.Run(context.Background()))

	d := result()
	assert.Equal(t, 1, d.Len())
	for e, m := range d.Iter() {
		v, _ := e.Value.Fields().Get("left")
		left, _ := v.Map()
		n, _ := left.Get("name")
		s, _ := n.String()
		assert.Equal(t, "bob", s)
		assert.Equal(t, int64(1), m)
	}
}

func TestJoinLeftUnmatchedRowRetractedWhenMatchArrivesLaterTick(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinLeft)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)
	require.NoError(t, g.Run(context.Background()))
	require.Equal(t, 1, result().Len())
	for e := range result().Iter() {
		v, _ := e.Value.Fields().Get("rightPresent")
		b, _ := v.Bool()
		assert.False(t, b)
	}

	o := NewDelta()
	o.Insert(Entry{Key: "1", Value: orderRow(1, 1)}, 1)
	g.Append("o", o)
	require.NoError(t, g.Run(context.Background()))

	// This tick's own delta must retract the stale (ann, null) row and
	// emit (ann, order 1); a buggy non-incremental antijoin would emit only
	// the +1 match and leave the unjoined row's +1 unretracted.
	net := map[bool]int64{}
	for e, m := range result().Iter() {
		v, _ := e.Value.Fields().Get("rightPresent")
		b, _ := v.Bool()
		net[b] += m
	}
	assert.Equal(t, int64(-1), net[false])
	assert.Equal(t, int64(1), net[true])
}

func TestJoinWithNoMatchesAndInnerKindEmitsNothing(t *testing.T) {
	g, _, _, result := buildJoinGraph(ir.JoinInner)

	u := NewDelta()
	u.Insert(Entry{Key: "1", Value: userRow(1, "ann")}, 1)
	g.Append("u", u)
	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 0, result().Len())
}
