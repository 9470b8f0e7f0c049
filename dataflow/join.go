package dataflow

import (
	"context"

	"github.com/simon-lentz/ivm/immutable"
	"github.com/simon-lentz/ivm/index"
	"github.com/simon-lentz/ivm/ir"
	"github.com/simon-lentz/ivm/mset"
)

// KeyFunc extracts a join key's string form from a row.
type KeyFunc func(row immutable.Row) string

// MergeFunc assembles the composite post-join row. right is the zero
// [immutable.Row] with rightPresent false for a left-outer row with no
// match, and symmetrically for a right-outer row (§4.3: "appropriate
// None slots for outer joins").
type MergeFunc func(left immutable.Row, leftPresent bool, right immutable.Row, rightPresent bool) (key string, row immutable.Row)

var joinHash = mset.HashKV[string](func(p index.Pair[immutable.Row, immutable.Row]) string {
	return p.Left.CanonicalString() + "\x00" + p.Right.CanonicalString()
})

// unmatchedEmission records one outer-join row [joinNode] has most recently
// emitted for a primary-side key, so a later tick can retract it precisely
// (by key and value hash) instead of re-emitting absolute state.
type unmatchedEmission struct {
	outKey string
	outRow immutable.Row
	mult   int64
}

type joinNode struct {
	left, right           NodeID
	leftKeyOf, rightKeyOf KeyFunc
	kind                  ir.JoinKind
	merge                 MergeFunc

	leftIndex  *index.Index[string, immutable.Row]
	rightIndex *index.Index[string, immutable.Row]

	// leftUnmatched/rightUnmatched hold the outer rows currently emitted
	// per primary key (key -> value hash -> emission), mirroring
	// reduceNode.lastResult: a key is only ever touched here again once
	// its match state or row set changes, and the old emission is
	// retracted before any new one is emitted.
	leftUnmatched  map[string]map[string]unmatchedEmission
	rightUnmatched map[string]map[string]unmatchedEmission
}

// Join registers the join operator (§4.3, §4.4 "Join wiring detail"):
// both sides are indexed by their join key, the matched portion is
// computed incrementally via the bilinear delta-join identity
// (dL⋈R + dL⋈dR + L⋈dR, evaluated against this tick's pre-update
// indexes so no snapshot copy is needed), and for left/right/full kinds
// the unmatched (outer) portion re-derives only the keys this tick's
// deltas touched and retracts whatever it emitted for that key last time
// before emitting the recomputed rows, so the operator's own output stays
// an incremental delta rather than a repeated snapshot of absolute state.
// The result is consolidated before being returned, fusing the "map" half
// of §4.4's consolidate+filter+map postprocessing into the node itself
// (merge already assembles the final composite key and namespaced row,
// so there is no separate presence-filter step: merge's leftPresent/
// rightPresent flags ARE that presence requirement).
func (g *Graph) Join(left, right NodeID, kind ir.JoinKind, leftKeyOf, rightKeyOf KeyFunc, merge MergeFunc) NodeID {
	return g.register(&joinNode{
		left: left, right: right,
		leftKeyOf: leftKeyOf, rightKeyOf: rightKeyOf,
		kind:  kind,
		merge: merge,

		leftIndex:  index.New[string](rowHashValue),
		rightIndex: index.New[string](rowHashValue),

		leftUnmatched:  make(map[string]map[string]unmatchedEmission),
		rightUnmatched: make(map[string]map[string]unmatchedEmission),
	})
}

func rowHashValue(r immutable.Row) string { return r.CanonicalString() }

func (n *joinNode) step(_ context.Context, g *Graph) (*Delta, error) {
	leftDelta := g.output(n.left)
	rightDelta := g.output(n.right)

	touched := map[string]bool{}

	dLeft := index.New[string](rowHashValue)
	for e, m := range leftDelta.Iter() {
		key := n.leftKeyOf(e.Value)
		if err := dLeft.Add(key, e.Value, m); err != nil {
			return nil, err
		}
		touched[key] = true
	}
	dRight := index.New[string](rowHashValue)
	for e, m := range rightDelta.Iter() {
		key := n.rightKeyOf(e.Value)
		if err := dRight.Add(key, e.Value, m); err != nil {
			return nil, err
		}
		touched[key] = true
	}

	matched := index.Join(dLeft, n.rightIndex, joinHash)
	matched.Extend(index.Join(dLeft, dRight, joinHash))
	matched.Extend(index.Join(n.leftIndex, dRight, joinHash))
	matched = matched.Consolidate()

	out := NewDelta()
	for p, m := range matched.Iter() {
		key, row := n.merge(p.Value.Left, true, p.Value.Right, true)
		out.Insert(Entry{Key: key, Value: row}, m)
	}

	// Apply this tick's deltas to the persistent indexes before the
	// antijoin pass, so unmatched rows reflect the post-tick state.
	if err := n.leftIndex.Append(dLeft); err != nil {
		return nil, err
	}
	if err := n.rightIndex.Append(dRight); err != nil {
		return nil, err
	}

	switch n.kind {
	case ir.JoinLeft, ir.JoinFull:
		n.emitUnmatched(out, touched, n.leftIndex, n.rightIndex, n.leftUnmatched, true)
	}
	switch n.kind {
	case ir.JoinRight, ir.JoinFull:
		n.emitUnmatched(out, touched, n.rightIndex, n.leftIndex, n.rightUnmatched, false)
	}

	return out.Consolidate(), nil
}

// emitUnmatched re-derives the outer rows owed for every key touched this
// tick (by either side's delta, since either a primary-side row set change
// or an other-side match-existence change can flip a key's unmatched
// status) and diffs the result against state, the emissions this node
// itself produced last time that key was touched (mirroring
// reduceNode.lastResult): a key that gained a match, lost its last primary
// row, or changed its row set has its stale emissions retracted with -m
// before any new ones are emitted with +m, so no unjoined row is ever
// re-emitted as absolute state or left unretracted once it stops applying.
func (n *joinNode) emitUnmatched(out *Delta, touched map[string]bool, primary, other *index.Index[string, immutable.Row], state map[string]map[string]unmatchedEmission, leftIsPrimary bool) {
	for key := range touched {
		if prevBucket, ok := state[key]; ok {
			for _, em := range prevBucket {
				out.Insert(Entry{Key: em.outKey, Value: em.outRow}, -em.mult)
			}
			delete(state, key)
		}

		if other.Has(key) || !primary.Has(key) {
			continue
		}

		bucket := make(map[string]unmatchedEmission)
		for row, m := range primary.Get(key) {
			var outKey string
			var outRow immutable.Row
			if leftIsPrimary {
				outKey, outRow = n.merge(row, true, immutable.Row{}, false)
			} else {
				outKey, outRow = n.merge(immutable.Row{}, false, row, true)
			}
			out.Insert(Entry{Key: outKey, Value: outRow}, m)
			bucket[rowHashValue(row)] = unmatchedEmission{outKey: outKey, outRow: outRow, mult: m}
		}
		state[key] = bucket
	}
}
