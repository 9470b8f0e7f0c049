package index

import (
	"iter"

	"github.com/simon-lentz/ivm/mset"
)

// Pair holds the two joined values for a matched key.
type Pair[V1, V2 any] struct {
	Left  V1
	Right V2
}

// Join performs the hybrid index's symmetric keyed join (§4.2): the
// smaller side (by key count) is iterated, and for every key it holds,
// the larger side is probed by key. Every combination of live values on
// both sides is emitted with multiplicity m1*m2; entries where either
// side's multiplicity is 0 never occur because 0-multiplicity entries are
// never stored.
//
// hash builds the result MultiSet's HashFunc from the (key, pair) it
// emits; callers typically derive it from their row's content hash.
func Join[K comparable, V1, V2 any](
	left *Index[K, V1],
	right *Index[K, V2],
	hash mset.HashFunc[mset.KV[K, Pair[V1, V2]]],
) *mset.MultiSet[mset.KV[K, Pair[V1, V2]]] {
	out := mset.New(hash)
	if left == nil || right == nil {
		return out
	}

	// Iterate the smaller side and probe the larger; which side is
	// "active" only affects iteration cost, never the emitted pairs.
	if left.Size() <= right.Size() {
		for key, e := range left.entries() {
			for rightVal, rightMult := range right.Get(key) {
				m := e.mult * rightMult
				if m == 0 {
					continue
				}
				pair := Pair[V1, V2]{Left: e.value, Right: rightVal}
				out.Insert(mset.KV[K, Pair[V1, V2]]{Key: key, Value: pair}, m)
			}
		}
		return out
	}

	for key, e := range right.entries() {
		for leftVal, leftMult := range left.Get(key) {
			m := leftMult * e.mult
			if m == 0 {
				continue
			}
			pair := Pair[V1, V2]{Left: leftVal, Right: e.value}
			out.Insert(mset.KV[K, Pair[V1, V2]]{Key: key, Value: pair}, m)
		}
	}
	return out
}

// entries iterates every (key, valueEntry) pair stored in ix, across both
// the ValueIndex and HashIndex tables. This is the per-key value iterator
// §4.2 calls for when iterating the smaller join side, since it never
// materializes an intermediate value slice.
func (ix *Index[K, V]) entries() iter.Seq2[K, valueEntry[V]] {
	return func(yield func(K, valueEntry[V]) bool) {
		if ix == nil {
			return
		}
		for key, e := range ix.single {
			if !yield(key, e) {
				return
			}
		}
		for key, bucket := range ix.multi {
			for _, e := range bucket {
				if !yield(key, e) {
					return
				}
			}
		}
	}
}
