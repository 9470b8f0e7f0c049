package mset

import "iter"

// HashFunc produces a stable, deterministic, collision-resistant (for
// practical purposes) digest of a value, used to decide which entries
// Consolidate merges. Two values that compare equal must hash equal.
type HashFunc[V any] func(v V) string

type entry[V any] struct {
	value V
	mult  int64
}

// MultiSet is a signed-multiplicity bag of values (§3). The zero value is
// not usable; construct with [New].
type MultiSet[V any] struct {
	hash    HashFunc[V]
	entries []entry[V]
}

// New returns an empty MultiSet using hash to identify equal values during
// [MultiSet.Consolidate]. Panics if hash is nil.
func New[V any](hash HashFunc[V]) *MultiSet[V] {
	if hash == nil {
		panic("mset: nil HashFunc")
	}
	return &MultiSet[V]{hash: hash}
}

// Insert appends a (value, multiplicity) entry. m == 0 is a no-op: zero
// multiplicities are never stored (§3).
func (s *MultiSet[V]) Insert(v V, m int64) {
	if m == 0 {
		return
	}
	s.entries = append(s.entries, entry[V]{value: v, mult: m})
}

// Extend appends every entry of other onto s, without consolidating.
func (s *MultiSet[V]) Extend(other *MultiSet[V]) {
	if other == nil {
		return
	}
	s.entries = append(s.entries, other.entries...)
}

// Len returns the number of stored entries, which may exceed the number of
// distinct values when the set has not been consolidated.
func (s *MultiSet[V]) Len() int {
	return len(s.entries)
}

// Iter yields every (value, multiplicity) entry in insertion order.
func (s *MultiSet[V]) Iter() iter.Seq2[V, int64] {
	return func(yield func(V, int64) bool) {
		for _, e := range s.entries {
			if !yield(e.value, e.mult) {
				return
			}
		}
	}
}

// Map applies f to every value, preserving multiplicities (§4.1: "map
// preserves multiplicities"). Use [MapTo] when f changes the value type.
func (s *MultiSet[V]) Map(f func(V) V) *MultiSet[V] {
	out := New(s.hash)
	out.entries = make([]entry[V], len(s.entries))
	for i, e := range s.entries {
		out.entries[i] = entry[V]{value: f(e.value), mult: e.mult}
	}
	return out
}

// MapTo applies f to every value of s, producing a MultiSet of a possibly
// different value type. Multiplicities are preserved; hash is the
// HashFunc for the result type.
func MapTo[V, W any](s *MultiSet[V], hash HashFunc[W], f func(V) W) *MultiSet[W] {
	out := New(hash)
	out.entries = make([]entry[W], len(s.entries))
	for i, e := range s.entries {
		out.entries[i] = entry[W]{value: f(e.value), mult: e.mult}
	}
	return out
}

// Filter drops entries whose value fails p; multiplicities of surviving
// entries are unchanged (§4.1).
func (s *MultiSet[V]) Filter(p func(V) bool) *MultiSet[V] {
	out := New(s.hash)
	for _, e := range s.entries {
		if p(e.value) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Negate returns a MultiSet with every multiplicity sign-flipped, the
// building block for retractions and rollback compensating deltas.
func (s *MultiSet[V]) Negate() *MultiSet[V] {
	out := New(s.hash)
	out.entries = make([]entry[V], len(s.entries))
	for i, e := range s.entries {
		out.entries[i] = entry[V]{value: e.value, mult: -e.mult}
	}
	return out
}

// Consolidate groups entries by hash(value), sums multiplicities, and
// drops entries whose net multiplicity is zero. The result holds at most
// one entry per distinct hash. Consolidate is idempotent:
// Consolidate(Consolidate(s)) has the same entries as Consolidate(s).
func (s *MultiSet[V]) Consolidate() *MultiSet[V] {
	out := New(s.hash)
	if len(s.entries) == 0 {
		return out
	}

	order := make([]string, 0, len(s.entries))
	byHash := make(map[string]*entry[V], len(s.entries))
	for _, e := range s.entries {
		h := s.hash(e.value)
		if existing, ok := byHash[h]; ok {
			existing.mult += e.mult
			continue
		}
		cp := e
		byHash[h] = &cp
		order = append(order, h)
	}

	out.entries = make([]entry[V], 0, len(order))
	for _, h := range order {
		e := byHash[h]
		if e.mult != 0 {
			out.entries = append(out.entries, *e)
		}
	}
	return out
}
