package index

import "iter"

// ValueHash identifies distinct values of V for HashIndex bucketing and
// for GetMultiplicity lookups. Equal values must hash equal.
type ValueHash[V any] func(v V) string

type valueEntry[V any] struct {
	value V
	mult  int64
}

// Index is the hybrid keyed index (§4.2) over keys K and opaque values V.
// The zero value is not usable; construct with [New].
type Index[K comparable, V any] struct {
	hash ValueHash[V]

	// single holds keys with exactly one live distinct value.
	single map[K]valueEntry[V]

	// multi holds keys with two or more live distinct values, bucketed by
	// value hash. single and multi keysets are disjoint (§4.2 invariant).
	multi map[K]map[string]valueEntry[V]
}

// New returns an empty Index using hash to distinguish values sharing a
// key. Panics if hash is nil.
func New[K comparable, V any](hash ValueHash[V]) *Index[K, V] {
	if hash == nil {
		panic("index: nil ValueHash")
	}
	return &Index[K, V]{
		hash:   hash,
		single: make(map[K]valueEntry[V]),
		multi:  make(map[K]map[string]valueEntry[V]),
	}
}

// Has reports whether key has at least one live value.
func (ix *Index[K, V]) Has(key K) bool {
	if ix == nil {
		return false
	}
	if _, ok := ix.single[key]; ok {
		return true
	}
	_, ok := ix.multi[key]
	return ok
}

// Size returns the number of distinct keys with at least one live value.
func (ix *Index[K, V]) Size() int {
	if ix == nil {
		return 0
	}
	return len(ix.single) + len(ix.multi)
}

// Get returns an iterator over the (value, multiplicity) pairs stored
// under key. Empty if the key has no live values.
func (ix *Index[K, V]) Get(key K) iter.Seq2[V, int64] {
	return func(yield func(V, int64) bool) {
		if ix == nil {
			return
		}
		if e, ok := ix.single[key]; ok {
			yield(e.value, e.mult)
			return
		}
		if bucket, ok := ix.multi[key]; ok {
			for _, e := range bucket {
				if !yield(e.value, e.mult) {
					return
				}
			}
		}
	}
}

// GetMultiplicity returns the multiplicity of value under key, or 0 if
// absent (§4.2).
func (ix *Index[K, V]) GetMultiplicity(key K, value V) int64 {
	if ix == nil {
		return 0
	}
	h := ix.hash(value)
	if e, ok := ix.single[key]; ok {
		if ix.hash(e.value) == h {
			return e.mult
		}
		return 0
	}
	if bucket, ok := ix.multi[key]; ok {
		return bucket[h].mult
	}
	return 0
}

// Add merges (value, m) into key's entry set, promoting key from
// ValueIndex to HashIndex when a second distinct value appears, and
// demoting it back when removal leaves a single live value. Add is a
// no-op when m == 0 (§4.2: "idempotent with respect to m=0").
//
// Returns [ErrKeyInBothTables] if key is found in both tables beforehand,
// which can only happen from a prior invariant violation, never from this
// call's own input.
func (ix *Index[K, V]) Add(key K, value V, m int64) error {
	if ix == nil {
		return ErrNilIndex
	}
	if m == 0 {
		return nil
	}

	_, inSingle := ix.single[key]
	_, inMulti := ix.multi[key]
	if inSingle && inMulti {
		return ErrKeyInBothTables
	}

	h := ix.hash(value)

	switch {
	case inMulti:
		ix.addToMulti(key, h, value, m)
	case inSingle:
		ix.addToSingleOrPromote(key, h, value, m)
	default:
		ix.single[key] = valueEntry[V]{value: value, mult: m}
	}
	return nil
}

func (ix *Index[K, V]) addToSingleOrPromote(key K, h string, value V, m int64) {
	existing := ix.single[key]
	existingHash := ix.hash(existing.value)

	if existingHash == h {
		newMult := existing.mult + m
		if newMult == 0 {
			delete(ix.single, key)
			return
		}
		ix.single[key] = valueEntry[V]{value: value, mult: newMult}
		return
	}

	// Second distinct value for this key: promote to HashIndex.
	bucket := map[string]valueEntry[V]{
		existingHash: existing,
		h:            {value: value, mult: m},
	}
	delete(ix.single, key)
	ix.multi[key] = bucket
}

func (ix *Index[K, V]) addToMulti(key K, h string, value V, m int64) {
	bucket := ix.multi[key]
	newMult := bucket[h].mult + m
	if newMult == 0 {
		delete(bucket, h)
	} else {
		bucket[h] = valueEntry[V]{value: value, mult: newMult}
	}

	switch len(bucket) {
	case 0:
		delete(ix.multi, key)
	case 1:
		for _, e := range bucket {
			ix.single[key] = e
		}
		delete(ix.multi, key)
	default:
		ix.multi[key] = bucket
	}
}

// Keys returns an iterator over every key with at least one live value.
func (ix *Index[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		if ix == nil {
			return
		}
		for key := range ix.single {
			if !yield(key) {
				return
			}
		}
		for key := range ix.multi {
			if !yield(key) {
				return
			}
		}
	}
}

// Append bulk-merges every (key, value, multiplicity) entry of other into
// ix, preserving the promotion/demotion invariant for each entry in turn.
func (ix *Index[K, V]) Append(other *Index[K, V]) error {
	if ix == nil {
		return ErrNilIndex
	}
	if other == nil {
		return nil
	}
	for key, e := range other.single {
		if err := ix.Add(key, e.value, e.mult); err != nil {
			return err
		}
	}
	for key, bucket := range other.multi {
		for _, e := range bucket {
			if err := ix.Add(key, e.value, e.mult); err != nil {
				return err
			}
		}
	}
	return nil
}
