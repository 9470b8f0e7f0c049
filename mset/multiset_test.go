package mset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intHash(v int) string { return fmt.Sprintf("%d", v) }

func collect[V any](s *MultiSet[V]) map[string]int64 {
	out := make(map[string]int64)
	for v, m := range s.Iter() {
		out[fmt.Sprintf("%v", v)] += m
	}
	return out
}

func TestInsertZeroMultiplicityIsNoOp(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 0)
	assert.Equal(t, 0, s.Len())
}

func TestConsolidateSumsAndDropsZero(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 2)
	s.Insert(1, -2)
	s.Insert(2, 3)

	c := s.Consolidate()
	got := collect(c)
	assert.Equal(t, map[string]int64{"2": 3}, got)
}

func TestConsolidateIsIdempotent(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 2)
	s.Insert(1, 3)

	once := s.Consolidate()
	twice := once.Consolidate()
	assert.Equal(t, collect(once), collect(twice))
}

func TestMapPreservesMultiplicity(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 2)
	s.Insert(2, -3)

	mapped := s.Map(func(v int) int { return v * 10 })
	assert.Equal(t, map[string]int64{"10": 2, "20": -3}, collect(mapped))
}

func TestFilterDropsFailingEntriesKeepsMultiplicity(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 5)
	s.Insert(2, -5)

	filtered := s.Filter(func(v int) bool { return v == 1 })
	assert.Equal(t, map[string]int64{"1": 5}, collect(filtered))
}

func TestNegateFlipsSign(t *testing.T) {
	s := New(intHash)
	s.Insert(1, 3)

	neg := s.Negate()
	assert.Equal(t, map[string]int64{"1": -3}, collect(neg))
}

func TestExtendConcatenatesWithoutConsolidating(t *testing.T) {
	a := New(intHash)
	a.Insert(1, 1)
	b := New(intHash)
	b.Insert(1, 1)

	a.Extend(b)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, map[string]int64{"1": 2}, collect(a.Consolidate()))
}

func TestRoundTripInsertThenDeleteSameValue(t *testing.T) {
	s := New(intHash)
	s.Insert(7, 1)
	s.Insert(7, -1)

	c := s.Consolidate()
	assert.Equal(t, 0, c.Len())
}

func TestMapToChangesValueType(t *testing.T) {
	s := New(intHash)
	s.Insert(3, 2)

	strs := MapTo(s, func(v string) string { return v }, func(v int) string {
		return fmt.Sprintf("n%d", v)
	})
	assert.Equal(t, map[string]int64{"n3": 2}, collect(strs))
}

func TestNewPanicsOnNilHash(t *testing.T) {
	assert.Panics(t, func() { New[int](nil) })
}

func TestHashKVDistinguishesByKeyAndValue(t *testing.T) {
	hash := HashKV[int](func(v string) string { return v })
	s := New(hash)
	s.Insert(KV[int, string]{Key: 1, Value: "a"}, 1)
	s.Insert(KV[int, string]{Key: 1, Value: "b"}, 1)
	s.Insert(KV[int, string]{Key: 1, Value: "a"}, 1)

	c := s.Consolidate()
	require.Equal(t, 2, c.Len())
	total := map[int]int64{}
	for kv, m := range c.Iter() {
		total[kv.Key] += m
	}
	assert.Equal(t, int64(3), total[1])
}
