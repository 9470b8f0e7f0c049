// Package mset implements MultiSet[V] (§3, §4.1): an unordered bag of
// (value, signed multiplicity) pairs flowing along dataflow edges as
// difference messages.
//
// A MultiSet is never deduplicated on insertion - Insert always appends a
// new entry, even when an equal value is already present. [MultiSet.Consolidate]
// is the one operation that collapses entries: it groups by the caller-supplied
// content hash, sums multiplicities, and drops any value whose net
// multiplicity reaches zero. Every other operator ([MultiSet.Map],
// [MultiSet.Filter], [MultiSet.Negate], [MultiSet.Extend]) preserves entries
// one-for-one.
//
// V is an opaque record type (§3): mset has no notion of what a value is
// or how to compare two values for equality beyond the [HashFunc] the
// caller supplies at construction. This keeps MultiSet reusable for both
// bare values (joins key rows by a hash of the row) and (key, value) pairs
// (the dataflow graph's edges all carry MultiSet[KV[K, V]]).
package mset
