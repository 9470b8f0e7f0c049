// Package index implements the hybrid keyed index (§4.2): a per-key store
// of (value, multiplicity) pairs that powers the join and reduce
// operators without rehashing every value on every lookup.
//
// Each key lives in exactly one of two tables:
//
//   - ValueIndex: key -> single (value, multiplicity), used while the key
//     has exactly one live (nonzero-multiplicity) distinct value.
//   - HashIndex: key -> hash(value) -> (value, multiplicity), used once a
//     key accumulates two or more distinct live values.
//
// [Index.Add] enforces the promotion/demotion transition automatically: a
// second distinct value promotes the key from ValueIndex to HashIndex; a
// removal that leaves HashIndex with one live value demotes it back. The
// two tables' keysets are disjoint by construction - a key found in both
// is a hard invariant violation (see [ErrKeyInBothTables]).
//
// Index is not safe for concurrent use; it is owned exclusively by the
// dataflow operator that maintains it (§5: "the hybrid index is not
// thread-safe").
package index
