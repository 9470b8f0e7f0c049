package index

import "errors"

// ErrNilIndex is returned when a method is called on a nil *Index.
var ErrNilIndex = errors.New("index: nil receiver")

// ErrKeyInBothTables indicates the ValueIndex/HashIndex disjoint-keyset
// invariant was violated (§4.2, §7 category 3: runtime-invariant). This
// can only happen from a bug in Add's promotion/demotion logic, never
// from caller input, so it is a sentinel error rather than a diag.Issue.
var ErrKeyInBothTables = errors.New("index: key present in both ValueIndex and HashIndex")
