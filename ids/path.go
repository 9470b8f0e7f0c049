package ids

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AliasPath identifies an alias within a query, including the nesting
// introduced by subqueries: a subquery aliased "c1" whose own "from" is
// aliased "ch" is addressed as "c1.ch". Two aliases that are visually
// identical but differ in Unicode normalization form produce the same
// AliasPath. The compiler and coordinator do not use AliasPath; they key
// their alias maps by the bare alias string as written in the query.
//
// AliasPath is a value type; the zero value is the empty path.
type AliasPath struct {
	path string
}

// NewAliasPath canonicalizes a single alias segment into a root AliasPath.
//
// Canonicalization applies NFC (Unicode Normalization Form C) so that
// visually identical aliases typed with different combining-character
// sequences normalize to the same key, mirroring how the teacher's
// location.CanonicalPath NFC-normalizes file paths for the same reason.
func NewAliasPath(alias string) AliasPath {
	return AliasPath{path: norm.NFC.String(alias)}
}

// Child returns a new AliasPath with the given alias appended as a child
// segment, used when a join or subquery introduces a nested alias.
func (p AliasPath) Child(alias string) AliasPath {
	normalized := norm.NFC.String(alias)
	if p.path == "" {
		return AliasPath{path: normalized}
	}
	return AliasPath{path: p.path + "." + normalized}
}

// String returns the dotted textual form of the path (e.g. "c1.ch").
func (p AliasPath) String() string {
	return p.path
}

// IsZero reports whether the path is the empty root path.
func (p AliasPath) IsZero() bool {
	return p.path == ""
}

// Root returns the outermost alias segment (e.g. "c1" for "c1.ch").
func (p AliasPath) Root() string {
	if idx := strings.IndexByte(p.path, '.'); idx >= 0 {
		return p.path[:idx]
	}
	return p.path
}

// NormalizeKey canonicalizes a result/source key for use as a map key.
//
// String keys are NFC-normalized so unicode-equivalent but byte-distinct
// strings land in the same hybrid-index bucket; integer keys pass through
// unchanged. Any comparable K is accepted; keys of every type other than
// string are returned unchanged.
func NormalizeKey[K comparable](key K) K {
	if s, ok := any(key).(string); ok {
		if v, ok := any(norm.NFC.String(s)).(K); ok {
			return v
		}
	}
	return key
}
