// Package fracindex generates fractional lexicographic index keys: short
// base-62 strings that sort the same way as the values they index, with
// the property that a new key can always be generated between any two
// existing keys without renumbering the rest of the sequence (§4.5).
//
// [Key] is an ordinary Go string wherever ordering matters (sort.Strings,
// <, map keys); the package only governs how such strings are produced.
package fracindex
