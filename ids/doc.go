// Package ids provides identity primitives shared across the dataflow,
// compiler, and coordinator layers: monotonically increasing operator and
// stream identifiers, canonical alias
// paths for (possibly nested) query aliases, and a by-identity cache used
// for subquery memoization.
package ids
