// Package collate classifies runtime row values into a small set of kinds
// and defines the total order used to compare them.
//
// The comparator backs the default comparator for
// orderByWithFractionalIndex (§4.5) when a query omits an explicit
// comparator (in dataflow and compile), the comparison and arithmetic
// builtins in the eval package, and numeric coercion and ordering for
// groupBy aggregate folds (sum, avg, min, max) in the eval package.
//
// # Strata
//
// Values are ordered by strata first, then by value within a strata:
// nil < bool < numeric < string < slice. Strata ordering is total -
// comparisons across strata never fail. Maps, structs, and other complex
// shapes are out of scope; rows that need to be ordered by a nested field
// should project that field out before comparison.
//
// # Numeric values
//
// The numeric strata mixes signed integers, unsigned integers, and floats.
// GetInt64/GetUint64/GetFloat64 extract a comparable representation from
// any predeclared numeric type, and ValueOrder picks the comparison that
// avoids precision loss (e.g. comparing an int64 against a float64 by
// converting the float's truncation back to int64, not the reverse).
//
// Only predeclared scalar types are recognized (int, float64, string, ...).
// Named scalar types (type Count int) classify as InvalidStrata; callers
// that produce row values from domain types should convert to a
// predeclared type at the row boundary.
package collate
