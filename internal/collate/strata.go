package collate

import "reflect"

// Strata constants order value types for canonical comparison, lowest to
// highest: Nil < Bool < Numeric < String < Slice. InvalidStrata marks an
// unsupported type.
const (
	InvalidStrata = iota
	NilStrata
	BoolStrata
	NumericStrata
	StringStrata
	SliceStrata
)

// TypeStrata returns the strata for a value's type.
//
// Only predeclared scalar types are supported; named scalar types
// (type Count int) return InvalidStrata, matching GetInt64/GetFloat64 which
// also type-switch on predeclared types. Slices are recognized structurally
// via reflect since their element types can't be enumerated; the elements
// themselves must still be supported types.
func TypeStrata(a any) int {
	if a == nil {
		return NilStrata
	}
	switch a.(type) {
	case bool:
		return BoolStrata
	case int, int8, int16, int32, int64:
		return NumericStrata
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return NumericStrata
	case float32, float64:
		return NumericStrata
	case string:
		return StringStrata
	}
	if t := reflect.TypeOf(a); t != nil && t.Kind() == reflect.Slice {
		return SliceStrata
	}
	return InvalidStrata
}
