package collate

import "reflect"

// Kind identifies the semantic type of a row value for aggregate dispatch.
type Kind int

const (
	UnspecifiedKind Kind = iota
	StringKind
	IntKind
	FloatKind
	BoolKind
	SliceKind
)

func (k Kind) String() string {
	switch k {
	case UnspecifiedKind:
		return "UnspecifiedKind"
	case StringKind:
		return "StringKind"
	case IntKind:
		return "IntKind"
	case FloatKind:
		return "FloatKind"
	case BoolKind:
		return "BoolKind"
	case SliceKind:
		return "SliceKind"
	default:
		return "UnknownKind"
	}
}

// Classify reports the Kind of val, dereferencing pointers first. A nil
// pointer or nil interface classifies as UnspecifiedKind.
//
// No other package in this module calls Classify; the eval package's
// aggregate folds choose between an int64 and a float64 lane with
// [GetInt64] and [GetFloat64] directly.
func Classify(val any) Kind {
	if val == nil {
		return UnspecifiedKind
	}

	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return UnspecifiedKind
		}
		rv = rv.Elem()
		val = rv.Interface()
	}

	switch val.(type) {
	case bool:
		return BoolKind
	case string:
		return StringKind
	case int, int8, int16, int32, int64:
		return IntKind
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return IntKind
	case float32, float64:
		return FloatKind
	}

	if t := reflect.TypeOf(val); t != nil && t.Kind() == reflect.Slice {
		return SliceKind
	}
	return UnspecifiedKind
}
