package collate

// IntType constrains to integer types, signed and unsigned, excluding
// floats and strings so byte/offset arithmetic in callers can't silently
// accept the wrong kind of number.
type IntType interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

// Min returns the smaller of a and b.
func Min[T IntType](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of a and b.
func Max[T IntType](a, b T) T {
	if a > b {
		return a
	}
	return b
}
