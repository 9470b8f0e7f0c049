package fracindex

// Sequence returns n keys in strictly increasing order, used to seed a
// freshly populated window (§4.5) before any incremental insert has to
// split between two neighbors.
func Sequence(n int) []Key {
	keys := make([]Key, n)
	var prev Key
	for i := 0; i < n; i++ {
		prev = Between(prev, "")
		keys[i] = prev
	}
	return keys
}
