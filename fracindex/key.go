package fracindex

import (
	"fmt"
)

// alphabet is the digit set used to build keys, ordered so that
// strings.Compare on the generated keys matches numeric midpoint order.
// 62 symbols keeps keys short while remaining plain ASCII, matching the
// base-62 scheme the spec calls out as an acceptable choice (§4.5).
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var digitValue [256]int8

func init() {
	for i := range digitValue {
		digitValue[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digitValue[alphabet[i]] = int8(i)
	}
}

const (
	firstDigit = 0
	lastDigit  = len(alphabet) - 1
	midDigit   = len(alphabet) / 2
)

// Key is a fractional lexicographic index. Two Keys compare correctly
// with an ordinary Go string comparison.
type Key string

// First returns the key Between("", "") produces (a single mid-alphabet
// digit), used to seed an empty sequence. Keys generated before it with
// Between("", First()) sort lower.
func First() Key {
	return Key(alphabet[midDigit : midDigit+1])
}

// Between returns a new key k such that lo < k < hi. An empty lo means
// "no lower bound" (negative infinity); an empty hi means "no upper
// bound" (positive infinity). Between panics if lo >= hi, since that
// indicates a caller bug (the window invariant has already been
// violated) rather than a recoverable condition.
func Between(lo, hi Key) Key {
	if lo != "" && hi != "" && string(lo) >= string(hi) {
		panic(fmt.Sprintf("fracindex: Between called with lo=%q >= hi=%q", lo, hi))
	}
	return Key(between(string(lo), string(hi)))
}

// between treats lo and hi as base-62 digit strings of an implicit
// fraction in [0,1) and generates a digit string for a value strictly
// between them. hiBounded distinguishes "hi has no more digits because
// the original upper bound was unbounded" (treat the next digit as
// infinite) from "hi has no more digits because we've matched it
// exactly so far" (treat the next digit as zero) -- conflating the two
// is the classic off-by-one in this algorithm. No generated key ever
// ends in the alphabet's first (lowest) digit, which keeps plain string
// comparison consistent with the represented fraction's numeric order
// regardless of key length.
func between(lo, hi string) string {
	return betweenDigits(lo, hi, hi != "")
}

func betweenDigits(loRest, hiRest string, hiBounded bool) string {
	digitA := firstDigit
	if loRest != "" {
		digitA = int(digitValue[loRest[0]])
	}

	digitB := lastDigit + 1
	if hiBounded {
		digitB = firstDigit
		if hiRest != "" {
			digitB = int(digitValue[hiRest[0]])
		}
	}

	if digitB-digitA >= 2 {
		mid := digitA + (digitB-digitA)/2
		return string(alphabet[mid])
	}

	loTail := ""
	if loRest != "" {
		loTail = loRest[1:]
	}

	if digitB-digitA == 1 {
		// This digit alone already sorts below hi's, so anything can
		// follow it without an upper bound.
		return string(alphabet[digitA]) + betweenDigits(loTail, "", false)
	}

	// Shared digit: recurse one level deeper under the same bound.
	hiTail := ""
	if hiRest != "" {
		hiTail = hiRest[1:]
	}
	return string(alphabet[digitA]) + betweenDigits(loTail, hiTail, hiBounded)
}

// String returns the textual form of the key.
func (k Key) String() string {
	return string(k)
}

// Less reports whether k sorts strictly before other.
func (k Key) Less(other Key) bool {
	return string(k) < string(other)
}
