package ids

import "fmt"

// Window represents the half-open range [Offset, Offset+Limit) of an
// order-by-with-limit query: the slice of the ordered result sequence that
// a windowed subscription (§4.5, §4.6.3) keeps materialized.
//
// Window is a value type. The zero value is the empty window at offset 0.
type Window struct {
	Offset int
	Limit  int
}

// NewWindow creates a Window, panicking if offset or limit is negative
// (construction-time soundness, mirroring the teacher's Span.Range panic
// on a geometrically inverted range).
func NewWindow(offset, limit int) Window {
	if offset < 0 || limit < 0 {
		panic(fmt.Sprintf("ids.NewWindow: negative offset=%d limit=%d", offset, limit))
	}
	return Window{Offset: offset, Limit: limit}
}

// End returns the exclusive end of the window (Offset + Limit).
func (w Window) End() int {
	return w.Offset + w.Limit
}

// Contains reports whether the zero-based sequence position pos falls
// inside the window.
func (w Window) Contains(pos int) bool {
	return pos >= w.Offset && pos < w.End()
}

// Grow returns a new Window covering the same offset but extended by
// extra additional slots, used when the top-K operator signals it needs
// more data to fill the limit (§4.5: "more on demand").
func (w Window) Grow(extra int) Window {
	return Window{Offset: w.Offset, Limit: w.Limit + extra}
}

// IsZero reports whether the window is the zero value: zero offset and
// zero limit.
func (w Window) IsZero() bool {
	return w.Limit == 0 && w.Offset == 0
}
