package objstore

import "fmt"

type rangeScalar interface {
	~uint16 | ~uint32 | ~uint64 | ~int | ~int32 | ~int64
}

// Range is a half-open interval [Start, End). A range with Start >= End is
// empty and never stored; synthetic ranges used as seek bounds may be empty.
type Range[T rangeScalar] struct {
	Start T
	End   T
}

func (r Range[T]) IsValid() bool {
	return r.Start < r.End
}

// Length panics on an empty or inverted range. A zero-length extent is never
// a legitimate stored key, so a caller asking for its length has a bug that
// should surface at the call site.
func (r Range[T]) Length() T {
	if !r.IsValid() {
		panic(fmt.Sprintf("length of invalid range [%v, %v)", r.Start, r.End))
	}
	return r.End - r.Start
}

// Overlaps reports whether the two ranges share at least one point. A
// non-empty range overlaps itself; empty ranges overlap nothing.
func (r Range[T]) Overlaps(another Range[T]) bool {
	return max(r.Start, another.Start) < min(r.End, another.End)
}

// IsAdjacent reports whether the end of one range equals the start of the
// other. Adjacency is the precondition for coalescing two extents into one.
func (r Range[T]) IsAdjacent(another Range[T]) bool {
	return min(r.End, another.End) == max(r.Start, another.Start)
}

// ContainsRange reports whether another is a (possibly equal) sub-range of r.
// Empty ranges neither contain nor are contained.
func (r Range[T]) ContainsRange(another Range[T]) bool {
	if !r.IsValid() || !another.IsValid() {
		return false
	}
	return r.Start <= another.Start && another.End <= r.End
}

// Intersect returns the common sub-range; the result is empty (invalid) when
// the ranges do not overlap.
func (r Range[T]) Intersect(another Range[T]) Range[T] {
	return Range[T]{max(r.Start, another.Start), min(r.End, another.End)}
}

func (r Range[T]) String() string {
	return fmt.Sprintf("[%v, %v)", r.Start, r.End)
}
