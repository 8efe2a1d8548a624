package common

import "iter"

// Range is an inclusive [from, to] range over an ordered integer type. No
// other package uses it; the record list assigns child nonces from a plain
// counter.
type Range[T int | int32 | int64 | uint | uint32 | uint64] struct {
	from, to T
}

// NewRange constructs an inclusive range. If to < from the range is empty.
func NewRange[T int | int32 | int64 | uint | uint32 | uint64](from, to T) Range[T] {
	return Range[T]{from: from, to: to}
}

// Len returns the number of values in the range.
func (r Range[T]) Len() int {
	if r.to < r.from {
		return 0
	}
	return int(r.to-r.from) + 1
}

// Contains reports whether v falls within the range.
func (r Range[T]) Contains(v T) bool {
	return v >= r.from && v <= r.to
}

// Iter yields every value in the range in ascending order.
func (r Range[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := r.from; v <= r.to; v++ {
			if !yield(v) {
				return
			}
		}
	}
}
