package common

// Comparable orders values of T against one another. CompareTo returns a
// negative number if the receiver sorts before other, zero if equal, and a
// positive number if it sorts after.
type Comparable[T any] interface {
	CompareTo(other T) int
}

// Heap is a generic binary min-heap. No other package uses it; the record
// list computes its preceding/following offsets directly.
type Heap[T Comparable[T]] struct {
	items []T
}

// NewHeap returns an empty heap.
func NewHeap[T Comparable[T]]() *Heap[T] {
	return &Heap[T]{}
}

// Len returns the number of items in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// Push inserts v into the heap.
func (h *Heap[T]) Push(v T) {
	h.items = append(h.items, v)
	h.up(len(h.items) - 1)
}

// Pop removes and returns the smallest item. It panics if the heap is empty.
func (h *Heap[T]) Pop() T {
	if len(h.items) == 0 {
		panic("common: Pop of empty heap")
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.down(0)
	}
	return top
}

// Peek returns the smallest item without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	var zero T
	if len(h.items) == 0 {
		return zero, false
	}
	return h.items[0], true
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].CompareTo(h.items[parent]) >= 0 {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].CompareTo(h.items[smallest]) < 0 {
			smallest = left
		}
		if right < n && h.items[right].CompareTo(h.items[smallest]) < 0 {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
