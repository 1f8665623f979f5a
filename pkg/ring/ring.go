// Package ring provides a fixed-capacity FIFO buffer that evicts its
// oldest entries on insert.
package ring

// Buffer is a bounded FIFO sequence. Pushing beyond capacity silently
// drops the oldest entry, so the buffer always holds the most recent
// Cap() items. The zero value is not usable; construct with New.
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

// New creates a buffer with the given capacity. Capacity must be positive.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when the buffer is full.
// It returns the evicted entry and true when an eviction occurred.
func (b *Buffer[T]) Push(v T) (evicted T, dropped bool) {
	if b.size == len(b.items) {
		evicted = b.items[b.head]
		b.items[b.head] = v
		b.head = (b.head + 1) % len(b.items)
		return evicted, true
	}

	b.items[(b.head+b.size)%len(b.items)] = v
	b.size++
	return evicted, false
}

// Len returns the number of entries currently held.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Items returns a snapshot of the buffer contents, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, 0, b.size)
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(b.head+i)%len(b.items)])
	}
	return out
}

// Newest returns the most recently pushed entry. The second return value
// is false when the buffer is empty.
func (b *Buffer[T]) Newest() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.head+b.size-1)%len(b.items)], true
}
