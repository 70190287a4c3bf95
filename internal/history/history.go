// Package history provides a fixed-capacity, insertion-ordered log with
// FIFO eviction. It backs room chat and private message retention.
package history

// History holds at most capacity items. Appending beyond capacity evicts
// the oldest item. History is not safe for concurrent use; callers
// serialize access (room state is mutated from a single event loop).
type History[T any] struct {
	capacity int
	items    []T
}

func New[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &History[T]{
		capacity: capacity,
		items:    make([]T, 0, capacity),
	}
}

// Append adds item to the end, evicting exactly one item from the front
// if the capacity is exceeded. Len() <= Cap() holds on return.
func (h *History[T]) Append(item T) {
	h.items = append(h.items, item)
	if len(h.items) > h.capacity {
		// shift in place so the backing array stays at capacity
		copy(h.items, h.items[1:])
		h.items = h.items[:h.capacity]
	}
}

func (h *History[T]) Len() int {
	return len(h.items)
}

func (h *History[T]) Cap() int {
	return h.capacity
}

// Snapshot returns a copy of the most recent limit items in insertion
// order, most recent last. A limit <= 0 returns all items.
func (h *History[T]) Snapshot(limit int) []T {
	if limit <= 0 || limit > len(h.items) {
		limit = len(h.items)
	}

	out := make([]T, limit)
	copy(out, h.items[len(h.items)-limit:])
	return out
}

// Range returns up to limit items starting at offset from the oldest
// retained item. An offset beyond the end returns an empty slice.
func (h *History[T]) Range(offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(h.items) {
		return []T{}
	}

	end := len(h.items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]T, end-offset)
	copy(out, h.items[offset:end])
	return out
}
