// Package ring provides a fixed-capacity, bounded FIFO buffer that evicts
// the oldest entry on overflow. It is the engine behind every SharpInspect
// store (network/console/performance): spec.md describes three independent
// buffers with identical semantics, so one generic type backs all three
// instead of three hand-duplicated ones.
//
// Grounded on dashboard/server.go's logMu+logs capped-append pattern from
// the teacher repo, generalized from a reslice-on-overflow slice to a true
// modulo-indexed ring so eviction stays O(1) regardless of capacity.
package ring

import "sync"

// Ring is a fixed-capacity FIFO buffer of T, safe for concurrent use.
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int
	cursor   uint64 // total appends ever made; highest assigned id
}

// New creates a Ring with the given capacity. A capacity below 1 is treated
// as 1.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity), capacity: capacity}
}

// Append assigns the entry the next id (1-based, strictly increasing) and
// stores it, evicting the oldest occupant if the ring is full. Returns the
// assigned id. O(1).
func (r *Ring[T]) Append(entry T) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor++
	id := r.cursor
	r.buf[(id-1)%uint64(r.capacity)] = entry
	return id
}

// Count returns the number of live entries (min(appends, capacity)).
func (r *Ring[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked()
}

func (r *Ring[T]) countLocked() int {
	if r.cursor >= uint64(r.capacity) {
		return r.capacity
	}
	return int(r.cursor)
}

// FirstID returns the lowest live id, or 0 if the ring is empty.
func (r *Ring[T]) FirstID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.countLocked()
	if n == 0 {
		return 0
	}
	return r.cursor - uint64(n) + 1
}

// LastID returns the highest assigned id, or 0 if nothing has been appended.
func (r *Ring[T]) LastID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Page returns up to limit entries starting from the offset-th
// most-recently-appended entry (0 = newest), optionally skipping entries for
// which keep returns false. The returned total is the live count at read
// time. Entries are copied out before the lock is released.
func (r *Ring[T]) Page(offset, limit int, keep func(T) bool) (items []T, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.countLocked()
	total = n
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	items = make([]T, 0, minInt(limit, n))
	// Newest-first walk: position 0 is id == cursor, position i is id ==
	// cursor-i. Stop once limit post-filter results are collected or the
	// buffer is exhausted.
	skipped := 0
	for i := 0; i < n && len(items) < limit; i++ {
		id := r.cursor - uint64(i)
		entry := r.buf[(id-1)%uint64(r.capacity)]
		if keep != nil && !keep(entry) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		items = append(items, entry)
	}
	return items, total
}

// Clear resets the ring to empty, discarding all entries and the cursor.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = make([]T, r.capacity)
	r.cursor = 0
}

// Snapshot returns all live entries in append order (oldest first).
func (r *Ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.countLocked()
	out := make([]T, n)
	first := r.cursor - uint64(n) + 1
	for i := 0; i < n; i++ {
		id := first + uint64(i)
		out[i] = r.buf[(id-1)%uint64(r.capacity)]
	}
	return out
}

// Get returns the entry with the given id, if it is still live.
func (r *Ring[T]) Get(id uint64) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if id == 0 || id > r.cursor {
		return zero, false
	}
	n := r.countLocked()
	first := r.cursor - uint64(n) + 1
	if id < first {
		return zero, false
	}
	return r.buf[(id-1)%uint64(r.capacity)], true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
