package ringqueue

import "sync/atomic"

// SlotArray is a fixed array of values whose free positions are handed out
// through a Queue[int], so Acquire and Release never take a lock.
type SlotArray[T any] struct {
	free  *Queue[int]
	data  []T
	inUse []atomic.Bool
}

func NewSlotArray[T any](capacity int) *SlotArray[T] {
	if capacity <= 0 {
		panic("capacity must be > 0")
	}

	a := &SlotArray[T]{
		free:  New[int](capacity, 0),
		data:  make([]T, capacity),
		inUse: make([]atomic.Bool, capacity),
	}

	for i := 0; i < capacity; i++ {
		if !a.free.Offer(i) {
			panic("unreached")
		}
	}

	return a
}

// Acquire stores v in a free position and returns that position.
// Returns false if every position is in use.
// May be called concurrently from many goroutines
func (a *SlotArray[T]) Acquire(v T) (int, bool) {
	pos, ok := a.free.Poll()
	if !ok {
		return 0, false
	}
	a.data[pos] = v
	a.inUse[pos].Store(true)
	return pos, true
}

// Get retrieves the element at the specified position.
// Can be called simultaneously from many goroutines (read-only) for pos, which is not released
func (a *SlotArray[T]) Get(pos int) T {
	return a.data[pos]
}

// Release returns pos to the free list.
// Releasing a position that is not acquired panics.
func (a *SlotArray[T]) Release(pos int) {
	if !a.inUse[pos].CompareAndSwap(true, false) {
		panic("release of a free position")
	}

	var zero T
	a.data[pos] = zero
	if !a.free.Offer(pos) {
		panic("unreached")
	}
}

// Available returns the number of free positions.
func (a *SlotArray[T]) Available() int {
	return a.free.Size()
}

// Capacity returns the number of positions.
func (a *SlotArray[T]) Capacity() int {
	return len(a.data)
}
