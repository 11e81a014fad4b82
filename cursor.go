package ringqueue

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// cursor is a wrap-around index into the ring, kept on its own cache line.
type cursor struct {
	_ cpu.CacheLinePad
	v atomic.Uint64
	_ cpu.CacheLinePad
}

func (c *cursor) load() uint64 {
	return c.v.Load()
}

// next returns the position that follows i.
func (q *Queue[T]) next(i uint64) uint64 {
	i++
	if i == q.length {
		return 0
	}
	return i
}

// tryAdvance moves c from expected to the next position.
// It fails without touching c if c no longer equals expected.
// Cursors are never mutated any other way.
func (q *Queue[T]) tryAdvance(c *cursor, expected uint64) bool {
	return c.v.CompareAndSwap(expected, q.next(expected))
}
