package ringqueue

import "sync/atomic"

// ring is the fixed slot storage. It holds capacity+1 slots; one slot always stays
// empty so that a full queue and an empty queue have different cursor states.
//
// Values are boxed: a slot is a single pointer, so a consumer that races a
// recycling producer reads either the old or the new box, never half of each.
type ring[T any] []atomic.Pointer[T]

func newRing[T any](length uint64) ring[T] {
	return make(ring[T], length)
}

func (r ring[T]) load(i uint64) *T {
	return r[i].Load()
}

func (r ring[T]) store(i uint64, v *T) {
	r[i].Store(v)
}

// clear empties slot i only if it still holds v.
func (r ring[T]) clear(i uint64, v *T) {
	r[i].CompareAndSwap(v, nil)
}
