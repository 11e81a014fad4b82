package ringqueue

import "iter"

// Snapshot returns a copy of the published elements in queue order without consuming them.
//
// The view is weakly consistent: elements claimed by consumers while the snapshot
// is taken are left out, and it never reflects later changes.
func (q *Queue[T]) Snapshot() []T {
	r := q.read.load()
	m := q.maxRead.load()
	n := (m + q.length - r) % q.length
	if n == 0 {
		return nil
	}

	boxes := make([]*T, 0, n)
	for i := r; i != m; i = q.next(i) {
		boxes = append(boxes, q.slots.load(i))
	}

	// Skip whatever consumers took while we were copying.
	consumed := (q.read.load() + q.length - r) % q.length
	if consumed >= n {
		return nil
	}

	out := make([]T, 0, n-consumed)
	for _, p := range boxes[consumed:] {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// All returns an iterator over a Snapshot of the queue.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range q.Snapshot() {
			if !yield(v) {
				return
			}
		}
	}
}
