package ringqueue

// Drain polls up to limit elements and passes each one to fn in queue order.
// limit <= 0 means up to Capacity() elements. It returns the number of elements drained.
//
// Drain is not atomic: producers and other consumers may interleave with it,
// but every element it hands to fn is delivered to nobody else.
func (q *Queue[T]) Drain(limit int, fn func(T)) int {
	if limit <= 0 {
		limit = int(q.capacity)
	}

	n := 0
	for n < limit {
		v, ok := q.Poll()
		if !ok {
			break
		}
		fn(v)
		n++
	}
	return n
}

// DrainTo appends up to limit polled elements to dst and returns the extended slice.
// limit <= 0 means up to Capacity() elements.
func (q *Queue[T]) DrainTo(dst []T, limit int) []T {
	q.Drain(limit, func(v T) {
		dst = append(dst, v)
	})
	return dst
}
