package ringqueue

import (
	"fmt"
	"runtime"
	"time"
)

// Lock-free bounded queue coordinated by three wrap-around cursors
// (read, maxRead, write) that are only ever advanced by CAS.
//
// Slots in [read, maxRead) are visible to consumers.
// Slots in [maxRead, write) are reserved by producers but not published yet.

var (
	ErrQueueIsFull  = fmt.Errorf("queue is full")
	ErrQueueIsEmpty = fmt.Errorf("queue is empty")
	ErrTimeout      = fmt.Errorf("timeout")
)

// Queue is a fixed-capacity multi-producer, multi-consumer FIFO.
// All methods are safe for concurrent use without external locking.
type Queue[T any] struct {
	length   uint64 // capacity + 1
	capacity uint64
	timeout  time.Duration
	slots    ring[T]
	opts     options
	stats    *counters

	read    cursor // next slot to consume
	maxRead cursor // one past the last published slot
	write   cursor // one past the last reserved slot
}

// New creates a queue holding at most capacity elements.
// timeout is the default wait used by Put and Take.
// New panics if capacity is not positive or timeout is negative.
func New[T any](capacity int, timeout time.Duration, opts ...Option) *Queue[T] {
	if capacity <= 0 {
		panic("capacity must be > 0")
	}
	if timeout < 0 {
		panic("timeout must be >= 0")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	length := uint64(capacity) + 1
	q := &Queue[T]{
		length:   length,
		capacity: uint64(capacity),
		timeout:  timeout,
		slots:    newRing[T](length),
		opts:     o,
	}
	if o.collectStats {
		q.stats = new(counters)
	}
	return q
}

// Offer inserts v at the tail of the queue.
// Returns false immediately if the queue is full.
// Safe to call concurrently from many producer goroutines.
func (q *Queue[T]) Offer(v T) bool {
	q.stats.inc(offerAttempts)

	b := newBackoff(q.opts.maxRetries)
	var pos uint64
	for {
		// Load write before read: a read loaded later can only be fresher,
		// so a stale read never makes a full queue look writable.
		pos = q.write.load()
		if q.next(pos) == q.read.load() {
			q.stats.inc(offerFull)
			return false
		}
		if q.tryAdvance(&q.write, pos) {
			break
		}
		// Another producer reserved pos first.
		q.stats.inc(reserveRetries)
		if !b.wait() {
			q.stats.inc(offerContended)
			return false
		}
	}

	// pos belongs to us until it is published.
	q.slots.store(pos, &v)

	// Publish in reservation order: maxRead reaches pos only after
	// every earlier reservation has been published.
	for !q.tryAdvance(&q.maxRead, pos) {
		q.stats.inc(publishSpins)
		runtime.Gosched()
	}
	return true
}

// Poll removes and returns the element at the head of the queue.
// Returns (zero, false) if the queue is empty.
// Safe to call concurrently from many consumer goroutines.
func (q *Queue[T]) Poll() (T, bool) {
	var zero T
	q.stats.inc(pollAttempts)

	b := newBackoff(q.opts.maxRetries)
	for {
		pos := q.read.load()
		if pos == q.maxRead.load() {
			q.stats.inc(pollEmpty)
			return zero, false
		}

		// Tentative: only trusted if we win the CAS on read below.
		// A nil box means another consumer has already claimed and cleared pos.
		p := q.slots.load(pos)
		if p != nil && q.tryAdvance(&q.read, pos) {
			if q.opts.clearOnPoll {
				q.slots.clear(pos, p)
			}
			return *p, true
		}

		q.stats.inc(claimRetries)
		if !b.wait() {
			q.stats.inc(pollContended)
			return zero, false
		}
	}
}

// Peek returns the element at the head of the queue without removing it.
// The result may already be stale when Peek returns.
func (q *Queue[T]) Peek() (T, bool) {
	for {
		pos := q.read.load()
		if pos == q.maxRead.load() {
			var zero T
			return zero, false
		}
		if p := q.slots.load(pos); p != nil {
			return *p, true
		}
		// pos was consumed under us, read has moved on.
		runtime.Gosched()
	}
}

// Size returns the number of published elements.
// It is a best-effort snapshot under concurrent use and always lies in [0, Capacity()].
func (q *Queue[T]) Size() int {
	for {
		r := q.read.load()
		m := q.maxRead.load()
		if q.read.load() != r {
			continue
		}
		return int(min((m+q.length-r)%q.length, q.capacity))
	}
}

// RemainingCapacity returns Capacity() - Size().
func (q *Queue[T]) RemainingCapacity() int {
	return int(q.capacity) - q.Size()
}

// Capacity returns the fixed queue capacity.
func (q *Queue[T]) Capacity() int {
	return int(q.capacity)
}

// Timeout returns the default wait used by Put and Take.
func (q *Queue[T]) Timeout() time.Duration {
	return q.timeout
}
