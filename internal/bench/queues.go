package bench

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/aradilov/ringqueue"
)

// Queue is the surface every contender exposes to the harness.
type Queue interface {
	Offer(v int) bool
	Poll() (int, bool)
	Size() int
}

// Ensure compile-time interface compliance.
var (
	_ Queue = (*ringqueue.Queue[int])(nil)
	_ Queue = (*LockedQueue)(nil)
	_ Queue = (*ChanQueue)(nil)
)

// Factory builds an empty contender of the given capacity.
type Factory func(capacity int) Queue

// Contenders returns the queues compared by the harness, keyed by name.
func Contenders(opts ...ringqueue.Option) map[string]Factory {
	return map[string]Factory{
		"lockfree": func(capacity int) Queue {
			return ringqueue.New[int](capacity, 0, opts...)
		},
		"locked": func(capacity int) Queue {
			return NewLockedQueue(capacity)
		},
		"chan": func(capacity int) Queue {
			return NewChanQueue(capacity)
		},
	}
}

// LockedQueue is a bounded FIFO guarded by a mutex.
type LockedQueue struct {
	mu       sync.Mutex
	q        *queue.Queue
	capacity int
}

func NewLockedQueue(capacity int) *LockedQueue {
	return &LockedQueue{
		q:        queue.New(),
		capacity: capacity,
	}
}

func (l *LockedQueue) Offer(v int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.q.Length() >= l.capacity {
		return false
	}
	l.q.Add(v)
	return true
}

func (l *LockedQueue) Poll() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.q.Length() == 0 {
		return 0, false
	}
	return l.q.Remove().(int), true
}

func (l *LockedQueue) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Length()
}

// ChanQueue is a buffered channel used without blocking.
type ChanQueue struct {
	ch chan int
}

func NewChanQueue(capacity int) *ChanQueue {
	return &ChanQueue{ch: make(chan int, capacity)}
}

func (c *ChanQueue) Offer(v int) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *ChanQueue) Poll() (int, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		return 0, false
	}
}

func (c *ChanQueue) Size() int {
	return len(c.ch)
}
