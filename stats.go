package ringqueue

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

type counter int

const (
	offerAttempts counter = iota
	offerFull
	offerContended
	reserveRetries
	publishSpins
	pollAttempts
	pollEmpty
	pollContended
	claimRetries
	waits
	waitTimeouts
	waitCancels
	numCounters
)

// counters keeps every counter on its own cache line.
type counters [numCounters]struct {
	n atomic.Uint64
	_ cpu.CacheLinePad
}

// inc is a no-op on a queue built without WithStats.
func (c *counters) inc(k counter) {
	if c != nil {
		c[k].n.Add(1)
	}
}

func (c *counters) load(k counter) uint64 {
	return c[k].n.Load()
}

// QueueStats is a point-in-time copy of the queue counters.
// All fields stay zero unless the queue was built WithStats.
type QueueStats struct {
	OfferAttempts  uint64
	OfferFull      uint64
	OfferContended uint64 // gave up after WithMaxRetries
	ReserveRetries uint64
	PublishSpins   uint64

	PollAttempts  uint64
	PollEmpty     uint64
	PollContended uint64 // gave up after WithMaxRetries
	ClaimRetries  uint64

	Waits        uint64
	WaitTimeouts uint64
	WaitCancels  uint64
}

// Stats retrieves the current statistics of the Queue.
func (q *Queue[T]) Stats() QueueStats {
	c := q.stats
	if c == nil {
		return QueueStats{}
	}
	return QueueStats{
		OfferAttempts:  c.load(offerAttempts),
		OfferFull:      c.load(offerFull),
		OfferContended: c.load(offerContended),
		ReserveRetries: c.load(reserveRetries),
		PublishSpins:   c.load(publishSpins),
		PollAttempts:   c.load(pollAttempts),
		PollEmpty:      c.load(pollEmpty),
		PollContended:  c.load(pollContended),
		ClaimRetries:   c.load(claimRetries),
		Waits:          c.load(waits),
		WaitTimeouts:   c.load(waitTimeouts),
		WaitCancels:    c.load(waitCancels),
	}
}
