package ringqueue

import (
	"context"
	"time"
)

const (
	minPause = 10 * time.Microsecond
	maxPause = time.Millisecond
)

// OfferTimeout behaves like Offer but, when the queue is full, waits up to timeout
// according to the configured WaitPolicy and tries again.
// With the default SleepRetry policy it sleeps the whole timeout and retries exactly once.
// A cancelled ctx interrupts the wait and its error is returned.
func (q *Queue[T]) OfferTimeout(ctx context.Context, v T, timeout time.Duration) (bool, error) {
	if q.Offer(v) {
		return true, nil
	}
	return q.retry(ctx, timeout, func() bool {
		return q.Offer(v)
	})
}

// PollTimeout behaves like Poll but, when the queue is empty, waits up to timeout
// according to the configured WaitPolicy and tries again.
// A cancelled ctx interrupts the wait and its error is returned.
func (q *Queue[T]) PollTimeout(ctx context.Context, timeout time.Duration) (T, bool, error) {
	if v, ok := q.Poll(); ok {
		return v, true, nil
	}

	var v T
	ok, err := q.retry(ctx, timeout, func() bool {
		var ok bool
		v, ok = q.Poll()
		return ok
	})
	return v, ok, err
}

// Put offers v using the queue's default timeout.
// It is not an unbounded wait: if the queue is still full afterwards it returns ErrQueueIsFull.
func (q *Queue[T]) Put(ctx context.Context, v T) error {
	ok, err := q.OfferTimeout(ctx, v, q.timeout)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQueueIsFull
	}
	return nil
}

// Take polls using the queue's default timeout.
// It is not an unbounded wait: if the queue is still empty afterwards it returns ErrQueueIsEmpty.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	v, ok, err := q.PollTimeout(ctx, q.timeout)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrQueueIsEmpty
	}
	return v, nil
}

func (q *Queue[T]) retry(ctx context.Context, timeout time.Duration, attempt func() bool) (bool, error) {
	q.stats.inc(waits)

	var (
		ok  bool
		err error
	)
	switch q.opts.waitPolicy {
	case SpinUntil:
		ok, err = spinUntil(ctx, timeout, attempt)
	default:
		ok, err = sleepRetry(ctx, timeout, attempt)
	}

	if err != nil {
		q.stats.inc(waitCancels)
	} else if !ok {
		q.stats.inc(waitTimeouts)
	}
	return ok, err
}

// sleepRetry waits the whole timeout, then makes one attempt.
func sleepRetry(ctx context.Context, timeout time.Duration, attempt func() bool) (bool, error) {
	if timeout > 0 {
		t := time.NewTimer(timeout)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return false, err
	}
	return attempt(), nil
}

// spinUntil retries until attempt succeeds or timeout elapses.
// It yields first, then sleeps with a doubling pause capped at maxPause.
func spinUntil(ctx context.Context, timeout time.Duration, attempt func() bool) (bool, error) {
	deadline := time.Now().Add(timeout)
	b := newBackoff(0)
	var pause time.Duration
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if attempt() {
			return true, nil
		}

		left := time.Until(deadline)
		if left <= 0 {
			return false, nil
		}
		if i < goschedEvery {
			b.wait()
			continue
		}

		pause = min(max(pause*2, minPause), maxPause, left)
		time.Sleep(pause)
	}
}
