package ringqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of work passed from a TaskQ producer to a worker.
type Task struct {
	payload []byte
	resp    []byte

	ch chan error
}

// Payload returns the bytes submitted with the task.
// The slice is only valid until Reply is called.
func (t *Task) Payload() []byte {
	return t.payload
}

// Reply hands resp and err back to the producer waiting in Do.
// The worker must not touch t after Reply. Reply on a task from DoNoWait is a no-op.
func (t *Task) Reply(resp []byte, err error) {
	if t.ch == nil {
		return
	}
	t.resp = append(t.resp[:0], resp...)
	t.ch <- err
}

func (t *Task) Reset() {
	t.payload = t.payload[:0]
	t.resp = t.resp[:0]
	t.ch = nil
}

// TaskQ is a request/response hand-off: producers submit payloads and
// wait for a worker to reply, workers pull tasks from a shared Queue.
type TaskQ struct {
	q *Queue[*Task]

	attempts atomic.Uint64
	full     atomic.Uint64
	timeout  atomic.Uint64
	success  atomic.Uint64
}

type TaskQStats struct {
	Attempts uint64
	Full     uint64
	Timeout  uint64
	Success  uint64

	Queue QueueStats
}

// NewTaskQ creates a task queue holding at most capacity pending tasks.
// timeout bounds how long Do waits for room in a full queue.
func NewTaskQ(capacity int, timeout time.Duration, opts ...Option) *TaskQ {
	return &TaskQ{
		q: New[*Task](capacity, timeout, opts...),
	}
}

// Stats retrieves the current statistics of the TaskQ
func (tq *TaskQ) Stats() TaskQStats {
	return TaskQStats{
		Attempts: tq.attempts.Load(),
		Full:     tq.full.Load(),
		Timeout:  tq.timeout.Load(),
		Success:  tq.success.Load(),
		Queue:    tq.q.Stats(),
	}
}

// Do submits a copy of payload and waits for a worker to Reply.
// reader is called with the response before Do returns; resp must not be retained.
// Returns ErrQueueIsFull if the task could not be queued and ErrTimeout if ctx
// is done before a reply arrives. Otherwise it returns the error passed to Reply.
// May be called concurrently from many goroutines (producers).
func (tq *TaskQ) Do(ctx context.Context, payload []byte, reader func(resp []byte)) error {
	tq.attempts.Add(1)

	t := acquireTask()
	t.payload = append(t.payload[:0], payload...)
	t.ch = acquireErrorCh()

	if err := tq.q.Put(ctx, t); err != nil {
		// never queued, nobody else holds t
		releaseErrorCh(t.ch)
		releaseTask(t)
		if errors.Is(err, ErrQueueIsFull) {
			tq.full.Add(1)
			return ErrQueueIsFull
		}
		tq.timeout.Add(1)
		return ErrTimeout
	}

	select {
	case err := <-t.ch:
		tq.success.Add(1)
		if reader != nil {
			reader(t.resp)
		}
		releaseErrorCh(t.ch)
		releaseTask(t)
		return err
	case <-ctx.Done():
		// A worker may still Reply into t.ch, so neither t nor its channel is recycled.
		tq.timeout.Add(1)
		return ErrTimeout
	}
}

// DoNoWait submits a copy of payload without waiting for a reply.
// Returns false if the queue is full.
func (tq *TaskQ) DoNoWait(payload []byte) bool {
	tq.attempts.Add(1)

	t := &Task{payload: append([]byte(nil), payload...)}
	if !tq.q.Offer(t) {
		tq.full.Add(1)
		return false
	}
	return true
}

// Next pops the oldest pending task. Returns (nil, false) if there is none.
// Safe to call concurrently from many worker goroutines.
func (tq *TaskQ) Next() (*Task, bool) {
	return tq.q.Poll()
}

// Wait pops the oldest pending task, waiting up to the queue timeout for one to arrive.
func (tq *TaskQ) Wait(ctx context.Context) (*Task, error) {
	return tq.q.Take(ctx)
}

// Len returns the number of pending tasks.
func (tq *TaskQ) Len() int {
	return tq.q.Size()
}

// Capacity returns the fixed queue capacity.
func (tq *TaskQ) Capacity() int {
	return tq.q.Capacity()
}

var (
	taskPool    sync.Pool
	errorChPool sync.Pool
)

func acquireTask() *Task {
	v := taskPool.Get()
	if v == nil {
		return &Task{}
	}
	return v.(*Task)
}

func releaseTask(t *Task) {
	t.Reset()
	taskPool.Put(t)
}

func acquireErrorCh() chan error {
	v := errorChPool.Get()
	if v == nil {
		return make(chan error, 1)
	}
	return v.(chan error)
}

func releaseErrorCh(ch chan error) {
	errorChPool.Put(ch)
}
