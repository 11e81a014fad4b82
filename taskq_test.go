package ringqueue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Basic sanity: sequential enqueue/dequeue with payloads.
func TestTaskQSequential(t *testing.T) {
	const (
		capacity = 1024
		N        = 10_000
	)

	q := NewTaskQ(capacity, 0)

	// Enqueue N items
	for i := 0; i < N; i++ {
		ok := q.DoNoWait([]byte(fmt.Sprintf("item %d", i)))
		if i < capacity {
			if !ok {
				t.Fatalf("enqueue failed at %d (queue unexpectedly full)", i)
			}
		} else if ok {
			t.Fatalf("enqueue succeeded at %d (queue unexpectedly not full)", i)
		}
	}

	// Dequeue N items
	for i := 0; i < N; i++ {
		task, ok := q.Next()
		if i < capacity {
			if !ok {
				t.Fatalf("dequeue failed at %d (queue unexpectedly empty)", i)
			}
			expected := fmt.Sprintf("item %d", i)
			if string(task.Payload()) != expected {
				t.Fatalf("expected %q, got %q (FIFO violated)", expected, task.Payload())
			}
			task.Reply(nil, nil) // no-op for DoNoWait tasks
		} else if ok {
			t.Fatalf("dequeue succeeded at %d (queue unexpectedly not empty)", i)
		}
	}

	// Now queue must be empty
	if task, ok := q.Next(); ok {
		t.Fatalf("expected empty queue at the end, got value=%q", task.Payload())
	}

	st := q.Stats()
	if st.Attempts != N || st.Full != N-capacity {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestTaskQDoReply(t *testing.T) {
	q := NewTaskQ(16, 10*time.Millisecond)
	msg := []byte("msg")
	errWorker := errors.New("worker failed")

	go func() {
		for i := 0; i < 2; i++ {
			task, err := q.Wait(context.Background())
			for errors.Is(err, ErrQueueIsEmpty) {
				task, err = q.Wait(context.Background())
			}
			if err != nil {
				t.Errorf("worker: unexpected error %v", err)
				return
			}
			if i == 0 {
				task.Reply(task.Payload(), nil)
			} else {
				task.Reply(nil, errWorker)
			}
		}
	}()

	var got []byte
	err := q.Do(context.Background(), msg, func(resp []byte) {
		got = append(got, resp...)
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if string(got) != string(msg) {
		t.Fatalf("expected %q, got %q", msg, got)
	}

	if err = q.Do(context.Background(), msg, nil); !errors.Is(err, errWorker) {
		t.Fatalf("expected worker error, got %v", err)
	}

	if st := q.Stats(); st.Success != 2 {
		t.Fatalf("expected 2 successful tasks, got %+v", st)
	}
}

func TestTaskQDoTimeout(t *testing.T) {
	q := NewTaskQ(4, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Nobody is serving the queue.
	if err := q.Do(ctx, []byte("msg1"), nil); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}

	// A late reply to the abandoned task must not block the worker.
	task, ok := q.Next()
	if !ok {
		t.Fatalf("expected the abandoned task, got nothing")
	}
	task.Reply([]byte("late"), nil)

	if st := q.Stats(); st.Timeout != 1 {
		t.Fatalf("expected one timeout, got %+v", st)
	}
}

func TestTaskQDoFull(t *testing.T) {
	q := NewTaskQ(1, time.Millisecond)
	if !q.DoNoWait([]byte("fill")) {
		t.Fatalf("enqueue failed (queue unexpectedly full)")
	}

	if err := q.Do(context.Background(), []byte("msg"), nil); !errors.Is(err, ErrQueueIsFull) {
		t.Fatalf("expected ErrQueueIsFull, got %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one pending task, got %d", q.Len())
	}
}

func TestTaskQDeadline(t *testing.T) {
	const (
		capacity  = 1024
		producers = 8
		workers   = 2
		N         = 20_000
	)

	perProducer := N / producers

	q := NewTaskQ(capacity, time.Millisecond)
	done := make(chan struct{})

	var ww sync.WaitGroup
	ww.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer ww.Done()
			for {
				task, ok := q.Next()
				if !ok {
					select {
					case <-done:
						return
					default:
					}
					runtime.Gosched()
					continue
				}
				task.Reply(task.Payload(), nil)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			start := p * perProducer
			end := start + perProducer
			for i := start; i < end; i++ {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

				task := []byte(fmt.Sprintf("item %d", i))
				var err error
				for {
					err = q.Do(ctx, task, func(resp []byte) {
						if string(resp) != string(task) {
							t.Errorf("expected %q at %d, got %q", task, i, resp)
						}
					})
					if !errors.Is(err, ErrQueueIsFull) {
						break
					}
				}
				cancel()
				if err != nil {
					t.Errorf("expected nil at %d, got %v", i, err)
				}
			}
		}(p)
	}

	wg.Wait()
	close(done)
	ww.Wait()

	// Now queue must be empty
	if task, ok := q.Next(); ok {
		t.Fatalf("expected empty queue at the end, got value=%q", task.Payload())
	}
}
