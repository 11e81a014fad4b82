// Package bench compares the lock-free ring queue with lock-based and
// channel-based queues of the same capacity.
package bench

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type Scenario string

const (
	// Insert fills an empty queue to capacity from one goroutine.
	Insert Scenario = "insert"
	// Remove drains a full queue from one goroutine.
	Remove Scenario = "remove"
	// Transfer moves Items elements from Producers to Consumers goroutines.
	Transfer Scenario = "transfer"
)

var (
	ErrUnknownQueue    = fmt.Errorf("unknown queue")
	ErrUnknownScenario = fmt.Errorf("unknown scenario")
	ErrCheckFailed     = fmt.Errorf("check failed")
)

type Config struct {
	Capacity  int        `json:"capacity"`
	Items     int        `json:"items"`
	Producers int        `json:"producers"`
	Consumers int        `json:"consumers"`
	Queues    []string   `json:"queues,omitempty"`
	Scenarios []Scenario `json:"scenarios"`
}

func DefaultConfig() Config {
	return Config{
		Capacity:  1 << 16,
		Items:     1 << 20,
		Producers: 4,
		Consumers: 4,
		Scenarios: []Scenario{Insert, Remove, Transfer},
	}
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0, got %d", c.Capacity)
	}
	if c.Items <= 0 {
		return fmt.Errorf("items must be > 0, got %d", c.Items)
	}
	if c.Producers <= 0 || c.Consumers <= 0 {
		return fmt.Errorf("producers and consumers must be > 0, got %d/%d", c.Producers, c.Consumers)
	}
	for _, s := range c.Scenarios {
		switch s {
		case Insert, Remove, Transfer:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownScenario, s)
		}
	}
	return nil
}

type Result struct {
	Queue    string        `json:"queue"`
	Scenario Scenario      `json:"scenario"`
	Ops      int           `json:"ops"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	NsPerOp  float64       `json:"ns_per_op"`
}

func newResult(queue string, s Scenario, ops int, elapsed time.Duration) Result {
	return Result{
		Queue:    queue,
		Scenario: s,
		Ops:      ops,
		Elapsed:  elapsed,
		NsPerOp:  float64(elapsed.Nanoseconds()) / float64(ops),
	}
}

// Run executes every configured scenario against every selected queue.
// Queues run one after another in name order.
func Run(ctx context.Context, cfg Config, factories map[string]Factory) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	names := cfg.Queues
	if len(names) == 0 {
		names = slices.Sorted(maps.Keys(factories))
	}

	report := Report{Config: cfg, StartedAt: time.Now()}
	for _, name := range names {
		f, ok := factories[name]
		if !ok {
			return report, fmt.Errorf("%w: %q", ErrUnknownQueue, name)
		}
		for _, s := range cfg.Scenarios {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			var (
				res Result
				err error
			)
			switch s {
			case Insert:
				res, err = runInsert(name, f, cfg)
			case Remove:
				res, err = runRemove(name, f, cfg)
			case Transfer:
				res, err = runTransfer(ctx, name, f, cfg)
			}
			if err != nil {
				return report, fmt.Errorf("%s/%s: %w", name, s, err)
			}
			report.Results = append(report.Results, res)
		}
	}
	return report, nil
}

func runInsert(name string, f Factory, cfg Config) (Result, error) {
	q := f(cfg.Capacity)

	start := time.Now()
	for i := 0; i < cfg.Capacity; i++ {
		if !q.Offer(i) {
			return Result{}, fmt.Errorf("%w: offer failed at %d (queue unexpectedly full)", ErrCheckFailed, i)
		}
	}
	elapsed := time.Since(start)

	if n := q.Size(); n != cfg.Capacity {
		return Result{}, fmt.Errorf("%w: expected size %d, got %d", ErrCheckFailed, cfg.Capacity, n)
	}
	return newResult(name, Insert, cfg.Capacity, elapsed), nil
}

func runRemove(name string, f Factory, cfg Config) (Result, error) {
	q := f(cfg.Capacity)
	for i := 0; i < cfg.Capacity; i++ {
		q.Offer(i)
	}

	start := time.Now()
	for i := 0; i < cfg.Capacity; i++ {
		v, ok := q.Poll()
		if !ok {
			return Result{}, fmt.Errorf("%w: poll failed at %d (queue unexpectedly empty)", ErrCheckFailed, i)
		}
		if v != i {
			return Result{}, fmt.Errorf("%w: expected %d, got %d (FIFO violated)", ErrCheckFailed, i, v)
		}
	}
	elapsed := time.Since(start)

	if n := q.Size(); n != 0 {
		return Result{}, fmt.Errorf("%w: expected empty queue, got size %d", ErrCheckFailed, n)
	}
	return newResult(name, Remove, cfg.Capacity, elapsed), nil
}

func runTransfer(ctx context.Context, name string, f Factory, cfg Config) (Result, error) {
	q := f(cfg.Capacity)
	seen := make([]int32, cfg.Items)

	var (
		received atomic.Int64
		dup      atomic.Int64
		wg       sync.WaitGroup
	)

	perProducer := cfg.Items / cfg.Producers
	start := time.Now()

	wg.Add(cfg.Consumers)
	for c := 0; c < cfg.Consumers; c++ {
		go func() {
			defer wg.Done()
			for received.Load() < int64(cfg.Items) {
				v, ok := q.Poll()
				if !ok {
					if ctx.Err() != nil {
						return
					}
					runtime.Gosched()
					continue
				}
				if atomic.AddInt32(&seen[v], 1) != 1 {
					dup.Add(1)
				}
				received.Add(1)
			}
		}()
	}

	wg.Add(cfg.Producers)
	for p := 0; p < cfg.Producers; p++ {
		from := p * perProducer
		to := from + perProducer
		if p == cfg.Producers-1 {
			to = cfg.Items
		}
		go func(from, to int) {
			defer wg.Done()
			for i := from; i < to; i++ {
				for !q.Offer(i) {
					if ctx.Err() != nil {
						return
					}
					runtime.Gosched()
				}
			}
		}(from, to)
	}

	wg.Wait()
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if n := dup.Load(); n != 0 {
		return Result{}, fmt.Errorf("%w: %d elements delivered more than once", ErrCheckFailed, n)
	}
	return newResult(name, Transfer, cfg.Items, elapsed), nil
}
