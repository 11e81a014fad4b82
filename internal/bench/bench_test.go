package bench

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aradilov/ringqueue"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Capacity = 256
	cfg.Items = 10_000
	cfg.Producers = 3
	cfg.Consumers = 2
	return cfg
}

func TestRunAllContenders(t *testing.T) {
	cfg := smallConfig()
	report, err := Run(context.Background(), cfg, Contenders())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(report.Results) != 3*len(cfg.Scenarios) {
		t.Fatalf("expected %d results, got %d", 3*len(cfg.Scenarios), len(report.Results))
	}

	names := map[string]int{}
	for _, res := range report.Results {
		names[res.Queue]++
		if res.Ops <= 0 || res.NsPerOp < 0 {
			t.Fatalf("bad result %+v", res)
		}
		if res.Scenario == Transfer && res.Ops != cfg.Items {
			t.Fatalf("expected %d transferred items, got %d", cfg.Items, res.Ops)
		}
	}
	for _, name := range []string{"chan", "locked", "lockfree"} {
		if names[name] != len(cfg.Scenarios) {
			t.Fatalf("expected %d results for %s, got %d", len(cfg.Scenarios), name, names[name])
		}
	}
	if report.Results[0].Queue != "chan" {
		t.Fatalf("expected queues in name order, first is %s", report.Results[0].Queue)
	}
}

func TestRunWithQueueOptions(t *testing.T) {
	cfg := smallConfig()
	cfg.Queues = []string{"lockfree"}

	report, err := Run(context.Background(), cfg, Contenders(ringqueue.WithMaxRetries(1_000), ringqueue.WithStats()))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(report.Results) != len(cfg.Scenarios) {
		t.Fatalf("expected %d results, got %d", len(cfg.Scenarios), len(report.Results))
	}
}

func TestRunErrors(t *testing.T) {
	cfg := smallConfig()
	cfg.Queues = []string{"nope"}
	if _, err := Run(context.Background(), cfg, Contenders()); !errors.Is(err, ErrUnknownQueue) {
		t.Fatalf("expected ErrUnknownQueue, got %v", err)
	}

	cfg = smallConfig()
	cfg.Scenarios = []Scenario{"warp"}
	if _, err := Run(context.Background(), cfg, Contenders()); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}

	cfg = smallConfig()
	cfg.Capacity = 0
	if _, err := Run(context.Background(), cfg, Contenders()); err == nil {
		t.Fatalf("expected validation error for zero capacity")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, smallConfig(), Contenders()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// A queue that drops elements is caught by the checks.
func TestRunDetectsBrokenQueue(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenarios = []Scenario{Insert}

	broken := map[string]Factory{
		"broken": func(capacity int) Queue { return NewLockedQueue(capacity / 2) },
	}
	if _, err := Run(context.Background(), cfg, broken); !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
}

func TestReportJSON(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenarios = []Scenario{Insert, Remove}
	report, err := Run(context.Background(), cfg, Contenders())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := report.JSON()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := ParseReport(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Results) != len(report.Results) {
		t.Fatalf("expected %d results, got %d", len(report.Results), len(decoded.Results))
	}
	if decoded.Config.Capacity != cfg.Capacity {
		t.Fatalf("expected capacity %d, got %d", cfg.Capacity, decoded.Config.Capacity)
	}
	got, want := decoded.Results[0], report.Results[0]
	if got.Queue != want.Queue || got.Scenario != want.Scenario || got.Ops != want.Ops || got.Elapsed != want.Elapsed {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if _, err = ParseReport([]byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}

	var buf bytes.Buffer
	if err = report.WriteTable(&buf); err != nil {
		t.Fatalf("table failed: %v", err)
	}
	if !strings.Contains(buf.String(), "lockfree") {
		t.Fatalf("expected lockfree row in\n%s", buf.String())
	}
}

func TestLockedQueue(t *testing.T) {
	q := NewLockedQueue(2)
	if !q.Offer(1) || !q.Offer(2) {
		t.Fatalf("offer failed (queue unexpectedly full)")
	}
	if q.Offer(3) {
		t.Fatalf("expected overflow")
	}
	if v, ok := q.Poll(); !ok || v != 1 {
		t.Fatalf("expected 1, got %d (ok=%v)", v, ok)
	}
	if q.Size() != 1 {
		t.Fatalf("expected size 1, got %d", q.Size())
	}
	q.Poll()
	if _, ok := q.Poll(); ok {
		t.Fatalf("expected empty queue")
	}
}

func BenchmarkContenders(b *testing.B) {
	for name, f := range Contenders() {
		b.Run(name, func(b *testing.B) {
			q := f(1 << 10)
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					if i&1 == 0 {
						q.Offer(i)
					} else {
						q.Poll()
					}
					i++
				}
			})
		})
	}
}
