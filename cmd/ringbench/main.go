// Command ringbench compares the lock-free ring queue with a mutex-guarded queue
// and a buffered channel, and prints a table or a JSON report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/aradilov/ringqueue"
	"github.com/aradilov/ringqueue/internal/bench"
)

func main() {
	def := bench.DefaultConfig()

	capacity := flag.Int("capacity", def.Capacity, "queue capacity")
	items := flag.Int("items", def.Items, "elements moved by the transfer scenario")
	producers := flag.Int("producers", def.Producers, "producer goroutines in the transfer scenario")
	consumers := flag.Int("consumers", def.Consumers, "consumer goroutines in the transfer scenario")
	queues := flag.String("queues", "", "comma-separated queues to run (lockfree,locked,chan); empty runs all")
	scenarios := flag.String("scenarios", "insert,remove,transfer", "comma-separated scenarios")
	maxRetries := flag.Int("max-retries", 0, "CAS retry cap for the lock-free queue, 0 is unbounded")
	stats := flag.Bool("stats", false, "collect lock-free queue counters")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	out := flag.String("out", "", "write the JSON report to this file")
	flag.Parse()

	cfg := bench.Config{
		Capacity:  *capacity,
		Items:     *items,
		Producers: *producers,
		Consumers: *consumers,
		Queues:    splitList(*queues),
	}
	for _, s := range splitList(*scenarios) {
		cfg.Scenarios = append(cfg.Scenarios, bench.Scenario(s))
	}

	opts := []ringqueue.Option{ringqueue.WithMaxRetries(*maxRetries)}
	if *stats {
		opts = append(opts, ringqueue.WithStats())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, opts, *asJSON, *out); err != nil {
		log.Fatalf("ringbench: %v", err)
	}
}

func run(ctx context.Context, cfg bench.Config, opts []ringqueue.Option, asJSON bool, out string) error {
	log.Printf("capacity=%d items=%d producers=%d consumers=%d", cfg.Capacity, cfg.Items, cfg.Producers, cfg.Consumers)

	report, err := bench.Run(ctx, cfg, bench.Contenders(opts...))
	if err != nil {
		return err
	}

	if asJSON || out != "" {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if out != "" {
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			log.Printf("report written to %s", out)
		}
		if asJSON {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
	}
	return report.WriteTable(os.Stdout)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
