// Package scheduler repeats background tasks on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick until ctx ends.
// A tick that arrives while the previous run is still going is skipped.
// A non-positive interval returns at once.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	var running atomic.Bool
	run := func() {
		if !running.CompareAndSwap(false, true) {
			log.Printf("[%s] previous run still going, skipping tick", name)
			return
		}
		defer running.Store(false)
		if err := task(ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
		}
	}

	// run immediately
	go run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go run()
		}
	}
}
