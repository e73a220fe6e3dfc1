package interval

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
)

// Runner calls a function on a fixed period until stopped.
// A Runner can be started again after Stop.
type Runner struct {
	clock  clock.Clock
	period time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped Runner
func New(clk clock.Clock, period time.Duration) *Runner {
	return &Runner{
		clock:  clk,
		period: period,
	}
}

// Start begins calling fn once per period. It returns false if the runner
// is already running. The ticker exists by the time Start returns.
// fn runs on the runner's goroutine and must not call Stop.
func (r *Runner) Start(ctx context.Context, fn func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := r.clock.NewTicker(r.period)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()

	return true
}

// Stop cancels the runner and waits for its goroutine to exit.
// Safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the runner has been started and not stopped
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
