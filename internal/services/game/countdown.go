package game

import (
	"context"
	"time"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
	"github.com/mcoot/aliasgame/internal/services/interval"
)

// TickPeriod is how often the countdown ticks the machine
const TickPeriod = time.Second

// Countdown ticks a Machine once per second while running
type Countdown struct {
	machine *Machine
	runner  *interval.Runner
}

// NewCountdown creates a stopped countdown for the machine
func NewCountdown(machine *Machine, clk clock.Clock) *Countdown {
	return &Countdown{
		machine: machine,
		runner:  interval.New(clk, TickPeriod),
	}
}

// Start begins ticking. Returns false if already running.
func (c *Countdown) Start(ctx context.Context) bool {
	return c.runner.Start(ctx, func(context.Context) {
		c.machine.Tick()
	})
}

// Stop halts the countdown; no tick reaches the machine after it returns
func (c *Countdown) Stop() {
	c.runner.Stop()
}

// Running reports whether the countdown is ticking
func (c *Countdown) Running() bool {
	return c.runner.Running()
}
