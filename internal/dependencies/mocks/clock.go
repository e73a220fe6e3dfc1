package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/aliasgame/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers only fire when Tick is called.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// NewTicker creates a manual ticker owned by this clock
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances the clock by d and fires every live ticker once.
// Each send blocks until the ticker's reader receives it or the ticker stops.
func (c *MockClock) Tick(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	now := c.currentTime
	tickers := make([]*MockTicker, 0, len(c.tickers))
	for _, t := range c.tickers {
		if !t.isStopped() {
			tickers = append(tickers, t)
		}
	}
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// ActiveTickers returns the number of tickers that have not been stopped
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			count++
		}
	}
	return count
}

// MockTicker is a ticker driven by MockClock.Tick
type MockTicker struct {
	ch       chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop marks the ticker as stopped; pending fires are abandoned
func (t *MockTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

func (t *MockTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

func (t *MockTicker) fire(now time.Time) {
	select {
	case t.ch <- now:
	case <-t.stopped:
	}
}
