package interval

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aliasgame/internal/dependencies/mocks"
)

type RunnerSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	runner *Runner
	calls  atomic.Int32
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.runner = New(s.clock, time.Second)
	s.calls.Store(0)
}

func (s *RunnerSuite) TearDownTest() {
	s.runner.Stop()
}

func (s *RunnerSuite) count(ctx context.Context) {
	s.calls.Add(1)
}

func (s *RunnerSuite) TestStartCreatesTickerImmediately() {
	s.True(s.runner.Start(context.Background(), s.count))
	s.True(s.runner.Running())
	s.Equal(1, s.clock.ActiveTickers())
}

func (s *RunnerSuite) TestCallsFunctionOnEachTick() {
	s.runner.Start(context.Background(), s.count)

	s.clock.Tick(time.Second)
	s.clock.Tick(time.Second)
	s.clock.Tick(time.Second)

	s.Eventually(func() bool { return s.calls.Load() == 3 }, time.Second, time.Millisecond)
}

func (s *RunnerSuite) TestStartTwiceIsRejected() {
	s.True(s.runner.Start(context.Background(), s.count))
	s.False(s.runner.Start(context.Background(), s.count))
	s.Equal(1, s.clock.ActiveTickers())
}

func (s *RunnerSuite) TestStopReleasesTicker() {
	s.runner.Start(context.Background(), s.count)
	s.runner.Stop()

	s.False(s.runner.Running())
	s.Equal(0, s.clock.ActiveTickers())
}

func (s *RunnerSuite) TestNoCallsAfterStop() {
	s.runner.Start(context.Background(), s.count)
	s.clock.Tick(time.Second)
	s.Eventually(func() bool { return s.calls.Load() == 1 }, time.Second, time.Millisecond)

	s.runner.Stop()
	s.clock.Tick(time.Second)
	s.clock.Tick(time.Second)

	s.Equal(int32(1), s.calls.Load())
}

func (s *RunnerSuite) TestStopIsIdempotent() {
	s.runner.Stop()
	s.runner.Start(context.Background(), s.count)
	s.runner.Stop()
	s.runner.Stop()
	s.False(s.runner.Running())
}

func (s *RunnerSuite) TestRestartAfterStop() {
	s.runner.Start(context.Background(), s.count)
	s.runner.Stop()

	s.True(s.runner.Start(context.Background(), s.count))
	s.Equal(1, s.clock.ActiveTickers())

	s.clock.Tick(time.Second)
	s.Eventually(func() bool { return s.calls.Load() == 1 }, time.Second, time.Millisecond)
}

func (s *RunnerSuite) TestParentContextCancelStopsCalls() {
	ctx, cancel := context.WithCancel(context.Background())
	s.runner.Start(ctx, s.count)
	cancel()

	s.Eventually(func() bool { return s.clock.ActiveTickers() == 0 }, time.Second, time.Millisecond)
	s.clock.Tick(time.Second)
	s.Equal(int32(0), s.calls.Load())
}
