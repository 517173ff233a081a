package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopStepOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	loop := NewLoop().WithClock(clock)
	var order []int
	var times []time.Time
	record := func(cc ControlContext) error {
		order = append(order, cc.PriorityLevel())
		times = append(times, cc.Time())
		return nil
	}
	loop.AddController(PrLvPostProc, ControlFunc(record))
	loop.AddController(PrLvSense, ControlFunc(record))
	loop.AddController(PrLvAcuate, ControlFunc(func(cc ControlContext) error {
		record(cc)
		return errors.New("ignored")
	}))
	loop.AddController(PrLvLink, ControlFunc(record))

	loop.Step(context.Background())
	require.Equal(t, []int{PrLvSense, PrLvLink, PrLvAcuate, PrLvPostProc}, order)
	for _, tm := range times {
		require.Equal(t, time.Unix(100, 0), tm)
	}
	require.Equal(t, uint64(1), loop.Iterations())

	clock.Advance(time.Millisecond)
	order = nil
	loop.Step(context.Background())
	require.Len(t, order, 4)
	require.Equal(t, time.Unix(100, int64(time.Millisecond)), times[len(times)-1])
	require.Equal(t, uint64(2), loop.Iterations())
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	loop := NewLoop()
	ticks := make(chan struct{}, 1)
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("loop did not iterate")
	}
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestPeriodic(t *testing.T) {
	base := time.Unix(0, 0)
	p := NewPeriodic(time.Second)
	require.True(t, p.Due(base))
	require.False(t, p.Due(base.Add(999*time.Millisecond)))
	require.True(t, p.Due(base.Add(time.Second)))
	require.False(t, p.Due(base.Add(1500*time.Millisecond)))
	require.True(t, p.Due(base.Add(2500*time.Millisecond)))
	p.Reset()
	require.True(t, p.Due(base.Add(2501*time.Millisecond)))
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(time.Unix(10, 0))
	c.Sleep(5 * time.Millisecond)
	require.Equal(t, time.Unix(10, int64(5*time.Millisecond)), c.Now())
	c.Set(time.Unix(5, 0))
	require.Equal(t, time.Unix(10, int64(5*time.Millisecond)), c.Now())
	c.Set(time.Unix(11, 0))
	require.Equal(t, time.Unix(11, 0), c.Now())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"))
	require.EqualError(t, errs.Aggregate(), "a")
	errs.Add(errors.New("b"), nil)
	require.EqualError(t, errs.Aggregate(), "multiple errors: a; b")
}

func TestRunnerWaitNamesErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx)
	r.Go(
		NamedRun("broken", RunFunc(func(context.Context) error { return errors.New("boom") })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	cancel()
	require.EqualError(t, r.Wait(), "broken: boom")
}
