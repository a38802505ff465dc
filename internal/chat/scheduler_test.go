package chat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerDefaults(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, func(context.Context) {})
	require.Equal(t, DefaultPollInterval, s.config.Interval)
	require.Equal(t, DefaultMaxInFlight, s.config.MaxInFlight)
	require.False(t, s.Running())
	require.Zero(t, s.ActiveLoops())
}

func TestSchedulerTicksUntilStopped(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(SchedulerConfig{Interval: 5 * time.Millisecond}, func(context.Context) {
		ticks.Add(1)
	})

	s.Start(context.Background())
	require.True(t, s.Running())
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, time.Millisecond)

	s.Stop()
	s.Wait()
	require.False(t, s.Running())
	require.Zero(t, s.ActiveLoops())

	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, settled, ticks.Load())

	s.Stop()
}

func TestSchedulerRestartKeepsOneLoop(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Interval: 5 * time.Millisecond}, func(context.Context) {})
	defer s.Stop()

	for i := 0; i < 5; i++ {
		s.Start(context.Background())
		require.Equal(t, 1, s.ActiveLoops())
	}
}

func TestSchedulerBoundsInFlightTicks(t *testing.T) {
	release := make(chan struct{})
	var running, peak atomic.Int64
	s := NewScheduler(SchedulerConfig{Interval: 2 * time.Millisecond, MaxInFlight: 2}, func(ctx context.Context) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		running.Add(-1)
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return s.Skipped() > 0 }, 2*time.Second, time.Millisecond)
	s.Stop()
	close(release)
	s.Wait()

	require.Equal(t, int64(2), peak.Load())
	require.Zero(t, running.Load())
}

func TestSchedulerStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(SchedulerConfig{Interval: 5 * time.Millisecond}, func(context.Context) {})
	s.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return s.ActiveLoops() == 0 }, 2*time.Second, time.Millisecond)
	s.Stop()
	require.False(t, s.Running())
}
