package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/offerchat/internal/logging"
)

// SchedulerConfig contains configuration for the poll scheduler.
type SchedulerConfig struct {
	// Interval is the tick period.
	// Default: 3s
	Interval time.Duration

	// MaxInFlight limits concurrently running ticks.
	// Default: 2
	MaxInFlight int
}

// Scheduler runs tick on a fixed interval. At most one ticker loop exists per
// Scheduler; ticks are fire-and-forget and bounded by MaxInFlight.
type Scheduler struct {
	config SchedulerConfig
	tick   func(ctx context.Context)
	logger zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}

	sem     chan struct{}
	wg      sync.WaitGroup
	loops   atomic.Int32
	skipped atomic.Int64
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(config SchedulerConfig, tick func(ctx context.Context)) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = DefaultMaxInFlight
	}
	return &Scheduler{
		config: config,
		tick:   tick,
		logger: logging.Component("chat-scheduler"),
		sem:    make(chan struct{}, config.MaxInFlight),
	}
}

// Start begins ticking. A running loop is stopped first, so repeated calls
// never stack timers. Ticks receive ctx; cancelling it also ends the loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.loopDone = done

	s.loops.Add(1)
	go s.runLoop(loopCtx, ctx, done)

	s.logger.Debug().
		Dur("interval", s.config.Interval).
		Int("max_in_flight", s.config.MaxInFlight).
		Msg("poll scheduler started")
}

// Stop cancels the ticker and waits for its loop to exit. Ticks already
// running are left to finish. Safe to call when stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.loopDone
	s.cancel = nil
	s.loopDone = nil
	s.logger.Debug().Msg("poll scheduler stopped")
}

// Running reports whether a ticker loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// ActiveLoops returns the number of live ticker loops (0 or 1).
func (s *Scheduler) ActiveLoops() int {
	return int(s.loops.Load())
}

// Skipped counts ticks dropped because MaxInFlight ticks were still running.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// Wait blocks until all running ticks have returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(loopCtx, tickCtx context.Context, done chan struct{}) {
	defer close(done)
	defer s.loops.Add(-1)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			s.dispatch(tickCtx)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context) {
	select {
	case s.sem <- struct{}{}:
	default:
		s.skipped.Add(1)
		s.logger.Debug().Msg("poll tick skipped: previous fetches still running")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		s.tick(ctx)
	}()
}
