package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/config"
	"github.com/user/moviedash-go/internal/push"
)

// DigestPusher runs one digest cycle
type DigestPusher interface {
	PushDigests(ctx context.Context) (push.Summary, error)
}

// Scheduler manages periodic digest cycles
type Scheduler struct {
	pusher   DigestPusher
	config   *config.DigestConfig
	running  atomic.Bool
	mu       sync.Mutex // held for the whole cycle so overlapping triggers are skipped
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(pusher DigestPusher, cfg *config.DigestConfig) *Scheduler {
	return &Scheduler{
		pusher: pusher,
		config: cfg,
		stopCh: make(chan struct{}),
	}
}

// Start runs the first cycle after the initial delay and then one per interval
func (s *Scheduler) Start(ctx context.Context) {
	if !s.config.Enabled {
		log.Info().Msg("Digest scheduler is disabled")
		return
	}

	s.wg.Add(1)
	go s.run(ctx)
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	log.Info().Dur("delay", s.config.InitialDelay).Msg("Scheduler starting with initial delay")

	select {
	case <-time.After(s.config.InitialDelay):
		s.execute(ctx, "initial")
	case <-s.stopCh:
		log.Info().Msg("Scheduler stopped during initial delay")
		return
	case <-ctx.Done():
		log.Info().Msg("Scheduler context cancelled during initial delay")
		return
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.config.Interval).Msg("Scheduler started periodic execution")

	for {
		select {
		case <-ticker.C:
			s.execute(ctx, "periodic")
		case <-s.stopCh:
			log.Info().Msg("Scheduler stopped")
			return
		case <-ctx.Done():
			log.Info().Msg("Scheduler context cancelled")
			return
		}
	}
}

// execute runs a single cycle unless one is already running
func (s *Scheduler) execute(ctx context.Context, trigger string) bool {
	if !s.mu.TryLock() {
		log.Warn().Str("trigger", trigger).Msg("Digest cycle already running, skipping this trigger")
		return false
	}
	defer s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	startTime := time.Now()
	log.Info().Str("trigger", trigger).Msg("Starting digest cycle")

	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Str("trigger", trigger).Msg("Digest cycle failed")
	}

	log.Info().
		Str("trigger", trigger).
		Dur("duration", time.Since(startTime)).
		Msg("Digest cycle finished")
	return true
}

// RunOnce executes a single digest cycle
func (s *Scheduler) RunOnce(ctx context.Context) error {
	_, err := s.pusher.PushDigests(ctx)
	return err
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

// IsRunning returns true if a digest cycle is currently running
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// TryRun attempts to run a digest cycle immediately.
// Returns false if a cycle is already running.
func (s *Scheduler) TryRun(ctx context.Context) bool {
	return s.execute(ctx, "manual")
}
