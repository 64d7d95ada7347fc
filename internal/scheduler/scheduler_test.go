package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/moviedash-go/internal/config"
	"github.com/user/moviedash-go/internal/push"
)

// MockPusher implements DigestPusher and tracks concurrent cycles
type MockPusher struct {
	mu            sync.Mutex
	cycles        int32
	concurrent    int32
	maxConcurrent int32
	delay         time.Duration
	entered       chan struct{}
	release       chan struct{}
	err           error
}

func NewMockPusher(delay time.Duration) *MockPusher {
	return &MockPusher{delay: delay}
}

func (m *MockPusher) PushDigests(ctx context.Context) (push.Summary, error) {
	current := atomic.AddInt32(&m.concurrent, 1)
	defer atomic.AddInt32(&m.concurrent, -1)

	m.mu.Lock()
	if current > m.maxConcurrent {
		m.maxConcurrent = current
	}
	m.mu.Unlock()

	atomic.AddInt32(&m.cycles, 1)

	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	time.Sleep(m.delay)

	return push.Summary{Sent: 1}, m.err
}

func (m *MockPusher) Cycles() int32 {
	return atomic.LoadInt32(&m.cycles)
}

func (m *MockPusher) MaxConcurrent() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConcurrent
}

func testConfig() *config.DigestConfig {
	return &config.DigestConfig{
		Enabled:      true,
		Interval:     time.Hour,
		InitialDelay: time.Hour,
		RateLimit:    30,
	}
}

func TestTryRun_SkipsWhileRunning(t *testing.T) {
	pusher := NewMockPusher(0)
	pusher.entered = make(chan struct{})
	pusher.release = make(chan struct{})
	s := NewScheduler(pusher, testConfig())

	done := make(chan bool)
	go func() { done <- s.TryRun(context.Background()) }()

	<-pusher.entered
	if !s.IsRunning() {
		t.Error("IsRunning() = false during a cycle")
	}
	if s.TryRun(context.Background()) {
		t.Error("TryRun() = true while a cycle is running")
	}

	close(pusher.release)
	if !<-done {
		t.Error("first TryRun() = false")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after the cycle")
	}
	if pusher.Cycles() != 1 {
		t.Errorf("cycles = %d, want 1", pusher.Cycles())
	}
}

func TestTryRun_ErrorDoesNotBlock(t *testing.T) {
	pusher := NewMockPusher(0)
	pusher.err = errors.New("store unavailable")
	s := NewScheduler(pusher, testConfig())

	if !s.TryRun(context.Background()) || !s.TryRun(context.Background()) {
		t.Error("TryRun() = false after a failed cycle")
	}
	if err := s.RunOnce(context.Background()); err == nil {
		t.Error("RunOnce() error = nil, want pusher error")
	}
}

func TestStart_RunsAfterInitialDelay(t *testing.T) {
	pusher := NewMockPusher(0)
	pusher.entered = make(chan struct{}, 4)
	cfg := testConfig()
	cfg.InitialDelay = 5 * time.Millisecond
	cfg.Interval = 10 * time.Millisecond

	s := NewScheduler(pusher, cfg)
	s.Start(context.Background())

	for i := 0; i < 2; i++ {
		select {
		case <-pusher.entered:
		case <-time.After(2 * time.Second):
			t.Fatalf("cycle %d did not run", i+1)
		}
	}
	s.Stop()

	if pusher.Cycles() < 2 {
		t.Errorf("cycles = %d, want at least 2", pusher.Cycles())
	}
}

func TestStart_Disabled(t *testing.T) {
	pusher := NewMockPusher(0)
	cfg := testConfig()
	cfg.Enabled = false
	cfg.InitialDelay = time.Millisecond

	s := NewScheduler(pusher, cfg)
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if pusher.Cycles() != 0 {
		t.Errorf("cycles = %d, want 0", pusher.Cycles())
	}
}

func TestStop_DuringInitialDelay(t *testing.T) {
	s := NewScheduler(NewMockPusher(0), testConfig())
	s.Start(context.Background())

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}

func TestStart_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(NewMockPusher(0), testConfig())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit on context cancel")
	}
}

// At most one digest cycle runs at any time
func TestProperty_SchedulerMutualExclusion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("at most one digest cycle runs concurrently", prop.ForAll(
		func(numTriggers int, delayMs int) bool {
			pusher := NewMockPusher(time.Duration(delayMs) * time.Millisecond)
			s := NewScheduler(pusher, testConfig())

			var wg sync.WaitGroup
			var accepted int32
			for i := 0; i < numTriggers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if s.TryRun(context.Background()) {
						atomic.AddInt32(&accepted, 1)
					}
				}()
			}
			wg.Wait()

			return pusher.MaxConcurrent() <= 1 && pusher.Cycles() == atomic.LoadInt32(&accepted) && accepted >= 1
		},
		gen.IntRange(2, 10),
		gen.IntRange(1, 10),
	))

	properties.Property("all triggers complete without deadlock", prop.ForAll(
		func(numTriggers int) bool {
			s := NewScheduler(NewMockPusher(time.Millisecond), testConfig())

			var wg sync.WaitGroup
			for i := 0; i < numTriggers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					s.TryRun(context.Background())
				}()
			}

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
				return !s.IsRunning()
			case <-time.After(5 * time.Second):
				return false
			}
		},
		gen.IntRange(2, 10),
	))

	properties.TestingRun(t)
}
