package deduction

import (
	"context"
	"sync"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/logger"
)

// SchedulerConfig controls when the daily batch fires.
type SchedulerConfig struct {
	Hour          int
	Minute        int
	CheckInterval time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Hour:          0,
		Minute:        5,
		CheckInterval: time.Minute,
	}
}

// Scheduler fires the deduction batch once per calendar day at the
// configured local time. The in-memory lastRunDate guard keeps the
// ticker from re-firing within the same day; the per-row date guard in
// the repository makes even an external same-day trigger harmless.
type Scheduler struct {
	config SchedulerConfig
	runner *Runner
	clock  clock.Clock

	mu          sync.Mutex
	lastRunDate string
	running     bool
	stopCh      chan struct{}
}

func NewScheduler(config SchedulerConfig, runner *Runner, clk clock.Clock) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}

	return &Scheduler{
		config: config,
		runner: runner,
		clock:  clk,
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	logger.Infof("deduction scheduler started, daily at %02d:%02d", s.config.Hour, s.config.Minute)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("deduction scheduler stopped by context")
			return
		case <-s.stopCh:
			logger.Info("deduction scheduler stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	now := s.clock.Now()
	today := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()

	if alreadyRan {
		return
	}

	// Fire at or after the configured time, not only on the exact
	// minute, so a missed tick does not skip the whole day.
	if now.Hour() < s.config.Hour || (now.Hour() == s.config.Hour && now.Minute() < s.config.Minute) {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	logger.Infof("deduction scheduler firing for %s", today)

	if _, err := s.runner.Run(ctx); err != nil {
		logger.Errorf("scheduled deduction run failed: %v", err)
	}
}

// RunNow triggers an immediate batch run, bypassing the daily schedule.
// Safe to call on a day the batch already ran.
func (s *Scheduler) RunNow(ctx context.Context) (*Report, error) {
	logger.Info("manual deduction run triggered")
	return s.runner.Run(ctx)
}
