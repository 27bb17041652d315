package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job runs one scheduled pass.
type Job func(ctx context.Context) error

// Options configure a Scheduler.
type Options struct {
	Spec         string
	Location     *time.Location
	RunOnStartup bool
	Timeout      time.Duration
}

// Scheduler runs a single named job on a cron schedule.
type Scheduler struct {
	name    string
	cron    *cron.Cron
	job     Job
	opts    Options
	logger  *zap.Logger
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
}

// New builds a scheduler. The spec uses the standard five-field cron format.
func New(name string, job Job, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Scheduler{
		name:   name,
		cron:   cron.New(cron.WithLocation(opts.Location)),
		job:    job,
		opts:   opts,
		logger: logger.With(zap.String("job", name)),
	}
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.opts.Spec, func() { s.Run(context.Background()) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", s.name, err)
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.opts.Spec), zap.String("timezone", s.opts.Location.String()))

	if s.opts.RunOnStartup {
		go s.Run(context.Background())
	}
	return nil
}

// Stop halts the cron loop and waits for a running pass to return.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return
	}
	s.logger.Info("scheduler stopped")
}

// Next reports the next activation, zero if not started.
func (s *Scheduler) Next() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Run executes the job once and reports whether it ran. Overlapping passes are skipped.
func (s *Scheduler) Run(ctx context.Context) (ran bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous run still in progress, skipping")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	ran = true
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled job panicked", zap.Any("panic", r))
		}
	}()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return true
	}
	s.logger.Info("scheduled job completed", zap.Duration("duration", time.Since(start)))
	return true
}
