package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcoskids/marcos/internal/logging"
)

// Scheduler runs the all-children sweep on a cron schedule.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   *Sweeper
	opts      Options
	log       *logging.Logger

	// ctx is canceled by Stop to interrupt a running sweep.
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	last Report
	// after resumes the next run where a canceled one stopped.
	after string
}

// NewScheduler creates a scheduler for sweeper. log may be nil.
func NewScheduler(sweeper *Sweeper, opts Options, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	// Never start a sweep while the previous one is still running.
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		opts:      opts,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		after:     opts.After,
	}
}

// Start schedules the sweep with a standard five-field cron expression and
// begins running in the background.
func (s *Scheduler) Start(cronExpr string) error {
	if _, err := s.scheduler.Cron(cronExpr).Do(s.RunOnce); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", cronExpr, err)
	}
	s.scheduler.StartAsync()
	s.log.Info("recompute sweep scheduled", "cron", cronExpr)
	return nil
}

// Stop terminates scheduled runs and interrupts a running sweep.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

// RunOnce performs one all-children sweep, resuming after the last child
// of a previously canceled run.
func (s *Scheduler) RunOnce() {
	s.mu.Lock()
	opts := s.opts
	opts.After = s.after
	s.mu.Unlock()

	rep, err := s.sweeper.Run(s.ctx, Target{All: true}, opts)
	if err != nil {
		s.log.Error("scheduled sweep failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = rep
	if rep.Canceled {
		s.after = rep.LastChildID
	} else {
		s.after = s.opts.After
	}
}

// LastReport returns the report of the most recent run.
func (s *Scheduler) LastReport() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
