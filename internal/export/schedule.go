package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule until its context ends.
type Scheduler struct {
	spec string
	job  func(context.Context) error
	log  *slog.Logger
}

// NewScheduler validates spec, a standard five-field cron expression or a
// descriptor such as "@daily".
func NewScheduler(spec string, job func(context.Context) error, log *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{spec: spec, job: job, log: log.With("component", "export")}, nil
}

// Run starts the schedule and blocks until ctx ends. A running job is
// allowed to finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling %q: %w", s.spec, err)
	}
	c.Start()
	s.log.Info("export schedule started", "schedule", s.spec)

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("export schedule stopped")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.job(ctx); err != nil {
		s.log.Warn("scheduled export failed", "error", err)
	}
}
