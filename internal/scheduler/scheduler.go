package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/expiry"
)

const jobTimeout = 2 * time.Minute

// ExpiryJobs is the work the scheduler triggers. *expiry.Service satisfies it.
type ExpiryJobs interface {
	RunSweep(ctx context.Context) (*models.SweepReport, error)
	SendWeeklySummary(ctx context.Context) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   ExpiryJobs
	cfg    config.ScheduleConfig
	logger *zap.Logger
}

// NewScheduler creates a scheduler running in the configured time zone.
func NewScheduler(cfg config.ScheduleConfig, loc *time.Location, jobs ExpiryJobs, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
	}
}

// Register adds the expiry sweep and the weekly summary to the schedule.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.SweepCron, s.runSweep); err != nil {
		return fmt.Errorf("schedule expiry sweep %q: %w", s.cfg.SweepCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SummaryCron, s.sendWeeklySummary); err != nil {
		return fmt.Errorf("schedule weekly summary %q: %w", s.cfg.SummaryCron, err)
	}
	return nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if err := s.Register(); err != nil {
		return err
	}

	s.logger.Info("starting scheduler",
		zap.String("sweep", s.cfg.SweepCron),
		zap.String("summary", s.cfg.SummaryCron),
		zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Entries exposes the registered cron entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.jobs.RunSweep(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("expiry sweep completed", zap.Int("disabled", report.Disabled), zap.Int("notified", report.Notified))
}

func (s *Scheduler) sendWeeklySummary() {
	s.logger.Info("generating weekly summary")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.jobs.SendWeeklySummary(ctx); err != nil {
		if errors.Is(err, expiry.ErrNoNotifier) {
			s.logger.Debug("weekly summary skipped, no notifier")
			return
		}
		s.logger.Error("failed to send weekly summary", zap.Error(err))
		return
	}
	s.logger.Info("weekly summary sent successfully")
}
