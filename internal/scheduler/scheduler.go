// Package scheduler runs the periodic inbox sync followed by alert notification
// generation on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/service"
)

// DefaultSchedule runs every two hours on the hour.
const DefaultSchedule = "0 */2 * * *"

// Syncer is satisfied by *service.SyncService.
type Syncer interface {
	RunSync(ctx context.Context) (service.SyncResult, error)
}

// Notifier is satisfied by *service.NotificationService.
type Notifier interface {
	GenerateAlertNotifications(ctx context.Context) ([]repository.Notification, error)
}

// Config holds scheduling options. A zero Timeout lets every run finish.
type Config struct {
	Schedule string
	Location *time.Location
	Timeout  time.Duration
}

// Scheduler owns a cron instance with a single sync job. Overlapping runs are skipped.
type Scheduler struct {
	cron     *cron.Cron
	sync     Syncer
	notifier Notifier
	timeout  time.Duration
	log      zerolog.Logger
	entry    cron.EntryID
}

// New validates cfg and registers the sync job. The scheduler is not started.
func New(cfg Config, sync Syncer, notifier Notifier, log zerolog.Logger) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Scheduler{sync: sync, notifier: notifier, timeout: cfg.Timeout, log: log}
	cl := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := s.cron.AddFunc(cfg.Schedule, s.run)
	if err != nil {
		return nil, fmt.Errorf("unable to schedule sms sync %q: %w", cfg.Schedule, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := s.runContext()
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled sync failed")
	}
}

func (s *Scheduler) runContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(context.Background(), s.timeout)
	}
	return context.WithCancel(context.Background())
}

// RunOnce syncs the inbox and then generates alert notifications. A notification
// failure is logged and does not fail the run.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	res, err := s.sync.RunSync(ctx)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	stored, err := s.notifier.GenerateAlertNotifications(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("run_id", res.RunID).Msg("alert notification generation failed")
		return nil
	}
	s.log.Debug().Str("run_id", res.RunID).Int("notifications", len(stored)).Msg("scheduled run complete")
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Time("next", s.Next()).Msg("sms sync scheduler started")
}

// Stop halts scheduling. The returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next reports the next activation, or the zero time when the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
