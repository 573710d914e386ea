// Package scheduler re-synchronises the configured workbook periodically.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/marches/internal/ledger"
)

const defaultTimeout = 5 * time.Minute

var ErrNoSource = errors.New("no sync source configured")

type FileSyncer interface {
	SyncFile(ctx context.Context, path string, force bool) (ledger.Stats, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sync    FileSyncer
	source  string
	timeout time.Duration
	log     *slog.Logger
}

// New returns a scheduler for source. Specs take five fields, an optional
// leading seconds field, or descriptors such as @hourly and @every 30m.
func New(sync FileSyncer, source string, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}

	cl := cronLogger{log: log.With("component", "scheduler")}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		sync:    sync,
		source:  source,
		timeout: defaultTimeout,
		log:     log,
	}
}

// Start schedules the re-sync and starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if s.source == "" {
		return ErrNoSource
	}

	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("scheduling %q: %w", spec, err)
	}

	s.cron.Start()
	s.log.Info("sync scheduled", "source", s.source, "schedule", spec)

	return nil
}

// Stop stops the cron loop. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce syncs the source if it changed since the last snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) (ledger.Stats, error) {
	if s.source == "" {
		return ledger.Stats{}, ErrNoSource
	}

	stats, err := s.sync.SyncFile(ctx, s.source, false)
	if err != nil {
		s.log.Error("scheduled sync failed", "source", s.source, "error", err)
		return stats, err
	}

	s.log.Info("scheduled sync",
		"source", s.source,
		"status", stats.Status,
		"message", stats.Message,
	)

	return stats, nil
}

// cronLogger routes cron's logging to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
