package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 15 * time.Minute

// Scheduler triggers ingestion runs on a cron schedule. A tick that fires
// while the previous run is still in progress is skipped.
type Scheduler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cron       *cron.Cron
	runner     Runner
	schedule   string
	runTimeout time.Duration
	wg         sync.WaitGroup
}

func NewScheduler(runner Runner, schedule string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Scheduler{
		ctx:        ctx,
		cancel:     cancel,
		cron:       c,
		runner:     runner,
		schedule:   schedule,
		runTimeout: defaultRunTimeout,
	}
}

// Start registers the job, kicks off an initial run and starts the cron loop.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.schedule, s.ingest)
	if err != nil {
		return fmt.Errorf("invalid ingest schedule %q: %w", s.schedule, err)
	}

	// Same wrapped job as the cron entry, so a tick during the initial run is
	// skipped. Cron tracks its own jobs; only this run needs the WaitGroup.
	job := s.cron.Entry(id).WrappedJob
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	s.cron.Start()

	slog.Info("Scheduler started", "schedule", s.schedule)

	return nil
}

// Stop cancels the in-flight run, if any, and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) ingest() {
	ctx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	if ctx.Err() != nil {
		slog.Debug("Scheduler context is done, skipping run", "error", ctx.Err())
		return
	}

	if _, err := s.runner.Run(ctx); err != nil {
		slog.Error("Scheduled ingestion failed", "error", err)
	}
}

// cronLogger routes robfig/cron diagnostics through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
