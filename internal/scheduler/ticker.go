package scheduler

import (
	"context"
	"fmt"

	"tender-alert-engine/internal/alert"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PollRunner is one ingest cycle. The ingest poller implements it.
type PollRunner interface {
	Run(ctx context.Context) error
}

// Ticker wires up the cron jobs: the periodic ingest poll and the daily and
// weekly flush boundaries.
type Ticker struct {
	cron       *cron.Cron
	dispatcher *Dispatcher
	poller     PollRunner
	pollSpec   string // e.g. "@every 30m"
	log        *zap.Logger
}

func NewTicker(dispatcher *Dispatcher, poller PollRunner, pollEveryMinutes int, log *zap.Logger) *Ticker {
	return &Ticker{
		cron:       cron.New(),
		dispatcher: dispatcher,
		poller:     poller,
		pollSpec:   fmt.Sprintf("@every %dm", pollEveryMinutes),
		log:        log,
	}
}

// Start registers the jobs and starts the scheduler. One ingest cycle runs
// immediately so a fresh deployment does not wait for the first tick.
func (t *Ticker) Start(ctx context.Context) error {
	if _, err := t.cron.AddFunc(t.pollSpec, func() { t.runPoll(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc poll: %w", err)
	}
	if _, err := t.cron.AddFunc("@daily", func() { t.dispatcher.Flush(ctx, alert.FrequencyDaily) }); err != nil {
		return fmt.Errorf("cron.AddFunc daily flush: %w", err)
	}
	if _, err := t.cron.AddFunc("@weekly", func() { t.dispatcher.Flush(ctx, alert.FrequencyWeekly) }); err != nil {
		return fmt.Errorf("cron.AddFunc weekly flush: %w", err)
	}

	t.cron.Start()
	t.log.Info("scheduler started", zap.String("poll_spec", t.pollSpec))

	go t.runPoll(ctx)

	return nil
}

// Stop halts the cron scheduler. A flush that already entered DISPATCHING
// keeps running until its partition completes.
func (t *Ticker) Stop() {
	t.cron.Stop()
	t.log.Info("scheduler stopped")
}

func (t *Ticker) runPoll(ctx context.Context) {
	if err := t.poller.Run(ctx); err != nil {
		t.log.Error("ingest cycle failed", zap.Error(err))
	}
}
