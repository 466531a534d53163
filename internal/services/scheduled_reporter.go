package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneytrack/internal/ledger"
	"moneytrack/internal/log"
)

// DailyReportSender delivers a prepared daily report to one recipient.
type DailyReportSender interface {
	SendDailyReport(ctx context.Context, recipient string, view DailyView) error
}

// RecipientSource lists who receives the scheduled report on each run.
type RecipientSource func(ctx context.Context) ([]string, error)

// ScheduledReporterConfig holds the reporter's timing and parallelism.
type ScheduledReporterConfig struct {
	// Interval between runs (default 24h).
	Interval time.Duration
	// Concurrency is the number of recipients served at once (default 4).
	Concurrency int
}

func DefaultScheduledReporterConfig() ScheduledReporterConfig {
	return ScheduledReporterConfig{Interval: 24 * time.Hour, Concurrency: 4}
}

// ScheduledReporter sends the daily report to every recipient on a fixed interval.
// It keeps no execution record: each run is best effort, with no retry.
type ScheduledReporter struct {
	reports    *ReportService
	sender     DailyReportSender
	recipients RecipientSource
	config     ScheduledReporterConfig
	now        func() time.Time
	logger     *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduledReporter(reports *ReportService, sender DailyReportSender, recipients RecipientSource, config ScheduledReporterConfig, logger *log.Logger) *ScheduledReporter {
	def := DefaultScheduledReporterConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ScheduledReporter{
		reports:    reports,
		sender:     sender,
		recipients: recipients,
		config:     config,
		now:        time.Now,
		logger:     logger.WithComponent(log.ComponentScheduler),
	}
}

// WithClock replaces the time source, for tests.
func (r *ScheduledReporter) WithClock(now func() time.Time) *ScheduledReporter {
	r.now = now
	return r
}

// Start runs the reporter in the background. Returns an error if already running.
func (r *ScheduledReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("scheduled reporter is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.loop(ctx)

	r.logger.InfoContext(ctx, "Scheduled reporter started",
		"interval", r.config.Interval,
		"concurrency", r.config.Concurrency)
	return nil
}

// Stop signals the loop and waits for an in-flight run to finish or ctx to end.
func (r *ScheduledReporter) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.running = false
	r.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		r.logger.InfoContext(ctx, "Scheduled reporter stopped")
		return nil
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "Scheduled reporter stop timed out")
		return ctx.Err()
	}
}

func (r *ScheduledReporter) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run blocks until ctx is done, running the job every interval.
func (r *ScheduledReporter) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return r.Stop(stopCtx)
}

func (r *ScheduledReporter) loop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce builds and delivers the daily report to every current recipient.
// Per-recipient failures are logged and isolated.
func (r *ScheduledReporter) RunOnce(ctx context.Context) FanOutResult {
	recipients, err := r.recipients(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list report recipients", log.FieldError, err)
		return FanOutResult{}
	}
	now := r.now()

	res := FanOut(ctx, recipients, r.config.Concurrency, func(ctx context.Context, recipient string) error {
		view, err := r.reports.Daily(ctx, recipient, now)
		if err != nil {
			return fmt.Errorf("build daily report: %w", err)
		}
		return r.sender.SendDailyReport(ctx, recipient, view)
	}, r.logger)

	r.logger.InfoContext(ctx, "Scheduled report run complete",
		"attempted", res.Attempted,
		"succeeded", res.Succeeded)
	return res
}

// Recipients merges the static list with the stored donor list, dropping duplicates.
func Recipients(static []string, l *ledger.Ledger) RecipientSource {
	return func(ctx context.Context) ([]string, error) {
		seen := make(map[string]struct{})
		var out []string
		add := func(id string) {
			if _, ok := seen[id]; ok || id == "" {
				return
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		for _, id := range static {
			add(id)
		}
		if l == nil {
			return out, nil
		}
		donors, err := l.Donors(ctx)
		if err != nil {
			return nil, fmt.Errorf("list donors: %w", err)
		}
		for _, d := range donors {
			add(d.UserID)
		}
		return out, nil
	}
}
