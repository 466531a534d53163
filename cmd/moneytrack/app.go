package main

import (
	"context"
	"fmt"

	"moneytrack/internal/bot"
	"moneytrack/internal/cache"
	"moneytrack/internal/cli"
	"moneytrack/internal/config"
	"moneytrack/internal/log"
	"moneytrack/internal/ratelimit"
	"moneytrack/internal/services"
	"moneytrack/internal/sheets/xlsx"
	"moneytrack/internal/telegram"
)

// app holds the wired components of the serve and report commands.
type app struct {
	transport *telegram.Transport
	bot       *bot.Bot
	reporter  *services.ScheduledReporter
	limiter   *ratelimit.Limiter
	caches    *cache.Manager
	closers   []func() error
	logger    *log.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	a := &app{logger: logger}

	l, closeStore, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	var publisher services.Publisher
	amqpClient, err := cli.OpenAMQP(cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if amqpClient != nil {
		publisher = amqpClient
		a.closers = append(a.closers, amqpClient.Close)
	}

	transport, err := telegram.New(cfg.TelegramToken, telegram.DefaultPollTimeout, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init telegram: %w", err)
	}
	a.transport = transport

	loc := cfg.Location()
	reports := services.NewReportService(l, loc)
	a.limiter = ratelimit.NewLimiter(ratelimit.Config{PerMinute: cfg.RateLimitPerMinute})
	a.bot = bot.New(bot.Config{
		Ledger:               l,
		Expenses:             services.NewExpenseService(l, publisher, loc, logger),
		Deletion:             services.NewDeletionService(l, loc, logger),
		Reports:              reports,
		Export:               services.NewExportService(l, xlsx.New(loc), loc, logger),
		Deliverer:            transport,
		Locks:                services.NewUserLocks(),
		Limiter:              a.limiter,
		OwnerID:              cfg.OwnerID,
		BroadcastConcurrency: cfg.ReportConcurrency,
		Logger:               logger,
	})

	a.reporter = services.NewScheduledReporter(reports, a.bot,
		services.Recipients(cfg.ReportRecipients, l),
		services.ScheduledReporterConfig{Interval: cfg.ReportInterval, Concurrency: cfg.ReportConcurrency},
		logger)

	a.caches = cache.NewManager(logger)
	a.caches.Register(a.bot.OwnerCache())
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("Failed to release resource", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}
}
