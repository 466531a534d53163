package main

import (
	"context"
	"errors"
	"os"

	"moneytrack/internal/cli"
	"moneytrack/internal/log"
	"moneytrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting moneytrack-worker")

	if err := run(logger); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required for the sync worker")
	}
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required for the sync worker")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	l, closeStore, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sheetsClient, err := cli.OpenSheets(ctx, cfg, logger)
	if err != nil {
		return err
	}

	amqpClient, err := cli.OpenAMQP(cfg, logger)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	return worker.NewSyncWorker(l, sheetsClient, logger).Run(ctx, amqpClient)
}
