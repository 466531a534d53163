package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"moneytrack/internal/cli"
	"moneytrack/internal/config"
	"moneytrack/internal/log"
)

// sweepInterval drives the rate limiter and owner cache cleanup.
const sweepInterval = time.Minute

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "moneytrack",
	Short:         "MoneyTrack expense tracking chat bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		cli.LoadEnvFile()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat bot, the scheduled reporter and the housekeeping loops",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Send the daily report to every recipient once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return reportOnce(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations of the configured backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, cfg, err := setup()
		if err != nil {
			return err
		}
		if err := cli.Migrate(cmd.Context(), cfg, logger); err != nil {
			return err
		}
		logger.Info("Migrations applied", "backend", cfg.DataBackend)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")
	rootCmd.AddCommand(serveCmd, reportCmd, migrateCmd)
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*log.Logger, *config.Config, error) {
	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger := cli.SetupLogger(level)
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	return logger, cfg, nil
}

func serve(ctx context.Context) error {
	logger, cfg, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("Starting moneytrack",
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone,
		"report_interval", cfg.ReportInterval.String(),
		"amqp", cfg.AMQPEnabled())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.transport.Run(gctx, a.bot) })
	g.Go(func() error { return a.reporter.Run(gctx) })
	g.Go(func() error { return a.limiter.Run(gctx, sweepInterval) })
	g.Go(func() error { return a.caches.Run(gctx, sweepInterval) })

	err = g.Wait()
	logger.Info("Shutdown complete")
	return err
}

func reportOnce(ctx context.Context) error {
	logger, cfg, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res := a.reporter.RunOnce(ctx)
	fmt.Printf("daily report delivered to %d/%d recipients\n", res.Succeeded, res.Attempted)
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d recipients failed", len(res.Failed))
	}
	return nil
}
