package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-grid/internal/config"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/metrics"
	"github.com/rxtech-lab/argo-grid/internal/runner"
	"github.com/rxtech-lab/argo-grid/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runAction loads the config, wires the engine to its venue and feed and
// trades until interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	venue, err := config.NewVenue(cfg, log)
	if err != nil {
		return err
	}

	quotes, err := config.NewFeed(cfg)
	if err != nil {
		return err
	}

	engine, err := grid.NewEngine(cfg.Symbol, cfg.Engine, venue, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.NewRunner(engine, venue, quotes, log.Named("runner"))

	if addr := cmd.String("metrics-addr"); addr != "" {
		recorder := metrics.NewRecorder(cfg.Symbol)
		if err := serveMetrics(ctx, addr, recorder, log); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}

		r.WithRecorder(recorder)
	}

	log.Info("Starting grid trader",
		zap.String("version", version.GetVersion()),
		zap.String("symbol", cfg.Symbol),
		zap.String("gateway", string(cfg.Gateway.Type)),
		zap.String("feed", string(cfg.Feed.Type)),
		zap.String("run_id", r.RunID()),
	)

	return r.Run(ctx)
}

// schemaAction prints the config JSON schema or writes it to --output.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	output := cmd.String("output")
	if output == "" {
		_, err = fmt.Fprintln(cmd.Root().Writer, schema)

		return err
	}

	if err := os.WriteFile(output, []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return err
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "grid-trader",
		Usage: "Run a two-sided grid trading engine",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Trade with the given configuration until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Log level (debug, info, warn, error)",
						Value: "info",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the configuration JSON schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to this file instead of stdout",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "version",
				Usage:  "Print the binary version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
