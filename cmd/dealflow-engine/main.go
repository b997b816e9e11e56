// Package main provides the dealflow workflow engine worker.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/brokerops/dealflow/pkg/capabilities/logging"
	"github.com/brokerops/dealflow/pkg/cmd"
	"github.com/brokerops/dealflow/pkg/engine"
	"github.com/brokerops/dealflow/pkg/log"
	"github.com/brokerops/dealflow/pkg/persistence"
)

const defaultCallTimeout = 10 * time.Second

func main() {
	logger := log.WithModule("engine")

	command := &cli.Command{
		Name:                  "dealflow-engine",
		Usage:                 "Run the deal-status workflow automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine-id",
				Usage:   "Engine instance ID (auto-generated when unset)",
				Sources: cli.EnvVars("ENGINE_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, memory)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.DurationFlag{
				Name:    "call-timeout",
				Usage:   "Bound on each external capability call",
				Value:   defaultCallTimeout,
				Sources: cli.EnvVars("CALL_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			engineID := command.String("engine-id")
			if engineID == "" {
				engineID = uuid.NewString()
			}

			logger := logger.With("engine_id", engineID)
			logger.InfoContext(ctx, "Initializing Dealflow engine")

			store := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := store.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			// Capability integrations are deployment concerns; the stock
			// binary runs with logging-only collaborators.
			caps := logging.NewCapabilities(logger)
			registry := cmd.NewRegistry(logger, cmd.Capabilities{
				Tasks:     caps.Tasks,
				Notifier:  caps.Notifier,
				Deals:     caps.Deals,
				Brokers:   caps.Brokers,
				Directory: caps.Directory,
			}, command.Duration("call-timeout"))

			eng := engine.New(
				logger,
				store.RuleRepository(),
				registry,
				persistence.NewActivityLogger(store.ExecutionLogRepository()),
			)

			manager := NewEngineManager(logger, eng, eventBus)

			return manager.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run dealflow-engine", "error", err)
		os.Exit(1)
	}
}
