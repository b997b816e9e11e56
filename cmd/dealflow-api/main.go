package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"

	"github.com/brokerops/dealflow/pkg/cmd"
	"github.com/brokerops/dealflow/pkg/log"
	"github.com/brokerops/dealflow/pkg/ratelimiter"
)

const defaultPort = 9080

const (
	rateLimitAttempts = 30
	rateLimitWindow   = time.Minute
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "dealflow-api",
		Usage:                 "Create and manage deal workflow rules",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the shared rate limiter (in-memory when unset)",
				Sources: cli.EnvVars("REDIS_URL"),
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

			logger.InfoContext(ctx, "Initializing Dealflow API")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			limiter, err := newLimiter(command.String("redis-url"))
			if err != nil {
				return err
			}

			api := NewAPI(logger, persistence, limiter)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run dealflow-api", "error", err)
		os.Exit(1)
	}
}

func newLimiter(redisURL string) (ratelimiter.Limiter, error) {
	config := ratelimiter.Config{Limit: rateLimitAttempts, Window: rateLimitWindow}

	if redisURL == "" {
		return ratelimiter.NewMemory(config), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	return ratelimiter.NewRedis(redis.NewClient(opts), config), nil
}
