// Package main provides the dealflow administrative API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/brokerops/dealflow/pkg/persistence"
	"github.com/brokerops/dealflow/pkg/ratelimiter"
	"github.com/brokerops/dealflow/pkg/services"
	"github.com/brokerops/dealflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	limiter     ratelimiter.Limiter
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence, limiter ratelimiter.Limiter) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		limiter:     limiter,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	ruleService := services.NewRules(a.persistence.RuleRepository())
	handlers := web.NewAPIHandlers(ruleService, a.persistence.ExecutionLogRepository(), a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))
	app.Use(ratelimiter.Middleware(a.limiter))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Dealflow API")
	})

	r := app.Group("/rules")
	r.Get("/", handlers.GetRules)
	r.Post("/", handlers.CreateRule)
	r.Get("/:id", handlers.GetRule)
	r.Patch("/:id", handlers.UpdateRule)
	r.Delete("/:id", handlers.DeleteRule)
	r.Post("/:id/activate", handlers.ActivateRule)
	r.Post("/:id/deactivate", handlers.DeactivateRule)

	app.Get("/deals/:dealId/activity", handlers.GetDealActivity)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
