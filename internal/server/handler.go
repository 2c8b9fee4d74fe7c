// Package server wires the HTTP delivery layer.
package server

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	gateway "github.com/vilaca/forge-gateway/internal/graphql"
)

// Executor runs GraphQL requests.
type Executor interface {
	Execute(ctx context.Context, req gateway.Request) *graphql.Result
}

// Handler handles HTTP requests for the gateway.
type Handler struct {
	executor Executor
	gatherer prometheus.Gatherer
	logger   *zap.SugaredLogger
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	Executor Executor
	Gatherer prometheus.Gatherer
	Logger   *zap.SugaredLogger
}

// NewHandler creates a new Handler with injected dependencies.
// Uses dependency injection for the Executor and Gatherer (IoC).
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		executor: cfg.Executor,
		gatherer: cfg.Gatherer,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/graphql", h.handleGraphQL)
	app.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// handleGraphQL executes a JSON-encoded GraphQL request.
// Execution errors are reported in the body with status 200.
func (h *Handler) handleGraphQL(c *fiber.Ctx) error {
	var req gateway.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		h.logger.Debugw("Malformed GraphQL request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse("malformed request body: " + err.Error()))
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse("query is required"))
	}

	result := h.executor.Execute(c.UserContext(), req)
	return c.JSON(result)
}

type responseError struct {
	Message string `json:"message"`
}

func errorResponse(message string) fiber.Map {
	return fiber.Map{"errors": []responseError{{Message: message}}}
}
