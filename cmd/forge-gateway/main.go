package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/api/github"
	"github.com/vilaca/forge-gateway/internal/api/gitlab"
	"github.com/vilaca/forge-gateway/internal/config"
	gateway "github.com/vilaca/forge-gateway/internal/graphql"
	"github.com/vilaca/forge-gateway/internal/server"
	"github.com/vilaca/forge-gateway/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	Execute()
}

// buildSchema wires the providers, the aggregation service and the schema.
// This is the composition root for everything behind the HTTP layer.
func buildSchema(cfg *config.Config, log *zap.SugaredLogger, reg prometheus.Registerer) (*gateway.Schema, error) {
	httpClient := &http.Client{
		Timeout: cfg.HTTP.RequestTimeout,
	}
	metrics := api.NewMetrics(reg)
	registry := api.NewRegistry()

	if !cfg.GitHub.HasToken() {
		log.Warnw("GitHub token not configured, upstream calls will be unauthenticated", "env", "GITHUB_TOKEN")
	}
	githubClient := github.NewClient(api.ClientConfig{
		BaseURL: cfg.GitHub.URL,
		Token:   cfg.GitHub.Token,
	}, httpClient)
	registry.Register(githubClient.Name(), api.NewInstrumentedClient(githubClient, metrics))

	if !cfg.GitLab.HasToken() {
		log.Warnw("GitLab token not configured, upstream calls will be unauthenticated", "env", "GITLAB_TOKEN")
	}
	gitlabClient, err := gitlab.NewClient(api.ClientConfig{
		BaseURL: cfg.GitLab.URL,
		Token:   cfg.GitLab.Token,
	}, httpClient)
	if err != nil {
		return nil, err
	}
	registry.Register(gitlabClient.Name(), api.NewInstrumentedClient(gitlabClient, metrics))

	targets, err := config.LoadTargets(cfg.Aggregation.TargetsFile)
	if err != nil {
		return nil, err
	}
	aggregator := service.NewAggregationService(registry, service.Targets{
		Issues:       targets.IssueParams(),
		Repositories: targets.RepositoryParams(),
	}, log, metrics)

	return gateway.NewSchema(registry, aggregator, log)
}

// buildServer wires up all dependencies and returns the configured Fiber app.
// Follows SOLID principles and IoC (Inversion of Control).
func buildServer(cfg *config.Config, log *zap.SugaredLogger) (*fiber.App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	schema, err := buildSchema(cfg, log, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	handler := server.NewHandler(server.HandlerConfig{
		Executor: schema,
		Gatherer: reg,
		Logger:   log,
	})

	// GitHub issue creation makes two sequential upstream calls.
	return server.New(handler, log, 3*cfg.HTTP.RequestTimeout+time.Second), nil
}
