package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/domain"
)

// Targets holds the per-provider parameters used by aggregated queries.
// A provider without an entry contributes nothing.
type Targets struct {
	Issues       map[string]api.IssueParams
	Repositories map[string]api.RepositoryParams
}

// AggregationService fans a query out to every registered client and merges the results.
// A failing provider is logged and dropped; the aggregate never fails because of it.
type AggregationService struct {
	registry *api.Registry
	targets  Targets
	logger   *zap.SugaredLogger
	metrics  *api.Metrics
}

// NewAggregationService creates a new aggregation service.
// metrics may be nil.
func NewAggregationService(registry *api.Registry, targets Targets, logger *zap.SugaredLogger, metrics *api.Metrics) *AggregationService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AggregationService{
		registry: registry,
		targets:  targets,
		logger:   logger,
		metrics:  metrics,
	}
}

// AllIssues retrieves issues from all registered providers concurrently.
// Results are concatenated in registration order.
func (s *AggregationService) AllIssues(ctx context.Context, limit int) []domain.Issue {
	registrations := s.registry.GetAll()
	results := make([][]domain.Issue, len(registrations))

	var g errgroup.Group
	for i, reg := range registrations {
		params, ok := s.targets.Issues[reg.Name]
		if !ok {
			s.logger.Debugw("No issue target configured", "source", reg.Name)
			continue
		}
		params.Limit = limit

		g.Go(func() error {
			defer s.recoverProvider(reg.Name, api.OperationGetIssues)

			issues, err := reg.Client.GetIssues(ctx, params)
			if err != nil {
				s.fail(reg.Name, api.OperationGetIssues, err)
				return nil
			}
			results[i] = issues
			return nil
		})
	}
	_ = g.Wait()

	allIssues := []domain.Issue{}
	for _, issues := range results {
		allIssues = append(allIssues, issues...)
	}
	return allIssues
}

// AllRepositories retrieves repositories from all registered providers concurrently.
// Results are concatenated in registration order.
func (s *AggregationService) AllRepositories(ctx context.Context, limit int) []domain.Repository {
	registrations := s.registry.GetAll()
	results := make([][]domain.Repository, len(registrations))

	var g errgroup.Group
	for i, reg := range registrations {
		params, ok := s.targets.Repositories[reg.Name]
		if !ok {
			s.logger.Debugw("No repository target configured", "source", reg.Name)
			continue
		}
		params.Limit = limit

		g.Go(func() error {
			defer s.recoverProvider(reg.Name, api.OperationGetRepositories)

			repos, err := reg.Client.GetRepositories(ctx, params)
			if err != nil {
				s.fail(reg.Name, api.OperationGetRepositories, err)
				return nil
			}
			results[i] = repos
			return nil
		})
	}
	_ = g.Wait()

	allRepos := []domain.Repository{}
	for _, repos := range results {
		allRepos = append(allRepos, repos...)
	}
	return allRepos
}

// recoverProvider turns a panicking client into an ordinary provider failure,
// leaving its result slot empty.
func (s *AggregationService) recoverProvider(source, operation string) {
	if r := recover(); r != nil {
		s.fail(source, operation, fmt.Errorf("panic: %v", r))
	}
}

func (s *AggregationService) fail(source, operation string, err error) {
	s.logger.Errorw("Provider failed during aggregation",
		"source", source,
		"operation", operation,
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.ObserveAggregationFailure(source, operation)
	}
}
