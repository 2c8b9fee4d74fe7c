// Package graphql exposes the providers and the aggregation service as a GraphQL schema.
package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/domain"
)

// Aggregator merges results from every registered provider.
type Aggregator interface {
	AllIssues(ctx context.Context, limit int) []domain.Issue
	AllRepositories(ctx context.Context, limit int) []domain.Repository
}

// Request is a GraphQL request as received over HTTP.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Schema resolves queries against the registry and the aggregator.
type Schema struct {
	schema     graphql.Schema
	registry   *api.Registry
	aggregator Aggregator
	logger     *zap.SugaredLogger
}

// NewSchema builds the schema.
func NewSchema(registry *api.Registry, aggregator Aggregator, logger *zap.SugaredLogger) (*Schema, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Schema{
		registry:   registry,
		aggregator: aggregator,
		logger:     logger,
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"githubIssues": &graphql.Field{
				Type: graphql.NewList(issueType),
				Args: graphql.FieldConfigArgument{
					"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"repo":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveGithubIssues,
			},
			"githubRepositories": &graphql.Field{
				Type: graphql.NewList(repositoryType),
				Args: graphql.FieldConfigArgument{
					"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveGithubRepositories,
			},
			"gitlabIssues": &graphql.Field{
				Type: graphql.NewList(issueType),
				Args: graphql.FieldConfigArgument{
					"projectId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveGitlabIssues,
			},
			"gitlabRepositories": &graphql.Field{
				Type: graphql.NewList(repositoryType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.ID},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveGitlabRepositories,
			},
			"allIssues": &graphql.Field{
				Type: graphql.NewList(issueType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: api.DefaultLimit},
				},
				Resolve: s.resolveAllIssues,
			},
			"allRepositories": &graphql.Field{
				Type: graphql.NewList(repositoryType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: api.DefaultLimit},
				},
				Resolve: s.resolveAllRepositories,
			},
			"executeQuery": &graphql.Field{
				Type: jsonScalar,
				Args: graphql.FieldConfigArgument{
					"service":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"query":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"variables": &graphql.ArgumentConfig{Type: jsonScalar},
				},
				Resolve: s.resolveExecuteQuery,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createGithubIssue": &graphql.Field{
				Type: issueType,
				Args: graphql.FieldConfigArgument{
					"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"repo":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(issueInputType)},
				},
				Resolve: s.resolveCreateGithubIssue,
			},
			"createGitlabIssue": &graphql.Field{
				Type: issueType,
				Args: graphql.FieldConfigArgument{
					"projectId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(issueInputType)},
				},
				Resolve: s.resolveCreateGitlabIssue,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	s.schema = schema

	return s, nil
}

// Execute runs a request against the schema.
// Resolver failures are reported in the result's errors, never as a Go error.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	if result.HasErrors() {
		s.logger.Debugw("GraphQL request returned errors",
			"operation", req.OperationName,
			"errors", result.Errors,
		)
	}
	return result
}
