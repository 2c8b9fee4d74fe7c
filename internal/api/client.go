package api

import (
	"context"

	"github.com/vilaca/forge-gateway/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mocks/client.gen.go -package=mocks

// DefaultLimit is the page size used when a caller does not ask for one.
const DefaultLimit = 10

// Client defines the interface every upstream provider adapter implements.
// Results are normalized to domain models and stamped with Name() as their source.
type Client interface {
	// Name returns the provider name stamped on every record the client produces.
	Name() string

	// GetIssues returns one page of issues for the addressed project.
	GetIssues(ctx context.Context, params IssueParams) ([]domain.Issue, error)

	// GetRepositories returns one page of repositories for the addressed owner.
	GetRepositories(ctx context.Context, params RepositoryParams) ([]domain.Repository, error)

	// CreateIssue creates exactly one issue and returns it normalized.
	CreateIssue(ctx context.Context, params CreateIssueParams) (*domain.Issue, error)

	// ExecuteQuery runs a provider-native query and returns the raw, unnormalized result.
	ExecuteQuery(ctx context.Context, query string, variables map[string]any) (any, error)
}

// IssueParams addresses a project's issues.
// GitHub reads Owner and Repo, GitLab reads ProjectID.
type IssueParams struct {
	Owner     string
	Repo      string
	ProjectID string
	Limit     int
}

// RepositoryParams addresses a set of repositories.
// GitHub reads Owner. GitLab reads UserID and falls back to the token's
// visible projects when it is empty.
type RepositoryParams struct {
	Owner  string
	UserID string
	Limit  int
}

// CreateIssueParams describes an issue to create.
type CreateIssueParams struct {
	Owner     string
	Repo      string
	ProjectID string
	Title     string
	Body      string
}

// PageSize returns the requested limit or DefaultLimit.
func (p IssueParams) PageSize() int {
	return pageSize(p.Limit)
}

// PageSize returns the requested limit or DefaultLimit.
func (p RepositoryParams) PageSize() int {
	return pageSize(p.Limit)
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	Token   string
}
