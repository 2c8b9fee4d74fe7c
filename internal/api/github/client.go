package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/domain"
)

// DefaultURL is the public GitHub GraphQL endpoint.
const DefaultURL = "https://api.github.com/graphql"

const issuesQuery = `query($owner: String!, $repo: String!, $limit: Int!) {
  repository(owner: $owner, name: $repo) {
    issues(first: $limit) {
      nodes { id number title body state createdAt updatedAt author { login } }
    }
  }
}`

const repositoriesQuery = `query($owner: String!, $limit: Int!) {
  repositoryOwner(login: $owner) {
    repositories(first: $limit) {
      nodes { id name description url stargazerCount forkCount createdAt updatedAt }
    }
  }
}`

const repositoryIDQuery = `query($owner: String!, $repo: String!) {
  repository(owner: $owner, name: $repo) { id }
}`

const createIssueMutation = `mutation($input: CreateIssueInput!) {
  createIssue(input: $input) {
    issue { id number title body state createdAt updatedAt author { login } }
  }
}`

// Client implements api.Client for the GitHub GraphQL API.
// Every operation, typed or raw, goes through the same GraphQL endpoint.
// Follows Single Responsibility Principle - only handles GitHub API communication.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a new GitHub client.
// The token is attached as a bearer token by an oauth2 transport layered over httpClient.
func NewClient(config api.ClientConfig, httpClient *http.Client) *Client {
	apiURL := config.BaseURL
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})

	authClient := oauth2.NewClient(ctx, src)
	authClient.Timeout = httpClient.Timeout

	return &Client{
		apiURL:     apiURL,
		httpClient: authClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return domain.PlatformGitHub
}

// GetIssues retrieves the first page of issues of owner/repo.
func (c *Client) GetIssues(ctx context.Context, params api.IssueParams) ([]domain.Issue, error) {
	var response struct {
		Repository *struct {
			Issues struct {
				Nodes []githubIssue `json:"nodes"`
			} `json:"issues"`
		} `json:"repository"`
	}

	variables := map[string]any{
		"owner": githubv4.String(params.Owner),
		"repo":  githubv4.String(params.Repo),
		"limit": githubv4.Int(params.PageSize()),
	}
	if err := c.run(ctx, issuesQuery, variables, &response); err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}
	if response.Repository == nil {
		return nil, fmt.Errorf("failed to get issues: repository %s/%s missing from response", params.Owner, params.Repo)
	}

	issues := make([]domain.Issue, len(response.Repository.Issues.Nodes))
	for i, node := range response.Repository.Issues.Nodes {
		issues[i] = c.convertIssue(node)
	}
	return issues, nil
}

// GetRepositories retrieves the first page of repositories owned by a user or organization.
func (c *Client) GetRepositories(ctx context.Context, params api.RepositoryParams) ([]domain.Repository, error) {
	var response struct {
		RepositoryOwner *struct {
			Repositories struct {
				Nodes []githubRepository `json:"nodes"`
			} `json:"repositories"`
		} `json:"repositoryOwner"`
	}

	variables := map[string]any{
		"owner": githubv4.String(params.Owner),
		"limit": githubv4.Int(params.PageSize()),
	}
	if err := c.run(ctx, repositoriesQuery, variables, &response); err != nil {
		return nil, fmt.Errorf("failed to get repositories: %w", err)
	}
	if response.RepositoryOwner == nil {
		return nil, fmt.Errorf("failed to get repositories: owner %s missing from response", params.Owner)
	}

	repos := make([]domain.Repository, len(response.RepositoryOwner.Repositories.Nodes))
	for i, node := range response.RepositoryOwner.Repositories.Nodes {
		repos[i] = c.convertRepository(node)
	}
	return repos, nil
}

// CreateIssue resolves owner/repo to its node ID, then creates the issue.
// The two calls are not atomic; a repository renamed in between surfaces as
// an upstream error from the mutation.
func (c *Client) CreateIssue(ctx context.Context, params api.CreateIssueParams) (*domain.Issue, error) {
	repositoryID, err := c.getRepositoryID(ctx, params.Owner, params.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	var response struct {
		CreateIssue *struct {
			Issue githubIssue `json:"issue"`
		} `json:"createIssue"`
	}

	input := githubv4.CreateIssueInput{
		RepositoryID: repositoryID,
		Title:        githubv4.String(params.Title),
		Body:         githubv4.NewString(githubv4.String(params.Body)),
	}
	if err := c.run(ctx, createIssueMutation, map[string]any{"input": input}, &response); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	if response.CreateIssue == nil {
		return nil, fmt.Errorf("failed to create issue: createIssue missing from response")
	}

	issue := c.convertIssue(response.CreateIssue.Issue)
	return &issue, nil
}

// ExecuteQuery passes a raw GraphQL document through and returns the data member as-is.
func (c *Client) ExecuteQuery(ctx context.Context, query string, variables map[string]any) (any, error) {
	var data any
	if err := c.run(ctx, query, variables, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) getRepositoryID(ctx context.Context, owner, repo string) (githubv4.ID, error) {
	var response struct {
		Repository *struct {
			ID githubv4.ID `json:"id"`
		} `json:"repository"`
	}

	variables := map[string]any{
		"owner": githubv4.String(owner),
		"repo":  githubv4.String(repo),
	}
	if err := c.run(ctx, repositoryIDQuery, variables, &response); err != nil {
		return nil, fmt.Errorf("failed to resolve repository %s/%s: %w", owner, repo, err)
	}
	if response.Repository == nil {
		return nil, fmt.Errorf("failed to resolve repository %s/%s: missing from response", owner, repo)
	}
	return response.Repository.ID, nil
}

// run posts a GraphQL request and decodes its data member into result.
// Any non-null errors member, even an empty list, is returned verbatim inside
// an api.UpstreamError.
func (c *Client) run(ctx context.Context, query string, variables map[string]any, result any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewTransportError(domain.PlatformGitHub, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.NewTransportError(domain.PlatformGitHub, err)
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return api.NewUpstreamError(domain.PlatformGitHub, string(raw))
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if hasErrors(envelope.Errors) {
		return api.NewUpstreamError(domain.PlatformGitHub, string(envelope.Errors))
	}
	if resp.StatusCode != http.StatusOK {
		return api.NewUpstreamError(domain.PlatformGitHub, string(raw))
	}

	if result == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func hasErrors(errs json.RawMessage) bool {
	trimmed := bytes.TrimSpace(errs)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// convertIssue converts a GitHub issue node to the domain model.
func (c *Client) convertIssue(node githubIssue) domain.Issue {
	issue := domain.Issue{
		ID:        nodeID(node.ID),
		Number:    node.Number,
		Title:     node.Title,
		Body:      node.Body,
		State:     string(node.State),
		CreatedAt: node.CreatedAt.Time,
		UpdatedAt: node.UpdatedAt.Time,
		Source:    c.Name(),
	}
	if node.Author != nil {
		issue.Author = node.Author.Login
	}
	return issue
}

// convertRepository converts a GitHub repository node to the domain model.
func (c *Client) convertRepository(node githubRepository) domain.Repository {
	repo := domain.Repository{
		ID:        nodeID(node.ID),
		Name:      node.Name,
		URL:       node.URL,
		Stars:     node.StargazerCount,
		Forks:     node.ForkCount,
		CreatedAt: node.CreatedAt.Time,
		UpdatedAt: node.UpdatedAt.Time,
		Source:    c.Name(),
	}
	if node.Description != nil {
		repo.Description = *node.Description
	}
	return repo
}

func nodeID(id githubv4.ID) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// GitHub GraphQL wire types
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type githubActor struct {
	Login string `json:"login"`
}

type githubIssue struct {
	ID        githubv4.ID         `json:"id"`
	Number    int                 `json:"number"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	State     githubv4.IssueState `json:"state"`
	CreatedAt githubv4.DateTime   `json:"createdAt"`
	UpdatedAt githubv4.DateTime   `json:"updatedAt"`
	Author    *githubActor        `json:"author"`
}

type githubRepository struct {
	ID             githubv4.ID       `json:"id"`
	Name           string            `json:"name"`
	Description    *string           `json:"description"`
	URL            string            `json:"url"`
	StargazerCount int               `json:"stargazerCount"`
	ForkCount      int               `json:"forkCount"`
	CreatedAt      githubv4.DateTime `json:"createdAt"`
	UpdatedAt      githubv4.DateTime `json:"updatedAt"`
}
