package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	gl "github.com/xanzy/go-gitlab"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/domain"
)

// DefaultURL is the public GitLab instance.
const DefaultURL = "https://gitlab.com"

// Client implements api.Client for the GitLab REST API (v4).
type Client struct {
	client *gl.Client
}

// NewClient creates a new GitLab client authenticating with a bearer token.
// Retries are disabled; every call is a single upstream request.
// Uses dependency injection for httpClient (IoC).
func NewClient(config api.ClientConfig, httpClient *http.Client) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultURL
	}

	options := []gl.ClientOptionFunc{
		gl.WithBaseURL(baseURL),
		gl.WithCustomRetryMax(0),
	}
	if httpClient != nil {
		options = append(options, gl.WithHTTPClient(httpClient))
	}

	client, err := gl.NewOAuthClient(config.Token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &Client{client: client}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return domain.PlatformGitLab
}

// GetIssues retrieves the first page of issues of a project.
func (c *Client) GetIssues(ctx context.Context, params api.IssueParams) ([]domain.Issue, error) {
	opts := &gl.ListProjectIssuesOptions{
		ListOptions: gl.ListOptions{PerPage: params.PageSize()},
	}

	path := fmt.Sprintf("projects/%s/issues", gl.PathEscape(params.ProjectID))
	var glIssues []*gl.Issue
	if err := c.list(ctx, path, opts, &glIssues); err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}

	issues := make([]domain.Issue, len(glIssues))
	for i, gli := range glIssues {
		issues[i] = c.convertIssue(gli)
	}
	return issues, nil
}

// GetRepositories retrieves the first page of projects of a user, or of every
// project visible to the token when no user is given.
func (c *Client) GetRepositories(ctx context.Context, params api.RepositoryParams) ([]domain.Repository, error) {
	opts := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: params.PageSize()},
	}

	path := "projects"
	if params.UserID != "" {
		path = fmt.Sprintf("users/%s/projects", gl.PathEscape(params.UserID))
	}

	var glProjects []*gl.Project
	if err := c.list(ctx, path, opts, &glProjects); err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	repos := make([]domain.Repository, len(glProjects))
	for i, glp := range glProjects {
		repos[i] = c.convertProject(glp)
	}
	return repos, nil
}

// CreateIssue creates an issue in a project.
func (c *Client) CreateIssue(ctx context.Context, params api.CreateIssueParams) (*domain.Issue, error) {
	opts := &gl.CreateIssueOptions{
		Title:       gl.Ptr(params.Title),
		Description: gl.Ptr(params.Body),
	}

	path := fmt.Sprintf("projects/%s/issues", gl.PathEscape(params.ProjectID))
	raw, err := c.do(ctx, http.MethodPost, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("failed to create issue: %w", api.NewUpstreamError(domain.PlatformGitLab, string(raw)))
	}
	if _, ok := fields["error"]; ok {
		return nil, fmt.Errorf("failed to create issue: %w", api.NewUpstreamError(domain.PlatformGitLab, string(raw)))
	}

	gli := new(gl.Issue)
	if err := decode(raw, gli); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	issue := c.convertIssue(gli)
	return &issue, nil
}

// ExecuteQuery maps a raw query onto one of the typed operations by looking for
// the operation name in the query text. GitLab is served over REST here, so
// there is no native query language to pass through.
func (c *Client) ExecuteQuery(ctx context.Context, query string, variables map[string]any) (any, error) {
	vars, err := decodeVariables(variables)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(query, api.OperationGetIssues):
		return c.GetIssues(ctx, api.IssueParams{
			ProjectID: string(vars.ProjectID),
			Limit:     vars.Limit,
		})
	case strings.Contains(query, api.OperationGetRepositories):
		return c.GetRepositories(ctx, api.RepositoryParams{
			UserID: string(vars.UserID),
			Limit:  vars.Limit,
		})
	case strings.Contains(query, api.OperationCreateIssue):
		return c.CreateIssue(ctx, api.CreateIssueParams{
			ProjectID: string(vars.ProjectID),
			Title:     vars.Title,
			Body:      vars.body(),
		})
	}

	return nil, fmt.Errorf("%w for GitLab: %s", api.ErrUnsupportedQuery, query)
}

// upstreamError converts go-gitlab errors, keeping the raw response body when there is one.
func (c *Client) upstreamError(err error) error {
	var errResp *gl.ErrorResponse
	if errors.As(err, &errResp) {
		return api.NewUpstreamError(domain.PlatformGitLab, string(errResp.Body))
	}
	return api.NewTransportError(domain.PlatformGitLab, err)
}

// do sends a request through go-gitlab and returns the raw 2xx body.
// Non-2xx responses come back as go-gitlab errors carrying the body.
func (c *Client) do(ctx context.Context, method, path string, opt any) (json.RawMessage, error) {
	req, err := c.client.NewRequest(method, path, opt, []gl.RequestOptionFunc{gl.WithContext(ctx)})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var body bytes.Buffer
	if _, err := c.client.Do(req, &body); err != nil {
		return nil, c.upstreamError(err)
	}
	return body.Bytes(), nil
}

// list fetches a collection into result. Anything other than a JSON array is
// an error payload and is returned verbatim.
func (c *Client) list(ctx context.Context, path string, opt, result any) error {
	raw, err := c.do(ctx, http.MethodGet, path, opt)
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return api.NewUpstreamError(domain.PlatformGitLab, string(raw))
	}
	return decode(trimmed, result)
}

// decode unmarshals a GitLab payload. go-gitlab's custom unmarshalers panic on
// some malformed shapes, such as an issue without an id.
func decode(data []byte, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode response: %v", r)
		}
	}()

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// convertIssue converts a GitLab issue to the domain model.
func (c *Client) convertIssue(gli *gl.Issue) domain.Issue {
	issue := domain.Issue{
		ID:        strconv.Itoa(gli.ID),
		Number:    gli.IID,
		Title:     gli.Title,
		Body:      gli.Description,
		State:     gli.State,
		CreatedAt: timeValue(gli.CreatedAt),
		UpdatedAt: timeValue(gli.UpdatedAt),
		Source:    c.Name(),
	}
	if gli.Author != nil {
		issue.Author = gli.Author.Username
	}
	return issue
}

// convertProject converts a GitLab project to the domain model.
func (c *Client) convertProject(glp *gl.Project) domain.Repository {
	return domain.Repository{
		ID:          strconv.Itoa(glp.ID),
		Name:        glp.Name,
		Description: glp.Description,
		URL:         glp.WebURL,
		Stars:       glp.StarCount,
		Forks:       glp.ForksCount,
		CreatedAt:   timeValue(glp.CreatedAt),
		UpdatedAt:   timeValue(glp.LastActivityAt),
		Source:      c.Name(),
	}
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// queryVariables are the variables ExecuteQuery understands.
// Description is the GitLab field name; body is accepted as well.
type queryVariables struct {
	ProjectID   flexString `json:"projectId"`
	UserID      flexString `json:"userId"`
	Limit       int        `json:"limit"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body"`
}

func (v queryVariables) body() string {
	if v.Description != "" {
		return v.Description
	}
	return v.Body
}

func decodeVariables(variables map[string]any) (queryVariables, error) {
	var vars queryVariables
	if len(variables) == 0 {
		return vars, nil
	}

	data, err := json.Marshal(variables)
	if err != nil {
		return vars, fmt.Errorf("failed to encode variables: %w", err)
	}
	if err := json.Unmarshal(data, &vars); err != nil {
		return vars, fmt.Errorf("invalid variables: %w", err)
	}
	return vars, nil
}

// flexString accepts both JSON strings and numbers, since GitLab IDs are
// numeric but also addressable by path.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}
