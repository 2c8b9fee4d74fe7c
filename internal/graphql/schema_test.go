package graphql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/api/mocks"
	"github.com/vilaca/forge-gateway/internal/domain"
)

// fakeAggregator is a test double for Aggregator.
type fakeAggregator struct {
	issueLimit int
	repoLimit  int
	issues     []domain.Issue
	repos      []domain.Repository
}

func (f *fakeAggregator) AllIssues(ctx context.Context, limit int) []domain.Issue {
	f.issueLimit = limit
	return f.issues
}

func (f *fakeAggregator) AllRepositories(ctx context.Context, limit int) []domain.Repository {
	f.repoLimit = limit
	return f.repos
}

type testSchema struct {
	schema     *Schema
	github     *mocks.MockClient
	gitlab     *mocks.MockClient
	aggregator *fakeAggregator
}

func newTestSchema(t *testing.T, providers ...string) *testSchema {
	t.Helper()
	ctrl := gomock.NewController(t)

	ts := &testSchema{
		github:     mocks.NewMockClient(ctrl),
		gitlab:     mocks.NewMockClient(ctrl),
		aggregator: &fakeAggregator{},
	}

	registry := api.NewRegistry()
	for _, name := range providers {
		switch name {
		case domain.PlatformGitHub:
			registry.Register(name, ts.github)
		case domain.PlatformGitLab:
			registry.Register(name, ts.gitlab)
		}
	}

	schema, err := NewSchema(registry, ts.aggregator, nil)
	require.NoError(t, err)
	ts.schema = schema
	return ts
}

// execute runs a request and decodes its data member into out.
func (ts *testSchema) execute(t *testing.T, req Request, out any) []string {
	t.Helper()
	result := ts.schema.Execute(context.Background(), req)

	messages := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		messages[i] = e.Message
	}

	if out != nil && result.Data != nil {
		data, err := json.Marshal(result.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return messages
}

var (
	created = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	updated = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
)

type issueJSON struct {
	ID        string  `json:"id"`
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      *string `json:"body"`
	State     string  `json:"state"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Author    *string `json:"author"`
	Source    string  `json:"source"`
}

const issueFields = "id number title body state createdAt updatedAt author source"

// TestGithubIssues tests the provider-specific issues query.
func TestGithubIssues(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub, domain.PlatformGitLab)
	ts.github.EXPECT().
		GetIssues(gomock.Any(), api.IssueParams{Owner: "octo", Repo: "hello", Limit: 2}).
		Return([]domain.Issue{{
			ID: "I_1", Number: 7, Title: "Bug", State: "OPEN",
			CreatedAt: created, UpdatedAt: updated, Author: "alice", Source: "github",
		}}, nil)

	var out struct {
		GithubIssues []issueJSON `json:"githubIssues"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query: `{ githubIssues(owner: "octo", repo: "hello", limit: 2) { ` + issueFields + ` } }`,
	}, &out)

	// Assert
	require.Empty(t, errs)
	require.Len(t, out.GithubIssues, 1)

	issue := out.GithubIssues[0]
	assert.Equal(t, "I_1", issue.ID)
	assert.Equal(t, 7, issue.Number)
	assert.Nil(t, issue.Body, "empty body resolves to null")
	assert.Equal(t, "2024-01-01T10:00:00Z", issue.CreatedAt)
	assert.Equal(t, "2024-01-02T10:00:00Z", issue.UpdatedAt)
	require.NotNil(t, issue.Author)
	assert.Equal(t, "alice", *issue.Author)
	assert.Equal(t, "github", issue.Source)
}

// TestGitlabIssues_NumericProjectID tests that an integer project id reaches the adapter as a string.
func TestGitlabIssues_NumericProjectID(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub, domain.PlatformGitLab)
	ts.gitlab.EXPECT().
		GetIssues(gomock.Any(), api.IssueParams{ProjectID: "42", Limit: 5}).
		Return([]domain.Issue{{ID: "1000", Number: 1, Title: "a", State: "opened", Source: "gitlab"}}, nil)

	var out struct {
		GitlabIssues []issueJSON `json:"gitlabIssues"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query: `{ gitlabIssues(projectId: 42, limit: 5) { id number source } }`,
	}, &out)

	// Assert
	require.Empty(t, errs)
	require.Len(t, out.GitlabIssues, 1)
	assert.Equal(t, "1000", out.GitlabIssues[0].ID)
	assert.Equal(t, "gitlab", out.GitlabIssues[0].Source)
}

// TestRepositories tests both provider-specific repository queries.
func TestRepositories(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub, domain.PlatformGitLab)
	ts.github.EXPECT().
		GetRepositories(gomock.Any(), api.RepositoryParams{Owner: "octo"}).
		Return([]domain.Repository{{ID: "R_1", Name: "hello", URL: "https://github.com/octo/hello", Stars: 3, Source: "github"}}, nil)
	ts.gitlab.EXPECT().
		GetRepositories(gomock.Any(), api.RepositoryParams{UserID: "7", Limit: 1}).
		Return([]domain.Repository{{ID: "9", Name: "proj", Description: "desc", URL: "https://gitlab.com/p", Source: "gitlab"}}, nil)

	var out struct {
		GithubRepositories []map[string]any `json:"githubRepositories"`
		GitlabRepositories []map[string]any `json:"gitlabRepositories"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query: `{
			githubRepositories(owner: "octo") { id name description url stars source }
			gitlabRepositories(userId: "7", limit: 1) { id name description source }
		}`,
	}, &out)

	// Assert
	require.Empty(t, errs)
	require.Len(t, out.GithubRepositories, 1)
	assert.Equal(t, "R_1", out.GithubRepositories[0]["id"])
	assert.Nil(t, out.GithubRepositories[0]["description"])
	assert.Equal(t, float64(3), out.GithubRepositories[0]["stars"])

	require.Len(t, out.GitlabRepositories, 1)
	assert.Equal(t, "desc", out.GitlabRepositories[0]["description"])
	assert.Equal(t, "gitlab", out.GitlabRepositories[0]["source"])
}

// TestProviderError tests that a provider error is forwarded unmodified.
func TestProviderError(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub)
	upstreamErr := api.NewUpstreamError("github", `[{"message":"Bad credentials"}]`)
	ts.github.EXPECT().GetIssues(gomock.Any(), gomock.Any()).Return(nil, upstreamErr)

	// Act
	errs := ts.execute(t, Request{
		Query: `{ githubIssues(owner: "octo", repo: "hello") { id } }`,
	}, nil)

	// Assert
	require.Len(t, errs, 1)
	assert.Equal(t, upstreamErr.Error(), errs[0])
}

// TestUnregisteredProvider tests that a missing adapter yields the not-found error.
func TestUnregisteredProvider(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub)

	// Act
	errs := ts.execute(t, Request{
		Query: `{ gitlabIssues(projectId: "42") { id } }`,
	}, nil)

	// Assert
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], api.ErrServiceNotFound.Error())
	assert.Contains(t, errs[0], "gitlab")
}

// TestAllIssues_DefaultLimit tests that the aggregated query defaults its limit to 10.
func TestAllIssues_DefaultLimit(t *testing.T) {
	// Arrange
	ts := newTestSchema(t)
	ts.aggregator.issues = []domain.Issue{
		{ID: "a", Source: "github", CreatedAt: created, UpdatedAt: updated},
		{ID: "b", Source: "gitlab", CreatedAt: created, UpdatedAt: updated},
	}

	var out struct {
		AllIssues []issueJSON `json:"allIssues"`
	}

	// Act
	errs := ts.execute(t, Request{Query: `{ allIssues { id source } }`}, &out)

	// Assert
	require.Empty(t, errs)
	assert.Equal(t, 10, ts.aggregator.issueLimit)
	require.Len(t, out.AllIssues, 2)
	assert.Equal(t, "a", out.AllIssues[0].ID)
	assert.Equal(t, "gitlab", out.AllIssues[1].Source)
}

// TestAllRepositories_Limit tests that an explicit limit reaches the aggregator.
func TestAllRepositories_Limit(t *testing.T) {
	// Arrange
	ts := newTestSchema(t)
	ts.aggregator.repos = []domain.Repository{}

	var out struct {
		AllRepositories []map[string]any `json:"allRepositories"`
	}

	// Act
	errs := ts.execute(t, Request{Query: `{ allRepositories(limit: 3) { id } }`}, &out)

	// Assert
	require.Empty(t, errs)
	assert.Equal(t, 3, ts.aggregator.repoLimit)
	assert.Empty(t, out.AllRepositories)
}

// TestExecuteQuery_LiteralVariables tests raw query dispatch with inline JSON variables.
func TestExecuteQuery_LiteralVariables(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub, domain.PlatformGitLab)
	ts.gitlab.EXPECT().
		ExecuteQuery(gomock.Any(), "getIssues", map[string]any{"projectId": int64(42), "limit": int64(2)}).
		Return([]domain.Issue{{ID: "1", Source: "gitlab"}}, nil)

	var out struct {
		ExecuteQuery []map[string]any `json:"executeQuery"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query: `{ executeQuery(service: "gitlab", query: "getIssues", variables: {projectId: 42, limit: 2}) }`,
	}, &out)

	// Assert
	require.Empty(t, errs)
	require.Len(t, out.ExecuteQuery, 1)
	assert.Equal(t, "1", out.ExecuteQuery[0]["id"])
}

// TestExecuteQuery_RequestVariables tests raw query dispatch with variables from the request.
func TestExecuteQuery_RequestVariables(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub)
	ts.github.EXPECT().
		ExecuteQuery(gomock.Any(), "{ viewer { login } }", map[string]any{"first": float64(1)}).
		Return(map[string]any{"viewer": map[string]any{"login": "octo"}}, nil)

	var out struct {
		ExecuteQuery map[string]any `json:"executeQuery"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query:     `query Raw($q: String!, $v: JSON) { executeQuery(service: "github", query: $q, variables: $v) }`,
		Variables: map[string]any{"q": "{ viewer { login } }", "v": map[string]any{"first": float64(1)}},
	}, &out)

	// Assert
	require.Empty(t, errs)
	assert.Equal(t, map[string]any{"viewer": map[string]any{"login": "octo"}}, out.ExecuteQuery)
}

// TestExecuteQuery_UnknownService tests dispatch to a service that is not registered.
func TestExecuteQuery_UnknownService(t *testing.T) {
	ts := newTestSchema(t, domain.PlatformGitHub)

	errs := ts.execute(t, Request{
		Query: `{ executeQuery(service: "bitbucket", query: "{ a }") }`,
	}, nil)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "bitbucket")
}

// TestExecuteQuery_NonObjectVariables tests that variables must be an object.
func TestExecuteQuery_NonObjectVariables(t *testing.T) {
	ts := newTestSchema(t, domain.PlatformGitLab)

	errs := ts.execute(t, Request{
		Query: `{ executeQuery(service: "gitlab", query: "getIssues", variables: [1, 2]) }`,
	}, nil)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "variables must be an object")
}

// TestCreateGithubIssue tests the GitHub issue mutation.
func TestCreateGithubIssue(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitHub)
	ts.github.EXPECT().
		CreateIssue(gomock.Any(), api.CreateIssueParams{Owner: "octo", Repo: "hello", Title: "New", Body: "Details"}).
		Return(&domain.Issue{ID: "I_9", Number: 9, Title: "New", Body: "Details", State: "OPEN", Source: "github"}, nil)

	var out struct {
		CreateGithubIssue issueJSON `json:"createGithubIssue"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query: `mutation { createGithubIssue(owner: "octo", repo: "hello", input: {title: "New", body: "Details"}) { ` + issueFields + ` } }`,
	}, &out)

	// Assert
	require.Empty(t, errs)
	assert.Equal(t, "I_9", out.CreateGithubIssue.ID)
	require.NotNil(t, out.CreateGithubIssue.Body)
	assert.Equal(t, "Details", *out.CreateGithubIssue.Body)
}

// TestCreateGitlabIssue tests the GitLab issue mutation with input from variables.
func TestCreateGitlabIssue(t *testing.T) {
	// Arrange
	ts := newTestSchema(t, domain.PlatformGitLab)
	ts.gitlab.EXPECT().
		CreateIssue(gomock.Any(), api.CreateIssueParams{ProjectID: "42", Title: "New", Body: "Details"}).
		Return(&domain.Issue{ID: "555", Number: 12, Title: "New", State: "opened", Source: "gitlab"}, nil)

	var out struct {
		CreateGitlabIssue issueJSON `json:"createGitlabIssue"`
	}

	// Act
	errs := ts.execute(t, Request{
		Query:     `mutation Create($input: IssueInput!) { createGitlabIssue(projectId: "42", input: $input) { id number source } }`,
		Variables: map[string]any{"input": map[string]any{"title": "New", "body": "Details"}},
	}, &out)

	// Assert
	require.Empty(t, errs)
	assert.Equal(t, "555", out.CreateGitlabIssue.ID)
	assert.Equal(t, 12, out.CreateGitlabIssue.Number)
}

// TestCreateIssue_MissingInput tests that the input argument is required.
func TestCreateIssue_MissingInput(t *testing.T) {
	ts := newTestSchema(t, domain.PlatformGitLab)

	errs := ts.execute(t, Request{
		Query: `mutation { createGitlabIssue(projectId: "42") { id } }`,
	}, nil)

	assert.NotEmpty(t, errs)
}

// TestSDL tests the printed schema.
func TestSDL(t *testing.T) {
	ts := newTestSchema(t)

	sdl := ts.schema.SDL()

	assert.Contains(t, sdl, "scalar JSON")
	assert.Contains(t, sdl, "input IssueInput {\n  body: String!\n  title: String!\n}")
	assert.Contains(t, sdl, "allIssues(limit: Int = 10): [Issue]")
	assert.Contains(t, sdl, "createGitlabIssue(input: IssueInput!, projectId: ID!): Issue")
	assert.Contains(t, sdl, "executeQuery(query: String!, service: String!, variables: JSON): JSON")
	assert.Contains(t, sdl, "type Repository {")
	assert.NotContains(t, sdl, "__Schema")
}
