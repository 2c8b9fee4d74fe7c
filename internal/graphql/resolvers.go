package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/vilaca/forge-gateway/internal/api"
	"github.com/vilaca/forge-gateway/internal/domain"
)

func (s *Schema) resolveGithubIssues(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitHub)
	if err != nil {
		return nil, err
	}

	issues, err := client.GetIssues(p.Context, api.IssueParams{
		Owner: stringArg(p, "owner"),
		Repo:  stringArg(p, "repo"),
		Limit: intArg(p, "limit"),
	})
	if err != nil {
		return nil, err
	}
	return issueResults(issues), nil
}

func (s *Schema) resolveGithubRepositories(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitHub)
	if err != nil {
		return nil, err
	}

	repos, err := client.GetRepositories(p.Context, api.RepositoryParams{
		Owner: stringArg(p, "owner"),
		Limit: intArg(p, "limit"),
	})
	if err != nil {
		return nil, err
	}
	return repositoryResults(repos), nil
}

func (s *Schema) resolveGitlabIssues(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitLab)
	if err != nil {
		return nil, err
	}

	issues, err := client.GetIssues(p.Context, api.IssueParams{
		ProjectID: stringArg(p, "projectId"),
		Limit:     intArg(p, "limit"),
	})
	if err != nil {
		return nil, err
	}
	return issueResults(issues), nil
}

func (s *Schema) resolveGitlabRepositories(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitLab)
	if err != nil {
		return nil, err
	}

	repos, err := client.GetRepositories(p.Context, api.RepositoryParams{
		UserID: stringArg(p, "userId"),
		Limit:  intArg(p, "limit"),
	})
	if err != nil {
		return nil, err
	}
	return repositoryResults(repos), nil
}

func (s *Schema) resolveAllIssues(p graphql.ResolveParams) (any, error) {
	return issueResults(s.aggregator.AllIssues(p.Context, intArg(p, "limit"))), nil
}

func (s *Schema) resolveAllRepositories(p graphql.ResolveParams) (any, error) {
	return repositoryResults(s.aggregator.AllRepositories(p.Context, intArg(p, "limit"))), nil
}

func (s *Schema) resolveExecuteQuery(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(stringArg(p, "service"))
	if err != nil {
		return nil, err
	}

	var variables map[string]any
	if raw, ok := p.Args["variables"]; ok && raw != nil {
		variables, ok = raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variables must be an object, got %T", raw)
		}
	}

	return client.ExecuteQuery(p.Context, stringArg(p, "query"), variables)
}

func (s *Schema) resolveCreateGithubIssue(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitHub)
	if err != nil {
		return nil, err
	}

	title, body := issueInput(p)
	issue, err := client.CreateIssue(p.Context, api.CreateIssueParams{
		Owner: stringArg(p, "owner"),
		Repo:  stringArg(p, "repo"),
		Title: title,
		Body:  body,
	})
	if err != nil {
		return nil, err
	}
	return issueResult(*issue), nil
}

func (s *Schema) resolveCreateGitlabIssue(p graphql.ResolveParams) (any, error) {
	client, err := s.registry.Get(domain.PlatformGitLab)
	if err != nil {
		return nil, err
	}

	title, body := issueInput(p)
	issue, err := client.CreateIssue(p.Context, api.CreateIssueParams{
		ProjectID: stringArg(p, "projectId"),
		Title:     title,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	return issueResult(*issue), nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

func issueInput(p graphql.ResolveParams) (title, body string) {
	input, _ := p.Args["input"].(map[string]any)
	title, _ = input["title"].(string)
	body, _ = input["body"].(string)
	return title, body
}
