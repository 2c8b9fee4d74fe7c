package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vilaca/forge-gateway/internal/api"
)

// Targets lists, per provider name, what the aggregated queries fetch.
type Targets struct {
	Issues       map[string]IssueTarget      `yaml:"issues"`
	Repositories map[string]RepositoryTarget `yaml:"repositories"`
}

// IssueTarget addresses a project's issues.
// GitHub uses owner and repo, GitLab uses project_id.
type IssueTarget struct {
	Owner     string `yaml:"owner"`
	Repo      string `yaml:"repo"`
	ProjectID string `yaml:"project_id"`
}

// RepositoryTarget addresses a set of repositories.
// GitHub uses owner, GitLab uses user_id or lists every visible project when it is empty.
type RepositoryTarget struct {
	Owner  string `yaml:"owner"`
	UserID string `yaml:"user_id"`
}

// DefaultTargets returns the placeholder targets used when no targets file exists.
func DefaultTargets() *Targets {
	return &Targets{
		Issues: map[string]IssueTarget{
			"github": {Owner: "dummy-owner", Repo: "dummy-repo"},
			"gitlab": {ProjectID: "dummy-project-id"},
		},
		Repositories: map[string]RepositoryTarget{
			"github": {Owner: "dummy-owner"},
			"gitlab": {},
		},
	}
}

// LoadTargets reads the targets file at path.
// A missing file yields DefaultTargets; a malformed one is an error.
func LoadTargets(path string) (*Targets, error) {
	if path == "" {
		return DefaultTargets(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultTargets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var targets Targets
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}
	return &targets, nil
}

// IssueParams converts the issue targets to adapter parameters.
func (t *Targets) IssueParams() map[string]api.IssueParams {
	params := make(map[string]api.IssueParams, len(t.Issues))
	for name, target := range t.Issues {
		params[name] = api.IssueParams{
			Owner:     target.Owner,
			Repo:      target.Repo,
			ProjectID: target.ProjectID,
		}
	}
	return params
}

// RepositoryParams converts the repository targets to adapter parameters.
func (t *Targets) RepositoryParams() map[string]api.RepositoryParams {
	params := make(map[string]api.RepositoryParams, len(t.Repositories))
	for name, target := range t.Repositories {
		params[name] = api.RepositoryParams{
			Owner:  target.Owner,
			UserID: target.UserID,
		}
	}
	return params
}
