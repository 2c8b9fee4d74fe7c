package graphql

import (
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/vilaca/forge-gateway/internal/domain"
)

var issueType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Issue",
	Description: "An issue normalized from any provider.",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"number":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"body":      &graphql.Field{Type: graphql.String},
		"state":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"author":    &graphql.Field{Type: graphql.String},
		"source":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var repositoryType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Repository",
	Description: "A repository or project normalized from any provider.",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"url":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"stars":       &graphql.Field{Type: graphql.Int},
		"forks":       &graphql.Field{Type: graphql.Int},
		"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"source":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var issueInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "IssueInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"body":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

// jsonScalar passes arbitrary JSON values through unchanged.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value.",
	Serialize:   func(value any) any { return value },
	ParseValue:  func(value any) any { return value },
	ParseLiteral: func(valueAST ast.Value) any {
		return parseLiteral(valueAST)
	},
})

func parseLiteral(valueAST ast.Value) any {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.IntValue:
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return n
		}
		return nil
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return nil
	case *ast.ObjectValue:
		obj := make(map[string]any, len(v.Fields))
		for _, field := range v.Fields {
			obj[field.Name.Value] = parseLiteral(field.Value)
		}
		return obj
	case *ast.ListValue:
		list := make([]any, len(v.Values))
		for i, item := range v.Values {
			list[i] = parseLiteral(item)
		}
		return list
	default:
		return nil
	}
}

// issueResult flattens an issue for the default field resolvers.
// Empty optional fields resolve to null.
func issueResult(issue domain.Issue) map[string]any {
	return map[string]any{
		"id":        issue.ID,
		"number":    issue.Number,
		"title":     issue.Title,
		"body":      optional(issue.Body),
		"state":     issue.State,
		"createdAt": timestamp(issue.CreatedAt),
		"updatedAt": timestamp(issue.UpdatedAt),
		"author":    optional(issue.Author),
		"source":    issue.Source,
	}
}

func issueResults(issues []domain.Issue) []map[string]any {
	results := make([]map[string]any, len(issues))
	for i, issue := range issues {
		results[i] = issueResult(issue)
	}
	return results
}

func repositoryResult(repo domain.Repository) map[string]any {
	return map[string]any{
		"id":          repo.ID,
		"name":        repo.Name,
		"description": optional(repo.Description),
		"url":         repo.URL,
		"stars":       repo.Stars,
		"forks":       repo.Forks,
		"createdAt":   timestamp(repo.CreatedAt),
		"updatedAt":   timestamp(repo.UpdatedAt),
		"source":      repo.Source,
	}
}

func repositoryResults(repos []domain.Repository) []map[string]any {
	results := make([]map[string]any, len(repos))
	for i, repo := range repos {
		results[i] = repositoryResult(repo)
	}
	return results
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
