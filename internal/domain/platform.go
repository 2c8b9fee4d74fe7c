package domain

// Provider names. Every normalized record carries one of these as its Source,
// and the registry keys adapters by them.
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
)
