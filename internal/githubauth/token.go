package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted when resolving a GitHub credential.
const (
	EnvRepoRoverToken = "REPOROVER_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
)

var tokenPreference = []string{
	EnvRepoRoverToken,
	EnvGitHubToken,
}

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
