package comment

import "strings"

const (
	configurationOrganizationKeyConstant = "organization"
	configurationPrefixKeyConstant       = "prefix"
	configurationAccountsFileKeyConstant = "accounts_file"
	configurationPullRequestKeyConstant  = "pr_number"
	configurationMessageKeyConstant      = "message"
	configurationKeySeparatorConstant    = "."
	defaultPullRequestNumberConstant     = 1
)

// Configuration captures the persisted settings of the comment command.
type Configuration struct {
	OrganizationURL   string `mapstructure:"organization"`
	RepositoryPrefix  string `mapstructure:"prefix"`
	AccountsFile      string `mapstructure:"accounts_file"`
	PullRequestNumber int    `mapstructure:"pr_number"`
	Message           string `mapstructure:"message"`
}

// DefaultConfiguration returns the comment defaults applied before merges.
func DefaultConfiguration() Configuration {
	return Configuration{PullRequestNumber: defaultPullRequestNumberConstant}
}

// DefaultConfigurationValues exposes the defaults keyed for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationPullRequestKeyConstant: defaults.PullRequestNumber,
	}
}

// Sanitize normalizes configuration values and restores defaults for blanks.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.OrganizationURL = strings.TrimSpace(configuration.OrganizationURL)
	sanitized.RepositoryPrefix = strings.TrimSpace(configuration.RepositoryPrefix)
	sanitized.AccountsFile = strings.TrimSpace(configuration.AccountsFile)
	if sanitized.PullRequestNumber <= 0 {
		sanitized.PullRequestNumber = defaultPullRequestNumberConstant
	}
	return sanitized
}
