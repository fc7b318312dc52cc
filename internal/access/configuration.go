package access

import "strings"

const (
	configurationOrganizationKeyConstant = "organization"
	configurationPrefixKeyConstant       = "prefix"
	configurationAccountsFileKeyConstant = "accounts_file"
	configurationLevelKeyConstant        = "level"
	configurationPullRequestKeyConstant  = "pr_number"
	configurationKeySeparatorConstant    = "."
	defaultAccessLevelConstant           = "read"
	defaultPullRequestNumberConstant     = 1
)

// Configuration captures the persisted settings of the access command.
type Configuration struct {
	OrganizationURL   string `mapstructure:"organization"`
	RepositoryPrefix  string `mapstructure:"prefix"`
	AccountsFile      string `mapstructure:"accounts_file"`
	AccessLevel       string `mapstructure:"level"`
	PullRequestNumber int    `mapstructure:"pr_number"`
}

// DefaultConfiguration returns the access defaults applied before merges.
func DefaultConfiguration() Configuration {
	return Configuration{
		AccessLevel:       defaultAccessLevelConstant,
		PullRequestNumber: defaultPullRequestNumberConstant,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationLevelKeyConstant:       defaults.AccessLevel,
		rootKey + configurationKeySeparatorConstant + configurationPullRequestKeyConstant: defaults.PullRequestNumber,
	}
}

// Sanitize normalizes configuration values and restores defaults for blanks.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.OrganizationURL = strings.TrimSpace(configuration.OrganizationURL)
	sanitized.RepositoryPrefix = strings.TrimSpace(configuration.RepositoryPrefix)
	sanitized.AccountsFile = strings.TrimSpace(configuration.AccountsFile)
	sanitized.AccessLevel = strings.TrimSpace(configuration.AccessLevel)
	if len(sanitized.AccessLevel) == 0 {
		sanitized.AccessLevel = defaultAccessLevelConstant
	}
	if sanitized.PullRequestNumber <= 0 {
		sanitized.PullRequestNumber = defaultPullRequestNumberConstant
	}
	return sanitized
}
