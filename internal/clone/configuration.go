package clone

import "strings"

const (
	configurationOrganizationKeyConstant = "organization"
	configurationPrefixKeyConstant       = "prefix"
	configurationAccountsFileKeyConstant = "accounts_file"
	configurationDestinationKeyConstant  = "destination"
)

// Configuration captures the persisted settings of the clone command.
type Configuration struct {
	OrganizationURL  string `mapstructure:"organization"`
	RepositoryPrefix string `mapstructure:"prefix"`
	AccountsFile     string `mapstructure:"accounts_file"`
	Destination      string `mapstructure:"destination"`
}

// DefaultConfiguration returns the clone defaults applied before merges.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// Sanitize normalizes configuration values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.OrganizationURL = strings.TrimSpace(configuration.OrganizationURL)
	sanitized.RepositoryPrefix = strings.TrimSpace(configuration.RepositoryPrefix)
	sanitized.AccountsFile = strings.TrimSpace(configuration.AccountsFile)
	sanitized.Destination = strings.TrimSpace(configuration.Destination)
	return sanitized
}
