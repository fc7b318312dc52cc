package status

import "strings"

const (
	configurationOrganizationKeyConstant = "organization"
	configurationPrefixKeyConstant       = "prefix"
	configurationAccountsFileKeyConstant = "accounts_file"
	configurationReportFileKeyConstant   = "report_file"
)

// Configuration captures the persisted settings of the status command.
type Configuration struct {
	OrganizationURL  string `mapstructure:"organization"`
	RepositoryPrefix string `mapstructure:"prefix"`
	AccountsFile     string `mapstructure:"accounts_file"`
	ReportFile       string `mapstructure:"report_file"`
}

// DefaultConfiguration returns the status defaults applied before merges.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// Sanitize normalizes configuration values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.OrganizationURL = strings.TrimSpace(configuration.OrganizationURL)
	sanitized.RepositoryPrefix = strings.TrimSpace(configuration.RepositoryPrefix)
	sanitized.AccountsFile = strings.TrimSpace(configuration.AccountsFile)
	sanitized.ReportFile = strings.TrimSpace(configuration.ReportFile)
	return sanitized
}
