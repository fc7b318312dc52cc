package report

import "strings"

// Configuration captures the report command settings.
type Configuration struct {
	RecordFile string `mapstructure:"record_file"`
}

// DefaultConfiguration returns the report defaults prior to user overrides.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// Sanitize normalizes whitespace in the configured values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.RecordFile = strings.TrimSpace(configuration.RecordFile)
	return sanitized
}
