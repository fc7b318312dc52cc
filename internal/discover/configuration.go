package discover

import "strings"

const (
	defaultMaxDepthConstant   = 0
	defaultMaxFilterConstant  = 25
	defaultMaxResultsConstant = 10

	languageConfigurationKeyConstant     = "language"
	starsConfigurationKeyConstant        = "stars"
	forksConfigurationKeyConstant        = "forks"
	createdAfterConfigurationKeyConstant = "created_after"
	updatedAfterConfigurationKeyConstant = "updated_after"
	topicsConfigurationKeyConstant       = "topics"
	licenseConfigurationKeyConstant      = "license"
	minimumSizeConfigurationKeyConstant  = "min_size"
	filesConfigurationKeyConstant        = "files"
	maxDepthConfigurationKeyConstant     = "max_depth"
	maxFilterConfigurationKeyConstant    = "max_filter"
	maxResultsConfigurationKeyConstant   = "max_results"
	outputConfigurationKeyConstant       = "output"
	configurationKeySeparatorConstant    = "."
)

// Configuration captures the discover command settings.
type Configuration struct {
	Language      string   `mapstructure:"language"`
	MinimumStars  int      `mapstructure:"stars"`
	MinimumForks  int      `mapstructure:"forks"`
	CreatedAfter  string   `mapstructure:"created_after"`
	UpdatedAfter  string   `mapstructure:"updated_after"`
	Topics        []string `mapstructure:"topics"`
	License       string   `mapstructure:"license"`
	MinimumSize   int      `mapstructure:"min_size"`
	RequiredFiles []string `mapstructure:"files"`
	MaxDepth      int      `mapstructure:"max_depth"`
	MaxFilter     int      `mapstructure:"max_filter"`
	MaxResults    int      `mapstructure:"max_results"`
	OutputFile    string   `mapstructure:"output"`
}

// DefaultConfiguration returns the discover defaults prior to user overrides.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxDepth:   defaultMaxDepthConstant,
		MaxFilter:  defaultMaxFilterConstant,
		MaxResults: defaultMaxResultsConstant,
	}
}

// DefaultConfigurationValues exposes the discover defaults keyed for the
// configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + maxDepthConfigurationKeyConstant:   defaultMaxDepthConstant,
		rootKey + configurationKeySeparatorConstant + maxFilterConfigurationKeyConstant:  defaultMaxFilterConstant,
		rootKey + configurationKeySeparatorConstant + maxResultsConfigurationKeyConstant: defaultMaxResultsConstant,
	}
}

// Sanitize normalizes whitespace and restores defaults for unusable values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Language = strings.TrimSpace(configuration.Language)
	sanitized.CreatedAfter = strings.TrimSpace(configuration.CreatedAfter)
	sanitized.UpdatedAfter = strings.TrimSpace(configuration.UpdatedAfter)
	sanitized.License = strings.TrimSpace(configuration.License)
	sanitized.OutputFile = strings.TrimSpace(configuration.OutputFile)
	sanitized.Topics = trimValues(configuration.Topics)
	sanitized.RequiredFiles = trimValues(configuration.RequiredFiles)
	if sanitized.MaxDepth < 0 {
		sanitized.MaxDepth = defaultMaxDepthConstant
	}
	if sanitized.MaxFilter <= 0 {
		sanitized.MaxFilter = defaultMaxFilterConstant
	}
	if sanitized.MaxResults <= 0 {
		sanitized.MaxResults = defaultMaxResultsConstant
	}
	return sanitized
}

func trimValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	trimmedValues := make([]string, 0, len(values))
	for _, value := range values {
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			continue
		}
		trimmedValues = append(trimmedValues, trimmedValue)
	}
	if len(trimmedValues) == 0 {
		return nil
	}
	return trimmedValues
}
