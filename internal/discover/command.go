package discover

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/ratelimit"
	"github.com/GatorEducator/reporover/internal/record"
	"github.com/GatorEducator/reporover/internal/utils/flags"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	commandUseConstant              = "discover"
	commandShortDescriptionConstant = "Search GitHub for repositories matching criteria"
	commandLongDescriptionConstant  = "discover queries the GitHub search API with the configured qualifiers, verifies required files through a bounded traversal, and reports every repository that satisfies the criteria."

	languageFlagNameConstant             = "language"
	languageFlagDescriptionConstant      = "Primary language the repositories must use"
	starsFlagNameConstant                = "stars"
	starsFlagDescriptionConstant         = "Minimum star count"
	forksFlagNameConstant                = "forks"
	forksFlagDescriptionConstant         = "Minimum fork count"
	createdAfterFlagNameConstant         = "created-after"
	createdAfterFlagDescriptionConstant  = "Only repositories created on or after this date (YYYY-MM-DD)"
	updatedAfterFlagNameConstant         = "updated-after"
	updatedAfterFlagDescriptionConstant  = "Only repositories pushed on or after this date (YYYY-MM-DD)"
	topicFlagNameConstant                = "topic"
	topicFlagDescriptionConstant         = "Topic the repositories must carry (repeatable)"
	licenseFlagNameConstant              = "license"
	licenseFlagDescriptionConstant       = "SPDX identifier of the required license"
	minimumSizeFlagNameConstant          = "min-size"
	minimumSizeFlagDescriptionConstant   = "Minimum repository size in kilobytes"
	issuesEnabledFlagNameConstant        = "issues-enabled"
	issuesEnabledFlagDescriptionConstant = "Keep only repositories whose issue tracker matches this toggle"
	wikiEnabledFlagNameConstant          = "wiki-enabled"
	wikiEnabledFlagDescriptionConstant   = "Keep only repositories whose wiki matches this toggle"
	fileFlagNameConstant                 = "file"
	fileFlagDescriptionConstant          = "File name each repository must contain (repeatable)"
	maxDepthFlagNameConstant             = "max-depth"
	maxDepthFlagDescriptionConstant      = "How many directory levels below the root to inspect for required files"
	maxFilterFlagNameConstant            = "max-filter"
	maxFilterFlagDescriptionConstant     = "How many search results to test against the criteria"
	maxResultsFlagNameConstant           = "max-results"
	maxResultsFlagDescriptionConstant    = "How many matching repositories to report"
	outputFlagNameConstant               = "output"
	outputFlagDescriptionConstant        = "Path that receives the discovery record"

	tokenFieldNameConstant      = "token"
	tokenMissingMessageConstant = "a GitHub credential must be supplied"

	queryLineTemplateConstant         = "query: %s\n"
	repositoryLineTemplateConstant    = "%s  stars %d  forks %d  %s\n"
	repositoryDetailTemplateConstant  = "    %s\n"
	discoveredSummaryTemplateConstant = "\n%d of %d candidates reported\n"
	noMatchesMessageConstant          = "no repositories matched the criteria\n"
	recordWrittenTemplateConstant     = "discovery record written to %s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the discover configuration section.
type ConfigurationProvider func() Configuration

// TokenProvider resolves the GitHub credential for the invocation.
type TokenProvider func() (string, error)

// GatewayResolver builds the remote gateway from the resolved credential.
type GatewayResolver func(token string) (Gateway, error)

// CommandBuilder assembles the discover command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	TokenProvider         TokenProvider
	GatewayResolver       GatewayResolver
}

// Build constructs the discover command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	defaults := DefaultConfiguration()
	command.Flags().String(languageFlagNameConstant, "", languageFlagDescriptionConstant)
	command.Flags().Int(starsFlagNameConstant, 0, starsFlagDescriptionConstant)
	command.Flags().Int(forksFlagNameConstant, 0, forksFlagDescriptionConstant)
	command.Flags().String(createdAfterFlagNameConstant, "", createdAfterFlagDescriptionConstant)
	command.Flags().String(updatedAfterFlagNameConstant, "", updatedAfterFlagDescriptionConstant)
	command.Flags().StringArray(topicFlagNameConstant, nil, topicFlagDescriptionConstant)
	command.Flags().String(licenseFlagNameConstant, "", licenseFlagDescriptionConstant)
	command.Flags().Int(minimumSizeFlagNameConstant, 0, minimumSizeFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), nil, issuesEnabledFlagNameConstant, "", false, issuesEnabledFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), nil, wikiEnabledFlagNameConstant, "", false, wikiEnabledFlagDescriptionConstant)
	command.Flags().StringArray(fileFlagNameConstant, nil, fileFlagDescriptionConstant)
	command.Flags().Int(maxDepthFlagNameConstant, defaults.MaxDepth, maxDepthFlagDescriptionConstant)
	command.Flags().Int(maxFilterFlagNameConstant, defaults.MaxFilter, maxFilterFlagDescriptionConstant)
	command.Flags().Int(maxResultsFlagNameConstant, defaults.MaxResults, maxResultsFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	options, optionsError := resolveOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	token, tokenError := builder.resolveToken()
	if tokenError != nil {
		return tokenError
	}
	gateway, gatewayError := builder.resolveGateway(token)
	if gatewayError != nil {
		return gatewayError
	}

	service, serviceCreationError := NewService(Dependencies{Gateway: gateway, Logger: builder.resolveLogger()})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	runReport, executionError := service.Execute(command.Context(), options)
	if executionError != nil {
		return executionError
	}

	renderReport(command.OutOrStdout(), runReport, options.OutputFile)
	return nil
}

func resolveOptions(command *cobra.Command, configuration Configuration) (Options, error) {
	flagSet := command.Flags()

	languageValue, languageError := flagSet.GetString(languageFlagNameConstant)
	if languageError != nil {
		return Options{}, languageError
	}
	starsValue, starsError := flagSet.GetInt(starsFlagNameConstant)
	if starsError != nil {
		return Options{}, starsError
	}
	if !flagSet.Changed(starsFlagNameConstant) && configuration.MinimumStars > 0 {
		starsValue = configuration.MinimumStars
	}
	forksValue, forksError := flagSet.GetInt(forksFlagNameConstant)
	if forksError != nil {
		return Options{}, forksError
	}
	if !flagSet.Changed(forksFlagNameConstant) && configuration.MinimumForks > 0 {
		forksValue = configuration.MinimumForks
	}
	createdAfterValue, createdAfterError := flagSet.GetString(createdAfterFlagNameConstant)
	if createdAfterError != nil {
		return Options{}, createdAfterError
	}
	updatedAfterValue, updatedAfterError := flagSet.GetString(updatedAfterFlagNameConstant)
	if updatedAfterError != nil {
		return Options{}, updatedAfterError
	}
	topicValues, topicsError := flagSet.GetStringArray(topicFlagNameConstant)
	if topicsError != nil {
		return Options{}, topicsError
	}
	if len(topicValues) == 0 {
		topicValues = configuration.Topics
	}
	licenseValue, licenseError := flagSet.GetString(licenseFlagNameConstant)
	if licenseError != nil {
		return Options{}, licenseError
	}
	minimumSizeValue, minimumSizeError := flagSet.GetInt(minimumSizeFlagNameConstant)
	if minimumSizeError != nil {
		return Options{}, minimumSizeError
	}
	if !flagSet.Changed(minimumSizeFlagNameConstant) && configuration.MinimumSize > 0 {
		minimumSizeValue = configuration.MinimumSize
	}
	fileValues, filesError := flagSet.GetStringArray(fileFlagNameConstant)
	if filesError != nil {
		return Options{}, filesError
	}
	if len(fileValues) == 0 {
		fileValues = configuration.RequiredFiles
	}
	maxDepthValue, maxDepthError := flagSet.GetInt(maxDepthFlagNameConstant)
	if maxDepthError != nil {
		return Options{}, maxDepthError
	}
	if !flagSet.Changed(maxDepthFlagNameConstant) {
		maxDepthValue = configuration.MaxDepth
	}
	maxFilterValue, maxFilterError := flagSet.GetInt(maxFilterFlagNameConstant)
	if maxFilterError != nil {
		return Options{}, maxFilterError
	}
	if !flagSet.Changed(maxFilterFlagNameConstant) {
		maxFilterValue = configuration.MaxFilter
	}
	maxResultsValue, maxResultsError := flagSet.GetInt(maxResultsFlagNameConstant)
	if maxResultsError != nil {
		return Options{}, maxResultsError
	}
	if !flagSet.Changed(maxResultsFlagNameConstant) {
		maxResultsValue = configuration.MaxResults
	}
	outputValue, outputError := flagSet.GetString(outputFlagNameConstant)
	if outputError != nil {
		return Options{}, outputError
	}

	var issuesEnabled *bool
	if flagSet.Changed(issuesEnabledFlagNameConstant) {
		issuesEnabledValue, issuesEnabledError := flagSet.GetBool(issuesEnabledFlagNameConstant)
		if issuesEnabledError != nil {
			return Options{}, issuesEnabledError
		}
		issuesEnabled = &issuesEnabledValue
	}
	var wikiEnabled *bool
	if flagSet.Changed(wikiEnabledFlagNameConstant) {
		wikiEnabledValue, wikiEnabledError := flagSet.GetBool(wikiEnabledFlagNameConstant)
		if wikiEnabledError != nil {
			return Options{}, wikiEnabledError
		}
		wikiEnabled = &wikiEnabledValue
	}

	return Options{
		Criteria: Criteria{
			Language:     selectStringValue(languageValue, configuration.Language),
			MinimumStars: starsValue,
			MinimumForks: forksValue,
			CreatedAfter: selectStringValue(createdAfterValue, configuration.CreatedAfter),
			UpdatedAfter: selectStringValue(updatedAfterValue, configuration.UpdatedAfter),
			Topics:       topicValues,
			License:      selectStringValue(licenseValue, configuration.License),
			MinimumSize:  minimumSizeValue,
		},
		IssuesEnabled: issuesEnabled,
		WikiEnabled:   wikiEnabled,
		RequiredFiles: fileValues,
		MaxDepth:      maxDepthValue,
		MaxFilter:     maxFilterValue,
		MaxResults:    maxResultsValue,
		OutputFile:    pathutils.NewHomeExpander().Expand(selectStringValue(outputValue, configuration.OutputFile)),
	}, nil
}

func renderReport(outputWriter io.Writer, runReport RunReport, outputFile string) {
	fmt.Fprintf(outputWriter, queryLineTemplateConstant, runReport.Document.RepoRover.Configuration.SearchQuery)
	reportedDescriptors := runReport.Document.RepoRover.Repositories
	if len(reportedDescriptors) == 0 {
		fmt.Fprint(outputWriter, noMatchesMessageConstant)
		return
	}
	for _, reportedDescriptor := range reportedDescriptors {
		writeDescriptor(outputWriter, reportedDescriptor)
	}
	fmt.Fprintf(outputWriter, discoveredSummaryTemplateConstant, len(reportedDescriptors), runReport.CandidateCount)
	if len(outputFile) > 0 {
		fmt.Fprintf(outputWriter, recordWrittenTemplateConstant, outputFile)
	}
}

func writeDescriptor(outputWriter io.Writer, reportedDescriptor record.Descriptor) {
	fmt.Fprintf(outputWriter, repositoryLineTemplateConstant,
		reportedDescriptor.FullName,
		reportedDescriptor.Stars,
		reportedDescriptor.Forks,
		reportedDescriptor.Language,
	)
	fmt.Fprintf(outputWriter, repositoryDetailTemplateConstant, reportedDescriptor.URL)
	if len(reportedDescriptor.Description) > 0 {
		fmt.Fprintf(outputWriter, repositoryDetailTemplateConstant, reportedDescriptor.Description)
	}
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configurationValue)
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveToken() (string, error) {
	if builder.TokenProvider == nil {
		return "", githubapi.ConfigurationError{Field: tokenFieldNameConstant, Message: tokenMissingMessageConstant}
	}
	return builder.TokenProvider()
}

func (builder *CommandBuilder) resolveGateway(token string) (Gateway, error) {
	if builder.GatewayResolver != nil {
		return builder.GatewayResolver(token)
	}
	return githubapi.NewClient(githubapi.ClientDependencies{Token: token, Governor: ratelimit.NewGovernor(nil)})
}
