package status

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/ratelimit"
	"github.com/GatorEducator/reporover/internal/targets"
	"github.com/GatorEducator/reporover/internal/ui"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	commandUseConstant                = "status [organization-url] [repository-prefix] [accounts-file]"
	commandShortDescriptionConstant   = "Report the latest GitHub Actions run for every repository"
	commandLongDescriptionConstant    = "status fetches the most recent GitHub Actions workflow run of every listed account's prefixed repository and can write the outcomes to a CSV report."
	reportFlagNameConstant            = "report"
	reportFlagDescriptionConstant     = "Optional path of a CSV report to write"
	usernameFlagNameConstant          = "username"
	usernameFlagDescriptionConstant   = "Restrict the run to the named accounts (repeatable)"
	tokenFieldNameConstant            = "token"
	tokenMissingMessageConstant       = "a GitHub credential must be supplied"
	reportCreateErrorTemplateConstant = "failed to create report file: %w"
	reportCloseErrorTemplateConstant  = "failed to close report file: %w"
	reportWrittenTemplateConstant     = "report written to %s\n"
	positionalArgumentCeilingConstant = 3
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the status configuration section.
type ConfigurationProvider func() Configuration

// TokenProvider resolves the GitHub credential for the invocation.
type TokenProvider func() (string, error)

// GatewayResolver builds the remote gateway from the resolved credential.
type GatewayResolver func(token string) (Gateway, error)

// DispatchOptionsProvider yields the shared dispatch tuning.
type DispatchOptionsProvider func() bulk.Options

// CommandBuilder assembles the status command.
type CommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   ConfigurationProvider
	TokenProvider           TokenProvider
	GatewayResolver         GatewayResolver
	DispatchOptionsProvider DispatchOptionsProvider
}

// Build constructs the status command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(positionalArgumentCeilingConstant),
		RunE:  builder.run,
	}

	command.Flags().String(reportFlagNameConstant, "", reportFlagDescriptionConstant)
	command.Flags().StringArray(usernameFlagNameConstant, nil, usernameFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	organizationURL, repositoryPrefix, accountsFilePath := resolvePositionalArguments(arguments, configuration)
	pathExpander := pathutils.NewHomeExpander()

	reportFilePath, reportFlagError := command.Flags().GetString(reportFlagNameConstant)
	if reportFlagError != nil {
		return reportFlagError
	}
	reportFilePath = pathExpander.Expand(selectStringValue(reportFilePath, configuration.ReportFile))

	usernameFilters, usernameFlagError := command.Flags().GetStringArray(usernameFlagNameConstant)
	if usernameFlagError != nil {
		return usernameFlagError
	}

	rosterAccounts, accountsLoadError := targets.LoadAccounts(pathExpander.Expand(accountsFilePath))
	if accountsLoadError != nil {
		return accountsLoadError
	}
	accountNames, accountsFilterError := targets.FilterAccounts(rosterAccounts, usernameFilters)
	if accountsFilterError != nil {
		return accountsFilterError
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

	operationResults, runSummary, executionError := service.Execute(command.Context(), Options{
		OrganizationURL:  organizationURL,
		RepositoryPrefix: repositoryPrefix,
		AccountNames:     accountNames,
		Dispatch:         builder.resolveDispatchOptions(),
	})
	if executionError != nil {
		return executionError
	}

	resultWriter := ui.NewResultWriter(command.OutOrStdout())
	resultWriter.WriteResults(operationResults)
	resultWriter.WriteSummary(runSummary)

	if len(reportFilePath) > 0 {
		if reportError := writeReportFile(reportFilePath, operationResults); reportError != nil {
			return reportError
		}
		fmt.Fprintf(command.OutOrStdout(), reportWrittenTemplateConstant, reportFilePath)
	}

	if runSummary.FatalCause != nil {
		return runSummary.FatalCause
	}
	return nil
}

func writeReportFile(reportFilePath string, operationResults []bulk.OperationResult) error {
	reportFile, createError := os.Create(reportFilePath)
	if createError != nil {
		return fmt.Errorf(reportCreateErrorTemplateConstant, createError)
	}

	if writeError := WriteReport(reportFile, operationResults); writeError != nil {
		_ = reportFile.Close()
		return writeError
	}

	if closeError := reportFile.Close(); closeError != nil {
		return fmt.Errorf(reportCloseErrorTemplateConstant, closeError)
	}
	return nil
}

func resolvePositionalArguments(arguments []string, configuration Configuration) (string, string, string) {
	organizationURL := configuration.OrganizationURL
	repositoryPrefix := configuration.RepositoryPrefix
	accountsFilePath := configuration.AccountsFile
	if len(arguments) > 0 {
		organizationURL = arguments[0]
	}
	if len(arguments) > 1 {
		repositoryPrefix = arguments[1]
	}
	if len(arguments) > 2 {
		accountsFilePath = arguments[2]
	}
	return organizationURL, repositoryPrefix, accountsFilePath
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

func (builder *CommandBuilder) resolveDispatchOptions() bulk.Options {
	if builder.DispatchOptionsProvider == nil {
		return bulk.Options{}
	}
	return builder.DispatchOptionsProvider()
}
