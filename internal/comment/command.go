package comment

import (
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
	commandUseConstant                 = "comment [organization-url] [repository-prefix] [accounts-file]"
	commandShortDescriptionConstant    = "Comment on a pull request in every repository"
	commandLongDescriptionConstant     = "comment posts a greeting message on the numbered pull request of every listed account's prefixed repository."
	pullRequestFlagNameConstant        = "pr-number"
	pullRequestFlagDescriptionConstant = "Pull request number that receives the comment"
	messageFlagNameConstant            = "message"
	messageFlagDescriptionConstant     = "Message text appended to the account greeting"
	usernameFlagNameConstant           = "username"
	usernameFlagDescriptionConstant    = "Restrict the run to the named accounts (repeatable)"
	tokenFieldNameConstant             = "token"
	tokenMissingMessageConstant        = "a GitHub credential must be supplied"
	positionalArgumentCeilingConstant  = 3
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the comment configuration section.
type ConfigurationProvider func() Configuration

// TokenProvider resolves the GitHub credential for the invocation.
type TokenProvider func() (string, error)

// GatewayResolver builds the remote gateway from the resolved credential.
type GatewayResolver func(token string) (Gateway, error)

// DispatchOptionsProvider yields the shared dispatch tuning.
type DispatchOptionsProvider func() bulk.Options

// CommandBuilder assembles the comment command.
type CommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   ConfigurationProvider
	TokenProvider           TokenProvider
	GatewayResolver         GatewayResolver
	DispatchOptionsProvider DispatchOptionsProvider
}

// Build constructs the comment command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(positionalArgumentCeilingConstant),
		RunE:  builder.run,
	}

	defaults := DefaultConfiguration()
	command.Flags().Int(pullRequestFlagNameConstant, defaults.PullRequestNumber, pullRequestFlagDescriptionConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagDescriptionConstant)
	command.Flags().StringArray(usernameFlagNameConstant, nil, usernameFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	organizationURL, repositoryPrefix, accountsFilePath := resolvePositionalArguments(arguments, configuration)

	pullRequestNumber, pullRequestFlagError := command.Flags().GetInt(pullRequestFlagNameConstant)
	if pullRequestFlagError != nil {
		return pullRequestFlagError
	}
	if !command.Flags().Changed(pullRequestFlagNameConstant) && configuration.PullRequestNumber > 0 {
		pullRequestNumber = configuration.PullRequestNumber
	}

	messageText, messageFlagError := command.Flags().GetString(messageFlagNameConstant)
	if messageFlagError != nil {
		return messageFlagError
	}
	messageText = selectStringValue(messageText, configuration.Message)

	usernameFilters, usernameFlagError := command.Flags().GetStringArray(usernameFlagNameConstant)
	if usernameFlagError != nil {
		return usernameFlagError
	}

	rosterAccounts, accountsLoadError := targets.LoadAccounts(pathutils.NewHomeExpander().Expand(accountsFilePath))
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
		OrganizationURL:   organizationURL,
		RepositoryPrefix:  repositoryPrefix,
		AccountNames:      accountNames,
		PullRequestNumber: pullRequestNumber,
		Message:           messageText,
		Dispatch:          builder.resolveDispatchOptions(),
	})
	if executionError != nil {
		return executionError
	}

	resultWriter := ui.NewResultWriter(command.OutOrStdout())
	resultWriter.WriteResults(operationResults)
	resultWriter.WriteSummary(runSummary)
	if runSummary.FatalCause != nil {
		return runSummary.FatalCause
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
