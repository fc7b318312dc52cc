package access

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/ratelimit"
	"github.com/GatorEducator/reporover/internal/targets"
	"github.com/GatorEducator/reporover/internal/ui"
	"github.com/GatorEducator/reporover/internal/utils/flags"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	commandUseConstant                 = "access [organization-url] [repository-prefix] [accounts-file]"
	commandShortDescriptionConstant    = "Change collaborator access levels across repositories"
	commandLongDescriptionConstant     = "access sets every listed account's collaborator permission on its prefixed repository and can notify each account through a pull request comment."
	levelFlagNameConstant              = "level"
	levelFlagDescriptionConstant       = "Collaborator access level to grant"
	notifyFlagNameConstant             = "notify"
	notifyFlagDescriptionConstant      = "Comment on each repository's pull request after changing access"
	pullRequestFlagNameConstant        = "pr-number"
	pullRequestFlagDescriptionConstant = "Pull request number that receives the notification comment"
	messageFlagNameConstant            = "message"
	messageFlagDescriptionConstant     = "Additional text appended to the notification comment"
	usernameFlagNameConstant           = "username"
	usernameFlagDescriptionConstant    = "Restrict the run to the named accounts (repeatable)"
	tokenFieldNameConstant             = "token"
	tokenMissingMessageConstant        = "a GitHub credential must be supplied"
	positionalArgumentCeilingConstant  = 3
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the access configuration section.
type ConfigurationProvider func() Configuration

// TokenProvider resolves the GitHub credential for the invocation.
type TokenProvider func() (string, error)

// GatewayResolver builds the remote gateway from the resolved credential.
type GatewayResolver func(token string) (Gateway, error)

// DispatchOptionsProvider yields the shared dispatch tuning.
type DispatchOptionsProvider func() bulk.Options

// CommandBuilder assembles the access command.
type CommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   ConfigurationProvider
	TokenProvider           TokenProvider
	GatewayResolver         GatewayResolver
	DispatchOptionsProvider DispatchOptionsProvider
}

// Build constructs the access command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(positionalArgumentCeilingConstant),
		RunE:  builder.run,
	}

	defaults := DefaultConfiguration()
	levelFlagUsage := flags.FormatChoiceUsage(defaults.AccessLevel, githubapi.AccessLevelNames(), levelFlagDescriptionConstant)
	command.Flags().String(levelFlagNameConstant, defaults.AccessLevel, levelFlagUsage)
	command.Flags().Bool(notifyFlagNameConstant, false, notifyFlagDescriptionConstant)
	command.Flags().Int(pullRequestFlagNameConstant, defaults.PullRequestNumber, pullRequestFlagDescriptionConstant)
	command.Flags().String(messageFlagNameConstant, "", messageFlagDescriptionConstant)
	command.Flags().StringArray(usernameFlagNameConstant, nil, usernameFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	organizationURL, repositoryPrefix, accountsFilePath := resolvePositionalArguments(arguments, configuration)

	levelValue, levelFlagError := command.Flags().GetString(levelFlagNameConstant)
	if levelFlagError != nil {
		return levelFlagError
	}
	if !command.Flags().Changed(levelFlagNameConstant) && len(configuration.AccessLevel) > 0 {
		levelValue = configuration.AccessLevel
	}
	accessLevel, levelParseError := githubapi.ParseAccessLevel(levelValue)
	if levelParseError != nil {
		return levelParseError
	}

	notifyRequested, notifyFlagError := command.Flags().GetBool(notifyFlagNameConstant)
	if notifyFlagError != nil {
		return notifyFlagError
	}

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
		OrganizationURL:     organizationURL,
		RepositoryPrefix:    repositoryPrefix,
		AccountNames:        accountNames,
		AccessLevel:         accessLevel,
		NotifyAccounts:      notifyRequested,
		PullRequestNumber:   pullRequestNumber,
		NotificationMessage: messageText,
		Dispatch:            builder.resolveDispatchOptions(),
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
