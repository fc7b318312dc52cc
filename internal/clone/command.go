package clone

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/execshell"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
	"github.com/GatorEducator/reporover/internal/ui"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	commandUseConstant                = "clone [organization-url] [repository-prefix] [accounts-file] [destination-dir]"
	commandShortDescriptionConstant   = "Clone every listed account's repository into a directory"
	commandLongDescriptionConstant    = "clone checks out each prefixed repository beneath the destination directory, skipping targets whose local checkout already exists."
	usernameFlagNameConstant          = "username"
	usernameFlagDescriptionConstant   = "Restrict the run to the named accounts (repeatable)"
	positionalArgumentCeilingConstant = 4
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the clone configuration section.
type ConfigurationProvider func() Configuration

// TokenProvider resolves the GitHub credential for the invocation.
type TokenProvider func() (string, error)

// ExecutorResolver builds the git executor used to run clone commands.
type ExecutorResolver func(logger *zap.Logger) (GitExecutor, error)

// DispatchOptionsProvider yields the shared dispatch tuning.
type DispatchOptionsProvider func() bulk.Options

// CommandBuilder assembles the clone command.
type CommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   ConfigurationProvider
	TokenProvider           TokenProvider
	ExecutorResolver        ExecutorResolver
	DispatchOptionsProvider DispatchOptionsProvider
}

// Build constructs the clone command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(positionalArgumentCeilingConstant),
		RunE:  builder.run,
	}

	command.Flags().StringArray(usernameFlagNameConstant, nil, usernameFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	organizationURL, repositoryPrefix, accountsFilePath, destinationDirectory := resolvePositionalArguments(arguments, configuration)
	pathExpander := pathutils.NewHomeExpander()
	destinationDirectory = pathExpander.Expand(destinationDirectory)

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

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	service, serviceCreationError := NewService(Dependencies{Executor: executor, Logger: logger})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	operationResults, runSummary, executionError := service.Execute(command.Context(), Options{
		OrganizationURL:  organizationURL,
		RepositoryPrefix: repositoryPrefix,
		AccountNames:     accountNames,
		Destination:      destinationDirectory,
		Token:            token,
		Dispatch:         builder.resolveDispatchOptions(),
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

func resolvePositionalArguments(arguments []string, configuration Configuration) (string, string, string, string) {
	organizationURL := configuration.OrganizationURL
	repositoryPrefix := configuration.RepositoryPrefix
	accountsFilePath := configuration.AccountsFile
	destinationDirectory := configuration.Destination
	if len(arguments) > 0 {
		organizationURL = arguments[0]
	}
	if len(arguments) > 1 {
		repositoryPrefix = arguments[1]
	}
	if len(arguments) > 2 {
		accountsFilePath = arguments[2]
	}
	if len(arguments) > 3 {
		destinationDirectory = arguments[3]
	}
	return organizationURL, repositoryPrefix, accountsFilePath, destinationDirectory
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
		return "", githubapi.ConfigurationError{Field: tokenFieldNameConstant, Message: tokenRequiredMessageConstant}
	}
	return builder.TokenProvider()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.ExecutorResolver != nil {
		return builder.ExecutorResolver(logger)
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), ui.NewConsoleCommandEventLogger(logger))
}

func (builder *CommandBuilder) resolveDispatchOptions() bulk.Options {
	if builder.DispatchOptionsProvider == nil {
		return bulk.Options{}
	}
	return builder.DispatchOptionsProvider()
}
