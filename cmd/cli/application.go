package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/access"
	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/clone"
	"github.com/GatorEducator/reporover/internal/comment"
	"github.com/GatorEducator/reporover/internal/discover"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/githubauth"
	"github.com/GatorEducator/reporover/internal/ratelimit"
	"github.com/GatorEducator/reporover/internal/report"
	"github.com/GatorEducator/reporover/internal/status"
	"github.com/GatorEducator/reporover/internal/utils"
	flagutils "github.com/GatorEducator/reporover/internal/utils/flags"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	applicationNameConstant                 = "reporover"
	applicationShortDescriptionConstant     = "Bulk GitHub repository operations and structural discovery"
	applicationLongDescriptionConstant      = "RepoRover grants collaborator access, posts pull request comments, fetches statuses, and clones repositories across organization cohorts, and discovers repositories whose structure matches declarative criteria."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	tokenFlagNameConstant                   = "token"
	tokenFlagUsageConstant                  = "GitHub token used to authenticate API calls."
	concurrencyFlagNameConstant             = "concurrency"
	concurrencyFlagUsageConstant            = "Override the configured worker count for bulk operations."
	retriesFlagNameConstant                 = "retries"
	retriesFlagUsageConstant                = "Override the configured retry budget for transient failures."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the application version and exit."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonConcurrencyConfigKeyConstant      = commonConfigurationKeyConstant + ".concurrency"
	commonRetriesConfigKeyConstant          = commonConfigurationKeyConstant + ".retries"
	commandsConfigurationKeyConstant        = "commands"
	accessConfigurationKeyConstant          = commandsConfigurationKeyConstant + ".access"
	commentConfigurationKeyConstant         = commandsConfigurationKeyConstant + ".comment"
	discoverConfigurationKeyConstant        = commandsConfigurationKeyConstant + ".discover"
	environmentPrefixConstant               = "REPOROVER"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "reporover CLI executed"
	rootCommandDebugMessageConstant         = "reporover CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	tokenFieldNameConstant                  = "token"
	missingTokenMessageConstant             = "a GitHub credential must be supplied via --" + tokenFlagNameConstant + " or " + githubauth.EnvRepoRoverToken
	versionOutputTemplateConstant           = applicationNameConstant + " version: %s\n"
	developmentVersionConstant              = "development"
	developmentModuleVersionConstant        = "(devel)"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Commands ApplicationCommandsConfiguration `mapstructure:"commands"`
}

// ApplicationCommonConfiguration stores logging and dispatch settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	Concurrency int    `mapstructure:"concurrency"`
	Retries     int    `mapstructure:"retries"`
}

// ApplicationCommandsConfiguration holds configuration for the CLI subcommands.
type ApplicationCommandsConfiguration struct {
	Access   access.Configuration   `mapstructure:"access"`
	Comment  comment.Configuration  `mapstructure:"comment"`
	Status   status.Configuration   `mapstructure:"status"`
	Discover discover.Configuration `mapstructure:"discover"`
	Clone    clone.Configuration    `mapstructure:"clone"`
	Report   report.Configuration   `mapstructure:"report"`
}

// Application wires the Cobra root command, configuration loader, structured
// logger, and the shared GitHub client handed to every subcommand.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	tokenFlagValue        string
	concurrencyFlagValue  int
	retriesFlagValue      int
	versionFlagValue      bool
	remoteClient          *githubapi.Client
	versionResolver       func(context.Context) string
	exitFunction          func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     resolveApplicationVersion,
		exitFunction:        os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetOut(utils.NewFlushingWriter(os.Stdout))
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.tokenFlagValue, tokenFlagNameConstant, "", tokenFlagUsageConstant)
	cobraCommand.PersistentFlags().IntVar(&application.concurrencyFlagValue, concurrencyFlagNameConstant, 0, concurrencyFlagUsageConstant)
	cobraCommand.PersistentFlags().IntVar(&application.retriesFlagValue, retriesFlagNameConstant, 0, retriesFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	accessBuilder := access.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() access.Configuration {
			return application.configuration.Commands.Access
		},
		TokenProvider: application.resolveToken,
		GatewayResolver: func(token string) (access.Gateway, error) {
			return application.resolveRemoteClient(token)
		},
		DispatchOptionsProvider: application.dispatchOptions,
	}
	accessCommand, accessBuildError := accessBuilder.Build()
	if accessBuildError == nil {
		cobraCommand.AddCommand(accessCommand)
	}

	commentBuilder := comment.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() comment.Configuration {
			return application.configuration.Commands.Comment
		},
		TokenProvider: application.resolveToken,
		GatewayResolver: func(token string) (comment.Gateway, error) {
			return application.resolveRemoteClient(token)
		},
		DispatchOptionsProvider: application.dispatchOptions,
	}
	commentCommand, commentBuildError := commentBuilder.Build()
	if commentBuildError == nil {
		cobraCommand.AddCommand(commentCommand)
	}

	statusBuilder := status.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() status.Configuration {
			return application.configuration.Commands.Status
		},
		TokenProvider: application.resolveToken,
		GatewayResolver: func(token string) (status.Gateway, error) {
			return application.resolveRemoteClient(token)
		},
		DispatchOptionsProvider: application.dispatchOptions,
	}
	statusCommand, statusBuildError := statusBuilder.Build()
	if statusBuildError == nil {
		cobraCommand.AddCommand(statusCommand)
	}

	discoverBuilder := discover.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() discover.Configuration {
			return application.configuration.Commands.Discover
		},
		TokenProvider: application.resolveToken,
		GatewayResolver: func(token string) (discover.Gateway, error) {
			return application.resolveRemoteClient(token)
		},
	}
	discoverCommand, discoverBuildError := discoverBuilder.Build()
	if discoverBuildError == nil {
		cobraCommand.AddCommand(discoverCommand)
	}

	cloneBuilder := clone.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() clone.Configuration {
			return application.configuration.Commands.Clone
		},
		TokenProvider:           application.resolveToken,
		DispatchOptionsProvider: application.dispatchOptions,
	}
	cloneCommand, cloneBuildError := cloneBuilder.Build()
	if cloneBuildError == nil {
		cobraCommand.AddCommand(cloneCommand)
	}

	reportBuilder := report.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() report.Configuration {
			return application.configuration.Commands.Report
		},
	}
	reportCommand, reportBuildError := reportBuilder.Build()
	if reportBuildError == nil {
		cobraCommand.AddCommand(reportCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	normalizedArguments := flagutils.NormalizeToggleArguments(os.Args[1:])
	if argumentsRequestVersion(normalizedArguments) {
		fmt.Printf(versionOutputTemplateConstant, application.versionResolver(application.rootCommand.Context()))
		application.exitFunction(0)
		return nil
	}

	application.rootCommand.SetArgs(normalizedArguments)
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:    string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:   string(utils.LogFormatStructured),
		commonConcurrencyConfigKeyConstant: bulk.DefaultConcurrencyConstant,
		commonRetriesConfigKeyConstant:     bulk.DefaultRetryLimitConstant,
	}
	for configurationKey, configurationValue := range access.DefaultConfigurationValues(accessConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range comment.DefaultConfigurationValues(commentConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range discover.DefaultConfigurationValues(discoverConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	configurationFilePath := pathutils.NewHomeExpander().Expand(application.configurationFilePath)

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, concurrencyFlagNameConstant) {
		application.configuration.Common.Concurrency = application.concurrencyFlagValue
	}

	if application.persistentFlagChanged(command, retriesFlagNameConstant) {
		application.configuration.Common.Retries = application.retriesFlagValue
	}

	createdLogger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = createdLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) resolveToken() (string, error) {
	tokenValue := strings.TrimSpace(application.tokenFlagValue)
	if len(tokenValue) == 0 {
		tokenValue, _ = githubauth.ResolveToken(nil)
	}
	if len(tokenValue) == 0 {
		return "", githubapi.ConfigurationError{Field: tokenFieldNameConstant, Message: missingTokenMessageConstant}
	}
	return tokenValue, nil
}

func (application *Application) resolveRemoteClient(token string) (*githubapi.Client, error) {
	if application.remoteClient != nil {
		return application.remoteClient, nil
	}

	remoteClient, clientCreationError := githubapi.NewClient(githubapi.ClientDependencies{
		Token:    token,
		Governor: ratelimit.NewGovernor(nil),
	})
	if clientCreationError != nil {
		return nil, clientCreationError
	}

	application.remoteClient = remoteClient
	return remoteClient, nil
}

func (application *Application) dispatchOptions() bulk.Options {
	return bulk.Options{
		Concurrency: application.configuration.Common.Concurrency,
		RetryLimit:  application.configuration.Common.Retries,
	}
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func argumentsRequestVersion(arguments []string) bool {
	for _, argument := range arguments {
		if argument == "--"+versionFlagNameConstant {
			return true
		}
	}
	return false
}

func resolveApplicationVersion(context.Context) string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return developmentVersionConstant
	}

	versionValue := strings.TrimSpace(buildInfo.Main.Version)
	if len(versionValue) == 0 || versionValue == developmentModuleVersionConstant {
		return developmentVersionConstant
	}

	return versionValue
}
