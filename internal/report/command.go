package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/record"
	pathutils "github.com/GatorEducator/reporover/internal/utils/path"
)

const (
	commandUseConstant                = "report [record-file]"
	commandShortDescriptionConstant   = "Summarize a saved discovery record"
	commandLongDescriptionConstant    = "report validates a discovery record written by the discover command and prints the configuration that produced it together with the repositories it holds."
	positionalArgumentCeilingConstant = 1

	recordLineTemplateConstant      = "record: %s\n"
	commandLineTemplateConstant     = "command: %s\n"
	timestampLineTemplateConstant   = "timestamp: %s\n"
	queryLineTemplateConstant       = "query: %s\n"
	filesLineTemplateConstant       = "required files: %s\n"
	boundsLineTemplateConstant      = "max depth %d, max filter %d, max display %d\n"
	repositoryCountTemplateConstant = "repositories: %d\n"
	repositoryLineTemplateConstant  = "  %s\n"
	listSeparatorConstant           = ", "
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the report configuration section.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the report command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(positionalArgumentCeilingConstant),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	recordPath := configuration.RecordFile
	if len(arguments) > 0 {
		recordPath = arguments[0]
	}
	recordPath = pathutils.NewHomeExpander().Expand(recordPath)

	service := NewService(Dependencies{Logger: builder.resolveLogger()})
	document, executionError := service.Execute(Options{RecordPath: recordPath})
	if executionError != nil {
		return executionError
	}

	writeSummary(command.OutOrStdout(), recordPath, document)
	return nil
}

func writeSummary(outputWriter io.Writer, recordPath string, document record.Document) {
	recordConfiguration := document.RepoRover.Configuration
	fmt.Fprintf(outputWriter, recordLineTemplateConstant, recordPath)
	fmt.Fprintf(outputWriter, commandLineTemplateConstant, recordConfiguration.Command)
	if len(recordConfiguration.Timestamp) > 0 {
		fmt.Fprintf(outputWriter, timestampLineTemplateConstant, recordConfiguration.Timestamp)
	}
	if len(recordConfiguration.SearchQuery) > 0 {
		fmt.Fprintf(outputWriter, queryLineTemplateConstant, recordConfiguration.SearchQuery)
	}
	if len(recordConfiguration.RequiredFiles) > 0 {
		fmt.Fprintf(outputWriter, filesLineTemplateConstant, strings.Join(recordConfiguration.RequiredFiles, listSeparatorConstant))
	}
	fmt.Fprintf(outputWriter, boundsLineTemplateConstant, recordConfiguration.MaxDepth, recordConfiguration.MaxFilter, recordConfiguration.MaxDisplay)
	fmt.Fprintf(outputWriter, repositoryCountTemplateConstant, len(document.RepoRover.Repositories))
	for _, repositoryDescriptor := range document.RepoRover.Repositories {
		fmt.Fprintf(outputWriter, repositoryLineTemplateConstant, repositoryDescriptor.FullName)
	}
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
