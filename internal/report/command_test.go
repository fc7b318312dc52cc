package report_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/record"
	"github.com/GatorEducator/reporover/internal/report"
)

func newTestCommandBuilder() report.CommandBuilder {
	return report.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() report.Configuration { return report.DefaultConfiguration() },
	}
}

func TestBuildReturnsCommand(testInstance *testing.T) {
	builder := report.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
}

func TestCommandSummarizesRecord(testInstance *testing.T) {
	recordPath := filepath.Join(testInstance.TempDir(), "discovered.json")
	require.NoError(testInstance, record.Save(recordPath, savedRecordDocument()))

	builder := newTestCommandBuilder()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{recordPath}))

	commandOutput := outputBuffer.String()
	require.Contains(testInstance, commandOutput, "record: "+recordPath)
	require.Contains(testInstance, commandOutput, "command: discover")
	require.Contains(testInstance, commandOutput, "timestamp: 2025-03-15T10:30:00Z")
	require.Contains(testInstance, commandOutput, "query: language:python")
	require.Contains(testInstance, commandOutput, "required files: uv.lock")
	require.Contains(testInstance, commandOutput, "max depth 0, max filter 25, max display 10")
	require.Contains(testInstance, commandOutput, "repositories: 1")
	require.Contains(testInstance, commandOutput, "  demo-org/alpha")
}

func TestCommandUsesConfiguredRecordFile(testInstance *testing.T) {
	recordPath := filepath.Join(testInstance.TempDir(), "discovered.json")
	require.NoError(testInstance, record.Save(recordPath, savedRecordDocument()))

	builder := newTestCommandBuilder()
	builder.ConfigurationProvider = func() report.Configuration {
		return report.Configuration{RecordFile: recordPath}
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "repositories: 1")
}

func TestCommandRejectsInvalidRecord(testInstance *testing.T) {
	builder := newTestCommandBuilder()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	runError := command.RunE(command, []string{filepath.Join(testInstance.TempDir(), "absent.json")})
	require.Error(testInstance, runError)
}
