package clone_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/clone"
)

const commandTestRosterConstant = "usernames:\n  - hawk\n  - finch\n"

func writeRosterFile(testInstance *testing.T) string {
	testInstance.Helper()
	rosterPath := filepath.Join(testInstance.TempDir(), "accounts.yaml")
	require.NoError(testInstance, os.WriteFile(rosterPath, []byte(commandTestRosterConstant), 0o644))
	return rosterPath
}

func newTestCommandBuilder(executor *recordingGitExecutor) clone.CommandBuilder {
	return clone.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() clone.Configuration { return clone.DefaultConfiguration() },
		TokenProvider:         func() (string, error) { return serviceTestCredentialConstant, nil },
		ExecutorResolver:      func(*zap.Logger) (clone.GitExecutor, error) { return executor, nil },
		DispatchOptionsProvider: func() bulk.Options {
			return serialDispatchOptions()
		},
	}
}

func TestBuildReturnsCommand(testInstance *testing.T) {
	builder := clone.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
}

func TestCommandClonesRosterRepositories(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	builder := newTestCommandBuilder(executor)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	destinationDirectory := testInstance.TempDir()
	require.NoError(testInstance, command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath, destinationDirectory}))

	require.Len(testInstance, executor.recordedCommands, 2)
	require.Contains(testInstance, outputBuffer.String(), "2 succeeded, 0 failed, 0 skipped")
	require.NotContains(testInstance, outputBuffer.String(), serviceTestCredentialConstant)
}

func TestCommandRestrictsRunToRequestedUsernames(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	builder := newTestCommandBuilder(executor)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.NoError(testInstance, command.Flags().Set("username", "hawk"))
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	require.NoError(testInstance, command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath, testInstance.TempDir()}))

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Contains(testInstance, executor.recordedCommands[0].Arguments[1], "lab-4-hawk")
}

func TestCommandRequiresCredential(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	builder := newTestCommandBuilder(executor)
	builder.TokenProvider = nil
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	runError := command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath, testInstance.TempDir()})
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "token: a GitHub credential must be supplied")
	require.Empty(testInstance, executor.recordedCommands)
}

func TestCommandRequiresDestination(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	builder := newTestCommandBuilder(executor)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	runError := command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath})
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "destination")
	require.Empty(testInstance, executor.recordedCommands)
}
