package status_test

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
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/status"
)

const commandTestRosterConstant = "usernames:\n  - hawk\n  - finch\n"

func writeRosterFile(testInstance *testing.T) string {
	testInstance.Helper()
	rosterPath := filepath.Join(testInstance.TempDir(), "accounts.yaml")
	require.NoError(testInstance, os.WriteFile(rosterPath, []byte(commandTestRosterConstant), 0o644))
	return rosterPath
}

func newTestCommandBuilder(gateway *recordingStatusGateway) status.CommandBuilder {
	return status.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() status.Configuration { return status.DefaultConfiguration() },
		TokenProvider:         func() (string, error) { return "test-credential", nil },
		GatewayResolver:       func(string) (status.Gateway, error) { return gateway, nil },
		DispatchOptionsProvider: func() bulk.Options {
			return serialDispatchOptions()
		},
	}
}

func TestBuildReturnsCommand(testInstance *testing.T) {
	builder := status.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
}

func TestCommandPrintsWorkflowOutcomes(testInstance *testing.T) {
	gateway := &recordingStatusGateway{
		workflowStatuses: map[string]githubapi.WorkflowStatus{
			"lab-3-hawk":  {Found: true, WorkflowName: "grade", Status: "completed", Conclusion: "success"},
			"lab-3-finch": {Found: false},
		},
	}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	require.NoError(testInstance, command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath}))

	require.Contains(testInstance, outputBuffer.String(), `latest run "grade": completed (success)`)
	require.Contains(testInstance, outputBuffer.String(), "no workflow runs found")
	require.Contains(testInstance, outputBuffer.String(), "2 succeeded, 0 failed, 0 skipped")
}

func TestCommandWritesReportFile(testInstance *testing.T) {
	gateway := &recordingStatusGateway{
		workflowStatuses: map[string]githubapi.WorkflowStatus{
			"lab-3-hawk":  {Found: true, WorkflowName: "grade", Status: "completed", Conclusion: "success"},
			"lab-3-finch": {Found: true, WorkflowName: "grade", Status: "completed", Conclusion: "failure"},
		},
	}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	reportPath := filepath.Join(testInstance.TempDir(), "statuses.csv")
	require.NoError(testInstance, command.Flags().Set("report", reportPath))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	require.NoError(testInstance, command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath}))

	require.Contains(testInstance, outputBuffer.String(), "report written to "+reportPath)
	reportContents, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContents), "repository,workflow,status,conclusion\n")
	require.Contains(testInstance, string(reportContents), "demo-org/lab-3-hawk,grade,completed,success\n")
	require.Contains(testInstance, string(reportContents), "demo-org/lab-3-finch,grade,completed,failure\n")
}

func TestCommandRequiresCredential(testInstance *testing.T) {
	gateway := &recordingStatusGateway{}
	builder := newTestCommandBuilder(gateway)
	builder.TokenProvider = nil
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	rosterPath := writeRosterFile(testInstance)
	runError := command.RunE(command, []string{serviceTestOrganizationURLConstant, serviceTestPrefixConstant, rosterPath})
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "token: a GitHub credential must be supplied")
	require.Empty(testInstance, gateway.fetchedTargets)
}
