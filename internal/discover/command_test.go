package discover_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/discover"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/record"
)

func commandTestSearchResults() githubapi.SearchResults {
	return githubapi.SearchResults{
		TotalCount: 2,
		Repositories: []githubapi.RepositoryDescriptor{
			searchHit("demo-org/alpha"),
			searchHit("demo-org/beta"),
		},
	}
}

func newTestCommandBuilder(gateway *scriptedDiscoveryGateway) discover.CommandBuilder {
	return discover.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() discover.Configuration { return discover.DefaultConfiguration() },
		TokenProvider:         func() (string, error) { return "test-credential", nil },
		GatewayResolver:       func(string) (discover.Gateway, error) { return gateway, nil },
	}
}

func TestBuildReturnsCommand(testInstance *testing.T) {
	builder := discover.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
}

func TestCommandPrintsMatchingRepositories(testInstance *testing.T) {
	gateway := &scriptedDiscoveryGateway{
		searchResults: commandTestSearchResults(),
	}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.NoError(testInstance, command.Flags().Set("language", "python"))
	require.NoError(testInstance, command.Flags().Set("stars", "25"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))

	require.Equal(testInstance, []string{"language:python stars:>=25"}, gateway.recordedQueries)
	require.Contains(testInstance, outputBuffer.String(), "query: language:python stars:>=25")
	require.Contains(testInstance, outputBuffer.String(), "demo-org/alpha")
	require.Contains(testInstance, outputBuffer.String(), "https://github.com/demo-org/alpha")
	require.Contains(testInstance, outputBuffer.String(), "2 of 2 candidates reported")
}

func TestCommandWritesDiscoveryRecord(testInstance *testing.T) {
	gateway := &scriptedDiscoveryGateway{
		searchResults: commandTestSearchResults(),
	}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	recordPath := filepath.Join(testInstance.TempDir(), "discovered.json")
	require.NoError(testInstance, command.Flags().Set("language", "python"))
	require.NoError(testInstance, command.Flags().Set("output", recordPath))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "discovery record written to "+recordPath)

	loadedDocument, loadError := record.Load(recordPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "discover", loadedDocument.RepoRover.Configuration.Command)
	require.Len(testInstance, loadedDocument.RepoRover.Repositories, 2)
}

func TestCommandHonorsIssueTrackerFilter(testInstance *testing.T) {
	searchResults := commandTestSearchResults()
	searchResults.Repositories[1].HasIssues = false
	gateway := &scriptedDiscoveryGateway{searchResults: searchResults}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	require.NoError(testInstance, command.Flags().Set("issues-enabled", "true"))

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "demo-org/alpha")
	require.NotContains(testInstance, outputBuffer.String(), "demo-org/beta")
}

func TestCommandReportsWhenNothingMatches(testInstance *testing.T) {
	gateway := &scriptedDiscoveryGateway{}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.RunE(command, []string{}))
	require.Contains(testInstance, outputBuffer.String(), "no repositories matched the criteria")
}

func TestCommandRequiresCredential(testInstance *testing.T) {
	gateway := &scriptedDiscoveryGateway{}
	builder := newTestCommandBuilder(gateway)
	builder.TokenProvider = nil
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	runError := command.RunE(command, []string{})
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "token: a GitHub credential must be supplied")
	require.Empty(testInstance, gateway.recordedQueries)
}

func TestCommandRejectsMalformedDateFlag(testInstance *testing.T) {
	gateway := &scriptedDiscoveryGateway{}
	builder := newTestCommandBuilder(gateway)
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Flags().Set("created-after", "yesterday"))
	runError := command.RunE(command, []string{})
	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), "created_after")
	require.Empty(testInstance, gateway.recordedQueries)
}
