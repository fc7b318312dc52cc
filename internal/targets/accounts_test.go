package targets_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

const accountsTestFileNameConstant = "accounts.yaml"

func writeAccountsFile(testInstance *testing.T, contents string) string {
	testInstance.Helper()
	accountsPath := filepath.Join(testInstance.TempDir(), accountsTestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(accountsPath, []byte(contents), 0o644))
	return accountsPath
}

func TestLoadAccounts(testInstance *testing.T) {
	testCases := []struct {
		name             string
		contents         string
		expectedAccounts []string
		expectedField    string
	}{
		{
			name:             "yaml_roster",
			contents:         "usernames:\n  - hawk\n  - finch\n  - heron\n",
			expectedAccounts: []string{"hawk", "finch", "heron"},
		},
		{
			name:             "json_roster",
			contents:         `{"usernames": ["hawk", "finch"]}`,
			expectedAccounts: []string{"hawk", "finch"},
		},
		{
			name:             "padded_names_trimmed",
			contents:         "usernames:\n  - '  hawk  '\n",
			expectedAccounts: []string{"hawk"},
		},
		{
			name:          "empty_roster",
			contents:      "usernames: []\n",
			expectedField: "usernames",
		},
		{
			name:          "blank_name",
			contents:      "usernames:\n  - hawk\n  - '   '\n",
			expectedField: "usernames",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			accountsPath := writeAccountsFile(testInstance, testCase.contents)

			accountNames, loadError := targets.LoadAccounts(accountsPath)
			if len(testCase.expectedField) > 0 {
				require.Error(testInstance, loadError)
				var configurationFailure githubapi.ConfigurationError
				require.ErrorAs(testInstance, loadError, &configurationFailure)
				require.Equal(testInstance, testCase.expectedField, configurationFailure.Field)
				return
			}
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedAccounts, accountNames)
		})
	}
}

func TestLoadAccountsBlankPath(testInstance *testing.T) {
	_, loadError := targets.LoadAccounts("   ")
	require.Error(testInstance, loadError)

	var configurationFailure githubapi.ConfigurationError
	require.ErrorAs(testInstance, loadError, &configurationFailure)
	require.Equal(testInstance, "accounts_file", configurationFailure.Field)
}

func TestLoadAccountsMissingFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), accountsTestFileNameConstant)

	_, loadError := targets.LoadAccounts(missingPath)
	require.Error(testInstance, loadError)
	require.ErrorContains(testInstance, loadError, "failed to load accounts file")
}

func TestLoadAccountsMalformedContents(testInstance *testing.T) {
	accountsPath := writeAccountsFile(testInstance, "usernames: [unterminated")

	_, loadError := targets.LoadAccounts(accountsPath)
	require.Error(testInstance, loadError)
	require.ErrorContains(testInstance, loadError, "failed to parse accounts file")
}

func TestFilterAccounts(testInstance *testing.T) {
	rosterAccounts := []string{"hawk", "finch", "heron"}

	testCases := []struct {
		name              string
		requestedAccounts []string
		expectedAccounts  []string
		expectedMessage   string
	}{
		{
			name:             "empty_request_keeps_roster",
			expectedAccounts: rosterAccounts,
		},
		{
			name:              "subset_preserves_roster_order",
			requestedAccounts: []string{"heron", "hawk"},
			expectedAccounts:  []string{"hawk", "heron"},
		},
		{
			name:              "duplicate_request_collapses",
			requestedAccounts: []string{"finch", "finch"},
			expectedAccounts:  []string{"finch"},
		},
		{
			name:              "unknown_account_rejected",
			requestedAccounts: []string{"owl"},
			expectedMessage:   "username owl is not present in the accounts file",
		},
		{
			name:              "blank_request_rejected",
			requestedAccounts: []string{"   "},
			expectedMessage:   "account names must be non-empty",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			filteredAccounts, filterError := targets.FilterAccounts(rosterAccounts, testCase.requestedAccounts)
			if len(testCase.expectedMessage) > 0 {
				require.Error(testInstance, filterError)
				require.ErrorContains(testInstance, filterError, testCase.expectedMessage)
				return
			}
			require.NoError(testInstance, filterError)
			require.Equal(testInstance, testCase.expectedAccounts, filteredAccounts)
		})
	}
}
