package targets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	accountsPathFieldNameConstant       = "accounts_file"
	usernamesFieldNameConstant          = "usernames"
	usernameFieldNameConstant           = "username"
	accountsPathRequiredMessageConstant = "accounts file path must be provided"
	accountsLoadErrorTemplateConstant   = "failed to load accounts file: %w"
	accountsParseErrorTemplateConstant  = "failed to parse accounts file: %w"
	accountsEmptyMessageConstant        = "accounts file must list at least one username"
	accountBlankMessageConstant         = "account names must be non-empty"
	accountUnknownTemplateConstant      = "username %s is not present in the accounts file"
)

// Roster mirrors the accounts file layout.
type Roster struct {
	Usernames []string `yaml:"usernames" json:"usernames"`
}

// LoadAccounts reads the roster of account names from a YAML or JSON file.
func LoadAccounts(filePath string) ([]string, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, githubapi.ConfigurationError{Field: accountsPathFieldNameConstant, Message: accountsPathRequiredMessageConstant}
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(accountsLoadErrorTemplateConstant, readError)
	}

	var roster Roster
	if unmarshalError := yaml.Unmarshal(contentBytes, &roster); unmarshalError != nil {
		return nil, fmt.Errorf(accountsParseErrorTemplateConstant, unmarshalError)
	}

	if len(roster.Usernames) == 0 {
		return nil, githubapi.ConfigurationError{Field: usernamesFieldNameConstant, Message: accountsEmptyMessageConstant}
	}

	accountNames := make([]string, 0, len(roster.Usernames))
	for _, usernameCandidate := range roster.Usernames {
		trimmedUsername := strings.TrimSpace(usernameCandidate)
		if len(trimmedUsername) == 0 {
			return nil, githubapi.ConfigurationError{Field: usernamesFieldNameConstant, Message: accountBlankMessageConstant}
		}
		accountNames = append(accountNames, trimmedUsername)
	}
	return accountNames, nil
}

// FilterAccounts restricts the roster to the requested account names while
// preserving roster order. An empty request keeps the whole roster.
func FilterAccounts(rosterAccounts []string, requestedAccounts []string) ([]string, error) {
	if len(requestedAccounts) == 0 {
		return rosterAccounts, nil
	}

	rosterLookup := make(map[string]bool, len(rosterAccounts))
	for _, rosterAccount := range rosterAccounts {
		rosterLookup[rosterAccount] = true
	}

	requestedLookup := make(map[string]bool, len(requestedAccounts))
	for _, requestedAccount := range requestedAccounts {
		trimmedRequested := strings.TrimSpace(requestedAccount)
		if len(trimmedRequested) == 0 {
			return nil, githubapi.ConfigurationError{Field: usernameFieldNameConstant, Message: accountBlankMessageConstant}
		}
		if !rosterLookup[trimmedRequested] {
			return nil, githubapi.ConfigurationError{Field: usernameFieldNameConstant, Message: fmt.Sprintf(accountUnknownTemplateConstant, trimmedRequested)}
		}
		requestedLookup[trimmedRequested] = true
	}

	filteredAccounts := make([]string, 0, len(requestedLookup))
	for _, rosterAccount := range rosterAccounts {
		if requestedLookup[rosterAccount] {
			filteredAccounts = append(filteredAccounts, rosterAccount)
		}
	}
	return filteredAccounts, nil
}
