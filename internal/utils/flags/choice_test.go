package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "read",
			choices:        []string{"read", "triage", "write"},
			description:    "Collaborator access level to grant.",
			expectedOutput: "`<READ|triage|write>` Collaborator access level to grant.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log output encoding.",
			expectedOutput: "`<structured|CONSOLE>` Log output encoding.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "",
			expectedOutput: "`<STRUCTURED|console>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "write",
			choices:        []string{"write", "write", "admin", "admin"},
			description:    "Select a level.",
			expectedOutput: "`<WRITE|admin>` Select a level.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "maintain",
			choices:        []string{" maintain ", " admin "},
			description:    "Pick a level.",
			expectedOutput: "`<MAINTAIN|admin>` Pick a level.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}
