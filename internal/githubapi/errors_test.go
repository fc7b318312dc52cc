package githubapi_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

func TestClassifySeverity(testInstance *testing.T) {
	testCases := []struct {
		name             string
		candidate        error
		expectedSeverity githubapi.Severity
	}{
		{
			name:             "configuration_error_is_fatal",
			candidate:        githubapi.ConfigurationError{Field: "organization", Message: "organization URL is required"},
			expectedSeverity: githubapi.SeverityFatal,
		},
		{
			name:             "authentication_error_is_fatal",
			candidate:        githubapi.AuthenticationError{Operation: githubapi.OperationChangeAccess, Resource: "demo-org/lab-1-hawk"},
			expectedSeverity: githubapi.SeverityFatal,
		},
		{
			name:             "rate_limit_error_is_transient",
			candidate:        githubapi.RateLimitError{Operation: githubapi.OperationFetchStatus, Resource: "demo-org/lab-1-hawk"},
			expectedSeverity: githubapi.SeverityTransient,
		},
		{
			name:             "network_error_is_transient",
			candidate:        githubapi.NetworkError{Operation: githubapi.OperationListEntries, Resource: "demo-org/lab-1-hawk"},
			expectedSeverity: githubapi.SeverityTransient,
		},
		{
			name:             "not_found_error_is_permanent",
			candidate:        githubapi.NotFoundError{Operation: githubapi.OperationFetchStatus, Resource: "demo-org/lab-1-hawk"},
			expectedSeverity: githubapi.SeverityPermanent,
		},
		{
			name:             "remote_error_is_permanent",
			candidate:        githubapi.RemoteError{Operation: githubapi.OperationPostComment, Resource: "demo-org/lab-1-hawk#7", StatusCode: 422},
			expectedSeverity: githubapi.SeverityPermanent,
		},
		{
			name:             "wrapped_classified_error_keeps_severity",
			candidate:        fmt.Errorf("dispatch failed: %w", githubapi.RateLimitError{Operation: githubapi.OperationChangeAccess, Resource: "demo-org/lab-1-hawk"}),
			expectedSeverity: githubapi.SeverityTransient,
		},
		{
			name:             "unclassified_error_defaults_to_permanent",
			candidate:        errors.New("unexpected failure"),
			expectedSeverity: githubapi.SeverityPermanent,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedSeverity, githubapi.ClassifySeverity(testCase.candidate))
		})
	}
}

func TestErrorMessagesNameTargetAndCause(testInstance *testing.T) {
	resetInstant := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name              string
		candidate         error
		expectedFragments []string
	}{
		{
			name: "authentication_error_names_resource",
			candidate: githubapi.AuthenticationError{
				Operation: githubapi.OperationChangeAccess,
				Resource:  "demo-org/lab-1-hawk",
				Cause:     errors.New("401 Bad credentials"),
			},
			expectedFragments: []string{"ChangeAccess", "demo-org/lab-1-hawk", "Bad credentials"},
		},
		{
			name: "rate_limit_error_includes_reset_time",
			candidate: githubapi.RateLimitError{
				Operation: githubapi.OperationFetchStatus,
				Resource:  "demo-org/lab-1-hawk",
				ResetAt:   resetInstant,
				Cause:     errors.New("403 API rate limit exceeded"),
			},
			expectedFragments: []string{"FetchStatus", "demo-org/lab-1-hawk", "2026-03-01T12:00:00Z"},
		},
		{
			name: "remote_error_includes_status",
			candidate: githubapi.RemoteError{
				Operation:  githubapi.OperationPostComment,
				Resource:   "demo-org/lab-1-hawk#7",
				StatusCode: 422,
				Cause:      errors.New("Validation Failed"),
			},
			expectedFragments: []string{"PostComment", "demo-org/lab-1-hawk#7", "422"},
		},
		{
			name: "network_error_names_cause",
			candidate: githubapi.NetworkError{
				Operation: githubapi.OperationListEntries,
				Resource:  "demo-org/lab-1-hawk",
				Cause:     errors.New("connection reset"),
			},
			expectedFragments: []string{"ListEntries", "demo-org/lab-1-hawk", "connection reset"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			for _, expectedFragment := range testCase.expectedFragments {
				require.Contains(testInstance, testCase.candidate.Error(), expectedFragment)
			}
		})
	}
}
