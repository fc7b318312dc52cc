package githubapi

import (
	"errors"
	"fmt"
	"time"
)

const (
	severityTransientStringConstant = "transient"
	severityPermanentStringConstant = "permanent"
	severityFatalStringConstant     = "fatal"

	configurationErrorTemplateConstant      = "%s: %s"
	authenticationErrorTemplateConstant     = "%s: credential rejected for %s: %s"
	rateLimitErrorTemplateConstant          = "%s: rate limit exhausted for %s: %s"
	rateLimitErrorWithResetTemplateConstant = "%s: rate limit exhausted for %s until %s: %s"
	notFoundErrorTemplateConstant           = "%s: %s not found: %s"
	networkErrorTemplateConstant            = "%s: network failure for %s: %s"
	remoteErrorTemplateConstant             = "%s: request for %s rejected with status %d: %s"
	accessLevelFieldNameConstant            = "access_level"
	resetTimestampFormatConstant            = time.RFC3339
)

// Severity classifies how the dispatcher must react to an error.
type Severity string

// Error severities.
const (
	// SeverityTransient errors are retried with bounded backoff.
	SeverityTransient Severity = Severity(severityTransientStringConstant)
	// SeverityPermanent errors fail the current target without retry.
	SeverityPermanent Severity = Severity(severityPermanentStringConstant)
	// SeverityFatal errors halt dispatching across the whole run.
	SeverityFatal Severity = Severity(severityFatalStringConstant)
)

// OperationName identifies one gateway operation for error reporting.
type OperationName string

// Gateway operation names.
const (
	OperationChangeAccess       OperationName = OperationName("ChangeAccess")
	OperationPostComment        OperationName = OperationName("PostComment")
	OperationFetchStatus        OperationName = OperationName("FetchStatus")
	OperationListEntries        OperationName = OperationName("ListEntries")
	OperationSearchRepositories OperationName = OperationName("SearchRepositories")
)

// ClassifiedError is implemented by every error the gateway reports.
type ClassifiedError interface {
	error
	Severity() Severity
}

// ClassifySeverity resolves the severity of an arbitrary error. Errors outside
// the gateway taxonomy are treated as permanent so a single target fails
// rather than the whole run.
func ClassifySeverity(candidate error) Severity {
	var classified ClassifiedError
	if errors.As(candidate, &classified) {
		return classified.Severity()
	}
	return SeverityPermanent
}

// ConfigurationError reports malformed caller input detected before any
// network activity.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Field, configurationError.Message)
}

// Severity marks configuration errors fatal.
func (configurationError ConfigurationError) Severity() Severity {
	return SeverityFatal
}

// AuthenticationError reports a credential rejected by the remote service.
type AuthenticationError struct {
	Operation OperationName
	Resource  string
	Cause     error
}

// Error describes the authentication failure without exposing the credential.
func (authenticationError AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationErrorTemplateConstant, authenticationError.Operation, authenticationError.Resource, causeMessage(authenticationError.Cause))
}

// Severity marks authentication errors fatal.
func (authenticationError AuthenticationError) Severity() Severity {
	return SeverityFatal
}

// Unwrap exposes the underlying cause.
func (authenticationError AuthenticationError) Unwrap() error {
	return authenticationError.Cause
}

// RateLimitError reports an exhausted call quota.
type RateLimitError struct {
	Operation OperationName
	Resource  string
	ResetAt   time.Time
	Cause     error
}

// Error describes the exhausted quota and, when known, its reset time.
func (rateLimitError RateLimitError) Error() string {
	if rateLimitError.ResetAt.IsZero() {
		return fmt.Sprintf(rateLimitErrorTemplateConstant, rateLimitError.Operation, rateLimitError.Resource, causeMessage(rateLimitError.Cause))
	}
	return fmt.Sprintf(rateLimitErrorWithResetTemplateConstant, rateLimitError.Operation, rateLimitError.Resource, rateLimitError.ResetAt.Format(resetTimestampFormatConstant), causeMessage(rateLimitError.Cause))
}

// Severity marks rate limit errors transient.
func (rateLimitError RateLimitError) Severity() Severity {
	return SeverityTransient
}

// Unwrap exposes the underlying cause.
func (rateLimitError RateLimitError) Unwrap() error {
	return rateLimitError.Cause
}

// NotFoundError reports a missing repository, account, or pull request.
type NotFoundError struct {
	Operation OperationName
	Resource  string
	Cause     error
}

// Error describes the missing resource.
func (notFoundError NotFoundError) Error() string {
	return fmt.Sprintf(notFoundErrorTemplateConstant, notFoundError.Operation, notFoundError.Resource, causeMessage(notFoundError.Cause))
}

// Severity marks not-found errors permanent.
func (notFoundError NotFoundError) Severity() Severity {
	return SeverityPermanent
}

// Unwrap exposes the underlying cause.
func (notFoundError NotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// NetworkError reports a transport failure, timeout, or server-side fault.
type NetworkError struct {
	Operation OperationName
	Resource  string
	Cause     error
}

// Error describes the transport failure.
func (networkError NetworkError) Error() string {
	return fmt.Sprintf(networkErrorTemplateConstant, networkError.Operation, networkError.Resource, causeMessage(networkError.Cause))
}

// Severity marks network errors transient.
func (networkError NetworkError) Severity() Severity {
	return SeverityTransient
}

// Unwrap exposes the underlying cause.
func (networkError NetworkError) Unwrap() error {
	return networkError.Cause
}

// RemoteError reports a request the service rejected for reasons outside the
// named taxonomy, such as validation failures.
type RemoteError struct {
	Operation  OperationName
	Resource   string
	StatusCode int
	Cause      error
}

// Error describes the rejection.
func (remoteError RemoteError) Error() string {
	return fmt.Sprintf(remoteErrorTemplateConstant, remoteError.Operation, remoteError.Resource, remoteError.StatusCode, causeMessage(remoteError.Cause))
}

// Severity marks remote rejections permanent.
func (remoteError RemoteError) Severity() Severity {
	return SeverityPermanent
}

// Unwrap exposes the underlying cause.
func (remoteError RemoteError) Unwrap() error {
	return remoteError.Cause
}

func causeMessage(cause error) string {
	if cause == nil {
		return "unknown cause"
	}
	return cause.Error()
}
