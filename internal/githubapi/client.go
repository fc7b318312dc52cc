package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"

	"github.com/GatorEducator/reporover/internal/ratelimit"
)

const (
	governorNotConfiguredMessageConstant = "call governor not configured"
	tokenNotConfiguredMessageConstant    = "authentication token not configured"
	repositoryResourceTemplateConstant   = "%s/%s"
	pullRequestResourceTemplateConstant  = "%s/%s#%d"
	searchResourceTemplateConstant       = "query %q"
	pathNotADirectoryMessageConstant     = "path is not a directory"
	rateLimitDetectionFragmentConstant   = "rate limit"
	defaultCallTimeoutConstant           = 30 * time.Second
	searchPageSizeCeilingConstant        = 100
)

var (
	// ErrGovernorNotConfigured indicates the client was constructed without a quota governor.
	ErrGovernorNotConfigured = errors.New(governorNotConfiguredMessageConstant)
	// ErrTokenNotConfigured indicates the client was constructed without a credential.
	ErrTokenNotConfigured = errors.New(tokenNotConfiguredMessageConstant)
)

// CallGovernor admits API calls and ingests the quota telemetry they return.
type CallGovernor interface {
	Acquire(executionContext context.Context) error
	Record(snapshot ratelimit.Snapshot)
}

// ClientDependencies enumerates the collaborators required to build a Client.
type ClientDependencies struct {
	Token       string
	Governor    CallGovernor
	HTTPClient  *http.Client
	CallTimeout time.Duration
}

// Client issues GitHub REST calls through a shared quota governor and reports
// failures using the classified error taxonomy.
type Client struct {
	api         *github.Client
	governor    CallGovernor
	callTimeout time.Duration
}

// NewClient constructs a Client from the provided dependencies.
func NewClient(dependencies ClientDependencies) (*Client, error) {
	if dependencies.Governor == nil {
		return nil, ErrGovernorNotConfigured
	}
	trimmedToken := strings.TrimSpace(dependencies.Token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenNotConfigured
	}

	callTimeout := dependencies.CallTimeout
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeoutConstant
	}

	apiClient := github.NewClient(dependencies.HTTPClient).WithAuthToken(trimmedToken)

	return &Client{api: apiClient, governor: dependencies.Governor, callTimeout: callTimeout}, nil
}

// ChangeAccess sets the collaborator permission of an account on a repository.
func (client *Client) ChangeAccess(executionContext context.Context, organization string, repository string, account string, level AccessLevel) error {
	if acquireError := client.governor.Acquire(executionContext); acquireError != nil {
		return acquireError
	}

	callContext, cancelCall := context.WithTimeout(executionContext, client.callTimeout)
	defer cancelCall()

	collaboratorOptions := &github.RepositoryAddCollaboratorOptions{Permission: level.Permission()}
	_, response, callError := client.api.Repositories.AddCollaborator(callContext, organization, repository, account, collaboratorOptions)
	client.recordQuota(response)
	if callError != nil {
		return client.classifyCallError(OperationChangeAccess, repositoryResource(organization, repository), callError)
	}
	return nil
}

// PostComment adds a comment to the numbered pull request of a repository.
func (client *Client) PostComment(executionContext context.Context, organization string, repository string, pullRequestNumber int, message string) (CommentReceipt, error) {
	if acquireError := client.governor.Acquire(executionContext); acquireError != nil {
		return CommentReceipt{}, acquireError
	}

	callContext, cancelCall := context.WithTimeout(executionContext, client.callTimeout)
	defer cancelCall()

	commentPayload := &github.IssueComment{Body: github.Ptr(message)}
	createdComment, response, callError := client.api.Issues.CreateComment(callContext, organization, repository, pullRequestNumber, commentPayload)
	client.recordQuota(response)
	if callError != nil {
		return CommentReceipt{}, client.classifyCallError(OperationPostComment, pullRequestResource(organization, repository, pullRequestNumber), callError)
	}
	return CommentReceipt{CommentURL: createdComment.GetHTMLURL()}, nil
}

// FetchStatus reports the most recent GitHub Actions workflow run of a repository.
func (client *Client) FetchStatus(executionContext context.Context, organization string, repository string) (WorkflowStatus, error) {
	if acquireError := client.governor.Acquire(executionContext); acquireError != nil {
		return WorkflowStatus{}, acquireError
	}

	callContext, cancelCall := context.WithTimeout(executionContext, client.callTimeout)
	defer cancelCall()

	listOptions := &github.ListWorkflowRunsOptions{ListOptions: github.ListOptions{PerPage: 1}}
	workflowRuns, response, callError := client.api.Actions.ListRepositoryWorkflowRuns(callContext, organization, repository, listOptions)
	client.recordQuota(response)
	if callError != nil {
		return WorkflowStatus{}, client.classifyCallError(OperationFetchStatus, repositoryResource(organization, repository), callError)
	}

	if workflowRuns == nil || len(workflowRuns.WorkflowRuns) == 0 {
		return WorkflowStatus{Found: false}, nil
	}

	latestRun := workflowRuns.WorkflowRuns[0]
	return WorkflowStatus{
		Found:        true,
		WorkflowName: latestRun.GetName(),
		Status:       latestRun.GetStatus(),
		Conclusion:   latestRun.GetConclusion(),
	}, nil
}

// ListEntries returns the immediate children of one repository directory. The
// empty path addresses the repository root.
func (client *Client) ListEntries(executionContext context.Context, organization string, repository string, directoryPath string) ([]DirectoryEntry, error) {
	if acquireError := client.governor.Acquire(executionContext); acquireError != nil {
		return nil, acquireError
	}

	callContext, cancelCall := context.WithTimeout(executionContext, client.callTimeout)
	defer cancelCall()

	fileContent, directoryContent, response, callError := client.api.Repositories.GetContents(callContext, organization, repository, directoryPath, nil)
	client.recordQuota(response)
	if callError != nil {
		return nil, client.classifyCallError(OperationListEntries, repositoryResource(organization, repository), callError)
	}

	if fileContent != nil {
		return nil, RemoteError{
			Operation:  OperationListEntries,
			Resource:   repositoryResource(organization, repository),
			StatusCode: http.StatusOK,
			Cause:      errors.New(pathNotADirectoryMessageConstant),
		}
	}

	directoryEntries := make([]DirectoryEntry, 0, len(directoryContent))
	for _, contentItem := range directoryContent {
		entryKind := EntryKindFile
		if contentItem.GetType() == entryKindDirectoryStringConstant {
			entryKind = EntryKindDirectory
		}
		directoryEntries = append(directoryEntries, DirectoryEntry{Name: contentItem.GetName(), Kind: entryKind})
	}
	return directoryEntries, nil
}

// SearchRepositories collects up to resultLimit repository descriptors for a
// search query, following pagination as needed.
func (client *Client) SearchRepositories(executionContext context.Context, searchQuery string, resultLimit int) (SearchResults, error) {
	searchResults := SearchResults{Repositories: []RepositoryDescriptor{}}
	if resultLimit <= 0 {
		return searchResults, nil
	}

	pageNumber := 1
	for len(searchResults.Repositories) < resultLimit {
		if acquireError := client.governor.Acquire(executionContext); acquireError != nil {
			return SearchResults{}, acquireError
		}

		pageSize := resultLimit - len(searchResults.Repositories)
		if pageSize > searchPageSizeCeilingConstant {
			pageSize = searchPageSizeCeilingConstant
		}

		callContext, cancelCall := context.WithTimeout(executionContext, client.callTimeout)
		searchOptions := &github.SearchOptions{ListOptions: github.ListOptions{Page: pageNumber, PerPage: pageSize}}
		pageResult, response, callError := client.api.Search.Repositories(callContext, searchQuery, searchOptions)
		cancelCall()
		client.recordQuota(response)
		if callError != nil {
			return SearchResults{}, client.classifyCallError(OperationSearchRepositories, searchResource(searchQuery), callError)
		}

		searchResults.TotalCount = pageResult.GetTotal()
		for _, repository := range pageResult.Repositories {
			searchResults.Repositories = append(searchResults.Repositories, describeRepository(repository))
			if len(searchResults.Repositories) == resultLimit {
				break
			}
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		pageNumber = response.NextPage
	}

	return searchResults, nil
}

func (client *Client) recordQuota(response *github.Response) {
	if response == nil {
		return
	}
	client.governor.Record(ratelimit.Snapshot{
		Limit:     response.Rate.Limit,
		Remaining: response.Rate.Remaining,
		ResetAt:   response.Rate.Reset.Time,
	})
}

func (client *Client) classifyCallError(operation OperationName, resource string, callError error) error {
	var rateLimitFailure *github.RateLimitError
	if errors.As(callError, &rateLimitFailure) {
		return RateLimitError{Operation: operation, Resource: resource, ResetAt: rateLimitFailure.Rate.Reset.Time, Cause: callError}
	}

	var abuseFailure *github.AbuseRateLimitError
	if errors.As(callError, &abuseFailure) {
		return RateLimitError{Operation: operation, Resource: resource, Cause: callError}
	}

	var responseFailure *github.ErrorResponse
	if errors.As(callError, &responseFailure) {
		statusCode := 0
		if responseFailure.Response != nil {
			statusCode = responseFailure.Response.StatusCode
		}
		switch {
		case statusCode == http.StatusUnauthorized:
			return AuthenticationError{Operation: operation, Resource: resource, Cause: callError}
		case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
			return NotFoundError{Operation: operation, Resource: resource, Cause: callError}
		case statusCode == http.StatusForbidden && strings.Contains(strings.ToLower(responseFailure.Message), rateLimitDetectionFragmentConstant):
			return RateLimitError{Operation: operation, Resource: resource, Cause: callError}
		case statusCode >= http.StatusInternalServerError:
			return NetworkError{Operation: operation, Resource: resource, Cause: callError}
		default:
			return RemoteError{Operation: operation, Resource: resource, StatusCode: statusCode, Cause: callError}
		}
	}

	if errors.Is(callError, context.Canceled) {
		return callError
	}

	var transportFailure *url.Error
	if errors.As(callError, &transportFailure) {
		return NetworkError{Operation: operation, Resource: resource, Cause: callError}
	}
	if errors.Is(callError, context.DeadlineExceeded) {
		return NetworkError{Operation: operation, Resource: resource, Cause: callError}
	}

	return RemoteError{Operation: operation, Resource: resource, Cause: callError}
}

func describeRepository(repository *github.Repository) RepositoryDescriptor {
	return RepositoryDescriptor{
		Name:        repository.GetName(),
		FullName:    repository.GetFullName(),
		URL:         repository.GetHTMLURL(),
		Description: repository.GetDescription(),
		Language:    repository.GetLanguage(),
		Stars:       repository.GetStargazersCount(),
		Forks:       repository.GetForksCount(),
		Size:        repository.GetSize(),
		HasIssues:   repository.GetHasIssues(),
		HasWiki:     repository.GetHasWiki(),
		License:     repository.GetLicense().GetSPDXID(),
		CreatedAt:   repository.GetCreatedAt().Time,
		UpdatedAt:   repository.GetUpdatedAt().Time,
	}
}

func repositoryResource(organization string, repository string) string {
	return fmt.Sprintf(repositoryResourceTemplateConstant, organization, repository)
}

func pullRequestResource(organization string, repository string, pullRequestNumber int) string {
	return fmt.Sprintf(pullRequestResourceTemplateConstant, organization, repository, pullRequestNumber)
}

func searchResource(searchQuery string) string {
	return fmt.Sprintf(searchResourceTemplateConstant, searchQuery)
}
