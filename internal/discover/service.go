package discover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/record"
	"github.com/GatorEducator/reporover/internal/structure"
)

const (
	commandNameConstant                 = "discover"
	gatewayMissingMessageConstant       = "remote gateway not configured"
	criteriaDateLayoutConstant          = "2006-01-02"
	createdAfterFieldNameConstant       = "created_after"
	updatedAfterFieldNameConstant       = "updated_after"
	maxDepthFieldNameConstant           = "max_depth"
	dateFormatMessageConstant           = "date must use the YYYY-MM-DD format"
	maxDepthNegativeMessageConstant     = "max depth must not be negative"
	fullNameSeparatorConstant           = "/"
	malformedFullNameTemplateConstant   = "repository name %q is not in owner/name form"
	recordTimestampFormatConstant       = time.RFC3339
	logMessageCandidateSkippedConstant  = "candidate skipped"
	logMessageRepositoryMatchedConstant = "repository matched"
	logMessageRecordWrittenConstant     = "discovery record written"
	logFieldRepositoryConstant          = "repository"
	logFieldReasonConstant              = "reason"
	logFieldRecordPathConstant          = "record_path"
	logFieldSearchQueryConstant         = "search_query"
	logFieldCandidateCountConstant      = "candidate_count"
	logMessageSearchCompletedConstant   = "repository search completed"
)

// ErrGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// Gateway captures the remote operations discovery depends on.
type Gateway interface {
	SearchRepositories(executionContext context.Context, searchQuery string, resultLimit int) (githubapi.SearchResults, error)
	ListEntries(executionContext context.Context, organization string, repository string, directoryPath string) ([]githubapi.DirectoryEntry, error)
}

// Clock abstracts wall-clock access so record timestamps stay testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Dependencies enumerates the collaborators required by the discovery service.
type Dependencies struct {
	Gateway Gateway
	Clock   Clock
	Logger  *zap.Logger
}

// Options configures one discovery run.
type Options struct {
	Criteria      Criteria
	IssuesEnabled *bool
	WikiEnabled   *bool
	RequiredFiles []string
	MaxDepth      int
	MaxFilter     int
	MaxResults    int
	OutputFile    string
}

// RunReport summarizes one discovery run for rendering.
type RunReport struct {
	CandidateCount int
	Document       record.Document
}

// Service finds repositories that satisfy search and structure criteria.
type Service struct {
	gateway Gateway
	clock   Clock
	logger  *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: dependencies.Gateway, clock: clock, logger: logger}, nil
}

// Execute searches for candidate repositories, confirms any required files
// through a bounded traversal, and assembles the resulting discovery record.
// The record is persisted when an output path is configured.
func (service *Service) Execute(executionContext context.Context, options Options) (RunReport, error) {
	if validationError := validateOptions(options); validationError != nil {
		return RunReport{}, validationError
	}

	maxFilter := options.MaxFilter
	if maxFilter <= 0 {
		maxFilter = defaultMaxFilterConstant
	}
	maxResults := options.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResultsConstant
	}

	searchQuery := BuildSearchQuery(options.Criteria)
	searchResults, searchError := service.gateway.SearchRepositories(executionContext, searchQuery, maxFilter)
	if searchError != nil {
		return RunReport{}, searchError
	}
	candidateDescriptors := filterCandidates(searchResults.Repositories, options.IssuesEnabled, options.WikiEnabled)
	service.logger.Debug(
		logMessageSearchCompletedConstant,
		zap.String(logFieldSearchQueryConstant, searchQuery),
		zap.Int(logFieldCandidateCountConstant, len(candidateDescriptors)),
	)

	matchedDescriptors, matchError := service.selectMatching(executionContext, candidateDescriptors, options.RequiredFiles, options.MaxDepth, maxResults)
	if matchError != nil {
		return RunReport{}, matchError
	}

	document := service.buildDocument(options, searchQuery, maxFilter, maxResults, matchedDescriptors)
	if len(options.OutputFile) > 0 {
		if saveError := record.Save(options.OutputFile, document); saveError != nil {
			return RunReport{}, saveError
		}
		service.logger.Debug(logMessageRecordWrittenConstant, zap.String(logFieldRecordPathConstant, options.OutputFile))
	}

	return RunReport{CandidateCount: len(candidateDescriptors), Document: document}, nil
}

func validateOptions(options Options) error {
	if dateError := validateCriteriaDate(options.Criteria.CreatedAfter, createdAfterFieldNameConstant); dateError != nil {
		return dateError
	}
	if dateError := validateCriteriaDate(options.Criteria.UpdatedAfter, updatedAfterFieldNameConstant); dateError != nil {
		return dateError
	}
	if options.MaxDepth < 0 {
		return githubapi.ConfigurationError{Field: maxDepthFieldNameConstant, Message: maxDepthNegativeMessageConstant}
	}
	return nil
}

func validateCriteriaDate(dateValue string, fieldName string) error {
	if len(dateValue) == 0 {
		return nil
	}
	if _, parseError := time.Parse(criteriaDateLayoutConstant, dateValue); parseError != nil {
		return githubapi.ConfigurationError{Field: fieldName, Message: dateFormatMessageConstant}
	}
	return nil
}

func filterCandidates(repositoryDescriptors []githubapi.RepositoryDescriptor, issuesEnabled *bool, wikiEnabled *bool) []githubapi.RepositoryDescriptor {
	filteredDescriptors := make([]githubapi.RepositoryDescriptor, 0, len(repositoryDescriptors))
	for _, repositoryDescriptor := range repositoryDescriptors {
		if issuesEnabled != nil && repositoryDescriptor.HasIssues != *issuesEnabled {
			continue
		}
		if wikiEnabled != nil && repositoryDescriptor.HasWiki != *wikiEnabled {
			continue
		}
		filteredDescriptors = append(filteredDescriptors, repositoryDescriptor)
	}
	return filteredDescriptors
}

// selectMatching keeps candidates whose repositories contain every required
// file, stopping once enough matches are collected. Candidates whose
// traversal fails for non-fatal reasons are skipped so one broken repository
// does not end the search.
func (service *Service) selectMatching(executionContext context.Context, candidateDescriptors []githubapi.RepositoryDescriptor, requiredFiles []string, maxDepth int, maxResults int) ([]githubapi.RepositoryDescriptor, error) {
	if len(requiredFiles) == 0 {
		if len(candidateDescriptors) > maxResults {
			return candidateDescriptors[:maxResults], nil
		}
		return candidateDescriptors, nil
	}

	matcher, matcherError := structure.NewMatcher(structure.Dependencies{Lister: service.gateway})
	if matcherError != nil {
		return nil, matcherError
	}

	matchedDescriptors := make([]githubapi.RepositoryDescriptor, 0, maxResults)
	for _, candidateDescriptor := range candidateDescriptors {
		if len(matchedDescriptors) == maxResults {
			break
		}
		organizationName, repositoryName, splitError := splitFullName(candidateDescriptor.FullName)
		if splitError != nil {
			service.logger.Warn(
				logMessageCandidateSkippedConstant,
				zap.String(logFieldRepositoryConstant, candidateDescriptor.FullName),
				zap.String(logFieldReasonConstant, splitError.Error()),
			)
			continue
		}
		matchReport, matchError := matcher.Match(executionContext, organizationName, repositoryName, requiredFiles, maxDepth)
		if matchError != nil {
			if githubapi.ClassifySeverity(matchError) == githubapi.SeverityFatal {
				return nil, matchError
			}
			service.logger.Warn(
				logMessageCandidateSkippedConstant,
				zap.String(logFieldRepositoryConstant, candidateDescriptor.FullName),
				zap.String(logFieldReasonConstant, matchError.Error()),
			)
			continue
		}
		if !matchReport.Matched {
			continue
		}
		service.logger.Debug(logMessageRepositoryMatchedConstant, zap.String(logFieldRepositoryConstant, candidateDescriptor.FullName))
		matchedDescriptors = append(matchedDescriptors, candidateDescriptor)
	}
	return matchedDescriptors, nil
}

func (service *Service) buildDocument(options Options, searchQuery string, maxFilter int, maxResults int, matchedDescriptors []githubapi.RepositoryDescriptor) record.Document {
	recordDescriptors := make([]record.Descriptor, 0, len(matchedDescriptors))
	for _, matchedDescriptor := range matchedDescriptors {
		recordDescriptors = append(recordDescriptors, record.NewDescriptor(matchedDescriptor))
	}
	recordConfiguration := record.Configuration{
		Command:       commandNameConstant,
		Language:      options.Criteria.Language,
		MinimumStars:  options.Criteria.MinimumStars,
		MinimumForks:  options.Criteria.MinimumForks,
		CreatedAfter:  options.Criteria.CreatedAfter,
		UpdatedAfter:  options.Criteria.UpdatedAfter,
		RequiredFiles: options.RequiredFiles,
		Topics:        options.Criteria.Topics,
		License:       options.Criteria.License,
		MinimumSize:   options.Criteria.MinimumSize,
		IssuesEnabled: options.IssuesEnabled,
		WikiEnabled:   options.WikiEnabled,
		MaxDepth:      options.MaxDepth,
		MaxFilter:     maxFilter,
		MaxDisplay:    maxResults,
		SearchQuery:   searchQuery,
		Timestamp:     service.clock.Now().UTC().Format(recordTimestampFormatConstant),
	}
	return record.Document{RepoRover: record.Contents{Configuration: recordConfiguration, Repositories: recordDescriptors}}
}

func splitFullName(fullName string) (string, string, error) {
	organizationName, repositoryName, separatorFound := strings.Cut(fullName, fullNameSeparatorConstant)
	if !separatorFound || len(organizationName) == 0 || len(repositoryName) == 0 {
		return "", "", fmt.Errorf(malformedFullNameTemplateConstant, fullName)
	}
	return organizationName, repositoryName, nil
}
