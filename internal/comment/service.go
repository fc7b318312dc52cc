package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

const (
	operationNameConstant           = "comment"
	gatewayMissingMessageConstant   = "comment gateway not configured"
	messageFieldNameConstant        = "message"
	messageRequiredMessageConstant  = "a comment message must be provided"
	commentSuccessTemplateConstant  = "commented on pull request #%d"
	logMessageCommentPostedConstant = "pull request comment posted"
	logFieldRepositoryConstant      = "repository"
	logFieldPullRequestConstant     = "pull_request"
	logFieldCommentURLConstant      = "comment_url"
)

// ErrGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// Gateway exposes the remote operation the comment service performs.
type Gateway interface {
	PostComment(executionContext context.Context, organization string, repository string, pullRequestNumber int, message string) (githubapi.CommentReceipt, error)
}

// Dependencies enumerates the collaborators required by the comment service.
type Dependencies struct {
	Gateway Gateway
	Logger  *zap.Logger
}

// Options configures one bulk comment run.
type Options struct {
	OrganizationURL   string
	RepositoryPrefix  string
	AccountNames      []string
	PullRequestNumber int
	Message           string
	Dispatch          bulk.Options
}

// Service posts a greeting comment on every target's pull request.
type Service struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: dependencies.Gateway, logger: logger}, nil
}

// Execute resolves the repository targets and comments on each one's pull request.
func (service *Service) Execute(executionContext context.Context, options Options) ([]bulk.OperationResult, bulk.Summary, error) {
	if len(strings.TrimSpace(options.Message)) == 0 {
		return nil, bulk.Summary{}, githubapi.ConfigurationError{Field: messageFieldNameConstant, Message: messageRequiredMessageConstant}
	}

	resolvedTargets, resolveError := targets.Resolve(options.OrganizationURL, options.RepositoryPrefix, options.AccountNames)
	if resolveError != nil {
		return nil, bulk.Summary{}, resolveError
	}

	operation := &commentOperation{service: service, options: options}
	dispatcher := bulk.NewDispatcher(options.Dispatch)
	return dispatcher.Run(executionContext, resolvedTargets, operation)
}

type commentOperation struct {
	service *Service
	options Options
}

func (operation *commentOperation) Name() string {
	return operationNameConstant
}

func (operation *commentOperation) Execute(executionContext context.Context, operationTarget targets.Target) (bulk.OperationOutput, error) {
	greetingMessage := ComposeGreeting(operationTarget.Account, operation.options.Message)
	commentReceipt, commentError := operation.service.gateway.PostComment(
		executionContext,
		operationTarget.Organization,
		operationTarget.Repository,
		operation.options.PullRequestNumber,
		greetingMessage,
	)
	if commentError != nil {
		return bulk.OperationOutput{}, commentError
	}

	operation.service.logger.Debug(
		logMessageCommentPostedConstant,
		zap.String(logFieldRepositoryConstant, operationTarget.FullName()),
		zap.Int(logFieldPullRequestConstant, operation.options.PullRequestNumber),
		zap.String(logFieldCommentURLConstant, commentReceipt.CommentURL),
	)

	return bulk.OperationOutput{
		Message: fmt.Sprintf(commentSuccessTemplateConstant, operation.options.PullRequestNumber),
		Payload: commentReceipt,
	}, nil
}
