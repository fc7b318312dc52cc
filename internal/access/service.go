package access

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/comment"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

const (
	operationNameConstant           = "access"
	gatewayMissingMessageConstant   = "access gateway not configured"
	changeSuccessTemplateConstant   = "access level set to %q"
	notifySuccessTemplateConstant   = "access level set to %q, notified via pull request #%d"
	notifyFailureTemplateConstant   = "failed to notify %s after changing access: %w"
	logMessageAccessChangedConstant = "access level changed"
	logFieldRepositoryConstant      = "repository"
	logFieldAccountConstant         = "account"
	logFieldAccessLevelConstant     = "access_level"
)

// ErrGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// Gateway exposes the remote operations the access service performs.
type Gateway interface {
	ChangeAccess(executionContext context.Context, organization string, repository string, account string, level githubapi.AccessLevel) error
	PostComment(executionContext context.Context, organization string, repository string, pullRequestNumber int, message string) (githubapi.CommentReceipt, error)
}

// Dependencies enumerates the collaborators required by the access service.
type Dependencies struct {
	Gateway Gateway
	Logger  *zap.Logger
}

// Options configures one bulk access change.
type Options struct {
	OrganizationURL     string
	RepositoryPrefix    string
	AccountNames        []string
	AccessLevel         githubapi.AccessLevel
	NotifyAccounts      bool
	PullRequestNumber   int
	NotificationMessage string
	Dispatch            bulk.Options
}

// Service applies collaborator access changes across repository targets.
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

// Execute resolves the repository targets and changes every account's access
// level, optionally posting a notification comment after each change.
func (service *Service) Execute(executionContext context.Context, options Options) ([]bulk.OperationResult, bulk.Summary, error) {
	resolvedTargets, resolveError := targets.Resolve(options.OrganizationURL, options.RepositoryPrefix, options.AccountNames)
	if resolveError != nil {
		return nil, bulk.Summary{}, resolveError
	}

	operation := &accessOperation{service: service, options: options}
	dispatcher := bulk.NewDispatcher(options.Dispatch)
	return dispatcher.Run(executionContext, resolvedTargets, operation)
}

type accessOperation struct {
	service *Service
	options Options
}

func (operation *accessOperation) Name() string {
	return operationNameConstant
}

func (operation *accessOperation) Execute(executionContext context.Context, operationTarget targets.Target) (bulk.OperationOutput, error) {
	changeError := operation.service.gateway.ChangeAccess(
		executionContext,
		operationTarget.Organization,
		operationTarget.Repository,
		operationTarget.Account,
		operation.options.AccessLevel,
	)
	if changeError != nil {
		return bulk.OperationOutput{}, changeError
	}

	operation.service.logger.Debug(
		logMessageAccessChangedConstant,
		zap.String(logFieldRepositoryConstant, operationTarget.FullName()),
		zap.String(logFieldAccountConstant, operationTarget.Account),
		zap.String(logFieldAccessLevelConstant, string(operation.options.AccessLevel)),
	)

	if !operation.options.NotifyAccounts {
		return bulk.OperationOutput{Message: fmt.Sprintf(changeSuccessTemplateConstant, operation.options.AccessLevel)}, nil
	}

	notificationMessage := comment.ComposeNotification(operationTarget.Account, operation.options.AccessLevel, operation.options.NotificationMessage)
	_, commentError := operation.service.gateway.PostComment(
		executionContext,
		operationTarget.Organization,
		operationTarget.Repository,
		operation.options.PullRequestNumber,
		notificationMessage,
	)
	if commentError != nil {
		return bulk.OperationOutput{}, fmt.Errorf(notifyFailureTemplateConstant, operationTarget.Account, commentError)
	}

	return bulk.OperationOutput{
		Message: fmt.Sprintf(notifySuccessTemplateConstant, operation.options.AccessLevel, operation.options.PullRequestNumber),
	}, nil
}
