package clone

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/execshell"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

const (
	operationNameConstant                       = "clone"
	executorMissingMessageConstant              = "git executor not configured"
	destinationFieldNameConstant                = "destination"
	destinationRequiredMessageConstant          = "a destination directory must be provided"
	tokenFieldNameConstant                      = "token"
	tokenRequiredMessageConstant                = "a GitHub credential must be supplied"
	destinationExistsTemplateConstant           = "destination %s already exists"
	cloneFailureTemplateConstant                = "failed to clone %s: %w"
	cloneSuccessTemplateConstant                = "cloned into %s"
	cloneURLTemplateConstant                    = "https://%s@github.com/%s/%s.git"
	gitCloneSubcommandConstant                  = "clone"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	logMessageRepositoryClonedConstant          = "repository cloned"
	logFieldRepositoryConstant                  = "repository"
	logFieldDestinationConstant                 = "destination"
)

// ErrExecutorNotConfigured indicates the service was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// GitExecutor runs git commands on behalf of the clone service.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the filesystem checks the clone service performs.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Dependencies enumerates the collaborators required by the clone service.
type Dependencies struct {
	Executor   GitExecutor
	FileSystem FileSystem
	Logger     *zap.Logger
}

// Options configures one bulk clone run.
type Options struct {
	OrganizationURL  string
	RepositoryPrefix string
	AccountNames     []string
	Destination      string
	Token            string
	Dispatch         bulk.Options
}

// Service clones every repository target into the destination directory.
type Service struct {
	executor   GitExecutor
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = osFileSystem{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{executor: dependencies.Executor, fileSystem: fileSystem, logger: logger}, nil
}

// Execute resolves the repository targets and clones each one beneath the
// destination directory. A target whose local path already exists fails
// without invoking git.
func (service *Service) Execute(executionContext context.Context, options Options) ([]bulk.OperationResult, bulk.Summary, error) {
	trimmedDestination := strings.TrimSpace(options.Destination)
	if len(trimmedDestination) == 0 {
		return nil, bulk.Summary{}, githubapi.ConfigurationError{Field: destinationFieldNameConstant, Message: destinationRequiredMessageConstant}
	}
	if len(strings.TrimSpace(options.Token)) == 0 {
		return nil, bulk.Summary{}, githubapi.ConfigurationError{Field: tokenFieldNameConstant, Message: tokenRequiredMessageConstant}
	}

	resolvedTargets, resolveError := targets.Resolve(options.OrganizationURL, options.RepositoryPrefix, options.AccountNames)
	if resolveError != nil {
		return nil, bulk.Summary{}, resolveError
	}

	operation := &cloneOperation{service: service, destination: trimmedDestination, token: strings.TrimSpace(options.Token)}
	dispatcher := bulk.NewDispatcher(options.Dispatch)
	return dispatcher.Run(executionContext, resolvedTargets, operation)
}

type cloneOperation struct {
	service     *Service
	destination string
	token       string
}

func (operation *cloneOperation) Name() string {
	return operationNameConstant
}

func (operation *cloneOperation) Execute(executionContext context.Context, operationTarget targets.Target) (bulk.OperationOutput, error) {
	localPath := filepath.Join(operation.destination, operationTarget.Repository)
	if _, statError := operation.service.fileSystem.Stat(localPath); statError == nil {
		return bulk.OperationOutput{}, fmt.Errorf(destinationExistsTemplateConstant, localPath)
	}

	cloneURL := fmt.Sprintf(cloneURLTemplateConstant, operation.token, operationTarget.Organization, operationTarget.Repository)
	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, cloneURL, localPath},
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	}
	if _, executionError := operation.service.executor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return bulk.OperationOutput{}, fmt.Errorf(cloneFailureTemplateConstant, operationTarget.FullName(), executionError)
	}

	operation.service.logger.Debug(
		logMessageRepositoryClonedConstant,
		zap.String(logFieldRepositoryConstant, operationTarget.FullName()),
		zap.String(logFieldDestinationConstant, localPath),
	)

	return bulk.OperationOutput{Message: fmt.Sprintf(cloneSuccessTemplateConstant, localPath), Payload: localPath}, nil
}
