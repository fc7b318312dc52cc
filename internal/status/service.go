package status

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/githubapi"
	"github.com/GatorEducator/reporover/internal/targets"
)

const (
	operationNameConstant           = "status"
	gatewayMissingMessageConstant   = "status gateway not configured"
	runSummaryTemplateConstant      = "latest run %q: %s (%s)"
	noRunsFoundMessageConstant      = "no workflow runs found"
	statusNoneConstant              = "none"
	csvHeaderRepositoryConstant     = "repository"
	csvHeaderWorkflowConstant       = "workflow"
	csvHeaderStatusConstant         = "status"
	csvHeaderConclusionConstant     = "conclusion"
	logMessageStatusFetchedConstant = "workflow status fetched"
	logFieldRepositoryConstant      = "repository"
	logFieldStatusConstant          = "status"
	logFieldConclusionConstant      = "conclusion"
)

// ErrGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// Gateway exposes the remote operation the status service performs.
type Gateway interface {
	FetchStatus(executionContext context.Context, organization string, repository string) (githubapi.WorkflowStatus, error)
}

// Dependencies enumerates the collaborators required by the status service.
type Dependencies struct {
	Gateway Gateway
	Logger  *zap.Logger
}

// Options configures one bulk status run.
type Options struct {
	OrganizationURL  string
	RepositoryPrefix string
	AccountNames     []string
	Dispatch         bulk.Options
}

// Service collects workflow run outcomes across repository targets.
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

// Execute resolves the repository targets and fetches each one's most recent
// workflow run.
func (service *Service) Execute(executionContext context.Context, options Options) ([]bulk.OperationResult, bulk.Summary, error) {
	resolvedTargets, resolveError := targets.Resolve(options.OrganizationURL, options.RepositoryPrefix, options.AccountNames)
	if resolveError != nil {
		return nil, bulk.Summary{}, resolveError
	}

	operation := &statusOperation{service: service}
	dispatcher := bulk.NewDispatcher(options.Dispatch)
	return dispatcher.Run(executionContext, resolvedTargets, operation)
}

// WriteReport renders the collected workflow statuses as CSV. Targets whose
// fetch failed or never ran are omitted from the report.
func WriteReport(reportWriter io.Writer, operationResults []bulk.OperationResult) error {
	csvWriter := csv.NewWriter(reportWriter)
	header := []string{
		csvHeaderRepositoryConstant,
		csvHeaderWorkflowConstant,
		csvHeaderStatusConstant,
		csvHeaderConclusionConstant,
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}

	for _, operationResult := range operationResults {
		if !operationResult.Attempted || operationResult.Outcome != bulk.OutcomeSuccess {
			continue
		}
		workflowStatus, payloadMatches := operationResult.Payload.(githubapi.WorkflowStatus)
		if !payloadMatches {
			continue
		}
		if writeError := csvWriter.Write(reportRow(operationResult.Target, workflowStatus)); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func reportRow(operationTarget targets.Target, workflowStatus githubapi.WorkflowStatus) []string {
	if !workflowStatus.Found {
		return []string{operationTarget.FullName(), "", statusNoneConstant, ""}
	}
	return []string{
		operationTarget.FullName(),
		workflowStatus.WorkflowName,
		workflowStatus.Status,
		workflowStatus.Conclusion,
	}
}

type statusOperation struct {
	service *Service
}

func (operation *statusOperation) Name() string {
	return operationNameConstant
}

func (operation *statusOperation) Execute(executionContext context.Context, operationTarget targets.Target) (bulk.OperationOutput, error) {
	workflowStatus, fetchError := operation.service.gateway.FetchStatus(executionContext, operationTarget.Organization, operationTarget.Repository)
	if fetchError != nil {
		return bulk.OperationOutput{}, fetchError
	}

	operation.service.logger.Debug(
		logMessageStatusFetchedConstant,
		zap.String(logFieldRepositoryConstant, operationTarget.FullName()),
		zap.String(logFieldStatusConstant, workflowStatus.Status),
		zap.String(logFieldConclusionConstant, workflowStatus.Conclusion),
	)

	if !workflowStatus.Found {
		return bulk.OperationOutput{Message: noRunsFoundMessageConstant, Payload: workflowStatus}, nil
	}
	return bulk.OperationOutput{
		Message: fmt.Sprintf(runSummaryTemplateConstant, workflowStatus.WorkflowName, workflowStatus.Status, workflowStatus.Conclusion),
		Payload: workflowStatus,
	}, nil
}
