package report

import (
	"go.uber.org/zap"

	"github.com/GatorEducator/reporover/internal/record"
)

const (
	logMessageRecordLoadedConstant  = "discovery record loaded"
	logFieldRecordPathConstant      = "record_path"
	logFieldRepositoryCountConstant = "repository_count"
)

// Dependencies enumerates the collaborators required by the report service.
type Dependencies struct {
	Logger *zap.Logger
}

// Options configures one report invocation.
type Options struct {
	RecordPath string
}

// Service loads and validates saved discovery records.
type Service struct {
	logger *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Execute loads the record at the configured path. A record that fails
// schema validation is rejected with the first offending field named.
func (service *Service) Execute(options Options) (record.Document, error) {
	document, loadError := record.Load(options.RecordPath)
	if loadError != nil {
		return record.Document{}, loadError
	}
	service.logger.Debug(
		logMessageRecordLoadedConstant,
		zap.String(logFieldRecordPathConstant, options.RecordPath),
		zap.Int(logFieldRepositoryCountConstant, len(document.RepoRover.Repositories)),
	)
	return document, nil
}
