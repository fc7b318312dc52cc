package ui

import (
	"fmt"
	"io"

	"github.com/GatorEducator/reporover/internal/bulk"
	"github.com/GatorEducator/reporover/internal/execshell"
)

const (
	successMarkerConstant       = "ok"
	failureMarkerConstant       = "failed"
	skippedMarkerConstant       = "skipped"
	resultLineTemplateConstant  = "%-7s %-*s %s%s\n"
	retrySuffixTemplateConstant = " (retries: %d)"
	summaryTemplateConstant     = "\n%d succeeded, %d failed, %d skipped\n"
	haltNoticeTemplateConstant  = "run halted: %s\n"
)

// ResultWriter renders bulk operation outcomes, one line per target, in the
// order the targets were submitted.
type ResultWriter struct {
	writer io.Writer
}

// NewResultWriter constructs a writer-backed renderer. A nil writer discards
// all output.
func NewResultWriter(writer io.Writer) *ResultWriter {
	if writer == nil {
		writer = io.Discard
	}
	return &ResultWriter{writer: writer}
}

// WriteResults prints the per-target outcome lines.
func (resultWriter *ResultWriter) WriteResults(operationResults []bulk.OperationResult) {
	targetWidth := 0
	for _, operationResult := range operationResults {
		if nameLength := len(operationResult.Target.FullName()); nameLength > targetWidth {
			targetWidth = nameLength
		}
	}
	for _, operationResult := range operationResults {
		retrySuffix := ""
		if operationResult.RetryAttempts > 0 {
			retrySuffix = fmt.Sprintf(retrySuffixTemplateConstant, operationResult.RetryAttempts)
		}
		fmt.Fprintf(resultWriter.writer, resultLineTemplateConstant,
			resultMarker(operationResult), targetWidth, operationResult.Target.FullName(),
			execshell.RedactCredentials(operationResult.Message), retrySuffix)
	}
}

// WriteSummary prints the aggregate counts and, when the run was halted, the
// fatal cause.
func (resultWriter *ResultWriter) WriteSummary(summary bulk.Summary) {
	fmt.Fprintf(resultWriter.writer, summaryTemplateConstant, summary.SuccessCount, summary.FailureCount, summary.SkippedCount)
	if summary.FatalCause != nil {
		fmt.Fprintf(resultWriter.writer, haltNoticeTemplateConstant, execshell.RedactCredentials(summary.FatalCause.Error()))
	}
}

func resultMarker(operationResult bulk.OperationResult) string {
	if !operationResult.Attempted {
		return skippedMarkerConstant
	}
	if operationResult.Outcome == bulk.OutcomeSuccess {
		return successMarkerConstant
	}
	return failureMarkerConstant
}
