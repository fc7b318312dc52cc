package record

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	recordPathFieldNameConstant       = "record_file"
	recordPathRequiredMessageConstant = "record file path must be provided"
	recordEncodeErrorTemplateConstant = "failed to encode record document: %w"
	recordWriteErrorTemplateConstant  = "failed to write record file: %w"
	recordReadErrorTemplateConstant   = "failed to read record file: %w"
	recordDecodeErrorTemplateConstant = "failed to decode record document: %v"
	recordIndentationConstant         = "  "
	recordFilePermissionsConstant     = os.FileMode(0o644)
)

// Save writes the document to recordPath as indented JSON. The same document
// always produces the same bytes, so saved records diff cleanly.
func Save(recordPath string, document Document) error {
	trimmedPath := strings.TrimSpace(recordPath)
	if trimmedPath == "" {
		return githubapi.ConfigurationError{Field: recordPathFieldNameConstant, Message: recordPathRequiredMessageConstant}
	}
	normalizedDocument := document
	if normalizedDocument.RepoRover.Repositories == nil {
		normalizedDocument.RepoRover.Repositories = []Descriptor{}
	}
	encodedDocument, encodeError := json.MarshalIndent(normalizedDocument, "", recordIndentationConstant)
	if encodeError != nil {
		return fmt.Errorf(recordEncodeErrorTemplateConstant, encodeError)
	}
	encodedDocument = append(encodedDocument, '\n')
	if writeError := os.WriteFile(trimmedPath, encodedDocument, recordFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(recordWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// Load reads the document at recordPath, validating it before decoding so a
// broken record is reported by its first offending field.
func Load(recordPath string) (Document, error) {
	trimmedPath := strings.TrimSpace(recordPath)
	if trimmedPath == "" {
		return Document{}, githubapi.ConfigurationError{Field: recordPathFieldNameConstant, Message: recordPathRequiredMessageConstant}
	}
	recordContents, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Document{}, fmt.Errorf(recordReadErrorTemplateConstant, readError)
	}
	if validationError := Validate(recordContents); validationError != nil {
		return Document{}, validationError
	}
	var document Document
	if decodeError := json.Unmarshal(recordContents, &document); decodeError != nil {
		return Document{}, ValidationError{Field: documentFieldNameConstant, Message: fmt.Sprintf(recordDecodeErrorTemplateConstant, decodeError)}
	}
	return document, nil
}
