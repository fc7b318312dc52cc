package structure

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	filesFieldNameConstant             = "files"
	maxDepthFieldNameConstant          = "max_depth"
	listerNotConfiguredMessageConstant = "directory lister not configured"
	filesRequiredMessageConstant       = "at least one file name must be provided"
	fileBlankMessageConstant           = "file names must be non-empty"
	maxDepthNegativeMessageConstant    = "max depth must be zero or positive"
)

// ErrListerNotConfigured indicates the matcher was constructed without a
// directory lister.
var ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)

// DirectoryLister returns the immediate children of one repository directory.
type DirectoryLister interface {
	ListEntries(executionContext context.Context, organization string, repository string, directoryPath string) ([]githubapi.DirectoryEntry, error)
}

// Dependencies enumerates the collaborators required by the matcher.
type Dependencies struct {
	Lister DirectoryLister
}

// Matcher answers structural queries against remote repository trees.
type Matcher struct {
	lister DirectoryLister
}

// NewMatcher constructs a Matcher after validating dependencies.
func NewMatcher(dependencies Dependencies) (*Matcher, error) {
	if dependencies.Lister == nil {
		return nil, ErrListerNotConfigured
	}
	return &Matcher{lister: dependencies.Lister}, nil
}

// Report carries the outcome of one structural match.
type Report struct {
	Matched bool
	Missing []string
}

type frontierEntry struct {
	directoryPath string
	depth         int
}

// Match reports whether every required name occurs in the repository tree at
// or below maxDepth. Depth zero restricts the walk to the repository root,
// and the walk stops as soon as every required name has been seen. Names
// compare by exact equality against both file and directory entries.
func (matcher *Matcher) Match(executionContext context.Context, organization string, repository string, requiredNames []string, maxDepth int) (Report, error) {
	if validationError := validateMatchInputs(requiredNames, maxDepth); validationError != nil {
		return Report{}, validationError
	}

	remainingNames := make(map[string]bool, len(requiredNames))
	for _, requiredName := range requiredNames {
		remainingNames[strings.TrimSpace(requiredName)] = true
	}

	frontier := []frontierEntry{{directoryPath: "", depth: 0}}
	for len(frontier) > 0 && len(remainingNames) > 0 {
		currentEntry := frontier[0]
		frontier = frontier[1:]

		directoryEntries, listError := matcher.lister.ListEntries(executionContext, organization, repository, currentEntry.directoryPath)
		if listError != nil {
			return Report{}, listError
		}

		for _, directoryEntry := range directoryEntries {
			delete(remainingNames, directoryEntry.Name)
			if directoryEntry.Kind == githubapi.EntryKindDirectory && currentEntry.depth < maxDepth {
				frontier = append(frontier, frontierEntry{
					directoryPath: path.Join(currentEntry.directoryPath, directoryEntry.Name),
					depth:         currentEntry.depth + 1,
				})
			}
		}
	}

	missingNames := make([]string, 0, len(remainingNames))
	for _, requiredName := range requiredNames {
		trimmedName := strings.TrimSpace(requiredName)
		if remainingNames[trimmedName] {
			missingNames = append(missingNames, trimmedName)
			delete(remainingNames, trimmedName)
		}
	}
	return Report{Matched: len(missingNames) == 0, Missing: missingNames}, nil
}

func validateMatchInputs(requiredNames []string, maxDepth int) error {
	if len(requiredNames) == 0 {
		return githubapi.ConfigurationError{Field: filesFieldNameConstant, Message: filesRequiredMessageConstant}
	}
	for _, requiredName := range requiredNames {
		if len(strings.TrimSpace(requiredName)) == 0 {
			return githubapi.ConfigurationError{Field: filesFieldNameConstant, Message: fileBlankMessageConstant}
		}
	}
	if maxDepth < 0 {
		return githubapi.ConfigurationError{Field: maxDepthFieldNameConstant, Message: maxDepthNegativeMessageConstant}
	}
	return nil
}
