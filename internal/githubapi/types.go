package githubapi

import (
	"fmt"
	"strings"
	"time"
)

const (
	accessLevelReadStringConstant          = "read"
	accessLevelTriageStringConstant        = "triage"
	accessLevelWriteStringConstant         = "write"
	accessLevelMaintainStringConstant      = "maintain"
	accessLevelAdminStringConstant         = "admin"
	permissionPullStringConstant           = "pull"
	permissionTriageStringConstant         = "triage"
	permissionPushStringConstant           = "push"
	permissionMaintainStringConstant       = "maintain"
	permissionAdminStringConstant          = "admin"
	entryKindFileStringConstant            = "file"
	entryKindDirectoryStringConstant       = "dir"
	unsupportedAccessLevelTemplateConstant = "unsupported access level: %s"
)

// AccessLevel enumerates the collaborator access levels accepted on the command line.
type AccessLevel string

// Supported access levels.
const (
	AccessLevelRead     AccessLevel = AccessLevel(accessLevelReadStringConstant)
	AccessLevelTriage   AccessLevel = AccessLevel(accessLevelTriageStringConstant)
	AccessLevelWrite    AccessLevel = AccessLevel(accessLevelWriteStringConstant)
	AccessLevelMaintain AccessLevel = AccessLevel(accessLevelMaintainStringConstant)
	AccessLevelAdmin    AccessLevel = AccessLevel(accessLevelAdminStringConstant)
)

var accessLevelPermissionMapping = map[AccessLevel]string{
	AccessLevelRead:     permissionPullStringConstant,
	AccessLevelTriage:   permissionTriageStringConstant,
	AccessLevelWrite:    permissionPushStringConstant,
	AccessLevelMaintain: permissionMaintainStringConstant,
	AccessLevelAdmin:    permissionAdminStringConstant,
}

// AccessLevelNames lists the accepted access level spellings from least to
// most privileged.
func AccessLevelNames() []string {
	return []string{
		accessLevelReadStringConstant,
		accessLevelTriageStringConstant,
		accessLevelWriteStringConstant,
		accessLevelMaintainStringConstant,
		accessLevelAdminStringConstant,
	}
}

// ParseAccessLevel converts a command-line spelling into an AccessLevel.
func ParseAccessLevel(candidate string) (AccessLevel, error) {
	normalizedCandidate := AccessLevel(strings.ToLower(strings.TrimSpace(candidate)))
	if _, supported := accessLevelPermissionMapping[normalizedCandidate]; !supported {
		return "", ConfigurationError{Field: accessLevelFieldNameConstant, Message: fmt.Sprintf(unsupportedAccessLevelTemplateConstant, candidate)}
	}
	return normalizedCandidate, nil
}

// Permission reports the GitHub API permission string for the access level.
func (level AccessLevel) Permission() string {
	return accessLevelPermissionMapping[level]
}

// EntryKind distinguishes files from directories in a directory listing.
type EntryKind string

// Directory entry kinds.
const (
	EntryKindFile      EntryKind = EntryKind(entryKindFileStringConstant)
	EntryKindDirectory EntryKind = EntryKind(entryKindDirectoryStringConstant)
)

// DirectoryEntry names one immediate child of a repository directory.
type DirectoryEntry struct {
	Name string
	Kind EntryKind
}

// WorkflowStatus summarizes the most recent GitHub Actions run of a repository.
type WorkflowStatus struct {
	Found        bool
	WorkflowName string
	Status       string
	Conclusion   string
}

// CommentReceipt reports where a posted pull request comment can be viewed.
type CommentReceipt struct {
	CommentURL string
}

// RepositoryDescriptor carries the repository metadata returned by search.
type RepositoryDescriptor struct {
	Name        string
	FullName    string
	URL         string
	Description string
	Language    string
	Stars       int
	Forks       int
	Size        int
	HasIssues   bool
	HasWiki     bool
	License     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchResults aggregates one repository search invocation.
type SearchResults struct {
	TotalCount   int
	Repositories []RepositoryDescriptor
}
