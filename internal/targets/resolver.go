package targets

import (
	"fmt"
	"strings"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	organizationFieldNameConstant             = "organization"
	prefixFieldNameConstant                   = "prefix"
	organizationRequiredMessageConstant       = "organization URL must be provided"
	prefixRequiredMessageConstant             = "repository prefix must be provided"
	accountsRequiredMessageConstant           = "at least one account must be provided"
	organizationHostFragmentConstant          = "github.com/"
	organizationMissingSegmentMessageConstant = "organization URL must name the organization after github.com/"
	repositoryNameTemplateConstant            = "%s-%s"
	repositoryURLTemplateConstant             = "https://github.com/%s/%s"
	fullNameTemplateConstant                  = "%s/%s"
	ambiguousTargetTemplateConstant           = "accounts %s and %s resolve to the same repository %s"
)

// Target identifies one repository a bulk operation acts on.
type Target struct {
	Organization string
	Repository   string
	Account      string
	URL          string
}

// FullName reports the organization-qualified repository name.
func (target Target) FullName() string {
	return fmt.Sprintf(fullNameTemplateConstant, target.Organization, target.Repository)
}

// Resolve combines an organization URL, a repository prefix, and account names
// into ordered repository targets. Exact duplicate accounts collapse to one
// target while distinct spellings of the same repository name are rejected.
func Resolve(organizationURL string, repositoryPrefix string, accountNames []string) ([]Target, error) {
	organizationName, validationError := validateResolveInputs(organizationURL, repositoryPrefix, accountNames)
	if validationError != nil {
		return nil, validationError
	}

	trimmedPrefix := strings.TrimSpace(repositoryPrefix)
	resolvedTargets := make([]Target, 0, len(accountNames))
	firstSpellings := make(map[string]string, len(accountNames))
	seenRepositories := make(map[string]bool, len(accountNames))
	for _, accountName := range accountNames {
		trimmedAccount := strings.TrimSpace(accountName)
		if len(trimmedAccount) == 0 {
			return nil, githubapi.ConfigurationError{Field: usernamesFieldNameConstant, Message: accountBlankMessageConstant}
		}

		repositoryName := fmt.Sprintf(repositoryNameTemplateConstant, trimmedPrefix, trimmedAccount)
		normalizedRepository := strings.ToLower(repositoryName)
		if firstSpelling, collides := firstSpellings[normalizedRepository]; collides {
			if seenRepositories[repositoryName] {
				continue
			}
			return nil, githubapi.ConfigurationError{
				Field:   usernamesFieldNameConstant,
				Message: fmt.Sprintf(ambiguousTargetTemplateConstant, firstSpelling, trimmedAccount, normalizedRepository),
			}
		}
		firstSpellings[normalizedRepository] = trimmedAccount
		seenRepositories[repositoryName] = true

		resolvedTargets = append(resolvedTargets, Target{
			Organization: organizationName,
			Repository:   repositoryName,
			Account:      trimmedAccount,
			URL:          fmt.Sprintf(repositoryURLTemplateConstant, organizationName, repositoryName),
		})
	}
	return resolvedTargets, nil
}

func validateResolveInputs(organizationURL string, repositoryPrefix string, accountNames []string) (string, error) {
	trimmedURL := strings.TrimSpace(organizationURL)
	if len(trimmedURL) == 0 {
		return "", githubapi.ConfigurationError{Field: organizationFieldNameConstant, Message: organizationRequiredMessageConstant}
	}
	if len(strings.TrimSpace(repositoryPrefix)) == 0 {
		return "", githubapi.ConfigurationError{Field: prefixFieldNameConstant, Message: prefixRequiredMessageConstant}
	}
	if len(accountNames) == 0 {
		return "", githubapi.ConfigurationError{Field: usernamesFieldNameConstant, Message: accountsRequiredMessageConstant}
	}
	return parseOrganizationName(trimmedURL)
}

// parseOrganizationName extracts the organization segment that follows
// github.com/ in the provided URL.
func parseOrganizationName(organizationURL string) (string, error) {
	_, remainder, hostFound := strings.Cut(organizationURL, organizationHostFragmentConstant)
	if !hostFound {
		return "", githubapi.ConfigurationError{Field: organizationFieldNameConstant, Message: organizationMissingSegmentMessageConstant}
	}

	organizationSegment := remainder
	if separatorIndex := strings.Index(organizationSegment, "/"); separatorIndex >= 0 {
		organizationSegment = organizationSegment[:separatorIndex]
	}
	organizationSegment = strings.TrimSpace(organizationSegment)
	if len(organizationSegment) == 0 {
		return "", githubapi.ConfigurationError{Field: organizationFieldNameConstant, Message: organizationMissingSegmentMessageConstant}
	}
	return organizationSegment, nil
}
