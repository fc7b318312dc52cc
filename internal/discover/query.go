package discover

import (
	"fmt"
	"strings"
)

const (
	languageQualifierTemplateConstant = "language:%s"
	starsQualifierTemplateConstant    = "stars:>=%d"
	forksQualifierTemplateConstant    = "forks:>=%d"
	createdQualifierTemplateConstant  = "created:>=%s"
	pushedQualifierTemplateConstant   = "pushed:>=%s"
	topicQualifierTemplateConstant    = "topic:%s"
	licenseQualifierTemplateConstant  = "license:%s"
	sizeQualifierTemplateConstant     = "size:>=%d"
	publicFallbackQualifierConstant   = "is:public"
	qualifierSeparatorConstant        = " "
)

// Criteria holds the server-side search qualifiers for one discovery run.
type Criteria struct {
	Language     string
	MinimumStars int
	MinimumForks int
	CreatedAfter string
	UpdatedAfter string
	Topics       []string
	License      string
	MinimumSize  int
}

// BuildSearchQuery renders the criteria as a GitHub search query. Qualifiers
// appear in a fixed order so identical criteria always produce the same
// query; criteria with no qualifiers fall back to a public-repository search.
func BuildSearchQuery(criteria Criteria) string {
	qualifiers := make([]string, 0)
	if len(criteria.Language) > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(languageQualifierTemplateConstant, criteria.Language))
	}
	if criteria.MinimumStars > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(starsQualifierTemplateConstant, criteria.MinimumStars))
	}
	if criteria.MinimumForks > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(forksQualifierTemplateConstant, criteria.MinimumForks))
	}
	if len(criteria.CreatedAfter) > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(createdQualifierTemplateConstant, criteria.CreatedAfter))
	}
	if len(criteria.UpdatedAfter) > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(pushedQualifierTemplateConstant, criteria.UpdatedAfter))
	}
	for _, topicName := range criteria.Topics {
		qualifiers = append(qualifiers, fmt.Sprintf(topicQualifierTemplateConstant, topicName))
	}
	if len(criteria.License) > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(licenseQualifierTemplateConstant, criteria.License))
	}
	if criteria.MinimumSize > 0 {
		qualifiers = append(qualifiers, fmt.Sprintf(sizeQualifierTemplateConstant, criteria.MinimumSize))
	}
	if len(qualifiers) == 0 {
		return publicFallbackQualifierConstant
	}
	return strings.Join(qualifiers, qualifierSeparatorConstant)
}
