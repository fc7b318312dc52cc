package comment

import (
	"fmt"
	"strings"

	"github.com/GatorEducator/reporover/internal/githubapi"
)

const (
	greetingTemplateConstant     = "Hello @%s! %s"
	modifiedToPhraseConstant     = "Your access level for this GitHub repository has been modified to"
	assistanceSentenceConstant   = "Please contact the course instructor for assistance with access to your repository."
	notificationTemplateConstant = "Hello @%s! %s `%s`. %s %s"
)

// ComposeGreeting renders the plain pull request message for an account.
func ComposeGreeting(accountName string, message string) string {
	return strings.TrimSpace(fmt.Sprintf(greetingTemplateConstant, accountName, message))
}

// ComposeNotification renders the access-change notification for an account.
// The additional message may be empty; trailing whitespace is trimmed so the
// rendered comment never ends mid-sentence with a dangling space.
func ComposeNotification(accountName string, accessLevel githubapi.AccessLevel, additionalMessage string) string {
	return strings.TrimSpace(fmt.Sprintf(
		notificationTemplateConstant,
		accountName,
		modifiedToPhraseConstant,
		accessLevel,
		assistanceSentenceConstant,
		additionalMessage,
	))
}
