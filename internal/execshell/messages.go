package execshell

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	cloneSubcommandNameConstant = "clone"
	flagPrefixConstant          = "-"
	emptyStringConstant         = ""

	startedCloneTemplateConstant           = "Cloning %s"
	completedCloneTemplateConstant         = "Cloned %s"
	genericStartedTemplateConstant         = "Running %s"
	genericCompletedTemplateConstant       = "Completed %s"
	commandFailureTemplateConstant         = "%s failed with exit code %d%s"
	executionFailureTemplateConstant       = "%s failed: %s"
	workingDirectorySuffixTemplateConstant = " (in %s)"
	standardErrorSuffixTemplateConstant    = ": %s"
	argumentsJoinSeparatorConstant         = " "
	unknownFailureMessageConstant          = "unknown error"
	redactedCredentialReplacementConstant  = "${1}***@"
)

var credentialInURLPattern = regexp.MustCompile(`(https?://)[^@/\s]+@`)

// RedactCredentials masks userinfo embedded in URLs so tokens never reach
// logs, error messages, or console output.
func RedactCredentials(text string) string {
	return credentialInURLPattern.ReplaceAllString(text, redactedCredentialReplacementConstant)
}

// RedactArguments masks credentials in every argument.
func RedactArguments(arguments []string) []string {
	redactedArguments := make([]string, len(arguments))
	for argumentIndex, argument := range arguments {
		redactedArguments[argumentIndex] = RedactCredentials(argument)
	}
	return redactedArguments
}

// CommandMessageFormatter builds human-readable messages for command
// lifecycle events. Clone invocations get dedicated phrasing; anything else
// falls back to a generic command label. Every message is credential-safe.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if cloneSource, isClone := formatter.cloneSource(command); isClone {
		return fmt.Sprintf(startedCloneTemplateConstant, cloneSource) + formatter.workingDirectorySuffix(command)
	}
	return fmt.Sprintf(genericStartedTemplateConstant, formatter.CommandLabel(command))
}

// BuildSuccessMessage formats the message describing a command that exited
// with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if cloneSource, isClone := formatter.cloneSource(command); isClone {
		return fmt.Sprintf(completedCloneTemplateConstant, cloneSource)
	}
	return fmt.Sprintf(genericCompletedTemplateConstant, formatter.CommandLabel(command))
}

// BuildFailureMessage formats the message describing a non-zero exit code,
// appending trimmed standard error output when present.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(commandFailureTemplateConstant, formatter.CommandLabel(command), result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
}

// BuildExecutionFailureMessage formats the message describing a command that
// could not run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = RedactCredentials(failure.Error())
	}
	return fmt.Sprintf(executionFailureTemplateConstant, formatter.CommandLabel(command), failureMessage)
}

// CommandLabel renders the redacted command line together with its working
// directory.
func (formatter CommandMessageFormatter) CommandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, strings.Join(RedactArguments(command.Details.Arguments), argumentsJoinSeparatorConstant))
	}
	return strings.Join(labelParts, argumentsJoinSeparatorConstant) + formatter.workingDirectorySuffix(command)
}

func (formatter CommandMessageFormatter) workingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, RedactCredentials(trimmedStandardError))
}

func (formatter CommandMessageFormatter) cloneSource(command ShellCommand) (string, bool) {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return emptyStringConstant, false
	}
	if command.Details.Arguments[0] != cloneSubcommandNameConstant {
		return emptyStringConstant, false
	}
	for _, argument := range command.Details.Arguments[1:] {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return RedactCredentials(argument), true
	}
	return emptyStringConstant, false
}
