package execshell

// CommandEventObserver receives lifecycle notifications for every command the
// executor runs. Console renderers implement it to narrate clone progress.
type CommandEventObserver interface {
	// CommandStarted fires before the command runs.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the command produced a result, whatever its
	// exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command never produced a result.
	CommandExecutionFailed(command ShellCommand, failure error)
}
