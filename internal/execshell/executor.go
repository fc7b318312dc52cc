package execshell

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger must be configured"
	commandRunnerNotConfiguredMessageConstant = "command runner must be configured"
	gitExecutableNameConstant                 = "git"

	commandStartedLogMessageConstant         = "starting command"
	commandCompletedLogMessageConstant       = "command completed"
	commandFailedLogMessageConstant          = "command failed"
	commandExecutionFailedLogMessageConstant = "command execution failed"
	commandLogFieldNameConstant              = "command"
	argumentsLogFieldNameConstant            = "arguments"
	workingDirectoryLogFieldNameConstant     = "working_directory"
	exitCodeLogFieldNameConstant             = "exit_code"
)

// Executor construction failures.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandName identifies the executable a shell command invokes.
type CommandName string

// CommandGit is the only executable the tool shells out to.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes one invocation of an executable.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the output of a finished command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero
// exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failure with credentials redacted.
func (commandFailedError CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(commandFailedError.Command, commandFailedError.Result)
}

// CommandExecutionError reports a command that could not be started or run.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error renders the failure with credentials redacted.
func (commandExecutionError CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(commandExecutionError.Command, commandExecutionError.Cause)
}

// Unwrap exposes the underlying cause.
func (commandExecutionError CommandExecutionError) Unwrap() error {
	return commandExecutionError.Cause
}

// ShellExecutor runs commands through a CommandRunner, logging every execution
// and notifying registered observers. Logged arguments are always redacted so
// credentials embedded in clone URLs never reach log output.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observers []CommandEventObserver
}

// NewShellExecutor validates the collaborators and builds an executor. Any
// supplied observers receive lifecycle events for every executed command.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	activeObservers := make([]CommandEventObserver, 0, len(observers))
	for _, currentObserver := range observers {
		if currentObserver != nil {
			activeObservers = append(activeObservers, currentObserver)
		}
	}
	return &ShellExecutor{logger: logger, runner: runner, observers: activeObservers}, nil
}

// ExecuteGit runs git with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the command and reports its outcome. A non-zero exit code is
// returned as CommandFailedError alongside the captured output, and a command
// that never produced a result is returned as CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := executor.commandLogFields(command)
	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)
	executor.notifyStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(commandExecutionFailedLogMessageConstant, append(commandFields, zap.Error(runError))...)
		executor.notifyExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(commandFailedLogMessageConstant, append(commandFields, zap.Int(exitCodeLogFieldNameConstant, executionResult.ExitCode))...)
		executor.notifyCompleted(command, executionResult)
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, append(commandFields, zap.Int(exitCodeLogFieldNameConstant, executionResult.ExitCode))...)
	executor.notifyCompleted(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) commandLogFields(command ShellCommand) []zap.Field {
	logFields := []zap.Field{
		zap.String(commandLogFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsLogFieldNameConstant, RedactArguments(command.Details.Arguments)),
	}
	if len(strings.TrimSpace(command.Details.WorkingDirectory)) > 0 {
		logFields = append(logFields, zap.String(workingDirectoryLogFieldNameConstant, command.Details.WorkingDirectory))
	}
	return logFields
}

func (executor *ShellExecutor) notifyStarted(command ShellCommand) {
	for _, currentObserver := range executor.observers {
		currentObserver.CommandStarted(command)
	}
}

func (executor *ShellExecutor) notifyCompleted(command ShellCommand, result ExecutionResult) {
	for _, currentObserver := range executor.observers {
		currentObserver.CommandCompleted(command, result)
	}
}

func (executor *ShellExecutor) notifyExecutionFailed(command ShellCommand, failure error) {
	for _, currentObserver := range executor.observers {
		currentObserver.CommandExecutionFailed(command, failure)
	}
}
