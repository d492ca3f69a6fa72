package execshell

// CommandEventObserver receives lifecycle notifications for every git
// invocation the executor issues. The console event logger in internal/ui is
// the production implementation; the executor falls back to a no-op observer
// so callers never need nil checks.
type CommandEventObserver interface {
	// CommandStarted fires before the command process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exits, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
