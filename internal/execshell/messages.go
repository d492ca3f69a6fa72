package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitWorkTreeFlagConstant           = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitHeadReferenceConstant          = "HEAD"
	gitStatusSubcommandNameConstant   = "status"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitBranchSubcommandNameConstant   = "branch"
	gitMergeSubcommandNameConstant    = "merge"
	gitResetSubcommandNameConstant    = "reset"
	gitTagSubcommandNameConstant      = "tag"
	gitFetchSubcommandNameConstant    = "fetch"
	gitPullSubcommandNameConstant     = "pull"
	gitPushSubcommandNameConstant     = "push"
	gitConfigSubcommandNameConstant   = "config"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitDeleteFlagConstant             = "--delete"
	gitForceFlagConstant              = "--force"
	gitMergedFlagConstant             = "--merged"
	gitTagsFlagConstant               = "--tags"
	gitForceWithLeaseFlagConstant     = "--force-with-lease"
)

const (
	gitWorkTreeStartTemplateConstant            = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant          = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant          = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplate         = "Could not analyze %s: %s"
	gitCurrentBranchStartTemplateConstant       = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant     = "Current branch in %s is %s"
	gitCurrentBranchDetachedTemplateConstant    = "%s is in a detached HEAD state"
	gitCurrentBranchFailureTemplateConstant     = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplate    = "Unable to identify current branch in %s: %s"
	gitRevisionStartTemplateConstant            = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant          = "%s in %s resolved to %s"
	gitRevisionEmptySuccessTemplateConstant     = "%s in %s did not resolve to a revision"
	gitRevisionFailureTemplateConstant          = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplate         = "Unable to resolve %s in %s: %s"
	gitStatusStartTemplateConstant              = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant            = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant            = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplate           = "Unable to review working tree status in %s: %s"
	gitCheckoutStartTemplateConstant            = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant          = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant          = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplate         = "Unable to switch %s to branch %s: %s"
	gitBranchListStartTemplateConstant          = "Listing branches merged into %s in %s"
	gitBranchListSuccessTemplateConstant        = "Listed branches merged into %s in %s"
	gitBranchListFailureTemplateConstant        = "Failed to list branches merged into %s in %s (exit code %d%s)"
	gitBranchListExecutionFailureTemplate       = "Unable to list branches merged into %s in %s: %s"
	gitBranchDeletionStartTemplateConstant      = "Removing local branch %s in %s"
	gitBranchForceDeletionStartTemplate         = "Force removing local branch %s in %s"
	gitBranchDeletionSuccessTemplateConstant    = "Removed local branch %s in %s"
	gitBranchDeletionFailureTemplateConstant    = "Failed to remove local branch %s in %s (exit code %d%s)"
	gitBranchDeletionExecutionFailureTemplate   = "Unable to remove local branch %s in %s: %s"
	gitBranchCreationStartTemplateConstant      = "Creating branch %s from %s in %s"
	gitBranchCreationSuccessTemplateConstant    = "Created branch %s from %s in %s"
	gitBranchCreationFailureTemplateConstant    = "Failed to create branch %s from %s in %s (exit code %d%s)"
	gitBranchCreationExecutionFailureTemplate   = "Unable to create branch %s from %s in %s: %s"
	gitMergeStartTemplateConstant               = "Merging %s in %s"
	gitMergeSuccessTemplateConstant             = "Merged %s in %s"
	gitMergeFailureTemplateConstant             = "Failed to merge %s in %s (exit code %d%s)"
	gitMergeExecutionFailureTemplate            = "Unable to merge %s in %s: %s"
	gitResetStartTemplateConstant               = "Resetting %s to %s"
	gitResetSuccessTemplateConstant             = "Reset %s to %s"
	gitResetFailureTemplateConstant             = "Failed to reset %s to %s (exit code %d%s)"
	gitResetExecutionFailureTemplate            = "Unable to reset %s to %s: %s"
	gitTagCreationStartTemplateConstant         = "Creating tag %s in %s"
	gitTagCreationSuccessTemplateConstant       = "Created tag %s in %s"
	gitTagCreationFailureTemplateConstant       = "Failed to create tag %s in %s (exit code %d%s)"
	gitTagCreationExecutionFailureTemplate      = "Unable to create tag %s in %s: %s"
	gitFetchStartTemplateConstant               = "Fetching %s from %s in %s"
	gitFetchWithoutRefsStartTemplateConstant    = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant             = "Fetched %s from %s in %s"
	gitFetchWithoutRefsSuccessTemplateConstant  = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant             = "Failed to fetch %s from %s in %s (exit code %d%s)"
	gitFetchWithoutRefsFailureTemplateConstant  = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplate            = "Unable to fetch %s from %s in %s: %s"
	gitFetchWithoutRefsExecutionFailureTemplate = "Unable to fetch from %s in %s: %s"
	gitFetchAllRemotesLabelConstant             = "all remotes"
	gitPullStartTemplateConstant                = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant              = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant              = "Failed to pull latest changes in %s (exit code %d%s)"
	gitPullExecutionFailureTemplate             = "Unable to pull latest changes in %s: %s"
	gitPushStartTemplateConstant                = "Pushing %s to %s from %s"
	gitForcePushStartTemplateConstant           = "Force pushing %s to %s from %s (with lease)"
	gitPushSuccessTemplateConstant              = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant              = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplate             = "Unable to push %s to %s from %s: %s"
	gitPushTagsStartTemplateConstant            = "Pushing tags to %s from %s"
	gitPushTagsSuccessTemplateConstant          = "Pushed tags to %s from %s"
	gitPushTagsFailureTemplateConstant          = "Failed to push tags to %s from %s (exit code %d%s)"
	gitPushTagsExecutionFailureTemplate         = "Unable to push tags to %s from %s: %s"
	gitConfigReadStartTemplateConstant          = "Reading configuration key %s in %s"
	gitConfigReadSuccessTemplateConstant        = "Configuration key %s in %s is %s"
	gitConfigReadMissingTemplateConstant        = "Configuration key %s is not set in %s"
	gitConfigReadFailureTemplateConstant        = "Failed to read configuration key %s in %s (exit code %d%s)"
	gitConfigReadExecutionFailureTemplate       = "Unable to read configuration key %s in %s: %s"
	gitConfigWriteStartTemplateConstant         = "Setting configuration key %s in %s"
	gitConfigWriteSuccessTemplateConstant       = "Set configuration key %s in %s"
	gitConfigWriteFailureTemplateConstant       = "Failed to set configuration key %s in %s (exit code %d%s)"
	gitConfigWriteExecutionFailureTemplate      = "Unable to set configuration key %s in %s: %s"
	gitRevListStartTemplateConstant             = "Counting commits for %s in %s"
	gitRevListSuccessTemplateConstant           = "%s in %s contains %s commits"
	gitRevListFailureTemplateConstant           = "Failed to count commits for %s in %s (exit code %d%s)"
	gitRevListExecutionFailureTemplate          = "Unable to count commits for %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeGitStatusMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		return formatter.describeGitBranchMessage(command, result, failure, stage)
	case gitMergeSubcommandNameConstant:
		return formatter.describeGitMergeMessage(command, result, failure, stage)
	case gitResetSubcommandNameConstant:
		return formatter.describeGitResetMessage(command, result, failure, stage)
	case gitTagSubcommandNameConstant:
		return formatter.describeGitTagMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeGitPullMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	case gitRevListSubcommandNameConstant:
		return formatter.describeGitRevListMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitWorkTreeFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitWorkTreeExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitAbbrevRefFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitCurrentBranchStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			trimmed := strings.TrimSpace(result.StandardOutput)
			if strings.EqualFold(trimmed, gitHeadReferenceConstant) || len(trimmed) == 0 {
				return fmt.Sprintf(gitCurrentBranchDetachedTemplateConstant, workingDirectory)
			}
			return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, trimmed)
		case messageStageFailure:
			return fmt.Sprintf(gitCurrentBranchFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitCurrentBranchExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
		}
	}

	reference := formatter.resolveTrailingReference(arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 {
			return fmt.Sprintf(gitRevisionEmptySuccessTemplateConstant, reference, workingDirectory)
		}
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, trimmed)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplate, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitStatusMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitStatusExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	branchName := formatter.ensureValue(formatter.resolveTrailingReference(command.Details.Arguments))
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplate, workingDirectory, branchName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	if containsArgument(arguments, gitMergedFlagConstant) {
		targetBranch := formatter.ensureValue(formatter.resolveTrailingReference(arguments))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitBranchListStartTemplateConstant, targetBranch, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchListSuccessTemplateConstant, targetBranch, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchListFailureTemplateConstant, targetBranch, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitBranchListExecutionFailureTemplate, targetBranch, workingDirectory, formatter.describeFailure(failure))
		}
	}

	if containsArgument(arguments, gitDeleteFlagConstant) || containsArgument(arguments, "-d") || containsArgument(arguments, "-D") {
		branchName := formatter.ensureValue(formatter.resolveTrailingReference(arguments))
		switch stage {
		case messageStageStart:
			if containsArgument(arguments, gitForceFlagConstant) || containsArgument(arguments, "-D") {
				return fmt.Sprintf(gitBranchForceDeletionStartTemplate, branchName, workingDirectory)
			}
			return fmt.Sprintf(gitBranchDeletionStartTemplateConstant, branchName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitBranchDeletionSuccessTemplateConstant, branchName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitBranchDeletionFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitBranchDeletionExecutionFailureTemplate, branchName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	branchName := fallbackUnknownValueLabelConstant
	startPoint := fallbackUnknownValueLabelConstant
	positional := formatter.collectPositionalArguments(arguments[1:])
	if len(positional) > 0 {
		branchName = positional[0]
	}
	if len(positional) > 1 {
		startPoint = positional[1]
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitBranchCreationStartTemplateConstant, branchName, startPoint, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitBranchCreationSuccessTemplateConstant, branchName, startPoint, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitBranchCreationFailureTemplateConstant, branchName, startPoint, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitBranchCreationExecutionFailureTemplate, branchName, startPoint, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMergeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := formatter.collectPositionalArguments(command.Details.Arguments[1:])
	mergeSource := fallbackUnknownValueLabelConstant
	if len(positional) > 0 {
		mergeSource = positional[0]
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitMergeStartTemplateConstant, mergeSource, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitMergeSuccessTemplateConstant, mergeSource, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitMergeFailureTemplateConstant, mergeSource, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitMergeExecutionFailureTemplate, mergeSource, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitResetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	targetReference := formatter.ensureValue(formatter.resolveTrailingReference(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitResetStartTemplateConstant, workingDirectory, targetReference)
	case messageStageSuccess:
		return fmt.Sprintf(gitResetSuccessTemplateConstant, workingDirectory, targetReference)
	case messageStageFailure:
		return fmt.Sprintf(gitResetFailureTemplateConstant, workingDirectory, targetReference, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitResetExecutionFailureTemplate, workingDirectory, targetReference, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitTagMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := formatter.collectPositionalArguments(command.Details.Arguments[1:])
	tagName := fallbackUnknownValueLabelConstant
	if len(positional) > 0 {
		tagName = positional[0]
	}
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitTagCreationStartTemplateConstant, tagName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitTagCreationSuccessTemplateConstant, tagName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitTagCreationFailureTemplateConstant, tagName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitTagCreationExecutionFailureTemplate, tagName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := formatter.collectPositionalArguments(command.Details.Arguments[1:])
	remoteName := gitFetchAllRemotesLabelConstant
	references := []string{}
	if len(positional) > 0 {
		remoteName = positional[0]
		references = positional[1:]
	}
	joinedReferences := strings.Join(references, ", ")

	switch stage {
	case messageStageStart:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchStartTemplateConstant, joinedReferences, remoteName, workingDirectory)
		}
		return fmt.Sprintf(gitFetchWithoutRefsStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchSuccessTemplateConstant, joinedReferences, remoteName, workingDirectory)
		}
		return fmt.Sprintf(gitFetchWithoutRefsSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchFailureTemplateConstant, joinedReferences, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		}
		return fmt.Sprintf(gitFetchWithoutRefsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchExecutionFailureTemplate, joinedReferences, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
		return fmt.Sprintf(gitFetchWithoutRefsExecutionFailureTemplate, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPullStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPullSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPullFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPullExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	arguments := command.Details.Arguments
	positional := formatter.collectPositionalArguments(arguments[1:])
	remoteName := fallbackUnknownValueLabelConstant
	if len(positional) > 0 {
		remoteName = positional[0]
	}

	if containsArgument(arguments, gitTagsFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitPushTagsStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitPushTagsSuccessTemplateConstant, remoteName, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitPushTagsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitPushTagsExecutionFailureTemplate, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	branchName := fallbackUnknownValueLabelConstant
	if len(positional) > 1 {
		branchName = positional[1]
	}
	switch stage {
	case messageStageStart:
		if hasArgumentWithPrefix(arguments, gitForceWithLeaseFlagConstant) {
			return fmt.Sprintf(gitForcePushStartTemplateConstant, branchName, remoteName, workingDirectory)
		}
		return fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchName, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplate, branchName, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := formatter.collectPositionalArguments(command.Details.Arguments[1:])
	configurationKey := fallbackUnknownValueLabelConstant
	if len(positional) > 0 {
		configurationKey = positional[0]
	}
	isWrite := len(positional) > 1

	if isWrite {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigWriteStartTemplateConstant, configurationKey, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitConfigWriteSuccessTemplateConstant, configurationKey, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitConfigWriteFailureTemplateConstant, configurationKey, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitConfigWriteExecutionFailureTemplate, configurationKey, workingDirectory, formatter.describeFailure(failure))
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitConfigReadStartTemplateConstant, configurationKey, workingDirectory)
	case messageStageSuccess:
		trimmed := strings.TrimSpace(result.StandardOutput)
		if len(trimmed) == 0 {
			return fmt.Sprintf(gitConfigReadMissingTemplateConstant, configurationKey, workingDirectory)
		}
		return fmt.Sprintf(gitConfigReadSuccessTemplateConstant, configurationKey, workingDirectory, trimmed)
	case messageStageFailure:
		return fmt.Sprintf(gitConfigReadFailureTemplateConstant, configurationKey, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitConfigReadExecutionFailureTemplate, configurationKey, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevListMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	rangeExpression := formatter.ensureValue(formatter.resolveTrailingReference(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevListStartTemplateConstant, rangeExpression, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevListSuccessTemplateConstant, rangeExpression, workingDirectory, strings.TrimSpace(result.StandardOutput))
	case messageStageFailure:
		return fmt.Sprintf(gitRevListFailureTemplateConstant, rangeExpression, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevListExecutionFailureTemplate, rangeExpression, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) resolveTrailingReference(arguments []string) string {
	for index := len(arguments) - 1; index > 0; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		return trimmed
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) collectPositionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func hasArgumentWithPrefix(arguments []string, prefix string) bool {
	for _, argument := range arguments {
		if strings.HasPrefix(strings.TrimSpace(argument), prefix) {
			return true
		}
	}
	return false
}
