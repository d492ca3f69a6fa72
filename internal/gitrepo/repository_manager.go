package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/execshell"
)

const (
	gitStatusSubcommandConstant                 = "status"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitVerifyFlagConstant                       = "--verify"
	gitQuietFlagConstant                        = "--quiet"
	gitHeadReferenceConstant                    = "HEAD"
	gitLocalBranchReferencePrefixConstant       = "refs/heads/"
	gitRemoteBranchReferenceTemplateConstant    = "refs/remotes/%s/%s"
	gitTagReferencePrefixConstant               = "refs/tags/"
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteGetURLSubcommandConstant           = "get-url"
	gitCheckoutSubcommandConstant               = "checkout"
	gitBranchSubcommandConstant                 = "branch"
	gitBranchDeleteFlagConstant                 = "-d"
	gitBranchForceDeleteFlagConstant            = "-D"
	gitBranchMergedFlagConstant                 = "--merged"
	gitMergeSubcommandConstant                  = "merge"
	gitMergeNoFastForwardFlagConstant           = "--no-ff"
	gitMessageFlagConstant                      = "-m"
	gitResetSubcommandConstant                  = "reset"
	gitResetHardFlagConstant                    = "--hard"
	gitTagSubcommandConstant                    = "tag"
	gitTagAnnotateFlagConstant                  = "-a"
	gitFetchSubcommandConstant                  = "fetch"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardOnlyFlagConstant          = "--ff-only"
	gitPushSubcommandConstant                   = "push"
	gitPushForceWithLeaseFlagConstant           = "--force-with-lease"
	gitPushTagsFlagConstant                     = "--tags"
	gitRevListSubcommandConstant                = "rev-list"
	gitRevListCountFlagConstant                 = "--count"
	gitConfigSubcommandConstant                 = "config"
	gitConfigLocalFlagConstant                  = "--local"
	gitConfigGetFlagConstant                    = "--get"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	pushOperationNameConstant                   = "push"
	pushTagsOperationNameConstant               = "push --tags"
	branchMarkerPrefixCurrentConstant           = "*"
	branchMarkerPrefixWorktreeConstant          = "+"
	loggerMissingMessageConstant                = "logger not configured"
	executorMissingMessageConstant              = "git executor not configured"
	repositoryPathRequiredMessageConstant       = "repository path must be provided"
	referenceRequiredMessageConstant            = "reference name must be provided"
	commitCountParseErrorTemplateConstant       = "unable to parse commit count %q: %w"
	resolveReferenceErrorTemplateConstant       = "unable to resolve %s: %w"
)

// ErrLoggerNotConfigured indicates the repository manager was created without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrExecutorNotConfigured indicates the repository manager was created without a git executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an operation received an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrReferenceNameRequired indicates an operation received an empty branch, tag, or remote name.
var ErrReferenceNameRequired = errors.New(referenceRequiredMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager exposes repository-level git operations.
type RepositoryManager struct {
	logger   *zap.Logger
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided collaborators.
func NewRepositoryManager(logger *zap.Logger, executor GitExecutor) (*RepositoryManager, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{logger: logger, executor: executor}, nil
}

// CheckCleanWorktree reports whether the repository has no uncommitted modifications.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(result.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the branch currently checked out, or HEAD when detached.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// BranchExists reports whether a local branch with the given name exists.
func (manager *RepositoryManager) BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return false, ErrReferenceNameRequired
	}
	return manager.referenceExists(executionContext, repositoryPath, gitLocalBranchReferencePrefixConstant+trimmedBranchName)
}

// RemoteBranchExists reports whether the remote tracking ref for a branch exists locally.
func (manager *RepositoryManager) RemoteBranchExists(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (bool, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedRemoteName) == 0 || len(trimmedBranchName) == 0 {
		return false, ErrReferenceNameRequired
	}
	return manager.referenceExists(executionContext, repositoryPath, fmt.Sprintf(gitRemoteBranchReferenceTemplateConstant, trimmedRemoteName, trimmedBranchName))
}

// TagExists reports whether a tag with the given name exists.
func (manager *RepositoryManager) TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error) {
	trimmedTagName := strings.TrimSpace(tagName)
	if len(trimmedTagName) == 0 {
		return false, ErrReferenceNameRequired
	}
	return manager.referenceExists(executionContext, repositoryPath, gitTagReferencePrefixConstant+trimmedTagName)
}

// RemoteExists reports whether the named remote is configured for the repository.
func (manager *RepositoryManager) RemoteExists(executionContext context.Context, repositoryPath string, remoteName string) (bool, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return false, ErrReferenceNameRequired
	}
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, trimmedRemoteName)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

// CheckoutBranch switches the working tree to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitCheckoutSubcommandConstant, strings.TrimSpace(branchName))
	return executionError
}

// CreateBranch creates a branch pointing at the provided start point without checking it out.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, strings.TrimSpace(branchName), strings.TrimSpace(startPoint))
	return executionError
}

// DeleteBranch removes a local branch, forcing deletion when requested.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string, force bool) error {
	deleteFlag := gitBranchDeleteFlagConstant
	if force {
		deleteFlag = gitBranchForceDeleteFlagConstant
	}
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, deleteFlag, strings.TrimSpace(branchName))
	return executionError
}

// DeleteBranches removes several local branches with a single invocation.
func (manager *RepositoryManager) DeleteBranches(executionContext context.Context, repositoryPath string, branchNames []string, force bool) error {
	if len(branchNames) == 0 {
		return nil
	}
	deleteFlag := gitBranchDeleteFlagConstant
	if force {
		deleteFlag = gitBranchForceDeleteFlagConstant
	}
	deleteArguments := append([]string{gitBranchSubcommandConstant, deleteFlag}, branchNames...)
	_, executionError := manager.executeGit(executionContext, repositoryPath, deleteArguments...)
	return executionError
}

// MergeNoFastForward merges the named branch into the current checkout with an explicit merge commit.
func (manager *RepositoryManager) MergeNoFastForward(executionContext context.Context, repositoryPath string, branchName string, message string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitMergeSubcommandConstant, gitMergeNoFastForwardFlagConstant, gitMessageFlagConstant, message, strings.TrimSpace(branchName))
	return executionError
}

// ResetHard moves the current checkout to the target reference discarding local history.
func (manager *RepositoryManager) ResetHard(executionContext context.Context, repositoryPath string, targetReference string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitResetSubcommandConstant, gitResetHardFlagConstant, strings.TrimSpace(targetReference))
	return executionError
}

// CreateAnnotatedTag creates an annotated tag at the current checkout.
func (manager *RepositoryManager) CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, message string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitTagSubcommandConstant, gitTagAnnotateFlagConstant, strings.TrimSpace(tagName), gitMessageFlagConstant, message)
	return executionError
}

// ResolveCommit resolves a reference to its commit identifier.
func (manager *RepositoryManager) ResolveCommit(executionContext context.Context, repositoryPath string, reference string) (string, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return "", ErrReferenceNameRequired
	}
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, trimmedReference)
	if executionError != nil {
		return "", fmt.Errorf(resolveReferenceErrorTemplateConstant, trimmedReference, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// Fetch retrieves updates for the provided references from the named remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string, references ...string) error {
	fetchArguments := append([]string{gitFetchSubcommandConstant, strings.TrimSpace(remoteName)}, references...)
	_, executionError := manager.executeGit(executionContext, repositoryPath, fetchArguments...)
	return executionError
}

// PullFastForward updates the current checkout from its upstream, fast-forward only.
func (manager *RepositoryManager) PullFastForward(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitPullSubcommandConstant, gitPullFastForwardOnlyFlagConstant)
	return executionError
}

// PushBranch pushes a branch to the named remote, optionally protected by a compare-and-swap lease.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string, forceWithLease bool) error {
	pushArguments := []string{gitPushSubcommandConstant}
	if forceWithLease {
		pushArguments = append(pushArguments, gitPushForceWithLeaseFlagConstant)
	}
	pushArguments = append(pushArguments, strings.TrimSpace(remoteName), strings.TrimSpace(branchName))
	_, executionError := manager.executeGit(executionContext, repositoryPath, pushArguments...)
	return manager.classifyPushError(pushOperationNameConstant, executionError)
}

// PushTags pushes every local tag to the named remote in one batch.
func (manager *RepositoryManager) PushTags(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitPushSubcommandConstant, strings.TrimSpace(remoteName), gitPushTagsFlagConstant)
	return manager.classifyPushError(pushTagsOperationNameConstant, executionError)
}

// CountCommits returns the number of commits selected by the provided range expression.
func (manager *RepositoryManager) CountCommits(executionContext context.Context, repositoryPath string, rangeExpression string) (int, error) {
	trimmedRangeExpression := strings.TrimSpace(rangeExpression)
	if len(trimmedRangeExpression) == 0 {
		return 0, ErrReferenceNameRequired
	}
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitRevListSubcommandConstant, gitRevListCountFlagConstant, trimmedRangeExpression)
	if executionError != nil {
		return 0, executionError
	}
	trimmedOutput := strings.TrimSpace(result.StandardOutput)
	commitCount, parseError := strconv.Atoi(trimmedOutput)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseErrorTemplateConstant, trimmedOutput, parseError)
	}
	return commitCount, nil
}

// CountAheadBehind returns how many commits the local branch is ahead of and
// behind its remote counterpart.
func (manager *RepositoryManager) CountAheadBehind(executionContext context.Context, repositoryPath string, localBranch string, remoteBranch string) (int, int, error) {
	trimmedLocalBranch := strings.TrimSpace(localBranch)
	trimmedRemoteBranch := strings.TrimSpace(remoteBranch)
	if len(trimmedLocalBranch) == 0 || len(trimmedRemoteBranch) == 0 {
		return 0, 0, ErrReferenceNameRequired
	}
	aheadCount, aheadError := manager.CountCommits(executionContext, repositoryPath, trimmedRemoteBranch+".."+trimmedLocalBranch)
	if aheadError != nil {
		return 0, 0, aheadError
	}
	behindCount, behindError := manager.CountCommits(executionContext, repositoryPath, trimmedLocalBranch+".."+trimmedRemoteBranch)
	if behindError != nil {
		return 0, 0, behindError
	}
	return aheadCount, behindCount, nil
}

// ListMergedBranches returns the local branches already merged into the target branch.
func (manager *RepositoryManager) ListMergedBranches(executionContext context.Context, repositoryPath string, targetBranch string) ([]string, error) {
	trimmedTargetBranch := strings.TrimSpace(targetBranch)
	if len(trimmedTargetBranch) == 0 {
		return nil, ErrReferenceNameRequired
	}
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitBranchSubcommandConstant, gitBranchMergedFlagConstant, trimmedTargetBranch)
	if executionError != nil {
		return nil, executionError
	}

	mergedBranches := []string{}
	for _, outputLine := range strings.Split(result.StandardOutput, "\n") {
		branchName := strings.TrimSpace(outputLine)
		branchName = strings.TrimSpace(strings.TrimPrefix(branchName, branchMarkerPrefixCurrentConstant))
		branchName = strings.TrimSpace(strings.TrimPrefix(branchName, branchMarkerPrefixWorktreeConstant))
		if len(branchName) == 0 {
			continue
		}
		mergedBranches = append(mergedBranches, branchName)
	}
	return mergedBranches, nil
}

// ConfigGet reads a repository-scoped configuration value, returning an empty string when unset.
func (manager *RepositoryManager) ConfigGet(executionContext context.Context, repositoryPath string, configurationKey string) (string, error) {
	trimmedConfigurationKey := strings.TrimSpace(configurationKey)
	if len(trimmedConfigurationKey) == 0 {
		return "", ErrReferenceNameRequired
	}
	result, executionError := manager.executeGit(executionContext, repositoryPath, gitConfigSubcommandConstant, gitConfigLocalFlagConstant, gitConfigGetFlagConstant, trimmedConfigurationKey)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return "", nil
		}
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// ConfigSet writes a repository-scoped configuration value.
func (manager *RepositoryManager) ConfigSet(executionContext context.Context, repositoryPath string, configurationKey string, configurationValue string) error {
	trimmedConfigurationKey := strings.TrimSpace(configurationKey)
	if len(trimmedConfigurationKey) == 0 {
		return ErrReferenceNameRequired
	}
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitConfigSubcommandConstant, gitConfigLocalFlagConstant, trimmedConfigurationKey, configurationValue)
	return executionError
}

func (manager *RepositoryManager) referenceExists(executionContext context.Context, repositoryPath string, fullReference string) (bool, error) {
	_, executionError := manager.executeGit(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, fullReference)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return true, nil
}

func (manager *RepositoryManager) classifyPushError(operationName string, executionError error) error {
	if executionError == nil {
		return nil
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return execshell.NewGitOperationError(operationName, commandFailure.Result.StandardError)
	}
	return executionError
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: trimmedRepositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
}
