package gitrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/execshell"
	"github.com/seasonforge/seasonctl/internal/gitrepo"
)

const (
	repositoryPathConstant         = "/tmp/season-repo"
	originRemoteNameConstant       = "origin"
	mainBranchNameConstant         = "main"
	developBranchNameConstant      = "develop"
	finalTagNameConstant           = "v2026.final"
	seasonConfigurationKeyConstant = "season.current-year"
)

type scriptedExecutionStep struct {
	result         execshell.ExecutionResult
	executionError error
}

type scriptedGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	scriptedSteps   []scriptedExecutionStep
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	stepIndex := len(executor.recordedDetails) - 1
	if stepIndex >= len(executor.scriptedSteps) {
		return execshell.ExecutionResult{}, nil
	}
	scriptedStep := executor.scriptedSteps[stepIndex]
	return scriptedStep.result, scriptedStep.executionError
}

func newCommandFailure(arguments []string, exitCode int, standardError string) execshell.CommandFailedError {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{
			Name:    execshell.CommandGit,
			Details: execshell.CommandDetails{Arguments: arguments},
		},
		Result: execshell.ExecutionResult{StandardError: standardError, ExitCode: exitCode},
	}
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		executor      gitrepo.GitExecutor
		expectedError error
	}{
		{
			name:          "missing_logger",
			logger:        nil,
			executor:      &scriptedGitExecutor{},
			expectedError: gitrepo.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_executor",
			logger:        zap.NewNop(),
			executor:      nil,
			expectedError: gitrepo.ErrExecutorNotConfigured,
		},
		{
			name:          "configured",
			logger:        zap.NewNop(),
			executor:      &scriptedGitExecutor{},
			expectedError: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			manager, creationError := gitrepo.NewRepositoryManager(testCase.logger, testCase.executor)
			if testCase.expectedError != nil {
				require.ErrorIs(subtestInstance, creationError, testCase.expectedError)
				require.Nil(subtestInstance, manager)
				return
			}
			require.NoError(subtestInstance, creationError)
			require.NotNil(subtestInstance, manager)
		})
	}
}

func TestCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name          string
		statusOutput  string
		expectedClean bool
	}{
		{name: "clean", statusOutput: "", expectedClean: true},
		{name: "whitespace_only", statusOutput: "\n", expectedClean: true},
		{name: "dirty", statusOutput: " M internal/service.go\n?? notes.txt\n", expectedClean: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
				{result: execshell.ExecutionResult{StandardOutput: testCase.statusOutput}},
			}}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			clean, checkError := manager.CheckCleanWorktree(context.Background(), repositoryPathConstant)
			require.NoError(subtestInstance, checkError)
			require.Equal(subtestInstance, testCase.expectedClean, clean)
			require.Equal(subtestInstance, []string{"status", "--porcelain"}, executor.recordedDetails[0].Arguments)
			require.Equal(subtestInstance, repositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestGetCurrentBranch(testInstance *testing.T) {
	executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
		{result: execshell.ExecutionResult{StandardOutput: developBranchNameConstant + "\n"}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	branchName, branchError := manager.GetCurrentBranch(context.Background(), repositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, developBranchNameConstant, branchName)
	require.Equal(testInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recordedDetails[0].Arguments)
}

func TestReferenceExistenceChecks(testInstance *testing.T) {
	verifyFailure := newCommandFailure([]string{"rev-parse"}, 1, "")

	testCases := []struct {
		name              string
		lookup            func(manager *gitrepo.RepositoryManager, executionContext context.Context) (bool, error)
		scriptedSteps     []scriptedExecutionStep
		expectedArguments []string
		expectedExists    bool
	}{
		{
			name: "branch_exists",
			lookup: func(manager *gitrepo.RepositoryManager, executionContext context.Context) (bool, error) {
				return manager.BranchExists(executionContext, repositoryPathConstant, mainBranchNameConstant)
			},
			scriptedSteps:     []scriptedExecutionStep{{}},
			expectedArguments: []string{"rev-parse", "--verify", "--quiet", "refs/heads/main"},
			expectedExists:    true,
		},
		{
			name: "branch_missing",
			lookup: func(manager *gitrepo.RepositoryManager, executionContext context.Context) (bool, error) {
				return manager.BranchExists(executionContext, repositoryPathConstant, "season/next")
			},
			scriptedSteps:     []scriptedExecutionStep{{executionError: verifyFailure}},
			expectedArguments: []string{"rev-parse", "--verify", "--quiet", "refs/heads/season/next"},
			expectedExists:    false,
		},
		{
			name: "remote_branch_exists",
			lookup: func(manager *gitrepo.RepositoryManager, executionContext context.Context) (bool, error) {
				return manager.RemoteBranchExists(executionContext, repositoryPathConstant, originRemoteNameConstant, mainBranchNameConstant)
			},
			scriptedSteps:     []scriptedExecutionStep{{}},
			expectedArguments: []string{"rev-parse", "--verify", "--quiet", "refs/remotes/origin/main"},
			expectedExists:    true,
		},
		{
			name: "tag_missing",
			lookup: func(manager *gitrepo.RepositoryManager, executionContext context.Context) (bool, error) {
				return manager.TagExists(executionContext, repositoryPathConstant, finalTagNameConstant)
			},
			scriptedSteps:     []scriptedExecutionStep{{executionError: verifyFailure}},
			expectedArguments: []string{"rev-parse", "--verify", "--quiet", "refs/tags/" + finalTagNameConstant},
			expectedExists:    false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{scriptedSteps: testCase.scriptedSteps}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			exists, lookupError := testCase.lookup(manager, context.Background())
			require.NoError(subtestInstance, lookupError)
			require.Equal(subtestInstance, testCase.expectedExists, exists)
			require.Equal(subtestInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestRemoteExists(testInstance *testing.T) {
	testCases := []struct {
		name           string
		scriptedSteps  []scriptedExecutionStep
		expectedExists bool
	}{
		{
			name:           "configured",
			scriptedSteps:  []scriptedExecutionStep{{result: execshell.ExecutionResult{StandardOutput: "git@example.com:seasonforge/app.git\n"}}},
			expectedExists: true,
		},
		{
			name:           "missing",
			scriptedSteps:  []scriptedExecutionStep{{executionError: newCommandFailure([]string{"remote"}, 2, "error: No such remote 'origin'")}},
			expectedExists: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{scriptedSteps: testCase.scriptedSteps}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			exists, lookupError := manager.RemoteExists(context.Background(), repositoryPathConstant, originRemoteNameConstant)
			require.NoError(subtestInstance, lookupError)
			require.Equal(subtestInstance, testCase.expectedExists, exists)
			require.Equal(subtestInstance, []string{"remote", "get-url", "origin"}, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestMutatingOperationsIssueExpectedArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		operation         func(manager *gitrepo.RepositoryManager, executionContext context.Context) error
		expectedArguments []string
	}{
		{
			name: "checkout",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.CheckoutBranch(executionContext, repositoryPathConstant, developBranchNameConstant)
			},
			expectedArguments: []string{"checkout", "develop"},
		},
		{
			name: "create_branch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.CreateBranch(executionContext, repositoryPathConstant, "season/next", mainBranchNameConstant)
			},
			expectedArguments: []string{"branch", "season/next", "main"},
		},
		{
			name: "delete_branch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.DeleteBranch(executionContext, repositoryPathConstant, "feature/widget", false)
			},
			expectedArguments: []string{"branch", "-d", "feature/widget"},
		},
		{
			name: "force_delete_branch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.DeleteBranch(executionContext, repositoryPathConstant, "feature/widget", true)
			},
			expectedArguments: []string{"branch", "-D", "feature/widget"},
		},
		{
			name: "delete_branches_batch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.DeleteBranches(executionContext, repositoryPathConstant, []string{"feature/one", "feature/two"}, false)
			},
			expectedArguments: []string{"branch", "-d", "feature/one", "feature/two"},
		},
		{
			name: "merge_no_fast_forward",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.MergeNoFastForward(executionContext, repositoryPathConstant, developBranchNameConstant, "Finalize season 2026")
			},
			expectedArguments: []string{"merge", "--no-ff", "-m", "Finalize season 2026", "develop"},
		},
		{
			name: "reset_hard",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.ResetHard(executionContext, repositoryPathConstant, mainBranchNameConstant)
			},
			expectedArguments: []string{"reset", "--hard", "main"},
		},
		{
			name: "annotated_tag",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.CreateAnnotatedTag(executionContext, repositoryPathConstant, finalTagNameConstant, "Final state of season 2026")
			},
			expectedArguments: []string{"tag", "-a", finalTagNameConstant, "-m", "Final state of season 2026"},
		},
		{
			name: "fetch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Fetch(executionContext, repositoryPathConstant, originRemoteNameConstant, mainBranchNameConstant, developBranchNameConstant)
			},
			expectedArguments: []string{"fetch", "origin", "main", "develop"},
		},
		{
			name: "pull_fast_forward",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.PullFastForward(executionContext, repositoryPathConstant)
			},
			expectedArguments: []string{"pull", "--ff-only"},
		},
		{
			name: "push_branch",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.PushBranch(executionContext, repositoryPathConstant, originRemoteNameConstant, mainBranchNameConstant, false)
			},
			expectedArguments: []string{"push", "origin", "main"},
		},
		{
			name: "push_branch_with_lease",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.PushBranch(executionContext, repositoryPathConstant, originRemoteNameConstant, mainBranchNameConstant, true)
			},
			expectedArguments: []string{"push", "--force-with-lease", "origin", "main"},
		},
		{
			name: "push_tags",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.PushTags(executionContext, repositoryPathConstant, originRemoteNameConstant)
			},
			expectedArguments: []string{"push", "origin", "--tags"},
		},
		{
			name: "config_set",
			operation: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.ConfigSet(executionContext, repositoryPathConstant, seasonConfigurationKeyConstant, "2026")
			},
			expectedArguments: []string{"config", "--local", seasonConfigurationKeyConstant, "2026"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			operationError := testCase.operation(manager, context.Background())
			require.NoError(subtestInstance, operationError)
			require.Len(subtestInstance, executor.recordedDetails, 1)
			require.Equal(subtestInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
			require.Equal(subtestInstance, "0", executor.recordedDetails[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
		})
	}
}

func TestPushBranchClassifiesFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		standardError string
		expectedKind  execshell.GitFailureKind
	}{
		{
			name:          "rejected_non_fast_forward",
			standardError: "! [rejected] main -> main (non-fast-forward)",
			expectedKind:  execshell.GitFailureNonFastForward,
		},
		{
			name:          "stale_lease",
			standardError: "! [rejected] main -> main (stale info)",
			expectedKind:  execshell.GitFailureStaleInfo,
		},
		{
			name:          "authentication",
			standardError: "fatal: Authentication failed for 'https://example.com/app.git'",
			expectedKind:  execshell.GitFailureAuthentication,
		},
		{
			name:          "protected_branch",
			standardError: "remote: error: GH006: Protected branch hook declined",
			expectedKind:  execshell.GitFailurePermissionDenied,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
				{executionError: newCommandFailure([]string{"push"}, 1, testCase.standardError)},
			}}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			pushError := manager.PushBranch(context.Background(), repositoryPathConstant, originRemoteNameConstant, mainBranchNameConstant, false)
			require.Error(subtestInstance, pushError)

			var operationError execshell.GitOperationError
			require.ErrorAs(subtestInstance, pushError, &operationError)
			require.Equal(subtestInstance, testCase.expectedKind, operationError.Kind)
			require.Equal(subtestInstance, "push", operationError.Operation)
		})
	}
}

func TestCountCommits(testInstance *testing.T) {
	executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
		{result: execshell.ExecutionResult{StandardOutput: "4\n"}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	commitCount, countError := manager.CountCommits(context.Background(), repositoryPathConstant, "origin/main..main")
	require.NoError(testInstance, countError)
	require.Equal(testInstance, 4, commitCount)
	require.Equal(testInstance, []string{"rev-list", "--count", "origin/main..main"}, executor.recordedDetails[0].Arguments)
}

func TestResolveCommit(testInstance *testing.T) {
	executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
		{result: execshell.ExecutionResult{StandardOutput: "a1b2c3d4\n"}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	commitIdentifier, resolveError := manager.ResolveCommit(context.Background(), repositoryPathConstant, mainBranchNameConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "a1b2c3d4", commitIdentifier)
	require.Equal(testInstance, []string{"rev-parse", "--verify", "main"}, executor.recordedDetails[0].Arguments)

	_, emptyReferenceError := manager.ResolveCommit(context.Background(), repositoryPathConstant, "  ")
	require.ErrorIs(testInstance, emptyReferenceError, gitrepo.ErrReferenceNameRequired)
}

func TestCountAheadBehind(testInstance *testing.T) {
	executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
		{result: execshell.ExecutionResult{StandardOutput: "2\n"}},
		{result: execshell.ExecutionResult{StandardOutput: "5\n"}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	aheadCount, behindCount, countError := manager.CountAheadBehind(context.Background(), repositoryPathConstant, mainBranchNameConstant, "origin/main")
	require.NoError(testInstance, countError)
	require.Equal(testInstance, 2, aheadCount)
	require.Equal(testInstance, 5, behindCount)
	require.Equal(testInstance, []string{"rev-list", "--count", "origin/main..main"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, []string{"rev-list", "--count", "main..origin/main"}, executor.recordedDetails[1].Arguments)
}

func TestListMergedBranches(testInstance *testing.T) {
	branchListing := strings.Join([]string{
		"* develop",
		"  feature/completed",
		"+ linked-worktree-branch",
		"  main",
		"",
	}, "\n")
	executor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{
		{result: execshell.ExecutionResult{StandardOutput: branchListing}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	mergedBranches, listError := manager.ListMergedBranches(context.Background(), repositoryPathConstant, mainBranchNameConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"develop", "feature/completed", "linked-worktree-branch", "main"}, mergedBranches)
	require.Equal(testInstance, []string{"branch", "--merged", "main"}, executor.recordedDetails[0].Arguments)
}

func TestConfigGet(testInstance *testing.T) {
	testCases := []struct {
		name          string
		scriptedSteps []scriptedExecutionStep
		expectedValue string
	}{
		{
			name:          "value_present",
			scriptedSteps: []scriptedExecutionStep{{result: execshell.ExecutionResult{StandardOutput: "2026\n"}}},
			expectedValue: "2026",
		},
		{
			name:          "value_unset",
			scriptedSteps: []scriptedExecutionStep{{executionError: newCommandFailure([]string{"config"}, 1, "")}},
			expectedValue: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			executor := &scriptedGitExecutor{scriptedSteps: testCase.scriptedSteps}
			manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
			require.NoError(subtestInstance, creationError)

			configurationValue, getError := manager.ConfigGet(context.Background(), repositoryPathConstant, seasonConfigurationKeyConstant)
			require.NoError(subtestInstance, getError)
			require.Equal(subtestInstance, testCase.expectedValue, configurationValue)
			require.Equal(subtestInstance, []string{"config", "--local", "--get", seasonConfigurationKeyConstant}, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestOperationsValidateInputs(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(zap.NewNop(), executor)
	require.NoError(testInstance, creationError)

	_, emptyPathError := manager.CheckCleanWorktree(context.Background(), "  ")
	require.ErrorIs(testInstance, emptyPathError, gitrepo.ErrRepositoryPathRequired)

	_, emptyBranchError := manager.BranchExists(context.Background(), repositoryPathConstant, " ")
	require.ErrorIs(testInstance, emptyBranchError, gitrepo.ErrReferenceNameRequired)

	_, emptyKeyError := manager.ConfigGet(context.Background(), repositoryPathConstant, "")
	require.ErrorIs(testInstance, emptyKeyError, gitrepo.ErrReferenceNameRequired)

	propagatedError := errors.New("runner unavailable")
	failingExecutor := &scriptedGitExecutor{scriptedSteps: []scriptedExecutionStep{{executionError: propagatedError}}}
	failingManager, failingCreationError := gitrepo.NewRepositoryManager(zap.NewNop(), failingExecutor)
	require.NoError(testInstance, failingCreationError)

	_, propagated := failingManager.GetCurrentBranch(context.Background(), repositoryPathConstant)
	require.ErrorIs(testInstance, propagated, propagatedError)

	require.Empty(testInstance, executor.recordedDetails)
}
