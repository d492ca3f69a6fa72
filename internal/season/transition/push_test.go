package transition_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/execshell"
	"github.com/seasonforge/seasonctl/internal/season/transition"
)

const (
	fakeRepositoryPathConstant = "/tmp/season-repo"
	fakeRemoteNameConstant     = "origin"
)

type fakeRepository struct {
	branches       map[string]string
	remoteBranches map[string]string
	tags           map[string]string
	remotes        map[string]bool
	currentBranch  string
	worktreeClean  bool
	aheadBehind    map[string][2]int
	mergedBranches map[string][]string
	pushErrors     map[string]error
	pushTagsError  error
	fetchError     error
	commitCounter  int

	pushedBranches  []string
	forcedBranches  []string
	tagPushCount    int
	deletedBranches []string
	checkouts       []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		branches:       map[string]string{},
		remoteBranches: map[string]string{},
		tags:           map[string]string{},
		remotes:        map[string]bool{},
		aheadBehind:    map[string][2]int{},
		mergedBranches: map[string][]string{},
		pushErrors:     map[string]error{},
		worktreeClean:  true,
	}
}

func (repository *fakeRepository) resolve(reference string) string {
	if commitIdentifier, exists := repository.branches[reference]; exists {
		return commitIdentifier
	}
	if commitIdentifier, exists := repository.tags[reference]; exists {
		return commitIdentifier
	}
	return reference
}

func (repository *fakeRepository) CheckCleanWorktree(context.Context, string) (bool, error) {
	return repository.worktreeClean, nil
}

func (repository *fakeRepository) GetCurrentBranch(context.Context, string) (string, error) {
	return repository.currentBranch, nil
}

func (repository *fakeRepository) BranchExists(_ context.Context, _ string, branchName string) (bool, error) {
	_, exists := repository.branches[branchName]
	return exists, nil
}

func (repository *fakeRepository) RemoteBranchExists(_ context.Context, _ string, remoteName string, branchName string) (bool, error) {
	_, exists := repository.remoteBranches[remoteName+"/"+branchName]
	return exists, nil
}

func (repository *fakeRepository) RemoteExists(_ context.Context, _ string, remoteName string) (bool, error) {
	return repository.remotes[remoteName], nil
}

func (repository *fakeRepository) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	if _, exists := repository.branches[branchName]; !exists {
		return fmt.Errorf("branch %s does not exist", branchName)
	}
	repository.currentBranch = branchName
	repository.checkouts = append(repository.checkouts, branchName)
	return nil
}

func (repository *fakeRepository) CreateBranch(_ context.Context, _ string, branchName string, startPoint string) error {
	repository.branches[branchName] = repository.resolve(startPoint)
	return nil
}

func (repository *fakeRepository) DeleteBranches(_ context.Context, _ string, branchNames []string, _ bool) error {
	for _, branchName := range branchNames {
		delete(repository.branches, branchName)
		repository.deletedBranches = append(repository.deletedBranches, branchName)
	}
	return nil
}

func (repository *fakeRepository) MergeNoFastForward(_ context.Context, _ string, branchName string, _ string) error {
	repository.commitCounter++
	repository.branches[repository.currentBranch] = fmt.Sprintf("merge-%d(%s,%s)",
		repository.commitCounter, repository.branches[repository.currentBranch], repository.resolve(branchName))
	return nil
}

func (repository *fakeRepository) ResetHard(_ context.Context, _ string, targetReference string) error {
	repository.branches[repository.currentBranch] = repository.resolve(targetReference)
	return nil
}

func (repository *fakeRepository) TagExists(_ context.Context, _ string, tagName string) (bool, error) {
	_, exists := repository.tags[tagName]
	return exists, nil
}

func (repository *fakeRepository) CreateAnnotatedTag(_ context.Context, _ string, tagName string, _ string) error {
	if _, exists := repository.tags[tagName]; exists {
		return fmt.Errorf("tag %s already exists", tagName)
	}
	repository.tags[tagName] = repository.resolve(repository.currentBranch)
	return nil
}

func (repository *fakeRepository) Fetch(context.Context, string, string, ...string) error {
	return repository.fetchError
}

func (repository *fakeRepository) PullFastForward(context.Context, string) error {
	return nil
}

func (repository *fakeRepository) PushBranch(_ context.Context, _ string, remoteName string, branchName string, forceWithLease bool) error {
	if pushError, exists := repository.pushErrors[branchName]; exists {
		return pushError
	}
	repository.pushedBranches = append(repository.pushedBranches, branchName)
	if forceWithLease {
		repository.forcedBranches = append(repository.forcedBranches, branchName)
	}
	repository.remoteBranches[remoteName+"/"+branchName] = repository.branches[branchName]
	return nil
}

func (repository *fakeRepository) PushTags(context.Context, string, string) error {
	if repository.pushTagsError != nil {
		return repository.pushTagsError
	}
	repository.tagPushCount++
	return nil
}

func (repository *fakeRepository) CountAheadBehind(_ context.Context, _ string, localBranch string, remoteReference string) (int, int, error) {
	if counts, exists := repository.aheadBehind[localBranch]; exists {
		return counts[0], counts[1], nil
	}
	if repository.branches[localBranch] == repository.remoteBranches[remoteReference] {
		return 0, 0, nil
	}
	return 1, 0, nil
}

func (repository *fakeRepository) ListMergedBranches(_ context.Context, _ string, targetBranch string) ([]string, error) {
	return repository.mergedBranches[targetBranch], nil
}

func newPushEngine(testInstance *testing.T, repository transition.Repository) *transition.PushEngine {
	engine, creationError := transition.NewPushEngine(transition.PushEngineDependencies{
		Logger:     zap.NewNop(),
		Repository: repository,
	})
	require.NoError(testInstance, creationError)
	return engine
}

func TestPushEngineSkipsMissingBranch(testInstance *testing.T) {
	repository := newFakeRepository()
	engine := newPushEngine(testInstance, repository)

	result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
		RepositoryPath: fakeRepositoryPathConstant,
		RemoteName:     fakeRemoteNameConstant,
		BranchName:     "season/next",
	})
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, transition.PushStatusSkipped, result.Status)
	require.Empty(testInstance, repository.pushedBranches)
}

func TestPushEngineReportsUpToDateWithoutNetworkWrite(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.branches["main"] = "c1"
	repository.remoteBranches["origin/main"] = "c1"
	engine := newPushEngine(testInstance, repository)

	result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
		RepositoryPath: fakeRepositoryPathConstant,
		RemoteName:     fakeRemoteNameConstant,
		BranchName:     "main",
	})
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, transition.PushStatusUpToDate, result.Status)
	require.False(testInstance, result.UsedForce)
	require.Empty(testInstance, repository.pushedBranches)
}

func TestPushEngineCreatesMissingRemoteBranch(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.branches["season/previous-2025"] = "c2"
	engine := newPushEngine(testInstance, repository)

	result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
		RepositoryPath: fakeRepositoryPathConstant,
		RemoteName:     fakeRemoteNameConstant,
		BranchName:     "season/previous-2025",
		AllowForce:     true,
	})
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, transition.PushStatusPushed, result.Status)
	require.False(testInstance, result.UsedForce)
	require.Equal(testInstance, []string{"season/previous-2025"}, repository.pushedBranches)
	require.Empty(testInstance, repository.forcedBranches)
}

func TestPushEngineForcesOnlyWhenAllowed(testInstance *testing.T) {
	testCases := []struct {
		name              string
		allowForce        bool
		expectedUsedForce bool
	}{
		{name: "diverged_force_eligible", allowForce: true, expectedUsedForce: true},
		{name: "diverged_force_forbidden", allowForce: false, expectedUsedForce: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			repository := newFakeRepository()
			repository.branches["main"] = "c9"
			repository.remoteBranches["origin/main"] = "c5"
			repository.aheadBehind["main"] = [2]int{0, 3}
			engine := newPushEngine(subtestInstance, repository)

			result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
				RepositoryPath: fakeRepositoryPathConstant,
				RemoteName:     fakeRemoteNameConstant,
				BranchName:     "main",
				AllowForce:     testCase.allowForce,
			})
			require.NoError(subtestInstance, pushError)
			require.Equal(subtestInstance, transition.PushStatusPushed, result.Status)
			require.Equal(subtestInstance, testCase.expectedUsedForce, result.UsedForce)
			if testCase.expectedUsedForce {
				require.Equal(subtestInstance, []string{"main"}, repository.forcedBranches)
			} else {
				require.Empty(subtestInstance, repository.forcedBranches)
			}
		})
	}
}

func TestPushEngineClassifiesRejections(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.branches["season/next"] = "c9"
	repository.remoteBranches["origin/season/next"] = "c5"
	repository.aheadBehind["season/next"] = [2]int{1, 2}
	repository.pushErrors["season/next"] = execshell.NewGitOperationError("push", "! [rejected] season/next -> season/next (non-fast-forward)")
	engine := newPushEngine(testInstance, repository)

	result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
		RepositoryPath: fakeRepositoryPathConstant,
		RemoteName:     fakeRemoteNameConstant,
		BranchName:     "season/next",
		AllowForce:     false,
	})
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, transition.PushStatusFailed, result.Status)
	require.False(testInstance, result.UsedForce)
	require.Equal(testInstance, execshell.GitFailureNonFastForward, result.FailureKind)
	require.NotEmpty(testInstance, result.Diagnostic)
}

func TestPushEngineDryRunPerformsNoWrites(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.branches["main"] = "c9"
	repository.remoteBranches["origin/main"] = "c5"
	repository.aheadBehind["main"] = [2]int{0, 3}
	engine := newPushEngine(testInstance, repository)

	result, pushError := engine.PushBranch(context.Background(), transition.PushOptions{
		RepositoryPath: fakeRepositoryPathConstant,
		RemoteName:     fakeRemoteNameConstant,
		BranchName:     "main",
		AllowForce:     true,
		DryRun:         true,
	})
	require.NoError(testInstance, pushError)
	require.Equal(testInstance, transition.PushStatusPushed, result.Status)
	require.True(testInstance, result.UsedForce)
	require.Empty(testInstance, repository.pushedBranches)

	tagsError := engine.PushTags(context.Background(), fakeRepositoryPathConstant, fakeRemoteNameConstant, true)
	require.NoError(testInstance, tagsError)
	require.Zero(testInstance, repository.tagPushCount)
}

func TestPushEngineTagBatch(testInstance *testing.T) {
	repository := newFakeRepository()
	engine := newPushEngine(testInstance, repository)

	tagsError := engine.PushTags(context.Background(), fakeRepositoryPathConstant, fakeRemoteNameConstant, false)
	require.NoError(testInstance, tagsError)
	require.Equal(testInstance, 1, repository.tagPushCount)

	repository.pushTagsError = execshell.NewGitOperationError("push --tags", "fatal: Authentication failed")
	failedTagsError := engine.PushTags(context.Background(), fakeRepositoryPathConstant, fakeRemoteNameConstant, false)
	require.Error(testInstance, failedTagsError)
}
