package transition

import "context"

// Repository enumerates the git operations consumed by the transition
// services. *gitrepo.RepositoryManager satisfies it.
type Repository interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	RemoteBranchExists(executionContext context.Context, repositoryPath string, remoteName string, branchName string) (bool, error)
	RemoteExists(executionContext context.Context, repositoryPath string, remoteName string) (bool, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	DeleteBranches(executionContext context.Context, repositoryPath string, branchNames []string, force bool) error
	MergeNoFastForward(executionContext context.Context, repositoryPath string, branchName string, message string) error
	ResetHard(executionContext context.Context, repositoryPath string, targetReference string) error
	TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error)
	CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, message string) error
	Fetch(executionContext context.Context, repositoryPath string, remoteName string, references ...string) error
	PullFastForward(executionContext context.Context, repositoryPath string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string, forceWithLease bool) error
	PushTags(executionContext context.Context, repositoryPath string, remoteName string) error
	CountAheadBehind(executionContext context.Context, repositoryPath string, localBranch string, remoteBranch string) (int, int, error)
	ListMergedBranches(executionContext context.Context, repositoryPath string, targetBranch string) ([]string, error)
}
