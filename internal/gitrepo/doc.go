// Package gitrepo exposes repository-level git operations used by the season
// lifecycle services.
//
// RepositoryManager wraps a git executor with typed operations for branch,
// tag, remote, and configuration access, translating git exit codes into
// explicit boolean answers and classified errors.
package gitrepo
