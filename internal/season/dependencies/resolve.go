// Package dependencies provides default collaborator construction for the
// season commands, letting tests inject fakes while production wiring stays
// in one place.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/execshell"
	"github.com/seasonforge/seasonctl/internal/gitrepo"
	"github.com/seasonforge/seasonctl/internal/ui"
)

// ResolveGitExecutor returns the provided executor or constructs a shell-backed
// default, attaching the console event logger when human readable logging is
// requested.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided manager or constructs one from
// the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, logger *zap.Logger, executor gitrepo.GitExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(logger, executor)
}
