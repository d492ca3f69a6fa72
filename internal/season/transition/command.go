package transition

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/gitrepo"
	"github.com/seasonforge/seasonctl/internal/season"
	"github.com/seasonforge/seasonctl/internal/season/dependencies"
	"github.com/seasonforge/seasonctl/internal/ui"
)

const (
	commandUseConstant              = "transition"
	commandShortDescriptionConstant = "Promote the next season and archive the current one"
	commandLongDescriptionConstant  = "transition executes the ten-phase season transition: it finalizes and archives the current season, promotes season/next into main and develop, reinitializes the next track, advances the season configuration, and reconciles the rewritten branches with the remote."

	dryRunFlagNameConstant            = "dry-run"
	dryRunFlagDescriptionConstant     = "Describe every mutating step instead of executing it"
	forceFlagNameConstant             = "force"
	forceFlagDescriptionConstant      = "Proceed despite uncommitted local changes"
	remoteFlagNameConstant            = "remote"
	remoteFlagDescriptionConstant     = "Remote used for synchronization and pushes"
	reportDirFlagNameConstant         = "report-dir"
	reportDirFlagDescriptionConstant  = "Directory receiving the transition report"
	repositoryFlagNameConstant        = "repository"
	repositoryFlagDescriptionConstant = "Path of the repository to transition"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the transition command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	RepositoryManager            *gitrepo.RepositoryManager
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the transition command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().Bool(forceFlagNameConstant, false, forceFlagDescriptionConstant)
	command.Flags().String(remoteFlagNameConstant, defaultRemoteNameConstant, remoteFlagDescriptionConstant)
	command.Flags().String(reportDirFlagNameConstant, defaultReportDirectoryConstant, reportDirFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, defaultRepositoryPathConstant, repositoryFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunRequested, flagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.DryRun = dryRunRequested
	}
	if command.Flags().Changed(forceFlagNameConstant) {
		forceRequested, flagError := command.Flags().GetBool(forceFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.Force = forceRequested
	}
	if command.Flags().Changed(remoteFlagNameConstant) {
		remoteName, flagError := command.Flags().GetString(remoteFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.RemoteName = remoteName
	}
	if command.Flags().Changed(reportDirFlagNameConstant) {
		reportDirectory, flagError := command.Flags().GetString(reportDirFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.ReportDirectory = reportDirectory
	}
	if command.Flags().Changed(repositoryFlagNameConstant) {
		repositoryPath, flagError := command.Flags().GetString(repositoryFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.RepositoryPath = repositoryPath
	}
	configuration = configuration.Sanitize()

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(builder.RepositoryManager, logger, gitExecutor)
	if managerError != nil {
		return managerError
	}

	configurationStore, storeError := season.NewConfigStore(repositoryManager)
	if storeError != nil {
		return storeError
	}

	statusPrinter := ui.NewStatusPrinter(command.OutOrStdout())

	pushEngine, engineError := NewPushEngine(PushEngineDependencies{
		Logger:        logger,
		Repository:    repositoryManager,
		StatusPrinter: statusPrinter,
	})
	if engineError != nil {
		return engineError
	}

	reportWriter, reportWriterError := NewMarkdownReportWriter(configuration.ReportDirectory)
	if reportWriterError != nil {
		return reportWriterError
	}

	service, serviceError := NewService(Dependencies{
		Logger:             logger,
		Repository:         repositoryManager,
		ConfigurationStore: configurationStore,
		PushEngine:         pushEngine,
		StatusPrinter:      statusPrinter,
		Clock:              season.SystemClock{},
		ReportWriter:       reportWriter,
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), Options{
		RepositoryPath: configuration.RepositoryPath,
		RemoteName:     configuration.RemoteName,
		DryRun:         configuration.DryRun,
		Force:          configuration.Force,
	})
	return runError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
