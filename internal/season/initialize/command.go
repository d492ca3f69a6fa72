package initialize

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/gitrepo"
	"github.com/seasonforge/seasonctl/internal/season"
	"github.com/seasonforge/seasonctl/internal/season/dependencies"
	"github.com/seasonforge/seasonctl/internal/ui"
)

const (
	commandUseConstant              = "init [currentSeason] [nextSeason]"
	commandShortDescriptionConstant = "Create the two-track season topology"
	commandLongDescriptionConstant  = "init creates the develop and season/next branches, seeds the season configuration, and tags the next-season initialization point. Rerunning against an initialized repository is a no-op with warnings."

	forceFlagNameConstant             = "force"
	forceFlagDescriptionConstant      = "Overwrite a conflicting season configuration"
	repositoryFlagNameConstant        = "repository"
	repositoryFlagDescriptionConstant = "Path of the repository to initialize"

	maximumPositionalArgumentsConstant  = 2
	seasonArgumentErrorTemplateConstant = "season argument %q is not an integer: %w"
	initializedMessageTemplateConstant  = "INITIALIZED: current=%d next=%d\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the init command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	RepositoryManager            *gitrepo.RepositoryManager
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Clock                        season.Clock
}

// Build constructs the init command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumPositionalArgumentsConstant),
		RunE:  builder.run,
	}

	command.Flags().Bool(forceFlagNameConstant, false, forceFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, defaultRepositoryPathConstant, repositoryFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(forceFlagNameConstant) {
		forceRequested, flagError := command.Flags().GetBool(forceFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.Force = forceRequested
	}
	if command.Flags().Changed(repositoryFlagNameConstant) {
		repositoryPath, flagError := command.Flags().GetString(repositoryFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		configuration.RepositoryPath = repositoryPath
	}

	if len(arguments) > 0 {
		currentSeason, parseError := parseSeasonArgument(arguments[0])
		if parseError != nil {
			return parseError
		}
		configuration.CurrentSeason = currentSeason
	}
	if len(arguments) > 1 {
		nextSeason, parseError := parseSeasonArgument(arguments[1])
		if parseError != nil {
			return parseError
		}
		configuration.NextSeason = nextSeason
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

	service, serviceError := NewService(Dependencies{
		Logger:             logger,
		Repository:         repositoryManager,
		ConfigurationStore: configurationStore,
		StatusPrinter:      ui.NewStatusPrinter(command.OutOrStdout()),
		Clock:              builder.Clock,
	})
	if serviceError != nil {
		return serviceError
	}

	result, initializationError := service.Initialize(command.Context(), Options{
		RepositoryPath: configuration.RepositoryPath,
		CurrentSeason:  configuration.CurrentSeason,
		NextSeason:     configuration.NextSeason,
		Force:          configuration.Force,
	})
	if initializationError != nil {
		return initializationError
	}

	fmt.Fprintf(command.OutOrStdout(), initializedMessageTemplateConstant, result.Configuration.Current, result.Configuration.Next)
	return nil
}

func parseSeasonArgument(argument string) (int, error) {
	parsedSeason, parseError := strconv.Atoi(argument)
	if parseError != nil {
		return 0, fmt.Errorf(seasonArgumentErrorTemplateConstant, argument, parseError)
	}
	return parsedSeason, nil
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
