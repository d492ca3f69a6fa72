package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	internalTestConfigurationFileNameConstant = "config.yaml"
	internalTestConfigurationContentConstant  = "common:\n  log_level: debug\n  log_format: console\ntools:\n  transition:\n    repository: /tmp/orchard\n    remote: upstream\n    report_dir: /tmp/reports\n  init:\n    current_season: 2030\n    next_season: 2031\n"
	internalTestTransitionCommandNameConstant = "transition"
	internalTestInitCommandNameConstant       = "init"
)

func TestApplicationRegistersSeasonCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	require.True(testInstance, registeredCommandNames[internalTestTransitionCommandNameConstant])
	require.True(testInstance, registeredCommandNames[internalTestInitCommandNameConstant])
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, ".", application.configuration.Tools.Transition.RepositoryPath)
	require.Equal(testInstance, "origin", application.configuration.Tools.Transition.RemoteName)
	require.Equal(testInstance, ".", application.configuration.Tools.Transition.ReportDirectory)
	require.Zero(testInstance, application.configuration.Tools.Init.CurrentSeason)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationReadsConfigurationFile(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(temporaryDirectory, internalTestConfigurationFileNameConstant)
	writeError := os.WriteFile(configurationPath, []byte(internalTestConfigurationContentConstant), 0o644)
	require.NoError(testInstance, writeError)

	application := NewApplication()
	application.configurationFilePath = configurationPath

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.True(testInstance, application.humanReadableLoggingEnabled())
	require.Equal(testInstance, "/tmp/orchard", application.configuration.Tools.Transition.RepositoryPath)
	require.Equal(testInstance, "upstream", application.configuration.Tools.Transition.RemoteName)
	require.Equal(testInstance, "/tmp/reports", application.configuration.Tools.Transition.ReportDirectory)
	require.Equal(testInstance, 2030, application.configuration.Tools.Init.CurrentSeason)
	require.Equal(testInstance, 2031, application.configuration.Tools.Init.NextSeason)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
}

func TestPersistentFlagOverridesConfiguration(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "warn"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.True(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.Error(testInstance, initializationError)
}
