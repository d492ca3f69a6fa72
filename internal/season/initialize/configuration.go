package initialize

import "strings"

const (
	defaultRepositoryPathConstant = "."

	configurationRepositoryKeyConstant    = "repository"
	configurationCurrentSeasonKeyConstant = "current_season"
	configurationNextSeasonKeyConstant    = "next_season"
	configurationForceKeyConstant         = "force"
	configurationKeySeparatorConstant     = "."
)

// CommandConfiguration captures configuration values for the init command.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	CurrentSeason  int    `mapstructure:"current_season"`
	NextSeason     int    `mapstructure:"next_season"`
	Force          bool   `mapstructure:"force"`
}

// DefaultCommandConfiguration provides baseline configuration values for the init command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: defaultRepositoryPathConstant,
		CurrentSeason:  0,
		NextSeason:     0,
		Force:          false,
	}
}

// DefaultConfigurationValues exposes init defaults keyed beneath the provided root key.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant:    defaults.RepositoryPath,
		rootKey + configurationKeySeparatorConstant + configurationCurrentSeasonKeyConstant: defaults.CurrentSeason,
		rootKey + configurationKeySeparatorConstant + configurationNextSeasonKeyConstant:    defaults.NextSeason,
		rootKey + configurationKeySeparatorConstant + configurationForceKeyConstant:         defaults.Force,
	}
}

// Sanitize trims configuration values and fills empty ones with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaultRepositoryPathConstant
	}

	return sanitized
}
