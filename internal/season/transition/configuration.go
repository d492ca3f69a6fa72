package transition

import "strings"

const (
	defaultRemoteNameConstant      = "origin"
	defaultRepositoryPathConstant  = "."
	defaultReportDirectoryConstant = "."

	configurationRepositoryKeyConstant      = "repository"
	configurationRemoteKeyConstant          = "remote"
	configurationDryRunKeyConstant          = "dry_run"
	configurationForceKeyConstant           = "force"
	configurationReportDirectoryKeyConstant = "report_dir"
	configurationKeySeparatorConstant       = "."
)

// CommandConfiguration captures configuration values for the transition command.
type CommandConfiguration struct {
	RepositoryPath  string `mapstructure:"repository"`
	RemoteName      string `mapstructure:"remote"`
	DryRun          bool   `mapstructure:"dry_run"`
	Force           bool   `mapstructure:"force"`
	ReportDirectory string `mapstructure:"report_dir"`
}

// DefaultCommandConfiguration provides baseline configuration values for the transition command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:  defaultRepositoryPathConstant,
		RemoteName:      defaultRemoteNameConstant,
		DryRun:          false,
		Force:           false,
		ReportDirectory: defaultReportDirectoryConstant,
	}
}

// DefaultConfigurationValues exposes transition defaults keyed beneath the provided root key.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant:      defaults.RepositoryPath,
		rootKey + configurationKeySeparatorConstant + configurationRemoteKeyConstant:          defaults.RemoteName,
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:          defaults.DryRun,
		rootKey + configurationKeySeparatorConstant + configurationForceKeyConstant:           defaults.Force,
		rootKey + configurationKeySeparatorConstant + configurationReportDirectoryKeyConstant: defaults.ReportDirectory,
	}
}

// Sanitize trims configuration values and fills empty ones with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaultRepositoryPathConstant
	}
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.ReportDirectory = strings.TrimSpace(configuration.ReportDirectory)
	if len(sanitized.ReportDirectory) == 0 {
		sanitized.ReportDirectory = defaultReportDirectoryConstant
	}

	return sanitized
}
