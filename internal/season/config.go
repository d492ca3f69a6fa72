package season

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	// CurrentYearConfigurationKey stores the current season identifier.
	CurrentYearConfigurationKey = "season.current-year"
	// NextYearConfigurationKey stores the next season identifier.
	NextYearConfigurationKey = "season.next-year"

	configAccessorMissingMessageConstant        = "configuration accessor not configured"
	configNotInitializedMessageConstant         = "season configuration not initialized"
	configOrderingErrorTemplateConstant         = "next season %d must be greater than current season %d"
	configValueParseErrorTemplateConstant       = "configuration key %s holds %q which is not a season identifier: %w"
	configReadErrorTemplateConstant             = "unable to read configuration key %s: %w"
	configWriteErrorTemplateConstant            = "unable to write configuration key %s: %w"
	seasonIdentifierNotPositiveTemplateConstant = "season identifier %d must be positive"
)

// ErrConfigAccessorNotConfigured indicates the store was created without a configuration accessor.
var ErrConfigAccessorNotConfigured = errors.New(configAccessorMissingMessageConstant)

// ErrConfigNotInitialized indicates the repository carries no season configuration yet.
var ErrConfigNotInitialized = errors.New(configNotInitializedMessageConstant)

// Config holds the two live season identifiers.
type Config struct {
	Current int
	Next    int
}

// NewConfig builds a Config after validating the season ordering invariant.
func NewConfig(currentSeason int, nextSeason int) (Config, error) {
	if currentSeason <= 0 {
		return Config{}, fmt.Errorf(seasonIdentifierNotPositiveTemplateConstant, currentSeason)
	}
	if nextSeason <= currentSeason {
		return Config{}, fmt.Errorf(configOrderingErrorTemplateConstant, nextSeason, currentSeason)
	}
	return Config{Current: currentSeason, Next: nextSeason}, nil
}

// Advanced returns the configuration after one season transition.
func (configuration Config) Advanced() Config {
	return Config{Current: configuration.Next, Next: configuration.Next + 1}
}

// ConfigAccessor exposes repository-scoped configuration reads and writes.
type ConfigAccessor interface {
	ConfigGet(executionContext context.Context, repositoryPath string, configurationKey string) (string, error)
	ConfigSet(executionContext context.Context, repositoryPath string, configurationKey string, configurationValue string) error
}

// ConfigStore persists the season configuration in repository-scoped storage.
type ConfigStore struct {
	accessor ConfigAccessor
}

// NewConfigStore constructs a ConfigStore from the provided accessor.
func NewConfigStore(accessor ConfigAccessor) (*ConfigStore, error) {
	if accessor == nil {
		return nil, ErrConfigAccessorNotConfigured
	}
	return &ConfigStore{accessor: accessor}, nil
}

// Load reads and validates the persisted season configuration. Repositories
// without any season keys yield ErrConfigNotInitialized.
func (store *ConfigStore) Load(executionContext context.Context, repositoryPath string) (Config, error) {
	currentSeason, currentPresent, currentError := store.readSeason(executionContext, repositoryPath, CurrentYearConfigurationKey)
	if currentError != nil {
		return Config{}, currentError
	}
	nextSeason, nextPresent, nextError := store.readSeason(executionContext, repositoryPath, NextYearConfigurationKey)
	if nextError != nil {
		return Config{}, nextError
	}
	if !currentPresent || !nextPresent {
		return Config{}, ErrConfigNotInitialized
	}
	return NewConfig(currentSeason, nextSeason)
}

// Save validates and persists both season keys.
func (store *ConfigStore) Save(executionContext context.Context, repositoryPath string, configuration Config) error {
	validatedConfiguration, validationError := NewConfig(configuration.Current, configuration.Next)
	if validationError != nil {
		return validationError
	}
	if writeError := store.accessor.ConfigSet(executionContext, repositoryPath, CurrentYearConfigurationKey, strconv.Itoa(validatedConfiguration.Current)); writeError != nil {
		return fmt.Errorf(configWriteErrorTemplateConstant, CurrentYearConfigurationKey, writeError)
	}
	if writeError := store.accessor.ConfigSet(executionContext, repositoryPath, NextYearConfigurationKey, strconv.Itoa(validatedConfiguration.Next)); writeError != nil {
		return fmt.Errorf(configWriteErrorTemplateConstant, NextYearConfigurationKey, writeError)
	}
	return nil
}

func (store *ConfigStore) readSeason(executionContext context.Context, repositoryPath string, configurationKey string) (int, bool, error) {
	storedValue, readError := store.accessor.ConfigGet(executionContext, repositoryPath, configurationKey)
	if readError != nil {
		return 0, false, fmt.Errorf(configReadErrorTemplateConstant, configurationKey, readError)
	}
	if len(storedValue) == 0 {
		return 0, false, nil
	}
	parsedSeason, parseError := strconv.Atoi(storedValue)
	if parseError != nil {
		return 0, false, fmt.Errorf(configValueParseErrorTemplateConstant, configurationKey, storedValue, parseError)
	}
	return parsedSeason, true, nil
}
