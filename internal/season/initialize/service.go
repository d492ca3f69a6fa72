package initialize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/season"
	"github.com/seasonforge/seasonctl/internal/ui"
)

const (
	loggerMissingMessageConstant            = "logger not configured"
	repositoryMissingMessageConstant        = "repository not configured"
	configStoreMissingMessageConstant       = "configuration store not configured"
	repositoryPathRequiredMessageConstant   = "repository path must be provided"
	mainBranchMissingMessageConstant        = "branch main does not exist; initialize the repository with at least one commit on main first"
	conflictingConfigurationMessageConstant = "season configuration already present with different seasons; rerun with --force to overwrite"

	branchCheckErrorTemplateConstant  = "unable to check branch %s: %w"
	branchCreateErrorTemplateConstant = "unable to create branch %s: %w"
	configLoadErrorTemplateConstant   = "unable to read season configuration: %w"
	configSaveErrorTemplateConstant   = "unable to write season configuration: %w"
	tagCheckErrorTemplateConstant     = "unable to check tag %s: %w"
	tagCreateErrorTemplateConstant    = "unable to create tag %s: %w"

	branchCreatedTemplateConstant     = "created branch %s from %s"
	branchPresentTemplateConstant     = "branch %s already exists"
	configSeededTemplateConstant      = "seeded season configuration: current=%d next=%d"
	configPresentTemplateConstant     = "season configuration already present: current=%d next=%d"
	configOverwrittenTemplateConstant = "overwrote season configuration: current=%d next=%d"
	tagCreatedTemplateConstant        = "created tag %s"
	tagPresentTemplateConstant        = "tag %s already exists"
	initTagMessageTemplateConstant    = "Initialize season %d"
)

// ErrLoggerNotConfigured indicates the service was created without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrRepositoryNotConfigured indicates the service was created without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrConfigStoreNotConfigured indicates the service was created without a configuration store.
var ErrConfigStoreNotConfigured = errors.New(configStoreMissingMessageConstant)

// ErrRepositoryPathRequired indicates the run options carried an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrMainBranchMissing indicates the repository has no main branch to build on.
var ErrMainBranchMissing = errors.New(mainBranchMissingMessageConstant)

// ErrConflictingConfiguration indicates an existing configuration disagrees with the requested seasons.
var ErrConflictingConfiguration = errors.New(conflictingConfigurationMessageConstant)

// Repository enumerates the git operations consumed by the initializer.
type Repository interface {
	BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	TagExists(executionContext context.Context, repositoryPath string, tagName string) (bool, error)
	CreateAnnotatedTag(executionContext context.Context, repositoryPath string, tagName string, message string) error
}

// ConfigurationStore persists the two live season identifiers.
type ConfigurationStore interface {
	Load(executionContext context.Context, repositoryPath string) (season.Config, error)
	Save(executionContext context.Context, repositoryPath string, configuration season.Config) error
}

// Dependencies enumerates external collaborators required by the initializer.
type Dependencies struct {
	Logger             *zap.Logger
	Repository         Repository
	ConfigurationStore ConfigurationStore
	StatusPrinter      *ui.StatusPrinter
	Clock              season.Clock
}

// Options configures one initialization run.
type Options struct {
	RepositoryPath string
	CurrentSeason  int
	NextSeason     int
	Force          bool
}

// Result captures the observable outcomes of an initialization.
type Result struct {
	Configuration   season.Config
	CreatedBranches []string
	CreatedTags     []string
	ConfigSeeded    bool
}

// Service creates the initial two-track topology.
type Service struct {
	logger             *zap.Logger
	repository         Repository
	configurationStore ConfigurationStore
	statusPrinter      *ui.StatusPrinter
	clock              season.Clock
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.ConfigurationStore == nil {
		return nil, ErrConfigStoreNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = season.SystemClock{}
	}
	return &Service{
		logger:             dependencies.Logger,
		repository:         dependencies.Repository,
		configurationStore: dependencies.ConfigurationStore,
		statusPrinter:      dependencies.StatusPrinter,
		clock:              clock,
	}, nil
}

// Initialize creates missing branches, seeds the season configuration, and
// creates the next-season initialization tag.
func (service *Service) Initialize(executionContext context.Context, options Options) (Result, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	requestedConfiguration, configurationError := service.resolveSeasons(options)
	if configurationError != nil {
		return Result{}, configurationError
	}

	mainExists, mainCheckError := service.repository.BranchExists(executionContext, trimmedRepositoryPath, season.BranchMain)
	if mainCheckError != nil {
		return Result{}, fmt.Errorf(branchCheckErrorTemplateConstant, season.BranchMain, mainCheckError)
	}
	if !mainExists {
		return Result{}, ErrMainBranchMissing
	}

	result := Result{}

	effectiveConfiguration, seedOutcome, seedError := service.seedConfiguration(executionContext, trimmedRepositoryPath, requestedConfiguration, options.Force)
	if seedError != nil {
		return Result{}, seedError
	}
	result.Configuration = effectiveConfiguration
	result.ConfigSeeded = seedOutcome

	if branchError := service.ensureBranch(executionContext, trimmedRepositoryPath, season.BranchDevelop, season.BranchMain, &result); branchError != nil {
		return Result{}, branchError
	}
	if branchError := service.ensureBranch(executionContext, trimmedRepositoryPath, season.BranchSeasonNext, season.BranchDevelop, &result); branchError != nil {
		return Result{}, branchError
	}

	initTag := season.InitTagName(effectiveConfiguration.Next)
	initTagMessage := fmt.Sprintf(initTagMessageTemplateConstant, effectiveConfiguration.Next)
	if tagError := service.ensureTag(executionContext, trimmedRepositoryPath, initTag, initTagMessage, &result); tagError != nil {
		return Result{}, tagError
	}

	return result, nil
}

func (service *Service) resolveSeasons(options Options) (season.Config, error) {
	currentSeason := options.CurrentSeason
	if currentSeason == 0 {
		currentSeason = service.clock.Now().Year()
	}
	nextSeason := options.NextSeason
	if nextSeason == 0 {
		nextSeason = currentSeason + 1
	}
	return season.NewConfig(currentSeason, nextSeason)
}

func (service *Service) seedConfiguration(executionContext context.Context, repositoryPath string, requestedConfiguration season.Config, force bool) (season.Config, bool, error) {
	existingConfiguration, loadError := service.configurationStore.Load(executionContext, repositoryPath)
	switch {
	case loadError == nil:
		if existingConfiguration == requestedConfiguration {
			service.statusPrinter.Warning(fmt.Sprintf(configPresentTemplateConstant, existingConfiguration.Current, existingConfiguration.Next))
			return existingConfiguration, false, nil
		}
		if !force {
			return season.Config{}, false, ErrConflictingConfiguration
		}
		if saveError := service.configurationStore.Save(executionContext, repositoryPath, requestedConfiguration); saveError != nil {
			return season.Config{}, false, fmt.Errorf(configSaveErrorTemplateConstant, saveError)
		}
		service.statusPrinter.Success(fmt.Sprintf(configOverwrittenTemplateConstant, requestedConfiguration.Current, requestedConfiguration.Next))
		return requestedConfiguration, true, nil
	case errors.Is(loadError, season.ErrConfigNotInitialized):
		if saveError := service.configurationStore.Save(executionContext, repositoryPath, requestedConfiguration); saveError != nil {
			return season.Config{}, false, fmt.Errorf(configSaveErrorTemplateConstant, saveError)
		}
		service.statusPrinter.Success(fmt.Sprintf(configSeededTemplateConstant, requestedConfiguration.Current, requestedConfiguration.Next))
		return requestedConfiguration, true, nil
	default:
		return season.Config{}, false, fmt.Errorf(configLoadErrorTemplateConstant, loadError)
	}
}

func (service *Service) ensureBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string, result *Result) error {
	branchExists, checkError := service.repository.BranchExists(executionContext, repositoryPath, branchName)
	if checkError != nil {
		return fmt.Errorf(branchCheckErrorTemplateConstant, branchName, checkError)
	}
	if branchExists {
		service.statusPrinter.Warning(fmt.Sprintf(branchPresentTemplateConstant, branchName))
		return nil
	}
	if creationError := service.repository.CreateBranch(executionContext, repositoryPath, branchName, startPoint); creationError != nil {
		return fmt.Errorf(branchCreateErrorTemplateConstant, branchName, creationError)
	}
	result.CreatedBranches = append(result.CreatedBranches, branchName)
	service.statusPrinter.Success(fmt.Sprintf(branchCreatedTemplateConstant, branchName, startPoint))
	return nil
}

func (service *Service) ensureTag(executionContext context.Context, repositoryPath string, tagName string, tagMessage string, result *Result) error {
	tagExists, checkError := service.repository.TagExists(executionContext, repositoryPath, tagName)
	if checkError != nil {
		return fmt.Errorf(tagCheckErrorTemplateConstant, tagName, checkError)
	}
	if tagExists {
		service.statusPrinter.Warning(fmt.Sprintf(tagPresentTemplateConstant, tagName))
		return nil
	}
	if creationError := service.repository.CreateAnnotatedTag(executionContext, repositoryPath, tagName, tagMessage); creationError != nil {
		return fmt.Errorf(tagCreateErrorTemplateConstant, tagName, creationError)
	}
	result.CreatedTags = append(result.CreatedTags, tagName)
	service.statusPrinter.Success(fmt.Sprintf(tagCreatedTemplateConstant, tagName))
	return nil
}
