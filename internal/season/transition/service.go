package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/season"
	"github.com/seasonforge/seasonctl/internal/ui"
)

const (
	serviceLoggerMissingMessageConstant          = "logger not configured"
	serviceRepositoryMissingMessageConstant      = "repository not configured"
	serviceConfigStoreMissingMessageConstant     = "configuration store not configured"
	servicePushEngineMissingMessageConstant      = "push engine not configured"
	serviceRepositoryPathRequiredMessageConstant = "repository path must be provided"
	worktreeNotCleanMessageConstant              = "repository worktree is not clean; commit, stash, or rerun with --force"

	phaseValidateNameConstant         = "Validate"
	phaseBackupNameConstant           = "Backup"
	phaseSyncNameConstant             = "Sync"
	phaseFinalizeCurrentNameConstant  = "Finalize current"
	phaseArchiveCurrentNameConstant   = "Archive current"
	phasePromoteNextNameConstant      = "Promote next"
	phaseReinitializeNextNameConstant = "Reinitialize next"
	phaseUpdateConfigNameConstant     = "Update config"
	phasePushNameConstant             = "Push"
	phaseCleanupNameConstant          = "Cleanup & report"

	phaseStatusCompletedConstant = "completed"
	phaseStatusSkippedConstant   = "skipped"
	phaseStatusWarningConstant   = "warning"
	phaseStatusFailedConstant    = "failed"

	configLoadErrorTemplateConstant       = "unable to load season configuration: %w"
	requiredBranchCheckTemplateConstant   = "unable to check branch %s: %w"
	requiredBranchMissingTemplateConstant = "required branch %s does not exist"
	cleanCheckErrorTemplateConstant       = "failed to verify clean worktree: %w"
	currentBranchErrorTemplateConstant    = "unable to determine current branch: %w"
	remoteCheckErrorTemplateConstant      = "unable to check remote %s: %w"
	backupTagErrorTemplateConstant        = "unable to create backup tag %s: %w"
	checkoutErrorTemplateConstant         = "unable to checkout %s: %w"
	mergeErrorTemplateConstant            = "unable to merge %s into %s: %w"
	tagCreationErrorTemplateConstant      = "unable to create tag %s: %w"
	tagExistenceErrorTemplateConstant     = "unable to check tag %s: %w"
	archiveBranchErrorTemplateConstant    = "unable to create archive branch %s: %w"
	archiveBranchCheckTemplateConstant    = "unable to check archive branch %s: %w"
	resetErrorTemplateConstant            = "unable to reset %s to %s: %w"
	configSaveErrorTemplateConstant       = "unable to persist advanced season configuration: %w"
	phaseFailureTemplateConstant          = "phase %q failed: %w"
	backupGuidanceTemplateConstant        = "restore with: git reset --hard %s"
	noBackupGuidanceMessageConstant       = "no backup tag was created; repository state is unmodified"

	validateSeasonsStepTemplateConstant         = "seasons: current=%d next=%d"
	dirtyWorktreeForcedWarningMessageConstant   = "worktree has uncommitted changes; proceeding because --force was given"
	nonCanonicalCheckoutWarningTemplateConstant = "current checkout %s is neither %s nor %s"
	backupCreatedTemplateConstant               = "created backup tag %s"
	dryRunBackupTemplateConstant                = "would create backup tag %s"
	backupTagMessageTemplateConstant            = "Pre-transition backup for season %d"
	noRemoteWarningTemplateConstant             = "remote %s is not configured; skipping remote interaction"
	syncBranchTemplateConstant                  = "synchronized %s from %s"
	syncSkipTemplateConstant                    = "%s has no counterpart on %s; skipping"
	syncFailureWarningTemplateConstant          = "unable to synchronize %s: %v"
	dryRunSyncTemplateConstant                  = "would fast-forward %s from %s"
	mergeCommitMessageTemplateConstant          = "Finalize season %d"
	dryRunMergeTemplateConstant                 = "would merge %s into %s"
	dryRunTagTemplateConstant                   = "would create tag %s"
	tagCreatedTemplateConstant                  = "created tag %s"
	tagAlreadyExistsTemplateConstant            = "tag %s already exists; leaving it untouched"
	archiveAlreadyExistsTemplateConstant        = "archive branch %s already exists; season %d was already archived"
	archiveCreatedTemplateConstant              = "created archive branch %s"
	dryRunArchiveTemplateConstant               = "would create archive branch %s from %s"
	dryRunResetTemplateConstant                 = "would reset %s to %s"
	resetCompletedTemplateConstant              = "reset %s to %s"
	dryRunConfigTemplateConstant                = "would set season configuration to current=%d next=%d"
	configUpdatedTemplateConstant               = "season configuration advanced to current=%d next=%d"
	pushSummaryTemplateConstant                 = "push phase finished with %d failure(s)"
	pushCleanSummaryMessageConstant             = "all pushes completed"
	tagsPushFailedWarningTemplateConstant       = "tag push failed: %v"
	tagsPushedTemplateConstant                  = "pushed tags to %s"
	restoreCheckoutWarningTemplateConstant      = "unable to restore original checkout %s: %v"
	cleanupDeletedTemplateConstant              = "deleted %d merged branch(es)"
	cleanupNothingMessageConstant               = "no merged branches to delete"
	cleanupListWarningTemplateConstant          = "unable to list merged branches of %s: %v"
	cleanupDeleteWarningTemplateConstant        = "unable to delete merged branches: %v"
	dryRunCleanupTemplateConstant               = "would delete %d merged branch(es)"
	reportWrittenTemplateConstant               = "transition report written to %s"
	reportFailureWarningTemplateConstant        = "unable to write transition report: %v"
	dryRunReportMessageConstant                 = "would write transition report"

	phaseCompletedLogMessageConstant = "phase completed"
	phaseLogFieldNameConstant        = "phase"

	cleanupBatchSizeConstant = 20
)

// Ephemeral branch prefixes eligible for cleanup once merged.
var cleanupBranchPrefixes = []string{"feature/", "release/", "bugfix/", "hotfix/", "sync/"}

// ErrServiceLoggerNotConfigured indicates the service was created without a logger.
var ErrServiceLoggerNotConfigured = errors.New(serviceLoggerMissingMessageConstant)

// ErrServiceRepositoryNotConfigured indicates the service was created without a repository.
var ErrServiceRepositoryNotConfigured = errors.New(serviceRepositoryMissingMessageConstant)

// ErrServiceConfigStoreNotConfigured indicates the service was created without a configuration store.
var ErrServiceConfigStoreNotConfigured = errors.New(serviceConfigStoreMissingMessageConstant)

// ErrServicePushEngineNotConfigured indicates the service was created without a push engine.
var ErrServicePushEngineNotConfigured = errors.New(servicePushEngineMissingMessageConstant)

// ErrServiceRepositoryPathRequired indicates the run options carried an empty repository path.
var ErrServiceRepositoryPathRequired = errors.New(serviceRepositoryPathRequiredMessageConstant)

// ErrWorktreeNotClean indicates the repository contains uncommitted changes.
var ErrWorktreeNotClean = errors.New(worktreeNotCleanMessageConstant)

// ConfigurationStore persists the two live season identifiers.
type ConfigurationStore interface {
	Load(executionContext context.Context, repositoryPath string) (season.Config, error)
	Save(executionContext context.Context, repositoryPath string, configuration season.Config) error
}

// BranchPusher is the push engine surface consumed by the orchestrator.
type BranchPusher interface {
	PushBranch(executionContext context.Context, options PushOptions) (PushResult, error)
	PushTags(executionContext context.Context, repositoryPath string, remoteName string, dryRun bool) error
}

// ReportWriter renders a transition record into a durable artifact.
type ReportWriter interface {
	Write(record Record) (string, error)
}

// PhaseOutcome records how one phase of the transition ended.
type PhaseOutcome struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Detail string `yaml:"detail,omitempty"`
}

// Record is the ephemeral account of one transition run. It is not journaled;
// recovery after a crash goes through the backup tag, not this record.
type Record struct {
	StartedAt        time.Time      `yaml:"started_at"`
	DryRun           bool           `yaml:"dry_run"`
	ForceRequested   bool           `yaml:"force_requested"`
	RemoteName       string         `yaml:"remote"`
	CurrentSeason    int            `yaml:"current_season"`
	NextSeason       int            `yaml:"next_season"`
	NewNextSeason    int            `yaml:"new_next_season"`
	BackupTag        string         `yaml:"backup_tag,omitempty"`
	BackupCreated    bool           `yaml:"backup_created"`
	Phases           []PhaseOutcome `yaml:"phases"`
	TagsCreated      []string       `yaml:"tags_created,omitempty"`
	PushResults      []PushResult   `yaml:"push_results,omitempty"`
	PushFailureCount int            `yaml:"push_failure_count"`
	ReportPath       string         `yaml:"-"`
}

// Dependencies enumerates external collaborators required by the orchestrator.
type Dependencies struct {
	Logger             *zap.Logger
	Repository         Repository
	ConfigurationStore ConfigurationStore
	PushEngine         BranchPusher
	StatusPrinter      *ui.StatusPrinter
	Clock              season.Clock
	ReportWriter       ReportWriter
}

// Options configures one transition run.
type Options struct {
	RepositoryPath string
	RemoteName     string
	DryRun         bool
	Force          bool
}

// Service sequences the ten transition phases.
type Service struct {
	logger             *zap.Logger
	repository         Repository
	configurationStore ConfigurationStore
	pushEngine         BranchPusher
	statusPrinter      *ui.StatusPrinter
	clock              season.Clock
	reportWriter       ReportWriter
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrServiceLoggerNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrServiceRepositoryNotConfigured
	}
	if dependencies.ConfigurationStore == nil {
		return nil, ErrServiceConfigStoreNotConfigured
	}
	if dependencies.PushEngine == nil {
		return nil, ErrServicePushEngineNotConfigured
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = season.SystemClock{}
	}
	return &Service{
		logger:             dependencies.Logger,
		repository:         dependencies.Repository,
		configurationStore: dependencies.ConfigurationStore,
		pushEngine:         dependencies.PushEngine,
		statusPrinter:      dependencies.StatusPrinter,
		clock:              clock,
		reportWriter:       dependencies.ReportWriter,
	}, nil
}

type runState struct {
	repositoryPath   string
	remoteName       string
	dryRun           bool
	force            bool
	configuration    season.Config
	remoteConfigured bool
	originalBranch   string
	record           *Record
}

// Run executes the ten transition phases in order. Phases one through eight
// fail fast; push failures are aggregated into the record; cleanup and report
// failures never fail the run.
func (service *Service) Run(executionContext context.Context, options Options) (Record, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Record{}, ErrServiceRepositoryPathRequired
	}
	trimmedRemoteName := strings.TrimSpace(options.RemoteName)

	record := Record{
		StartedAt:      service.clock.Now(),
		DryRun:         options.DryRun,
		ForceRequested: options.Force,
		RemoteName:     trimmedRemoteName,
	}
	state := &runState{
		repositoryPath: trimmedRepositoryPath,
		remoteName:     trimmedRemoteName,
		dryRun:         options.DryRun,
		force:          options.Force,
		record:         &record,
	}

	fatalPhases := []struct {
		name    string
		execute func(context.Context, *runState) error
	}{
		{name: phaseValidateNameConstant, execute: service.runValidatePhase},
		{name: phaseBackupNameConstant, execute: service.runBackupPhase},
		{name: phaseSyncNameConstant, execute: service.runSyncPhase},
		{name: phaseFinalizeCurrentNameConstant, execute: service.runFinalizeCurrentPhase},
		{name: phaseArchiveCurrentNameConstant, execute: service.runArchiveCurrentPhase},
		{name: phasePromoteNextNameConstant, execute: service.runPromoteNextPhase},
		{name: phaseReinitializeNextNameConstant, execute: service.runReinitializeNextPhase},
		{name: phaseUpdateConfigNameConstant, execute: service.runUpdateConfigPhase},
	}

	for _, phase := range fatalPhases {
		service.statusPrinter.Phase(phase.name)
		if phaseError := phase.execute(executionContext, state); phaseError != nil {
			record.Phases = append(record.Phases, PhaseOutcome{Name: phase.name, Status: phaseStatusFailedConstant, Detail: phaseError.Error()})
			service.reportFatalFailure(phaseError, state)
			return record, fmt.Errorf(phaseFailureTemplateConstant, phase.name, phaseError)
		}
	}

	service.statusPrinter.Phase(phasePushNameConstant)
	if pushError := service.runPushPhase(executionContext, state); pushError != nil {
		record.Phases = append(record.Phases, PhaseOutcome{Name: phasePushNameConstant, Status: phaseStatusFailedConstant, Detail: pushError.Error()})
		service.reportFatalFailure(pushError, state)
		return record, fmt.Errorf(phaseFailureTemplateConstant, phasePushNameConstant, pushError)
	}

	service.statusPrinter.Phase(phaseCleanupNameConstant)
	service.runCleanupPhase(executionContext, state)

	return record, nil
}

func (service *Service) runValidatePhase(executionContext context.Context, state *runState) error {
	loadedConfiguration, loadError := service.configurationStore.Load(executionContext, state.repositoryPath)
	if loadError != nil {
		return fmt.Errorf(configLoadErrorTemplateConstant, loadError)
	}
	state.configuration = loadedConfiguration
	state.record.CurrentSeason = loadedConfiguration.Current
	state.record.NextSeason = loadedConfiguration.Next
	state.record.NewNextSeason = loadedConfiguration.Next + 1
	service.statusPrinter.Step(fmt.Sprintf(validateSeasonsStepTemplateConstant, loadedConfiguration.Current, loadedConfiguration.Next))

	for _, requiredBranch := range []string{season.BranchMain, season.BranchDevelop, season.BranchSeasonNext} {
		branchExists, existenceError := service.repository.BranchExists(executionContext, state.repositoryPath, requiredBranch)
		if existenceError != nil {
			return fmt.Errorf(requiredBranchCheckTemplateConstant, requiredBranch, existenceError)
		}
		if !branchExists {
			return fmt.Errorf(requiredBranchMissingTemplateConstant, requiredBranch)
		}
	}

	worktreeClean, cleanError := service.repository.CheckCleanWorktree(executionContext, state.repositoryPath)
	if cleanError != nil {
		return fmt.Errorf(cleanCheckErrorTemplateConstant, cleanError)
	}
	if !worktreeClean {
		if !state.force {
			return ErrWorktreeNotClean
		}
		service.statusPrinter.Warning(dirtyWorktreeForcedWarningMessageConstant)
	}

	currentBranch, branchError := service.repository.GetCurrentBranch(executionContext, state.repositoryPath)
	if branchError != nil {
		return fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}
	state.originalBranch = currentBranch
	if currentBranch != season.BranchMain && currentBranch != season.BranchDevelop {
		service.statusPrinter.Warning(fmt.Sprintf(nonCanonicalCheckoutWarningTemplateConstant, currentBranch, season.BranchMain, season.BranchDevelop))
	}

	if len(state.remoteName) > 0 {
		remoteConfigured, remoteError := service.repository.RemoteExists(executionContext, state.repositoryPath, state.remoteName)
		if remoteError != nil {
			return fmt.Errorf(remoteCheckErrorTemplateConstant, state.remoteName, remoteError)
		}
		state.remoteConfigured = remoteConfigured
	}

	service.completePhase(state, phaseValidateNameConstant, "")
	return nil
}

func (service *Service) runBackupPhase(executionContext context.Context, state *runState) error {
	backupTag := season.BackupTagName(state.record.StartedAt)
	state.record.BackupTag = backupTag
	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunBackupTemplateConstant, backupTag))
		service.completePhase(state, phaseBackupNameConstant, backupTag)
		return nil
	}
	backupTagExists, existenceError := service.repository.TagExists(executionContext, state.repositoryPath, backupTag)
	if existenceError != nil {
		return fmt.Errorf(tagExistenceErrorTemplateConstant, backupTag, existenceError)
	}
	if backupTagExists {
		service.statusPrinter.Warning(fmt.Sprintf(tagAlreadyExistsTemplateConstant, backupTag))
		service.completePhase(state, phaseBackupNameConstant, backupTag)
		return nil
	}
	backupMessage := fmt.Sprintf(backupTagMessageTemplateConstant, state.configuration.Current)
	if tagError := service.repository.CreateAnnotatedTag(executionContext, state.repositoryPath, backupTag, backupMessage); tagError != nil {
		return fmt.Errorf(backupTagErrorTemplateConstant, backupTag, tagError)
	}
	state.record.BackupCreated = true
	service.statusPrinter.Success(fmt.Sprintf(backupCreatedTemplateConstant, backupTag))
	service.completePhase(state, phaseBackupNameConstant, backupTag)
	return nil
}

func (service *Service) runSyncPhase(executionContext context.Context, state *runState) error {
	if !state.remoteConfigured {
		service.statusPrinter.Warning(fmt.Sprintf(noRemoteWarningTemplateConstant, state.remoteName))
		state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phaseSyncNameConstant, Status: phaseStatusSkippedConstant})
		return nil
	}

	encounteredWarning := false
	for _, canonicalBranch := range []string{season.BranchMain, season.BranchDevelop, season.BranchSeasonNext} {
		remoteBranchExists, remoteCheckError := service.repository.RemoteBranchExists(executionContext, state.repositoryPath, state.remoteName, canonicalBranch)
		if remoteCheckError != nil {
			service.statusPrinter.Warning(fmt.Sprintf(syncFailureWarningTemplateConstant, canonicalBranch, remoteCheckError))
			encounteredWarning = true
			continue
		}
		if !remoteBranchExists {
			service.statusPrinter.Step(fmt.Sprintf(syncSkipTemplateConstant, canonicalBranch, state.remoteName))
			continue
		}
		if state.dryRun {
			service.statusPrinter.DryRun(fmt.Sprintf(dryRunSyncTemplateConstant, canonicalBranch, state.remoteName))
			continue
		}
		if syncError := service.syncBranch(executionContext, state, canonicalBranch); syncError != nil {
			service.statusPrinter.Warning(fmt.Sprintf(syncFailureWarningTemplateConstant, canonicalBranch, syncError))
			encounteredWarning = true
			continue
		}
		service.statusPrinter.Success(fmt.Sprintf(syncBranchTemplateConstant, canonicalBranch, state.remoteName))
	}

	phaseStatus := phaseStatusCompletedConstant
	if encounteredWarning {
		phaseStatus = phaseStatusWarningConstant
	}
	state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phaseSyncNameConstant, Status: phaseStatus})
	return nil
}

func (service *Service) syncBranch(executionContext context.Context, state *runState, branchName string) error {
	if fetchError := service.repository.Fetch(executionContext, state.repositoryPath, state.remoteName, branchName); fetchError != nil {
		return fetchError
	}
	if checkoutError := service.repository.CheckoutBranch(executionContext, state.repositoryPath, branchName); checkoutError != nil {
		return checkoutError
	}
	return service.repository.PullFastForward(executionContext, state.repositoryPath)
}

func (service *Service) runFinalizeCurrentPhase(executionContext context.Context, state *runState) error {
	if checkoutError := service.checkout(executionContext, state, season.BranchMain); checkoutError != nil {
		return checkoutError
	}

	mergeMessage := fmt.Sprintf(mergeCommitMessageTemplateConstant, state.configuration.Current)
	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunMergeTemplateConstant, season.BranchDevelop, season.BranchMain))
	} else {
		if mergeError := service.repository.MergeNoFastForward(executionContext, state.repositoryPath, season.BranchDevelop, mergeMessage); mergeError != nil {
			return fmt.Errorf(mergeErrorTemplateConstant, season.BranchDevelop, season.BranchMain, mergeError)
		}
	}

	finalTag := season.FinalTagName(state.configuration.Current)
	if tagError := service.createTagIfAbsent(executionContext, state, finalTag, mergeMessage); tagError != nil {
		return tagError
	}
	service.completePhase(state, phaseFinalizeCurrentNameConstant, "")
	return nil
}

func (service *Service) runArchiveCurrentPhase(executionContext context.Context, state *runState) error {
	archiveBranch := season.ArchiveBranchName(state.configuration.Current)
	archiveExists, archiveCheckError := service.repository.BranchExists(executionContext, state.repositoryPath, archiveBranch)
	if archiveCheckError != nil {
		return fmt.Errorf(archiveBranchCheckTemplateConstant, archiveBranch, archiveCheckError)
	}
	if archiveExists {
		service.statusPrinter.Warning(fmt.Sprintf(archiveAlreadyExistsTemplateConstant, archiveBranch, state.configuration.Current))
		state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phaseArchiveCurrentNameConstant, Status: phaseStatusSkippedConstant, Detail: archiveBranch})
		return nil
	}

	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunArchiveTemplateConstant, archiveBranch, season.BranchMain))
	} else {
		if creationError := service.repository.CreateBranch(executionContext, state.repositoryPath, archiveBranch, season.BranchMain); creationError != nil {
			return fmt.Errorf(archiveBranchErrorTemplateConstant, archiveBranch, creationError)
		}
		service.statusPrinter.Success(fmt.Sprintf(archiveCreatedTemplateConstant, archiveBranch))
	}

	archiveTag := season.ArchiveTagName(state.configuration.Current)
	archiveTagMessage := fmt.Sprintf(backupTagMessageTemplateConstant, state.configuration.Current)
	if tagError := service.createTagIfAbsent(executionContext, state, archiveTag, archiveTagMessage); tagError != nil {
		return tagError
	}
	service.completePhase(state, phaseArchiveCurrentNameConstant, archiveBranch)
	return nil
}

func (service *Service) runPromoteNextPhase(executionContext context.Context, state *runState) error {
	if resetError := service.resetBranchTo(executionContext, state, season.BranchMain, season.BranchSeasonNext); resetError != nil {
		return resetError
	}
	if resetError := service.resetBranchTo(executionContext, state, season.BranchDevelop, season.BranchMain); resetError != nil {
		return resetError
	}

	releaseTag := season.ReleaseTagName(state.configuration.Next)
	releaseTagMessage := fmt.Sprintf(mergeCommitMessageTemplateConstant, state.configuration.Next)
	if tagError := service.createTagIfAbsent(executionContext, state, releaseTag, releaseTagMessage); tagError != nil {
		return tagError
	}
	service.completePhase(state, phasePromoteNextNameConstant, "")
	return nil
}

func (service *Service) runReinitializeNextPhase(executionContext context.Context, state *runState) error {
	if resetError := service.resetBranchTo(executionContext, state, season.BranchSeasonNext, season.BranchMain); resetError != nil {
		return resetError
	}

	initTag := season.InitTagName(state.record.NewNextSeason)
	initTagMessage := fmt.Sprintf(mergeCommitMessageTemplateConstant, state.record.NewNextSeason)
	if tagError := service.createTagIfAbsent(executionContext, state, initTag, initTagMessage); tagError != nil {
		return tagError
	}
	service.completePhase(state, phaseReinitializeNextNameConstant, "")
	return nil
}

func (service *Service) runUpdateConfigPhase(executionContext context.Context, state *runState) error {
	advancedConfiguration := state.configuration.Advanced()
	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunConfigTemplateConstant, advancedConfiguration.Current, advancedConfiguration.Next))
		service.completePhase(state, phaseUpdateConfigNameConstant, "")
		return nil
	}
	if saveError := service.configurationStore.Save(executionContext, state.repositoryPath, advancedConfiguration); saveError != nil {
		return fmt.Errorf(configSaveErrorTemplateConstant, saveError)
	}
	service.statusPrinter.Success(fmt.Sprintf(configUpdatedTemplateConstant, advancedConfiguration.Current, advancedConfiguration.Next))
	service.completePhase(state, phaseUpdateConfigNameConstant, "")
	return nil
}

func (service *Service) runPushPhase(executionContext context.Context, state *runState) error {
	if !state.remoteConfigured {
		service.statusPrinter.Warning(fmt.Sprintf(noRemoteWarningTemplateConstant, state.remoteName))
		service.restoreOriginalCheckout(executionContext, state)
		state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phasePushNameConstant, Status: phaseStatusSkippedConstant})
		return nil
	}

	// main and develop were rewritten by the promotion reset, so divergence
	// there is intentional. season/next divergence is a real conflict.
	pushPlan := []struct {
		branchName string
		allowForce bool
	}{
		{branchName: season.BranchMain, allowForce: true},
		{branchName: season.BranchDevelop, allowForce: true},
		{branchName: season.BranchSeasonNext, allowForce: false},
		{branchName: season.ArchiveBranchName(state.configuration.Current), allowForce: true},
	}

	for _, plannedPush := range pushPlan {
		pushResult, pushError := service.pushEngine.PushBranch(executionContext, PushOptions{
			RepositoryPath: state.repositoryPath,
			RemoteName:     state.remoteName,
			BranchName:     plannedPush.branchName,
			AllowForce:     plannedPush.allowForce,
			DryRun:         state.dryRun,
		})
		if pushError != nil {
			return pushError
		}
		state.record.PushResults = append(state.record.PushResults, pushResult)
		if pushResult.Status == PushStatusFailed {
			state.record.PushFailureCount++
		}
	}

	if tagsPushError := service.pushEngine.PushTags(executionContext, state.repositoryPath, state.remoteName, state.dryRun); tagsPushError != nil {
		service.statusPrinter.Warning(fmt.Sprintf(tagsPushFailedWarningTemplateConstant, tagsPushError))
		state.record.PushFailureCount++
	} else if !state.dryRun {
		service.statusPrinter.Success(fmt.Sprintf(tagsPushedTemplateConstant, state.remoteName))
	}

	service.restoreOriginalCheckout(executionContext, state)

	phaseStatus := phaseStatusCompletedConstant
	phaseDetail := pushCleanSummaryMessageConstant
	if state.record.PushFailureCount > 0 {
		phaseStatus = phaseStatusWarningConstant
		phaseDetail = fmt.Sprintf(pushSummaryTemplateConstant, state.record.PushFailureCount)
		service.statusPrinter.Warning(phaseDetail)
	}
	state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phasePushNameConstant, Status: phaseStatus, Detail: phaseDetail})
	return nil
}

func (service *Service) runCleanupPhase(executionContext context.Context, state *runState) {
	deletionCandidates := service.collectCleanupCandidates(executionContext, state)
	switch {
	case len(deletionCandidates) == 0:
		service.statusPrinter.Step(cleanupNothingMessageConstant)
	case state.dryRun:
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunCleanupTemplateConstant, len(deletionCandidates)))
	default:
		deletedCount := 0
		for batchStart := 0; batchStart < len(deletionCandidates); batchStart += cleanupBatchSizeConstant {
			batchEnd := batchStart + cleanupBatchSizeConstant
			if batchEnd > len(deletionCandidates) {
				batchEnd = len(deletionCandidates)
			}
			deletionBatch := deletionCandidates[batchStart:batchEnd]
			if deletionError := service.repository.DeleteBranches(executionContext, state.repositoryPath, deletionBatch, false); deletionError != nil {
				service.statusPrinter.Warning(fmt.Sprintf(cleanupDeleteWarningTemplateConstant, deletionError))
				continue
			}
			deletedCount += len(deletionBatch)
		}
		service.statusPrinter.Success(fmt.Sprintf(cleanupDeletedTemplateConstant, deletedCount))
	}

	state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phaseCleanupNameConstant, Status: phaseStatusCompletedConstant})

	if service.reportWriter == nil {
		return
	}
	if state.dryRun {
		service.statusPrinter.DryRun(dryRunReportMessageConstant)
		return
	}
	reportPath, reportError := service.reportWriter.Write(*state.record)
	if reportError != nil {
		service.statusPrinter.Warning(fmt.Sprintf(reportFailureWarningTemplateConstant, reportError))
		return
	}
	state.record.ReportPath = reportPath
	service.statusPrinter.Success(fmt.Sprintf(reportWrittenTemplateConstant, reportPath))
}

func (service *Service) collectCleanupCandidates(executionContext context.Context, state *runState) []string {
	seenBranches := map[string]bool{}
	deletionCandidates := []string{}
	for _, integrationBranch := range []string{season.BranchDevelop, season.BranchSeasonNext} {
		mergedBranches, listError := service.repository.ListMergedBranches(executionContext, state.repositoryPath, integrationBranch)
		if listError != nil {
			service.statusPrinter.Warning(fmt.Sprintf(cleanupListWarningTemplateConstant, integrationBranch, listError))
			continue
		}
		for _, mergedBranch := range mergedBranches {
			if seenBranches[mergedBranch] || !hasCleanupPrefix(mergedBranch) {
				continue
			}
			seenBranches[mergedBranch] = true
			deletionCandidates = append(deletionCandidates, mergedBranch)
		}
	}
	return deletionCandidates
}

func hasCleanupPrefix(branchName string) bool {
	for _, cleanupPrefix := range cleanupBranchPrefixes {
		if strings.HasPrefix(branchName, cleanupPrefix) {
			return true
		}
	}
	return false
}

func (service *Service) resetBranchTo(executionContext context.Context, state *runState, branchName string, targetReference string) error {
	if checkoutError := service.checkout(executionContext, state, branchName); checkoutError != nil {
		return checkoutError
	}
	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunResetTemplateConstant, branchName, targetReference))
		return nil
	}
	if resetError := service.repository.ResetHard(executionContext, state.repositoryPath, targetReference); resetError != nil {
		return fmt.Errorf(resetErrorTemplateConstant, branchName, targetReference, resetError)
	}
	service.statusPrinter.Success(fmt.Sprintf(resetCompletedTemplateConstant, branchName, targetReference))
	return nil
}

func (service *Service) checkout(executionContext context.Context, state *runState, branchName string) error {
	if state.dryRun {
		return nil
	}
	if checkoutError := service.repository.CheckoutBranch(executionContext, state.repositoryPath, branchName); checkoutError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, branchName, checkoutError)
	}
	return nil
}

func (service *Service) createTagIfAbsent(executionContext context.Context, state *runState, tagName string, tagMessage string) error {
	tagExists, existenceError := service.repository.TagExists(executionContext, state.repositoryPath, tagName)
	if existenceError != nil {
		return fmt.Errorf(tagExistenceErrorTemplateConstant, tagName, existenceError)
	}
	if tagExists {
		service.statusPrinter.Warning(fmt.Sprintf(tagAlreadyExistsTemplateConstant, tagName))
		return nil
	}
	if state.dryRun {
		service.statusPrinter.DryRun(fmt.Sprintf(dryRunTagTemplateConstant, tagName))
		return nil
	}
	if creationError := service.repository.CreateAnnotatedTag(executionContext, state.repositoryPath, tagName, tagMessage); creationError != nil {
		return fmt.Errorf(tagCreationErrorTemplateConstant, tagName, creationError)
	}
	state.record.TagsCreated = append(state.record.TagsCreated, tagName)
	service.statusPrinter.Success(fmt.Sprintf(tagCreatedTemplateConstant, tagName))
	return nil
}

func (service *Service) restoreOriginalCheckout(executionContext context.Context, state *runState) {
	if state.dryRun || len(state.originalBranch) == 0 {
		return
	}
	if checkoutError := service.repository.CheckoutBranch(executionContext, state.repositoryPath, state.originalBranch); checkoutError != nil {
		service.statusPrinter.Warning(fmt.Sprintf(restoreCheckoutWarningTemplateConstant, state.originalBranch, checkoutError))
	}
}

func (service *Service) completePhase(state *runState, phaseName string, detail string) {
	service.logger.Debug(phaseCompletedLogMessageConstant, zap.String(phaseLogFieldNameConstant, phaseName))
	state.record.Phases = append(state.record.Phases, PhaseOutcome{Name: phaseName, Status: phaseStatusCompletedConstant, Detail: detail})
}

func (service *Service) reportFatalFailure(phaseError error, state *runState) {
	service.statusPrinter.Failure(phaseError.Error())
	if state.record.BackupCreated {
		service.statusPrinter.Step(fmt.Sprintf(backupGuidanceTemplateConstant, state.record.BackupTag))
	} else {
		service.statusPrinter.Step(noBackupGuidanceMessageConstant)
	}
}
