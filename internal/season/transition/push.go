package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seasonforge/seasonctl/internal/execshell"
	"github.com/seasonforge/seasonctl/internal/ui"
)

// PushStatus identifies the outcome of one branch push decision.
type PushStatus string

// Push outcomes reported by the engine.
const (
	PushStatusPushed   PushStatus = "pushed"
	PushStatusUpToDate PushStatus = "upToDate"
	PushStatusSkipped  PushStatus = "skipped"
	PushStatusFailed   PushStatus = "failed"
)

const (
	pushEngineLoggerMissingMessageConstant     = "logger not configured"
	pushEngineRepositoryMissingMessageConstant = "repository not configured"
	pushBranchNameRequiredMessageConstant      = "branch name must be provided"
	pushRemoteNameRequiredMessageConstant      = "remote name must be provided"
	pushRepositoryPathRequiredMessageConstant  = "repository path must be provided"

	branchMissingSkipTemplateConstant       = "branch %s does not exist locally; skipping push"
	branchUpToDateTemplateConstant          = "%s is up to date with %s"
	branchPushedTemplateConstant            = "pushed %s to %s"
	branchForcePushedTemplateConstant       = "force pushed %s to %s (compare-and-swap)"
	branchPushFailedTemplateConstant        = "push of %s to %s failed (%s): %s"
	dryRunPushTemplateConstant              = "would push %s to %s"
	dryRunForcePushTemplateConstant         = "would force push %s to %s (compare-and-swap)"
	fetchBeforeCountWarningTemplateConstant = "unable to fetch %s from %s before divergence check: %v"
	divergenceCountErrorTemplateConstant    = "unable to compute divergence of %s against %s: %w"
	branchExistenceCheckTemplateConstant    = "unable to check branch %s: %w"
	remoteBranchCheckErrorTemplateConstant  = "unable to check remote branch %s/%s: %w"
	dryRunPushTagsTemplateConstant          = "would push tags to %s"
	remoteTrackingReferenceTemplateConstant = "%s/%s"
	pushLogBranchFieldNameConstant          = "branch"
	pushLogStatusFieldNameConstant          = "status"
	pushLogUsedForceFieldNameConstant       = "used_force"
	pushLogFailureKindFieldNameConstant     = "failure_kind"
	pushDecisionLogMessageConstant          = "push decision"
)

// ErrPushEngineLoggerNotConfigured indicates the engine was created without a logger.
var ErrPushEngineLoggerNotConfigured = errors.New(pushEngineLoggerMissingMessageConstant)

// ErrPushEngineRepositoryNotConfigured indicates the engine was created without a repository.
var ErrPushEngineRepositoryNotConfigured = errors.New(pushEngineRepositoryMissingMessageConstant)

// ErrPushBranchNameRequired indicates a push request carried an empty branch name.
var ErrPushBranchNameRequired = errors.New(pushBranchNameRequiredMessageConstant)

// ErrPushRemoteNameRequired indicates a push request carried an empty remote name.
var ErrPushRemoteNameRequired = errors.New(pushRemoteNameRequiredMessageConstant)

// ErrPushRepositoryPathRequired indicates a push request carried an empty repository path.
var ErrPushRepositoryPathRequired = errors.New(pushRepositoryPathRequiredMessageConstant)

// PushOptions configures one branch push decision.
type PushOptions struct {
	RepositoryPath string
	RemoteName     string
	BranchName     string
	AllowForce     bool
	DryRun         bool
}

// PushResult captures the outcome of one branch push decision. Failures are
// data, not errors: the engine always reports an explicit status so the caller
// can aggregate across branches without aborting.
type PushResult struct {
	BranchName  string                   `yaml:"branch"`
	Status      PushStatus               `yaml:"status"`
	UsedForce   bool                     `yaml:"used_force"`
	FailureKind execshell.GitFailureKind `yaml:"failure_kind,omitempty"`
	Diagnostic  string                   `yaml:"diagnostic,omitempty"`
}

// PushEngineDependencies enumerates collaborators required by the push engine.
type PushEngineDependencies struct {
	Logger        *zap.Logger
	Repository    Repository
	StatusPrinter *ui.StatusPrinter
}

// PushEngine decides between normal pushes, compare-and-swap force pushes, and
// reported failures based on local/remote divergence.
type PushEngine struct {
	logger        *zap.Logger
	repository    Repository
	statusPrinter *ui.StatusPrinter
}

// NewPushEngine constructs a PushEngine from the provided dependencies.
func NewPushEngine(dependencies PushEngineDependencies) (*PushEngine, error) {
	if dependencies.Logger == nil {
		return nil, ErrPushEngineLoggerNotConfigured
	}
	if dependencies.Repository == nil {
		return nil, ErrPushEngineRepositoryNotConfigured
	}
	return &PushEngine{
		logger:        dependencies.Logger,
		repository:    dependencies.Repository,
		statusPrinter: dependencies.StatusPrinter,
	}, nil
}

// PushBranch pushes one branch according to the divergence policy. The
// returned error reports only infrastructure problems; push rejections are
// returned as a failed PushResult.
func (engine *PushEngine) PushBranch(executionContext context.Context, options PushOptions) (PushResult, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return PushResult{}, ErrPushRepositoryPathRequired
	}
	trimmedRemoteName := strings.TrimSpace(options.RemoteName)
	if len(trimmedRemoteName) == 0 {
		return PushResult{}, ErrPushRemoteNameRequired
	}
	trimmedBranchName := strings.TrimSpace(options.BranchName)
	if len(trimmedBranchName) == 0 {
		return PushResult{}, ErrPushBranchNameRequired
	}

	branchExists, existenceError := engine.repository.BranchExists(executionContext, trimmedRepositoryPath, trimmedBranchName)
	if existenceError != nil {
		return PushResult{}, fmt.Errorf(branchExistenceCheckTemplateConstant, trimmedBranchName, existenceError)
	}
	if !branchExists {
		engine.statusPrinter.Warning(fmt.Sprintf(branchMissingSkipTemplateConstant, trimmedBranchName))
		return engine.finishResult(PushResult{BranchName: trimmedBranchName, Status: PushStatusSkipped}), nil
	}

	remoteBranchExists, remoteCheckError := engine.repository.RemoteBranchExists(executionContext, trimmedRepositoryPath, trimmedRemoteName, trimmedBranchName)
	if remoteCheckError != nil {
		return PushResult{}, fmt.Errorf(remoteBranchCheckErrorTemplateConstant, trimmedRemoteName, trimmedBranchName, remoteCheckError)
	}

	if !remoteBranchExists {
		return engine.performPush(executionContext, trimmedRepositoryPath, trimmedRemoteName, trimmedBranchName, false, options.DryRun)
	}

	if !options.DryRun {
		if fetchError := engine.repository.Fetch(executionContext, trimmedRepositoryPath, trimmedRemoteName, trimmedBranchName); fetchError != nil {
			engine.statusPrinter.Warning(fmt.Sprintf(fetchBeforeCountWarningTemplateConstant, trimmedBranchName, trimmedRemoteName, fetchError))
		}
	}

	remoteTrackingReference := fmt.Sprintf(remoteTrackingReferenceTemplateConstant, trimmedRemoteName, trimmedBranchName)
	aheadCount, behindCount, divergenceError := engine.repository.CountAheadBehind(executionContext, trimmedRepositoryPath, trimmedBranchName, remoteTrackingReference)
	if divergenceError != nil {
		return PushResult{}, fmt.Errorf(divergenceCountErrorTemplateConstant, trimmedBranchName, remoteTrackingReference, divergenceError)
	}

	if aheadCount == 0 && behindCount == 0 {
		engine.statusPrinter.Success(fmt.Sprintf(branchUpToDateTemplateConstant, trimmedBranchName, remoteTrackingReference))
		return engine.finishResult(PushResult{BranchName: trimmedBranchName, Status: PushStatusUpToDate}), nil
	}

	useForce := behindCount > 0 && options.AllowForce
	return engine.performPush(executionContext, trimmedRepositoryPath, trimmedRemoteName, trimmedBranchName, useForce, options.DryRun)
}

// PushTags pushes the full tag set to the remote as one best-effort batch.
func (engine *PushEngine) PushTags(executionContext context.Context, repositoryPath string, remoteName string, dryRun bool) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return ErrPushRemoteNameRequired
	}
	if dryRun {
		engine.statusPrinter.DryRun(fmt.Sprintf(dryRunPushTagsTemplateConstant, trimmedRemoteName))
		return nil
	}
	return engine.repository.PushTags(executionContext, repositoryPath, trimmedRemoteName)
}

func (engine *PushEngine) performPush(executionContext context.Context, repositoryPath string, remoteName string, branchName string, useForce bool, dryRun bool) (PushResult, error) {
	if dryRun {
		if useForce {
			engine.statusPrinter.DryRun(fmt.Sprintf(dryRunForcePushTemplateConstant, branchName, remoteName))
		} else {
			engine.statusPrinter.DryRun(fmt.Sprintf(dryRunPushTemplateConstant, branchName, remoteName))
		}
		return engine.finishResult(PushResult{BranchName: branchName, Status: PushStatusPushed, UsedForce: useForce}), nil
	}

	pushError := engine.repository.PushBranch(executionContext, repositoryPath, remoteName, branchName, useForce)
	if pushError != nil {
		failureResult := PushResult{BranchName: branchName, Status: PushStatusFailed, UsedForce: useForce}
		var operationError execshell.GitOperationError
		if errors.As(pushError, &operationError) {
			failureResult.FailureKind = operationError.Kind
			failureResult.Diagnostic = operationError.Diagnostic
		} else {
			failureResult.FailureKind = execshell.GitFailureOther
			failureResult.Diagnostic = pushError.Error()
		}
		engine.statusPrinter.Warning(fmt.Sprintf(branchPushFailedTemplateConstant, branchName, remoteName, failureResult.FailureKind, failureResult.Diagnostic))
		return engine.finishResult(failureResult), nil
	}

	if useForce {
		engine.statusPrinter.Success(fmt.Sprintf(branchForcePushedTemplateConstant, branchName, remoteName))
	} else {
		engine.statusPrinter.Success(fmt.Sprintf(branchPushedTemplateConstant, branchName, remoteName))
	}
	return engine.finishResult(PushResult{BranchName: branchName, Status: PushStatusPushed, UsedForce: useForce}), nil
}

func (engine *PushEngine) finishResult(result PushResult) PushResult {
	engine.logger.Debug(pushDecisionLogMessageConstant,
		zap.String(pushLogBranchFieldNameConstant, result.BranchName),
		zap.String(pushLogStatusFieldNameConstant, string(result.Status)),
		zap.Bool(pushLogUsedForceFieldNameConstant, result.UsedForce),
		zap.String(pushLogFailureKindFieldNameConstant, string(result.FailureKind)),
	)
	return result
}
