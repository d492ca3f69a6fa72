package execshell

import (
	"fmt"
	"strings"
)

const (
	gitFailureNonFastForwardStringConstant   = "non_fast_forward"
	gitFailureStaleInfoStringConstant        = "stale_compare_and_swap"
	gitFailureAuthenticationStringConstant   = "authentication_failed"
	gitFailurePermissionDeniedStringConstant = "permission_denied"
	gitFailureOtherStringConstant            = "other"
	gitOperationErrorTemplateConstant        = "git %s failed (%s): %s"
	unknownDiagnosticMessageConstant         = "no diagnostic output"
)

// GitFailureKind enumerates machine-readable git failure classifications.
type GitFailureKind string

// Supported failure classifications.
const (
	GitFailureNonFastForward   GitFailureKind = GitFailureKind(gitFailureNonFastForwardStringConstant)
	GitFailureStaleInfo        GitFailureKind = GitFailureKind(gitFailureStaleInfoStringConstant)
	GitFailureAuthentication   GitFailureKind = GitFailureKind(gitFailureAuthenticationStringConstant)
	GitFailurePermissionDenied GitFailureKind = GitFailureKind(gitFailurePermissionDeniedStringConstant)
	GitFailureOther            GitFailureKind = GitFailureKind(gitFailureOtherStringConstant)
)

// gitFailurePatterns maps stderr fragments to failure kinds; order is significant
// because a stale compare-and-swap rejection also mentions the failed push.
var gitFailurePatterns = []struct {
	fragment string
	kind     GitFailureKind
}{
	{fragment: "stale info", kind: GitFailureStaleInfo},
	{fragment: "non-fast-forward", kind: GitFailureNonFastForward},
	{fragment: "fetch first", kind: GitFailureNonFastForward},
	{fragment: "tip of your current branch is behind", kind: GitFailureNonFastForward},
	{fragment: "authentication failed", kind: GitFailureAuthentication},
	{fragment: "could not read username", kind: GitFailureAuthentication},
	{fragment: "invalid credentials", kind: GitFailureAuthentication},
	{fragment: "permission denied", kind: GitFailurePermissionDenied},
	{fragment: "protected branch hook declined", kind: GitFailurePermissionDenied},
	{fragment: "insufficient permission", kind: GitFailurePermissionDenied},
}

// GitOperationError carries a classified git failure alongside the raw diagnostic text.
type GitOperationError struct {
	Operation  string
	Kind       GitFailureKind
	Diagnostic string
}

// Error describes the classified failure.
func (operationError GitOperationError) Error() string {
	diagnostic := strings.TrimSpace(operationError.Diagnostic)
	if len(diagnostic) == 0 {
		diagnostic = unknownDiagnosticMessageConstant
	}
	return fmt.Sprintf(gitOperationErrorTemplateConstant, operationError.Operation, operationError.Kind, diagnostic)
}

// ClassifyGitFailure derives a failure kind from git standard error output.
func ClassifyGitFailure(standardError string) GitFailureKind {
	loweredStandardError := strings.ToLower(standardError)
	for _, pattern := range gitFailurePatterns {
		if strings.Contains(loweredStandardError, pattern.fragment) {
			return pattern.kind
		}
	}
	return GitFailureOther
}

// NewGitOperationError builds a GitOperationError by classifying the supplied diagnostic output.
func NewGitOperationError(operation string, standardError string) GitOperationError {
	return GitOperationError{
		Operation:  operation,
		Kind:       ClassifyGitFailure(standardError),
		Diagnostic: strings.TrimSpace(standardError),
	}
}
