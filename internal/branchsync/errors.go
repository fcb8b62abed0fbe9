package branchsync

import (
	"errors"
	"fmt"
)

const (
	dirtyWorkingTreeMessageConstant         = "working tree has uncommitted changes"
	unrecognizedRemoteURLMessageConstant    = "unrecognized remote url"
	ambiguousUserInputMessageConstant       = "unrecognized response"
	stashRestoreFailedMessageConstant       = "failed to restore stashed changes"
	branchNotInSnapshotMessageConstant      = "branch is not present in the local snapshot"
	unhandledClassificationMessageConstant  = "unhandled branch classification"
	gitExecutorMissingMessageConstant       = "git executor not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	prompterMissingMessageConstant          = "prompter not configured"
	ancestryCheckerMissingMessageConstant   = "ancestry checker not configured"
	repositoryPathRequiredMessageConstant   = "repository path must be provided"
	remoteNameRequiredMessageConstant       = "remote name must be provided"
	invalidStashPolicyMessageConstant       = "invalid stash policy"
	invalidInspectorMessageConstant         = "invalid inspector"
	remoteMissingForPrimaryErrorTemplate    = "primary branch %s has no counterpart on remote %s"
	unhandledClassificationErrorTemplate    = "%w: %T"
	branchNotInSnapshotErrorTemplate        = "%w: %s"
	ambiguousUserInputErrorTemplate         = "%w %q"
	invalidValueErrorTemplateConstant       = "%w: %q"
)

var (
	// ErrDirtyWorkingTree indicates the working tree had uncommitted changes and stashing was declined or disabled.
	ErrDirtyWorkingTree = errors.New(dirtyWorkingTreeMessageConstant)
	// ErrUnrecognizedRemoteURL indicates the remote URL does not have the scp-like shape needed to build a pull request link.
	ErrUnrecognizedRemoteURL = errors.New(unrecognizedRemoteURLMessageConstant)
	// ErrAmbiguousUserInput indicates a free-text response did not start with a recognized choice.
	ErrAmbiguousUserInput = errors.New(ambiguousUserInputMessageConstant)
	// ErrStashRestoreFailed indicates the changes stashed by the guard could not be restored.
	ErrStashRestoreFailed = errors.New(stashRestoreFailedMessageConstant)
	// ErrBranchNotInSnapshot indicates classification was requested for a branch the session never saw.
	ErrBranchNotInSnapshot = errors.New(branchNotInSnapshotMessageConstant)
	// ErrUnhandledClassification indicates a classification outside the closed set reached the dispatcher.
	ErrUnhandledClassification = errors.New(unhandledClassificationMessageConstant)
	// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)
	// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
	// ErrPrompterNotConfigured indicates the prompter dependency was missing.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
	// ErrAncestryCheckerNotConfigured indicates the classifier was constructed without an ancestry checker.
	ErrAncestryCheckerNotConfigured = errors.New(ancestryCheckerMissingMessageConstant)
	// ErrRepositoryPathRequired indicates the repository path option was empty.
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)
	// ErrRemoteNameRequired indicates the remote name option was empty.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
	// ErrInvalidStashPolicy indicates an unsupported stash policy value.
	ErrInvalidStashPolicy = errors.New(invalidStashPolicyMessageConstant)
	// ErrInvalidInspector indicates an unsupported inspector value.
	ErrInvalidInspector = errors.New(invalidInspectorMessageConstant)
)

// RemoteMissingForPrimaryError reports that the primary branch has no remote counterpart, which aborts the run.
type RemoteMissingForPrimaryError struct {
	BranchName string
	RemoteName string
}

// Error describes the missing counterpart.
func (missingError RemoteMissingForPrimaryError) Error() string {
	return fmt.Sprintf(remoteMissingForPrimaryErrorTemplate, missingError.BranchName, missingError.RemoteName)
}
