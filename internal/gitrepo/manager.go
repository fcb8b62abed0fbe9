package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitsync/internal/execshell"
)

const (
	gitFetchSubcommandConstant          = "fetch"
	gitPruneFlagConstant                = "--prune"
	gitPushSubcommandConstant           = "push"
	gitSetUpstreamFlagConstant          = "--set-upstream"
	gitBranchSubcommandConstant         = "branch"
	gitForceFlagConstant                = "-f"
	gitForceDeleteFlagConstant          = "-D"
	gitCheckoutSubcommandConstant       = "checkout"
	gitMergeSubcommandConstant          = "merge"
	gitFastForwardOnlyFlagConstant      = "--ff-only"
	gitResetSubcommandConstant          = "reset"
	gitHardFlagConstant                 = "--hard"
	gitStatusSubcommandConstant         = "status"
	gitPorcelainFlagConstant            = "--porcelain"
	gitStashSubcommandConstant          = "stash"
	gitStashPushActionConstant          = "push"
	gitStashPopActionConstant           = "pop"
	gitIncludeUntrackedFlagConstant     = "--include-untracked"
	gitMessageFlagConstant              = "-m"
	gitIndexFlagConstant                = "--index"
	gitLSRemoteSubcommandConstant       = "ls-remote"
	gitSymrefFlagConstant               = "--symref"
	gitHeadReferenceConstant            = "HEAD"
	symbolicReferencePrefixConstant     = "ref:"
	localeEnvironmentVariableConstant   = "LC_ALL"
	localeEnvironmentValueConstant      = "C"
	terminalPromptEnvironmentConstant   = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant = "0"
	checkedOutRefusalMarkerConstant     = "cannot force update"
)

const (
	executorNotConfiguredMessageConstant         = "git executor not configured"
	repositoryPathRequiredMessageConstant        = "repository path required"
	branchNameRequiredMessageConstant            = "branch name required"
	commitRequiredMessageConstant                = "commit identifier required"
	remoteNameRequiredMessageConstant            = "remote name required"
	checkedOutBranchRefusedMessageConstant       = "refusing to force-update the checked-out branch"
	defaultBranchUnresolvedMessageConstant       = "default branch could not be resolved"
	checkedOutBranchErrorTemplateConstant        = "%w: %s"
	defaultBranchUnresolvedErrorTemplateConstant = "%w for remote %s"
)

var (
	// ErrGitExecutorNotConfigured indicates a manager or inspector was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRepositoryPathRequired indicates an operation received an empty repository path.
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)
	// ErrBranchNameRequired indicates an operation received an empty branch name.
	ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)
	// ErrCommitRequired indicates an operation received an empty commit identifier.
	ErrCommitRequired = errors.New(commitRequiredMessageConstant)
	// ErrRemoteNameRequired indicates an operation received an empty remote name.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
	// ErrCheckedOutBranchUpdateRefused indicates git refused to move the branch that is currently checked out.
	ErrCheckedOutBranchUpdateRefused = errors.New(checkedOutBranchRefusedMessageConstant)
	// ErrDefaultBranchUnresolved indicates the remote did not advertise a default branch.
	ErrDefaultBranchUnresolved = errors.New(defaultBranchUnresolvedMessageConstant)
)

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryInspector answers read-only questions about a repository.
type RepositoryInspector interface {
	Snapshot(executionContext context.Context, repositoryPath string) (ReferenceSnapshot, error)
	IsAncestor(executionContext context.Context, repositoryPath string, ancestorCommit string, descendantCommit string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// RepositoryManager performs branch synchronization operations through the git CLI.
type RepositoryManager struct {
	executor  GitExecutor
	inspector RepositoryInspector
}

// NewRepositoryManager constructs a RepositoryManager. A nil inspector selects the CLI inspector.
func NewRepositoryManager(executor GitExecutor, inspector RepositoryInspector) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if inspector == nil {
		cliInspector, inspectorError := NewCLIInspector(executor)
		if inspectorError != nil {
			return nil, inspectorError
		}
		inspector = cliInspector
	}
	return &RepositoryManager{executor: executor, inspector: inspector}, nil
}

// Fetch updates remote-tracking references and prunes those deleted on the remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	if validationError := requireValues(repositoryPath, remoteName, ErrRemoteNameRequired); validationError != nil {
		return validationError
	}
	return manager.run(executionContext, repositoryPath, gitFetchSubcommandConstant, gitPruneFlagConstant, remoteName)
}

// Snapshot reads every local and remote-tracking branch tip.
func (manager *RepositoryManager) Snapshot(executionContext context.Context, repositoryPath string) (ReferenceSnapshot, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ReferenceSnapshot{}, ErrRepositoryPathRequired
	}
	return manager.inspector.Snapshot(executionContext, repositoryPath)
}

// IsAncestor reports whether ancestorCommit is reachable from descendantCommit.
func (manager *RepositoryManager) IsAncestor(executionContext context.Context, repositoryPath string, ancestorCommit string, descendantCommit string) (bool, error) {
	if len(strings.TrimSpace(ancestorCommit)) == 0 || len(strings.TrimSpace(descendantCommit)) == 0 {
		return false, ErrCommitRequired
	}
	return manager.inspector.IsAncestor(executionContext, repositoryPath, ancestorCommit, descendantCommit)
}

// GetCurrentBranch returns the checked-out branch name, or an empty string for a detached HEAD.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	return manager.inspector.GetCurrentBranch(executionContext, repositoryPath)
}

// GetRemoteURL returns the first configured URL of the remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	if len(strings.TrimSpace(remoteName)) == 0 {
		return "", ErrRemoteNameRequired
	}
	return manager.inspector.GetRemoteURL(executionContext, repositoryPath, remoteName)
}

// GetDefaultBranch resolves the branch advertised by the remote HEAD, falling back to the recorded remote HEAD reference.
func (manager *RepositoryManager) GetDefaultBranch(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	if validationError := requireValues(repositoryPath, remoteName, ErrRemoteNameRequired); validationError != nil {
		return "", validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, newGitCommandDetails(repositoryPath, gitLSRemoteSubcommandConstant, gitSymrefFlagConstant, remoteName, gitHeadReferenceConstant))
	if executionError != nil {
		return "", executionError
	}
	if branchName, found := parseAdvertisedDefaultBranch(executionResult.StandardOutput); found {
		return branchName, nil
	}

	snapshot, snapshotError := manager.inspector.Snapshot(executionContext, repositoryPath)
	if snapshotError != nil {
		return "", snapshotError
	}
	if branchName, found := snapshot.RemoteDefaultBranch(remoteName); found {
		return branchName, nil
	}
	return "", fmt.Errorf(defaultBranchUnresolvedErrorTemplateConstant, ErrDefaultBranchUnresolved, remoteName)
}

// PushBranch pushes the branch to the remote under the same name without forcing.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if validationError := requireValues(repositoryPath, remoteName, ErrRemoteNameRequired); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}
	return manager.run(executionContext, repositoryPath, gitPushSubcommandConstant, remoteName, branchName)
}

// PushBranchWithUpstream pushes the branch and records the remote branch as its upstream.
func (manager *RepositoryManager) PushBranchWithUpstream(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if validationError := requireValues(repositoryPath, remoteName, ErrRemoteNameRequired); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return ErrBranchNameRequired
	}
	return manager.run(executionContext, repositoryPath, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName)
}

// ForceBranch points the branch at the commit. Moving the checked-out branch returns ErrCheckedOutBranchUpdateRefused.
func (manager *RepositoryManager) ForceBranch(executionContext context.Context, repositoryPath string, branchName string, commit string) error {
	if validationError := requireValues(repositoryPath, branchName, ErrBranchNameRequired); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(commit)) == 0 {
		return ErrCommitRequired
	}

	currentBranch, currentBranchError := manager.inspector.GetCurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil {
		return currentBranchError
	}
	if currentBranch == branchName {
		return fmt.Errorf(checkedOutBranchErrorTemplateConstant, ErrCheckedOutBranchUpdateRefused, branchName)
	}

	forceError := manager.run(executionContext, repositoryPath, gitBranchSubcommandConstant, gitForceFlagConstant, branchName, commit)
	if forceError == nil {
		return nil
	}
	if isCheckedOutRefusal(forceError) {
		return fmt.Errorf(checkedOutBranchErrorTemplateConstant, ErrCheckedOutBranchUpdateRefused, branchName)
	}
	return forceError
}

// DeleteBranchForce removes the local branch even when it is not merged.
func (manager *RepositoryManager) DeleteBranchForce(executionContext context.Context, repositoryPath string, branchName string) error {
	if validationError := requireValues(repositoryPath, branchName, ErrBranchNameRequired); validationError != nil {
		return validationError
	}
	return manager.run(executionContext, repositoryPath, gitBranchSubcommandConstant, gitForceDeleteFlagConstant, branchName)
}

// Checkout switches the working tree to the branch.
func (manager *RepositoryManager) Checkout(executionContext context.Context, repositoryPath string, branchName string) error {
	if validationError := requireValues(repositoryPath, branchName, ErrBranchNameRequired); validationError != nil {
		return validationError
	}
	return manager.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, branchName)
}

// FastForward advances the checked-out branch to the commit, refusing anything but a fast-forward.
func (manager *RepositoryManager) FastForward(executionContext context.Context, repositoryPath string, commit string) error {
	if validationError := requireValues(repositoryPath, commit, ErrCommitRequired); validationError != nil {
		return validationError
	}
	return manager.run(executionContext, repositoryPath, gitMergeSubcommandConstant, gitFastForwardOnlyFlagConstant, commit)
}

// ResetHard moves the checked-out branch, index, and working tree to the commit.
func (manager *RepositoryManager) ResetHard(executionContext context.Context, repositoryPath string, commit string) error {
	if validationError := requireValues(repositoryPath, commit, ErrCommitRequired); validationError != nil {
		return validationError
	}
	return manager.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitHardFlagConstant, commit)
}

// CheckCleanWorktree reports whether the short status report is empty.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return false, ErrRepositoryPathRequired
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, newGitCommandDetails(repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant))
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// StashPush stashes staged, unstaged, and untracked changes under the message.
func (manager *RepositoryManager) StashPush(executionContext context.Context, repositoryPath string, message string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	return manager.run(executionContext, repositoryPath, gitStashSubcommandConstant, gitStashPushActionConstant, gitIncludeUntrackedFlagConstant, gitMessageFlagConstant, message)
}

// StashPop restores the most recent stash entry including its index state and drops it.
func (manager *RepositoryManager) StashPop(executionContext context.Context, repositoryPath string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	return manager.run(executionContext, repositoryPath, gitStashSubcommandConstant, gitStashPopActionConstant, gitIndexFlagConstant)
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, newGitCommandDetails(repositoryPath, arguments...))
	return executionError
}

func newGitCommandDetails(repositoryPath string, arguments ...string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			localeEnvironmentVariableConstant: localeEnvironmentValueConstant,
			terminalPromptEnvironmentConstant: terminalPromptDisabledValueConstant,
		},
	}
}

func requireValues(repositoryPath string, value string, missingValueError error) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(value)) == 0 {
		return missingValueError
	}
	return nil
}

// isCheckedOutRefusal matches git's refusal text for moving a checked-out branch.
// It is only consulted when the current branch could not predict the refusal, e.g. a branch checked out in another worktree.
func isCheckedOutRefusal(failure error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(failure, &commandFailure) {
		return false
	}
	return strings.Contains(strings.ToLower(commandFailure.Result.StandardError), checkedOutRefusalMarkerConstant)
}

func parseAdvertisedDefaultBranch(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmedLine, symbolicReferencePrefixConstant) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(trimmedLine, symbolicReferencePrefixConstant))
		if len(fields) == 0 || !strings.HasPrefix(fields[0], localBranchPrefixConstant) {
			continue
		}
		branchName := strings.TrimPrefix(fields[0], localBranchPrefixConstant)
		if len(branchName) > 0 {
			return branchName, true
		}
	}
	return "", false
}
