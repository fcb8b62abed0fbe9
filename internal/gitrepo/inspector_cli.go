package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/gitsync/internal/execshell"
)

const (
	gitForEachRefSubcommandConstant  = "for-each-ref"
	gitReferenceFormatFlagConstant   = "--format=%(refname)%09%(objectname)%09%(symref)"
	gitLocalBranchNamespaceConstant  = "refs/heads"
	gitRemoteBranchNamespaceConstant = "refs/remotes"
	gitMergeBaseSubcommandConstant   = "merge-base"
	gitIsAncestorFlagConstant        = "--is-ancestor"
	gitSymbolicRefSubcommandConstant = "symbolic-ref"
	gitQuietFlagConstant             = "--quiet"
	gitShortFlagConstant             = "--short"
	gitRemoteSubcommandConstant      = "remote"
	gitGetURLActionConstant          = "get-url"
	referenceFieldSeparatorConstant  = "\t"
	localBranchPrefixConstant        = "refs/heads/"
	remoteBranchPrefixConstant       = "refs/remotes/"
	remoteHeadSuffixConstant         = "/HEAD"
	notAncestorExitCodeConstant      = 1
	detachedHeadExitCodeConstant     = 1
)

// CLIInspector answers repository queries by running git plumbing commands.
type CLIInspector struct {
	executor GitExecutor
}

// NewCLIInspector constructs a CLIInspector.
func NewCLIInspector(executor GitExecutor) (*CLIInspector, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &CLIInspector{executor: executor}, nil
}

// Snapshot lists local and remote-tracking branches with their tips.
func (inspector *CLIInspector) Snapshot(executionContext context.Context, repositoryPath string) (ReferenceSnapshot, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(
		executionContext,
		newGitCommandDetails(repositoryPath, gitForEachRefSubcommandConstant, gitReferenceFormatFlagConstant, gitLocalBranchNamespaceConstant, gitRemoteBranchNamespaceConstant),
	)
	if executionError != nil {
		return ReferenceSnapshot{}, executionError
	}
	return parseReferenceListing(executionResult.StandardOutput), nil
}

// IsAncestor interprets exit code 1 of merge-base --is-ancestor as a negative answer.
func (inspector *CLIInspector) IsAncestor(executionContext context.Context, repositoryPath string, ancestorCommit string, descendantCommit string) (bool, error) {
	_, executionError := inspector.executor.ExecuteGit(
		executionContext,
		newGitCommandDetails(repositoryPath, gitMergeBaseSubcommandConstant, gitIsAncestorFlagConstant, ancestorCommit, descendantCommit),
	)
	if executionError == nil {
		return true, nil
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == notAncestorExitCodeConstant {
		return false, nil
	}
	return false, executionError
}

// GetCurrentBranch returns the checked-out branch, or an empty string when HEAD is detached.
func (inspector *CLIInspector) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(
		executionContext,
		newGitCommandDetails(repositoryPath, gitSymbolicRefSubcommandConstant, gitQuietFlagConstant, gitShortFlagConstant, gitHeadReferenceConstant),
	)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) && commandFailure.Result.ExitCode == detachedHeadExitCodeConstant {
			return "", nil
		}
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetRemoteURL returns the fetch URL configured for the remote.
func (inspector *CLIInspector) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(
		executionContext,
		newGitCommandDetails(repositoryPath, gitRemoteSubcommandConstant, gitGetURLActionConstant, remoteName),
	)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func parseReferenceListing(output string) ReferenceSnapshot {
	snapshot := NewReferenceSnapshot()
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(strings.TrimRight(line, "\r"), referenceFieldSeparatorConstant)
		if len(fields) < 2 || len(strings.TrimSpace(fields[0])) == 0 {
			continue
		}
		referenceName := strings.TrimSpace(fields[0])
		commit := strings.TrimSpace(fields[1])
		symbolicTarget := ""
		if len(fields) > 2 {
			symbolicTarget = strings.TrimSpace(fields[2])
		}

		switch {
		case strings.HasPrefix(referenceName, localBranchPrefixConstant):
			snapshot.LocalBranches[strings.TrimPrefix(referenceName, localBranchPrefixConstant)] = commit
		case strings.HasPrefix(referenceName, remoteBranchPrefixConstant):
			recordRemoteReference(snapshot, strings.TrimPrefix(referenceName, remoteBranchPrefixConstant), commit, strings.TrimPrefix(symbolicTarget, remoteBranchPrefixConstant))
		}
	}
	return snapshot
}

// recordRemoteReference stores a remote-tracking tip, or the default branch when the reference is the remote HEAD.
func recordRemoteReference(snapshot ReferenceSnapshot, shortName string, commit string, symbolicTargetShortName string) {
	if strings.HasSuffix(shortName, remoteHeadSuffixConstant) {
		remoteName := strings.TrimSuffix(shortName, remoteHeadSuffixConstant)
		if targetRemote, targetBranch, split := splitRemoteTrackingName(symbolicTargetShortName); split && targetRemote == remoteName {
			snapshot.RemoteHeads[remoteName] = targetBranch
		}
		return
	}
	snapshot.RemoteBranches[shortName] = commit
}
