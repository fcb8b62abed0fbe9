package gitrepo

import (
	"sort"
	"strings"
)

const (
	remoteTrackingSeparatorConstant = "/"
	// RemoteBranchListingPrefixConstant marks names that denote remote branches in a raw branch listing.
	RemoteBranchListingPrefixConstant = "remotes/"
)

// ReferenceSnapshot captures local and remote-tracking branch tips at a single point in time.
type ReferenceSnapshot struct {
	LocalBranches  map[string]string
	RemoteBranches map[string]string
	RemoteHeads    map[string]string
}

// NewReferenceSnapshot constructs an empty snapshot ready for population.
func NewReferenceSnapshot() ReferenceSnapshot {
	return ReferenceSnapshot{
		LocalBranches:  map[string]string{},
		RemoteBranches: map[string]string{},
		RemoteHeads:    map[string]string{},
	}
}

// LocalBranchNames returns local branch names in lexicographic order, excluding names that denote remote branches.
func (snapshot ReferenceSnapshot) LocalBranchNames() []string {
	branchNames := make([]string, 0, len(snapshot.LocalBranches))
	for branchName := range snapshot.LocalBranches {
		if len(strings.TrimSpace(branchName)) == 0 || strings.HasPrefix(branchName, RemoteBranchListingPrefixConstant) {
			continue
		}
		branchNames = append(branchNames, branchName)
	}
	sort.Strings(branchNames)
	return branchNames
}

// LocalTip returns the commit recorded for the local branch.
func (snapshot ReferenceSnapshot) LocalTip(branchName string) (string, bool) {
	commit, exists := snapshot.LocalBranches[branchName]
	return strings.TrimSpace(commit), exists
}

// RemoteTip returns the commit recorded for the remote-tracking counterpart of the branch.
func (snapshot ReferenceSnapshot) RemoteTip(remoteName string, branchName string) (string, bool) {
	commit, exists := snapshot.RemoteBranches[RemoteTrackingName(remoteName, branchName)]
	return strings.TrimSpace(commit), exists
}

// RemoteDefaultBranch returns the branch the remote HEAD symbolic reference points at, when recorded.
func (snapshot ReferenceSnapshot) RemoteDefaultBranch(remoteName string) (string, bool) {
	branchName, exists := snapshot.RemoteHeads[remoteName]
	if !exists || len(branchName) == 0 {
		return "", false
	}
	return branchName, true
}

// RemoteTrackingName derives the remote-tracking short name for a local branch.
func RemoteTrackingName(remoteName string, branchName string) string {
	return remoteName + remoteTrackingSeparatorConstant + branchName
}

// splitRemoteTrackingName separates "origin/feature/x" into "origin" and "feature/x".
func splitRemoteTrackingName(shortName string) (string, string, bool) {
	separatorIndex := strings.Index(shortName, remoteTrackingSeparatorConstant)
	if separatorIndex <= 0 || separatorIndex == len(shortName)-1 {
		return "", "", false
	}
	return shortName[:separatorIndex], shortName[separatorIndex+1:], true
}
