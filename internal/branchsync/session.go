package branchsync

import "github.com/temirov/gitsync/internal/gitrepo"

// Session holds the state of one sync run. The snapshot is captured once after fetching and never re-read,
// so every classification in a run is made against the same references.
type Session struct {
	RepositoryPath string
	RemoteName     string
	PrimaryBranch  string
	snapshot       gitrepo.ReferenceSnapshot
	currentBranch  string
}

// NewSession constructs a Session from a snapshot taken after fetching.
func NewSession(repositoryPath string, remoteName string, primaryBranch string, snapshot gitrepo.ReferenceSnapshot, currentBranch string) *Session {
	return &Session{
		RepositoryPath: repositoryPath,
		RemoteName:     remoteName,
		PrimaryBranch:  primaryBranch,
		snapshot:       snapshot,
		currentBranch:  currentBranch,
	}
}

// Branches returns local branch names in lexicographic order.
func (session *Session) Branches() []string {
	return session.snapshot.LocalBranchNames()
}

// LocalTip returns the snapshot tip of the local branch.
func (session *Session) LocalTip(branchName string) (string, bool) {
	return session.snapshot.LocalTip(branchName)
}

// RemoteTip returns the snapshot tip of the branch's remote-tracking counterpart.
func (session *Session) RemoteTip(branchName string) (string, bool) {
	return session.snapshot.RemoteTip(session.RemoteName, branchName)
}

// CurrentBranch returns the branch checked out in the working tree, or an empty string for a detached HEAD.
func (session *Session) CurrentBranch() string {
	return session.currentBranch
}

// IsCheckedOut reports whether the branch is the one checked out in the working tree.
func (session *Session) IsCheckedOut(branchName string) bool {
	return len(session.currentBranch) > 0 && session.currentBranch == branchName
}

func (session *Session) recordCheckout(branchName string) {
	session.currentBranch = branchName
}
