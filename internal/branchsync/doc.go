// Package branchsync reconciles every local branch with its remote-tracking counterpart.
//
// A sync fetches the remote once, captures a Session holding one reference snapshot,
// classifies each local branch against its counterpart, and applies the action the
// classification calls for. Mutations run inside a WorkingTreeGuard, which stashes
// uncommitted changes when the operator allows it and always restores them afterwards.
//
// Interrupting the process between the stash and its restoration leaves the changes in
// the stash list; they can be recovered with git stash pop.
package branchsync
