// Package gitrepo contains the typed git operations used to synchronize branches.
//
// RepositoryManager exposes a closed set of mutations (fetch, push, branch moves,
// checkout, stash) executed through the git CLI, while RepositoryInspector
// implementations answer read-only questions about references and ancestry either
// through the git CLI (CLIInspector) or natively through go-git (NativeInspector).
package gitrepo
