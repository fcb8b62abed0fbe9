package branchsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitsync/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/workspace/repository"
	testRemoteNameConstant     = "origin"
	testPrimaryBranchConstant  = "master"
	testRemoteURLConstant      = "git@github.com:temirov/gitsync.git"
)

var errFakeFailure = errors.New("scripted failure")

// fakeRepository models a repository and its remote as branch tip maps over a linear commit history.
type fakeRepository struct {
	localBranches         map[string]string
	remoteBranches        map[string]string
	parents               map[string]string
	currentBranch         string
	defaultBranch         string
	remoteURL             string
	remoteURLError        error
	clean                 bool
	stashed               bool
	refuseCheckedOutForce bool
	failures              map[string]error
	calls                 []string
	ancestryQuestions     []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		localBranches:  map[string]string{},
		remoteBranches: map[string]string{},
		parents:        map[string]string{},
		defaultBranch:  testPrimaryBranchConstant,
		remoteURL:      testRemoteURLConstant,
		clean:          true,
		failures:       map[string]error{},
	}
}

// commits records a linear history where every commit's parent is the one before it.
func (repository *fakeRepository) commits(history ...string) *fakeRepository {
	for index := 1; index < len(history); index++ {
		repository.parents[history[index]] = history[index-1]
	}
	return repository
}

func (repository *fakeRepository) local(branchName string, commit string) *fakeRepository {
	repository.localBranches[branchName] = commit
	return repository
}

func (repository *fakeRepository) remote(branchName string, commit string) *fakeRepository {
	repository.remoteBranches[branchName] = commit
	return repository
}

func (repository *fakeRepository) session() *Session {
	snapshot, _ := repository.Snapshot(context.Background(), testRepositoryPathConstant)
	return NewSession(testRepositoryPathConstant, testRemoteNameConstant, testPrimaryBranchConstant, snapshot, repository.currentBranch)
}

func (repository *fakeRepository) mutations() []string {
	readOnlyPrefixes := []string{"fetch", "snapshot", "current-branch", "default-branch", "remote-url", "status"}
	mutations := []string{}
	for _, call := range repository.calls {
		readOnly := false
		for _, prefix := range readOnlyPrefixes {
			if strings.HasPrefix(call, prefix) {
				readOnly = true
				break
			}
		}
		if !readOnly {
			mutations = append(mutations, call)
		}
	}
	return mutations
}

func (repository *fakeRepository) record(operation string, arguments ...string) error {
	repository.calls = append(repository.calls, strings.TrimSpace(operation+" "+strings.Join(arguments, " ")))
	return repository.failures[operation]
}

func (repository *fakeRepository) IsAncestor(_ context.Context, _ string, ancestorCommit string, descendantCommit string) (bool, error) {
	repository.ancestryQuestions = append(repository.ancestryQuestions, ancestorCommit+".."+descendantCommit)
	if failure := repository.failures["ancestry"]; failure != nil {
		return false, failure
	}
	for commit := descendantCommit; len(commit) > 0; commit = repository.parents[commit] {
		if commit == ancestorCommit {
			return true, nil
		}
	}
	return false, nil
}

func (repository *fakeRepository) Fetch(_ context.Context, _ string, remoteName string) error {
	return repository.record("fetch", remoteName)
}

func (repository *fakeRepository) Snapshot(_ context.Context, _ string) (gitrepo.ReferenceSnapshot, error) {
	if failure := repository.record("snapshot"); failure != nil {
		return gitrepo.ReferenceSnapshot{}, failure
	}
	snapshot := gitrepo.NewReferenceSnapshot()
	for branchName, commit := range repository.localBranches {
		snapshot.LocalBranches[branchName] = commit
	}
	for branchName, commit := range repository.remoteBranches {
		snapshot.RemoteBranches[gitrepo.RemoteTrackingName(testRemoteNameConstant, branchName)] = commit
	}
	return snapshot, nil
}

func (repository *fakeRepository) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	return repository.currentBranch, repository.record("current-branch")
}

func (repository *fakeRepository) GetDefaultBranch(_ context.Context, _ string, remoteName string) (string, error) {
	if failure := repository.record("default-branch", remoteName); failure != nil {
		return "", failure
	}
	return repository.defaultBranch, nil
}

func (repository *fakeRepository) GetRemoteURL(_ context.Context, _ string, remoteName string) (string, error) {
	repository.record("remote-url", remoteName)
	return repository.remoteURL, repository.remoteURLError
}

func (repository *fakeRepository) PushBranch(_ context.Context, _ string, remoteName string, branchName string) error {
	if failure := repository.record("push", remoteName, branchName); failure != nil {
		return failure
	}
	repository.remoteBranches[branchName] = repository.localBranches[branchName]
	return nil
}

func (repository *fakeRepository) PushBranchWithUpstream(_ context.Context, _ string, remoteName string, branchName string) error {
	if failure := repository.record("push-upstream", remoteName, branchName); failure != nil {
		return failure
	}
	repository.remoteBranches[branchName] = repository.localBranches[branchName]
	return nil
}

func (repository *fakeRepository) ForceBranch(_ context.Context, _ string, branchName string, commit string) error {
	if failure := repository.record("force", branchName, commit); failure != nil {
		return failure
	}
	if repository.refuseCheckedOutForce && branchName == repository.currentBranch {
		return fmt.Errorf("%w: %s", gitrepo.ErrCheckedOutBranchUpdateRefused, branchName)
	}
	repository.localBranches[branchName] = commit
	return nil
}

func (repository *fakeRepository) DeleteBranchForce(_ context.Context, _ string, branchName string) error {
	if failure := repository.record("delete", branchName); failure != nil {
		return failure
	}
	delete(repository.localBranches, branchName)
	return nil
}

func (repository *fakeRepository) Checkout(_ context.Context, _ string, branchName string) error {
	if failure := repository.record("checkout", branchName); failure != nil {
		return failure
	}
	repository.currentBranch = branchName
	return nil
}

func (repository *fakeRepository) FastForward(_ context.Context, _ string, commit string) error {
	if failure := repository.record("fast-forward", commit); failure != nil {
		return failure
	}
	repository.localBranches[repository.currentBranch] = commit
	return nil
}

func (repository *fakeRepository) ResetHard(_ context.Context, _ string, commit string) error {
	if failure := repository.record("reset-hard", commit); failure != nil {
		return failure
	}
	repository.localBranches[repository.currentBranch] = commit
	return nil
}

func (repository *fakeRepository) CheckCleanWorktree(_ context.Context, _ string) (bool, error) {
	if failure := repository.record("status"); failure != nil {
		return false, failure
	}
	return repository.clean, nil
}

func (repository *fakeRepository) StashPush(_ context.Context, _ string, _ string) error {
	if failure := repository.record("stash-push"); failure != nil {
		return failure
	}
	repository.stashed = true
	repository.clean = true
	return nil
}

func (repository *fakeRepository) StashPop(_ context.Context, _ string) error {
	if failure := repository.record("stash-pop"); failure != nil {
		return failure
	}
	repository.stashed = false
	repository.clean = false
	return nil
}
