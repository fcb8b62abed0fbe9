package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

const (
	openRepositoryErrorTemplateConstant   = "open repository %s: %w"
	listReferencesErrorTemplateConstant   = "list references in %s: %w"
	resolveCommitErrorTemplateConstant    = "resolve commit %s: %w"
	ancestryErrorTemplateConstant         = "check ancestry of %s and %s: %w"
	remoteLookupErrorTemplateConstant     = "look up remote %s: %w"
	remoteWithoutURLMessageConstant       = "remote has no configured url"
	nativeRepositoryOpenedMessageConstant = "opened repository with go-git"
	nativeLogFieldRepositoryPathConstant  = "repository_path"
)

// ErrRemoteWithoutURL indicates the remote exists but has no URL configured.
var ErrRemoteWithoutURL = errors.New(remoteWithoutURLMessageConstant)

// NativeInspector answers repository queries through go-git without spawning processes.
// Opened repositories are cached per path for the lifetime of the inspector.
type NativeInspector struct {
	logger       *zap.Logger
	mutex        sync.Mutex
	repositories map[string]*git.Repository
}

// NewNativeInspector constructs a NativeInspector. A nil logger disables logging.
func NewNativeInspector(logger *zap.Logger) *NativeInspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NativeInspector{logger: logger, repositories: map[string]*git.Repository{}}
}

// Snapshot iterates the reference store once and records branch tips and remote HEAD targets.
func (inspector *NativeInspector) Snapshot(executionContext context.Context, repositoryPath string) (ReferenceSnapshot, error) {
	repository, openError := inspector.open(repositoryPath)
	if openError != nil {
		return ReferenceSnapshot{}, openError
	}

	references, referencesError := repository.References()
	if referencesError != nil {
		return ReferenceSnapshot{}, fmt.Errorf(listReferencesErrorTemplateConstant, repositoryPath, referencesError)
	}
	defer references.Close()

	snapshot := NewReferenceSnapshot()
	iterationError := references.ForEach(func(reference *plumbing.Reference) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		referenceName := reference.Name()
		switch {
		case referenceName.IsBranch():
			if reference.Type() == plumbing.HashReference {
				snapshot.LocalBranches[referenceName.Short()] = reference.Hash().String()
			}
		case referenceName.IsRemote():
			shortName := strings.TrimPrefix(referenceName.String(), remoteBranchPrefixConstant)
			if reference.Type() == plumbing.SymbolicReference {
				recordRemoteReference(snapshot, shortName, "", strings.TrimPrefix(reference.Target().String(), remoteBranchPrefixConstant))
				return nil
			}
			recordRemoteReference(snapshot, shortName, reference.Hash().String(), "")
		}
		return nil
	})
	if iterationError != nil {
		return ReferenceSnapshot{}, fmt.Errorf(listReferencesErrorTemplateConstant, repositoryPath, iterationError)
	}
	return snapshot, nil
}

// IsAncestor walks the history of descendantCommit looking for ancestorCommit.
func (inspector *NativeInspector) IsAncestor(executionContext context.Context, repositoryPath string, ancestorCommit string, descendantCommit string) (bool, error) {
	repository, openError := inspector.open(repositoryPath)
	if openError != nil {
		return false, openError
	}

	ancestor, ancestorError := repository.CommitObject(plumbing.NewHash(strings.TrimSpace(ancestorCommit)))
	if ancestorError != nil {
		return false, fmt.Errorf(resolveCommitErrorTemplateConstant, ancestorCommit, ancestorError)
	}
	descendant, descendantError := repository.CommitObject(plumbing.NewHash(strings.TrimSpace(descendantCommit)))
	if descendantError != nil {
		return false, fmt.Errorf(resolveCommitErrorTemplateConstant, descendantCommit, descendantError)
	}

	isAncestor, ancestryError := ancestor.IsAncestor(descendant)
	if ancestryError != nil {
		return false, fmt.Errorf(ancestryErrorTemplateConstant, ancestorCommit, descendantCommit, ancestryError)
	}
	return isAncestor, nil
}

// GetCurrentBranch returns the checked-out branch, or an empty string when HEAD is detached or unborn.
func (inspector *NativeInspector) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	repository, openError := inspector.open(repositoryPath)
	if openError != nil {
		return "", openError
	}

	head, headError := repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", headError
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// GetRemoteURL returns the first URL configured for the remote.
func (inspector *NativeInspector) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	repository, openError := inspector.open(repositoryPath)
	if openError != nil {
		return "", openError
	}

	remote, remoteError := repository.Remote(remoteName)
	if remoteError != nil {
		return "", fmt.Errorf(remoteLookupErrorTemplateConstant, remoteName, remoteError)
	}
	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", fmt.Errorf(remoteLookupErrorTemplateConstant, remoteName, ErrRemoteWithoutURL)
	}
	return remoteURLs[0], nil
}

func (inspector *NativeInspector) open(repositoryPath string) (*git.Repository, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return nil, ErrRepositoryPathRequired
	}

	inspector.mutex.Lock()
	defer inspector.mutex.Unlock()

	if repository, cached := inspector.repositories[repositoryPath]; cached {
		return repository, nil
	}
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}
	inspector.logger.Debug(nativeRepositoryOpenedMessageConstant, zap.String(nativeLogFieldRepositoryPathConstant, repositoryPath))
	inspector.repositories[repositoryPath] = repository
	return repository, nil
}
