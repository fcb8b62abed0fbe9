package branchsync

import (
	"context"
	"fmt"
)

// AncestryChecker answers whether one commit is reachable from another.
type AncestryChecker interface {
	IsAncestor(executionContext context.Context, repositoryPath string, ancestorCommit string, descendantCommit string) (bool, error)
}

// Classifier determines how a local branch relates to its remote-tracking counterpart.
type Classifier struct {
	ancestry AncestryChecker
}

// NewClassifier constructs a Classifier.
func NewClassifier(ancestry AncestryChecker) (*Classifier, error) {
	if ancestry == nil {
		return nil, ErrAncestryCheckerNotConfigured
	}
	return &Classifier{ancestry: ancestry}, nil
}

// Classify compares the snapshot tips of the branch and its counterpart, asking at most two ancestry questions.
func (classifier *Classifier) Classify(executionContext context.Context, session *Session, branchName string) (Classification, error) {
	localTip, localExists := session.LocalTip(branchName)
	if !localExists {
		return nil, fmt.Errorf(branchNotInSnapshotErrorTemplate, ErrBranchNotInSnapshot, branchName)
	}

	remoteTip, remoteExists := session.RemoteTip(branchName)
	if !remoteExists || len(remoteTip) == 0 {
		return RemoteMissingClassification{}, nil
	}

	if localTip == remoteTip {
		return EqualClassification{}, nil
	}

	remoteIsAncestor, remoteAncestryError := classifier.ancestry.IsAncestor(executionContext, session.RepositoryPath, remoteTip, localTip)
	if remoteAncestryError != nil {
		return nil, remoteAncestryError
	}
	if remoteIsAncestor {
		return LocalAheadClassification{}, nil
	}

	localIsAncestor, localAncestryError := classifier.ancestry.IsAncestor(executionContext, session.RepositoryPath, localTip, remoteTip)
	if localAncestryError != nil {
		return nil, localAncestryError
	}
	if localIsAncestor {
		return RemoteAheadClassification{RemoteTip: remoteTip}, nil
	}

	return DivergedClassification{}, nil
}
