package branchsync

// ClassificationKind names the relationship between a local branch and its remote counterpart.
type ClassificationKind string

// Supported classification kinds.
const (
	ClassificationEqual         ClassificationKind = ClassificationKind("equal")
	ClassificationLocalAhead    ClassificationKind = ClassificationKind("local-ahead")
	ClassificationRemoteAhead   ClassificationKind = ClassificationKind("remote-ahead")
	ClassificationDiverged      ClassificationKind = ClassificationKind("diverged")
	ClassificationRemoteMissing ClassificationKind = ClassificationKind("remote-missing")
)

// Classification is a closed set of outcomes produced by Classifier.
// The concrete types are EqualClassification, LocalAheadClassification, RemoteAheadClassification,
// DivergedClassification, and RemoteMissingClassification.
type Classification interface {
	Kind() ClassificationKind
	sealed()
}

// EqualClassification reports identical local and remote tips.
type EqualClassification struct{}

// LocalAheadClassification reports a remote tip that is a strict ancestor of the local tip.
type LocalAheadClassification struct{}

// RemoteAheadClassification reports a local tip that is a strict ancestor of RemoteTip.
type RemoteAheadClassification struct {
	RemoteTip string
}

// DivergedClassification reports tips where neither is an ancestor of the other.
type DivergedClassification struct{}

// RemoteMissingClassification reports a branch without a remote-tracking counterpart.
type RemoteMissingClassification struct{}

func (EqualClassification) Kind() ClassificationKind         { return ClassificationEqual }
func (LocalAheadClassification) Kind() ClassificationKind    { return ClassificationLocalAhead }
func (RemoteAheadClassification) Kind() ClassificationKind   { return ClassificationRemoteAhead }
func (DivergedClassification) Kind() ClassificationKind      { return ClassificationDiverged }
func (RemoteMissingClassification) Kind() ClassificationKind { return ClassificationRemoteMissing }

func (EqualClassification) sealed()         {}
func (LocalAheadClassification) sealed()    {}
func (RemoteAheadClassification) sealed()   {}
func (DivergedClassification) sealed()      {}
func (RemoteMissingClassification) sealed() {}
