package branchsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/gitsync/internal/gitrepo"
	"github.com/temirov/gitsync/internal/prompt"
)

const (
	missingRemotePromptTemplateConstant       = "%s: remote %s does not have this branch.\n  (d) Delete local branch\n  (p) Push to %s\n  (n) Do nothing\nChoice"
	primaryResetPromptTemplateConstant        = "%s: primary branch is %s relative to %s. Hard reset it to %s?"
	pullRequestPromptTemplateConstant         = "%s: open a pull request for the pushed branch?"
	pullRequestOutputTemplateConstant         = "Pull request for %s: %s\n"
	branchActionErrorTemplateConstant         = "%s: %w"
	missingRemoteDefaultChoiceConstant        = "n"
	missingRemoteDeleteChoiceConstant         = "d"
	missingRemotePushChoiceConstant           = "p"
	missingRemoteNothingChoiceConstant        = "n"
	logFieldBranchConstant                    = "branch"
	logFieldClassificationConstant            = "classification"
	logFieldActionConstant                    = "action"
	logFieldRemoteTipConstant                 = "remote_tip"
	logFieldPullRequestURLConstant            = "pull_request_url"
	equalLogMessageConstant                   = "branch matches remote"
	pushLogMessageConstant                    = "pushing branch to remote"
	moveLogMessageConstant                    = "setting local branch to remote"
	fastForwardLogMessageConstant             = "checked-out branch cannot be moved directly; fast-forwarding checkout"
	divergedLogMessageConstant                = "local and remote have diverged; doing nothing"
	deleteLogMessageConstant                  = "deleting local branch"
	checkoutPrimaryLogMessageConstant         = "checking out primary branch before deleting the current branch"
	publishLogMessageConstant                 = "pushing branch and setting upstream"
	keepLogMessageConstant                    = "keeping local branch without remote counterpart"
	ambiguousInputLogMessageConstant          = "unrecognized choice; doing nothing"
	resetPrimaryLogMessageConstant            = "resetting primary branch to remote"
	resetDeclinedLogMessageConstant           = "primary branch reset declined; handling as a regular branch"
	pullRequestUnavailableLogMessageConstant  = "pull request link unavailable"
	pullRequestPromptFailedLogMessageConstant = "pull request prompt failed"
	plannedLogMessageConstant                 = "dry run; no changes made"
	branchOutcomeSummaryTemplateConstant      = "%s: %s -> %s"
	plannedSummarySuffixConstant              = " (dry run)"
)

// Action names what the engine did, or would do in a dry run, for one branch.
type Action string

// Supported actions.
const (
	ActionNone                Action = Action("none")
	ActionPush                Action = Action("push")
	ActionPushWithUpstream    Action = Action("push-upstream")
	ActionMoveToRemote        Action = Action("move-to-remote")
	ActionFastForwardCheckout Action = Action("fast-forward-checkout")
	ActionDelete              Action = Action("delete")
	ActionResetToRemote       Action = Action("reset-to-remote")
	ActionDecisionRequired    Action = Action("decision-required")
)

// BranchOutcome records how one branch was classified and handled.
type BranchOutcome struct {
	BranchName     string
	Classification ClassificationKind
	Action         Action
	Planned        bool
	PullRequestURL string
}

// Summary renders the outcome as a single report line.
func (outcome BranchOutcome) Summary() string {
	summary := fmt.Sprintf(branchOutcomeSummaryTemplateConstant, outcome.BranchName, outcome.Classification, outcome.Action)
	if outcome.Planned {
		summary += plannedSummarySuffixConstant
	}
	return summary
}

// Report lists branch outcomes in processing order.
type Report struct {
	Outcomes []BranchOutcome
}

// RepositoryOperations are the typed git operations the engine issues.
type RepositoryOperations interface {
	AncestryChecker
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	PushBranchWithUpstream(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	ForceBranch(executionContext context.Context, repositoryPath string, branchName string, commit string) error
	DeleteBranchForce(executionContext context.Context, repositoryPath string, branchName string) error
	Checkout(executionContext context.Context, repositoryPath string, branchName string) error
	FastForward(executionContext context.Context, repositoryPath string, commit string) error
	ResetHard(executionContext context.Context, repositoryPath string, commit string) error
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// EngineOptions tune reconciliation behavior.
type EngineOptions struct {
	DryRun           bool
	OfferPullRequest bool
}

// Engine walks the session's branches in lexicographic order and reconciles each one before moving to the next.
type Engine struct {
	logger     *zap.Logger
	operations RepositoryOperations
	classifier *Classifier
	prompter   prompt.Prompter
	output     io.Writer
	options    EngineOptions
}

// NewEngine constructs an Engine. A nil logger disables logging and a nil output discards pull request links.
func NewEngine(logger *zap.Logger, operations RepositoryOperations, prompter prompt.Prompter, output io.Writer, options EngineOptions) (*Engine, error) {
	if operations == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	classifier, classifierError := NewClassifier(operations)
	if classifierError != nil {
		return nil, classifierError
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if output == nil {
		output = io.Discard
	}
	return &Engine{
		logger:     logger,
		operations: operations,
		classifier: classifier,
		prompter:   prompter,
		output:     output,
		options:    options,
	}, nil
}

// Reconcile processes every local branch. The first branch failure aborts the run and is returned with the partial report.
func (engine *Engine) Reconcile(executionContext context.Context, session *Session) (Report, error) {
	report := Report{}
	for _, branchName := range session.Branches() {
		outcome, branchError := engine.reconcileBranch(executionContext, session, branchName)
		if branchError != nil {
			return report, fmt.Errorf(branchActionErrorTemplateConstant, branchName, branchError)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

func (engine *Engine) reconcileBranch(executionContext context.Context, session *Session, branchName string) (BranchOutcome, error) {
	classification, classificationError := engine.classifier.Classify(executionContext, session, branchName)
	if classificationError != nil {
		return BranchOutcome{}, classificationError
	}

	if branchName == session.PrimaryBranch {
		outcome, handled, primaryError := engine.reconcilePrimary(executionContext, session, branchName, classification)
		if primaryError != nil || handled {
			return outcome, primaryError
		}
	}

	return engine.dispatch(executionContext, session, branchName, classification)
}

// reconcilePrimary applies the stricter primary branch rules. It reports handled=false to fall through to dispatch.
func (engine *Engine) reconcilePrimary(executionContext context.Context, session *Session, branchName string, classification Classification) (BranchOutcome, bool, error) {
	outcome := engine.newOutcome(branchName, classification)

	switch classification.(type) {
	case RemoteMissingClassification:
		return outcome, true, RemoteMissingForPrimaryError{BranchName: branchName, RemoteName: session.RemoteName}
	case LocalAheadClassification, DivergedClassification:
	default:
		return outcome, false, nil
	}

	if engine.options.DryRun {
		return engine.planned(outcome, ActionDecisionRequired), true, nil
	}

	remoteTip, _ := session.RemoteTip(branchName)
	remoteTrackingName := gitrepo.RemoteTrackingName(session.RemoteName, branchName)
	confirmed, confirmError := engine.prompter.Confirm(fmt.Sprintf(primaryResetPromptTemplateConstant, branchName, classification.Kind(), remoteTrackingName, remoteTrackingName))
	if confirmError != nil {
		return outcome, true, confirmError
	}
	if !confirmed {
		engine.logBranch(zap.InfoLevel, resetDeclinedLogMessageConstant, outcome)
		return outcome, false, nil
	}

	outcome.Action = ActionResetToRemote
	engine.logBranch(zap.WarnLevel, resetPrimaryLogMessageConstant, outcome, zap.String(logFieldRemoteTipConstant, remoteTip))
	if session.IsCheckedOut(branchName) {
		return outcome, true, engine.operations.ResetHard(executionContext, session.RepositoryPath, remoteTip)
	}
	return outcome, true, engine.operations.ForceBranch(executionContext, session.RepositoryPath, branchName, remoteTip)
}

func (engine *Engine) dispatch(executionContext context.Context, session *Session, branchName string, classification Classification) (BranchOutcome, error) {
	outcome := engine.newOutcome(branchName, classification)

	switch typedClassification := classification.(type) {
	case EqualClassification:
		engine.logBranch(zap.DebugLevel, equalLogMessageConstant, outcome)
		return outcome, nil
	case LocalAheadClassification:
		if engine.options.DryRun {
			return engine.planned(outcome, ActionPush), nil
		}
		outcome.Action = ActionPush
		engine.logBranch(zap.WarnLevel, pushLogMessageConstant, outcome)
		return outcome, engine.operations.PushBranch(executionContext, session.RepositoryPath, session.RemoteName, branchName)
	case RemoteAheadClassification:
		if engine.options.DryRun {
			return engine.planned(outcome, ActionMoveToRemote), nil
		}
		return engine.moveToRemoteTip(executionContext, session, outcome, typedClassification.RemoteTip)
	case DivergedClassification:
		engine.logBranch(zap.WarnLevel, divergedLogMessageConstant, outcome)
		return outcome, nil
	case RemoteMissingClassification:
		if engine.options.DryRun {
			return engine.planned(outcome, ActionDecisionRequired), nil
		}
		return engine.resolveMissingRemote(executionContext, session, outcome)
	default:
		return outcome, fmt.Errorf(unhandledClassificationErrorTemplate, ErrUnhandledClassification, classification)
	}
}

// moveToRemoteTip forces the branch to the remote tip, fast-forwarding the checkout instead when the branch is checked out here.
func (engine *Engine) moveToRemoteTip(executionContext context.Context, session *Session, outcome BranchOutcome, remoteTip string) (BranchOutcome, error) {
	outcome.Action = ActionMoveToRemote
	engine.logBranch(zap.WarnLevel, moveLogMessageConstant, outcome, zap.String(logFieldRemoteTipConstant, remoteTip))

	forceError := engine.operations.ForceBranch(executionContext, session.RepositoryPath, outcome.BranchName, remoteTip)
	if forceError == nil {
		return outcome, nil
	}
	if !errors.Is(forceError, gitrepo.ErrCheckedOutBranchUpdateRefused) || !session.IsCheckedOut(outcome.BranchName) {
		return outcome, forceError
	}

	outcome.Action = ActionFastForwardCheckout
	engine.logBranch(zap.InfoLevel, fastForwardLogMessageConstant, outcome, zap.String(logFieldRemoteTipConstant, remoteTip))
	return outcome, engine.operations.FastForward(executionContext, session.RepositoryPath, remoteTip)
}

func (engine *Engine) resolveMissingRemote(executionContext context.Context, session *Session, outcome BranchOutcome) (BranchOutcome, error) {
	branchName := outcome.BranchName
	response, promptError := engine.prompter.PromptText(
		fmt.Sprintf(missingRemotePromptTemplateConstant, branchName, session.RemoteName, session.RemoteName),
		missingRemoteDefaultChoiceConstant,
	)
	if promptError != nil {
		return outcome, promptError
	}

	switch firstCharacter(response) {
	case missingRemoteDeleteChoiceConstant:
		outcome.Action = ActionDelete
		return outcome, engine.deleteLocalBranch(executionContext, session, outcome)
	case missingRemotePushChoiceConstant:
		outcome.Action = ActionPushWithUpstream
		engine.logBranch(zap.WarnLevel, publishLogMessageConstant, outcome)
		if pushError := engine.operations.PushBranchWithUpstream(executionContext, session.RepositoryPath, session.RemoteName, branchName); pushError != nil {
			return outcome, pushError
		}
		if engine.options.OfferPullRequest {
			outcome.PullRequestURL = engine.offerPullRequest(executionContext, session, outcome)
		}
		return outcome, nil
	case missingRemoteNothingChoiceConstant:
		engine.logBranch(zap.InfoLevel, keepLogMessageConstant, outcome)
		return outcome, nil
	default:
		engine.logBranch(zap.WarnLevel, ambiguousInputLogMessageConstant, outcome, zap.Error(fmt.Errorf(ambiguousUserInputErrorTemplate, ErrAmbiguousUserInput, response)))
		return outcome, nil
	}
}

func (engine *Engine) deleteLocalBranch(executionContext context.Context, session *Session, outcome BranchOutcome) error {
	if session.IsCheckedOut(outcome.BranchName) {
		engine.logBranch(zap.InfoLevel, checkoutPrimaryLogMessageConstant, outcome)
		if checkoutError := engine.operations.Checkout(executionContext, session.RepositoryPath, session.PrimaryBranch); checkoutError != nil {
			return checkoutError
		}
		session.recordCheckout(session.PrimaryBranch)
	}
	engine.logBranch(zap.WarnLevel, deleteLogMessageConstant, outcome)
	return engine.operations.DeleteBranchForce(executionContext, session.RepositoryPath, outcome.BranchName)
}

// offerPullRequest never fails the run: lookup, URL shape, and prompt problems are logged and yield an empty link.
func (engine *Engine) offerPullRequest(executionContext context.Context, session *Session, outcome BranchOutcome) string {
	remoteURL, remoteURLError := engine.operations.GetRemoteURL(executionContext, session.RepositoryPath, session.RemoteName)
	if remoteURLError != nil {
		engine.logBranch(zap.WarnLevel, pullRequestUnavailableLogMessageConstant, outcome, zap.Error(remoteURLError))
		return ""
	}

	pullRequestURL, buildError := BuildPullRequestURL(remoteURL, outcome.BranchName)
	if buildError != nil {
		engine.logBranch(zap.WarnLevel, pullRequestUnavailableLogMessageConstant, outcome, zap.Error(buildError))
		return ""
	}

	confirmed, confirmError := engine.prompter.Confirm(fmt.Sprintf(pullRequestPromptTemplateConstant, outcome.BranchName))
	if confirmError != nil {
		engine.logBranch(zap.WarnLevel, pullRequestPromptFailedLogMessageConstant, outcome, zap.Error(confirmError))
		return ""
	}
	if !confirmed {
		return ""
	}

	engine.logBranch(zap.InfoLevel, publishLogMessageConstant, outcome, zap.String(logFieldPullRequestURLConstant, pullRequestURL))
	fmt.Fprintf(engine.output, pullRequestOutputTemplateConstant, outcome.BranchName, pullRequestURL)
	return pullRequestURL
}

func (engine *Engine) newOutcome(branchName string, classification Classification) BranchOutcome {
	return BranchOutcome{BranchName: branchName, Classification: classification.Kind(), Action: ActionNone, Planned: engine.options.DryRun}
}

func (engine *Engine) planned(outcome BranchOutcome, action Action) BranchOutcome {
	outcome.Action = action
	engine.logBranch(zap.InfoLevel, plannedLogMessageConstant, outcome)
	return outcome
}

func (engine *Engine) logBranch(level zapcore.Level, message string, outcome BranchOutcome, fields ...zap.Field) {
	branchFields := append([]zap.Field{
		zap.String(logFieldBranchConstant, outcome.BranchName),
		zap.String(logFieldClassificationConstant, string(outcome.Classification)),
		zap.String(logFieldActionConstant, string(outcome.Action)),
	}, fields...)
	engine.logger.Log(level, message, branchFields...)
}

// firstCharacter returns the lowercased first character of the trimmed response.
func firstCharacter(response string) string {
	trimmedResponse := strings.TrimSpace(response)
	if len(trimmedResponse) == 0 {
		return ""
	}
	return strings.ToLower(string([]rune(trimmedResponse)[0]))
}
