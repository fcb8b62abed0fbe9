package branchsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitsync/internal/prompt"
)

const (
	testPullRequestURLConstant = "https://github.com/temirov/gitsync/compare/feature?expand=1"
	testHTTPSRemoteURLConstant = "https://github.com/temirov/gitsync.git"
)

type unknownClassification struct{}

func (unknownClassification) Kind() ClassificationKind { return ClassificationKind("unknown") }
func (unknownClassification) sealed()                  {}

type engineHarness struct {
	engine   *Engine
	prompter *prompt.ScriptedPrompter
	output   *bytes.Buffer
	logs     *observer.ObservedLogs
}

func newEngineHarness(testInstance *testing.T, repository *fakeRepository, options EngineOptions, responses ...string) engineHarness {
	testInstance.Helper()
	core, logs := observer.New(zap.DebugLevel)
	prompter := prompt.NewScriptedPrompter(responses...)
	output := &bytes.Buffer{}
	engine, creationError := NewEngine(zap.New(core), repository, prompter, output, options)
	require.NoError(testInstance, creationError)
	return engineHarness{engine: engine, prompter: prompter, output: output, logs: logs}
}

func TestEngineDispatchesRegularBranches(testInstance *testing.T) {
	testCases := []struct {
		name              string
		repository        *fakeRepository
		expectedAction    Action
		expectedMutations []string
	}{
		{
			name:              "equal_does_nothing",
			repository:        newFakeRepository().commits("c1").local("feature", "c1").remote("feature", "c1"),
			expectedAction:    ActionNone,
			expectedMutations: []string{},
		},
		{
			name:              "local_ahead_pushes",
			repository:        newFakeRepository().commits("c1", "c2").local("feature", "c2").remote("feature", "c1"),
			expectedAction:    ActionPush,
			expectedMutations: []string{"push origin feature"},
		},
		{
			name:              "remote_ahead_moves_branch",
			repository:        newFakeRepository().commits("c1", "c2").local("feature", "c1").remote("feature", "c2"),
			expectedAction:    ActionMoveToRemote,
			expectedMutations: []string{"force feature c2"},
		},
		{
			name:              "diverged_does_nothing",
			repository:        newFakeRepository().commits("c1", "c2").commits("c1", "d2").local("feature", "c2").remote("feature", "d2"),
			expectedAction:    ActionNone,
			expectedMutations: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness := newEngineHarness(testInstance, testCase.repository, EngineOptions{})

			report, reconcileError := harness.engine.Reconcile(context.Background(), testCase.repository.session())
			require.NoError(testInstance, reconcileError)
			require.Len(testInstance, report.Outcomes, 1)
			require.Equal(testInstance, testCase.expectedAction, report.Outcomes[0].Action)
			require.False(testInstance, report.Outcomes[0].Planned)
			require.Equal(testInstance, testCase.expectedMutations, testCase.repository.mutations())
			require.Empty(testInstance, harness.prompter.Prompts())
		})
	}
}

func TestEngineFastForwardsCheckedOutBranch(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").local("feature", "c1").remote("feature", "c2")
	repository.currentBranch = "feature"
	repository.refuseCheckedOutForce = true
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, ActionFastForwardCheckout, report.Outcomes[0].Action)
	require.Equal(testInstance, []string{"force feature c2", "fast-forward c2"}, repository.mutations())
	require.Equal(testInstance, "c2", repository.localBranches["feature"])
}

func TestEnginePropagatesForceFailureWithBranchName(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").local("feature", "c1").remote("feature", "c2")
	repository.failures["force"] = errFakeFailure
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.ErrorIs(testInstance, reconcileError, errFakeFailure)
	require.EqualError(testInstance, reconcileError, "feature: scripted failure")
	require.Empty(testInstance, report.Outcomes)
	require.Equal(testInstance, []string{"force feature c2"}, repository.mutations())
}

func TestEngineResolvesMissingRemoteFromResponse(testInstance *testing.T) {
	testCases := []struct {
		name              string
		response          string
		expectedAction    Action
		expectedMutations []string
	}{
		{name: "delete_short", response: "d", expectedAction: ActionDelete, expectedMutations: []string{"delete feature"}},
		{name: "delete_word", response: "Delete", expectedAction: ActionDelete, expectedMutations: []string{"delete feature"}},
		{name: "push_short", response: " P ", expectedAction: ActionPushWithUpstream, expectedMutations: []string{"push-upstream origin feature"}},
		{name: "nothing_short", response: "n", expectedAction: ActionNone, expectedMutations: []string{}},
		{name: "empty_selects_default", response: "", expectedAction: ActionNone, expectedMutations: []string{}},
		{name: "unrecognized_does_nothing", response: "x", expectedAction: ActionNone, expectedMutations: []string{}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := newFakeRepository().commits("c1").local("feature", "c1")
			harness := newEngineHarness(testInstance, repository, EngineOptions{}, testCase.response)

			report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
			require.NoError(testInstance, reconcileError)
			require.Equal(testInstance, testCase.expectedAction, report.Outcomes[0].Action)
			require.Equal(testInstance, ClassificationRemoteMissing, report.Outcomes[0].Classification)
			require.Equal(testInstance, testCase.expectedMutations, repository.mutations())
			require.Equal(testInstance, []string{fmt.Sprintf(missingRemotePromptTemplateConstant, "feature", "origin", "origin")}, harness.prompter.Prompts())
		})
	}
}

func TestEngineLogsUnrecognizedMissingRemoteResponse(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1").local("feature", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{}, "maybe")

	_, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)

	entries := harness.logs.FilterMessage(ambiguousInputLogMessageConstant).All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, "feature", fields[logFieldBranchConstant])
	require.Contains(testInstance, fields["error"], ambiguousUserInputMessageConstant)
}

func TestEngineChecksOutPrimaryBeforeDeletingCurrentBranch(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1").local("feature", "c1").local("master", "c1").remote("master", "c1")
	repository.currentBranch = "feature"
	harness := newEngineHarness(testInstance, repository, EngineOptions{}, "d")

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, []string{"checkout master", "delete feature"}, repository.mutations())
	require.Equal(testInstance, "master", repository.currentBranch)
	require.Len(testInstance, report.Outcomes, 2)
}

func TestEngineAbortsWhenPrimaryHasNoRemoteCounterpart(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1").local("master", "c1").local("zeta", "c1").remote("zeta", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())

	var missingError RemoteMissingForPrimaryError
	require.True(testInstance, errors.As(reconcileError, &missingError))
	require.Equal(testInstance, "master", missingError.BranchName)
	require.Equal(testInstance, "origin", missingError.RemoteName)
	require.Empty(testInstance, report.Outcomes)
	require.Empty(testInstance, harness.prompter.Prompts())
	require.Empty(testInstance, repository.mutations())
}

func TestEngineAppliesPrimaryBranchRules(testInstance *testing.T) {
	testCases := []struct {
		name              string
		repository        func() *fakeRepository
		response          string
		expectedAction    Action
		expectedMutations []string
	}{
		{
			name: "local_ahead_declined_pushes",
			repository: func() *fakeRepository {
				return newFakeRepository().commits("c1", "c2").local("master", "c2").remote("master", "c1")
			},
			response:          "n",
			expectedAction:    ActionPush,
			expectedMutations: []string{"push origin master"},
		},
		{
			name: "local_ahead_confirmed_moves_branch",
			repository: func() *fakeRepository {
				return newFakeRepository().commits("c1", "c2").local("master", "c2").remote("master", "c1")
			},
			response:          "y",
			expectedAction:    ActionResetToRemote,
			expectedMutations: []string{"force master c1"},
		},
		{
			name: "diverged_confirmed_resets_checkout",
			repository: func() *fakeRepository {
				repository := newFakeRepository().commits("c1", "c2").commits("c1", "d2").local("master", "c2").remote("master", "d2")
				repository.currentBranch = "master"
				return repository
			},
			response:          "yes",
			expectedAction:    ActionResetToRemote,
			expectedMutations: []string{"reset-hard d2"},
		},
		{
			name: "diverged_declined_does_nothing",
			repository: func() *fakeRepository {
				return newFakeRepository().commits("c1", "c2").commits("c1", "d2").local("master", "c2").remote("master", "d2")
			},
			response:          "n",
			expectedAction:    ActionNone,
			expectedMutations: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := testCase.repository()
			harness := newEngineHarness(testInstance, repository, EngineOptions{}, testCase.response)

			report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
			require.NoError(testInstance, reconcileError)
			require.Equal(testInstance, testCase.expectedAction, report.Outcomes[0].Action)
			require.Equal(testInstance, testCase.expectedMutations, repository.mutations())
			require.Len(testInstance, harness.prompter.Prompts(), 1)
		})
	}
}

func TestEngineHandlesPrimaryRemoteAheadLikeRegularBranch(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").local("master", "c1").remote("master", "c2")
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, ActionMoveToRemote, report.Outcomes[0].Action)
	require.Equal(testInstance, []string{"force master c2"}, repository.mutations())
	require.Empty(testInstance, harness.prompter.Prompts())
}

func TestEngineOffersPullRequestAfterPublishing(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1").local("feature", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{OfferPullRequest: true}, "p", "y")

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, testPullRequestURLConstant, report.Outcomes[0].PullRequestURL)
	require.Equal(testInstance, "Pull request for feature: "+testPullRequestURLConstant+"\n", harness.output.String())
	require.Equal(testInstance, fmt.Sprintf(pullRequestPromptTemplateConstant, "feature"), harness.prompter.Prompts()[1])
}

func TestEngineSwallowsPullRequestProblems(testInstance *testing.T) {
	testCases := []struct {
		name       string
		remoteURL  string
		remoteErr  error
		responses  []string
		promptsLen int
	}{
		{name: "https_remote", remoteURL: testHTTPSRemoteURLConstant, responses: []string{"p"}, promptsLen: 1},
		{name: "remote_lookup_failure", remoteErr: errFakeFailure, responses: []string{"p"}, promptsLen: 1},
		{name: "prompt_declined", remoteURL: testRemoteURLConstant, responses: []string{"p", "n"}, promptsLen: 2},
		{name: "prompt_failure", remoteURL: testRemoteURLConstant, responses: []string{"p"}, promptsLen: 2},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := newFakeRepository().commits("c1").local("feature", "c1")
			repository.remoteURL = testCase.remoteURL
			repository.remoteURLError = testCase.remoteErr
			harness := newEngineHarness(testInstance, repository, EngineOptions{OfferPullRequest: true}, testCase.responses...)

			report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
			require.NoError(testInstance, reconcileError)
			require.Equal(testInstance, ActionPushWithUpstream, report.Outcomes[0].Action)
			require.Empty(testInstance, report.Outcomes[0].PullRequestURL)
			require.Empty(testInstance, harness.output.String())
			require.Len(testInstance, harness.prompter.Prompts(), testCase.promptsLen)
		})
	}
}

func TestEngineSkipsPullRequestWhenDisabled(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1").local("feature", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{}, "p")

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Empty(testInstance, report.Outcomes[0].PullRequestURL)
	require.Len(testInstance, harness.prompter.Prompts(), 1)
	require.NotContains(testInstance, repository.calls, "remote-url origin")
}

func TestEngineDryRunPlansWithoutMutatingOrPrompting(testInstance *testing.T) {
	repository := newFakeRepository().
		commits("c1", "c2").
		commits("c1", "d2").
		local("master", "c2").remote("master", "d2").
		local("ahead", "c2").remote("ahead", "c1").
		local("behind", "c1").remote("behind", "c2").
		local("lonely", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{DryRun: true, OfferPullRequest: true})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Empty(testInstance, repository.mutations())
	require.Empty(testInstance, harness.prompter.Prompts())

	expectedActions := map[string]Action{
		"ahead":  ActionPush,
		"behind": ActionMoveToRemote,
		"lonely": ActionDecisionRequired,
		"master": ActionDecisionRequired,
	}
	require.Len(testInstance, report.Outcomes, len(expectedActions))
	for _, outcome := range report.Outcomes {
		require.True(testInstance, outcome.Planned)
		require.Equal(testInstance, expectedActions[outcome.BranchName], outcome.Action, outcome.BranchName)
	}
	require.Equal(testInstance, "ahead: local-ahead -> push (dry run)", report.Outcomes[0].Summary())
}

func TestEngineSecondRunIsIdempotent(testInstance *testing.T) {
	repository := newFakeRepository().
		commits("c1", "c2").
		commits("c1", "d2").
		local("master", "c1").remote("master", "c1").
		local("alpha", "c2").remote("alpha", "c1").
		local("beta", "c1").remote("beta", "c2").
		local("delta", "c2").remote("delta", "d2").
		local("gamma", "c1")

	firstHarness := newEngineHarness(testInstance, repository, EngineOptions{}, "p")
	_, firstError := firstHarness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, []string{"push origin alpha", "force beta c2", "push-upstream origin gamma"}, repository.mutations())

	repository.calls = nil
	secondHarness := newEngineHarness(testInstance, repository, EngineOptions{})
	secondReport, secondError := secondHarness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, secondError)
	require.Empty(testInstance, repository.mutations())
	require.Empty(testInstance, secondHarness.prompter.Prompts())
	for _, outcome := range secondReport.Outcomes {
		require.Equal(testInstance, ActionNone, outcome.Action, outcome.BranchName)
	}
}

func TestEngineAbortsOnFirstBranchFailure(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").
		local("alpha", "c2").remote("alpha", "c1").
		local("beta", "c2").remote("beta", "c1")
	repository.failures["push"] = errFakeFailure
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.ErrorIs(testInstance, reconcileError, errFakeFailure)
	require.ErrorContains(testInstance, reconcileError, "alpha: ")
	require.Empty(testInstance, report.Outcomes)
	require.Equal(testInstance, []string{"push origin alpha"}, repository.mutations())
}

func TestEngineProcessesBranchesInLexicographicOrder(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").
		local("zeta", "c2").remote("zeta", "c1").
		local("alpha", "c2").remote("alpha", "c1").
		local("mid", "c2").remote("mid", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	report, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)
	require.Equal(testInstance, []string{"push origin alpha", "push origin mid", "push origin zeta"}, repository.mutations())
	require.Equal(testInstance, "alpha", report.Outcomes[0].BranchName)
	require.Equal(testInstance, "zeta", report.Outcomes[2].BranchName)
}

func TestEngineRejectsUnknownClassification(testInstance *testing.T) {
	repository := newFakeRepository().local("feature", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	_, dispatchError := harness.engine.dispatch(context.Background(), repository.session(), "feature", unknownClassification{})
	require.ErrorIs(testInstance, dispatchError, ErrUnhandledClassification)
}

func TestEngineLogsBranchFields(testInstance *testing.T) {
	repository := newFakeRepository().commits("c1", "c2").local("feature", "c2").remote("feature", "c1")
	harness := newEngineHarness(testInstance, repository, EngineOptions{})

	_, reconcileError := harness.engine.Reconcile(context.Background(), repository.session())
	require.NoError(testInstance, reconcileError)

	entries := harness.logs.FilterMessage(pushLogMessageConstant).All()
	require.Len(testInstance, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, "feature", fields[logFieldBranchConstant])
	require.Equal(testInstance, string(ClassificationLocalAhead), fields[logFieldClassificationConstant])
	require.Equal(testInstance, string(ActionPush), fields[logFieldActionConstant])
}

func TestNewEngineValidatesDependencies(testInstance *testing.T) {
	_, missingOperationsError := NewEngine(nil, nil, prompt.DefaultsPrompter{}, nil, EngineOptions{})
	require.ErrorIs(testInstance, missingOperationsError, ErrRepositoryManagerNotConfigured)

	_, missingPrompterError := NewEngine(nil, newFakeRepository(), nil, nil, EngineOptions{})
	require.ErrorIs(testInstance, missingPrompterError, ErrPrompterNotConfigured)
}
