package branchsync

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/prompt"
)

const (
	stashEntryMessageConstant             = "gitsync: changes set aside during branch sync"
	stashConfirmationPromptConstant       = "Working tree has uncommitted changes. Stash them while branches are synchronized?"
	stashRestoreErrorTemplateConstant     = "%w: %w"
	workingTreeCheckErrorTemplateConstant = "failed to verify clean working tree: %w"
	stashPushErrorTemplateConstant        = "failed to stash local changes: %w"
	guardStashedLogMessageConstant        = "stashed uncommitted changes"
	guardRestoredLogMessageConstant       = "restored stashed changes"
	guardRestoreFailedLogMessageConstant  = "failed to restore stashed changes; recover them with git stash pop"
	guardDirtyLogMessageConstant          = "working tree has uncommitted changes"
	guardLogFieldRepositoryPathConstant   = "repository_path"
	guardLogFieldStashPolicyConstant      = "stash_policy"
)

// StashPolicy decides how the guard treats a dirty working tree.
type StashPolicy string

// Supported stash policies.
const (
	StashPolicyPrompt StashPolicy = StashPolicy("prompt")
	StashPolicyAlways StashPolicy = StashPolicy("always")
	StashPolicyNever  StashPolicy = StashPolicy("never")
)

// ParseStashPolicy converts a configuration value into a StashPolicy. Empty input selects StashPolicyPrompt.
func ParseStashPolicy(value string) (StashPolicy, error) {
	switch StashPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StashPolicyPrompt:
		return StashPolicyPrompt, nil
	case StashPolicyAlways:
		return StashPolicyAlways, nil
	case StashPolicyNever:
		return StashPolicyNever, nil
	default:
		return "", fmt.Errorf(invalidValueErrorTemplateConstant, ErrInvalidStashPolicy, value)
	}
}

// WorkingTreeOperations are the repository operations the guard relies on.
type WorkingTreeOperations interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StashPush(executionContext context.Context, repositoryPath string, message string) error
	StashPop(executionContext context.Context, repositoryPath string) error
}

// WorkingTreeGuard runs an action only against a clean working tree, stashing and restoring changes when permitted.
type WorkingTreeGuard struct {
	logger     *zap.Logger
	operations WorkingTreeOperations
	prompter   prompt.Prompter
	policy     StashPolicy
}

// NewWorkingTreeGuard constructs a WorkingTreeGuard. A nil logger disables logging.
func NewWorkingTreeGuard(logger *zap.Logger, operations WorkingTreeOperations, prompter prompt.Prompter, policy StashPolicy) (*WorkingTreeGuard, error) {
	if operations == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(policy) == 0 {
		policy = StashPolicyPrompt
	}
	return &WorkingTreeGuard{logger: logger, operations: operations, prompter: prompter, policy: policy}, nil
}

// Run executes action directly on a clean tree. On a dirty tree it stashes (when the policy and operator allow),
// runs action, and always attempts to restore the stash; action and restore failures are both reported.
func (guard *WorkingTreeGuard) Run(executionContext context.Context, repositoryPath string, action func(context.Context) error) error {
	clean, cleanError := guard.operations.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError != nil {
		return fmt.Errorf(workingTreeCheckErrorTemplateConstant, cleanError)
	}
	if clean {
		return action(executionContext)
	}

	guard.logger.Info(guardDirtyLogMessageConstant, zap.String(guardLogFieldRepositoryPathConstant, repositoryPath), zap.String(guardLogFieldStashPolicyConstant, string(guard.policy)))

	stashAllowed, decisionError := guard.stashAllowed()
	if decisionError != nil {
		return decisionError
	}
	if !stashAllowed {
		return ErrDirtyWorkingTree
	}

	if stashError := guard.operations.StashPush(executionContext, repositoryPath, stashEntryMessageConstant); stashError != nil {
		return fmt.Errorf(stashPushErrorTemplateConstant, stashError)
	}
	guard.logger.Info(guardStashedLogMessageConstant, zap.String(guardLogFieldRepositoryPathConstant, repositoryPath))

	actionError := action(executionContext)

	var restoreError error
	if popError := guard.operations.StashPop(context.WithoutCancel(executionContext), repositoryPath); popError != nil {
		restoreError = fmt.Errorf(stashRestoreErrorTemplateConstant, ErrStashRestoreFailed, popError)
		guard.logger.Error(guardRestoreFailedLogMessageConstant, zap.String(guardLogFieldRepositoryPathConstant, repositoryPath), zap.Error(popError))
	} else {
		guard.logger.Info(guardRestoredLogMessageConstant, zap.String(guardLogFieldRepositoryPathConstant, repositoryPath))
	}

	return multierr.Combine(actionError, restoreError)
}

func (guard *WorkingTreeGuard) stashAllowed() (bool, error) {
	switch guard.policy {
	case StashPolicyAlways:
		return true, nil
	case StashPolicyNever:
		return false, nil
	default:
		return guard.prompter.Confirm(stashConfirmationPromptConstant)
	}
}
