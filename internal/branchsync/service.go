package branchsync

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/gitrepo"
	"github.com/temirov/gitsync/internal/prompt"
)

const (
	fetchErrorTemplateConstant             = "failed to fetch %s: %w"
	primaryResolutionErrorTemplateConstant = "failed to resolve primary branch: %w"
	snapshotErrorTemplateConstant          = "failed to read branch references: %w"
	currentBranchErrorTemplateConstant     = "failed to identify current branch: %w"
	syncStartedLogMessageConstant          = "synchronizing branches"
	syncCompletedLogMessageConstant        = "branch synchronization complete"
	dryRunDirtyTreeLogMessageConstant      = "working tree has uncommitted changes; a real run would need to stash them"
	serviceLogFieldRepositoryConstant      = "repository_path"
	serviceLogFieldRemoteConstant          = "remote"
	serviceLogFieldPrimaryConstant         = "primary_branch"
	serviceLogFieldBranchCountConstant     = "branch_count"
	serviceLogFieldDryRunConstant          = "dry_run"
)

// RepositoryManager is the complete set of repository operations a sync needs.
type RepositoryManager interface {
	RepositoryOperations
	WorkingTreeOperations
	Fetch(executionContext context.Context, repositoryPath string, remoteName string) error
	Snapshot(executionContext context.Context, repositoryPath string) (gitrepo.ReferenceSnapshot, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetDefaultBranch(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// Dependencies enumerates external collaborators required for sync operations.
type Dependencies struct {
	Logger            *zap.Logger
	RepositoryManager RepositoryManager
	Prompter          prompt.Prompter
	Output            io.Writer
}

// Options configures a single sync run.
type Options struct {
	RepositoryPath   string
	RemoteName       string
	PrimaryBranch    string
	DryRun           bool
	StashPolicy      StashPolicy
	OfferPullRequest bool
}

// Service coordinates fetching, snapshotting, and reconciliation for one repository.
type Service struct {
	logger            *zap.Logger
	repositoryManager RepositoryManager
	prompter          prompt.Prompter
	output            io.Writer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	return &Service{logger: logger, repositoryManager: dependencies.RepositoryManager, prompter: dependencies.Prompter, output: output}, nil
}

// Sync fetches the remote once, snapshots references, and reconciles every local branch inside the working-tree guard.
// A dry run classifies and reports without prompting, stashing, or mutating the repository.
func (service *Service) Sync(executionContext context.Context, options Options) (Report, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Report{}, ErrRepositoryPathRequired
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		return Report{}, ErrRemoteNameRequired
	}

	if fetchError := service.repositoryManager.Fetch(executionContext, repositoryPath, remoteName); fetchError != nil {
		return Report{}, fmt.Errorf(fetchErrorTemplateConstant, remoteName, fetchError)
	}

	primaryBranch, primaryError := service.resolvePrimaryBranch(executionContext, repositoryPath, remoteName, options.PrimaryBranch)
	if primaryError != nil {
		return Report{}, primaryError
	}

	snapshot, snapshotError := service.repositoryManager.Snapshot(executionContext, repositoryPath)
	if snapshotError != nil {
		return Report{}, fmt.Errorf(snapshotErrorTemplateConstant, snapshotError)
	}
	currentBranch, currentBranchError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if currentBranchError != nil {
		return Report{}, fmt.Errorf(currentBranchErrorTemplateConstant, currentBranchError)
	}

	session := NewSession(repositoryPath, remoteName, primaryBranch, snapshot, currentBranch)
	service.logger.Info(
		syncStartedLogMessageConstant,
		zap.String(serviceLogFieldRepositoryConstant, repositoryPath),
		zap.String(serviceLogFieldRemoteConstant, remoteName),
		zap.String(serviceLogFieldPrimaryConstant, primaryBranch),
		zap.Int(serviceLogFieldBranchCountConstant, len(session.Branches())),
		zap.Bool(serviceLogFieldDryRunConstant, options.DryRun),
	)

	engine, engineError := NewEngine(service.logger, service.repositoryManager, service.prompter, service.output, EngineOptions{
		DryRun:           options.DryRun,
		OfferPullRequest: options.OfferPullRequest,
	})
	if engineError != nil {
		return Report{}, engineError
	}

	report, reconcileError := service.reconcile(executionContext, session, engine, options)
	if reconcileError != nil {
		return report, reconcileError
	}

	service.logger.Info(syncCompletedLogMessageConstant, zap.String(serviceLogFieldRepositoryConstant, repositoryPath), zap.Int(serviceLogFieldBranchCountConstant, len(report.Outcomes)))
	return report, nil
}

func (service *Service) reconcile(executionContext context.Context, session *Session, engine *Engine, options Options) (Report, error) {
	if options.DryRun {
		clean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, session.RepositoryPath)
		if cleanError != nil {
			return Report{}, fmt.Errorf(workingTreeCheckErrorTemplateConstant, cleanError)
		}
		if !clean {
			service.logger.Warn(dryRunDirtyTreeLogMessageConstant, zap.String(serviceLogFieldRepositoryConstant, session.RepositoryPath))
		}
		return engine.Reconcile(executionContext, session)
	}

	guard, guardError := NewWorkingTreeGuard(service.logger, service.repositoryManager, service.prompter, options.StashPolicy)
	if guardError != nil {
		return Report{}, guardError
	}

	var report Report
	guardedError := guard.Run(executionContext, session.RepositoryPath, func(guardedContext context.Context) error {
		var reconcileError error
		report, reconcileError = engine.Reconcile(guardedContext, session)
		return reconcileError
	})
	return report, guardedError
}

func (service *Service) resolvePrimaryBranch(executionContext context.Context, repositoryPath string, remoteName string, override string) (string, error) {
	trimmedOverride := strings.TrimSpace(override)
	if len(trimmedOverride) > 0 {
		return trimmedOverride, nil
	}
	defaultBranch, resolutionError := service.repositoryManager.GetDefaultBranch(executionContext, repositoryPath, remoteName)
	if resolutionError != nil {
		return "", fmt.Errorf(primaryResolutionErrorTemplateConstant, resolutionError)
	}
	return defaultBranch, nil
}
