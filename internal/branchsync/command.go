package branchsync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/gitrepo"
	"github.com/temirov/gitsync/internal/prompt"
	"github.com/temirov/gitsync/internal/ui"
	"github.com/temirov/gitsync/internal/utils"
	flagutils "github.com/temirov/gitsync/internal/utils/flags"
	pathutils "github.com/temirov/gitsync/internal/utils/path"
)

const (
	commandUseConstant                    = "sync"
	commandShortDescriptionConstant       = "Reconcile local branches with their remote counterparts"
	commandLongDescriptionConstant        = "sync fetches the remote, classifies every local branch against its remote-tracking counterpart, and pushes, fast-forwards, deletes, or reports each branch. Diverged branches are reported and never merged."
	primaryFlagUsageConstant              = "Primary branch name (defaults to the branch advertised by the remote HEAD)"
	repositoryFlagUsageConstant           = "Path to the repository to synchronize"
	remoteFlagUsageConstant               = "Remote to synchronize against"
	stashFlagNameConstant                 = "stash"
	stashFlagDescriptionConstant          = "how to handle uncommitted changes"
	inspectorFlagNameConstant             = "inspector"
	inspectorFlagDescriptionConstant      = "how references and ancestry are read"
	pullRequestFlagNameConstant           = "pull-request-prompt"
	pullRequestFlagDescriptionConstant    = "Offer a pull request link after publishing a branch"
	nonInteractiveFlagUsageConstant       = "Decline confirmations and take default answers without prompting"
	conflictingAnswerFlagsMessageConstant = "use at most one of --yes or --non-interactive"
	reportLineTemplateConstant            = "%s\n"
)

// ErrConflictingAnswerFlags indicates --yes and --non-interactive were combined.
var ErrConflictingAnswerFlags = errors.New(conflictingAnswerFlagsMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory builds the prompter used for a run.
type PrompterFactory func(options prompt.SelectionOptions) prompt.Prompter

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	RepositoryManager            RepositoryManager
	PrompterFactory              PrompterFactory
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flagutils.BindBranchFlags(command, flagutils.BranchFlagValues{Name: configuration.PrimaryBranch}, flagutils.BranchFlagDefinition{
		Name:    flagutils.PrimaryBranchFlagName,
		Usage:   primaryFlagUsageConstant,
		Enabled: true,
	})
	flagutils.EnsureRemoteFlag(command, configuration.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(flagutils.RepositoryFlagName, configuration.RepositoryPath, repositoryFlagUsageConstant)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun:         flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
		AssumeYes:      flagutils.ExecutionFlagDefinition{Name: flagutils.AssumeYesFlagName, Usage: flagutils.AssumeYesFlagUsage, Shorthand: flagutils.AssumeYesFlagShorthand, Enabled: true},
		NonInteractive: flagutils.ExecutionFlagDefinition{Name: flagutils.NonInteractiveFlagName, Usage: nonInteractiveFlagUsageConstant, Enabled: true},
	})
	command.Flags().String(stashFlagNameConstant, configuration.StashPolicy, flagutils.FormatChoiceUsage(
		configuration.StashPolicy,
		[]string{string(StashPolicyPrompt), string(StashPolicyAlways), string(StashPolicyNever)},
		stashFlagDescriptionConstant,
	))
	command.Flags().String(inspectorFlagNameConstant, configuration.Inspector, flagutils.FormatChoiceUsage(
		configuration.Inspector,
		[]string{string(InspectorNative), string(InspectorCLI)},
		inspectorFlagDescriptionConstant,
	))
	flagutils.AddToggleFlag(command.Flags(), nil, pullRequestFlagNameConstant, "", configuration.PullRequestPrompt, pullRequestFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	executionFlags, executionFlagsError := flagutils.ReadExecutionFlags(command)
	if executionFlagsError != nil {
		return executionFlagsError
	}
	if executionFlags.AssumeYes && executionFlags.NonInteractive {
		return ErrConflictingAnswerFlags
	}

	primaryBranch := stringFlagOrDefault(command, flagutils.PrimaryBranchFlagName, configuration.PrimaryBranch)
	remoteName := stringFlagOrDefault(command, flagutils.RemoteFlagName, configuration.RemoteName)
	repositoryPath := stringFlagOrDefault(command, flagutils.RepositoryFlagName, configuration.RepositoryPath)
	stashValue := stringFlagOrDefault(command, stashFlagNameConstant, configuration.StashPolicy)
	inspectorValue := stringFlagOrDefault(command, inspectorFlagNameConstant, configuration.Inspector)
	offerPullRequest := configuration.PullRequestPrompt
	if command.Flags().Changed(pullRequestFlagNameConstant) {
		pullRequestFlagValue, pullRequestFlagError := command.Flags().GetBool(pullRequestFlagNameConstant)
		if pullRequestFlagError != nil {
			return pullRequestFlagError
		}
		offerPullRequest = pullRequestFlagValue
	}

	stashPolicy, stashPolicyError := ParseStashPolicy(stashValue)
	if stashPolicyError != nil {
		return stashPolicyError
	}
	inspectorKind, inspectorError := ParseInspectorKind(inspectorValue)
	if inspectorError != nil {
		return inspectorError
	}
	expandedRepositoryPath, expansionError := pathutils.NewRepositoryPathResolver().Resolve(repositoryPath)
	if expansionError != nil {
		return expansionError
	}

	logger := builder.resolveLogger()
	repositoryManager, managerError := builder.resolveRepositoryManager(logger, inspectorKind, builder.humanReadableLogging(command))
	if managerError != nil {
		return managerError
	}

	prompterFactory := builder.PrompterFactory
	if prompterFactory == nil {
		prompterFactory = prompt.Select
	}
	prompter := prompterFactory(prompt.SelectionOptions{
		AssumeYes:      executionFlags.AssumeYes,
		NonInteractive: executionFlags.NonInteractive,
		Input:          command.InOrStdin(),
		Output:         command.ErrOrStderr(),
	})

	service, serviceError := NewService(Dependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		Prompter:          prompter,
		Output:            command.OutOrStdout(),
	})
	if serviceError != nil {
		return serviceError
	}

	report, syncError := service.Sync(command.Context(), Options{
		RepositoryPath:   expandedRepositoryPath,
		RemoteName:       remoteName,
		PrimaryBranch:    primaryBranch,
		DryRun:           executionFlags.DryRun,
		StashPolicy:      stashPolicy,
		OfferPullRequest: offerPullRequest,
	})
	for _, outcome := range report.Outcomes {
		fmt.Fprintf(command.OutOrStdout(), reportLineTemplateConstant, outcome.Summary())
	}
	return syncError
}

func (builder *CommandBuilder) resolveRepositoryManager(logger *zap.Logger, inspectorKind InspectorKind, humanReadable bool) (RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		observers := []execshell.CommandEventObserver{}
		if humanReadable {
			observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	var inspector gitrepo.RepositoryInspector
	if inspectorKind == InspectorNative {
		inspector = gitrepo.NewNativeInspector(logger)
	}
	return gitrepo.NewRepositoryManager(gitExecutor, inspector)
}

func (builder *CommandBuilder) humanReadableLogging(command *cobra.Command) bool {
	if builder.HumanReadableLoggingProvider != nil {
		return builder.HumanReadableLoggingProvider()
	}
	logFormat, available := utils.NewCommandContextAccessor().LogFormat(command.Context())
	return available && logFormat == utils.LogFormatConsole
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func stringFlagOrDefault(command *cobra.Command, flagName string, defaultValue string) string {
	if !command.Flags().Changed(flagName) {
		return defaultValue
	}
	flagValue, flagError := command.Flags().GetString(flagName)
	if flagError != nil {
		return defaultValue
	}
	trimmedValue := strings.TrimSpace(flagValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
