package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = "%s (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	allRemotesLabelConstant                 = "all remotes"
)

const (
	gitFetchSubcommandNameConstant       = "fetch"
	gitForEachRefSubcommandNameConstant  = "for-each-ref"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitMergeBaseSubcommandNameConstant   = "merge-base"
	gitStatusSubcommandNameConstant      = "status"
	gitStashSubcommandNameConstant       = "stash"
	gitPushSubcommandNameConstant        = "push"
	gitBranchSubcommandNameConstant      = "branch"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitMergeSubcommandNameConstant       = "merge"
	gitResetSubcommandNameConstant       = "reset"
	gitLSRemoteSubcommandNameConstant    = "ls-remote"
	gitRemoteSubcommandNameConstant      = "remote"
	gitStashPushActionConstant           = "push"
	gitStashPopActionConstant            = "pop"
	gitBranchForceFlagConstant           = "--force"
	gitBranchForceShortFlagConstant      = "-f"
	gitBranchForceDeleteFlagConstant     = "-D"
	gitSetUpstreamFlagConstant           = "--set-upstream"
)

// messageTemplates holds the four lifecycle sentences for one kind of git operation.
// Start, Success and ExecutionFailure receive the subject first; Failure receives the
// subject, the exit code, and the standard error suffix.
type messageTemplates struct {
	Start            string
	Success          string
	Failure          string
	ExecutionFailure string
}

var (
	fetchMessageTemplates            = messageTemplates{
		Start:            "Fetching %s",
		Success:          "Fetched %s",
		Failure:          "Failed to fetch %s (exit code %d%s)",
		ExecutionFailure: "Unable to fetch %s: %s",
	}
	referenceListingMessageTemplates = messageTemplates{
		Start:            "Listing branches %s",
		Success:          "Listed branches %s",
		Failure:          "Failed to list branches %s (exit code %d%s)",
		ExecutionFailure: "Unable to list branches %s: %s",
	}
	currentBranchMessageTemplates    = messageTemplates{
		Start:            "Identifying current branch %s",
		Success:          "Identified current branch %s",
		Failure:          "Could not identify current branch %s (exit code %d%s)",
		ExecutionFailure: "Unable to identify current branch %s: %s",
	}
	ancestryMessageTemplates         = messageTemplates{
		Start:            "Checking ancestry of %s",
		Success:          "Confirmed ancestry of %s",
		Failure:          "Ancestry check for %s returned exit code %d%s",
		ExecutionFailure: "Unable to check ancestry of %s: %s",
	}
	statusMessageTemplates           = messageTemplates{
		Start:            "Reviewing working tree status %s",
		Success:          "Collected working tree status %s",
		Failure:          "Failed to review working tree status %s (exit code %d%s)",
		ExecutionFailure: "Unable to review working tree status %s: %s",
	}
	stashPushMessageTemplates        = messageTemplates{
		Start:            "Stashing local changes %s",
		Success:          "Stashed local changes %s",
		Failure:          "Failed to stash local changes %s (exit code %d%s)",
		ExecutionFailure: "Unable to stash local changes %s: %s",
	}
	stashPopMessageTemplates         = messageTemplates{
		Start:            "Restoring stashed changes %s",
		Success:          "Restored stashed changes %s",
		Failure:          "Failed to restore stashed changes %s (exit code %d%s)",
		ExecutionFailure: "Unable to restore stashed changes %s: %s",
	}
	pushMessageTemplates             = messageTemplates{
		Start:            "Pushing %s",
		Success:          "Pushed %s",
		Failure:          "Failed to push %s (exit code %d%s)",
		ExecutionFailure: "Unable to push %s: %s",
	}
	branchMoveMessageTemplates       = messageTemplates{
		Start:            "Moving branch %s",
		Success:          "Moved branch %s",
		Failure:          "Failed to move branch %s (exit code %d%s)",
		ExecutionFailure: "Unable to move branch %s: %s",
	}
	branchDeletionMessageTemplates   = messageTemplates{
		Start:            "Force removing local branch %s",
		Success:          "Removed local branch %s",
		Failure:          "Failed to remove local branch %s (exit code %d%s)",
		ExecutionFailure: "Unable to remove local branch %s: %s",
	}
	checkoutMessageTemplates         = messageTemplates{
		Start:            "Switching to branch %s",
		Success:          "Switched to branch %s",
		Failure:          "Failed to switch to branch %s (exit code %d%s)",
		ExecutionFailure: "Unable to switch to branch %s: %s",
	}
	fastForwardMessageTemplates      = messageTemplates{
		Start:            "Fast-forwarding checkout to %s",
		Success:          "Fast-forwarded checkout to %s",
		Failure:          "Failed to fast-forward checkout to %s (exit code %d%s)",
		ExecutionFailure: "Unable to fast-forward checkout to %s: %s",
	}
	resetMessageTemplates            = messageTemplates{
		Start:            "Resetting checkout to %s",
		Success:          "Reset checkout to %s",
		Failure:          "Failed to reset checkout to %s (exit code %d%s)",
		ExecutionFailure: "Unable to reset checkout to %s: %s",
	}
	defaultBranchMessageTemplates    = messageTemplates{
		Start:            "Checking default branch on %s",
		Success:          "Retrieved default branch information for %s",
		Failure:          "Failed to check default branch on %s (exit code %d%s)",
		ExecutionFailure: "Unable to check default branch on %s: %s",
	}
	remoteLookupMessageTemplates     = messageTemplates{
		Start:            "Reading remote URL %s",
		Success:          "Read remote URL %s",
		Failure:          "Failed to read remote URL %s (exit code %d%s)",
		ExecutionFailure: "Unable to read remote URL %s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	templates, subject, described := formatter.describeGitCommand(command)
	if !described {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.Start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.Success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.Failure, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.ExecutionFailure, subject, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand) (messageTemplates, string, bool) {
	arguments := command.Details.Arguments
	subcommand := strings.TrimSpace(arguments[0])
	positional := positionalArguments(arguments[1:])
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch subcommand {
	case gitFetchSubcommandNameConstant:
		if len(positional) == 0 {
			return fetchMessageTemplates, fmt.Sprintf("from %s in %s", allRemotesLabelConstant, workingDirectory), true
		}
		return fetchMessageTemplates, fmt.Sprintf("from %s in %s", positional[0], workingDirectory), true
	case gitForEachRefSubcommandNameConstant:
		return referenceListingMessageTemplates, fmt.Sprintf("in %s", workingDirectory), true
	case gitSymbolicRefSubcommandNameConstant:
		return currentBranchMessageTemplates, fmt.Sprintf("in %s", workingDirectory), true
	case gitMergeBaseSubcommandNameConstant:
		if len(positional) < 2 {
			return messageTemplates{}, emptyStringConstant, false
		}
		return ancestryMessageTemplates, fmt.Sprintf("%s and %s in %s", positional[0], positional[1], workingDirectory), true
	case gitStatusSubcommandNameConstant:
		return statusMessageTemplates, fmt.Sprintf("in %s", workingDirectory), true
	case gitStashSubcommandNameConstant:
		if len(positional) > 0 && positional[0] == gitStashPopActionConstant {
			return stashPopMessageTemplates, fmt.Sprintf("in %s", workingDirectory), true
		}
		if len(positional) > 0 && positional[0] != gitStashPushActionConstant {
			return messageTemplates{}, emptyStringConstant, false
		}
		return stashPushMessageTemplates, fmt.Sprintf("in %s", workingDirectory), true
	case gitPushSubcommandNameConstant:
		subject := fmt.Sprintf("%s to %s from %s", secondOrUnknown(positional), firstOrUnknown(positional), workingDirectory)
		if containsArgument(arguments, gitSetUpstreamFlagConstant) {
			subject = fmt.Sprintf("%s to %s with upstream tracking from %s", secondOrUnknown(positional), firstOrUnknown(positional), workingDirectory)
		}
		return pushMessageTemplates, subject, true
	case gitBranchSubcommandNameConstant:
		if containsArgument(arguments, gitBranchForceDeleteFlagConstant) {
			return branchDeletionMessageTemplates, fmt.Sprintf("%s in %s", firstOrUnknown(positional), workingDirectory), true
		}
		if containsArgument(arguments, gitBranchForceFlagConstant) || containsArgument(arguments, gitBranchForceShortFlagConstant) {
			return branchMoveMessageTemplates, fmt.Sprintf("%s to %s in %s", firstOrUnknown(positional), secondOrUnknown(positional), workingDirectory), true
		}
		return messageTemplates{}, emptyStringConstant, false
	case gitCheckoutSubcommandNameConstant:
		return checkoutMessageTemplates, fmt.Sprintf("%s in %s", firstOrUnknown(positional), workingDirectory), true
	case gitMergeSubcommandNameConstant:
		return fastForwardMessageTemplates, fmt.Sprintf("%s in %s", firstOrUnknown(positional), workingDirectory), true
	case gitResetSubcommandNameConstant:
		return resetMessageTemplates, fmt.Sprintf("%s in %s", firstOrUnknown(positional), workingDirectory), true
	case gitLSRemoteSubcommandNameConstant:
		return defaultBranchMessageTemplates, fmt.Sprintf("%s from %s", firstOrUnknown(positional), workingDirectory), true
	case gitRemoteSubcommandNameConstant:
		if len(positional) < 2 {
			return messageTemplates{}, emptyStringConstant, false
		}
		return remoteLookupMessageTemplates, fmt.Sprintf("of %s in %s", positional[1], workingDirectory), true
	default:
		return messageTemplates{}, emptyStringConstant, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := command.CommandLine()
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) > 0 {
		label = fmt.Sprintf(workingDirectorySuffixTemplateConstant, label, trimmedWorkingDirectory)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}

func firstOrUnknown(values []string) string {
	if len(values) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return values[0]
}

func secondOrUnknown(values []string) string {
	if len(values) < 2 {
		return fallbackUnknownValueLabelConstant
	}
	return values[1]
}
