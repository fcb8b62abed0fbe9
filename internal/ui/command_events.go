package ui

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/gitsync/internal/execshell"
)

const (
	gitMergeBaseSubcommandConstant   = "merge-base"
	gitIsAncestorFlagConstant        = "--is-ancestor"
	ancestryNegativeExitCodeConstant = 1
)

var readOnlyGitSubcommands = map[string]struct{}{
	"for-each-ref": {},
	"symbolic-ref": {},
	"merge-base":   {},
	"status":       {},
	"ls-remote":    {},
	"remote":       {},
	"rev-parse":    {},
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
// Read-only git queries are reported at debug level so that only repository mutations reach the console by default.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver by logging command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Log(eventLogger.progressLevel(command), eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver by logging command completion notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Log(eventLogger.progressLevel(command), eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	if isNegativeAncestryAnswer(command, result) {
		eventLogger.logger.Debug(eventLogger.formatter.BuildFailureMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver by logging unexpected execution failures.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

func (eventLogger *ConsoleCommandEventLogger) progressLevel(command execshell.ShellCommand) zapcore.Level {
	if command.Name != execshell.CommandGit || len(command.Details.Arguments) == 0 {
		return zapcore.InfoLevel
	}
	if _, readOnly := readOnlyGitSubcommands[strings.TrimSpace(command.Details.Arguments[0])]; readOnly {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// isNegativeAncestryAnswer reports merge-base --is-ancestor exiting with 1, which answers "no" rather than failing.
func isNegativeAncestryAnswer(command execshell.ShellCommand, result execshell.ExecutionResult) bool {
	if command.Name != execshell.CommandGit || result.ExitCode != ancestryNegativeExitCodeConstant {
		return false
	}
	arguments := command.Details.Arguments
	if len(arguments) == 0 || arguments[0] != gitMergeBaseSubcommandConstant {
		return false
	}
	for _, argument := range arguments[1:] {
		if argument == gitIsAncestorFlagConstant {
			return true
		}
	}
	return false
}
