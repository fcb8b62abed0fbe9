package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitsync/internal/execshell"
	"github.com/temirov/gitsync/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant = "/tmp/project"
	testExecutionFailureReasonConstant  = "execution failed"
	testStandardErrorMessageConstant    = "fatal: remote error"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	pushCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"push", "origin", "feature"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	statusCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"status", "--porcelain"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	ancestryCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"merge-base", "--is-ancestor", "aaa", "bbb"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "mutation_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(pushCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Pushing feature to origin from /tmp/project",
		},
		{
			name: "mutation_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Pushed feature to origin from /tmp/project",
		},
		{
			name: "mutation_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Failed to push feature to origin from /tmp/project (exit code 1: fatal: remote error)",
		},
		{
			name: "query_started_at_debug",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(statusCommand)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Reviewing working tree status in /tmp/project",
		},
		{
			name: "negative_ancestry_answer_at_debug",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(ancestryCommand, execshell.ExecutionResult{ExitCode: 1})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Ancestry check for aaa and bbb in /tmp/project returned exit code 1",
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(pushCommand, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "Unable to push feature to origin from /tmp/project: execution failed",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
