package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitsync/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
	testCaseUnsupportedTimestampConstant           = "unsupported_timestamp"
	testCaseTimestampOmittedConstant               = "timestamp_omitted"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		requestedTimestamp  utils.TimestampFormat
		expectError         bool
		expectTimestamp     bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			requestedTimestamp:  utils.TimestampISO8601,
			expectError:         false,
			expectStructuredLog: true,
			expectTimestamp:     true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatStructured,
			requestedTimestamp:  utils.TimestampISO8601,
			expectError:         false,
			expectStructuredLog: true,
			expectTimestamp:     true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatConsole,
			requestedTimestamp:  utils.TimestampRFC3339,
			expectError:         false,
			expectStructuredLog: false,
		},
		{
			name:                testCaseTimestampOmittedConstant,
			requestedLogLevel:   utils.LogLevelWarn,
			requestedLogFormat:  utils.LogFormatStructured,
			requestedTimestamp:  utils.TimestampNone,
			expectError:         false,
			expectStructuredLog: true,
			expectTimestamp:     false,
		},
		{
			name:               testCaseUnsupportedTimestampConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormatStructured,
			requestedTimestamp: utils.TimestampFormat("sundial"),
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()

			pipeReader, pipeWriter, pipeError := os.Pipe()
			require.NoError(testInstance, pipeError)

			originalStderr := os.Stderr
			os.Stderr = pipeWriter

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat, testCase.requestedTimestamp)

			os.Stderr = originalStderr

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)

				require.NoError(testInstance, pipeWriter.Close())
				require.NoError(testInstance, pipeReader.Close())
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Warn(testLogMessageConstant)
			syncError := logger.Sync()
			if syncError != nil {
				require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
			}

			require.NoError(testInstance, pipeWriter.Close())

			capturedOutput, readError := io.ReadAll(pipeReader)
			require.NoError(testInstance, readError)
			require.NoError(testInstance, pipeReader.Close())

			trimmedOutput := bytes.TrimSpace(capturedOutput)
			require.NotEmpty(testInstance, trimmedOutput)
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)

			isJSONLog := json.Valid(trimmedOutput)
			if testCase.expectStructuredLog {
				require.True(testInstance, isJSONLog)
				decodedEntry := map[string]any{}
				require.NoError(testInstance, json.Unmarshal(trimmedOutput, &decodedEntry))
				_, hasTimestamp := decodedEntry["ts"]
				require.Equal(testInstance, testCase.expectTimestamp, hasTimestamp)
			} else {
				require.False(testInstance, isJSONLog)
			}
		})
	}
}

func TestResolveLogLevel(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configured    utils.LogLevel
		quiet         bool
		verbose       bool
		expectedLevel utils.LogLevel
		expectedError error
	}{
		{name: "configured", configured: utils.LogLevelWarn, expectedLevel: utils.LogLevelWarn},
		{name: "quiet", configured: utils.LogLevelInfo, quiet: true, expectedLevel: utils.LogLevelError},
		{name: "verbose", configured: utils.LogLevelInfo, verbose: true, expectedLevel: utils.LogLevelDebug},
		{name: "conflict", configured: utils.LogLevelInfo, quiet: true, verbose: true, expectedError: utils.ErrConflictingVerbosityFlags},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedLevel, resolveError := utils.ResolveLogLevel(testCase.configured, testCase.quiet, testCase.verbose)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedLevel, resolvedLevel)
		})
	}
}
