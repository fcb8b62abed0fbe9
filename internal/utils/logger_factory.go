package utils

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant              = "debug"
	logLevelInfoStringConstant               = "info"
	logLevelWarnStringConstant               = "warn"
	logLevelErrorStringConstant              = "error"
	logFormatStructuredStringConstant        = "structured"
	logFormatConsoleStringConstant           = "console"
	timestampNoneStringConstant              = "none"
	timestampISO8601StringConstant           = "iso8601"
	timestampRFC3339StringConstant           = "rfc3339"
	timestampEpochStringConstant             = "epoch"
	jsonZapEncodingStringConstant            = "json"
	consoleZapEncodingStringConstant         = "console"
	unsupportedLogLevelTemplateConstant      = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant     = "unsupported log format: %s"
	unsupportedTimestampTemplateConstant     = "unsupported timestamp format: %s"
	conflictingVerbosityFlagsMessageConstant = "quiet and verbose cannot be combined"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// TimestampFormat enumerates how log entries carry their time.
type TimestampFormat string

// Exported timestamp format constants.
const (
	TimestampNone    TimestampFormat = TimestampFormat(timestampNoneStringConstant)
	TimestampISO8601 TimestampFormat = TimestampFormat(timestampISO8601StringConstant)
	TimestampRFC3339 TimestampFormat = TimestampFormat(timestampRFC3339StringConstant)
	TimestampEpoch   TimestampFormat = TimestampFormat(timestampEpochStringConstant)
)

// ErrConflictingVerbosityFlags indicates quiet and verbose were both requested.
var ErrConflictingVerbosityFlags = errors.New(conflictingVerbosityFlagsMessageConstant)

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

var timestampEncoderMapping = map[TimestampFormat]zapcore.TimeEncoder{
	TimestampISO8601: zapcore.ISO8601TimeEncoder,
	TimestampRFC3339: zapcore.RFC3339TimeEncoder,
	TimestampEpoch:   zapcore.EpochTimeEncoder,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested level, format, and timestamp encoding.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat, requestedTimestampFormat TimestampFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(strings.ToLower(string(requestedLogLevel)))]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[LogFormat(strings.ToLower(string(requestedLogFormat)))]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.Sampling = nil

	normalizedTimestampFormat := TimestampFormat(strings.ToLower(string(requestedTimestampFormat)))
	switch normalizedTimestampFormat {
	case TimestampNone, "":
		configuration.EncoderConfig.TimeKey = zapcore.OmitKey
	default:
		timeEncoder, timestampExists := timestampEncoderMapping[normalizedTimestampFormat]
		if !timestampExists {
			return nil, fmt.Errorf(unsupportedTimestampTemplateConstant, requestedTimestampFormat)
		}
		configuration.EncoderConfig.EncodeTime = timeEncoder
	}

	if encoding == consoleZapEncodingStringConstant {
		configuration.EncoderConfig.CallerKey = zapcore.OmitKey
		configuration.EncoderConfig.StacktraceKey = zapcore.OmitKey
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// ResolveLogLevel applies the quiet and verbose overrides to the configured level.
func ResolveLogLevel(configuredLogLevel LogLevel, quiet bool, verbose bool) (LogLevel, error) {
	switch {
	case quiet && verbose:
		return "", ErrConflictingVerbosityFlags
	case quiet:
		return LogLevelError, nil
	case verbose:
		return LogLevelDebug, nil
	default:
		return configuredLogLevel, nil
	}
}
