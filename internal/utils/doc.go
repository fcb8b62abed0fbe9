// Package utils holds the ambient plumbing shared by gitsync commands.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file, and GITSYNC_* environment variables through Viper. LoggerFactory builds
// zap loggers for the requested level, encoding, and timestamp format.
package utils
