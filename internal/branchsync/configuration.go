package branchsync

import (
	"fmt"
	"strings"
)

const (
	defaultRemoteNameConstant     = "origin"
	defaultRepositoryPathConstant = "."
)

// InspectorKind selects how read-only repository queries are answered.
type InspectorKind string

// Supported inspectors.
const (
	InspectorNative InspectorKind = InspectorKind("native")
	InspectorCLI    InspectorKind = InspectorKind("cli")
)

// ParseInspectorKind converts a configuration value into an InspectorKind. Empty input selects InspectorNative.
func ParseInspectorKind(value string) (InspectorKind, error) {
	switch InspectorKind(strings.ToLower(strings.TrimSpace(value))) {
	case "", InspectorNative:
		return InspectorNative, nil
	case InspectorCLI:
		return InspectorCLI, nil
	default:
		return "", fmt.Errorf(invalidValueErrorTemplateConstant, ErrInvalidInspector, value)
	}
}

// CommandConfiguration captures configuration values for the sync command.
type CommandConfiguration struct {
	RemoteName        string `mapstructure:"remote"`
	PrimaryBranch     string `mapstructure:"primary_branch"`
	Inspector         string `mapstructure:"inspector"`
	StashPolicy       string `mapstructure:"stash"`
	PullRequestPrompt bool   `mapstructure:"pull_request_prompt"`
	RepositoryPath    string `mapstructure:"repository"`
}

// DefaultCommandConfiguration provides baseline configuration values for sync.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:        defaultRemoteNameConstant,
		PrimaryBranch:     "",
		Inspector:         string(InspectorNative),
		StashPolicy:       string(StashPolicyPrompt),
		PullRequestPrompt: true,
		RepositoryPath:    defaultRepositoryPathConstant,
	}
}

// Sanitize trims configuration values and restores defaults for blank required values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.PrimaryBranch = strings.TrimSpace(configuration.PrimaryBranch)
	sanitized.Inspector = strings.ToLower(strings.TrimSpace(configuration.Inspector))
	sanitized.StashPolicy = strings.ToLower(strings.TrimSpace(configuration.StashPolicy))
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaultRepositoryPathConstant
	}

	return sanitized
}
