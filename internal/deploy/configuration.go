package deploy

import (
	"strings"
	"time"

	"github.com/temirov/docpages/internal/docbuild"
)

const (
	defaultRemoteNameConstant     = "origin"
	defaultBranchNameConstant     = "gh-pages"
	defaultWorktreePathConstant   = "doc/_build/html"
	defaultCommitMessageConstant  = "Update documentation"
	defaultCommandTimeoutConstant = 5 * time.Minute
)

const (
	remoteConfigurationKeySuffixConstant         = ".remote"
	branchConfigurationKeySuffixConstant         = ".branch"
	worktreeConfigurationKeySuffixConstant       = ".worktree"
	messageConfigurationKeySuffixConstant        = ".message"
	buildTargetsConfigurationKeySuffixConstant   = ".build_targets"
	commandTimeoutConfigurationKeySuffixConstant = ".command_timeout"
)

// DefaultConfigurationValues exposes deployment defaults for configuration loading.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + remoteConfigurationKeySuffixConstant:         defaults.RemoteName,
		configurationKeyPrefix + branchConfigurationKeySuffixConstant:         defaults.BranchName,
		configurationKeyPrefix + worktreeConfigurationKeySuffixConstant:       defaults.WorktreePath,
		configurationKeyPrefix + messageConfigurationKeySuffixConstant:        defaults.CommitMessage,
		configurationKeyPrefix + buildTargetsConfigurationKeySuffixConstant:   defaults.BuildTargets,
		configurationKeyPrefix + commandTimeoutConfigurationKeySuffixConstant: defaults.CommandTimeout.String(),
	}
}

// CommandConfiguration captures persisted configuration for documentation deployment.
type CommandConfiguration struct {
	RemoteName     string        `mapstructure:"remote"`
	BranchName     string        `mapstructure:"branch"`
	WorktreePath   string        `mapstructure:"worktree"`
	CommitMessage  string        `mapstructure:"message"`
	BuildTargets   []string      `mapstructure:"build_targets"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// DefaultCommandConfiguration returns baseline configuration values for documentation deployment.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:     defaultRemoteNameConstant,
		BranchName:     defaultBranchNameConstant,
		WorktreePath:   defaultWorktreePathConstant,
		CommitMessage:  defaultCommitMessageConstant,
		BuildTargets:   docbuild.DefaultTargets(),
		CommandTimeout: defaultCommandTimeoutConstant,
	}
}

// Sanitize trims configured values and restores defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()

	sanitized := configuration
	sanitized.RemoteName = sanitizedValueOrDefault(configuration.RemoteName, defaults.RemoteName)
	sanitized.BranchName = sanitizedValueOrDefault(configuration.BranchName, defaults.BranchName)
	sanitized.WorktreePath = sanitizedValueOrDefault(configuration.WorktreePath, defaults.WorktreePath)
	sanitized.CommitMessage = sanitizedValueOrDefault(configuration.CommitMessage, defaults.CommitMessage)
	sanitized.BuildTargets = sanitizeBuildTargets(configuration.BuildTargets, defaults.BuildTargets)
	if sanitized.CommandTimeout <= 0 {
		sanitized.CommandTimeout = defaults.CommandTimeout
	}
	return sanitized
}

func sanitizedValueOrDefault(configuredValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(configuredValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}

func sanitizeBuildTargets(configuredTargets []string, defaultTargets []string) []string {
	sanitizedTargets := make([]string, 0, len(configuredTargets))
	for _, configuredTarget := range configuredTargets {
		trimmedTarget := strings.TrimSpace(configuredTarget)
		if len(trimmedTarget) == 0 {
			continue
		}
		sanitizedTargets = append(sanitizedTargets, trimmedTarget)
	}
	if len(sanitizedTargets) == 0 {
		return defaultTargets
	}
	return sanitizedTargets
}
