package rollback

import "strings"

const (
	defaultRemoteNameConstant   = "origin"
	defaultBranchNameConstant   = "gh-pages"
	defaultWorktreePathConstant = "doc/_build/html"
)

const (
	remoteConfigurationKeySuffixConstant   = ".remote"
	branchConfigurationKeySuffixConstant   = ".branch"
	worktreeConfigurationKeySuffixConstant = ".worktree"
)

// DefaultConfigurationValues exposes rollback defaults for configuration loading.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + remoteConfigurationKeySuffixConstant:   defaults.RemoteName,
		configurationKeyPrefix + branchConfigurationKeySuffixConstant:   defaults.BranchName,
		configurationKeyPrefix + worktreeConfigurationKeySuffixConstant: defaults.WorktreePath,
	}
}

// CommandConfiguration captures persisted configuration for rollback operations.
type CommandConfiguration struct {
	RemoteName   string `mapstructure:"remote"`
	BranchName   string `mapstructure:"branch"`
	WorktreePath string `mapstructure:"worktree"`
}

// DefaultCommandConfiguration returns baseline configuration values for rollbacks.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:   defaultRemoteNameConstant,
		BranchName:   defaultBranchNameConstant,
		WorktreePath: defaultWorktreePathConstant,
	}
}

// Sanitize trims configured values and restores defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()

	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaults.RemoteName
	}
	sanitized.BranchName = strings.TrimSpace(configuration.BranchName)
	if len(sanitized.BranchName) == 0 {
		sanitized.BranchName = defaults.BranchName
	}
	sanitized.WorktreePath = strings.TrimSpace(configuration.WorktreePath)
	if len(sanitized.WorktreePath) == 0 {
		sanitized.WorktreePath = defaults.WorktreePath
	}
	return sanitized
}
