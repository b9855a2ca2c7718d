package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/docpages/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant   = "git executor not configured"
	gitTerminalPromptVariableConstant   = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant   = "0"
	gitStatusCommandConstant            = "status"
	gitPorcelainFlagConstant            = "--porcelain"
	gitRevParseCommandConstant          = "rev-parse"
	gitAbbreviatedReferenceFlagConstant = "--abbrev-ref"
	gitHeadReferenceConstant            = "HEAD"
	gitInsideWorkTreeFlagConstant       = "--is-inside-work-tree"
	gitInsideWorkTreeTrueOutputConstant = "true"
	gitRemoteCommandConstant            = "remote"
	gitRemoteGetURLSubcommandConstant   = "get-url"
	gitRemoteAddSubcommandConstant      = "add"
	gitRemoteSetURLSubcommandConstant   = "set-url"
)

// ErrGitExecutorNotConfigured indicates RepositoryManager construction without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-level git operations through a shell executor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsInsideWorkTree reports whether the provided path belongs to a git worktree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseCommandConstant, gitInsideWorkTreeFlagConstant)
	if executionError != nil {
		var commandFailure execshell.CommandFailedError
		if errors.As(executionError, &commandFailure) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitInsideWorkTreeTrueOutputConstant, nil
}

// CheckCleanWorktree reports whether the repository worktree has no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitStatusCommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch resolves the branch currently checked out in the repository.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRevParseCommandConstant, gitAbbreviatedReferenceFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetRemoteURL resolves the URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.runGit(executionContext, repositoryPath, gitRemoteCommandConstant, gitRemoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// AddRemote registers a new named remote pointing at the provided URL.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitRemoteCommandConstant, gitRemoteAddSubcommandConstant, remoteName, remoteURL)
	return executionError
}

// SetRemoteURL updates the URL configured for an existing named remote.
func (manager *RepositoryManager) SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, executionError := manager.runGit(executionContext, repositoryPath, gitRemoteCommandConstant, gitRemoteSetURLSubcommandConstant, remoteName, remoteURL)
	return executionError
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant,
		},
	})
}
