package rollback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/docpages/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant  = "git executor not configured"
	remoteDeleteErrorTemplateConstant  = "unable to delete %s from %s: %w"
	localResetErrorTemplateConstant    = "unable to reset worktree to %s: %w"
	invalidInputTemplateConstant       = "%s: %s"
	requiredValueMessageConstant       = "value required"
	repositoryPathFieldNameConstant    = "repository path"
	remoteNameFieldNameConstant        = "remote name"
	branchNameFieldNameConstant        = "branch name"
	targetRefFieldNameConstant         = "target ref"
	gitTerminalPromptVariableConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant  = "0"
	gitPushCommandConstant             = "push"
	gitDeleteFlagConstant              = "--delete"
	gitResetCommandConstant            = "reset"
	gitHardFlagConstant                = "--hard"
	remoteBranchDeletedMessageConstant = "Deleted remote branch"
	localBranchResetMessageConstant    = "Reset local branch"
	logFieldRemoteConstant             = "remote"
	logFieldBranchConstant             = "branch"
	logFieldTargetRefConstant          = "target_ref"
)

// ErrGitExecutorNotConfigured indicates Service construction without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by rollback operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidInputError reports a missing or malformed rollback option.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// RemoteRollbackOptions configures deletion of a remote branch.
type RemoteRollbackOptions struct {
	RepositoryPath string
	RemoteName     string
	BranchName     string
}

// LocalRollbackOptions configures a hard reset of the local branch pointer.
type LocalRollbackOptions struct {
	RepositoryPath string
	TargetRef      string
}

// ServiceDependencies enumerates collaborators required by the rollback service.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor GitExecutor
}

// Service performs bounded rollback operations through git.
type Service struct {
	logger      *zap.Logger
	gitExecutor GitExecutor
}

// NewService validates dependencies and constructs a rollback service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, gitExecutor: dependencies.GitExecutor}, nil
}

// DeleteRemoteBranch removes the configured branch from the remote with a single push --delete.
func (service *Service) DeleteRemoteBranch(executionContext context.Context, options RemoteRollbackOptions) error {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.BranchName)) == 0 {
		return InvalidInputError{FieldName: branchNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	deleteArguments := []string{gitPushCommandConstant, options.RemoteName, gitDeleteFlagConstant, options.BranchName}
	if _, deleteError := service.runGit(executionContext, options.RepositoryPath, deleteArguments); deleteError != nil {
		return fmt.Errorf(remoteDeleteErrorTemplateConstant, options.BranchName, options.RemoteName, deleteError)
	}

	service.logger.Info(
		remoteBranchDeletedMessageConstant,
		zap.String(logFieldRemoteConstant, options.RemoteName),
		zap.String(logFieldBranchConstant, options.BranchName),
	)
	return nil
}

// ResetLocalBranch hard-resets the worktree to the target ref with a single reset --hard.
//
// The remote is never contacted: no fetch precedes the reset.
func (service *Service) ResetLocalBranch(executionContext context.Context, options LocalRollbackOptions) error {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.TargetRef)) == 0 {
		return InvalidInputError{FieldName: targetRefFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resetArguments := []string{gitResetCommandConstant, gitHardFlagConstant, options.TargetRef}
	if _, resetError := service.runGit(executionContext, options.RepositoryPath, resetArguments); resetError != nil {
		return fmt.Errorf(localResetErrorTemplateConstant, options.TargetRef, resetError)
	}

	service.logger.Info(
		localBranchResetMessageConstant,
		zap.String(logFieldTargetRefConstant, options.TargetRef),
	)
	return nil
}

func (service *Service) runGit(executionContext context.Context, workingDirectory string, arguments []string) (execshell.ExecutionResult, error) {
	return service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant,
		},
	})
}
