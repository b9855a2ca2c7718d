package rollback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/docpages/internal/execshell"
	"github.com/temirov/docpages/internal/ui"
	"github.com/temirov/docpages/internal/utils"
)

const (
	remoteCommandUseConstant              = "rollback-remote"
	remoteCommandShortDescriptionConstant = "Delete the pages branch from a remote"
	remoteCommandLongDescriptionConstant  = "rollback-remote removes the published pages branch from the configured remote with a single push --delete, leaving every other branch untouched."
	localCommandUseConstant               = "rollback-local"
	localCommandShortDescriptionConstant  = "Reset the local pages branch to a remote-tracking ref"
	localCommandLongDescriptionConstant   = "rollback-local hard-resets the pages worktree to the given remote-tracking ref without fetching or pushing; the remote is never contacted."
	remoteFlagNameConstant                = "remote"
	remoteFlagUsageConstant               = "Remote hosting the pages branch"
	branchFlagNameConstant                = "branch"
	branchFlagUsageConstant               = "Pages branch to delete"
	refFlagNameConstant                   = "ref"
	refFlagUsageConstant                  = "Remote-tracking ref to reset to"
	worktreeFlagNameConstant              = "worktree"
	worktreeFlagUsageConstant             = "Path of the pages worktree the rollback operates on"
	assumeYesFlagNameConstant             = "yes"
	assumeYesFlagUsageConstant            = "Skip the confirmation prompt"
	remoteDeletePromptTemplateConstant    = "Delete branch %s from remote %s? [y/N] "
	localResetPromptTemplateConstant      = "Hard reset the pages worktree to %s? [y/N] "
	rollbackDeclinedMessageConstant       = "Rollback declined"
	remoteRollbackErrorTemplateConstant   = "remote rollback failed: %w"
	localRollbackErrorTemplateConstant    = "local rollback failed: %w"
	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	defaultTrackingRefTemplateConstant    = "%s/%s"
	confirmationFailureTemplateConstant   = "unable to read confirmation: %w"
)

// CommandExecutor exposes the shell operations rollback commands require.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RollbackExecutor performs the rollback operations.
type RollbackExecutor interface {
	DeleteRemoteBranch(executionContext context.Context, options RemoteRollbackOptions) error
	ResetLocalBranch(executionContext context.Context, options LocalRollbackOptions) error
}

// ServiceProvider constructs a rollback executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (RollbackExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the rollback Cobra commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	WorkingDirectory             string
	Prompter                     ui.ConfirmationPrompter
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// BuildRemoteCommand constructs the rollback-remote command.
func (builder *CommandBuilder) BuildRemoteCommand() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()

	command := &cobra.Command{
		Use:           remoteCommandUseConstant,
		Short:         remoteCommandShortDescriptionConstant,
		Long:          remoteCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runRemoteRollback,
	}

	command.Flags().String(remoteFlagNameConstant, configuration.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(branchFlagNameConstant, configuration.BranchName, branchFlagUsageConstant)
	command.Flags().String(worktreeFlagNameConstant, configuration.WorktreePath, worktreeFlagUsageConstant)
	command.Flags().Bool(assumeYesFlagNameConstant, false, assumeYesFlagUsageConstant)

	return command, nil
}

// BuildLocalCommand constructs the rollback-local command.
func (builder *CommandBuilder) BuildLocalCommand() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()
	defaultTrackingRef := fmt.Sprintf(defaultTrackingRefTemplateConstant, configuration.RemoteName, configuration.BranchName)

	command := &cobra.Command{
		Use:           localCommandUseConstant,
		Short:         localCommandShortDescriptionConstant,
		Long:          localCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runLocalRollback,
	}

	command.Flags().String(refFlagNameConstant, defaultTrackingRef, refFlagUsageConstant)
	command.Flags().String(worktreeFlagNameConstant, configuration.WorktreePath, worktreeFlagUsageConstant)
	command.Flags().Bool(assumeYesFlagNameConstant, false, assumeYesFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runRemoteRollback(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	remoteName := configuration.RemoteName
	branchName := configuration.BranchName
	if command.Flags().Changed(remoteFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(remoteFlagNameConstant)
		remoteName = strings.TrimSpace(flagValue)
	}
	if command.Flags().Changed(branchFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(branchFlagNameConstant)
		branchName = strings.TrimSpace(flagValue)
	}

	logger := builder.resolveLogger(builder.debugLoggingEnabled(command))

	confirmed, confirmationError := builder.confirm(command, fmt.Sprintf(remoteDeletePromptTemplateConstant, branchName, remoteName))
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		logger.Info(rollbackDeclinedMessageConstant)
		return nil
	}

	service, worktreePath, resolutionError := builder.resolveService(command, configuration, logger)
	if resolutionError != nil {
		return resolutionError
	}

	rollbackError := service.DeleteRemoteBranch(command.Context(), RemoteRollbackOptions{
		RepositoryPath: worktreePath,
		RemoteName:     remoteName,
		BranchName:     branchName,
	})
	if rollbackError != nil {
		return fmt.Errorf(remoteRollbackErrorTemplateConstant, rollbackError)
	}
	return nil
}

func (builder *CommandBuilder) runLocalRollback(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	targetRef := fmt.Sprintf(defaultTrackingRefTemplateConstant, configuration.RemoteName, configuration.BranchName)
	if command.Flags().Changed(refFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(refFlagNameConstant)
		targetRef = strings.TrimSpace(flagValue)
	}

	logger := builder.resolveLogger(builder.debugLoggingEnabled(command))

	confirmed, confirmationError := builder.confirm(command, fmt.Sprintf(localResetPromptTemplateConstant, targetRef))
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		logger.Info(rollbackDeclinedMessageConstant)
		return nil
	}

	service, worktreePath, resolutionError := builder.resolveService(command, configuration, logger)
	if resolutionError != nil {
		return resolutionError
	}

	rollbackError := service.ResetLocalBranch(command.Context(), LocalRollbackOptions{
		RepositoryPath: worktreePath,
		TargetRef:      targetRef,
	})
	if rollbackError != nil {
		return fmt.Errorf(localRollbackErrorTemplateConstant, rollbackError)
	}
	return nil
}

func (builder *CommandBuilder) confirm(command *cobra.Command, prompt string) (bool, error) {
	assumeYes, _ := command.Flags().GetBool(assumeYesFlagNameConstant)
	if assumeYes {
		return true, nil
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	confirmed, confirmationError := prompter.Confirm(prompt)
	if confirmationError != nil {
		return false, fmt.Errorf(confirmationFailureTemplateConstant, confirmationError)
	}
	return confirmed, nil
}

func (builder *CommandBuilder) debugLoggingEnabled(command *cobra.Command) bool {
	if command == nil {
		return false
	}
	contextAccessor := utils.NewCommandContextAccessor()
	if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
		return strings.EqualFold(logLevel, string(utils.LogLevelDebug))
	}
	return false
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if enableDebug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	}
	return logger
}

func (builder *CommandBuilder) resolveService(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (RollbackExecutor, string, error) {
	worktreePath, worktreeError := builder.resolveWorktreePath(command, configuration)
	if worktreeError != nil {
		return nil, "", worktreeError
	}

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, "", executorError
	}

	dependencies := ServiceDependencies{Logger: logger, GitExecutor: executor}
	if builder.ServiceProvider != nil {
		service, serviceError := builder.ServiceProvider(dependencies)
		return service, worktreePath, serviceError
	}

	service, serviceError := NewService(dependencies)
	return service, worktreePath, serviceError
}

func (builder *CommandBuilder) resolveWorktreePath(command *cobra.Command, configuration CommandConfiguration) (string, error) {
	worktreePath := configuration.WorktreePath
	if command.Flags().Changed(worktreeFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(worktreeFlagNameConstant)
		worktreePath = strings.TrimSpace(flagValue)
	}
	if filepath.IsAbs(worktreePath) {
		return worktreePath, nil
	}

	baseDirectory := builder.WorkingDirectory
	if len(strings.TrimSpace(baseDirectory)) == 0 {
		resolvedDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		baseDirectory = resolvedDirectory
	}
	return filepath.Join(baseDirectory, worktreePath), nil
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
