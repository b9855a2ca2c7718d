package remotes

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/docpages/internal/execshell"
	"github.com/temirov/docpages/internal/gitrepo"
	"github.com/temirov/docpages/internal/utils"
)

const (
	commandUseConstant                     = "remote-setup"
	commandShortDescriptionConstant        = "Register a named remote for documentation publishing"
	commandLongDescriptionConstant         = "remote-setup validates the remote URL and registers it under the given name, succeeding idempotently when the remote already points at the same URL."
	nameFlagNameConstant                   = "name"
	nameFlagUsageConstant                  = "Name of the remote to register"
	urlFlagNameConstant                    = "url"
	urlFlagUsageConstant                   = "URL the remote should point at"
	updateFlagNameConstant                 = "update"
	updateFlagUsageConstant                = "Repoint an existing remote at the new URL instead of failing"
	defaultRemoteNameConstant              = "origin"
	remoteSetupErrorTemplateConstant       = "remote setup failed: %w"
	workingDirectoryErrorTemplateConstant  = "unable to determine working directory: %w"
	repositoryManagerCreationErrorTemplate = "unable to construct repository manager: %w"
)

// CommandExecutor exposes the shell operations the remote-setup command requires.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SetupExecutor performs remote registration.
type SetupExecutor interface {
	Setup(executionContext context.Context, options SetupOptions) (SetupResult, error)
}

// ServiceProvider constructs a setup executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (SetupExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the remote-setup Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	WorkingDirectory             string
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
}

// Build constructs the remote-setup command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runSetup,
	}

	command.Flags().String(nameFlagNameConstant, defaultRemoteNameConstant, nameFlagUsageConstant)
	command.Flags().String(urlFlagNameConstant, "", urlFlagUsageConstant)
	command.Flags().Bool(updateFlagNameConstant, false, updateFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runSetup(command *cobra.Command, _ []string) error {
	remoteName, _ := command.Flags().GetString(nameFlagNameConstant)
	remoteURL, _ := command.Flags().GetString(urlFlagNameConstant)
	updateExisting, _ := command.Flags().GetBool(updateFlagNameConstant)

	logger := builder.resolveLogger(builder.debugLoggingEnabled(command))

	repositoryPath := builder.WorkingDirectory
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		resolvedDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		repositoryPath = resolvedDirectory
	}

	service, serviceError := builder.resolveService(logger)
	if serviceError != nil {
		return serviceError
	}

	_, setupError := service.Setup(command.Context(), SetupOptions{
		RepositoryPath: repositoryPath,
		RemoteName:     strings.TrimSpace(remoteName),
		RemoteURL:      strings.TrimSpace(remoteURL),
		UpdateExisting: updateExisting,
	})
	if setupError != nil {
		return fmt.Errorf(remoteSetupErrorTemplateConstant, setupError)
	}
	return nil
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

func (builder *CommandBuilder) resolveService(logger *zap.Logger) (SetupExecutor, error) {
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, fmt.Errorf(repositoryManagerCreationErrorTemplate, managerError)
	}

	dependencies := ServiceDependencies{Logger: logger, RepositoryManager: repositoryManager}
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
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
