package deploy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/docpages/internal/docbuild"
	"github.com/temirov/docpages/internal/execshell"
	"github.com/temirov/docpages/internal/gitrepo"
	"github.com/temirov/docpages/internal/utils"
)

const (
	commandUseConstant                        = "deploy"
	commandShortDescriptionConstant           = "Publish built documentation to the pages branch"
	commandLongDescriptionConstant            = "deploy ensures the pages worktree exists, rebuilds the documentation, commits the refreshed output, and pushes it to the configured remote."
	remoteFlagNameConstant                    = "remote"
	remoteFlagUsageConstant                   = "Remote receiving the pages branch"
	branchFlagNameConstant                    = "branch"
	branchFlagUsageConstant                   = "Pages branch to publish"
	messageFlagNameConstant                   = "message"
	messageFlagUsageConstant                  = "Commit message for the published documentation"
	worktreeFlagNameConstant                  = "worktree"
	worktreeFlagUsageConstant                 = "Path of the pages worktree"
	forceFlagNameConstant                     = "force"
	forceFlagUsageConstant                    = "Force-push the pages branch"
	skipBuildFlagNameConstant                 = "skip-build"
	skipBuildFlagUsageConstant                = "Skip the documentation build step"
	deployExecutionErrorTemplateConstant      = "documentation deployment failed: %w"
	workingDirectoryErrorTemplateConstant     = "unable to determine working directory: %w"
	repositoryManagerCreationErrorTemplate    = "unable to construct repository manager: %w"
	documentationBuilderCreationErrorTemplate = "unable to construct documentation builder: %w"
	deploymentCompletedMessageConstant        = "Documentation deployment completed"
	logFieldDeployRemoteConstant              = "remote"
	logFieldDeployBranchConstant              = "branch"
	logFieldDeployWorktreeConstant            = "worktree"
	logFieldWorktreeClonedConstant            = "worktree_cloned"
	logFieldCommitCreatedConstant             = "commit_created"
	logFieldManifestPathConstant              = "manifest"
)

// CommandExecutor exposes the shell operations the deploy command requires.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// DeploymentExecutor runs the deployment pipeline.
type DeploymentExecutor interface {
	Execute(executionContext context.Context, options DeploymentOptions) (DeploymentResult, error)
}

// ServiceProvider constructs a deployment executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (DeploymentExecutor, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

type commandOptions struct {
	debugLoggingEnabled bool
	deploymentOptions   DeploymentOptions
}

// CommandBuilder assembles the deploy Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	WorkingDirectory             string
	Clock                        Clock
	ServiceProvider              ServiceProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the deploy command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runDeploy,
	}

	configuration := builder.resolveConfiguration()
	command.Flags().String(remoteFlagNameConstant, configuration.RemoteName, remoteFlagUsageConstant)
	command.Flags().String(branchFlagNameConstant, configuration.BranchName, branchFlagUsageConstant)
	command.Flags().String(messageFlagNameConstant, configuration.CommitMessage, messageFlagUsageConstant)
	command.Flags().String(worktreeFlagNameConstant, configuration.WorktreePath, worktreeFlagUsageConstant)
	command.Flags().Bool(forceFlagNameConstant, false, forceFlagUsageConstant)
	command.Flags().Bool(skipBuildFlagNameConstant, false, skipBuildFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runDeploy(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	options, optionsError := builder.parseOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger(options.debugLoggingEnabled)

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerCreationErrorTemplate, managerError)
	}

	documentationBuilder, builderError := docbuild.NewBuilder(executor)
	if builderError != nil {
		return fmt.Errorf(documentationBuilderCreationErrorTemplate, builderError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:            logger,
		GitExecutor:       executor,
		RepositoryManager: repositoryManager,
		Builder:           documentationBuilder,
		ManifestWriter:    NewManifestWriter(builder.Clock),
	})
	if serviceError != nil {
		return serviceError
	}

	executionContext, cancelExecution := context.WithTimeout(command.Context(), configuration.CommandTimeout)
	defer cancelExecution()

	result, deploymentError := service.Execute(executionContext, options.deploymentOptions)
	if deploymentError != nil {
		return fmt.Errorf(deployExecutionErrorTemplateConstant, deploymentError)
	}

	logger.Info(
		deploymentCompletedMessageConstant,
		zap.String(logFieldDeployRemoteConstant, options.deploymentOptions.RemoteName),
		zap.String(logFieldDeployBranchConstant, options.deploymentOptions.BranchName),
		zap.String(logFieldDeployWorktreeConstant, options.deploymentOptions.WorktreePath),
		zap.Bool(logFieldWorktreeClonedConstant, result.WorktreeCloned),
		zap.Bool(logFieldCommitCreatedConstant, result.CommitCreated),
		zap.String(logFieldManifestPathConstant, result.ManifestPath),
	)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, configuration CommandConfiguration) (commandOptions, error) {
	debugEnabled := false
	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
				debugEnabled = true
			}
		}
	}

	repositoryPath := builder.WorkingDirectory
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		resolvedDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return commandOptions{}, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
		}
		repositoryPath = resolvedDirectory
	}

	deploymentOptions := DeploymentOptions{
		RepositoryPath: repositoryPath,
		RemoteName:     configuration.RemoteName,
		BranchName:     configuration.BranchName,
		WorktreePath:   configuration.WorktreePath,
		CommitMessage:  configuration.CommitMessage,
		BuildTargets:   configuration.BuildTargets,
	}

	if command != nil {
		if command.Flags().Changed(remoteFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(remoteFlagNameConstant)
			deploymentOptions.RemoteName = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(branchFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(branchFlagNameConstant)
			deploymentOptions.BranchName = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(messageFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(messageFlagNameConstant)
			deploymentOptions.CommitMessage = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(worktreeFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(worktreeFlagNameConstant)
			deploymentOptions.WorktreePath = strings.TrimSpace(flagValue)
		}
		forcePush, _ := command.Flags().GetBool(forceFlagNameConstant)
		deploymentOptions.ForcePush = forcePush
		skipBuild, _ := command.Flags().GetBool(skipBuildFlagNameConstant)
		deploymentOptions.SkipBuild = skipBuild
	}

	return commandOptions{
		debugLoggingEnabled: debugEnabled,
		deploymentOptions:   deploymentOptions,
	}, nil
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

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (DeploymentExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
