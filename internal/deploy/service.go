package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/docpages/internal/docbuild"
	"github.com/temirov/docpages/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant       = "git executor not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	builderMissingMessageConstant           = "documentation builder not configured"
	manifestWriterMissingMessageConstant    = "manifest writer not configured"
	stepFailureErrorTemplateConstant        = "deployment step %s failed: %w"
	remoteResolutionErrorTemplateConstant   = "unable to resolve remote %s: %w"
	worktreeCloneErrorTemplateConstant      = "unable to clone %s into %s: %w"
	worktreeInspectionErrorTemplateConstant = "unable to inspect worktree %s: %w"
	manifestStepErrorTemplateConstant       = "unable to record deployment manifest: %w"
	stageErrorTemplateConstant              = "unable to stage documentation changes: %w"
	commitErrorTemplateConstant             = "unable to commit documentation changes: %w"
	pushErrorTemplateConstant               = "unable to push %s to %s: %w"
	invalidInputTemplateConstant            = "%s: %s"
	requiredValueMessageConstant            = "value required"
	notAWorktreeTemplateConstant            = "%s is not a git worktree"
	branchMismatchTemplateConstant          = "worktree %s is on branch %s, expected %s"
	repositoryPathFieldNameConstant         = "repository path"
	remoteNameFieldNameConstant             = "remote name"
	branchNameFieldNameConstant             = "branch name"
	worktreePathFieldNameConstant           = "worktree path"
	commitMessageFieldNameConstant          = "commit message"
	gitTerminalPromptVariableConstant       = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant       = "0"
	gitCloneCommandConstant                 = "clone"
	gitBranchSelectionFlagConstant          = "-b"
	gitAddCommandConstant                   = "add"
	gitAllFlagConstant                      = "--all"
	gitCommitCommandConstant                = "commit"
	gitMessageFlagConstant                  = "-m"
	gitPushCommandConstant                  = "push"
	gitForceFlagConstant                    = "--force"
	refspecTemplateConstant                 = "%s:%s"
	noChangesToCommitMessageConstant        = "No documentation changes to commit"
	worktreeClonedMessageConstant           = "Cloned pages worktree"
	deploymentStepMessageConstant           = "Deployment step completed"
	logFieldWorktreeConstant                = "worktree"
	logFieldRemoteConstant                  = "remote"
	logFieldBranchConstant                  = "branch"
	logFieldStepConstant                    = "step"
)

// StepName identifies one stage of the deployment pipeline.
type StepName string

// Pipeline steps executed in declaration order.
const (
	StepEnsureWorktree StepName = "ensure-worktree"
	StepBuild          StepName = "build"
	StepCommit         StepName = "commit"
	StepPush           StepName = "push"
)

// Sentinel errors for missing service dependencies.
var (
	ErrGitExecutorNotConfigured          = errors.New(gitExecutorMissingMessageConstant)
	ErrRepositoryManagerNotConfigured    = errors.New(repositoryManagerMissingMessageConstant)
	ErrDocumentationBuilderNotConfigured = errors.New(builderMissingMessageConstant)
	ErrManifestWriterNotConfigured       = errors.New(manifestWriterMissingMessageConstant)
)

// GitExecutor exposes the subset of shell execution used by the deployment service.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitRepositoryManager exposes the repository operations the deployment service needs.
type GitRepositoryManager interface {
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// DocumentationBuilder runs documentation build targets.
type DocumentationBuilder interface {
	Build(executionContext context.Context, options docbuild.BuildOptions) (docbuild.BuildResult, error)
}

// ManifestRecorder persists deployment manifests into worktrees.
type ManifestRecorder interface {
	Write(worktreePath string, manifest DeploymentManifest) (string, error)
}

// FileSystem provides the filesystem operations required by worktree inspection.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

type osFileSystem struct{}

func (osFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// InvalidInputError reports a missing or malformed deployment option.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// NotAWorktreeError reports an existing worktree path that is not a git worktree.
type NotAWorktreeError struct {
	Path string
}

// Error describes the invalid worktree path.
func (worktreeError NotAWorktreeError) Error() string {
	return fmt.Sprintf(notAWorktreeTemplateConstant, worktreeError.Path)
}

// BranchMismatchError reports a worktree checked out on an unexpected branch.
type BranchMismatchError struct {
	WorktreePath   string
	ExpectedBranch string
	ActualBranch   string
}

// Error describes the branch mismatch.
func (mismatchError BranchMismatchError) Error() string {
	return fmt.Sprintf(branchMismatchTemplateConstant, mismatchError.WorktreePath, mismatchError.ActualBranch, mismatchError.ExpectedBranch)
}

// DeploymentOptions configures a single deployment pipeline run.
type DeploymentOptions struct {
	RepositoryPath string
	RemoteName     string
	BranchName     string
	WorktreePath   string
	CommitMessage  string
	BuildTargets   []string
	ForcePush      bool
	SkipBuild      bool
}

// StepStatus reports whether a named pipeline step ran.
type StepStatus struct {
	Name StepName
	Ran  bool
}

// DeploymentResult reports the outcome of a deployment pipeline run.
type DeploymentResult struct {
	Steps          []StepStatus
	WorktreeCloned bool
	CommitCreated  bool
	Pushed         bool
	ManifestPath   string
}

// ServiceDependencies enumerates collaborators required by the deployment service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	GitExecutor       GitExecutor
	RepositoryManager GitRepositoryManager
	Builder           DocumentationBuilder
	ManifestWriter    ManifestRecorder
	FileSystem        FileSystem
}

// Service executes the documentation deployment pipeline.
type Service struct {
	logger            *zap.Logger
	gitExecutor       GitExecutor
	repositoryManager GitRepositoryManager
	builder           DocumentationBuilder
	manifestWriter    ManifestRecorder
	fileSystem        FileSystem
}

// NewService validates dependencies and constructs a deployment service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.Builder == nil {
		return nil, ErrDocumentationBuilderNotConfigured
	}
	if dependencies.ManifestWriter == nil {
		return nil, ErrManifestWriterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = osFileSystem{}
	}

	return &Service{
		logger:            logger,
		gitExecutor:       dependencies.GitExecutor,
		repositoryManager: dependencies.RepositoryManager,
		builder:           dependencies.Builder,
		manifestWriter:    dependencies.ManifestWriter,
		fileSystem:        fileSystem,
	}, nil
}

type pipelineStep struct {
	name    StepName
	skipped bool
	execute func(executionContext context.Context, options DeploymentOptions, result *DeploymentResult) error
}

// Execute runs the deployment pipeline, stopping at the first failing step.
func (service *Service) Execute(executionContext context.Context, options DeploymentOptions) (DeploymentResult, error) {
	if validationError := validateDeploymentOptions(options); validationError != nil {
		return DeploymentResult{}, validationError
	}

	pipelineSteps := []pipelineStep{
		{name: StepEnsureWorktree, execute: service.ensureWorktree},
		{name: StepBuild, skipped: options.SkipBuild, execute: service.buildDocumentation},
		{name: StepCommit, execute: service.commitDocumentation},
		{name: StepPush, execute: service.pushDocumentation},
	}

	result := DeploymentResult{Steps: make([]StepStatus, 0, len(pipelineSteps))}
	for _, step := range pipelineSteps {
		if step.skipped {
			result.Steps = append(result.Steps, StepStatus{Name: step.name, Ran: false})
			continue
		}

		if stepError := step.execute(executionContext, options, &result); stepError != nil {
			result.Steps = append(result.Steps, StepStatus{Name: step.name, Ran: false})
			return result, fmt.Errorf(stepFailureErrorTemplateConstant, step.name, stepError)
		}

		result.Steps = append(result.Steps, StepStatus{Name: step.name, Ran: true})
		service.logger.Debug(deploymentStepMessageConstant, zap.String(logFieldStepConstant, string(step.name)))
	}

	return result, nil
}

func validateDeploymentOptions(options DeploymentOptions) error {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.BranchName)) == 0 {
		return InvalidInputError{FieldName: branchNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.WorktreePath)) == 0 {
		return InvalidInputError{FieldName: worktreePathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.CommitMessage)) == 0 {
		return InvalidInputError{FieldName: commitMessageFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func (service *Service) ensureWorktree(executionContext context.Context, options DeploymentOptions, result *DeploymentResult) error {
	_, statError := service.fileSystem.Stat(options.WorktreePath)
	if statError != nil {
		if !errors.Is(statError, fs.ErrNotExist) {
			return fmt.Errorf(worktreeInspectionErrorTemplateConstant, options.WorktreePath, statError)
		}
		return service.cloneWorktree(executionContext, options, result)
	}

	insideWorkTree, worktreeError := service.repositoryManager.IsInsideWorkTree(executionContext, options.WorktreePath)
	if worktreeError != nil {
		return fmt.Errorf(worktreeInspectionErrorTemplateConstant, options.WorktreePath, worktreeError)
	}
	if !insideWorkTree {
		return NotAWorktreeError{Path: options.WorktreePath}
	}

	currentBranch, branchError := service.repositoryManager.GetCurrentBranch(executionContext, options.WorktreePath)
	if branchError != nil {
		return fmt.Errorf(worktreeInspectionErrorTemplateConstant, options.WorktreePath, branchError)
	}
	if currentBranch != options.BranchName {
		return BranchMismatchError{WorktreePath: options.WorktreePath, ExpectedBranch: options.BranchName, ActualBranch: currentBranch}
	}

	return nil
}

func (service *Service) cloneWorktree(executionContext context.Context, options DeploymentOptions, result *DeploymentResult) error {
	remoteURL, remoteError := service.repositoryManager.GetRemoteURL(executionContext, options.RepositoryPath, options.RemoteName)
	if remoteError != nil {
		return fmt.Errorf(remoteResolutionErrorTemplateConstant, options.RemoteName, remoteError)
	}

	cloneArguments := []string{gitCloneCommandConstant, gitBranchSelectionFlagConstant, options.BranchName, remoteURL, options.WorktreePath}
	if _, cloneError := service.runGit(executionContext, options.RepositoryPath, cloneArguments); cloneError != nil {
		return fmt.Errorf(worktreeCloneErrorTemplateConstant, options.BranchName, options.WorktreePath, cloneError)
	}

	result.WorktreeCloned = true
	service.logger.Info(
		worktreeClonedMessageConstant,
		zap.String(logFieldWorktreeConstant, options.WorktreePath),
		zap.String(logFieldBranchConstant, options.BranchName),
	)
	return nil
}

func (service *Service) buildDocumentation(executionContext context.Context, options DeploymentOptions, _ *DeploymentResult) error {
	_, buildError := service.builder.Build(executionContext, docbuild.BuildOptions{
		RepositoryPath: options.RepositoryPath,
		Targets:        options.BuildTargets,
	})
	return buildError
}

func (service *Service) commitDocumentation(executionContext context.Context, options DeploymentOptions, result *DeploymentResult) error {
	manifestPath, manifestError := service.manifestWriter.Write(options.WorktreePath, DeploymentManifest{
		RemoteName:    options.RemoteName,
		BranchName:    options.BranchName,
		CommitMessage: options.CommitMessage,
		BuildTargets:  options.BuildTargets,
	})
	if manifestError != nil {
		return fmt.Errorf(manifestStepErrorTemplateConstant, manifestError)
	}
	result.ManifestPath = manifestPath

	stageArguments := []string{gitAddCommandConstant, gitAllFlagConstant}
	if _, stageError := service.runGit(executionContext, options.WorktreePath, stageArguments); stageError != nil {
		return fmt.Errorf(stageErrorTemplateConstant, stageError)
	}

	worktreeClean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, options.WorktreePath)
	if cleanError != nil {
		return fmt.Errorf(worktreeInspectionErrorTemplateConstant, options.WorktreePath, cleanError)
	}
	if worktreeClean {
		service.logger.Info(noChangesToCommitMessageConstant, zap.String(logFieldWorktreeConstant, options.WorktreePath))
		result.CommitCreated = false
		return nil
	}

	commitArguments := []string{gitCommitCommandConstant, gitMessageFlagConstant, options.CommitMessage}
	if _, commitError := service.runGit(executionContext, options.WorktreePath, commitArguments); commitError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, commitError)
	}

	result.CommitCreated = true
	return nil
}

func (service *Service) pushDocumentation(executionContext context.Context, options DeploymentOptions, result *DeploymentResult) error {
	pushArguments := []string{gitPushCommandConstant}
	if options.ForcePush {
		pushArguments = append(pushArguments, gitForceFlagConstant)
	}
	refspec := fmt.Sprintf(refspecTemplateConstant, options.BranchName, options.BranchName)
	pushArguments = append(pushArguments, options.RemoteName, refspec)

	if _, pushError := service.runGit(executionContext, options.WorktreePath, pushArguments); pushError != nil {
		return fmt.Errorf(pushErrorTemplateConstant, options.BranchName, options.RemoteName, pushError)
	}

	result.Pushed = true
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
