package deploy_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/docpages/internal/deploy"
	"github.com/temirov/docpages/internal/docbuild"
	"github.com/temirov/docpages/internal/execshell"
)

const (
	deploySubtestNameTemplateConstant  = "%d_%s"
	testDeployRepositoryPathConstant   = "/tmp/docs-project"
	testDeployWorktreePathConstant     = "/tmp/docs-project/doc/_build/html"
	testDeployRemoteNameConstant       = "origin"
	testDeployBranchNameConstant       = "gh-pages"
	testDeployCommitMessageConstant    = "Update documentation"
	testDeployRemoteURLConstant        = "git@github.com:example/docs-site.git"
	testDeployManifestPathConstant     = "/tmp/docs-project/doc/_build/html/.docpages.yaml"
	testMismatchedBranchConstant       = "main"
	caseExistingWorktreeDeployConstant = "existing_worktree_full_pipeline"
	caseMissingWorktreeClonesConstant  = "missing_worktree_clones_before_build"
	caseBuildFailureStopsConstant      = "build_failure_prevents_commit_and_push"
	caseNothingToCommitPushesConstant  = "clean_worktree_skips_commit_push_still_runs"
	caseCommitFailureStopsConstant     = "commit_failure_prevents_push"
	caseBranchMismatchFailsConstant    = "worktree_branch_mismatch_fails"
	caseSkipBuildConstant              = "skip_build_omits_build_step"
	argumentsJoinSeparatorConstant     = " "
)

type recordingGitExecutor struct {
	executedCommands     []execshell.CommandDetails
	failingPrefix        string
	failingExitCode      int
	failingStandardError string
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	joinedArguments := strings.Join(details.Arguments, argumentsJoinSeparatorConstant)
	if len(executor.failingPrefix) > 0 && strings.HasPrefix(joinedArguments, executor.failingPrefix) {
		failingExitCode := executor.failingExitCode
		if failingExitCode == 0 {
			failingExitCode = 1
		}
		failureResult := execshell.ExecutionResult{ExitCode: failingExitCode, StandardError: executor.failingStandardError}
		failedCommand := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
		return failureResult, execshell.CommandFailedError{Command: failedCommand, Result: failureResult}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingGitExecutor) commandLines() []string {
	commandLines := make([]string, 0, len(executor.executedCommands))
	for _, executedCommand := range executor.executedCommands {
		commandLines = append(commandLines, strings.Join(executedCommand.Arguments, argumentsJoinSeparatorConstant))
	}
	return commandLines
}

type stubRepositoryManager struct {
	insideWorkTree bool
	worktreeClean  bool
	currentBranch  string
	remoteURL      string
}

func (manager *stubRepositoryManager) IsInsideWorkTree(_ context.Context, _ string) (bool, error) {
	return manager.insideWorkTree, nil
}

func (manager *stubRepositoryManager) CheckCleanWorktree(_ context.Context, _ string) (bool, error) {
	return manager.worktreeClean, nil
}

func (manager *stubRepositoryManager) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	return manager.currentBranch, nil
}

func (manager *stubRepositoryManager) GetRemoteURL(_ context.Context, _ string, _ string) (string, error) {
	return manager.remoteURL, nil
}

type recordingBuilder struct {
	buildRequests []docbuild.BuildOptions
	buildError    error
}

func (builder *recordingBuilder) Build(_ context.Context, options docbuild.BuildOptions) (docbuild.BuildResult, error) {
	builder.buildRequests = append(builder.buildRequests, options)
	if builder.buildError != nil {
		return docbuild.BuildResult{}, builder.buildError
	}
	return docbuild.BuildResult{ExecutedTargets: options.Targets}, nil
}

type recordingManifestWriter struct {
	writtenManifests []deploy.DeploymentManifest
}

func (writer *recordingManifestWriter) Write(_ string, manifest deploy.DeploymentManifest) (string, error) {
	writer.writtenManifests = append(writer.writtenManifests, manifest)
	return testDeployManifestPathConstant, nil
}

type stubFileSystem struct {
	worktreeExists bool
}

func (fileSystem *stubFileSystem) Stat(_ string) (fs.FileInfo, error) {
	if fileSystem.worktreeExists {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func defaultDeploymentOptions() deploy.DeploymentOptions {
	return deploy.DeploymentOptions{
		RepositoryPath: testDeployRepositoryPathConstant,
		RemoteName:     testDeployRemoteNameConstant,
		BranchName:     testDeployBranchNameConstant,
		WorktreePath:   testDeployWorktreePathConstant,
		CommitMessage:  testDeployCommitMessageConstant,
		BuildTargets:   docbuild.DefaultTargets(),
	}
}

func newDeploymentService(testInstance *testing.T, gitExecutor *recordingGitExecutor, repositoryManager *stubRepositoryManager, builder *recordingBuilder, manifestWriter *recordingManifestWriter, fileSystem *stubFileSystem) *deploy.Service {
	service, creationError := deploy.NewService(deploy.ServiceDependencies{
		Logger:            zap.NewNop(),
		GitExecutor:       gitExecutor,
		RepositoryManager: repositoryManager,
		Builder:           builder,
		ManifestWriter:    manifestWriter,
		FileSystem:        fileSystem,
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  deploy.ServiceDependencies
		expectedError error
	}{
		{
			name:          "missing_git_executor",
			dependencies:  deploy.ServiceDependencies{RepositoryManager: &stubRepositoryManager{}, Builder: &recordingBuilder{}, ManifestWriter: &recordingManifestWriter{}},
			expectedError: deploy.ErrGitExecutorNotConfigured,
		},
		{
			name:          "missing_repository_manager",
			dependencies:  deploy.ServiceDependencies{GitExecutor: &recordingGitExecutor{}, Builder: &recordingBuilder{}, ManifestWriter: &recordingManifestWriter{}},
			expectedError: deploy.ErrRepositoryManagerNotConfigured,
		},
		{
			name:          "missing_builder",
			dependencies:  deploy.ServiceDependencies{GitExecutor: &recordingGitExecutor{}, RepositoryManager: &stubRepositoryManager{}, ManifestWriter: &recordingManifestWriter{}},
			expectedError: deploy.ErrDocumentationBuilderNotConfigured,
		},
		{
			name:          "missing_manifest_writer",
			dependencies:  deploy.ServiceDependencies{GitExecutor: &recordingGitExecutor{}, RepositoryManager: &stubRepositoryManager{}, Builder: &recordingBuilder{}},
			expectedError: deploy.ErrManifestWriterNotConfigured,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(deploySubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			service, creationError := deploy.NewService(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, service)
		})
	}
}

func TestServiceExecutePipeline(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		worktreeExists       bool
		worktreeClean        bool
		currentBranch        string
		buildError           error
		failingCommandPrefix string
		skipBuild            bool
		expectError          bool
		expectedCommands     []string
		expectedBuildRuns    int
		expectedCommit       bool
		expectedPush         bool
		expectedClone        bool
	}{
		{
			name:           caseExistingWorktreeDeployConstant,
			worktreeExists: true,
			currentBranch:  testDeployBranchNameConstant,
			expectedCommands: []string{
				"add --all",
				"commit -m " + testDeployCommitMessageConstant,
				"push " + testDeployRemoteNameConstant + " " + testDeployBranchNameConstant + ":" + testDeployBranchNameConstant,
			},
			expectedBuildRuns: 1,
			expectedCommit:    true,
			expectedPush:      true,
		},
		{
			name:           caseMissingWorktreeClonesConstant,
			worktreeExists: false,
			expectedCommands: []string{
				"clone -b " + testDeployBranchNameConstant + " " + testDeployRemoteURLConstant + " " + testDeployWorktreePathConstant,
				"add --all",
				"commit -m " + testDeployCommitMessageConstant,
				"push " + testDeployRemoteNameConstant + " " + testDeployBranchNameConstant + ":" + testDeployBranchNameConstant,
			},
			expectedBuildRuns: 1,
			expectedCommit:    true,
			expectedPush:      true,
			expectedClone:     true,
		},
		{
			name:              caseBuildFailureStopsConstant,
			worktreeExists:    true,
			currentBranch:     testDeployBranchNameConstant,
			buildError:        errors.New("make doc failed"),
			expectError:       true,
			expectedCommands:  []string{},
			expectedBuildRuns: 1,
		},
		{
			name:           caseNothingToCommitPushesConstant,
			worktreeExists: true,
			worktreeClean:  true,
			currentBranch:  testDeployBranchNameConstant,
			expectedCommands: []string{
				"add --all",
				"push " + testDeployRemoteNameConstant + " " + testDeployBranchNameConstant + ":" + testDeployBranchNameConstant,
			},
			expectedBuildRuns: 1,
			expectedCommit:    false,
			expectedPush:      true,
		},
		{
			name:                 caseCommitFailureStopsConstant,
			worktreeExists:       true,
			currentBranch:        testDeployBranchNameConstant,
			failingCommandPrefix: "commit",
			expectError:          true,
			expectedCommands: []string{
				"add --all",
				"commit -m " + testDeployCommitMessageConstant,
			},
			expectedBuildRuns: 1,
		},
		{
			name:             caseBranchMismatchFailsConstant,
			worktreeExists:   true,
			currentBranch:    testMismatchedBranchConstant,
			expectError:      true,
			expectedCommands: []string{},
		},
		{
			name:           caseSkipBuildConstant,
			worktreeExists: true,
			currentBranch:  testDeployBranchNameConstant,
			skipBuild:      true,
			expectedCommands: []string{
				"add --all",
				"commit -m " + testDeployCommitMessageConstant,
				"push " + testDeployRemoteNameConstant + " " + testDeployBranchNameConstant + ":" + testDeployBranchNameConstant,
			},
			expectedBuildRuns: 0,
			expectedCommit:    true,
			expectedPush:      true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(deploySubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			gitExecutor := &recordingGitExecutor{failingPrefix: testCase.failingCommandPrefix}
			repositoryManager := &stubRepositoryManager{
				insideWorkTree: true,
				worktreeClean:  testCase.worktreeClean,
				currentBranch:  testCase.currentBranch,
				remoteURL:      testDeployRemoteURLConstant,
			}
			builder := &recordingBuilder{buildError: testCase.buildError}
			manifestWriter := &recordingManifestWriter{}
			fileSystem := &stubFileSystem{worktreeExists: testCase.worktreeExists}

			service := newDeploymentService(testInstance, gitExecutor, repositoryManager, builder, manifestWriter, fileSystem)

			options := defaultDeploymentOptions()
			options.SkipBuild = testCase.skipBuild

			result, executionError := service.Execute(context.Background(), options)
			if testCase.expectError {
				require.Error(testInstance, executionError)
			} else {
				require.NoError(testInstance, executionError)
			}

			require.Equal(testInstance, testCase.expectedCommands, gitExecutor.commandLines())
			require.Len(testInstance, builder.buildRequests, testCase.expectedBuildRuns)
			require.Equal(testInstance, testCase.expectedCommit, result.CommitCreated)
			require.Equal(testInstance, testCase.expectedPush, result.Pushed)
			require.Equal(testInstance, testCase.expectedClone, result.WorktreeCloned)

			if !testCase.expectError {
				require.Equal(testInstance, testDeployManifestPathConstant, result.ManifestPath)
				require.Len(testInstance, manifestWriter.writtenManifests, 1)
				writtenManifest := manifestWriter.writtenManifests[0]
				require.Equal(testInstance, testDeployRemoteNameConstant, writtenManifest.RemoteName)
				require.Equal(testInstance, testDeployBranchNameConstant, writtenManifest.BranchName)
			}
		})
	}
}

func TestServiceExecuteForcePushAddsForceFlag(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{}
	repositoryManager := &stubRepositoryManager{insideWorkTree: true, currentBranch: testDeployBranchNameConstant, remoteURL: testDeployRemoteURLConstant}
	builder := &recordingBuilder{}
	manifestWriter := &recordingManifestWriter{}
	fileSystem := &stubFileSystem{worktreeExists: true}

	service := newDeploymentService(testInstance, gitExecutor, repositoryManager, builder, manifestWriter, fileSystem)

	options := defaultDeploymentOptions()
	options.ForcePush = true

	_, executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)

	commandLines := gitExecutor.commandLines()
	require.NotEmpty(testInstance, commandLines)
	pushLine := commandLines[len(commandLines)-1]
	require.Equal(testInstance, "push --force "+testDeployRemoteNameConstant+" "+testDeployBranchNameConstant+":"+testDeployBranchNameConstant, pushLine)
}

func TestServiceExecuteReportsStepStatuses(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{}
	repositoryManager := &stubRepositoryManager{insideWorkTree: true, currentBranch: testDeployBranchNameConstant, remoteURL: testDeployRemoteURLConstant}
	builder := &recordingBuilder{buildError: errors.New("make clean failed")}
	manifestWriter := &recordingManifestWriter{}
	fileSystem := &stubFileSystem{worktreeExists: true}

	service := newDeploymentService(testInstance, gitExecutor, repositoryManager, builder, manifestWriter, fileSystem)

	result, executionError := service.Execute(context.Background(), defaultDeploymentOptions())
	require.Error(testInstance, executionError)

	require.Equal(testInstance, []deploy.StepStatus{
		{Name: deploy.StepEnsureWorktree, Ran: true},
		{Name: deploy.StepBuild, Ran: false},
	}, result.Steps)
}

func TestServiceExecuteRejectedCommitFailsDeployment(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{
		failingPrefix:        "commit",
		failingExitCode:      128,
		failingStandardError: "fatal: unable to auto-detect email address",
	}
	repositoryManager := &stubRepositoryManager{insideWorkTree: true, currentBranch: testDeployBranchNameConstant, remoteURL: testDeployRemoteURLConstant}
	builder := &recordingBuilder{}
	manifestWriter := &recordingManifestWriter{}
	fileSystem := &stubFileSystem{worktreeExists: true}

	service := newDeploymentService(testInstance, gitExecutor, repositoryManager, builder, manifestWriter, fileSystem)

	result, executionError := service.Execute(context.Background(), defaultDeploymentOptions())
	require.Error(testInstance, executionError)
	require.ErrorContains(testInstance, executionError, "unable to commit documentation changes")

	require.False(testInstance, result.CommitCreated)
	require.False(testInstance, result.Pushed)
	require.Equal(testInstance, []string{
		"add --all",
		"commit -m " + testDeployCommitMessageConstant,
	}, gitExecutor.commandLines())
	require.Equal(testInstance, []deploy.StepStatus{
		{Name: deploy.StepEnsureWorktree, Ran: true},
		{Name: deploy.StepBuild, Ran: true},
		{Name: deploy.StepCommit, Ran: false},
	}, result.Steps)
}

func TestServiceExecuteValidatesOptions(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{}
	repositoryManager := &stubRepositoryManager{insideWorkTree: true, currentBranch: testDeployBranchNameConstant}
	builder := &recordingBuilder{}
	manifestWriter := &recordingManifestWriter{}
	fileSystem := &stubFileSystem{worktreeExists: true}

	service := newDeploymentService(testInstance, gitExecutor, repositoryManager, builder, manifestWriter, fileSystem)

	options := defaultDeploymentOptions()
	options.CommitMessage = "   "

	_, executionError := service.Execute(context.Background(), options)
	require.Error(testInstance, executionError)

	var inputError deploy.InvalidInputError
	require.ErrorAs(testInstance, executionError, &inputError)
	require.Empty(testInstance, gitExecutor.executedCommands)
}

func TestManifestWriterUsesInjectedClock(testInstance *testing.T) {
	fixedTime := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	manifestWriter := deploy.NewManifestWriter(fixedClock{instant: fixedTime})

	worktreeDirectory := testInstance.TempDir()
	manifestPath, writeError := manifestWriter.Write(worktreeDirectory, deploy.DeploymentManifest{
		RemoteName:    testDeployRemoteNameConstant,
		BranchName:    testDeployBranchNameConstant,
		CommitMessage: testDeployCommitMessageConstant,
		BuildTargets:  docbuild.DefaultTargets(),
	})
	require.NoError(testInstance, writeError)
	require.FileExists(testInstance, manifestPath)

	manifestContents, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	var writtenManifest deploy.DeploymentManifest
	require.NoError(testInstance, yaml.Unmarshal(manifestContents, &writtenManifest))
	require.Equal(testInstance, fixedTime, writtenManifest.DeployedAt)
	require.Equal(testInstance, testDeployRemoteNameConstant, writtenManifest.RemoteName)
	require.Equal(testInstance, docbuild.DefaultTargets(), writtenManifest.BuildTargets)
}

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}
