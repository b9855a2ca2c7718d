package gitrepo_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/docpages/internal/execshell"
	"github.com/temirov/docpages/internal/gitrepo"
)

const (
	repositoryManagerSubtestNameTemplateConstant = "%d_%s"
	testRepositoryPathConstant                   = "/tmp/site-worktree"
	testRemoteNameConstant                       = "origin"
	testConfiguredRemoteURLConstant              = "git@github.com:example/docs-site.git"
	testCurrentBranchOutputConstant              = "gh-pages\n"
	testExpectedCurrentBranchConstant            = "gh-pages"
	testDirtyStatusOutputConstant                = " M docs/index.html\n"
	caseCleanWorktreeConstant                    = "clean_worktree"
	caseDirtyWorktreeConstant                    = "dirty_worktree"
	caseInsideWorkTreeConstant                   = "inside_work_tree"
	caseOutsideWorkTreeConstant                  = "outside_work_tree"
	argumentJoinSeparatorConstant                = " "
)

type scriptedGitExecutor struct {
	executedCommands []execshell.CommandDetails
	standardOutput   string
	executionError   error
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	repositoryManager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, repositoryManager)
}

func TestRepositoryManagerCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name          string
		statusOutput  string
		expectedClean bool
	}{
		{
			name:          caseCleanWorktreeConstant,
			statusOutput:  "\n",
			expectedClean: true,
		},
		{
			name:          caseDirtyWorktreeConstant,
			statusOutput:  testDirtyStatusOutputConstant,
			expectedClean: false,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(repositoryManagerSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			gitExecutor := &scriptedGitExecutor{standardOutput: testCase.statusOutput}
			repositoryManager, creationError := gitrepo.NewRepositoryManager(gitExecutor)
			require.NoError(testInstance, creationError)

			cleanWorktree, checkError := repositoryManager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedClean, cleanWorktree)

			require.Len(testInstance, gitExecutor.executedCommands, 1)
			executedCommand := gitExecutor.executedCommands[0]
			require.Equal(testInstance, "status --porcelain", strings.Join(executedCommand.Arguments, argumentJoinSeparatorConstant))
			require.Equal(testInstance, testRepositoryPathConstant, executedCommand.WorkingDirectory)
			require.Equal(testInstance, "0", executedCommand.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
		})
	}
}

func TestRepositoryManagerGetCurrentBranch(testInstance *testing.T) {
	gitExecutor := &scriptedGitExecutor{standardOutput: testCurrentBranchOutputConstant}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(gitExecutor)
	require.NoError(testInstance, creationError)

	currentBranch, branchError := repositoryManager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, testExpectedCurrentBranchConstant, currentBranch)

	require.Len(testInstance, gitExecutor.executedCommands, 1)
	require.Equal(testInstance, "rev-parse --abbrev-ref HEAD", strings.Join(gitExecutor.executedCommands[0].Arguments, argumentJoinSeparatorConstant))
}

func TestRepositoryManagerGetRemoteURL(testInstance *testing.T) {
	gitExecutor := &scriptedGitExecutor{standardOutput: testConfiguredRemoteURLConstant + "\n"}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(gitExecutor)
	require.NoError(testInstance, creationError)

	remoteURL, remoteError := repositoryManager.GetRemoteURL(context.Background(), testRepositoryPathConstant, testRemoteNameConstant)
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, testConfiguredRemoteURLConstant, remoteURL)

	require.Len(testInstance, gitExecutor.executedCommands, 1)
	require.Equal(testInstance, "remote get-url origin", strings.Join(gitExecutor.executedCommands[0].Arguments, argumentJoinSeparatorConstant))
}

func TestRepositoryManagerAddRemote(testInstance *testing.T) {
	gitExecutor := &scriptedGitExecutor{}
	repositoryManager, creationError := gitrepo.NewRepositoryManager(gitExecutor)
	require.NoError(testInstance, creationError)

	addError := repositoryManager.AddRemote(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testConfiguredRemoteURLConstant)
	require.NoError(testInstance, addError)

	require.Len(testInstance, gitExecutor.executedCommands, 1)
	expectedArguments := fmt.Sprintf("remote add %s %s", testRemoteNameConstant, testConfiguredRemoteURLConstant)
	require.Equal(testInstance, expectedArguments, strings.Join(gitExecutor.executedCommands[0].Arguments, argumentJoinSeparatorConstant))
}

func TestRepositoryManagerIsInsideWorkTree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		executorOutput string
		executorError  error
		expectedInside bool
		expectError    bool
	}{
		{
			name:           caseInsideWorkTreeConstant,
			executorOutput: "true\n",
			expectedInside: true,
		},
		{
			name: caseOutsideWorkTreeConstant,
			executorError: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
				Result:  execshell.ExecutionResult{ExitCode: 128},
			},
			expectedInside: false,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(repositoryManagerSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			gitExecutor := &scriptedGitExecutor{standardOutput: testCase.executorOutput, executionError: testCase.executorError}
			repositoryManager, creationError := gitrepo.NewRepositoryManager(gitExecutor)
			require.NoError(testInstance, creationError)

			insideWorkTree, checkError := repositoryManager.IsInsideWorkTree(context.Background(), testRepositoryPathConstant)
			if testCase.expectError {
				require.Error(testInstance, checkError)
				return
			}
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedInside, insideWorkTree)
		})
	}
}
