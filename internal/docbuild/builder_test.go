package docbuild_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/docpages/internal/docbuild"
	"github.com/temirov/docpages/internal/execshell"
)

const (
	builderSubtestNameTemplateConstant = "%d_%s"
	testBuildRepositoryPathConstant    = "/tmp/docs-repo"
	testCustomTargetConstant           = "html"
	caseDefaultTargetsConstant         = "default_targets_run_in_order"
	caseCustomTargetsConstant          = "custom_targets_run_in_order"
	caseFailureStopsRunConstant        = "failure_stops_remaining_targets"
	caseMissingRepositoryConstant      = "missing_repository_path"
)

type scriptedMakeExecutor struct {
	executedTargets []string
	failingTarget   string
}

func (executor *scriptedMakeExecutor) ExecuteMake(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executedTarget := ""
	if len(details.Arguments) > 0 {
		executedTarget = details.Arguments[0]
	}
	executor.executedTargets = append(executor.executedTargets, executedTarget)
	if executedTarget == executor.failingTarget {
		failedCommand := execshell.ShellCommand{Name: execshell.CommandMake, Details: details}
		return execshell.ExecutionResult{ExitCode: 2}, execshell.CommandFailedError{Command: failedCommand, Result: execshell.ExecutionResult{ExitCode: 2}}
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewBuilderRequiresExecutor(testInstance *testing.T) {
	builderInstance, creationError := docbuild.NewBuilder(nil)
	require.ErrorIs(testInstance, creationError, docbuild.ErrMakeExecutorNotConfigured)
	require.Nil(testInstance, builderInstance)
}

func TestBuilderBuild(testInstance *testing.T) {
	testCases := []struct {
		name                    string
		repositoryPath          string
		requestedTargets        []string
		failingTarget           string
		expectError             bool
		expectedExecutedTargets []string
		expectedResultTargets   []string
	}{
		{
			name:                    caseDefaultTargetsConstant,
			repositoryPath:          testBuildRepositoryPathConstant,
			requestedTargets:        nil,
			expectedExecutedTargets: []string{docbuild.DefaultCleanTargetConstant, docbuild.DefaultDocTargetConstant},
			expectedResultTargets:   []string{docbuild.DefaultCleanTargetConstant, docbuild.DefaultDocTargetConstant},
		},
		{
			name:                    caseCustomTargetsConstant,
			repositoryPath:          testBuildRepositoryPathConstant,
			requestedTargets:        []string{testCustomTargetConstant},
			expectedExecutedTargets: []string{testCustomTargetConstant},
			expectedResultTargets:   []string{testCustomTargetConstant},
		},
		{
			name:                    caseFailureStopsRunConstant,
			repositoryPath:          testBuildRepositoryPathConstant,
			requestedTargets:        nil,
			failingTarget:           docbuild.DefaultCleanTargetConstant,
			expectError:             true,
			expectedExecutedTargets: []string{docbuild.DefaultCleanTargetConstant},
			expectedResultTargets:   []string{},
		},
		{
			name:                    caseMissingRepositoryConstant,
			repositoryPath:          "  ",
			requestedTargets:        nil,
			expectError:             true,
			expectedExecutedTargets: nil,
			expectedResultTargets:   nil,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(builderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			makeExecutor := &scriptedMakeExecutor{failingTarget: testCase.failingTarget}
			builderInstance, creationError := docbuild.NewBuilder(makeExecutor)
			require.NoError(testInstance, creationError)

			buildResult, buildError := builderInstance.Build(context.Background(), docbuild.BuildOptions{
				RepositoryPath: testCase.repositoryPath,
				Targets:        testCase.requestedTargets,
			})

			if testCase.expectError {
				require.Error(testInstance, buildError)
			} else {
				require.NoError(testInstance, buildError)
			}

			require.Equal(testInstance, testCase.expectedExecutedTargets, makeExecutor.executedTargets)
			if testCase.expectedResultTargets == nil {
				require.Empty(testInstance, buildResult.ExecutedTargets)
			} else {
				require.Equal(testInstance, testCase.expectedResultTargets, buildResult.ExecutedTargets)
			}
		})
	}
}
