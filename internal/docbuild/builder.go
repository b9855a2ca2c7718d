package docbuild

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/docpages/internal/execshell"
)

const (
	makeExecutorMissingMessageConstant     = "make executor not configured"
	buildTargetFailedErrorTemplateConstant = "build target %s failed: %w"
	repositoryPathFieldNameConstant        = "repository path"
	invalidBuildInputTemplateConstant      = "%s: %s"
	requiredValueMessageConstant           = "value required"
)

// Default build targets executed when no targets are configured.
const (
	DefaultCleanTargetConstant = "clean"
	DefaultDocTargetConstant   = "doc"
)

// ErrMakeExecutorNotConfigured indicates Builder construction without an executor.
var ErrMakeExecutorNotConfigured = errors.New(makeExecutorMissingMessageConstant)

// MakeExecutor exposes the subset of shell execution used by documentation builds.
type MakeExecutor interface {
	ExecuteMake(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidBuildInputError reports a missing or malformed build request field.
type InvalidBuildInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid build input.
func (inputError InvalidBuildInputError) Error() string {
	return fmt.Sprintf(invalidBuildInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// BuildOptions configures a documentation build run.
type BuildOptions struct {
	RepositoryPath string
	Targets        []string
}

// BuildResult reports the make targets executed during a build run.
type BuildResult struct {
	ExecutedTargets []string
}

// Builder executes documentation build targets through make.
type Builder struct {
	executor MakeExecutor
}

// NewBuilder constructs a Builder backed by the provided make executor.
func NewBuilder(executor MakeExecutor) (*Builder, error) {
	if executor == nil {
		return nil, ErrMakeExecutorNotConfigured
	}
	return &Builder{executor: executor}, nil
}

// DefaultTargets returns the build targets applied when none are configured.
func DefaultTargets() []string {
	return []string{DefaultCleanTargetConstant, DefaultDocTargetConstant}
}

// Build runs each requested make target in order, stopping at the first failure.
func (builder *Builder) Build(executionContext context.Context, options BuildOptions) (BuildResult, error) {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return BuildResult{}, InvalidBuildInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	buildTargets := options.Targets
	if len(buildTargets) == 0 {
		buildTargets = DefaultTargets()
	}

	buildResult := BuildResult{ExecutedTargets: make([]string, 0, len(buildTargets))}
	for _, buildTarget := range buildTargets {
		_, buildError := builder.executor.ExecuteMake(executionContext, execshell.CommandDetails{
			Arguments:        []string{buildTarget},
			WorkingDirectory: options.RepositoryPath,
		})
		if buildError != nil {
			return buildResult, fmt.Errorf(buildTargetFailedErrorTemplateConstant, buildTarget, buildError)
		}
		buildResult.ExecutedTargets = append(buildResult.ExecutedTargets, buildTarget)
	}

	return buildResult, nil
}
