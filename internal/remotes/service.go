package remotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/docpages/internal/execshell"
	"github.com/temirov/docpages/internal/gitrepo"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	invalidInputTemplateConstant            = "%s: %s"
	requiredValueMessageConstant            = "value required"
	repositoryPathFieldNameConstant         = "repository path"
	remoteNameFieldNameConstant             = "remote name"
	remoteURLFieldNameConstant              = "remote url"
	remoteURLValidationTemplateConstant     = "invalid remote url %s: %w"
	remoteAdditionErrorTemplateConstant     = "unable to add remote %s: %w"
	remoteUpdateErrorTemplateConstant       = "unable to update remote %s: %w"
	remoteMismatchTemplateConstant          = "remote %s already points at %s, requested %s"
	remoteAddedMessageConstant              = "Registered remote"
	remoteUpdatedMessageConstant            = "Updated remote"
	remoteAlreadyConfiguredMessageConstant  = "Remote already configured"
	logFieldRemoteNameConstant              = "remote"
	logFieldRemoteURLConstant               = "url"
)

// ErrRepositoryManagerNotConfigured indicates Service construction without a repository manager.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// GitRepositoryManager exposes the repository operations remote setup needs.
type GitRepositoryManager interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
}

// InvalidInputError reports a missing or malformed remote setup option.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// RemoteMismatchError reports an existing remote configured with a different URL.
type RemoteMismatchError struct {
	RemoteName   string
	ExistingURL  string
	RequestedURL string
}

// Error describes the conflicting remote configuration.
func (mismatchError RemoteMismatchError) Error() string {
	return fmt.Sprintf(remoteMismatchTemplateConstant, mismatchError.RemoteName, mismatchError.ExistingURL, mismatchError.RequestedURL)
}

// SetupOptions configures a remote registration request.
type SetupOptions struct {
	RepositoryPath string
	RemoteName     string
	RemoteURL      string
	UpdateExisting bool
}

// SetupResult reports the outcome of a remote registration request.
type SetupResult struct {
	RemoteName        string
	RemoteURL         string
	Added             bool
	Updated           bool
	AlreadyConfigured bool
}

// ServiceDependencies enumerates collaborators required by the remote setup service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager GitRepositoryManager
}

// Service registers named remotes idempotently.
type Service struct {
	logger            *zap.Logger
	repositoryManager GitRepositoryManager
}

// NewService validates dependencies and constructs a remote setup service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, repositoryManager: dependencies.RepositoryManager}, nil
}

// Setup validates the remote URL and registers the remote when it is not already configured.
func (service *Service) Setup(executionContext context.Context, options SetupOptions) (SetupResult, error) {
	if len(strings.TrimSpace(options.RepositoryPath)) == 0 {
		return SetupResult{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		return SetupResult{}, InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRemoteURL := strings.TrimSpace(options.RemoteURL)
	if len(trimmedRemoteURL) == 0 {
		return SetupResult{}, InvalidInputError{FieldName: remoteURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	parsedRequestedURL, parseError := gitrepo.ParseRemoteURL(trimmedRemoteURL)
	if parseError != nil {
		return SetupResult{}, fmt.Errorf(remoteURLValidationTemplateConstant, trimmedRemoteURL, parseError)
	}

	existingURL, lookupError := service.repositoryManager.GetRemoteURL(executionContext, options.RepositoryPath, options.RemoteName)
	if lookupError != nil {
		var commandFailure execshell.CommandFailedError
		if !errors.As(lookupError, &commandFailure) {
			return SetupResult{}, lookupError
		}
		return service.addRemote(executionContext, options, trimmedRemoteURL)
	}

	if remoteURLsEquivalent(strings.TrimSpace(existingURL), trimmedRemoteURL, parsedRequestedURL) {
		service.logger.Info(
			remoteAlreadyConfiguredMessageConstant,
			zap.String(logFieldRemoteNameConstant, options.RemoteName),
			zap.String(logFieldRemoteURLConstant, trimmedRemoteURL),
		)
		return SetupResult{RemoteName: options.RemoteName, RemoteURL: trimmedRemoteURL, AlreadyConfigured: true}, nil
	}

	if options.UpdateExisting {
		return service.updateRemote(executionContext, options, trimmedRemoteURL)
	}

	return SetupResult{}, RemoteMismatchError{
		RemoteName:   options.RemoteName,
		ExistingURL:  strings.TrimSpace(existingURL),
		RequestedURL: trimmedRemoteURL,
	}
}

// remoteURLsEquivalent compares the configured URL against the requested one,
// tolerating cosmetic differences such as a dropped .git suffix.
func remoteURLsEquivalent(existingURL string, requestedURL string, parsedRequestedURL gitrepo.RemoteURL) bool {
	if existingURL == requestedURL {
		return true
	}

	parsedExistingURL, existingParseError := gitrepo.ParseRemoteURL(existingURL)
	if existingParseError != nil {
		return false
	}
	canonicalExistingURL, existingFormatError := gitrepo.FormatRemoteURL(parsedExistingURL)
	if existingFormatError != nil {
		return false
	}
	canonicalRequestedURL, requestedFormatError := gitrepo.FormatRemoteURL(parsedRequestedURL)
	if requestedFormatError != nil {
		return false
	}
	return canonicalExistingURL == canonicalRequestedURL
}

func (service *Service) addRemote(executionContext context.Context, options SetupOptions, remoteURL string) (SetupResult, error) {
	if additionError := service.repositoryManager.AddRemote(executionContext, options.RepositoryPath, options.RemoteName, remoteURL); additionError != nil {
		return SetupResult{}, fmt.Errorf(remoteAdditionErrorTemplateConstant, options.RemoteName, additionError)
	}

	service.logger.Info(
		remoteAddedMessageConstant,
		zap.String(logFieldRemoteNameConstant, options.RemoteName),
		zap.String(logFieldRemoteURLConstant, remoteURL),
	)
	return SetupResult{RemoteName: options.RemoteName, RemoteURL: remoteURL, Added: true}, nil
}

func (service *Service) updateRemote(executionContext context.Context, options SetupOptions, remoteURL string) (SetupResult, error) {
	if updateError := service.repositoryManager.SetRemoteURL(executionContext, options.RepositoryPath, options.RemoteName, remoteURL); updateError != nil {
		return SetupResult{}, fmt.Errorf(remoteUpdateErrorTemplateConstant, options.RemoteName, updateError)
	}

	service.logger.Info(
		remoteUpdatedMessageConstant,
		zap.String(logFieldRemoteNameConstant, options.RemoteName),
		zap.String(logFieldRemoteURLConstant, remoteURL),
	)
	return SetupResult{RemoteName: options.RemoteName, RemoteURL: remoteURL, Updated: true}, nil
}
