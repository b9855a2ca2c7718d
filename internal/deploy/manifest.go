package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ManifestFileName is the provenance file written to the worktree root on every deploy.
	ManifestFileName = ".docpages.yaml"

	manifestMarshalErrorTemplateConstant = "unable to serialize deployment manifest: %w"
	manifestWriteErrorTemplateConstant   = "unable to write deployment manifest: %w"
	manifestFilePermissionsConstant      = 0o644
)

// Clock supplies the current time for deployment manifests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() Clock {
	return systemClock{}
}

// DeploymentManifest records the provenance of the last published deploy.
type DeploymentManifest struct {
	RemoteName    string    `yaml:"remote"`
	BranchName    string    `yaml:"branch"`
	CommitMessage string    `yaml:"message"`
	BuildTargets  []string  `yaml:"build_targets"`
	DeployedAt    time.Time `yaml:"deployed_at"`
}

// ManifestWriter serializes deployment manifests into worktrees.
type ManifestWriter struct {
	clock Clock
}

// NewManifestWriter constructs a ManifestWriter using the provided clock, defaulting to the system clock.
func NewManifestWriter(clock Clock) *ManifestWriter {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &ManifestWriter{clock: clock}
}

// Write serializes the manifest into the worktree root and returns the written path.
func (writer *ManifestWriter) Write(worktreePath string, manifest DeploymentManifest) (string, error) {
	manifest.DeployedAt = writer.clock.Now().UTC()

	serializedManifest, marshalError := yaml.Marshal(manifest)
	if marshalError != nil {
		return "", fmt.Errorf(manifestMarshalErrorTemplateConstant, marshalError)
	}

	manifestPath := filepath.Join(worktreePath, ManifestFileName)
	if writeError := os.WriteFile(manifestPath, serializedManifest, manifestFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(manifestWriteErrorTemplateConstant, writeError)
	}

	return manifestPath, nil
}
