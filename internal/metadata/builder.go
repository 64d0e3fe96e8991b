// Package metadata regenerates yum repository metadata.
package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/signer"
)

// Builder runs createrepo over a repository directory
type Builder struct {
	Runner runner.Runner

	// Signer, when set, signs repodata/repomd.xml after every successful build
	Signer signer.Signer
}

// NewBuilder creates a Builder without signing
func NewBuilder(r runner.Runner) *Builder {
	return &Builder{Runner: r}
}

// Build (re)generates repoDir/repodata. An incremental build reuses the
// existing metadata. A failed build leaves the directory untouched.
func (b *Builder) Build(ctx context.Context, repoDir string, incremental bool) error {
	log := logrus.WithField("dir", repoDir)

	args := []string{"createrepo", "-v"}
	if incremental {
		args = append(args, "--update")
	}
	args = append(args, repoDir)
	cmd := runner.Join(args...)

	log.Infof("Generating repository metadata (incremental=%t)", incremental)
	res, err := b.Runner.Run(ctx, cmd, false)
	if err != nil {
		return models.NewError(models.ErrMetadata, "", err)
	}
	if !res.Success() {
		log.Errorf("createrepo exited with %d: %s", res.ExitCode, res.Stderr)
		return models.NewError(models.ErrMetadata, "",
			fmt.Errorf("createrepo exited with %d: %s", res.ExitCode, res.Stderr))
	}

	if b.Signer == nil {
		return nil
	}

	repomd := filepath.Join(repoDir, "repodata", "repomd.xml")
	if _, err := os.Stat(repomd); err != nil {
		return models.NewError(models.ErrMetadata, "", fmt.Errorf("cannot sign metadata: %w", err))
	}
	if _, err := signer.SignFile(b.Signer, repomd); err != nil {
		return models.NewError(models.ErrMetadata, "", err)
	}
	log.Info("Signed repomd.xml")
	return nil
}
