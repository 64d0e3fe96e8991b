// Package yum mirrors OS package repositories with reposync.
package yum

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/metadata"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/utils"
)

// Repository is a yum repository mirrored from a configured upstream
type Repository struct {
	desc    models.RepositoryDescriptor
	layout  layout.Layout
	runner  runner.Runner
	builder *metadata.Builder
}

// New creates a yum synchronizer
func New(d models.RepositoryDescriptor, l layout.Layout, r runner.Runner, b *metadata.Builder) *Repository {
	return &Repository{desc: d, layout: l, runner: r, builder: b}
}

// Descriptor returns the repository identity
func (y *Repository) Descriptor() models.RepositoryDescriptor { return y.desc }

// Layout returns the repository layout
func (y *Repository) Layout() layout.Layout { return y.layout }

// Sync runs reposync against the upstream configured under the repository
// id in the yum repos directory; source is not consulted. A failed sync is
// fatal.
func (y *Repository) Sync(ctx context.Context, _ string, filter models.SyncFilter) error {
	if err := filter.Validate(); err != nil {
		return models.WithRepo(err, y.desc.ID)
	}

	log := logrus.WithField("repo", y.desc.ID)
	if err := utils.EnsureDir(y.layout.SyncParent); err != nil {
		return models.NewError(models.ErrFileOp, y.desc.ID, err)
	}

	cmd := runner.Join("reposync", "-a", y.desc.Arch, "-r", y.desc.ID, "-p", y.layout.SyncParent, "-l", "-m")

	log.Infof("Syncing %s", y.desc.Name)
	log.Info("This can take many minutes or hours for large repositories")

	res, err := y.runner.Run(ctx, cmd, true)
	if err == nil && !res.Success() {
		err = fmt.Errorf("reposync exited with %d", res.ExitCode)
	}
	if err != nil {
		log.Errorf("Failed %s repo sync: %v", y.desc.Name, err)
		return &models.RepoError{Type: models.ErrSync, Repo: y.desc.ID, Fatal: true, Err: err}
	}

	log.Infof("%s sync finished successfully", y.desc.Name)
	return nil
}

// BuildMetadata runs createrepo over the repository directory
func (y *Repository) BuildMetadata(ctx context.Context, incremental bool) error {
	return models.WithRepo(y.builder.Build(ctx, y.layout.RepoDir, incremental), y.desc.ID)
}
