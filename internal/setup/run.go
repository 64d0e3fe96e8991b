package setup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/models"
)

// PathsFromConfig returns the system paths a configuration file selects
func PathsFromConfig(cfg *models.Config) Paths {
	return Paths{
		ServerRoot:  cfg.ServerRoot,
		YumReposDir: cfg.YumReposDir,
		YumCacheDir: cfg.YumCacheDir,
		HostURL:     cfg.HostURL,
	}
}

// RunConfig sets up every repository of cfg in id order. A fatal error
// stops the run; other failures are collected and returned together once
// every repository has been attempted.
func (m *Manager) RunConfig(ctx context.Context, cfg *models.Config) error {
	if err := cfg.Check(); err != nil {
		return err
	}

	var errs []error
	for _, id := range cfg.RepoIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := m.setupOne(ctx, id, cfg.Repos[id])
		if err == nil {
			continue
		}
		if models.IsFatal(err) {
			return err
		}
		logrus.WithField("repo", id).Errorf("Setup failed: %v", err)
		errs = append(errs, err)
	}

	if cfg.ClientConfigDir != "" {
		if err := m.WriteClientConfigs(cfg.ClientConfigDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) setupOne(ctx context.Context, id string, rc *models.RepositoryConfig) error {
	d, err := rc.Descriptor(id)
	if err != nil {
		return err
	}
	logrus.WithField("repo", id).Infof("Setting up the %s repository", d.Name)

	switch d.Type {
	case models.TypeOSPackage:
		switch rc.SourceKind() {
		case models.SourceRepo:
			return m.YumFromRepo(ctx, d, YumSource{
				URL:           rc.URL,
				Metalink:      rc.Metalink,
				GPGCheck:      rc.GPGCheck,
				GPGKey:        rc.GPGKey,
				ForceMetadata: rc.ForceMetadata,
			})
		case models.SourceArchive:
			return m.YumFromArchive(ctx, d, archiveReference(rc))
		case models.SourceDir:
			return m.YumFromDir(ctx, d, rc.Path)
		}
	case models.TypeArchiveIndex:
		return m.Conda(ctx, d, rc.ChannelURLs(), rc.Filter())
	case models.TypeLanguagePackage:
		return m.Pypi(ctx, d, rc.URL, rc.Packages)
	}
	return models.NewError(models.ErrInvalidConfig, id, fmt.Errorf("nothing to do for source %q", rc.Source))
}

// archiveReference prefers a local path over a download URL
func archiveReference(rc *models.RepositoryConfig) models.SourceReference {
	glob := rc.FileGlob
	if rc.Path != "" {
		if glob == "" {
			glob = filepath.Base(rc.Path)
		}
		return models.SourceReference{Origin: models.OriginLocalPath, Location: rc.Path, FileGlob: glob}
	}
	return models.SourceReference{Origin: models.OriginRemoteURL, Location: rc.URL, FileGlob: glob}
}
