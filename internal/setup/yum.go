package setup

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/acquire"
	"github.com/ralt/repomirror/internal/clientconfig"
	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/repository"
	"github.com/ralt/repomirror/internal/scanner"
)

// YumSource is the upstream of a yum repository
type YumSource struct {
	URL      string
	Metalink bool
	GPGCheck bool
	GPGKey   string

	// ForceMetadata skips the action prompt and rebuilds metadata from scratch
	ForceMetadata bool
}

// YumFromRepo mirrors a yum repository from its upstream. A failed sync
// is fatal and returned as is.
func (m *Manager) YumFromRepo(ctx context.Context, d models.RepositoryDescriptor, src YumSource) error {
	l := m.layout(d)
	log := logrus.WithField("repo", d.ID)

	exists := hasEntries(l.RepoDir)
	action := ActionSyncForceMetadata
	if !src.ForceMetadata {
		var err error
		if action, err = m.ChooseAction(d, l.RepoDir); err != nil {
			return err
		}
	}
	if action == ActionSkip {
		log.Infof("Skipping %s", d.Name)
		return nil
	}

	remote := clientconfig.YumRepo(d, l, clientconfig.Options{
		Variant:  clientconfig.Remote,
		URL:      src.URL,
		Metalink: src.Metalink,
		GPGCheck: src.GPGCheck,
		GPGKey:   src.GPGKey,
	})
	changed, err := clientconfig.WriteFile(m.repoFile(d, clientconfig.Remote), remote)
	if err != nil {
		return models.WithRepo(err, d.ID)
	}

	full := action == ActionSyncForceMetadata || !exists
	if changed {
		log.Infof("Sync source for repository %s has changed", d.ID)
		if err := m.invalidate(d, l); err != nil {
			return models.WithRepo(err, d.ID)
		}
		full = true
	}

	repo, err := repository.New(d, m.Paths.ServerRoot, m.Runner, m.Builder)
	if err != nil {
		return err
	}
	if err := repo.Sync(ctx, src.URL, models.SyncFilter{}); err != nil {
		return err
	}
	if err := repo.BuildMetadata(ctx, !full); err != nil {
		return err
	}

	return m.finishYum(d, l, l.RepoDir)
}

// YumFromArchive stages an installable bundle, extracts it into the
// repository directory and builds metadata over what it contains
func (m *Manager) YumFromArchive(ctx context.Context, d models.RepositoryDescriptor, ref models.SourceReference) error {
	l := m.layout(d)
	log := logrus.WithField("repo", d.ID)

	acq, err := m.Acquirer.Acquire(ctx, d, ref)
	if err != nil {
		return err
	}

	if typ, err := scanner.DetectArchiveType(acq.StagedPath); err == nil && typ == scanner.TypeRpm {
		info, err := acquire.Inspect(acq.StagedPath)
		if err != nil {
			log.Warnf("Unable to read %s: %v", acq.StagedPath, err)
		} else {
			log.Infof("Bundle %s-%s-%s (%s), %d files", info.Name, info.Version, info.Release, info.Architecture, len(info.Files))
			if dirs := info.MetadataDirs(); len(dirs) > 0 {
				log.Debugf("Bundle carries repository metadata in %v", dirs)
			}
		}
	}

	ext, err := m.Acquirer.Extract(ctx, acq.StagedPath, l.RepoDir)
	if err != nil {
		return models.WithRepo(err, d.ID)
	}
	if ext.HasMetadata {
		log.Infof("Repository found in %s", ext.RepoRoot)
	}

	if err := m.Builder.Build(ctx, ext.RepoRoot, false); err != nil {
		return models.WithRepo(err, d.ID)
	}

	return m.finishYum(d, l, ext.RepoRoot)
}

// YumFromDir copies an existing repository tree into place
func (m *Manager) YumFromDir(ctx context.Context, d models.RepositoryDescriptor, srcDir string) error {
	l := m.layout(d)

	replace := false
	if hasEntries(l.RepoDir) {
		ok, err := m.Prompter.Confirm("Directory "+l.RepoDir+" already exists. OK to replace it?", false)
		if err != nil {
			return err
		}
		if !ok {
			logrus.WithField("repo", d.ID).Info("Directory not created")
			return nil
		}
		replace = true
	}

	if err := m.Acquirer.ImportDir(ctx, srcDir, l.RepoDir, replace); err != nil {
		return models.WithRepo(err, d.ID)
	}
	if err := m.Builder.Build(ctx, l.RepoDir, false); err != nil {
		return models.WithRepo(err, d.ID)
	}

	return m.finishYum(d, l, l.RepoDir)
}

// finishYum points this node and the clients at repoDir
func (m *Manager) finishYum(d models.RepositoryDescriptor, l layout.Layout, repoDir string) error {
	local := clientconfig.YumRepo(d, l, clientconfig.Options{Variant: clientconfig.Local, RepoDir: repoDir})
	if _, err := clientconfig.WriteFile(m.repoFile(d, clientconfig.Local), local); err != nil {
		return models.WithRepo(err, d.ID)
	}

	m.Clients.Add(models.ClientConfigDescriptor{
		Filename: clientconfig.YumRepoFilename(d, clientconfig.Client),
		Content: clientconfig.YumRepo(d, l, clientconfig.Options{
			Variant: clientconfig.Client,
			RepoDir: repoDir,
			HostURL: m.Paths.HostURL,
		}),
	})

	logrus.WithField("repo", d.ID).Infof("Repository %s ready in %s", d.Name, repoDir)
	return nil
}

// invalidate drops everything derived from a previous upstream: yum caches,
// generated metadata and the local .repo file
func (m *Manager) invalidate(d models.RepositoryDescriptor, l layout.Layout) error {
	log := logrus.WithField("repo", d.ID)
	cacheDir := filepath.Join(m.Paths.YumCacheDir, d.Arch, releaseDir(d.PlatformVersion), d.ID)

	for _, p := range []struct{ path, what string }{
		{cacheDir, "cache directory"},
		{cacheDir + "-local", "cache directory"},
		{l.MetadataDir, "repodata"},
		{m.repoFile(d, clientconfig.Local), "local .repo"},
	} {
		if err := removeIfExists(log, p.path, p.what); err != nil {
			return err
		}
	}
	return nil
}
