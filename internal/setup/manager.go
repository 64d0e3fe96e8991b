// Package setup drives a repository setup action from source selection
// to client configuration.
package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/acquire"
	"github.com/ralt/repomirror/internal/clientconfig"
	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/metadata"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/prompt"
	"github.com/ralt/repomirror/internal/runner"
)

// Paths locates the server tree and the system directories yum uses
type Paths struct {
	ServerRoot  string
	YumReposDir string
	YumCacheDir string
	HostURL     string
}

// DefaultPaths returns the stock locations
func DefaultPaths() Paths {
	return Paths{
		ServerRoot:  models.DefaultServerRoot,
		YumReposDir: models.DefaultYumReposDir,
		YumCacheDir: models.DefaultYumCacheDir,
		HostURL:     models.DefaultHostURL,
	}
}

// Action is what to do with a repository during a setup run
type Action int

const (
	ActionSkip Action = iota
	ActionSync
	ActionSyncForceMetadata
)

// String returns the string representation of Action
func (a Action) String() string {
	switch a {
	case ActionSync:
		return "sync"
	case ActionSyncForceMetadata:
		return "sync+force-metadata"
	default:
		return "skip"
	}
}

// Manager owns the collaborators of a setup run and the client
// configuration collected along the way
type Manager struct {
	Paths    Paths
	Runner   runner.Runner
	Acquirer *acquire.Acquirer
	Builder  *metadata.Builder
	Prompter prompt.Prompter
	Clients  *models.ClientConfigSet

	// PipActivate and PipEnv select the conda environment pip runs in
	PipActivate string
	PipEnv      string
}

// NewManager wires a Manager around r and p
func NewManager(paths Paths, r runner.Runner, p prompt.Prompter) *Manager {
	return &Manager{
		Paths:    paths,
		Runner:   r,
		Acquirer: acquire.New(r, paths.ServerRoot),
		Builder:  metadata.NewBuilder(r),
		Prompter: p,
		Clients:  &models.ClientConfigSet{},
	}
}

func (m *Manager) layout(d models.RepositoryDescriptor) layout.Layout {
	return layout.For(m.Paths.ServerRoot, d)
}

// ChooseAction asks whether to create, sync or skip the repository at dir
func (m *Manager) ChooseAction(d models.RepositoryDescriptor, dir string) (Action, error) {
	if !hasEntries(dir) {
		ok, err := m.Prompter.Confirm(fmt.Sprintf("Create a local %s repository at this time?", d.Name), true)
		if err != nil || !ok {
			return ActionSkip, err
		}
		return ActionSync, nil
	}

	idx, err := m.Prompter.Select(fmt.Sprintf("Sync the local %s repository at this time?", d.Name), []string{
		"Yes",
		"No",
		"Sync repository and force recreation of metadata files",
	})
	if err != nil {
		return ActionSkip, err
	}
	switch idx {
	case 0:
		return ActionSync, nil
	case 2:
		return ActionSyncForceMetadata, nil
	default:
		return ActionSkip, nil
	}
}

var sourceURLPattern = regexp.MustCompile(`^(https?|file)://\S+$`)

// ResolveURL lets the operator pick the public mirror or an alternate
// site. Alternate URLs always end with a slash.
func (m *Manager) ResolveURL(d models.RepositoryDescriptor, publicURL, altURL string) (string, error) {
	idx, err := m.Prompter.Select(fmt.Sprintf("Choice for source of %s repository:", d.Name), []string{
		"Public mirror",
		"Alternate web site",
	})
	if err != nil {
		return "", err
	}
	if idx == 0 {
		return publicURL, nil
	}

	if altURL == "" {
		altURL = fmt.Sprintf("http://host/repos/%s/", d.ID)
	}
	u, err := m.Prompter.Input("Enter URL", altURL, func(s string) error {
		if !sourceURLPattern.MatchString(s) {
			return fmt.Errorf("%q is not an http(s) or file URL", s)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}

// SourceFile stages a source file without building a repository
func (m *Manager) SourceFile(ctx context.Context, d models.RepositoryDescriptor, ref models.SourceReference) (*acquire.Acquisition, error) {
	acq, err := m.Acquirer.Acquire(ctx, d, ref)
	if err != nil {
		return nil, err
	}
	logrus.WithField("repo", d.ID).Infof("Source file available at %s", acq.StagedPath)
	return acq, nil
}

// WriteClientConfigs persists the collected client descriptors into dir
func (m *Manager) WriteClientConfigs(dir string) error {
	if m.Clients.Len() == 0 {
		return nil
	}
	return clientconfig.WriteAll(dir, m.Clients)
}

func hasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

// releaseDir turns a platform version such as rhel7 into yum's cache
// directory name for it (7Server)
func releaseDir(platformVersion string) string {
	var digits strings.Builder
	for _, r := range platformVersion {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + "Server"
}

func removeIfExists(log *logrus.Entry, path, what string) error {
	if _, err := os.Lstat(path); err != nil {
		return nil
	}
	log.Infof("Removing existing %s %s", what, path)
	if err := os.RemoveAll(path); err != nil {
		return models.NewError(models.ErrFileOp, "", err)
	}
	return nil
}

func (m *Manager) repoFile(d models.RepositoryDescriptor, v clientconfig.Variant) string {
	return filepath.Join(m.Paths.YumReposDir, clientconfig.YumRepoFilename(d, v))
}
