package setup

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/clientconfig"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/repository/conda"
	"github.com/ralt/repomirror/internal/repository/pypi"
)

// Conda mirrors every channel directory in urls (typically a platform
// directory and its noarch sibling). Each failure is reported; the
// channels that synced still end up in the client .condarc.
func (m *Manager) Conda(ctx context.Context, d models.RepositoryDescriptor, urls []string, filter models.SyncFilter) error {
	if err := filter.Validate(); err != nil {
		return models.WithRepo(err, d.ID)
	}

	l := m.layout(d)
	repo := conda.New(d, l, m.Runner)

	var errs []error
	var channels []string
	for _, u := range urls {
		if err := repo.Sync(ctx, u, filter); err != nil {
			logrus.WithField("repo", d.ID).Errorf("Channel %s: %v", u, err)
			errs = append(errs, err)
			continue
		}
		if ch := channelDir(repo.Destination(u)); !slices.Contains(channels, ch) {
			channels = append(channels, ch)
		}
	}

	if len(channels) > 0 {
		m.Clients.Add(clientconfig.CondaRC(l, m.Paths.HostURL, channels))
	}
	return errors.Join(errs...)
}

var platformDir = regexp.MustCompile(`^(noarch|(linux|osx|win)-\w+)$`)

// channelDir returns the channel root of a platform subdirectory
func channelDir(dir string) string {
	if platformDir.MatchString(filepath.Base(dir)) {
		return filepath.Dir(dir)
	}
	return dir
}

// Pypi downloads packages into the python index. Packages may carry
// version pins.
func (m *Manager) Pypi(ctx context.Context, d models.RepositoryDescriptor, indexURL string, packages []string) error {
	l := m.layout(d)
	repo := pypi.New(d, l, m.Runner)
	repo.Activate = m.PipActivate
	repo.Env = m.PipEnv

	err := repo.Sync(ctx, indexURL, models.SyncFilter{Accept: packages})
	if models.IsType(err, models.ErrInvalidConfig) {
		return err
	}

	m.Clients.Add(clientconfig.PipConf(l, m.Paths.HostURL))
	return err
}
