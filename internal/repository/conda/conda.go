// Package conda mirrors conda channels and repairs their HTML listings.
package conda

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/scanner"
	"github.com/ralt/repomirror/internal/utils"
)

const pkgsMarker = "/pkgs/"

// discoveryFiles must always be mirrored for a channel to be usable
var discoveryFiles = []string{"index.html", "repodata.json", "repodata.json.bz2"}

// Repository is a conda channel mirror
type Repository struct {
	desc   models.RepositoryDescriptor
	layout layout.Layout
	runner runner.Runner
}

// New creates a conda synchronizer
func New(d models.RepositoryDescriptor, l layout.Layout, r runner.Runner) *Repository {
	return &Repository{desc: d, layout: l, runner: r}
}

// Descriptor returns the repository identity
func (c *Repository) Descriptor() models.RepositoryDescriptor { return c.desc }

// Layout returns the repository layout
func (c *Repository) Layout() layout.Layout { return c.layout }

// Sync mirrors one channel directory from an http(s) URL, a file:// URL or
// an absolute path. On success the channel's index.html is rewritten to
// list only the files actually mirrored.
func (c *Repository) Sync(ctx context.Context, source string, filter models.SyncFilter) error {
	if err := filter.Validate(); err != nil {
		return models.WithRepo(err, c.desc.ID)
	}

	log := logrus.WithField("repo", c.desc.ID)

	var (
		dest string
		cmd  string
	)
	switch {
	case isNetwork(source):
		dest = c.Destination(source)
		cmd = c.wgetCommand(source, filter)
	case isLocal(source):
		dest = c.Destination(source)
		cmd = runner.Join("rsync", "-uaPv", rsyncSource(source), dest)
	default:
		return models.NewError(models.ErrInvalidConfig, c.desc.ID, fmt.Errorf("unsupported channel source %q", source))
	}

	if err := utils.EnsureDir(dest); err != nil {
		return models.NewError(models.ErrFileOp, c.desc.ID, err)
	}

	log.Infof("Syncing %s from %s", c.desc.Name, source)
	log.Info("This can take many minutes or hours for large repositories")

	res, err := c.runner.Run(ctx, cmd, true)
	if err == nil && !res.Success() {
		err = fmt.Errorf("%s exited with %d: %s", strings.Fields(cmd)[0], res.ExitCode, res.Stderr)
	}
	if err != nil {
		log.Errorf("Error syncing %s: %v", source, err)
		return models.NewError(models.ErrSync, c.desc.ID, err)
	}
	log.Infof("%s sync finished successfully", c.desc.Name)

	if _, err := c.repair(dest); err != nil {
		return err
	}
	return nil
}

// BuildMetadata repairs every channel listing under the repository directory
func (c *Repository) BuildMetadata(ctx context.Context, _ bool) error {
	listings, err := scanner.FindFiles(ctx, c.layout.RepoDir, "index.html")
	if err != nil {
		return models.NewError(models.ErrFileOp, c.desc.ID, err)
	}
	for _, listing := range listings {
		if _, err := c.repair(filepath.Dir(listing)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Repository) repair(dir string) (int, error) {
	if !utils.Exists(filepath.Join(dir, "index.html")) {
		logrus.WithField("repo", c.desc.ID).Warnf("No listing in %s", dir)
		return 0, nil
	}

	kept, err := RepairListing(dir)
	if err != nil {
		return 0, models.NewError(models.ErrFileOp, c.desc.ID, fmt.Errorf("failed to repair listing in %s: %w", dir, err))
	}
	logrus.WithField("repo", c.desc.ID).Infof("Listing in %s now shows %d files", dir, kept)
	return kept, nil
}

// Destination returns the directory a channel source is mirrored into
func (c *Repository) Destination(source string) string {
	repoDir := c.layout.RepoDir

	if isNetwork(source) {
		if i := strings.Index(source, pkgsMarker); i >= 0 {
			return filepath.Join(repoDir, source[i:])
		}
		u, err := url.Parse(source)
		if err != nil {
			return repoDir
		}
		return filepath.Join(repoDir, u.Path)
	}

	src := strings.TrimPrefix(source, "file://")
	switch {
	case strings.Contains(src, pkgsMarker):
		return filepath.Join(repoDir, src[strings.Index(src, pkgsMarker):])
	case strings.Contains(src, repoDir):
		return filepath.Clean(src[strings.Index(src, repoDir):])
	default:
		return filepath.Join(repoDir, src)
	}
}

// CutDirs returns how many leading path components wget drops so that the
// channel lands under RepoDir/pkgs
func CutDirs(source string) int {
	rest := source
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, pkgsMarker)
	if i < 0 {
		return 0
	}
	return strings.Count(rest[:i], "/")
}

func (c *Repository) wgetCommand(source string, filter models.SyncFilter) string {
	args := []string{"wget", "-m", "-nH", fmt.Sprintf("--cut-dirs=%d", CutDirs(source))}

	switch {
	case len(filter.Accept) > 0:
		accept := slices.Clone(filter.Accept)
		for _, f := range discoveryFiles {
			if !slices.Contains(accept, f) {
				accept = append(accept, f)
			}
		}
		args = append(args, "--accept", strings.Join(accept, ","))
	case len(filter.Reject) > 0:
		args = append(args, "--reject", strings.Join(filter.Reject, ","))
	}

	args = append(args, "-P", c.layout.RepoDir, source)
	return runner.Join(args...)
}

// rsyncSource turns a local channel source into a directory-contents
// argument, so rsync fills dest instead of nesting the directory inside it.
func rsyncSource(source string) string {
	return strings.TrimRight(strings.TrimPrefix(source, "file://"), "/") + "/"
}

func isNetwork(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isLocal(source string) bool {
	return strings.HasPrefix(source, "file://") || filepath.IsAbs(source)
}
