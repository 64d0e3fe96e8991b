// Package pypi mirrors python packages into a PEP 503 "simple" index.
package pypi

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/utils"
)

// Repository is a python package index mirror
type Repository struct {
	desc   models.RepositoryDescriptor
	layout layout.Layout
	runner runner.Runner

	// Activate and Env, when set, run pip inside a conda environment
	// ("source <Activate> <Env> && pip ...").
	Activate string
	Env      string
}

// IndexResult reports what BuildIndex did
type IndexResult struct {
	Indexed    int
	Mismatches []string
}

// New creates a pypi synchronizer
func New(d models.RepositoryDescriptor, l layout.Layout, r runner.Runner) *Repository {
	return &Repository{desc: d, layout: l, runner: r}
}

// Descriptor returns the repository identity
func (p *Repository) Descriptor() models.RepositoryDescriptor { return p.desc }

// Layout returns the repository layout
func (p *Repository) Layout() layout.Layout { return p.layout }

// Sync downloads the packages named by filter.Accept (pins allowed, e.g.
// Keras==2.0.5) plus their dependencies, from source when it is set or
// from the default index otherwise. The index is rebuilt even when the
// download fails.
func (p *Repository) Sync(ctx context.Context, source string, filter models.SyncFilter) error {
	if err := filter.Validate(); err != nil {
		return models.WithRepo(err, p.desc.ID)
	}
	if len(filter.Reject) > 0 {
		return models.NewError(models.ErrInvalidConfig, p.desc.ID, fmt.Errorf("python repositories take a package list, not a reject list"))
	}
	if len(filter.Accept) == 0 {
		return models.NewError(models.ErrInvalidConfig, p.desc.ID, fmt.Errorf("no packages to download"))
	}

	cmd, err := p.downloadCommand(source, filter.Accept)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(p.layout.RepoDir); err != nil {
		return models.NewError(models.ErrFileOp, p.desc.ID, err)
	}

	log := logrus.WithField("repo", p.desc.ID)
	log.Infof("Downloading %d python packages plus dependencies: %s", len(filter.Accept), strings.Join(filter.Accept, " "))

	var syncErr error
	res, err := p.runner.Run(ctx, cmd, false)
	switch {
	case err != nil:
		syncErr = err
	case !res.Success():
		log.Errorf("Error downloading python packages\nResp: %s\nRet code: %d\nerr: %s", res.Stdout, res.ExitCode, res.Stderr)
		syncErr = fmt.Errorf("pip download exited with %d", res.ExitCode)
	}

	if _, err := p.BuildIndex(); err != nil {
		return err
	}
	if syncErr != nil {
		return models.NewError(models.ErrSync, p.desc.ID, syncErr)
	}
	return nil
}

func (p *Repository) downloadCommand(source string, packages []string) (string, error) {
	var b strings.Builder
	if p.Activate != "" {
		fmt.Fprintf(&b, "source %s && ", runner.Join(p.Activate, p.Env))
	}

	args := []string{"pip", "download", "-d", p.layout.RepoDir}
	if source != "" {
		u, err := url.Parse(source)
		if err != nil || u.Host == "" {
			return "", models.NewError(models.ErrInvalidConfig, p.desc.ID, fmt.Errorf("invalid index url %q", source))
		}
		args = append(args, "--index-url="+source, "--trusted-host", u.Hostname())
	}
	args = append(args, packages...)

	b.WriteString(runner.Join(args...))
	return b.String(), nil
}

// BuildMetadata rebuilds the simple index
func (p *Repository) BuildMetadata(_ context.Context, _ bool) error {
	_, err := p.BuildIndex()
	return err
}

var namePattern = regexp.MustCompile(`^([-_+\w.]+)-\d+\.\d+`)

// CanonicalName derives the normalized project name from a distribution
// file name: the longest prefix followed by a version, lowercased, with
// dots and underscores turned into dashes.
func CanonicalName(filename string) (string, error) {
	m := namePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", models.NewError(models.ErrParseMismatch, "", fmt.Errorf("no project name in %q", filename))
	}

	name := strings.ToLower(m[1])
	name = strings.NewReplacer(".", "-", "_", "-").Replace(name)
	return name, nil
}

// BuildIndex links every downloaded distribution into simple/<name>/.
// Files whose name cannot be parsed are reported and skipped.
func (p *Repository) BuildIndex() (*IndexResult, error) {
	log := logrus.WithField("repo", p.desc.ID)

	repoDir, err := filepath.Abs(p.layout.RepoDir)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, p.desc.ID, err)
	}
	if err := utils.EnsureDir(p.layout.MetadataDir); err != nil {
		return nil, models.NewError(models.ErrFileOp, p.desc.ID, err)
	}

	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return nil, models.NewError(models.ErrFileOp, p.desc.ID, err)
	}

	result := &IndexResult{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}

		name, err := CanonicalName(e.Name())
		if err != nil {
			log.Errorf("mismatch: %s. There was a problem entering %s into the python package index", e.Name(), e.Name())
			result.Mismatches = append(result.Mismatches, e.Name())
			continue
		}

		projectDir := filepath.Join(p.layout.MetadataDir, name)
		if err := utils.EnsureDir(projectDir); err != nil {
			return nil, models.NewError(models.ErrFileOp, p.desc.ID, err)
		}

		link := filepath.Join(projectDir, e.Name())
		if !utils.Exists(link) {
			if err := os.Symlink(filepath.Join(repoDir, e.Name()), link); err != nil {
				return nil, models.NewError(models.ErrFileOp, p.desc.ID, err)
			}
		}
		result.Indexed++
	}

	log.Infof("A total of %d packages exist or were added to the python package repository", result.Indexed)
	return result, nil
}
