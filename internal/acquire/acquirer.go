// Package acquire brings source files and bundles into a repository's
// staging area and unpacks them.
package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/scanner"
	"github.com/ralt/repomirror/internal/utils"
)

// Acquirer fetches source files into staging directories
type Acquirer struct {
	Runner     runner.Runner
	ServerRoot string

	// Progress shows a progress bar while copying local files
	Progress bool

	// Native expands RPM payloads in-process instead of rpm2cpio | cpio
	Native bool
}

// Acquisition describes a file made available in staging
type Acquisition struct {
	// SourcePath is where the file came from (URL or local path)
	SourcePath string
	// StagedPath is the file (or directory) inside the staging area
	StagedPath string
	// Reused is set when a previously staged file satisfied the request
	Reused bool
}

// New creates an Acquirer rooted at serverRoot
func New(r runner.Runner, serverRoot string) *Acquirer {
	return &Acquirer{Runner: r, ServerRoot: serverRoot}
}

// Acquire makes the source described by ref available under the staging
// directory of d. When ref.FileGlob already matches a staged file nothing
// is downloaded or copied.
func (a *Acquirer) Acquire(ctx context.Context, d models.RepositoryDescriptor, ref models.SourceReference) (*Acquisition, error) {
	l := layout.For(a.ServerRoot, d)
	log := logrus.WithField("repo", d.ID)

	if ref.FileGlob != "" {
		found, err := scanner.FindFirstFile(ctx, l.StagingDir, ref.FileGlob)
		if err != nil {
			return nil, models.NewError(models.ErrAcquisition, d.ID, err)
		}
		if found != "" {
			log.Infof("Using previously staged %s", found)
			return &Acquisition{SourcePath: found, StagedPath: found, Reused: true}, nil
		}
	}

	switch ref.Origin {
	case models.OriginRemoteURL:
		return a.download(ctx, d, l, ref)
	case models.OriginLocalPath:
		return a.copyLocal(ctx, d, l, ref)
	case models.OriginAlreadyStaged:
		return nil, models.NewError(models.ErrAcquisition, d.ID,
			fmt.Errorf("no file matching %q staged in %s", ref.FileGlob, l.StagingDir))
	default:
		return nil, models.NewError(models.ErrInvalidConfig, d.ID, fmt.Errorf("unknown source origin %s", ref.Origin))
	}
}

func (a *Acquirer) download(ctx context.Context, d models.RepositoryDescriptor, l layout.Layout, ref models.SourceReference) (*Acquisition, error) {
	log := logrus.WithField("repo", d.ID)

	if ref.Location == "" {
		return nil, models.NewError(models.ErrInvalidConfig, d.ID, fmt.Errorf("source URL is empty"))
	}
	if err := utils.EnsureDir(l.StagingDir); err != nil {
		return nil, models.NewError(models.ErrFileOp, d.ID, err)
	}

	args := []string{"wget", "-r", "-l", "1", "-nH", "-np", "--cut-dirs=1"}
	if ref.FileGlob != "" {
		args = append(args, "-A", ref.FileGlob)
	}
	args = append(args, "-P", l.StagingDir, ref.Location)
	cmd := runner.Join(args...)

	log.Infof("Downloading %s", ref.Location)
	res, err := a.Runner.Run(ctx, cmd, true)
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, d.ID, err)
	}
	if !res.Success() {
		log.Errorf("Download failed: %s (exit %d): %s", cmd, res.ExitCode, res.Stderr)
		return nil, models.NewError(models.ErrAcquisition, d.ID,
			fmt.Errorf("download of %s exited with %d", ref.Location, res.ExitCode))
	}

	staged := l.StagingDir
	if ref.FileGlob != "" {
		found, err := scanner.FindFirstFile(ctx, l.StagingDir, ref.FileGlob)
		if err != nil {
			return nil, models.NewError(models.ErrAcquisition, d.ID, err)
		}
		if found == "" {
			return nil, models.NewError(models.ErrAcquisition, d.ID,
				fmt.Errorf("no file matching %q found at %s", ref.FileGlob, ref.Location))
		}
		staged = found
	}

	return &Acquisition{SourcePath: ref.Location, StagedPath: staged}, nil
}

func (a *Acquirer) copyLocal(ctx context.Context, d models.RepositoryDescriptor, l layout.Layout, ref models.SourceReference) (*Acquisition, error) {
	log := logrus.WithField("repo", d.ID)

	matches, err := filepath.Glob(ref.Location)
	if err != nil {
		return nil, models.NewError(models.ErrInvalidConfig, d.ID, fmt.Errorf("invalid source path %q: %w", ref.Location, err))
	}
	if len(matches) == 0 {
		return nil, models.NewError(models.ErrAcquisition, d.ID, fmt.Errorf("no file found at %s", ref.Location))
	}

	opts := utils.CopyOptions{Progress: a.Progress}
	var first, firstMatch string
	reused := true

	for _, src := range matches {
		if err := ctx.Err(); err != nil {
			return nil, models.NewError(models.ErrAcquisition, d.ID, err)
		}

		info, err := os.Stat(src)
		if err != nil {
			return nil, models.NewError(models.ErrAcquisition, d.ID, err)
		}

		dst := filepath.Join(l.StagingDir, filepath.Base(src))

		if info.IsDir() {
			log.Infof("Copying %s to %s", src, dst)
			n, err := utils.CopyTree(src, dst, opts)
			if err != nil {
				return nil, models.NewError(models.ErrAcquisition, d.ID, fmt.Errorf("copy of %s failed: %w", src, err))
			}
			if n > 0 {
				reused = false
			}
		} else {
			// also false when src already is the staged file
			needsCopy, err := utils.ShouldCopy(src, dst)
			if err != nil {
				return nil, models.NewError(models.ErrAcquisition, d.ID, err)
			}
			if needsCopy {
				log.Infof("Copying %s to %s", src, dst)
				if err := utils.CopyFile(src, dst, opts); err != nil {
					return nil, models.NewError(models.ErrAcquisition, d.ID, fmt.Errorf("copy of %s failed: %w", src, err))
				}
				reused = false
			} else {
				log.Infof("%s is already staged", dst)
			}
		}

		if first == "" {
			first = dst
		}
		if firstMatch == "" && ref.FileGlob != "" {
			if ok, _ := filepath.Match(ref.FileGlob, filepath.Base(src)); ok {
				firstMatch = dst
			}
		}
	}

	staged := first
	if firstMatch != "" {
		staged = firstMatch
	}
	return &Acquisition{SourcePath: ref.Location, StagedPath: staged, Reused: reused}, nil
}
