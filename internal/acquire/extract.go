package acquire

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/scanner"
)

// Extraction is the result of unpacking a bundle
type Extraction struct {
	// RepoRoot is the directory holding a ready-made repodata/ when the
	// bundle carried one, otherwise the extraction directory.
	RepoRoot    string
	HasMetadata bool
}

// Extract unpacks archivePath into destDir and looks for an embedded
// yum repository.
func (a *Acquirer) Extract(ctx context.Context, archivePath, destDir string) (*Extraction, error) {
	archivePath, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", err)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, models.NewError(models.ErrFileOp, "", err)
	}

	typ, err := scanner.DetectArchiveType(archivePath)
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", fmt.Errorf("failed to read %s: %w", archivePath, err))
	}
	logrus.Infof("Extracting %s (%s) into %s", archivePath, typ, destDir)

	switch {
	case typ == scanner.TypeRpm && a.Native:
		err = expandRpm(archivePath, destDir)
	case typ == scanner.TypeRpm:
		err = a.extractRpm(ctx, archivePath, destDir)
	case typ.IsTar():
		err = extractTar(archivePath, destDir, typ)
	default:
		err = fmt.Errorf("unsupported archive %s", filepath.Base(archivePath))
	}
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", err)
	}

	repodata, err := scanner.FindFirstDir(ctx, destDir, "repodata")
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", err)
	}
	if repodata == "" {
		return &Extraction{RepoRoot: destDir}, nil
	}

	logrus.Infof("Found repository metadata in %s", repodata)
	return &Extraction{RepoRoot: filepath.Dir(repodata), HasMetadata: true}, nil
}

func (a *Acquirer) extractRpm(ctx context.Context, archivePath, destDir string) error {
	cmd := fmt.Sprintf("cd %s && rpm2cpio %s | cpio -idv", runner.Join(destDir), runner.Join(archivePath))

	res, err := a.Runner.Run(ctx, cmd, false)
	if err != nil {
		return err
	}
	if !res.Success() {
		logrus.Errorf("Extraction failed: %s (exit %d): %s", cmd, res.ExitCode, res.Stderr)
		return fmt.Errorf("extraction of %s exited with %d", filepath.Base(archivePath), res.ExitCode)
	}
	return nil
}

func expandRpm(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("failed to read RPM: %w", err)
	}
	if err := rpm.ExpandPayload(destDir); err != nil {
		return fmt.Errorf("failed to expand RPM payload: %w", err)
	}
	return nil
}

func extractTar(archivePath, destDir string, typ scanner.ArchiveType) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch typ {
	case scanner.TypeTarGz:
		gzipReader, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	case scanner.TypeTarXz:
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return err
		}
		reader = xzReader
	case scanner.TypeTarZst:
		decoder, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer decoder.Close()
		reader = decoder
	}

	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		entryPath, err := normalizeEntryName(header.Name)
		if err != nil {
			if header.Typeflag == tar.TypeDir {
				continue
			}
			return err
		}
		target, err := resolveTargetPath(destDir, entryPath)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tarReader, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
			if err := os.Chtimes(target, header.ModTime, header.ModTime); err != nil {
				return err
			}
		case tar.TypeSymlink:
			linkTarget := filepath.Join(filepath.Dir(target), header.Linkname)
			if filepath.IsAbs(header.Linkname) {
				linkTarget = header.Linkname
			}
			if _, err := resolveTargetPath(destDir, relOrSelf(destDir, linkTarget)); err != nil {
				return fmt.Errorf("symlink %q escapes target root", header.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		default:
			logrus.Debugf("Skipping archive entry %s (type %c)", header.Name, header.Typeflag)
		}
	}
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if mode == 0 {
		mode = 0644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func normalizeEntryName(value string) (string, error) {
	cleaned := filepath.Clean(value)
	cleaned = strings.TrimPrefix(cleaned, "./")
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("invalid archive entry path %q", value)
	}
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes root: %q", value)
	}
	return filepath.ToSlash(cleaned), nil
}

func resolveTargetPath(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	cleanTarget := filepath.Clean(target)
	if cleanTarget != cleanRoot && !strings.HasPrefix(cleanTarget, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry path escapes target root: %q", rel)
	}
	return target, nil
}

func relOrSelf(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return rel
}
