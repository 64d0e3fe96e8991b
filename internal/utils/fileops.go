package utils

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/sirupsen/logrus"
)

// CopyOptions controls how CopyFile and CopyTree transfer data
type CopyOptions struct {
	// Progress shows a terminal progress bar per file
	Progress bool
}

// CopyFile copies a file from src to dst, keeping its mode and modification time
func CopyFile(src, dst string, opts CopyOptions) error {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%s and %s are the same file", src, dst)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	var reader io.Reader = srcFile
	if opts.Progress {
		bar := pb.Full.Start64(info.Size())
		bar.Set("prefix", filepath.Base(src)+" ")
		reader = bar.NewProxyReader(srcFile)
		defer bar.Finish()
	}

	if _, err := io.Copy(dstFile, reader); err != nil {
		return err
	}

	if err := dstFile.Sync(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyTree mirrors the regular files under src into dst, skipping files
// that ShouldCopy reports as already current. It returns the number of
// files actually copied.
func CopyTree(src, dst string, opts CopyOptions) (int, error) {
	copied := 0

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			logrus.Debugf("Skipping non-regular file %s", path)
			return nil
		}

		needsCopy, err := ShouldCopy(path, target)
		if err != nil {
			return err
		}
		if !needsCopy {
			return nil
		}

		if err := CopyFile(path, target, opts); err != nil {
			return fmt.Errorf("failed to copy %s: %w", path, err)
		}
		copied++
		return nil
	})

	return copied, err
}

// ShouldCopy determines if src needs to be copied over dst.
// Files of equal size are compared by SHA-256.
func ShouldCopy(src, dst string) (bool, error) {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	// Same path = no copy needed
	if src == dst {
		return false, nil
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("cannot stat source: %w", err)
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("cannot stat destination: %w", err)
	}

	// Different sizes = need copy
	if srcInfo.Size() != dstInfo.Size() {
		return true, nil
	}

	srcSum, err := CalculateChecksums(src)
	if err != nil {
		return false, err
	}
	dstSum, err := CalculateChecksums(dst)
	if err != nil {
		// Can't calculate checksums, copy to be safe
		return true, nil
	}

	return srcSum.SHA256 != dstSum.SHA256, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, creating directories as needed
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists reports whether path exists, without following a trailing symlink
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
