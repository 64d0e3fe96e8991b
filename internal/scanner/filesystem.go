package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var errFound = errors.New("found")

// FindFiles recursively searches dir for regular files whose base name
// matches glob. A missing dir yields no matches.
func FindFiles(ctx context.Context, dir, glob string) ([]string, error) {
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("invalid file glob %q: %w", glob, err)
	}
	return walk(ctx, dir, false, func(path string, d fs.DirEntry) bool {
		if !d.Type().IsRegular() {
			return false
		}
		ok, _ := filepath.Match(glob, d.Name())
		return ok
	})
}

// FindFirstFile returns the first file under dir matching glob, or "" if none
func FindFirstFile(ctx context.Context, dir, glob string) (string, error) {
	matches, err := walkFirst(ctx, dir, glob, false)
	if err != nil || len(matches) == 0 {
		return "", err
	}
	return matches[0], nil
}

// FindFirstDir returns the first directory under dir named name, or "" if none
func FindFirstDir(ctx context.Context, dir, name string) (string, error) {
	matches, err := walkFirst(ctx, dir, name, true)
	if err != nil || len(matches) == 0 {
		return "", err
	}
	return matches[0], nil
}

func walkFirst(ctx context.Context, dir, glob string, dirs bool) ([]string, error) {
	return walk(ctx, dir, true, func(path string, d fs.DirEntry) bool {
		if d.IsDir() != dirs || (!dirs && !d.Type().IsRegular()) {
			return false
		}
		ok, _ := filepath.Match(glob, d.Name())
		return ok
	})
}

func walk(ctx context.Context, dir string, first bool, match func(string, fs.DirEntry) bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, os.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == dir || !match(path, d) {
			return nil
		}

		logrus.Debugf("Found %s", path)
		found = append(found, path)
		if first {
			return errFound
		}
		return nil
	})

	if err != nil && !errors.Is(err, errFound) {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	return found, nil
}
