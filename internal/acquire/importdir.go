package acquire

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/utils"
)

// ImportDir copies an existing repository directory tree into destDir.
// A non-empty destDir is only replaced when replace is set.
func (a *Acquirer) ImportDir(ctx context.Context, srcDir, destDir string, replace bool) error {
	info, err := os.Stat(srcDir)
	if err != nil {
		return models.NewError(models.ErrAcquisition, "", err)
	}
	if !info.IsDir() {
		return models.NewError(models.ErrAcquisition, "", fmt.Errorf("%s is not a directory", srcDir))
	}

	entries, err := os.ReadDir(destDir)
	switch {
	case err == nil && len(entries) > 0 && !replace:
		return models.NewError(models.ErrFileOp, "", fmt.Errorf("%s already exists", destDir))
	case err == nil && len(entries) > 0:
		logrus.Infof("Replacing %s", destDir)
		if err := os.RemoveAll(destDir); err != nil {
			return models.NewError(models.ErrFileOp, "", err)
		}
	case err != nil && !os.IsNotExist(err):
		return models.NewError(models.ErrFileOp, "", err)
	}

	if err := ctx.Err(); err != nil {
		return models.NewError(models.ErrAcquisition, "", err)
	}

	n, err := utils.CopyTree(srcDir, destDir, utils.CopyOptions{Progress: a.Progress})
	if err != nil {
		return models.NewError(models.ErrAcquisition, "", err)
	}

	logrus.Infof("Imported %d files from %s", n, srcDir)
	return nil
}
