package acquire

import (
	"fmt"
	"os"

	"github.com/sassoftware/go-rpmutils"

	"github.com/ralt/repomirror/internal/models"
)

// Inspect reads the header of an RPM bundle
func Inspect(path string) (*models.ArchiveInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", fmt.Errorf("failed to read RPM: %w", err))
	}

	info := &models.ArchiveInfo{
		Name:         getStringTag(rpm, rpmutils.NAME),
		Version:      getStringTag(rpm, rpmutils.VERSION),
		Release:      getStringTag(rpm, rpmutils.RELEASE),
		Architecture: getStringTag(rpm, rpmutils.ARCH),
		Summary:      getStringTag(rpm, rpmutils.SUMMARY),
	}

	files, err := rpm.Header.GetFiles()
	if err != nil {
		return nil, models.NewError(models.ErrAcquisition, "", fmt.Errorf("failed to list RPM files: %w", err))
	}
	for _, fi := range files {
		info.Files = append(info.Files, fi.Name())
	}

	return info, nil
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		return fmt.Sprintf("%v", v)
	}

	return ""
}
