package scanner

import (
	"bytes"
	"os"
	"strings"
)

// Magic bytes for archive detection
var (
	// RPM packages start with 0xED 0xAB 0xEE 0xDB
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

	gzipMagic = []byte{0x1F, 0x8B}

	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

	// POSIX tar headers carry "ustar" at offset 257
	tarMagic = []byte("ustar")
)

// DetectArchiveType determines the bundle type based on magic bytes and file name
func DetectArchiveType(path string) (ArchiveType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	// Read first 512 bytes for magic byte detection
	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return TypeUnknown, err
	}
	header = header[:n]

	name := strings.ToLower(path)

	switch {
	case bytes.HasPrefix(header, rpmMagic) || strings.HasSuffix(name, ".rpm"):
		return TypeRpm, nil
	case bytes.HasPrefix(header, gzipMagic):
		if strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz") {
			return TypeTarGz, nil
		}
	case bytes.HasPrefix(header, xzMagic):
		if strings.HasSuffix(name, ".tar.xz") || strings.HasSuffix(name, ".txz") {
			return TypeTarXz, nil
		}
	case bytes.HasPrefix(header, zstdMagic):
		if strings.HasSuffix(name, ".tar.zst") {
			return TypeTarZst, nil
		}
	case len(header) >= 262 && bytes.Equal(header[257:262], tarMagic):
		return TypeTar, nil
	}

	return TypeUnknown, nil
}
