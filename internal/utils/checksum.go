package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Checksum contains the digest and size of a file
type Checksum struct {
	SHA256 string
	Size   int64
}

// CalculateChecksums streams a file through SHA-256
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   info.Size(),
	}, nil
}
