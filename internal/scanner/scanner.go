package scanner

// ArchiveType represents the format of an installable bundle
type ArchiveType int

const (
	TypeUnknown ArchiveType = iota
	TypeRpm
	TypeTarGz
	TypeTarXz
	TypeTarZst
	TypeTar
)

// String returns the string representation of ArchiveType
func (at ArchiveType) String() string {
	switch at {
	case TypeRpm:
		return "rpm"
	case TypeTarGz:
		return "tar.gz"
	case TypeTarXz:
		return "tar.xz"
	case TypeTarZst:
		return "tar.zst"
	case TypeTar:
		return "tar"
	default:
		return "unknown"
	}
}

// IsTar reports whether the archive is a (possibly compressed) tarball
func (at ArchiveType) IsTar() bool {
	switch at {
	case TypeTarGz, TypeTarXz, TypeTarZst, TypeTar:
		return true
	}
	return false
}
