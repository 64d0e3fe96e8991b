package models

import (
	"fmt"
	"regexp"
	"strings"
)

// RepoType selects the package-manager family of a repository
type RepoType int

const (
	TypeUnknown RepoType = iota
	TypeOSPackage
	TypeArchiveIndex
	TypeLanguagePackage
)

// String returns the string representation of RepoType
func (t RepoType) String() string {
	switch t {
	case TypeOSPackage:
		return "yum"
	case TypeArchiveIndex:
		return "conda"
	case TypeLanguagePackage:
		return "pypi"
	default:
		return "unknown"
	}
}

// ParseRepoType converts a configuration string into a RepoType
func ParseRepoType(s string) (RepoType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yum", "rpm", "os":
		return TypeOSPackage, nil
	case "conda", "anaconda", "ana":
		return TypeArchiveIndex, nil
	case "pypi", "pip", "python":
		return TypeLanguagePackage, nil
	default:
		return TypeUnknown, fmt.Errorf("unknown repository type %q", s)
	}
}

var validID = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// RepositoryDescriptor identifies one repository. It is a value type and is
// never modified after NewRepositoryDescriptor returns it.
type RepositoryDescriptor struct {
	ID              string
	Name            string
	Type            RepoType
	Arch            string
	PlatformVersion string
}

// NewRepositoryDescriptor validates and builds a RepositoryDescriptor
func NewRepositoryDescriptor(id, name string, t RepoType, arch, platformVersion string) (RepositoryDescriptor, error) {
	if !validID.MatchString(id) {
		return RepositoryDescriptor{}, NewError(ErrInvalidConfig, id, fmt.Errorf("invalid repository id %q", id))
	}
	if t == TypeUnknown {
		return RepositoryDescriptor{}, NewError(ErrInvalidConfig, id, fmt.Errorf("repository type is required"))
	}
	if name == "" {
		name = id
	}
	if t == TypeOSPackage && platformVersion == "" {
		return RepositoryDescriptor{}, NewError(ErrInvalidConfig, id, fmt.Errorf("platform version is required for %s repositories", t))
	}
	return RepositoryDescriptor{
		ID:              id,
		Name:            name,
		Type:            t,
		Arch:            arch,
		PlatformVersion: platformVersion,
	}, nil
}

// Origin tells the acquirer where a source comes from
type Origin int

const (
	OriginRemoteURL Origin = iota
	OriginLocalPath
	OriginAlreadyStaged
)

// String returns the string representation of Origin
func (o Origin) String() string {
	switch o {
	case OriginRemoteURL:
		return "url"
	case OriginLocalPath:
		return "local"
	case OriginAlreadyStaged:
		return "staged"
	default:
		return "unknown"
	}
}

// SourceReference is the operator's resolved choice of where to get a source
// file from. It is consumed once by the acquirer.
type SourceReference struct {
	Origin   Origin
	Location string
	FileGlob string
}

// SyncFilter restricts which files a sync downloads. Accept and Reject are
// mutually exclusive.
type SyncFilter struct {
	Accept []string
	Reject []string
}

// Validate rejects filters that set both lists
func (f SyncFilter) Validate() error {
	if len(f.Accept) > 0 && len(f.Reject) > 0 {
		return NewError(ErrInvalidConfig, "", fmt.Errorf("accept and reject lists are mutually exclusive"))
	}
	return nil
}

// IsEmpty reports whether the filter lets everything through
func (f SyncFilter) IsEmpty() bool {
	return len(f.Accept) == 0 && len(f.Reject) == 0
}
