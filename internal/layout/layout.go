// Package layout computes where a repository lives on the server.
package layout

import (
	"path/filepath"
	"strings"

	"github.com/ralt/repomirror/internal/models"
)

// Layout holds the on-disk paths of one repository. It is derived from a
// descriptor and a server root only.
type Layout struct {
	ServerRoot string

	// StagingDir receives source files before they are extracted or copied
	// into the repository.
	StagingDir string

	// RepoDir is the directory the package manager client points at.
	RepoDir string

	// SyncParent is the directory mirroring tools write RepoDir into.
	SyncParent string

	// MetadataDir holds the package manager index.
	MetadataDir string
}

// For returns the layout of d under serverRoot.
//
// Yum clients expect <root>/repos/<id>/<platform>/<id>; conda channels and
// python indexes live directly under <root>/repos/<id>.
func For(serverRoot string, d models.RepositoryDescriptor) Layout {
	root := filepath.Clean(serverRoot)
	base := filepath.Join(root, "repos", d.ID)

	l := Layout{
		ServerRoot: root,
		StagingDir: filepath.Join(root, d.ID),
	}

	switch d.Type {
	case models.TypeOSPackage:
		l.SyncParent = filepath.Join(base, d.PlatformVersion)
		l.RepoDir = filepath.Join(l.SyncParent, d.ID)
		l.MetadataDir = filepath.Join(l.RepoDir, "repodata")
	case models.TypeLanguagePackage:
		l.SyncParent = filepath.Join(root, "repos")
		l.RepoDir = base
		l.MetadataDir = filepath.Join(base, "simple")
	default:
		l.SyncParent = filepath.Join(root, "repos")
		l.RepoDir = base
		l.MetadataDir = base
	}
	return l
}

// RelativeToRoot returns p relative to the server root, with a leading slash
func (l Layout) RelativeToRoot(p string) string {
	rel, err := filepath.Rel(l.ServerRoot, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return "/" + filepath.ToSlash(rel)
}

// NameDir derives a directory name from a display name
func NameDir(name string) string {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, " ", "-")
	n = strings.ReplaceAll(n, "-content", "")
	n = strings.ReplaceAll(n, "-repository", "")
	return n
}
