package models

import "path"

// ArchiveInfo describes an installable package bundle read from its header
type ArchiveInfo struct {
	Name         string
	Version      string
	Release      string
	Architecture string
	Summary      string
	Files        []string
}

// MetadataDirs returns the directories in the bundle named like a yum
// metadata directory.
func (a *ArchiveInfo) MetadataDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, f := range a.Files {
		for d := path.Dir(f); d != "/" && d != "."; d = path.Dir(d) {
			if path.Base(d) == "repodata" && !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}
