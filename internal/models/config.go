package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultServerRoot  = "/srv"
	DefaultYumReposDir = "/etc/yum.repos.d"
	DefaultYumCacheDir = "/var/cache/yum"
	DefaultHostURL     = "http://{{ host_ip.stdout }}"
	DefaultArch        = "ppc64le"
	DefaultPlatform    = "rhel7"
)

// Source kinds for yum repositories
const (
	SourceRepo    = "repo"
	SourceArchive = "archive"
	SourceDir     = "dir"
)

// LogConfig holds logging options
type LogConfig struct {
	Level string `toml:"level"`
}

// Config is read from a TOML file:
//
//	config := models.NewConfig()
//	md, err := toml.DecodeFile("/etc/repomirror/repos.toml", config)
type Config struct {
	ServerRoot      string                       `toml:"server_root"`
	YumReposDir     string                       `toml:"yum_repos_dir"`
	YumCacheDir     string                       `toml:"yum_cache_dir"`
	ClientConfigDir string                       `toml:"client_config_dir"`
	HostURL         string                       `toml:"host_url"`
	Log             LogConfig                    `toml:"log"`
	Repos           map[string]*RepositoryConfig `toml:"repos"`
}

// RepositoryConfig describes one repository to set up
type RepositoryConfig struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Source   string `toml:"source"`
	Arch     string `toml:"arch"`
	Platform string `toml:"platform"`

	// Remote sources
	URL      string   `toml:"url"`
	URLs     []string `toml:"urls"`
	Metalink bool     `toml:"metalink"`

	// Local sources
	Path     string `toml:"path"`
	FileGlob string `toml:"file_glob"`

	GPGCheck bool   `toml:"gpgcheck"`
	GPGKey   string `toml:"gpgkey"`

	Accept   []string `toml:"accept"`
	Reject   []string `toml:"reject"`
	Packages []string `toml:"packages"`

	ForceMetadata bool `toml:"force_metadata"`
}

// NewConfig creates Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerRoot:  DefaultServerRoot,
		YumReposDir: DefaultYumReposDir,
		YumCacheDir: DefaultYumCacheDir,
		HostURL:     DefaultHostURL,
		Repos:       make(map[string]*RepositoryConfig),
	}
}

// Check validates the configuration.
func (c *Config) Check() error {
	if c.ServerRoot == "" {
		return errors.New("server_root is not set")
	}
	if !filepath.IsAbs(c.ServerRoot) {
		return errors.New("server_root must be an absolute path")
	}
	for _, id := range c.RepoIDs() {
		if err := c.Repos[id].Check(id); err != nil {
			return err
		}
	}
	return nil
}

// RepoIDs returns the configured repository ids in sorted order
func (c *Config) RepoIDs() []string {
	ids := make([]string, 0, len(c.Repos))
	for id := range c.Repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check validates one repository entry.
func (rc *RepositoryConfig) Check(id string) error {
	if _, err := rc.Descriptor(id); err != nil {
		return err
	}
	if err := rc.Filter().Validate(); err != nil {
		return NewError(ErrInvalidConfig, id, errors.Unwrap(err))
	}

	t, _ := ParseRepoType(rc.Type)
	switch t {
	case TypeOSPackage:
		switch rc.SourceKind() {
		case SourceRepo:
			if rc.URL == "" {
				return configError(id, "url is required for yum repositories synced from a repo")
			}
		case SourceArchive:
			if rc.Path == "" && rc.URL == "" {
				return configError(id, "path or url is required for archive sources")
			}
		case SourceDir:
			if rc.Path == "" {
				return configError(id, "path is required for directory sources")
			}
		default:
			return configError(id, fmt.Sprintf("unknown source %q", rc.Source))
		}
	case TypeArchiveIndex:
		if len(rc.ChannelURLs()) == 0 {
			return configError(id, "url or urls is required for conda repositories")
		}
	case TypeLanguagePackage:
		if len(rc.Packages) == 0 {
			return configError(id, "packages is required for pypi repositories")
		}
		if len(rc.Reject) > 0 {
			return configError(id, "reject is not supported for pypi repositories")
		}
	}
	return nil
}

// Descriptor builds the RepositoryDescriptor for this entry
func (rc *RepositoryConfig) Descriptor(id string) (RepositoryDescriptor, error) {
	t, err := ParseRepoType(rc.Type)
	if err != nil {
		return RepositoryDescriptor{}, NewError(ErrInvalidConfig, id, err)
	}
	arch := rc.Arch
	if arch == "" {
		arch = DefaultArch
	}
	platform := rc.Platform
	if platform == "" {
		platform = DefaultPlatform
	}
	return NewRepositoryDescriptor(id, rc.Name, t, arch, platform)
}

// Filter returns the sync filter of this entry
func (rc *RepositoryConfig) Filter() SyncFilter {
	return SyncFilter{Accept: rc.Accept, Reject: rc.Reject}
}

// ChannelURLs returns url followed by urls, without duplicates
func (rc *RepositoryConfig) ChannelURLs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, u := range append([]string{rc.URL}, rc.URLs...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// SourceKind returns the yum source kind, defaulting to "repo"
func (rc *RepositoryConfig) SourceKind() string {
	if rc.Source == "" {
		return SourceRepo
	}
	return rc.Source
}

func configError(id, msg string) error {
	return NewError(ErrInvalidConfig, id, errors.New(msg))
}
