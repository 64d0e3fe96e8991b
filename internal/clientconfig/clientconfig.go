// Package clientconfig renders the files package manager clients use to
// reach a mirrored repository.
package clientconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/utils"
)

// Variant selects who a yum .repo file is written for
type Variant int

const (
	// Remote points this node at the upstream repository
	Remote Variant = iota
	// Local points this node at the mirrored directory
	Local
	// Client points cluster nodes at the mirror over http
	Client
)

// String returns the string representation of Variant
func (v Variant) String() string {
	switch v {
	case Local:
		return "local"
	case Client:
		return "client"
	default:
		return "remote"
	}
}

// Options holds what a .repo file needs beyond the descriptor
type Options struct {
	Variant Variant

	// URL is the upstream baseurl, or the metalink URL when Metalink is set
	URL      string
	Metalink bool

	// RepoDir overrides the layout's repository directory
	RepoDir string

	// HostURL prefixes client baseurls, e.g. http://{{ host_ip.stdout }}
	HostURL string

	GPGCheck bool
	GPGKey   string
}

// YumRepo renders the content of a yum .repo file
func YumRepo(d models.RepositoryDescriptor, l layout.Layout, opts Options) string {
	repoDir := opts.RepoDir
	if repoDir == "" {
		repoDir = l.RepoDir
	}

	var b strings.Builder
	switch opts.Variant {
	case Client:
		fmt.Fprintf(&b, "[%s-powerup]\n", d.ID)
	case Local:
		fmt.Fprintf(&b, "[%s-local]\n", d.ID)
	default:
		fmt.Fprintf(&b, "[%s]\n", d.ID)
	}

	fmt.Fprintf(&b, "name=%s\n", d.Name)

	switch {
	case opts.Variant == Local:
		fmt.Fprintf(&b, "baseurl=file://%s/\n", strings.TrimSuffix(repoDir, "/"))
	case opts.Variant == Client:
		fmt.Fprintf(&b, "baseurl=%s%s/\n", strings.TrimSuffix(opts.HostURL, "/"), l.RelativeToRoot(repoDir))
	case opts.Metalink:
		fmt.Fprintf(&b, "metalink=%s\n", opts.URL)
		b.WriteString("failovermethod=priority\n")
	case opts.URL != "":
		fmt.Fprintf(&b, "baseurl=%s\n", opts.URL)
	default:
		logrus.WithField("repo", d.ID).Error("No .repo link type was specified")
	}

	b.WriteString("enabled=1\n")
	if opts.GPGCheck {
		b.WriteString("gpgcheck=1\n")
		fmt.Fprintf(&b, "gpgkey=%s\n", opts.GPGKey)
	} else {
		b.WriteString("gpgcheck=0\n")
	}

	return b.String()
}

// YumRepoFilename returns the .repo file name for a variant
func YumRepoFilename(d models.RepositoryDescriptor, v Variant) string {
	switch v {
	case Local:
		return d.ID + "-local.repo"
	case Client:
		return d.ID + "-powerup.repo"
	default:
		return d.ID + ".repo"
	}
}

// PipConf renders a pip.conf pointing clients at the mirrored simple index
func PipConf(l layout.Layout, hostURL string) models.ClientConfigDescriptor {
	host := strings.TrimSuffix(hostURL, "/")
	content := fmt.Sprintf("[global]\nindex-url = %s%s\ntrusted-host = %s\n",
		host, l.RelativeToRoot(l.MetadataDir), hostName(host))
	return models.ClientConfigDescriptor{Filename: "pip.conf", Content: content}
}

// CondaRC renders a .condarc listing the mirrored channel directories
func CondaRC(l layout.Layout, hostURL string, channelDirs []string) models.ClientConfigDescriptor {
	host := strings.TrimSuffix(hostURL, "/")

	var b strings.Builder
	b.WriteString("channels:\n")
	for _, dir := range channelDirs {
		fmt.Fprintf(&b, "  - %s%s\n", host, l.RelativeToRoot(dir))
	}
	b.WriteString("show_channel_urls: true\n")
	return models.ClientConfigDescriptor{Filename: ".condarc", Content: b.String()}
}

// hostName returns the host part of a URL that may contain template
// placeholders url.Parse would reject
func hostName(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, ":"); i >= 0 && !strings.Contains(u[i:], "}") {
		u = u[:i]
	}
	return u
}

// WriteFile atomically writes content to path. It reports changed when a
// file already existed there with different content.
func WriteFile(path, content string) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, []byte(content)):
		return false, nil
	case err != nil && !os.IsNotExist(err):
		return false, models.NewError(models.ErrFileOp, "", err)
	}
	changed := err == nil

	if err := utils.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return false, models.NewError(models.ErrFileOp, "", fmt.Errorf("failed to write %s: %w", path, err))
	}
	logrus.Debugf("Wrote %s", path)
	return changed, nil
}

// WriteAll persists every descriptor of set into dir
func WriteAll(dir string, set *models.ClientConfigSet) error {
	for _, d := range set.Items() {
		path := filepath.Join(dir, d.Filename)
		if _, err := WriteFile(path, d.Content); err != nil {
			return err
		}
		logrus.Infof("Client configuration written to: %s", path)
	}
	return nil
}
