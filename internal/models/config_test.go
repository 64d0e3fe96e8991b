package models

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDecode(t *testing.T) {
	config := NewConfig()
	md, err := toml.DecodeFile("testdata/repos.toml", config)
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded())
	require.NoError(t, config.Check())

	assert.Equal(t, "/srv", config.ServerRoot)
	assert.Equal(t, DefaultYumReposDir, config.YumReposDir)
	assert.Equal(t, "http://10.0.0.1", config.HostURL)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, []string{"anaconda", "cuda", "epel-ppc64le", "pypi"}, config.RepoIDs())

	epel := config.Repos["epel-ppc64le"]
	d, err := epel.Descriptor("epel-ppc64le")
	require.NoError(t, err)
	assert.Equal(t, TypeOSPackage, d.Type)
	assert.Equal(t, DefaultArch, d.Arch)
	assert.Equal(t, DefaultPlatform, d.PlatformVersion)
	assert.True(t, epel.Metalink)
	assert.Equal(t, SourceRepo, epel.SourceKind())

	cuda := config.Repos["cuda"]
	assert.Equal(t, SourceArchive, cuda.SourceKind())

	ana := config.Repos["anaconda"]
	assert.Equal(t, []string{
		"https://repo.anaconda.com/pkgs/main/linux-ppc64le/",
		"https://repo.anaconda.com/pkgs/main/noarch/",
	}, ana.ChannelURLs())
	d, err = ana.Descriptor("anaconda")
	require.NoError(t, err)
	assert.Equal(t, "anaconda", d.Name)
}

func TestConfigUndecodedKeys(t *testing.T) {
	config := NewConfig()
	md, err := toml.Decode(`
server_root = "/srv"
[repos.x]
type = "yum"
url = "http://x/"
urll = "typo"
`, config)
	require.NoError(t, err)
	assert.Len(t, md.Undecoded(), 1)
}

func TestConfigCheck(t *testing.T) {
	cases := map[string]*RepositoryConfig{
		"unknown type":        {Type: "deb"},
		"yum without url":     {Type: "yum"},
		"archive without src": {Type: "yum", Source: SourceArchive},
		"dir without path":    {Type: "yum", Source: SourceDir},
		"unknown source":      {Type: "yum", Source: "ftp", URL: "x"},
		"conda without url":   {Type: "conda"},
		"both lists":          {Type: "conda", URL: "http://x/", Accept: []string{"a"}, Reject: []string{"b"}},
		"pypi without pkgs":   {Type: "pypi"},
		"pypi with reject":    {Type: "pypi", Packages: []string{"six"}, Reject: []string{"numpy"}},
	}

	for name, rc := range cases {
		t.Run(name, func(t *testing.T) {
			err := rc.Check("repo")
			require.Error(t, err)
			assert.True(t, IsType(err, ErrInvalidConfig), "got %v", err)
		})
	}

	bad := NewConfig()
	bad.ServerRoot = "srv"
	assert.Error(t, bad.Check())

	bad.ServerRoot = "/srv"
	bad.Repos["Bad ID"] = &RepositoryConfig{Type: "yum", URL: "http://x/"}
	assert.Error(t, bad.Check())
}
