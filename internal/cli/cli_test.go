package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/prompt"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repos.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server_root = "/data/srv"

[log]
level = "debug"

[repos.tools]
type = "yum"
url = "http://mirror.example.com/tools/"
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/srv", cfg.ServerRoot)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"tools"}, cfg.RepoIDs())
	assert.Equal(t, models.DefaultYumReposDir, cfg.YumReposDir)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[repos.tools]
type = "yum"
url = "http://mirror.example.com/tools/"
mirrorlist = "http://example.com"
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "repos.tools.mirrorlist")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
}

func TestResolveReference(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    models.SourceReference
		wantErr bool
	}{
		{
			name: "local path",
			args: []string{"--path", "/tmp/cuda.rpm"},
			want: models.SourceReference{Origin: models.OriginLocalPath, Location: "/tmp/cuda.rpm"},
		},
		{
			name: "url with glob",
			args: []string{"--url", "http://example.com/cuda/", "--glob", "cuda-*.rpm"},
			want: models.SourceReference{Origin: models.OriginRemoteURL, Location: "http://example.com/cuda/", FileGlob: "cuda-*.rpm"},
		},
		{
			name: "staged",
			args: []string{"--staged", "--glob", "cuda-*.rpm"},
			want: models.SourceReference{Origin: models.OriginAlreadyStaged, FileGlob: "cuda-*.rpm"},
		},
		{
			name:    "staged without glob",
			args:    []string{"--staged"},
			wantErr: true,
		},
		{
			name:    "nothing",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewSourceCmd(&globalOptions{})
			require.NoError(t, cmd.Flags().Parse(tt.args))

			ref, err := resolveReference(cmd)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsType(err, models.ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestPrompterSelection(t *testing.T) {
	opts := &globalOptions{assumeDefaults: true}
	assert.IsType(t, prompt.Defaults{}, opts.prompter())

	opts.assumeDefaults = false
	assert.IsType(t, prompt.Terminal{}, opts.prompter())
}

func TestManagerRejectsRelativeRoot(t *testing.T) {
	opts := &globalOptions{}
	paths := opts.paths
	paths.ServerRoot = "srv"

	_, err := opts.manager(paths)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
}

func TestYumRequiresURL(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"yum", "tools", "--server-root", t.TempDir(), "--yes"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--url is required")
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "repomirror dev\n", out.String())
}
