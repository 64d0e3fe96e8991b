package cli

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/prompt"
	"github.com/ralt/repomirror/internal/runner"
	"github.com/ralt/repomirror/internal/setup"
	"github.com/ralt/repomirror/internal/signer"
)

// publicKeyName is the file clients import the metadata signing key from
const publicKeyName = "RPM-GPG-KEY-repomirror"

// globalOptions holds the flags shared by every setup command
type globalOptions struct {
	paths           setup.Paths
	clientConfigDir string
	assumeDefaults  bool
	progress        bool
	nativeRpm       bool
	gpgKeyPath      string
	gpgPassphrase   string
	pipActivate     string
	pipEnv          string
}

func (o *globalOptions) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.paths.ServerRoot, "server-root", models.DefaultServerRoot, "Directory served to cluster nodes")
	f.StringVar(&o.paths.YumReposDir, "yum-repos-dir", models.DefaultYumReposDir, "Directory holding this node's .repo files")
	f.StringVar(&o.paths.YumCacheDir, "yum-cache-dir", models.DefaultYumCacheDir, "Yum cache directory")
	f.StringVar(&o.paths.HostURL, "host-url", models.DefaultHostURL, "URL prefix clients reach the server root with")
	f.StringVar(&o.clientConfigDir, "client-config-dir", "", "Write client configuration files into this directory")
	f.BoolVarP(&o.assumeDefaults, "yes", "y", false, "Answer every prompt with its default")
	f.BoolVar(&o.progress, "progress", true, "Show progress while copying local files")
	f.BoolVar(&o.nativeRpm, "native-rpm", false, "Expand RPM bundles without rpm2cpio and cpio")
	f.StringVarP(&o.gpgKeyPath, "gpg-key", "k", "", "Path to GPG private key used to sign repomd.xml")
	f.StringVarP(&o.gpgPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
	f.StringVar(&o.pipActivate, "pip-activate", "", "Conda activate script pip runs under")
	f.StringVar(&o.pipEnv, "pip-env", "pkgdl", "Conda environment pip runs in")
}

func (o *globalOptions) prompter() prompt.Prompter {
	if o.assumeDefaults {
		return prompt.Defaults{}
	}
	return prompt.Terminal{}
}

// manager wires a setup.Manager for paths
func (o *globalOptions) manager(paths setup.Paths) (*setup.Manager, error) {
	if !filepath.IsAbs(paths.ServerRoot) {
		return nil, &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("server root must be an absolute path"),
		}
	}

	m := setup.NewManager(paths, runner.NewShell(), o.prompter())
	m.Acquirer.Progress = o.progress
	m.Acquirer.Native = o.nativeRpm
	m.PipActivate = o.pipActivate
	m.PipEnv = o.pipEnv

	if o.gpgKeyPath != "" {
		s, err := signer.NewGPGSigner(o.gpgKeyPath, o.gpgPassphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to load GPG key: %w", err)
		}
		m.Builder.Signer = s

		keyPath := filepath.Join(paths.ServerRoot, publicKeyName)
		if err := signer.ExportPublicKey(s, keyPath); err != nil {
			return nil, fmt.Errorf("failed to export public key: %w", err)
		}
		logrus.Infof("Public key written to: %s", keyPath)
	}

	return m, nil
}

// finish writes the collected client configuration
func (o *globalOptions) finish(m *setup.Manager) error {
	if o.clientConfigDir == "" {
		for _, d := range m.Clients.Items() {
			logrus.Debugf("Client configuration %s:\n%s", d.Filename, d.Content)
		}
		return nil
	}
	return m.WriteClientConfigs(o.clientConfigDir)
}

// descriptor builds a descriptor from the common per-repository flags
func descriptor(cmd *cobra.Command, id string, t models.RepoType) (models.RepositoryDescriptor, error) {
	name, _ := cmd.Flags().GetString("name")
	arch, _ := cmd.Flags().GetString("arch")
	platform, _ := cmd.Flags().GetString("platform")
	return models.NewRepositoryDescriptor(id, name, t, arch, platform)
}

func addRepoFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Display name of the repository (defaults to the id)")
	cmd.Flags().String("arch", models.DefaultArch, "Architecture to mirror")
	cmd.Flags().String("platform", models.DefaultPlatform, "Platform version directory")
}
