package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/setup"
)

// NewSyncCmd sets up every repository of a TOML definitions file
func NewSyncCmd(opts *globalOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Set up all repositories listed in a configuration file",
		Long: `Reads repository definitions from a TOML file and sets each one up
in id order. A failed yum sync aborts the run; other failures are
reported once every repository has been attempted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			if cfg.Log.Level != "" && !verbose {
				level, err := logrus.ParseLevel(cfg.Log.Level)
				if err != nil {
					return &models.RepoError{Type: models.ErrInvalidConfig, Err: err}
				}
				logrus.SetLevel(level)
			}

			m, err := opts.manager(setup.PathsFromConfig(cfg))
			if err != nil {
				return err
			}
			if cfg.ClientConfigDir == "" {
				cfg.ClientConfigDir = opts.clientConfigDir
			}

			logrus.Infof("Setting up %d repositories from %s", len(cfg.Repos), configPath)
			return m.RunConfig(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "/etc/repomirror/repos.toml", "Repository definitions file")

	return cmd
}

func loadConfig(path string) (*models.Config, error) {
	cfg := models.NewConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &models.RepoError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &models.RepoError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))}
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}
