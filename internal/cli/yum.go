package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/setup"
)

// NewYumCmd mirrors a yum repository with reposync
func NewYumCmd(opts *globalOptions) *cobra.Command {
	var (
		src        setup.YumSource
		altURL     string
		chooseFrom bool
	)

	cmd := &cobra.Command{
		Use:   "yum <id>",
		Short: "Mirror a yum repository from its upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor(cmd, args[0], models.TypeOSPackage)
			if err != nil {
				return err
			}
			m, err := opts.manager(opts.paths)
			if err != nil {
				return err
			}

			if chooseFrom {
				if src.URL, err = m.ResolveURL(d, src.URL, altURL); err != nil {
					return err
				}
			}
			if src.URL == "" {
				return &models.RepoError{Type: models.ErrInvalidConfig, Repo: d.ID, Err: fmt.Errorf("--url is required")}
			}

			if err := m.YumFromRepo(cmd.Context(), d, src); err != nil {
				return err
			}
			return opts.finish(m)
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().StringVar(&src.URL, "url", "", "Upstream baseurl (or metalink with --metalink)")
	cmd.Flags().BoolVar(&src.Metalink, "metalink", false, "Treat --url as a metalink")
	cmd.Flags().BoolVar(&src.GPGCheck, "gpgcheck", false, "Verify package signatures when syncing")
	cmd.Flags().StringVar(&src.GPGKey, "gpgkey", "", "GPG key URL for --gpgcheck")
	cmd.Flags().BoolVar(&src.ForceMetadata, "force-metadata", false, "Sync and recreate metadata without asking")
	cmd.Flags().BoolVar(&chooseFrom, "choose-source", false, "Ask whether to use --url or an alternate site")
	cmd.Flags().StringVar(&altURL, "alt-url", "", "Default alternate site for --choose-source")

	return cmd
}

// NewRpmCmd builds a yum repository from an RPM (or tarball) bundle
func NewRpmCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rpm <id>",
		Short: "Create a yum repository from a package bundle",
		Long: `Stages a bundle from a local path or a URL, extracts it into the
repository directory and generates metadata. Bundles that carry a
ready-made repository are published from where their repodata lives.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor(cmd, args[0], models.TypeOSPackage)
			if err != nil {
				return err
			}
			ref, err := resolveReference(cmd)
			if err != nil {
				return models.WithRepo(err, d.ID)
			}
			m, err := opts.manager(opts.paths)
			if err != nil {
				return err
			}

			if err := m.YumFromArchive(cmd.Context(), d, ref); err != nil {
				return err
			}
			return opts.finish(m)
		},
	}

	addRepoFlags(cmd)
	addSourceFlags(cmd)

	return cmd
}

// NewDirCmd publishes an existing repository directory
func NewDirCmd(opts *globalOptions) *cobra.Command {
	var srcDir string

	cmd := &cobra.Command{
		Use:   "dir <id>",
		Short: "Create a yum repository from an existing directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor(cmd, args[0], models.TypeOSPackage)
			if err != nil {
				return err
			}
			m, err := opts.manager(opts.paths)
			if err != nil {
				return err
			}

			if err := m.YumFromDir(cmd.Context(), d, srcDir); err != nil {
				return err
			}
			return opts.finish(m)
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().StringVar(&srcDir, "path", "", "Directory to copy")
	cmd.MarkFlagRequired("path")

	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("path", "", "Local file or glob to copy into staging")
	cmd.Flags().String("url", "", "URL to download from")
	cmd.Flags().Bool("staged", false, "Only use a file already in staging")
	cmd.Flags().String("glob", "", "File name pattern of the wanted file")
	cmd.MarkFlagsMutuallyExclusive("path", "url", "staged")
}

// resolveReference turns the source flags into a SourceReference
func resolveReference(cmd *cobra.Command) (models.SourceReference, error) {
	var ref models.SourceReference
	path, _ := cmd.Flags().GetString("path")
	url, _ := cmd.Flags().GetString("url")
	staged, _ := cmd.Flags().GetBool("staged")
	ref.FileGlob, _ = cmd.Flags().GetString("glob")

	switch {
	case path != "":
		ref.Origin, ref.Location = models.OriginLocalPath, path
	case url != "":
		ref.Origin, ref.Location = models.OriginRemoteURL, url
	case staged:
		ref.Origin = models.OriginAlreadyStaged
		if ref.FileGlob == "" {
			return ref, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("--staged needs --glob"))
		}
	default:
		return ref, models.NewError(models.ErrInvalidConfig, "", fmt.Errorf("one of --path, --url or --staged is required"))
	}
	return ref, nil
}
