package cli

import (
	"github.com/spf13/cobra"

	"github.com/ralt/repomirror/internal/models"
)

// NewCondaCmd mirrors conda channel directories
func NewCondaCmd(opts *globalOptions) *cobra.Command {
	var (
		urls   []string
		filter models.SyncFilter
	)

	cmd := &cobra.Command{
		Use:   "conda <id>",
		Short: "Mirror conda channel directories",
		Long: `Mirrors each --url (http(s), file:// or an absolute path) into the
repository and trims the channel listings to the files mirrored.
--accept and --reject are mutually exclusive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor(cmd, args[0], models.TypeArchiveIndex)
			if err != nil {
				return err
			}
			if err := filter.Validate(); err != nil {
				return models.WithRepo(err, d.ID)
			}
			m, err := opts.manager(opts.paths)
			if err != nil {
				return err
			}

			syncErr := m.Conda(cmd.Context(), d, urls, filter)
			if err := opts.finish(m); err != nil {
				return err
			}
			return syncErr
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().StringSliceVar(&urls, "url", nil, "Channel directory to mirror (repeatable)")
	cmd.Flags().StringSliceVar(&filter.Accept, "accept", nil, "Only mirror these files")
	cmd.Flags().StringSliceVar(&filter.Reject, "reject", nil, "Mirror everything but these files")
	cmd.MarkFlagRequired("url")

	return cmd
}

// NewPypiCmd downloads python packages into the local index
func NewPypiCmd(opts *globalOptions) *cobra.Command {
	var indexURL string

	cmd := &cobra.Command{
		Use:   "pypi <id> <package>...",
		Short: "Download python packages into a simple index",
		Long: `Downloads the named packages and their dependencies with pip and
links them into <server-root>/repos/<id>/simple. Packages may carry
version pins, e.g. Keras==2.0.5.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := descriptor(cmd, args[0], models.TypeLanguagePackage)
			if err != nil {
				return err
			}
			m, err := opts.manager(opts.paths)
			if err != nil {
				return err
			}

			syncErr := m.Pypi(cmd.Context(), d, indexURL, args[1:])
			if err := opts.finish(m); err != nil {
				return err
			}
			return syncErr
		},
	}

	addRepoFlags(cmd)
	cmd.Flags().StringVar(&indexURL, "index-url", "", "Alternate package index")

	return cmd
}
