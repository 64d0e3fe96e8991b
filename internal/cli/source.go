package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ralt/repomirror/internal/models"
)

// NewSourceCmd stages a source file without building a repository
func NewSourceCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source <name>",
		Short: "Stage a source file under the server root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// staged files live in <server-root>/<dir>, so any family will do
			d, err := models.NewRepositoryDescriptor(args[0], "", models.TypeArchiveIndex, "", "")
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

			acq, err := m.SourceFile(cmd.Context(), d, ref)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acq.StagedPath)
			return nil
		},
	}

	addSourceFlags(cmd)

	return cmd
}
