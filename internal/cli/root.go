package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "repomirror",
		Short: "Mirror package repositories for offline cluster installs",
		Long: `Repomirror mirrors third-party package repositories into a local
server directory so cluster nodes can install software without
internet access, and writes the client configuration they need.

Supported repository families:
  - Yum (reposync mirrors, RPM bundles, existing directories)
  - Conda channels (wget or rsync mirrors)
  - Python package indexes (pip download)`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	opts.register(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(
		NewSyncCmd(opts),
		NewYumCmd(opts),
		NewRpmCmd(opts),
		NewDirCmd(opts),
		NewCondaCmd(opts),
		NewPypiCmd(opts),
		NewSourceCmd(opts),
		NewVersionCmd(),
	)

	return rootCmd
}

// NewVersionCmd prints the program version
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "repomirror "+Version)
		},
	}
}
