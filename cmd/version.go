package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreatomassetti/ansible-variables/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print the CLI version",
		Long:    `This command prints the CLI version`,
		Example: "ansible-variables version",
		Args:    cobra.NoArgs,
		// The version is printed without reading any configuration.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}
