package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/minutes/version"
)

func newVersionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.GetVersionInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Product, version.Full())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
