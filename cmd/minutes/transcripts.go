package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newTranscriptsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts [base]",
		Short: "List stored transcript records for a meeting base name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				records, err := newRecords(ctx, a)
				if err != nil {
					return err
				}
				files, err := records.Transcripts(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), files)
			})
		},
	}
}
