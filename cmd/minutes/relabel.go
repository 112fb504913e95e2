package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/segment"
)

func newRelabelCommand(opts *rootOptions) *cobra.Command {
	var (
		mapping map[string]string
		record  string
		in      string
	)
	cmd := &cobra.Command{
		Use:   "relabel",
		Short: "Replace diarization speaker labels with real names",
		Long: `Applies a label mapping such as "Speaker 1=Alice,Speaker 2=Bob" to a stored
transcript record (rewritten in place) or to a transcript JSON file
(printed). Adjacent turns that end up with the same name are merged.`,
		Example: `  minutes relabel --record standup_transcript_20240506_090000.json --map "Speaker 1=Alice"
  minutes relabel --in transcript.json --map "Speaker 1=Alice,Speaker 2=Bob"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(mapping) == 0 {
				return apperrors.MissingField("map")
			}
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				if record != "" {
					records, err := newRecords(ctx, a)
					if err != nil {
						return err
					}
					rec, err := records.RelabelFile(ctx, record, mapping)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), rec)
				}

				data, err := readInput(cmd, in)
				if err != nil {
					return err
				}
				var t segment.Transcript
				if err := json.Unmarshal(data, &t); err != nil {
					return apperrors.InvalidFormat("transcript", "transcript JSON").WithCause(err)
				}
				return writeJSON(cmd.OutOrStdout(), t.Relabel(mapping))
			})
		},
	}
	cmd.Flags().StringToStringVarP(&mapping, "map", "m", nil, `label mapping, e.g. "Speaker 1=Alice,Speaker 2=Bob"`)
	cmd.Flags().StringVar(&record, "record", "", "transcript record key to relabel in place")
	cmd.Flags().StringVarP(&in, "in", "i", "-", `transcript JSON file when no --record is given, "-" for stdin`)
	cmd.MarkFlagsMutuallyExclusive("record", "in")
	return cmd
}
