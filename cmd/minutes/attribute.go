package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/minutes/segment"
)

type transcriptSource struct {
	file   string
	record string
}

func (s *transcriptSource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "transcript", "t", "", "plain-text transcript file")
	cmd.Flags().StringVar(&s.record, "record", "", "transcript record key to read instead of --transcript")
	cmd.MarkFlagsMutuallyExclusive("transcript", "record")
}

// text returns the transcript as "Speaker: text" lines. An unset source
// yields an empty transcript.
func (s *transcriptSource) text(ctx context.Context, cmd *cobra.Command, a *app) (string, error) {
	switch {
	case s.record != "":
		records, err := newRecords(ctx, a)
		if err != nil {
			return "", err
		}
		rec, err := records.ReadTranscript(ctx, s.record)
		if err != nil {
			return "", err
		}
		return segment.FormatTranscript(rec.Turns), nil
	case s.file != "":
		data, err := readInput(cmd, s.file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}

func newAttributeCommand(opts *rootOptions) *cobra.Command {
	var (
		raw       string
		roster    []string
		threshold float64
		src       transcriptSource
	)
	cmd := &cobra.Command{
		Use:   "attribute",
		Short: "Turn raw model output into attributed action items",
		Long: `Parses raw model output (possibly malformed JSON), drops items below the
confidence threshold, infers owners from the transcript and roster, and
fills in due dates and priorities.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, raw)
			if err != nil {
				return err
			}
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				transcript, err := src.text(ctx, cmd, a)
				if err != nil {
					return err
				}
				pipeline := newPipeline(a)
				if !cmd.Flags().Changed("threshold") {
					threshold = pipeline.Threshold()
				}
				items, err := pipeline.ProcessWithThreshold(ctx, string(data), transcript, trimAll(roster), threshold)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"action_items": items})
			})
		},
	}
	cmd.Flags().StringVarP(&raw, "raw", "r", "-", `raw model output file, "-" for stdin`)
	cmd.Flags().StringSliceVar(&roster, "roster", nil, "comma-separated participant names")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence threshold in [0,1] (default from config)")
	src.bind(cmd)
	return cmd
}

func newCommitmentsCommand(opts *rootOptions) *cobra.Command {
	var raw string
	cmd := &cobra.Command{
		Use:   "commitments",
		Short: "Filter raw model output into implicit commitments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, raw)
			if err != nil {
				return err
			}
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				out, err := newPipeline(a).ProcessCommitments(ctx, string(data))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"implicit_commitments": out})
			})
		},
	}
	cmd.Flags().StringVarP(&raw, "raw", "r", "-", `raw model output file, "-" for stdin`)
	return cmd
}

func trimAll(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
