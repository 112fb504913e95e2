package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/minutes/analysis"
	apperrors "github.com/kbukum/minutes/errors"
)

type analyzeOutput struct {
	*analysis.Report
	RecordKey string `json:"record_key,omitempty"`
}

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var (
		src  transcriptSource
		meta analysis.Metadata
		save string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full model-backed meeting analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				analyzer, err := analyzerFor(a)
				if err != nil {
					return err
				}
				transcript, err := requireTranscript(ctx, cmd, a, &src)
				if err != nil {
					return err
				}
				meta.Participants = trimAll(meta.Participants)

				report, err := analyzer.Analyze(ctx, transcript, &meta)
				if err != nil {
					return err
				}
				out := analyzeOutput{Report: report}
				if save != "" {
					records, err := newRecords(ctx, a)
					if err != nil {
						return err
					}
					rec, err := records.WriteAnalysis(ctx, save, report, &meta)
					if err != nil {
						return err
					}
					out.RecordKey = rec.Key
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVar(&meta.Title, "title", "", "meeting title")
	cmd.Flags().StringSliceVar(&meta.Participants, "participants", nil, "comma-separated participant names")
	cmd.Flags().StringVar(&meta.Agenda, "agenda", "", "meeting agenda")
	cmd.Flags().StringVar(&meta.Date, "date", "", "meeting date")
	cmd.Flags().StringVar(&save, "save", "", "write the report as a record under this base name")
	return cmd
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	var (
		src      transcriptSource
		question string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a free-form question about a transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(question) == "" {
				return apperrors.MissingField("question")
			}
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				analyzer, err := analyzerFor(a)
				if err != nil {
					return err
				}
				transcript, err := requireTranscript(ctx, cmd, a, &src)
				if err != nil {
					return err
				}
				answer, err := analyzer.Query(ctx, transcript, question)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"answer": answer})
			})
		},
	}
	src.bind(cmd)
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask")
	return cmd
}

func analyzerFor(a *app) (*analysis.Analyzer, error) {
	model, err := newModel(a)
	if err != nil {
		return nil, err
	}
	return newAnalyzer(model, newPipeline(a), a)
}

func requireTranscript(ctx context.Context, cmd *cobra.Command, a *app, src *transcriptSource) (string, error) {
	transcript, err := src.text(ctx, cmd, a)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(transcript) == "" {
		return "", apperrors.MissingField("transcript")
	}
	return transcript, nil
}
