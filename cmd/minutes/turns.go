package main

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/segment"
)

type turnsOutput struct {
	segment.Transcript
	RecordKey string `json:"record_key,omitempty"`
}

func newTurnsCommand(opts *rootOptions) *cobra.Command {
	var in, save string
	cmd := &cobra.Command{
		Use:   "turns",
		Short: "Group diarized tokens into speaker turns",
		Long: `Reads a JSON array of tokens (or an object with a "tokens" array) and
prints the transcript with turns and per-speaker statistics. With --save
the transcript is also written as a record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			tokens, err := decodeTokens(data)
			if err != nil {
				return err
			}
			if err := segment.CheckOrder(tokens); err != nil {
				return err
			}

			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				out := turnsOutput{Transcript: segment.NewTranscript(tokens)}
				if save != "" {
					records, err := newRecords(ctx, a)
					if err != nil {
						return err
					}
					rec, err := records.WriteTranscript(ctx, save, out.Transcript)
					if err != nil {
						return err
					}
					out.RecordKey = rec.Key
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "-", `token JSON file, "-" for stdin`)
	cmd.Flags().StringVar(&save, "save", "", "write the transcript as a record under this base name")
	return cmd
}

func decodeTokens(data []byte) ([]segment.Token, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Tokens []segment.Token `json:"tokens"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, apperrors.InvalidFormat("tokens", "JSON array of tokens").WithCause(err)
		}
		return wrapped.Tokens, nil
	}
	var tokens []segment.Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, apperrors.InvalidFormat("tokens", "JSON array of tokens").WithCause(err)
	}
	return tokens, nil
}
