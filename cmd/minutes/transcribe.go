package main

import (
	"context"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/transcription"
)

type transcribeOutput struct {
	*transcription.Output
	RecordKey string `json:"record_key,omitempty"`
}

func newTranscribeCommand(opts *rootOptions) *cobra.Command {
	var (
		req  transcription.Request
		save string
	)
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Recognize an audio file into speaker turns",
		Long: `Sends the audio to the whisper sidecar for timed words and, when
speech.diarization is enabled, to the pyannote sidecar for speaker segments,
then groups the aligned tokens into turns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.AudioPath == "" {
				return apperrors.MissingField("audio")
			}
			a, err := opts.newApp(true)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				svc, err := newSpeech(a)
				if err != nil {
					return err
				}
				if svc == nil {
					return apperrors.ServiceUnavailable("speech recognizer")
				}
				out, err := svc.Recognize(ctx, req)
				if err != nil {
					return err
				}
				result := transcribeOutput{Output: out}
				if save != "" {
					records, err := newRecords(ctx, a)
					if err != nil {
						return err
					}
					rec, err := records.WriteTranscript(ctx, save, out.Transcript)
					if err != nil {
						return err
					}
					result.RecordKey = rec.Key
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVarP(&req.AudioPath, "audio", "a", "", "audio file")
	cmd.Flags().StringVar(&req.Language, "language", "", "spoken language, e.g. en (default: detect)")
	cmd.Flags().StringVar(&req.Model, "model", "", "whisper model override")
	cmd.Flags().IntVar(&req.NumSpeakers, "speakers", 0, "exact number of speakers, 0 to detect")
	cmd.Flags().StringVar(&save, "save", "", "write the transcript as a record under this base name")
	return cmd
}
