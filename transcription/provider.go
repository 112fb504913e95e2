package transcription

import (
	"context"

	"github.com/kbukum/minutes/observability"
)

// Provider is implemented by speech-to-text backends.
type Provider interface {
	Name() string
	observability.HealthChecker

	// Transcribe returns the timed words of the audio in req.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
