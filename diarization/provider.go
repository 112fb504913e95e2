package diarization

import (
	"context"

	"github.com/kbukum/minutes/observability"
)

// Provider is implemented by diarization backends.
type Provider interface {
	Name() string
	observability.HealthChecker

	// Diarize returns the speaker segments of the audio in req.
	Diarize(ctx context.Context, req Request) (*Result, error)
}
