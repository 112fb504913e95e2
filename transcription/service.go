package transcription

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/minutes/diarization"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/segment"
)

const serviceName = "transcription"

// Service recognizes audio files into speaker-tagged transcripts.
type Service struct {
	transcriber Provider
	diarizer    diarization.Provider
	log         *logger.Logger
	metrics     *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithDiarizer attributes words to speakers using d.
func WithDiarizer(d diarization.Provider) Option {
	return func(s *Service) { s.diarizer = d }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service over a speech-to-text backend.
func NewService(t Provider, opts ...Option) (*Service, error) {
	if t == nil {
		return nil, apperrors.ServiceUnavailable("speech recognizer")
	}
	s := &Service{
		transcriber: t,
		log:         logger.WithComponent(serviceName),
		metrics:     observability.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Checkers returns the health checkers of the configured backends.
func (s *Service) Checkers() []observability.HealthChecker {
	out := []observability.HealthChecker{s.transcriber}
	if s.diarizer != nil {
		out = append(out, s.diarizer)
	}
	return out
}

type diarized struct {
	res *diarization.Result
	err error
}

// Recognize transcribes and, when a diarizer is set, diarizes the audio
// concurrently, then aligns the two. A diarization failure degrades the
// output to undiarized tokens instead of failing.
func (s *Service) Recognize(ctx context.Context, req Request) (*Output, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, apperrors.MissingField("audio_path")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanRecognize)
	defer span.End()
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var speakers chan diarized
	if s.diarizer != nil {
		speakers = make(chan diarized, 1)
		go func() {
			res, err := s.diarizer.Diarize(ctx, diarization.Request{
				AudioPath:   req.AudioPath,
				NumSpeakers: req.NumSpeakers,
				MinSpeakers: req.MinSpeakers,
				MaxSpeakers: req.MaxSpeakers,
			})
			speakers <- diarized{res: res, err: err}
		}()
	}

	result, err := s.transcriber.Transcribe(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
		s.metrics.RecordOperation(ctx, serviceName, "recognize", "error", time.Since(start))
		s.metrics.RecordError(ctx, "transcribe", serviceName)
		s.log.Error("transcription failed", logger.Fields(
			logger.FieldRecordPath, req.AudioPath,
			"provider", s.transcriber.Name(),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	out := &Output{Language: result.Language, Duration: result.Duration}
	var segments []diarization.Segment
	if speakers != nil {
		d := <-speakers
		if d.err != nil {
			s.metrics.RecordError(ctx, "diarize", serviceName)
			s.log.Warn("diarization failed, speakers unknown", logger.ErrorFields("diarize", d.err))
		} else if d.res != nil {
			segments = d.res.Segments
			out.Diarized = true
		}
	}

	out.Transcript = segment.NewTranscript(Align(result.Words, segments))
	s.metrics.RecordOperation(ctx, serviceName, "recognize", "ok", time.Since(start))
	s.log.Info("audio recognized", logger.Fields(
		logger.FieldRecordPath, req.AudioPath,
		logger.FieldTokens, len(out.Tokens),
		logger.FieldSpeakers, len(out.Speakers),
		"diarized", out.Diarized,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return out, nil
}
