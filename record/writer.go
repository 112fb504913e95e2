package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/minutes/analysis"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/pipeline"
	"github.com/kbukum/minutes/segment"
	"github.com/kbukum/minutes/storage"
)

const (
	serviceName = "record"

	// TimestampLayout formats the timestamp part of a record key.
	TimestampLayout = "20060102_150405"

	kindTranscript = "transcript"
	kindAnalysis   = "analysis"

	defaultBase    = "meeting"
	defaultWorkers = 4
	healthKey      = ".health"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Writer reads and writes records in a storage backend.
type Writer struct {
	store   storage.Storage
	now     func() time.Time
	newID   func() string
	workers int
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the time source for record timestamps and keys.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithIDGenerator sets the record ID source.
func WithIDGenerator(fn func() string) Option {
	return func(w *Writer) {
		if fn != nil {
			w.newID = fn
		}
	}
}

// WithWorkers bounds concurrent reads in ReadTranscripts.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithLogger sets the writer's logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// NewWriter creates a Writer over store.
func NewWriter(store storage.Storage, opts ...Option) *Writer {
	w := &Writer{
		store:   store,
		now:     time.Now,
		newID:   uuid.NewString,
		workers: defaultWorkers,
		log:     logger.WithComponent(serviceName),
		metrics: observability.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Key returns the storage key for a record of kind written at t:
// "<base>_<kind>_<YYYYmmdd_HHMMSS>.json". The base is reduced to characters
// safe in file names and object keys.
func Key(base, kind string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.json", SanitizeBase(base), kind, t.Format(TimestampLayout))
}

// SanitizeBase replaces runs of unsafe characters with "_". A base with no
// usable characters becomes "meeting".
func SanitizeBase(base string) string {
	s := strings.Trim(unsafeKeyChars.ReplaceAllString(strings.TrimSpace(base), "_"), "_.")
	if s == "" {
		return defaultBase
	}
	return s
}

// WriteTranscript stores t as a new transcript record named after base.
func (w *Writer) WriteTranscript(ctx context.Context, base string, t segment.Transcript) (*TranscriptRecord, error) {
	now := w.now()
	rec := &TranscriptRecord{
		Key:        Key(base, kindTranscript, now),
		ID:         w.newID(),
		Source:     base,
		CreatedAt:  now.UTC(),
		Transcript: t,
	}
	if err := w.write(ctx, "write_transcript", rec.Key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// WriteAnalysis stores report as a new analysis record named after base.
func (w *Writer) WriteAnalysis(ctx context.Context, base string, report *analysis.Report, meta *analysis.Metadata) (*AnalysisRecord, error) {
	if report == nil {
		return nil, apperrors.MissingField("analysis")
	}
	now := w.now()
	rec := &AnalysisRecord{
		Key:       Key(base, kindAnalysis, now),
		ID:        w.newID(),
		Source:    base,
		CreatedAt: now.UTC(),
		Metadata:  meta,
		Analysis:  report,
	}
	if err := w.write(ctx, "write_analysis", rec.Key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadTranscript loads the transcript record stored at key.
func (w *Writer) ReadTranscript(ctx context.Context, key string) (*TranscriptRecord, error) {
	data, err := storage.ReadAll(ctx, w.store, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("transcript record", key)
		}
		return nil, apperrors.Internal(err).WithDetail("key", key)
	}
	var rec TranscriptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.InvalidFormat(key, "transcript record JSON").WithCause(err)
	}
	rec.Key = key
	return &rec, nil
}

// ReadTranscripts loads several records concurrently, in the order given.
// The first failure aborts the batch.
func (w *Writer) ReadTranscripts(ctx context.Context, keys ...string) ([]*TranscriptRecord, error) {
	return pipeline.Collect(ctx, pipeline.Parallel(pipeline.FromSlice(keys), w.workers, w.ReadTranscript))
}

// RelabelFile renames speakers in the record at key and writes it back in
// place. Turns, tokens and speaker statistics are all rewritten.
func (w *Writer) RelabelFile(ctx context.Context, key string, mapping map[string]string) (*TranscriptRecord, error) {
	if len(mapping) == 0 {
		return nil, apperrors.MissingField("mapping")
	}
	rec, err := w.ReadTranscript(ctx, key)
	if err != nil {
		return nil, err
	}
	rec.Transcript = rec.Transcript.Relabel(mapping)
	if err := w.write(ctx, "relabel", key, rec); err != nil {
		return nil, err
	}
	w.log.Info("speaker labels updated", logger.Fields(logger.FieldRecordPath, key, logger.FieldSpeakers, len(rec.Speakers)))
	return rec, nil
}

// Transcripts lists the transcript records written for base.
func (w *Writer) Transcripts(ctx context.Context, base string) ([]storage.FileInfo, error) {
	files, err := w.store.List(ctx, SanitizeBase(base)+"_"+kindTranscript+"_")
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return files, nil
}

// CheckHealth reports whether the storage backend answers.
func (w *Writer) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: serviceName, Status: observability.HealthStatusUp}
	if _, err := w.store.Exists(ctx, healthKey); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

func (w *Writer) write(ctx context.Context, op, key string, v any) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanRecordWrite)
	defer span.End()

	start := time.Now()
	data, err := encode(v)
	if err == nil {
		err = storage.WriteAll(ctx, w.store, key, data)
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		w.metrics.RecordOperation(ctx, serviceName, op, "error", time.Since(start))
		w.metrics.RecordError(ctx, "write", serviceName)
		w.log.Error("record write failed", logger.Fields(logger.FieldOperation, op, logger.FieldRecordPath, key, logger.FieldError, err.Error()))
		return apperrors.Internal(err).WithDetail("key", key)
	}
	w.metrics.RecordOperation(ctx, serviceName, op, "ok", time.Since(start))
	w.log.Info("record saved", logger.Fields(logger.FieldOperation, op, logger.FieldRecordPath, key, logger.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

// encode renders v as two-space indented JSON without HTML escaping.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
