package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/minutes/attribution"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/jsonrepair"
	"github.com/kbukum/minutes/llm"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/pipeline"
)

const serviceName = "analysis"

// Analyzer extracts structured meeting insights through a model backend.
type Analyzer struct {
	model       llm.Completer
	attribution *attribution.Pipeline
	clock       attribution.Clock
	log         *logger.Logger
	metrics     *observability.Metrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPipeline sets the attribution pipeline used for action items and commitments.
func WithPipeline(p *attribution.Pipeline) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.attribution = p
		}
	}
}

// WithClock sets the time source for Report.AnalyzedAt.
func WithClock(c attribution.Clock) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithLogger sets the analyzer's logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// NewAnalyzer creates an Analyzer over model. It fails when no model is configured.
func NewAnalyzer(model llm.Completer, opts ...Option) (*Analyzer, error) {
	if model == nil {
		return nil, apperrors.ServiceUnavailable("language model")
	}
	a := &Analyzer{
		model:   model,
		clock:   time.Now,
		log:     logger.WithComponent(serviceName),
		metrics: observability.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.attribution == nil {
		a.attribution = attribution.NewPipeline(attribution.WithClock(a.clock), attribution.WithMetrics(a.metrics))
	}
	return a, nil
}

// section writes one extraction's result into a report.
type section func(*Report)

// Analyze runs every extraction concurrently. A failed extraction is logged,
// listed in Report.Degraded and left at its empty value; only a blank
// transcript or a cancelled context fail the call.
func (a *Analyzer) Analyze(ctx context.Context, transcript string, meta *Metadata) (*Report, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apperrors.MissingField("transcript")
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAnalysis)
	defer span.End()
	start := time.Now()

	kinds := []string{KindActionItems, KindDecisions, KindTopics, KindQuestions, KindCommitments, KindSummary, KindSentiment}
	branches := []func(context.Context, string) (section, error){
		func(ctx context.Context, t string) (section, error) {
			items, err := a.ActionItems(ctx, t, meta)
			return func(r *Report) { r.ActionItems = items }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Decisions(ctx, t)
			return func(r *Report) { r.Decisions = v }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Topics(ctx, t)
			return func(r *Report) { r.Topics = v }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Questions(ctx, t)
			return func(r *Report) { r.Questions = v }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Commitments(ctx, t)
			return func(r *Report) { r.Commitments = v }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Summary(ctx, t, meta)
			return func(r *Report) { r.Summary = v }, err
		},
		func(ctx context.Context, t string) (section, error) {
			v, err := a.Sentiment(ctx, t)
			return func(r *Report) { r.Sentiment = v }, err
		},
	}

	results, err := pipeline.Collect(ctx, pipeline.FanOutSettled(pipeline.Just(transcript), branches...))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	report := newReport()
	for i, s := range results[0] {
		if s.Err != nil {
			report.Degraded = append(report.Degraded, kinds[i])
			a.metrics.RecordError(ctx, errorType(s.Err), serviceName)
			a.log.Warn("extraction failed, using empty result", map[string]interface{}{
				logger.FieldKind:      kinds[i],
				logger.FieldOperation: "analyze",
				logger.FieldError:     s.Err.Error(),
			})
			continue
		}
		s.Value(report)
	}
	report.AnalyzedAt = a.clock().UTC()

	status := "ok"
	if len(report.Degraded) > 0 {
		status = "degraded"
	}
	observability.SetSpanAttribute(ctx, observability.AttrStatus, status)
	a.metrics.RecordOperation(ctx, serviceName, "analyze", status, time.Since(start))
	a.log.Info("transcript analysis completed", map[string]interface{}{
		logger.FieldOperation: "analyze",
		logger.FieldItems:     len(report.ActionItems),
		logger.FieldDuration:  time.Since(start).Milliseconds(),
		"degraded":            len(report.Degraded),
	})
	return report, nil
}

// ActionItems extracts action items and runs them through attribution,
// using the meeting participants as the roster.
func (a *Analyzer) ActionItems(ctx context.Context, transcript string, meta *Metadata) ([]attribution.StructuredItem, error) {
	text, err := a.complete(ctx, KindActionItems, buildPrompt(KindActionItems, transcript, meta))
	if err != nil {
		return nil, err
	}
	return a.attribution.Process(ctx, text, transcript, meta.Roster())
}

// Decisions extracts key decisions.
func (a *Analyzer) Decisions(ctx context.Context, transcript string) ([]Decision, error) {
	return extractList[Decision](ctx, a, KindDecisions, transcript)
}

// Topics extracts key topics.
func (a *Analyzer) Topics(ctx context.Context, transcript string) ([]Topic, error) {
	return extractList[Topic](ctx, a, KindTopics, transcript)
}

// Questions extracts open questions; urgency is normalised like priority.
func (a *Analyzer) Questions(ctx context.Context, transcript string) ([]OpenQuestion, error) {
	qs, err := extractList[OpenQuestion](ctx, a, KindQuestions, transcript)
	for i := range qs {
		qs[i].Urgency = attribution.NormalizePriority(string(qs[i].Urgency))
	}
	return qs, err
}

// Commitments extracts implicit commitments kept at the commitment threshold.
func (a *Analyzer) Commitments(ctx context.Context, transcript string) ([]attribution.Commitment, error) {
	text, err := a.complete(ctx, KindCommitments, buildPrompt(KindCommitments, transcript, nil))
	if err != nil {
		return nil, err
	}
	return a.attribution.ProcessCommitments(ctx, text)
}

// Summary generates the executive summary. On failure it returns
// FailedSummary alongside the error.
func (a *Analyzer) Summary(ctx context.Context, transcript string, meta *Metadata) (Summary, error) {
	text, err := a.complete(ctx, KindSummary, buildPrompt(KindSummary, transcript, meta))
	if err != nil {
		return FailedSummary(), err
	}
	obj := a.parseObject(ctx, KindSummary, text)
	if len(obj) == 0 {
		return FailedSummary(), nil
	}
	var s Summary
	if err := decodeInto(obj, &s); err != nil {
		a.log.Warn("summary did not match the expected shape", logger.ErrorFields("summary", err))
		return FailedSummary(), nil
	}
	if s.KeyOutcomes == nil {
		s.KeyOutcomes = StringList{}
	}
	if s.CriticalActionItems == nil {
		s.CriticalActionItems = StringList{}
	}
	if s.RisksOrBlockers == nil {
		s.RisksOrBlockers = StringList{}
	}
	return s, nil
}

// Sentiment analyses overall tone. Unusable output yields the zero Sentiment.
func (a *Analyzer) Sentiment(ctx context.Context, transcript string) (Sentiment, error) {
	text, err := a.complete(ctx, KindSentiment, buildPrompt(KindSentiment, transcript, nil))
	if err != nil {
		return Sentiment{}, err
	}
	var s Sentiment
	if obj := a.parseObject(ctx, KindSentiment, text); len(obj) > 0 {
		if err := decodeInto(obj, &s); err != nil {
			a.log.Warn("sentiment did not match the expected shape", logger.ErrorFields("sentiment", err))
			return Sentiment{}, nil
		}
	}
	return s, nil
}

// Query answers a free-form question about the transcript.
func (a *Analyzer) Query(ctx context.Context, transcript, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", apperrors.MissingField("question")
	}
	if strings.TrimSpace(transcript) == "" {
		return "", apperrors.MissingField("transcript")
	}
	text, err := a.complete(ctx, KindQuery, fmtQuery(question, transcript))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func extractList[T any](ctx context.Context, a *Analyzer, kind, transcript string) ([]T, error) {
	text, err := a.complete(ctx, kind, buildPrompt(kind, transcript, nil))
	if err != nil {
		return nil, err
	}
	v, outcome := jsonrepair.Parse(text)
	a.metrics.RecordParse(ctx, outcome.String())
	items := jsonrepair.Items(v)
	out, dropped := decodeItems[T](items)
	a.metrics.RecordItems(ctx, kind, len(out), dropped)
	a.log.Debug("items extracted", map[string]interface{}{
		logger.FieldKind:    kind,
		logger.FieldItems:   len(items),
		logger.FieldKept:    len(out),
		logger.FieldDropped: dropped,
	})
	return out, nil
}

func (a *Analyzer) parseObject(ctx context.Context, kind, text string) map[string]any {
	v, outcome := jsonrepair.Parse(text)
	a.metrics.RecordParse(ctx, outcome.String())
	obj, _ := v.(map[string]any)
	if len(obj) == 0 {
		a.log.Warn("model returned no usable object", logger.Fields(logger.FieldKind, kind, "outcome", outcome.String()))
	}
	return obj
}

// complete sends one prompt inside an extraction span.
func (a *Analyzer) complete(ctx context.Context, kind, prompt string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanExtraction)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrItemKind, kind)

	start := time.Now()
	text, err := llm.Complete(ctx, a.model, systemPrompt, prompt)
	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	a.metrics.RecordOperation(ctx, serviceName, kind, status, time.Since(start))
	return text, err
}

func errorType(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "unknown"
}
