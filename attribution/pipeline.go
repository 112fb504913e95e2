package attribution

import (
	"context"
	"time"

	"github.com/kbukum/minutes/jsonrepair"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/pipeline"
)

// Clock returns the current time.
type Clock func() time.Time

// Pipeline parses model output and attributes the resulting items.
// A Pipeline is immutable after construction and safe for concurrent use.
type Pipeline struct {
	threshold           float64
	commitmentThreshold float64
	clock               Clock
	strategies          []OwnerStrategy
	offsets             DueOffsets
	log                 *logger.Logger
	metrics             *observability.Metrics
	newID               func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithThreshold sets the action-item confidence threshold.
func WithThreshold(t float64) Option {
	return func(p *Pipeline) { p.threshold = t }
}

// WithCommitmentThreshold sets the implicit-commitment confidence threshold.
func WithCommitmentThreshold(t float64) Option {
	return func(p *Pipeline) { p.commitmentThreshold = t }
}

// WithClock sets the time source used for due-date inference.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithStrategies replaces the owner strategies.
func WithStrategies(s ...OwnerStrategy) Option {
	return func(p *Pipeline) { p.strategies = s }
}

// WithDueOffsets sets the due-date offsets.
func WithDueOffsets(o DueOffsets) Option {
	return func(p *Pipeline) { p.offsets = o }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l.WithComponent("attribution")
		}
	}
}

// WithMetrics sets the metric instruments; nil disables metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a Pipeline with the default thresholds, offsets and
// strategies.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		threshold:           ActionItemThreshold,
		commitmentThreshold: CommitmentThreshold,
		clock:               time.Now,
		strategies:          DefaultStrategies(),
		offsets:             DefaultDueOffsets(),
		log:                 logger.WithComponent("attribution"),
		metrics:             observability.DefaultMetrics(),
		newID:               newID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Threshold returns the action-item confidence threshold.
func (p *Pipeline) Threshold() float64 { return p.threshold }

// Process parses raw model output and returns the attributed action items
// that meet the threshold, in model order.
func (p *Pipeline) Process(ctx context.Context, raw, transcript string, roster []string) ([]StructuredItem, error) {
	return p.ProcessWithThreshold(ctx, raw, transcript, roster, p.threshold)
}

// ProcessWithThreshold is Process with a per-call threshold.
func (p *Pipeline) ProcessWithThreshold(ctx context.Context, raw, transcript string, roster []string, threshold float64) ([]StructuredItem, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return p.processItems(ctx, p.parse(ctx, raw), transcript, roster, threshold)
}

// ProcessItems attributes already-parsed items.
func (p *Pipeline) ProcessItems(ctx context.Context, items []RawItem, transcript string, roster []string) ([]StructuredItem, error) {
	return p.processItems(ctx, items, transcript, roster, p.threshold)
}

// ProcessItemsWithThreshold is ProcessItems with a per-call threshold.
func (p *Pipeline) ProcessItemsWithThreshold(ctx context.Context, items []RawItem, transcript string, roster []string, threshold float64) ([]StructuredItem, error) {
	return p.processItems(ctx, items, transcript, roster, threshold)
}

func (p *Pipeline) processItems(ctx context.Context, items []RawItem, transcript string, roster []string, threshold float64) ([]StructuredItem, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAttribution)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrItemKind, "action_item")
	observability.SetSpanAttribute(ctx, observability.AttrItemsRaw, len(items))
	observability.SetSpanAttribute(ctx, observability.AttrThreshold, threshold)

	owners := newOwnerContext(transcript, roster, p.strategies)
	now := p.clock()

	owned := pipeline.Map(pipeline.FromSlice(items), func(ctx context.Context, item RawItem) (RawItem, error) {
		out, strategy := owners.assign(item)
		if strategy != "" && strategy != "existing" {
			p.metrics.RecordOwner(ctx, strategy)
			p.log.Debug("owner inferred", logger.Fields(
				logger.FieldStrategy, strategy, KeyOwner, out[KeyOwner]))
		}
		return out, nil
	})
	dated := pipeline.Map(owned, func(_ context.Context, item RawItem) (RawItem, error) {
		return p.offsets.infer(item, now), nil
	})
	kept := pipeline.Filter(dated, func(item RawItem) bool {
		return Confidence(item) >= threshold
	})
	structured := pipeline.Map(kept, func(_ context.Context, item RawItem) (StructuredItem, error) {
		return toStructured(item, p.newID()), nil
	})

	out, err := pipeline.Collect(ctx, structured)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	p.record(ctx, "action_item", len(items), len(out), threshold)
	return out, nil
}

// ProcessCommitments parses raw model output into implicit commitments at
// the commitment threshold.
func (p *Pipeline) ProcessCommitments(ctx context.Context, raw string) ([]Commitment, error) {
	return p.ProcessCommitmentItems(ctx, p.parse(ctx, raw))
}

// ProcessCommitmentItems filters already-parsed commitment items.
func (p *Pipeline) ProcessCommitmentItems(ctx context.Context, items []RawItem) ([]Commitment, error) {
	kept, err := FilterByConfidence(items, p.commitmentThreshold)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanCommitments)
	defer span.End()

	commitments := pipeline.Map(pipeline.FromSlice(kept), func(_ context.Context, item RawItem) (Commitment, error) {
		return toCommitment(item, p.newID()), nil
	})
	out, err := pipeline.Collect(ctx, commitments)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	p.record(ctx, "commitment", len(items), len(out), p.commitmentThreshold)
	return out, nil
}

func (p *Pipeline) parse(ctx context.Context, raw string) []RawItem {
	v, outcome := jsonrepair.Parse(raw)
	p.metrics.RecordParse(ctx, outcome.String())
	observability.SetSpanAttribute(ctx, observability.AttrParseOutcome, outcome.String())
	return jsonrepair.Items(v)
}

func (p *Pipeline) record(ctx context.Context, kind string, total, kept int, threshold float64) {
	dropped := total - kept
	observability.SetSpanAttribute(ctx, observability.AttrItemsKept, kept)
	p.metrics.RecordItems(ctx, kind, kept, dropped)
	p.log.Info("items attributed", logger.Fields(
		logger.FieldKind, kind,
		logger.FieldItems, total,
		logger.FieldKept, kept,
		logger.FieldDropped, dropped,
		logger.FieldThreshold, threshold,
	))
}
