package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/minutes/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global meter provider.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the processing stages.
type Metrics struct {
	itemsTotal        metric.Int64Counter
	ownersTotal       metric.Int64Counter
	parseTotal        metric.Int64Counter
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	itemsTotal, err := meter.Int64Counter("minutes.items",
		metric.WithDescription("Extracted items by kind and filter outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating minutes.items counter: %w", err)
	}

	ownersTotal, err := meter.Int64Counter("minutes.owners",
		metric.WithDescription("Owner resolutions by strategy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating minutes.owners counter: %w", err)
	}

	parseTotal, err := meter.Int64Counter("minutes.parse",
		metric.WithDescription("Lenient JSON parses by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating minutes.parse counter: %w", err)
	}

	operationTotal, err := meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		itemsTotal:        itemsTotal,
		ownersTotal:       ownersTotal,
		parseTotal:        parseTotal,
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		errorTotal:        errorTotal,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments on the global "minutes" meter, or nil
// if they could not be created. All Metrics methods accept a nil receiver.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(Meter(defaultTracerName))
		if err != nil {
			logger.Warn("metrics disabled", logger.ErrorFields("new_metrics", err))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordItems records how many items of a kind survived the confidence filter.
func (m *Metrics) RecordItems(ctx context.Context, kind string, kept, dropped int) {
	if m == nil {
		return
	}
	m.itemsTotal.Add(ctx, int64(kept), metric.WithAttributes(
		attribute.String("kind", kind), attribute.String("outcome", "kept")))
	m.itemsTotal.Add(ctx, int64(dropped), metric.WithAttributes(
		attribute.String("kind", kind), attribute.String("outcome", "dropped")))
}

// RecordOwner records which owner strategy resolved an item.
func (m *Metrics) RecordOwner(ctx context.Context, strategy string) {
	if m == nil {
		return
	}
	m.ownersTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", strategy)))
}

// RecordParse records the outcome of a lenient JSON parse.
func (m *Metrics) RecordParse(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.parseTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordOperation records an operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.operationTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
