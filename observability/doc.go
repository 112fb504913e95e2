// Package observability wires OpenTelemetry tracing and metrics into the
// transcript and attribution stages.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("minutes"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanAttribution)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("minutes"))
//	defer mp.Shutdown(ctx)
//
//	metrics := observability.DefaultMetrics()
//	metrics.RecordItems(ctx, "action_item", kept, dropped)
//
// Instruments created before InitMeter report to the no-op provider, so
// callers that never initialise metrics pay nothing.
package observability
