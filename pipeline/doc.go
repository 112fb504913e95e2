// Package pipeline provides lazy, pull-based pipeline operators used to
// stage item processing and to run independent model extractions side by
// side.
//
// No work happens until values are pulled via Collect or ForEach.
//
//	items := pipeline.FromSlice(raw)
//	owned := pipeline.Map(items, assignOwner)
//	kept := pipeline.Filter(owned, aboveThreshold)
//	out, err := pipeline.Collect(ctx, kept)
//
// FanOutSettled runs several functions on the same input concurrently and
// reports each outcome separately, so one failing branch does not discard
// the others.
package pipeline
