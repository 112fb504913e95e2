package bootstrap

import "context"

// Component is infrastructure with a start/stop lifecycle, such as the
// HTTP server or the telemetry exporters.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type funcComponent struct {
	name  string
	start func(context.Context) error
	stop  func(context.Context) error
}

// NewComponent builds a Component from start and stop functions; either may be nil.
func NewComponent(name string, start, stop func(context.Context) error) Component {
	return &funcComponent{name: name, start: start, stop: stop}
}

func (c *funcComponent) Name() string { return c.name }

func (c *funcComponent) Start(ctx context.Context) error {
	if c.start == nil {
		return nil
	}
	return c.start(ctx)
}

func (c *funcComponent) Stop(ctx context.Context) error {
	if c.stop == nil {
		return nil
	}
	return c.stop(ctx)
}
