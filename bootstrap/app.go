package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/minutes/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// App holds a validated config, the logger and the registered components.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger

	components      []Component
	started         []Component
	gracefulTimeout time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := &appOptions{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		logger.Init(base.Logging)
		o.logger = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          o.logger,
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// Register adds components. They start in registration order and stop in
// reverse.
func (a *App[C]) Register(components ...Component) {
	a.components = append(a.components, components...)
}

// Run starts the application and blocks until SIGINT, SIGTERM or ctx
// cancellation, then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.waitForSignal(ctx)
	return a.stop()
}

// RunTask starts the application, runs task with a context that a signal
// cancels, then shuts down. The task's error wins over a shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	cancel()

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	for _, c := range a.components {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		a.started = append(a.started, c)
		a.Logger.Debug("Component started", map[string]interface{}{"component": c.Name()})
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}
	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return err
	}

	a.Logger.Info("Startup complete", map[string]interface{}{
		"components":         len(a.started),
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	return nil
}

func (a *App[C]) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	}
}

// stop runs the stop hooks, then stops started components in reverse order.
// Every component gets a stop call even when an earlier one fails.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, "stop", a.onStop); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.started) - 1; i >= 0; i-- {
		c := a.started[i]
		if err := c.Stop(ctx); err != nil {
			a.Logger.Error("Component stop failed", map[string]interface{}{
				"component":       c.Name(),
				logger.FieldError: err.Error(),
			})
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
		}
	}
	a.started = nil

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
