package main

import (
	"context"

	"github.com/kbukum/minutes/analysis"
	"github.com/kbukum/minutes/attribution"
	"github.com/kbukum/minutes/bootstrap"
	"github.com/kbukum/minutes/diarization/pyannote"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/llm"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/record"
	"github.com/kbukum/minutes/storage"
	"github.com/kbukum/minutes/transcription"
	"github.com/kbukum/minutes/transcription/whisper"
	"github.com/kbukum/minutes/util"
)

type app = bootstrap.App[*Config]

func newPipeline(a *app) *attribution.Pipeline {
	opts := append(a.Cfg.Attribution.Options(), attribution.WithLogger(a.Logger.WithComponent("attribution")))
	return attribution.NewPipeline(opts...)
}

func newRecords(ctx context.Context, a *app) (*record.Writer, error) {
	store, err := storage.New(ctx, a.Cfg.Record.Storage, a.Logger)
	if err != nil {
		return nil, err
	}
	return record.NewWriter(store,
		record.WithWorkers(a.Cfg.Record.Workers),
		record.WithLogger(a.Logger.WithComponent("record")),
	), nil
}

// newModel returns a nil adapter and no error when the model is disabled.
func newModel(a *app) (*llm.Adapter, error) {
	cfg := a.Cfg.LLM
	if !cfg.Enabled {
		return nil, nil
	}
	adapter, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("language model configured", logger.Fields(
		"name", adapter.Name(),
		"dialect", adapter.Dialect().Name(),
		"model", adapter.Model(),
		"api_key", util.MaskSecret(cfg.APIKey, 4),
	))
	return adapter, nil
}

func newAnalyzer(model *llm.Adapter, pipeline *attribution.Pipeline, a *app) (*analysis.Analyzer, error) {
	if model == nil {
		return nil, apperrors.ServiceUnavailable("language model")
	}
	return analysis.NewAnalyzer(model,
		analysis.WithPipeline(pipeline),
		analysis.WithLogger(a.Logger.WithComponent("analysis")),
	)
}

// newSpeech returns nil and no error when audio recognition is disabled.
func newSpeech(a *app) (*transcription.Service, error) {
	cfg := a.Cfg.Speech
	if !cfg.Enabled {
		return nil, nil
	}
	opts := []transcription.Option{transcription.WithLogger(a.Logger.WithComponent("transcription"))}
	if cfg.Diarization {
		opts = append(opts, transcription.WithDiarizer(pyannote.NewProvider(cfg.Pyannote)))
	}
	return transcription.NewService(whisper.NewProvider(cfg.Whisper), opts...)
}

type shutdownFunc func(context.Context) error

// telemetryComponents returns the OTLP providers enabled in cfg. They are
// registered first so they stop last and flush what the others recorded.
func telemetryComponents(cfg *Config) []bootstrap.Component {
	var comps []bootstrap.Component
	if cfg.Observability.Tracing.Enabled {
		var shutdown shutdownFunc
		comps = append(comps, bootstrap.NewComponent("tracer",
			func(ctx context.Context) error {
				tp, err := observability.InitTracer(ctx, cfg.TracerConfig())
				if err != nil {
					return err
				}
				shutdown = tp.Shutdown
				return nil
			},
			func(ctx context.Context) error { return shutdown.call(ctx) },
		))
	}
	if cfg.Observability.Metrics.Enabled {
		var shutdown shutdownFunc
		comps = append(comps, bootstrap.NewComponent("meter",
			func(ctx context.Context) error {
				mp, err := observability.InitMeter(ctx, cfg.MeterConfig())
				if err != nil {
					return err
				}
				shutdown = mp.Shutdown
				return nil
			},
			func(ctx context.Context) error { return shutdown.call(ctx) },
		))
	}
	return comps
}

func (f shutdownFunc) call(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}
