package main

import (
	"fmt"
	"time"

	"github.com/kbukum/minutes/attribution"
	"github.com/kbukum/minutes/config"
	"github.com/kbukum/minutes/diarization/pyannote"
	"github.com/kbukum/minutes/llm"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/server"
	"github.com/kbukum/minutes/storage"
	"github.com/kbukum/minutes/transcription/whisper"
	"github.com/kbukum/minutes/validation"
	"github.com/kbukum/minutes/version"
)

const serviceName = "minutes"

// Config is the minutes binary configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Attribution   attribution.Config  `yaml:"attribution" mapstructure:"attribution"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	LLM           llm.Config          `yaml:"llm" mapstructure:"llm"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Record        RecordConfig        `yaml:"record" mapstructure:"record"`
	Speech        SpeechConfig        `yaml:"speech" mapstructure:"speech"`
}

// SpeechConfig selects the audio recognition sidecars.
type SpeechConfig struct {
	Enabled     bool            `yaml:"enabled" mapstructure:"enabled"`
	Whisper     whisper.Config  `yaml:"whisper" mapstructure:"whisper"`
	Diarization bool            `yaml:"diarization" mapstructure:"diarization"`
	Pyannote    pyannote.Config `yaml:"pyannote" mapstructure:"pyannote"`
}

// ObservabilityConfig controls OTLP export of traces and metrics.
type ObservabilityConfig struct {
	Tracing TelemetryConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics TelemetryConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TelemetryConfig configures one OTLP exporter.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// RecordConfig selects where output records are written.
type RecordConfig struct {
	Storage storage.Config `yaml:"storage" mapstructure:"storage"`
	// Workers bounds concurrent record reads.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
}

// ApplyDefaults fills unset fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Attribution.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Record.Storage.ApplyDefaults()
	if c.Record.Workers == 0 {
		c.Record.Workers = 4
	}
	c.Observability.applyDefaults()
}

func (o *ObservabilityConfig) applyDefaults() {
	if o.Tracing.Endpoint == "" {
		o.Tracing.Endpoint = "localhost:4318"
	}
	if o.Tracing.SampleRate == 0 {
		o.Tracing.SampleRate = 1.0
	}
	if o.Metrics.Endpoint == "" {
		o.Metrics.Endpoint = o.Tracing.Endpoint
	}
	if o.Metrics.Interval == 0 {
		o.Metrics.Interval = 15 * time.Second
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Record.Storage.Validate(); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// TracerConfig maps the tracing section onto the tracer setup.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Tracing.Endpoint,
		Insecure:       c.Observability.Tracing.Insecure,
		SampleRate:     c.Observability.Tracing.SampleRate,
	}
}

// MeterConfig maps the metrics section onto the meter setup.
func (c *Config) MeterConfig() observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Metrics.Endpoint,
		Insecure:       c.Observability.Metrics.Insecure,
		Interval:       c.Observability.Metrics.Interval,
	}
}
