// Package pyannote implements diarization.Provider on a pyannote HTTP sidecar.
package pyannote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/minutes/diarization"
	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/transcription/audio"
	"github.com/kbukum/minutes/version"
)

const (
	// ProviderName is the name reported in logs and health output.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the pyannote sidecar.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements diarization.Provider.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a pyannote provider, filling unset config fields.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// CheckHealth reports whether the sidecar answers GET /health.
func (p *Provider) CheckHealth(ctx context.Context) observability.Health {
	return audio.ProbeHealth(ctx, p.client, ProviderName, p.cfg.URL+"/health")
}

// Diarize uploads the audio and returns its speaker segments, normalized
// to "Speaker N" labels.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Result, error) {
	fields := map[string]string{}
	if req.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}
	if req.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(req.MinSpeakers)
	}
	if req.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(req.MaxSpeakers)
	}
	body, contentType, err := audio.Form(req.AudioPath, fields)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/diarize", body)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var result pyannoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	if result.Error != "" {
		return nil, apperrors.ExternalServiceError(ProviderName, errors.New(result.Error))
	}
	return result.toResult(), nil
}

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (r *pyannoteResponse) toResult() *diarization.Result {
	segments := make([]diarization.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = diarization.Segment{Speaker: seg.SpeakerID, Start: seg.StartTime, End: seg.EndTime}
	}
	segments = diarization.Normalize(segments)

	n := r.NumSpeakers
	if n == 0 {
		seen := map[string]bool{}
		for _, s := range segments {
			seen[s.Speaker] = true
		}
		n = len(seen)
	}
	return &diarization.Result{Segments: segments, NumSpeakers: n}
}

var _ diarization.Provider = (*Provider)(nil)
