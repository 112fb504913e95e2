// Package whisper implements transcription.Provider on a faster-whisper
// HTTP sidecar.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/transcription"
	"github.com/kbukum/minutes/transcription/audio"
	"github.com/kbukum/minutes/version"
)

const (
	// ProviderName is the name reported in logs and health output.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the whisper sidecar.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements transcription.Provider.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a whisper provider, filling unset config fields.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
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
	h := audio.ProbeHealth(ctx, p.client, ProviderName, p.cfg.URL+"/health")
	h.Details = map[string]string{"model": p.cfg.Model}
	return h
}

// Transcribe uploads the audio with word timestamps requested.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	fields := map[string]string{
		"model":           p.cfg.Model,
		"word_timestamps": "true",
	}
	if req.Model != "" {
		fields["model"] = req.Model
	}
	if lang := firstNonEmpty(req.Language, p.cfg.Language); lang != "" {
		fields["language"] = lang
	}
	body, contentType, err := audio.Form(req.AudioPath, fields)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", body)
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

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.ExternalServiceError(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return result.toResult(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text       string        `json:"text"`
	Start      float64       `json:"start"`
	End        float64       `json:"end"`
	Confidence float64       `json:"confidence"`
	Words      []whisperWord `json:"words"`
}

type whisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

func (r *whisperResponse) toResult() *transcription.Result {
	out := &transcription.Result{Text: strings.TrimSpace(r.Text), Language: r.Language}
	for _, seg := range r.Segments {
		if len(seg.Words) == 0 {
			out.Words = append(out.Words, splitSegment(seg)...)
		}
		for _, w := range seg.Words {
			out.Words = append(out.Words, transcription.Word{
				Text:        strings.TrimSpace(w.Word),
				Start:       w.Start,
				End:         w.End,
				Probability: w.Probability,
			})
		}
		out.Duration = max(out.Duration, seg.End)
	}
	return out
}

// splitSegment spreads a segment's words evenly over its span when the
// sidecar returned no word timings.
func splitSegment(seg whisperSegment) []transcription.Word {
	fields := strings.Fields(seg.Text)
	if len(fields) == 0 {
		return nil
	}
	step := max(seg.End-seg.Start, 0) / float64(len(fields))
	words := make([]transcription.Word, len(fields))
	for i, f := range fields {
		start := seg.Start + step*float64(i)
		words[i] = transcription.Word{Text: f, Start: start, End: start + step, Probability: seg.Confidence}
	}
	return words
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ transcription.Provider = (*Provider)(nil)
