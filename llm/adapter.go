package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/resilience"
	"github.com/kbukum/minutes/version"
)

// ErrNoDialect is returned by NewWithDialect when the dialect is nil.
var ErrNoDialect = errors.New("llm: dialect is required")

// maxErrorBody bounds how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Adapter is a config-driven model client that works with any backend via
// the Dialect pattern. Every call passes through a bulkhead, a retry loop
// and a circuit breaker, in that order.
type Adapter struct {
	name      string
	baseURL   string
	client    *http.Client
	dialect   Dialect
	model     string
	temp      float64
	maxTokens int
	apiKey    string
	headers   map[string]string

	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	log      *logger.Logger
}

// New creates an adapter from config using the global dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.applyDefaults()

	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return newAdapter(dialect, cfg), nil
}

// NewWithDialect creates an adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	cfg.applyDefaults()
	if cfg.Name == "" {
		cfg.Name = dialect.Name() + "-llm"
	}
	return newAdapter(dialect, cfg), nil
}

func newAdapter(dialect Dialect, cfg Config) *Adapter {
	log := logger.WithComponent("llm").WithFields(logger.Fields("adapter", cfg.Name))

	retry := resilience.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	if retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
			log.Warn("retrying model call", map[string]interface{}{
				"attempt":             attempt,
				"backoff":             backoff.String(),
				logger.FieldError:     err.Error(),
				logger.FieldOperation: "complete",
			})
		}
	}

	cbCfg := resilience.DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbCfg = *cfg.CircuitBreaker
		if cbCfg.Name == "" {
			cbCfg.Name = cfg.Name
		}
	}
	if cbCfg.OnStateChange == nil {
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
		}
	}

	var bhCfg resilience.BulkheadConfig
	if cfg.Bulkhead != nil {
		bhCfg = *cfg.Bulkhead
	}

	return &Adapter{
		name:      cfg.Name,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		dialect:   dialect,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		apiKey:    cfg.APIKey,
		headers:   cfg.Headers,
		retry:     retry,
		breaker:   resilience.NewCircuitBreaker(cbCfg),
		bulkhead:  resilience.NewBulkhead(bhCfg),
		metrics:   observability.DefaultMetrics(),
		log:       log,
	}
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Dialect returns the adapter's dialect.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// Model returns the default model.
func (a *Adapter) Model() string { return a.model }

// Complete sends a completion request and returns the full response.
func (a *Adapter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	ctx, span := observability.StartSpan(ctx, observability.SpanLLMComplete)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrLLMModel, req.Model)

	start := time.Now()
	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, a.fail(ctx, start, apperrors.Internal(fmt.Errorf("llm: build request: %w", err)))
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return CompletionResponse{}, a.fail(ctx, start, apperrors.Internal(fmt.Errorf("llm: marshal request: %w", err)))
	}

	var resp CompletionResponse
	err = a.bulkhead.Execute(ctx, func() error {
		var rerr error
		resp, rerr = resilience.Retry(ctx, a.retry, func() (CompletionResponse, error) {
			var out CompletionResponse
			cerr := a.breaker.Execute(func() error {
				var perr error
				out, perr = a.post(ctx, payload)
				return perr
			})
			return out, cerr
		})
		return rerr
	})
	if err != nil {
		return CompletionResponse{}, a.fail(ctx, start, a.mapError(err))
	}

	observability.SetSpanAttribute(ctx, observability.AttrTokens, resp.Usage.TotalTokens)
	observability.SetSpanAttribute(ctx, observability.AttrStatus, "ok")
	a.metrics.RecordOperation(ctx, a.name, "complete", "ok", time.Since(start))
	a.log.Debug("model call completed", map[string]interface{}{
		logger.FieldOperation: "complete",
		logger.FieldTokens:    resp.Usage.TotalTokens,
		logger.FieldDuration:  time.Since(start).Milliseconds(),
		"model":               resp.Model,
	})
	return resp, nil
}

// CheckHealth probes the dialect's health endpoint. Dialects without one
// report up without a network call.
func (a *Adapter) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{
		Name:    a.name,
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"dialect": a.dialect.Name(), "model": a.model},
	}
	hp := a.dialect.HealthPath()
	if hp == "" {
		return h
	}
	if a.breaker.State() == resilience.StateOpen {
		h.Status = observability.HealthStatusDegraded
		h.Message = "circuit open"
		return h
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+hp, http.NoBody)
	if err != nil {
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
		return h
	}
	a.setHeaders(req)
	resp, err := a.client.Do(req)
	if err != nil {
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
		return h
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.Status, h.Message = observability.HealthStatusDown, fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return h
}

func (a *Adapter) post(ctx context.Context, payload []byte) (CompletionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.dialect.ChatPath(), bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, apperrors.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return CompletionResponse{}, a.transportError(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, a.transportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CompletionResponse{}, a.statusError(resp.StatusCode, data)
	}

	parsed, err := a.dialect.ParseResponse(data)
	if err != nil {
		appErr := apperrors.ExternalServiceError(a.name, fmt.Errorf("llm: parse response: %w", err))
		appErr.Retryable = false
		return CompletionResponse{}, appErr
	}
	return *parsed, nil
}

func (a *Adapter) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", version.UserAgent())
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}
}

// transportError classifies a failed round trip. Caller cancellation is
// passed through untouched so the retry loop stops.
func (a *Adapter) transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Timeout("llm.complete").WithCause(err).WithDetail("service", a.name)
	}
	return apperrors.ServiceUnavailable(a.name).WithCause(err)
}

// statusError maps an HTTP failure. 429 and 5xx are retried; other 4xx are not.
func (a *Adapter) statusError(status int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	appErr := apperrors.ExternalServiceError(a.name, fmt.Errorf("unexpected status %d: %s", status, strings.TrimSpace(string(body))))
	appErr.WithDetail("status", status)
	appErr.Retryable = status == http.StatusTooManyRequests || status >= 500
	return appErr
}

// mapError turns resilience sentinels into application errors.
func (a *Adapter) mapError(err error) error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable(a.name).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("llm.complete").WithCause(err).WithDetail("service", a.name)
	}
	return err
}

func (a *Adapter) fail(ctx context.Context, start time.Time, err error) error {
	observability.SetSpanError(ctx, err)
	a.metrics.RecordOperation(ctx, a.name, "complete", "error", time.Since(start))
	errType := "unknown"
	if appErr, ok := apperrors.AsAppError(err); ok {
		errType = string(appErr.Code)
	}
	a.metrics.RecordError(ctx, errType, "llm")
	a.log.Warn("model call failed", logger.ErrorFields("complete", err))
	return err
}

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == 0 && a.temp != 0 {
		req.Temperature = a.temp
	}
	if req.MaxTokens == 0 && a.maxTokens != 0 {
		req.MaxTokens = a.maxTokens
	}
}
