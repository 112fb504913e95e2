package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/resilience"
)

type mockDialect struct {
	name       string
	healthPath string
}

func (m *mockDialect) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}
func (m *mockDialect) ChatPath() string   { return "/chat" }
func (m *mockDialect) HealthPath() string { return m.healthPath }

func (m *mockDialect) BuildRequest(req CompletionRequest) (any, error) {
	return map[string]any{
		"model":       req.Model,
		"messages":    req.AllMessages(),
		"temperature": req.Temperature,
		"json":        req.JSONMode,
	}, nil
}

func (m *mockDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var resp struct {
		Content string `json:"content"`
		Model   string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: resp.Content, Model: resp.Model}, nil
}

func fastRetry(attempts int) *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func withRegistry(t *testing.T) {
	t.Helper()
	dialectsMu.Lock()
	original := dialects
	dialects = map[string]Dialect{}
	dialectsMu.Unlock()
	t.Cleanup(func() {
		dialectsMu.Lock()
		dialects = original
		dialectsMu.Unlock()
	})
}

func TestAdapter_New_WithDialect(t *testing.T) {
	withRegistry(t)
	RegisterDialect("mock", &mockDialect{})

	a, err := New(Config{Dialect: "mock", BaseURL: "http://localhost:12345", Model: "test-model"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.Name() != "mock-llm" {
		t.Errorf("Name() = %q, want %q", a.Name(), "mock-llm")
	}
	if a.Dialect().Name() != "mock" {
		t.Errorf("Dialect().Name() = %q", a.Dialect().Name())
	}
	if got := Dialects(); len(got) != 1 || got[0] != "mock" {
		t.Errorf("Dialects() = %v", got)
	}
}

func TestAdapter_New_UnknownDialect(t *testing.T) {
	withRegistry(t)
	if _, err := New(Config{Dialect: "nonexistent-xyz"}); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestAdapter_NewWithDialect_NilDialect(t *testing.T) {
	if _, err := NewWithDialect(nil, Config{}); err != ErrNoDialect {
		t.Errorf("expected ErrNoDialect, got %v", err)
	}
}

func TestAdapter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Team"); got != "notes" {
			t.Errorf("X-Team = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "default-model" {
			t.Errorf("model = %v, want default-model", body["model"])
		}
		if body["temperature"] != 0.2 {
			t.Errorf("temperature = %v, want 0.2", body["temperature"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("expected system + user messages, got %v", body["messages"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"content": "Hello", "model": "default-model"})
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{}, Config{
		BaseURL:     srv.URL + "/",
		Model:       "default-model",
		Temperature: 0.2,
		APIKey:      "secret",
		Headers:     map[string]string{"X-Team": "notes"},
	})
	if err != nil {
		t.Fatal(err)
	}

	text, err := Complete(context.Background(), a, "be terse", "Hi")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if text != "Hello" {
		t.Errorf("text = %q", text)
	}
}

func TestAdapter_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"content": "ok"})
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL, Retry: fastRetry(3)})
	resp, err := a.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if resp.Content != "ok" || calls.Load() != 2 {
		t.Errorf("content = %q after %d calls", resp.Content, calls.Load())
	}
}

func TestAdapter_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL, Retry: fastRetry(3)})
	_, err := a.Complete(context.Background(), CompletionRequest{})
	if !apperrors.HasCode(err, apperrors.ErrCodeExternalService) {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Retryable {
		t.Error("4xx errors must not be retryable")
	}
}

func TestAdapter_UnparseableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL, Retry: fastRetry(2)})
	_, err := a.Complete(context.Background(), CompletionRequest{})
	if !apperrors.HasCode(err, apperrors.ErrCodeExternalService) {
		t.Errorf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestAdapter_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{
		BaseURL:        srv.URL,
		Retry:          fastRetry(1),
		CircuitBreaker: &resilience.CircuitBreakerConfig{MaxFailures: 2, Cooldown: time.Minute},
	})
	for i := 0; i < 2; i++ {
		if _, err := a.Complete(context.Background(), CompletionRequest{}); err == nil {
			t.Fatal("expected failure")
		}
	}
	_, err := a.Complete(context.Background(), CompletionRequest{})
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE once open, got %v", err)
	}
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen cause, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("open circuit must not reach the backend, got %d calls", calls.Load())
	}

	h := a.CheckHealth(context.Background())
	if h.Status != observability.HealthStatusUp {
		t.Errorf("no health path means up, got %s", h.Status)
	}
}

func TestAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Retry: fastRetry(1)})
	_, err := a.Complete(context.Background(), CompletionRequest{})
	if !apperrors.HasCode(err, apperrors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func TestAdapter_ContextCanceled(t *testing.T) {
	a, _ := NewWithDialect(&mockDialect{}, Config{BaseURL: "http://127.0.0.1:1", Retry: fastRetry(3)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Complete(ctx, CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAdapter_CheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		path string
		want observability.HealthStatus
	}{
		{"reachable", "/ok", observability.HealthStatusUp},
		{"bad status", "/missing", observability.HealthStatusDown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := NewWithDialect(&mockDialect{healthPath: tc.path}, Config{BaseURL: srv.URL, Model: "m"})
			h := a.CheckHealth(context.Background())
			if h.Status != tc.want {
				t.Errorf("status = %s, want %s (%s)", h.Status, tc.want, h.Message)
			}
			if h.Details["model"] != "m" {
				t.Errorf("details = %v", h.Details)
			}
		})
	}
}

func TestCompleteJSON(t *testing.T) {
	var sawJSONMode bool
	c := CompleterFunc(func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
		sawJSONMode = req.JSONMode
		return CompletionResponse{Content: "```json\n[{\"description\": \"ship it\"}]\n```"}, nil
	})
	v, outcome, err := CompleteJSON(context.Background(), c, "sys", "user")
	if err != nil {
		t.Fatal(err)
	}
	if !sawJSONMode {
		t.Error("CompleteJSON should request JSON mode")
	}
	items, ok := v.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected value %#v", v)
	}
	if outcome.String() != "strict" {
		t.Errorf("outcome = %s", outcome)
	}

	failing := CompleterFunc(func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
		return CompletionResponse{}, apperrors.ServiceUnavailable("model")
	})
	if _, _, err := CompleteJSON(context.Background(), failing, "", ""); err == nil {
		t.Error("expected transport error to surface")
	}
}

func TestCompletionRequest_AllMessages(t *testing.T) {
	req := CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	if got := req.AllMessages(); len(got) != 1 {
		t.Errorf("without system prompt got %v", got)
	}
	req.SystemPrompt = "sys"
	got := req.AllMessages()
	if len(got) != 2 || got[0].Role != RoleSystem || got[0].Content != "sys" {
		t.Errorf("AllMessages() = %v", got)
	}
	if len(req.Messages) != 1 {
		t.Error("AllMessages must not modify the request")
	}
}
