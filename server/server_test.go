package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/minutes/analysis"
	"github.com/kbukum/minutes/attribution"
	"github.com/kbukum/minutes/llm"
	"github.com/kbukum/minutes/logger"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/record"
	"github.com/kbukum/minutes/storage/local"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixedClock() time.Time {
	return time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testEnv struct {
	handler http.Handler
	api     *API
}

func newTestEnv(t *testing.T, withModel bool) *testEnv {
	t.Helper()
	log := logger.Nop()

	store, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	pipe := attribution.NewPipeline(attribution.WithClock(fixedClock), attribution.WithLogger(log), attribution.WithMetrics(nil))
	api := &API{
		Attribution: pipe,
		Records:     record.NewWriter(store, record.WithClock(fixedClock), record.WithLogger(log), record.WithMetrics(nil)),
		Log:         log,
	}
	if withModel {
		model := llm.CompleterFunc(func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
			prompt := req.Messages[len(req.Messages)-1].Content
			if strings.Contains(prompt, "ANSWER:") {
				return llm.CompletionResponse{Content: "  The budget was approved.  "}, nil
			}
			return llm.CompletionResponse{Content: "[]"}, nil
		})
		a, err := analysis.NewAnalyzer(model, analysis.WithPipeline(pipe), analysis.WithClock(fixedClock), analysis.WithLogger(log), analysis.WithMetrics(nil))
		if err != nil {
			t.Fatal(err)
		}
		api.Analyzer = a
	}

	cfg := Config{}
	cfg.ApplyDefaults()
	srv := New(cfg, log)
	srv.RegisterSystemEndpoints("minutes-test", api.Records)
	srv.RegisterAPI(api)
	return &testEnv{handler: srv.Handler(), api: api}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON body %q: %v", rr.Body.String(), err)
		}
	}
	return rr, env
}

func TestSystemEndpoints(t *testing.T) {
	env := newTestEnv(t, false)

	rr, _ := env.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/health = %d: %s", rr.Code, rr.Body)
	}
	var health struct {
		Status     observability.HealthStatus `json:"status"`
		Components []observability.Health     `json:"components"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != observability.HealthStatusUp || len(health.Components) != 1 {
		t.Errorf("health = %+v", health)
	}

	for _, path := range []string{"/ready", "/alive", "/info", "/metrics"} {
		if rr, _ := env.do(t, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Errorf("%s = %d", path, rr.Code)
		}
	}

	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on responses")
	}
}

func TestBuildTurns(t *testing.T) {
	env := newTestEnv(t, false)

	tokens := `[
		{"text": "hello", "start_time": 0, "end_time": 0.4, "speaker_tag": "Speaker 1", "confidence": 0.9},
		{"text": "there", "start_time": 0.4, "end_time": 0.8, "speaker_tag": "Speaker 1", "confidence": 0.9},
		{"text": "hi", "start_time": 1.0, "end_time": 1.2, "speaker_tag": null, "confidence": 0.8}
	]`

	t.Run("turns", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/v1/turns", `{"tokens": `+tokens+`}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body)
		}
		var out turnsResponse
		if err := json.Unmarshal(body.Data, &out); err != nil {
			t.Fatal(err)
		}
		if len(out.Turns) != 2 || out.Turns[1].Speaker != "Unknown" || out.Turns[0].Text != "hello there" {
			t.Errorf("turns = %+v", out.Turns)
		}
		if out.RecordKey != "" {
			t.Errorf("unexpected record key %q", out.RecordKey)
		}
	})

	t.Run("save", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/v1/turns", `{"save": true, "name": "standup", "tokens": `+tokens+`}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body)
		}
		var out turnsResponse
		if err := json.Unmarshal(body.Data, &out); err != nil {
			t.Fatal(err)
		}
		if out.RecordKey != "standup_transcript_20240506_090000.json" {
			t.Errorf("record key = %q", out.RecordKey)
		}

		rr, _ = env.do(t, http.MethodGet, "/v1/transcripts/"+out.RecordKey, "")
		if rr.Code != http.StatusOK {
			t.Errorf("get record = %d: %s", rr.Code, rr.Body)
		}
		rr, body = env.do(t, http.MethodGet, "/v1/transcripts?base=standup", "")
		if rr.Code != http.StatusOK || !strings.Contains(string(body.Data), out.RecordKey) {
			t.Errorf("list records = %d: %s", rr.Code, rr.Body)
		}
	})

	errorCases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unordered", `{"tokens": [{"text": "b", "start_time": 2}, {"text": "a", "start_time": 1}]}`, http.StatusBadRequest, "UNORDERED_TOKENS"},
		{"missing tokens", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"save without name", `{"save": true, "tokens": []}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"not json", `tokens please`, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := env.do(t, http.MethodPost, "/v1/turns", tc.body)
			if rr.Code != tc.status || body.Error.Code != tc.code {
				t.Errorf("got %d %s, want %d %s", rr.Code, body.Error.Code, tc.status, tc.code)
			}
		})
	}
}

func TestActionItems(t *testing.T) {
	env := newTestEnv(t, false)

	raw, _ := json.Marshal(`Here you go: {"description": "Send recap", "source_text": "Jordan will send the recap", "confidence": 0.95, "priority": "low"}`)
	rr, body := env.do(t, http.MethodPost, "/v1/action-items", `{"raw": `+string(raw)+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Items []attribution.StructuredItem `json:"action_items"`
	}
	if err := json.Unmarshal(body.Data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Items) != 1 || out.Items[0].Owner != "Jordan" || out.Items[0].DueDate != "2024-05-20" {
		t.Errorf("items = %+v", out.Items)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/action-items", `{"raw": "no items today"}`)
	if rr.Code != http.StatusOK || !strings.Contains(string(body.Data), `"action_items":[]`) {
		t.Errorf("malformed raw: %d %s", rr.Code, rr.Body)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/action-items", `{"raw": "[]", "threshold": 1.5}`)
	if rr.Code != http.StatusBadRequest || body.Error.Code != "INVALID_THRESHOLD" {
		t.Errorf("bad threshold: %d %s", rr.Code, rr.Body)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/action-items", `{"raw": "[{\"description\": \"x\", \"confidence\": 0.5}]", "threshold": 0.4}`)
	if rr.Code != http.StatusOK || !strings.Contains(string(body.Data), `"owner":"Unassigned"`) {
		t.Errorf("custom threshold: %d %s", rr.Code, rr.Body)
	}
}

func TestCommitments(t *testing.T) {
	env := newTestEnv(t, false)

	raw, _ := json.Marshal(`[{"commitment": "look into the outage", "person": "Sam", "confidence": 0.9}, {"commitment": "maybe", "person": "Kim", "confidence": 0.3}]`)
	rr, body := env.do(t, http.MethodPost, "/v1/commitments", `{"raw": `+string(raw)+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Commitments []attribution.Commitment `json:"implicit_commitments"`
	}
	if err := json.Unmarshal(body.Data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Commitments) != 1 || out.Commitments[0].Person != "Sam" {
		t.Errorf("commitments = %+v", out.Commitments)
	}
}

func TestRelabel(t *testing.T) {
	env := newTestEnv(t, false)

	transcript := `{"turns": [
		{"speaker": "Speaker 1", "text": "hello", "start_time": 0, "end_time": 1,
		 "tokens": [{"text": "hello", "start_time": 0, "end_time": 1, "speaker_tag": "Speaker 1"}]}
	]}`
	rr, body := env.do(t, http.MethodPost, "/v1/speakers/relabel", `{"mapping": {"Speaker 1": "Alice"}, "transcript": `+transcript+`}`)
	if rr.Code != http.StatusOK || !strings.Contains(string(body.Data), `"speaker":"Alice"`) {
		t.Errorf("inline relabel: %d %s", rr.Code, rr.Body)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/speakers/relabel", `{"mapping": {"Speaker 1": "Alice"}, "record_key": "missing.json"}`)
	if rr.Code != http.StatusNotFound || body.Error.Code != "NOT_FOUND" {
		t.Errorf("missing record: %d %s", rr.Code, rr.Body)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/speakers/relabel", `{"mapping": {}, "record_key": "x.json"}`)
	if rr.Code != http.StatusBadRequest || body.Error.Code != "INVALID_INPUT" {
		t.Errorf("empty mapping: %d %s", rr.Code, rr.Body)
	}

	rr, _ = env.do(t, http.MethodPost, "/v1/speakers/relabel", `{"mapping": {"a": "b"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("no target: %d %s", rr.Code, rr.Body)
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("no model", func(t *testing.T) {
		env := newTestEnv(t, false)
		rr, body := env.do(t, http.MethodPost, "/v1/analyze", `{"transcript": "Alice: hi"}`)
		if rr.Code != http.StatusServiceUnavailable || body.Error.Code != "SERVICE_UNAVAILABLE" {
			t.Errorf("got %d %s", rr.Code, rr.Body)
		}
	})

	env := newTestEnv(t, true)

	rr, body := env.do(t, http.MethodPost, "/v1/analyze", `{"transcript": "Alice: we approved the budget", "save": true, "name": "budget review"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Summary   analysis.Summary `json:"executive_summary"`
		RecordKey string           `json:"record_key"`
	}
	if err := json.Unmarshal(body.Data, &out); err != nil {
		t.Fatal(err)
	}
	if out.RecordKey != "budget_review_analysis_20240506_090000.json" {
		t.Errorf("record key = %q", out.RecordKey)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/analyze", `{"transcript": ""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank transcript: %d %s", rr.Code, rr.Body)
	}

	rr, body = env.do(t, http.MethodPost, "/v1/query", `{"transcript": "Alice: we approved the budget", "question": "What was decided?"}`)
	if rr.Code != http.StatusOK || !strings.Contains(string(body.Data), `"answer":"The budget was approved."`) {
		t.Errorf("query: %d %s", rr.Code, rr.Body)
	}
}

func TestRecovery_FromHandlerPanic(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	srv := New(cfg, logger.Nop())
	srv.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.MaxBodySize != "10MB" || cfg.WriteTimeout != 300 {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out of range port")
	}
}
