package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/observability"
	"github.com/kbukum/minutes/transcription"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{
			"model":           r.FormValue("model"),
			"language":        r.FormValue("language"),
			"word_timestamps": r.FormValue("word_timestamps"),
		}
		if _, hdr, err := r.FormFile("audio"); err != nil || hdr.Filename != "standup.wav" {
			t.Errorf("audio part: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     " hello there. we ship ",
			"language": "en",
			"segments": []map[string]any{
				{"text": "hello there.", "start": 0, "end": 1, "words": []map[string]any{
					{"word": " hello", "start": 0, "end": 0.4, "probability": 0.9},
					{"word": " there.", "start": 0.4, "end": 1, "probability": 0.8},
				}},
				{"text": "we ship", "start": 2, "end": 3, "confidence": 0.7},
			},
		})
	}))
	defer srv.Close()

	p := NewProvider(Config{URL: srv.URL, Language: "en"})
	res, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t), Model: "small"})
	if err != nil {
		t.Fatal(err)
	}

	if form["model"] != "small" || form["language"] != "en" || form["word_timestamps"] != "true" {
		t.Errorf("form = %v", form)
	}
	if res.Text != "hello there. we ship" || res.Duration != 3 {
		t.Errorf("result = %+v", res)
	}
	want := []transcription.Word{
		{Text: "hello", Start: 0, End: 0.4, Probability: 0.9},
		{Text: "there.", Start: 0.4, End: 1, Probability: 0.8},
		{Text: "we", Start: 2, End: 2.5, Probability: 0.7},
		{Text: "ship", Start: 2.5, End: 3, Probability: 0.7},
	}
	if len(res.Words) != len(want) {
		t.Fatalf("words = %+v", res.Words)
	}
	for i := range want {
		if res.Words[i] != want[i] {
			t.Errorf("word %d = %+v, want %+v", i, res.Words[i], want[i])
		}
	}
}

func TestTranscribe_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()
	p := NewProvider(Config{URL: srv.URL})

	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if !apperrors.HasCode(err, apperrors.ErrCodeExternalService) {
		t.Errorf("server error: err = %v", err)
	}

	_, err = p.Transcribe(context.Background(), transcription.Request{AudioPath: filepath.Join(t.TempDir(), "missing.wav")})
	if !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	h := NewProvider(Config{URL: srv.URL}).CheckHealth(context.Background())
	if h.Status != observability.HealthStatusUp || h.Details["model"] != defaultModel {
		t.Errorf("health = %+v", h)
	}

	srv.Close()
	h = NewProvider(Config{URL: srv.URL}).CheckHealth(context.Background())
	if h.Status != observability.HealthStatusDown {
		t.Errorf("closed server health = %+v", h)
	}
}
