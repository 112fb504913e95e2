package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSON(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "minutes", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = line[i+1:]
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("expected invalid level to fall back to info")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info message to be written")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "debug").WithComponent("attribution")
	l.Info("owners assigned", Fields(FieldItems, 3))

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "attribution" {
		t.Errorf("component = %v, want attribution", m[FieldComponent])
	}
	if m[FieldItems] != float64(3) {
		t.Errorf("items = %v, want 3", m[FieldItems])
	}
	if m["service"] != "minutes" {
		t.Errorf("service = %v, want minutes", m["service"])
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "info").
		WithFields(map[string]interface{}{"kind": "decisions"}).
		WithError(errors.New("boom"))
	l.Warn("extraction degraded")

	m := decodeLine(t, &buf)
	if m["kind"] != "decisions" {
		t.Errorf("kind = %v", m["kind"])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
	if m["level"] != "warn" {
		t.Errorf("level = %v", m["level"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.WithComponent("x").Error("still nothing")
}

func TestGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	var buf bytes.Buffer
	SetGlobalLogger(newJSON(&buf, "debug"))
	Info("hello", Fields("a", 1))
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("global Info not written: %q", buf.String())
	}

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger")
	}
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(f) != 2 || f["a"] != 1 || f["b"] != "two" {
		t.Errorf("unexpected fields: %v", f)
	}

	ef := ErrorFields("parse", errors.New("bad"))
	if ef[FieldOperation] != "parse" || ef[FieldError] != "bad" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("analyze", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v, want 1500", df[FieldDuration])
	}
}

func TestConfig(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Level != "info" || c.Format != "console" || c.Output != "stdout" || !c.Timestamp {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	c.Level = "loud"
	if err := c.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	c.Level = "info"
	c.Format = "xml"
	if err := c.Validate(); err == nil {
		t.Error("expected invalid format error")
	}
}
