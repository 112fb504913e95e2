package jsonrepair

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    any
		outcome Outcome
	}{
		{
			name:    "plain array",
			input:   `[{"description":"ship it","confidence":0.9}]`,
			want:    []any{map[string]any{"description": "ship it", "confidence": 0.9}},
			outcome: Strict,
		},
		{
			name:    "fenced with language tag",
			input:   "```json\n[{\"a\":1}]\n```",
			want:    []any{map[string]any{"a": 1.0}},
			outcome: Strict,
		},
		{
			name:    "bare fence",
			input:   "```\n{\"summary\":\"ok\"}\n```",
			want:    map[string]any{"summary": "ok"},
			outcome: Strict,
		},
		{
			name:    "prose around array",
			input:   "Here are the items:\n[{\"a\":1}]\nLet me know if you need more.",
			want:    []any{map[string]any{"a": 1.0}},
			outcome: Recovered,
		},
		{
			name:    "prose around object",
			input:   `Sure! {"overall":"positive"} hope that helps`,
			want:    map[string]any{"overall": "positive"},
			outcome: Recovered,
		},
		{
			name:    "truncated array recovers first complete object",
			input:   `[{"a":1},{"b":`,
			want:    map[string]any{"a": 1.0},
			outcome: Recovered,
		},
		{
			name:    "truncated array falls back to empty array",
			input:   `[{"a": 1, "b":`,
			want:    []any{},
			outcome: Fallback,
		},
		{
			name:    "garbage falls back to empty object",
			input:   "I could not find any action items.",
			want:    map[string]any{},
			outcome: Fallback,
		},
		{
			name:    "empty input",
			input:   "",
			want:    map[string]any{},
			outcome: Fallback,
		},
		{
			name:    "scalar is not a container",
			input:   "42",
			want:    map[string]any{},
			outcome: Fallback,
		},
		{
			name:    "empty array stays an array",
			input:   "[]",
			want:    []any{},
			outcome: Strict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, outcome := Parse(tc.input)
			if outcome != tc.outcome {
				t.Errorf("outcome = %s, want %s", outcome, tc.outcome)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	if got := StripFences("  ```python\n[1]\n```  "); got != "[1]" {
		t.Errorf("StripFences = %q", got)
	}
	if got := StripFences(" {} "); got != "{}" {
		t.Errorf("StripFences without fences = %q", got)
	}
}

func TestItems(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"array keeps objects only", []any{map[string]any{"a": 1.0}, "x", 3.0, map[string]any{"b": 2.0}}, 2},
		{"single object", map[string]any{"a": 1.0}, 1},
		{"empty object", map[string]any{}, 0},
		{"empty array", []any{}, 0},
		{"nil", nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Items(tc.in)
			if got == nil || len(got) != tc.want {
				t.Errorf("Items() = %v, want %d items", got, tc.want)
			}
		})
	}
}

func TestItems_PreservesOrder(t *testing.T) {
	got := ParseItems(`[{"id":"1"},{"id":"2"},{"id":"3"}]`)
	for i, want := range []string{"1", "2", "3"} {
		if got[i]["id"] != want {
			t.Errorf("item %d id = %v, want %s", i, got[i]["id"], want)
		}
	}
}

func TestParseObject(t *testing.T) {
	if got := ParseObject("```json\n{\"overall\":\"neutral\"}\n```"); got["overall"] != "neutral" {
		t.Errorf("ParseObject = %v", got)
	}
	if got := ParseObject(`[{"a":1}]`); len(got) != 0 {
		t.Errorf("array input should yield empty object, got %v", got)
	}
}

func TestParseLenient_NeverPanics(t *testing.T) {
	alphabet := []byte("[]{}\",:abc 123`\n\\")
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		buf := make([]byte, r.Intn(30))
		for j := range buf {
			buf[j] = alphabet[r.Intn(len(alphabet))]
		}
		switch ParseLenient(string(buf)).(type) {
		case []any, map[string]any:
		default:
			t.Fatalf("ParseLenient(%q) returned a non-container", buf)
		}
	}
}
