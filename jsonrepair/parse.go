package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kbukum/minutes/logger"
)

// Outcome records which step of ParseLenient produced the value.
type Outcome int

const (
	// Strict means the (unfenced) text parsed as-is.
	Strict Outcome = iota
	// Recovered means a bracketed substring of the text parsed.
	Recovered
	// Fallback means nothing parsed and an empty container was returned.
	Fallback
)

func (o Outcome) String() string {
	switch o {
	case Strict:
		return "strict"
	case Recovered:
		return "recovered"
	default:
		return "fallback"
	}
}

var (
	// fence matches ``` delimiters with an optional language tag.
	fence = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	// structural is a greedy match from the first bracket to the last
	// matching closer.
	structural = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)
)

// ParseLenient parses text as a JSON array or object, tolerating markdown
// fences and surrounding prose. It returns []any or map[string]any.
func ParseLenient(text string) any {
	v, _ := Parse(text)
	return v
}

// Parse is ParseLenient that also reports how the value was obtained.
func Parse(text string) (any, Outcome) {
	cleaned := StripFences(text)

	if v, ok := decodeContainer(cleaned); ok {
		return v, Strict
	}

	log := logger.WithComponent("jsonrepair")
	if m := structural.FindString(cleaned); m != "" {
		if v, ok := decodeContainer(m); ok {
			log.Debug("recovered json from surrounding text", logger.Fields(
				"input_len", len(text), "recovered_len", len(m)))
			return v, Recovered
		}
	}

	log.Warn("no json value recovered, using empty result", logger.Fields("input_len", len(text)))
	if strings.HasPrefix(cleaned, "[") {
		return []any{}, Fallback
	}
	return map[string]any{}, Fallback
}

// StripFences removes code-fence markers and surrounding whitespace.
func StripFences(text string) string {
	if strings.Contains(text, "```") {
		text = fence.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// decodeContainer parses s strictly and accepts only arrays and objects.
func decodeContainer(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch c := v.(type) {
	case []any:
		return c, true
	case map[string]any:
		return c, true
	default:
		return nil, false
	}
}
