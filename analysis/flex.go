package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a string field that also accepts numbers, booleans and nested
// values from model output. Non-string values keep their JSON text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// StringList is a list field that also accepts a single string. Elements
// that are not strings are rendered as their JSON text.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var one Text
		if err := one.UnmarshalJSON(data); err != nil {
			return err
		}
		if s := strings.TrimSpace(string(one)); s != "" {
			*l = StringList{s}
		} else {
			*l = nil
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, r := range raw {
		var t Text
		if err := t.UnmarshalJSON(r); err != nil {
			return err
		}
		if s := strings.TrimSpace(string(t)); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// decodeItems converts raw model items into T. Items that do not fit T are
// skipped and counted in dropped.
func decodeItems[T any](items []map[string]any) (out []T, dropped int) {
	out = make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := decodeInto(item, &v); err != nil {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

func decodeInto(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("analysis: re-encode item: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("analysis: decode item: %w", err)
	}
	return nil
}
