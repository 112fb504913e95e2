package jsonrepair

// Items normalises a parse result into raw items. Object elements of an
// array are kept in order and other elements dropped; a non-empty object
// is a single item; anything else yields no items.
func Items(v any) []map[string]any {
	switch c := v.(type) {
	case []any:
		items := make([]map[string]any, 0, len(c))
		for _, e := range c {
			if m, ok := e.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	case map[string]any:
		if len(c) == 0 {
			return []map[string]any{}
		}
		return []map[string]any{c}
	default:
		return []map[string]any{}
	}
}

// ParseItems parses text leniently and returns its raw items.
func ParseItems(text string) []map[string]any {
	return Items(ParseLenient(text))
}

// ParseObject parses text leniently and returns the object it contains,
// or an empty map when the text holds an array or nothing usable.
func ParseObject(text string) map[string]any {
	if m, ok := ParseLenient(text).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
