package attribution

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawItem is one object parsed from model output. Fields may be missing or
// carry unexpected types.
type RawItem = map[string]any

// Well-known RawItem keys.
const (
	KeyDescription     = "description"
	KeyOwner           = "owner"
	KeyOwnerInferred   = "owner_inferred"
	KeyDueDate         = "due_date"
	KeyDueDateInferred = "due_date_inferred"
	KeyPriority        = "priority"
	KeyConfidence      = "confidence"
	KeyContext         = "context"
	KeySourceText      = "source_text"
	KeyCommitment      = "commitment"
	KeyPerson          = "person"
)

// Unassigned is the owner given to items no strategy could attribute.
const Unassigned = "Unassigned"

// stringField returns item[key] as a string; non-string values are
// formatted and missing or null values yield "".
func stringField(item RawItem, key string) string {
	switch v := item[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Confidence returns the item's confidence, accepting numbers and numeric
// strings. Missing or unparseable values count as 0.
func Confidence(item RawItem) float64 {
	var f float64
	switch v := item[KeyConfidence].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		f, _ = v.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func clone(item RawItem) RawItem {
	out := make(RawItem, len(item)+2)
	for k, v := range item {
		out[k] = v
	}
	return out
}
