package attribution

import (
	"strings"
	"time"
)

// DateLayout is the format of due dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// dueDateUnspecified is the sentinel a model writes when no date was mentioned.
const dueDateUnspecified = "not specified"

// DueOffsets are the days added to "now" for items without a due date.
type DueOffsets struct {
	High   int `mapstructure:"high" json:"high" validate:"gte=0"`
	Medium int `mapstructure:"medium" json:"medium" validate:"gte=0"`
	Low    int `mapstructure:"low" json:"low" validate:"gte=0"`
}

// DefaultDueOffsets returns high +3, medium +7, low +14 days.
func DefaultDueOffsets() DueOffsets {
	return DueOffsets{High: 3, Medium: 7, Low: 14}
}

// For returns the offset for a priority. Anything other than high or low,
// including an empty priority, gets the medium offset.
func (o DueOffsets) For(priority string) int {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case string(PriorityHigh):
		return o.High
	case string(PriorityLow):
		return o.Low
	default:
		return o.Medium
	}
}

// hasDueDate reports whether the item carries an explicit due date.
func hasDueDate(item RawItem) bool {
	due := strings.TrimSpace(stringField(item, KeyDueDate))
	return due != "" && !strings.EqualFold(due, dueDateUnspecified)
}

func (o DueOffsets) infer(item RawItem, now time.Time) RawItem {
	out := clone(item)
	if hasDueDate(item) {
		out[KeyDueDateInferred] = false
		return out
	}
	days := o.For(stringField(item, KeyPriority))
	out[KeyDueDate] = now.AddDate(0, 0, days).Format(DateLayout)
	out[KeyDueDateInferred] = true
	return out
}

// Infer returns copies of items with due_date and due_date_inferred set.
func (o DueOffsets) Infer(items []RawItem, now time.Time) []RawItem {
	out := make([]RawItem, len(items))
	for i, item := range items {
		out[i] = o.infer(item, now)
	}
	return out
}

// InferDueDates applies DefaultDueOffsets relative to now.
func InferDueDates(items []RawItem, now time.Time) []RawItem {
	return DefaultDueOffsets().Infer(items, now)
}
