package attribution

import (
	"strings"

	"github.com/google/uuid"
)

// Priority is an action item's urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NormalizePriority maps free-form priority text onto high, medium or low.
// Unknown or empty values become medium.
func NormalizePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// StructuredItem is an attributed action item. Owner and DueDate are never empty.
type StructuredItem struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Owner           string   `json:"owner"`
	OwnerInferred   bool     `json:"owner_inferred"`
	DueDate         string   `json:"due_date"`
	DueDateInferred bool     `json:"due_date_inferred"`
	Priority        Priority `json:"priority"`
	Confidence      float64  `json:"confidence"`
	Context         string   `json:"context,omitempty"`
	SourceText      string   `json:"source_text,omitempty"`
}

// Commitment is something a participant said they would do without it
// being raised as an action item ("I'll look into that").
type Commitment struct {
	ID         string  `json:"id"`
	Commitment string  `json:"commitment"`
	Person     string  `json:"person"`
	SourceText string  `json:"source_text,omitempty"`
	Confidence float64 `json:"confidence"`
}

func boolField(item RawItem, key string) bool {
	b, _ := item[key].(bool)
	return b
}

// toStructured converts an item that has been through owner and due-date
// inference.
func toStructured(item RawItem, id string) StructuredItem {
	owner := strings.TrimSpace(stringField(item, KeyOwner))
	if owner == "" {
		owner = Unassigned
	}
	return StructuredItem{
		ID:              id,
		Description:     strings.TrimSpace(stringField(item, KeyDescription)),
		Owner:           owner,
		OwnerInferred:   boolField(item, KeyOwnerInferred),
		DueDate:         strings.TrimSpace(stringField(item, KeyDueDate)),
		DueDateInferred: boolField(item, KeyDueDateInferred),
		Priority:        NormalizePriority(stringField(item, KeyPriority)),
		Confidence:      Confidence(item),
		Context:         strings.TrimSpace(stringField(item, KeyContext)),
		SourceText:      strings.TrimSpace(stringField(item, KeySourceText)),
	}
}

func toCommitment(item RawItem, id string) Commitment {
	person := strings.TrimSpace(stringField(item, KeyPerson))
	if person == "" {
		person = Unassigned
	}
	return Commitment{
		ID:         id,
		Commitment: strings.TrimSpace(stringField(item, KeyCommitment)),
		Person:     person,
		SourceText: strings.TrimSpace(stringField(item, KeySourceText)),
		Confidence: Confidence(item),
	}
}

func newID() string { return uuid.NewString() }
