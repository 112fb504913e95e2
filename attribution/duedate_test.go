package attribution

import (
	"testing"
	"time"
)

func TestInferDueDates(t *testing.T) {
	now := time.Date(2024, time.March, 28, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name         string
		item         RawItem
		wantDue      string
		wantInferred bool
	}{
		{"high priority", RawItem{"priority": "high"}, "2024-03-31", true},
		{"high priority any case", RawItem{"priority": " HIGH "}, "2024-03-31", true},
		{"low priority crosses month", RawItem{"priority": "low"}, "2024-04-11", true},
		{"medium priority", RawItem{"priority": "medium"}, "2024-04-04", true},
		{"unknown priority", RawItem{"priority": "urgent-ish"}, "2024-04-04", true},
		{"missing priority", RawItem{}, "2024-04-04", true},
		{"sentinel due date", RawItem{"due_date": "Not specified", "priority": "high"}, "2024-03-31", true},
		{"sentinel any case", RawItem{"due_date": "NOT SPECIFIED"}, "2024-04-04", true},
		{"blank due date", RawItem{"due_date": "  "}, "2024-04-04", true},
		{"explicit due date kept", RawItem{"due_date": "Friday", "priority": "high"}, "Friday", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := InferDueDates([]RawItem{tc.item}, now)[0]
			if got[KeyDueDate] != tc.wantDue {
				t.Errorf("due_date = %v, want %s", got[KeyDueDate], tc.wantDue)
			}
			if got[KeyDueDateInferred] != tc.wantInferred {
				t.Errorf("due_date_inferred = %v, want %v", got[KeyDueDateInferred], tc.wantInferred)
			}
		})
	}
}

func TestInferDueDates_HighIsExactlyThreeDays(t *testing.T) {
	now := time.Now()
	got := InferDueDates([]RawItem{{"priority": "high"}}, now)[0]
	want := now.AddDate(0, 0, 3).Format(DateLayout)
	if got[KeyDueDate] != want || got[KeyDueDateInferred] != true {
		t.Errorf("got %v / %v, want %s / true", got[KeyDueDate], got[KeyDueDateInferred], want)
	}
}

func TestDueOffsets_Custom(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	offsets := DueOffsets{High: 1, Medium: 2, Low: 30}
	got := offsets.Infer([]RawItem{{"priority": "low"}, {"priority": "high"}}, now)
	if got[0][KeyDueDate] != "2024-01-31" || got[1][KeyDueDate] != "2024-01-02" {
		t.Errorf("custom offsets not applied: %v", got)
	}
}

func TestInferDueDates_DoesNotMutateInput(t *testing.T) {
	item := RawItem{"priority": "low"}
	_ = InferDueDates([]RawItem{item}, time.Now())
	if _, ok := item[KeyDueDate]; ok {
		t.Error("input item was modified")
	}
}
