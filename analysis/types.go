package analysis

import (
	"strings"
	"time"

	"github.com/kbukum/minutes/attribution"
)

// Metadata describes the meeting a transcript came from. All fields are optional.
type Metadata struct {
	Title        string   `json:"title,omitempty" yaml:"title"`
	Participants []string `json:"participants,omitempty" yaml:"participants"`
	Agenda       string   `json:"agenda,omitempty" yaml:"agenda"`
	Date         string   `json:"date,omitempty" yaml:"date"`
}

// Roster returns the participants as an owner-inference roster.
func (m *Metadata) Roster() []string {
	if m == nil {
		return nil
	}
	return m.Participants
}

// BuildContext renders metadata as the CONTEXT block that opens a prompt.
func BuildContext(m *Metadata) string {
	if m == nil || m.empty() {
		return "CONTEXT: General meeting"
	}
	parts := []string{"CONTEXT:"}
	if m.Title != "" {
		parts = append(parts, "Meeting: "+m.Title)
	}
	if len(m.Participants) > 0 {
		parts = append(parts, "Participants: "+strings.Join(m.Participants, ", "))
	}
	if m.Agenda != "" {
		parts = append(parts, "Agenda: "+m.Agenda)
	}
	if m.Date != "" {
		parts = append(parts, "Date: "+m.Date)
	}
	return strings.Join(parts, "\n")
}

func (m *Metadata) empty() bool {
	return m.Title == "" && len(m.Participants) == 0 && m.Agenda == "" && m.Date == ""
}

// Decision is a key decision made during the meeting.
type Decision struct {
	Decision     Text       `json:"decision"`
	Rationale    Text       `json:"rationale,omitempty"`
	Impact       Text       `json:"impact,omitempty"`
	Stakeholders StringList `json:"stakeholders,omitempty"`
	SourceText   Text       `json:"source_text,omitempty"`
}

// Topic is a key topic discussed in the meeting.
type Topic struct {
	Topic        Text       `json:"topic"`
	Summary      Text       `json:"summary,omitempty"`
	Duration     Text       `json:"duration,omitempty"`
	Participants StringList `json:"participants,omitempty"`
	Outcome      Text       `json:"outcome,omitempty"`
}

// OpenQuestion is an unresolved question that needs follow-up.
type OpenQuestion struct {
	Question         Text                 `json:"question"`
	Context          Text                 `json:"context,omitempty"`
	WhoNeedsToAnswer Text                 `json:"who_needs_to_answer,omitempty"`
	Urgency          attribution.Priority `json:"urgency"`
	SourceText       Text                 `json:"source_text,omitempty"`
}

// Summary is the executive summary of a meeting.
type Summary struct {
	Overview            Text       `json:"overview"`
	KeyOutcomes         StringList `json:"key_outcomes"`
	CriticalActionItems StringList `json:"critical_action_items"`
	RisksOrBlockers     StringList `json:"risks_or_blockers"`
	NextMeeting         *Text      `json:"next_meeting"`
}

// FailedSummary is reported when summary generation fails.
func FailedSummary() Summary {
	return Summary{
		Overview:            "Summary generation failed",
		KeyOutcomes:         StringList{},
		CriticalActionItems: StringList{},
		RisksOrBlockers:     StringList{},
	}
}

// Sentiment is the overall tone of a meeting. The zero value means the
// analysis was not available.
type Sentiment struct {
	OverallSentiment Text       `json:"overall_sentiment,omitempty"`
	Tone             Text       `json:"tone,omitempty"`
	EngagementLevel  Text       `json:"engagement_level,omitempty"`
	Concerns         StringList `json:"concerns,omitempty"`
	Highlights       StringList `json:"highlights,omitempty"`
}

// Report is the combined result of a full meeting analysis.
type Report struct {
	ActionItems []attribution.StructuredItem `json:"action_items"`
	Decisions   []Decision                   `json:"decisions"`
	Topics      []Topic                      `json:"key_topics"`
	Questions   []OpenQuestion               `json:"open_questions"`
	Commitments []attribution.Commitment     `json:"implicit_commitments"`
	Summary     Summary                      `json:"executive_summary"`
	Sentiment   Sentiment                    `json:"sentiment"`
	AnalyzedAt  time.Time                    `json:"analysis_timestamp"`
	// Degraded names the extractions that failed and were replaced by empty results.
	Degraded []string `json:"degraded,omitempty"`
}

func newReport() *Report {
	return &Report{
		ActionItems: []attribution.StructuredItem{},
		Decisions:   []Decision{},
		Topics:      []Topic{},
		Questions:   []OpenQuestion{},
		Commitments: []attribution.Commitment{},
		Summary:     FailedSummary(),
	}
}
