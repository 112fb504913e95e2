package segment

import "strings"

// UnknownSpeaker is the speaker assigned to tokens without a speaker tag.
const UnknownSpeaker = "Unknown"

// Token is a single recognized word as emitted by a speech recognizer.
type Token struct {
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	SpeakerTag *string `json:"speaker_tag"`
	Confidence float64 `json:"confidence"`
}

// Speaker returns the token's speaker tag, or UnknownSpeaker when the tag is
// missing or blank.
func (t Token) Speaker() string {
	if t.SpeakerTag == nil || strings.TrimSpace(*t.SpeakerTag) == "" {
		return UnknownSpeaker
	}
	return *t.SpeakerTag
}

// Tag returns a speaker tag pointer for building tokens.
func Tag(speaker string) *string {
	return &speaker
}

// Turn is a contiguous run of tokens attributed to one speaker.
type Turn struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Tokens    []Token `json:"tokens"`
}

// Duration returns the turn length in seconds, never negative.
func (t Turn) Duration() float64 {
	if d := t.EndTime - t.StartTime; d > 0 {
		return d
	}
	return 0
}

// SpeakerStats aggregates the turns of one speaker.
type SpeakerStats struct {
	Speaker       string  `json:"speaker"`
	Label         string  `json:"label"`
	TotalDuration float64 `json:"total_duration"`
	TurnCount     int     `json:"turn_count"`
	TokenCount    int     `json:"token_count"`
}
