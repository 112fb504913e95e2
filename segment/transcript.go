package segment

import "strings"

// Transcript bundles the recognizer output with its derived turns and stats.
type Transcript struct {
	FullText   string                  `json:"full_transcript"`
	Tokens     []Token                 `json:"tokens"`
	Turns      []Turn                  `json:"turns"`
	Speakers   map[string]SpeakerStats `json:"speakers"`
	Confidence float64                 `json:"confidence"`
}

// NewTranscript builds turns and speaker statistics for tokens.
func NewTranscript(tokens []Token) Transcript {
	turns := BuildTurns(tokens)
	words := make([]string, len(tokens))
	var conf float64
	for i, tok := range tokens {
		words[i] = tok.Text
		conf += tok.Confidence
	}
	if len(tokens) > 0 {
		conf /= float64(len(tokens))
	}
	return Transcript{
		FullText:   strings.Join(words, " "),
		Tokens:     Flatten(turns),
		Turns:      turns,
		Speakers:   ExtractSpeakerStats(turns),
		Confidence: conf,
	}
}

// Relabel returns a copy of the transcript with speakers renamed.
func (t Transcript) Relabel(mapping map[string]string) Transcript {
	turns := Relabel(t.Turns, mapping)
	out := t
	out.Turns = turns
	out.Tokens = Flatten(turns)
	out.Speakers = ExtractSpeakerStats(turns)
	return out
}

// FormatTranscript renders one "<Speaker>: <text>" line per turn.
func FormatTranscript(turns []Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Speaker)
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}
