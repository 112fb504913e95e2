package transcription

import (
	"math"
	"sort"
	"strings"

	"github.com/kbukum/minutes/diarization"
	"github.com/kbukum/minutes/segment"
)

// MaxSpeakerGap is how far, in seconds, a word may sit outside every
// speaker segment and still take the nearest one.
const MaxSpeakerGap = 1.0

// Align converts words into tokens ordered by start time. Each token takes
// the speaker whose segment overlaps the word most; a word that overlaps
// none takes the nearest segment within MaxSpeakerGap, otherwise it keeps
// a nil tag. Blank words are dropped.
func Align(words []Word, speakers []diarization.Segment) []segment.Token {
	tokens := make([]segment.Token, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		tok := segment.Token{Text: text, StartTime: w.Start, EndTime: w.End, Confidence: w.Probability}
		if sp := speakerFor(speakers, w.Start, w.End); sp != "" {
			tok.SpeakerTag = segment.Tag(sp)
		}
		tokens = append(tokens, tok)
	}
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].StartTime < tokens[j].StartTime })
	return tokens
}

func speakerFor(speakers []diarization.Segment, start, end float64) string {
	best, most := "", 0.0
	for _, s := range speakers {
		if o := s.Overlap(start, end); o > most {
			best, most = s.Speaker, o
		}
	}
	if best != "" {
		return best
	}

	mid := (start + end) / 2
	nearest := math.Inf(1)
	for _, s := range speakers {
		if d := distance(mid, s); d < nearest {
			best, nearest = s.Speaker, d
		}
	}
	if nearest > MaxSpeakerGap {
		return ""
	}
	return best
}

func distance(t float64, s diarization.Segment) float64 {
	switch {
	case t < s.Start:
		return s.Start - t
	case t > s.End:
		return t - s.End
	default:
		return 0
	}
}
