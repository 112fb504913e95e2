package segment

import (
	"strings"

	"github.com/kbukum/minutes/errors"
)

// BuildTurns groups a time-ordered token stream into speaker turns.
//
// A new turn opens at the start of the stream and whenever the speaker
// changes; otherwise the token extends the open turn. Malformed timing is
// carried through unchanged.
func BuildTurns(tokens []Token) []Turn {
	if len(tokens) == 0 {
		return []Turn{}
	}

	var (
		turns []Turn
		open  *Turn
		text  strings.Builder
	)
	closeOpen := func() {
		if open == nil {
			return
		}
		open.Text = text.String()
		turns = append(turns, *open)
		open = nil
		text.Reset()
	}

	for _, tok := range tokens {
		speaker := tok.Speaker()
		if open == nil || open.Speaker != speaker {
			closeOpen()
			open = &Turn{
				Speaker:   speaker,
				StartTime: tok.StartTime,
				EndTime:   tok.EndTime,
				Tokens:    []Token{tok},
			}
			text.WriteString(tok.Text)
			continue
		}
		open.Tokens = append(open.Tokens, tok)
		open.EndTime = tok.EndTime
		text.WriteByte(' ')
		text.WriteString(tok.Text)
	}
	closeOpen()

	return turns
}

// Flatten returns the tokens of turns in order.
func Flatten(turns []Turn) []Token {
	n := 0
	for _, t := range turns {
		n += len(t.Tokens)
	}
	out := make([]Token, 0, n)
	for _, t := range turns {
		out = append(out, t.Tokens...)
	}
	return out
}

// ExtractSpeakerStats aggregates turns per speaker. Negative turn durations
// count as zero.
func ExtractSpeakerStats(turns []Turn) map[string]SpeakerStats {
	stats := make(map[string]SpeakerStats)
	for _, t := range turns {
		s, ok := stats[t.Speaker]
		if !ok {
			s = SpeakerStats{Speaker: t.Speaker, Label: t.Speaker}
		}
		s.TotalDuration += t.Duration()
		s.TurnCount++
		s.TokenCount += len(t.Tokens)
		stats[t.Speaker] = s
	}
	return stats
}

// CheckOrder reports the first token whose start time precedes the previous
// token's. It is a boundary check for callers; BuildTurns does not require it.
func CheckOrder(tokens []Token) error {
	for i := 1; i < len(tokens); i++ {
		if tokens[i].StartTime < tokens[i-1].StartTime {
			return errors.UnorderedTokens(i, tokens[i].StartTime, tokens[i-1].StartTime)
		}
	}
	return nil
}
