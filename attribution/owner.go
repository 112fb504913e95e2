package attribution

import (
	"regexp"
	"strings"

	"github.com/kbukum/minutes/segment"
)

// SpeakerLine is a transcript line of the form "Name: content".
type SpeakerLine struct {
	Speaker string
	Content string
}

// OwnerInput is everything a strategy may consult for one item.
type OwnerInput struct {
	// SourceText is the item's trimmed source quote, possibly empty.
	SourceText string
	Transcript string
	// Blob is SourceText and Transcript joined by a newline, trimmed.
	Blob   string
	Lines  []SpeakerLine
	Roster []string

	// matchers are Roster compiled once per transcript. Nil when the input
	// was built outside AssignOwners.
	matchers []rosterMatcher
}

// OwnerStrategy resolves an owner for an item, or reports no match.
type OwnerStrategy interface {
	Name() string
	Resolve(in OwnerInput) (owner string, ok bool)
}

type strategyFunc struct {
	name string
	fn   func(OwnerInput) (string, bool)
}

func (s strategyFunc) Name() string { return s.name }

func (s strategyFunc) Resolve(in OwnerInput) (string, bool) { return s.fn(in) }

// NewStrategy wraps fn as a named OwnerStrategy.
func NewStrategy(name string, fn func(OwnerInput) (string, bool)) OwnerStrategy {
	return strategyFunc{name: name, fn: fn}
}

// The built-in strategies, in default precedence order.
var (
	EmailStrategy       = NewStrategy("email", ownerFromEmail)
	SpeakerLineStrategy = NewStrategy("speaker_line", ownerFromSpeakerLines)
	RosterStrategy      = NewStrategy("roster", ownerFromRoster)
	PatternStrategy     = NewStrategy("pattern", ownerFromPatterns)
)

// DefaultStrategies returns the built-in strategies in precedence order.
func DefaultStrategies() []OwnerStrategy {
	return []OwnerStrategy{EmailStrategy, SpeakerLineStrategy, RosterStrategy, PatternStrategy}
}

// Word boundaries built from Unicode classes; \b only knows ASCII.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

var (
	emailPattern       = regexp.MustCompile(`[\p{L}\p{N}_.\-]+@[\p{L}\p{N}_.\-]+`)
	speakerLinePattern = regexp.MustCompile(`^(\p{Lu}[\p{L}\p{N}_\-]+(?: \d+)?)\s*:\s*(.*)$`)
	commitmentCue      = regexp.MustCompile(`(?i)\b(will|can you|i'll|i will|let me|assign|i can)\b`)
	namePatterns       = []*regexp.Regexp{
		regexp.MustCompile(wordStart + `(\p{Lu}\p{Ll}{2,}(?:\s\p{Lu}\p{Ll}{2,})?)\s+(?:will|shall|can|to|is going to|is going)\b`),
		regexp.MustCompile(`\bcan\s+(\p{Lu}\p{Ll}{2,})` + wordEnd),
		regexp.MustCompile(`assign(?:ed)? to\s+(\p{Lu}\p{Ll}{2,})` + wordEnd),
	}
)

// minSharedWords is the word overlap a cue-bearing speaker line needs with
// the source text to be attributed.
const minSharedWords = 2

func ownerFromEmail(in OwnerInput) (string, bool) {
	if m := emailPattern.FindString(in.Blob); m != "" {
		return m, true
	}
	return "", false
}

func ownerFromSpeakerLines(in OwnerInput) (string, bool) {
	if in.SourceText == "" {
		return "", false
	}
	for _, line := range in.Lines {
		if line.Speaker == segment.UnknownSpeaker {
			continue
		}
		if strings.Contains(line.Content, in.SourceText) {
			return line.Speaker, true
		}
		if commitmentCue.MatchString(line.Content) && sharedWords(in.SourceText, line.Content) >= minSharedWords {
			return line.Speaker, true
		}
	}
	return "", false
}

// rosterMatcher matches one roster name as a whole word, case-insensitively.
type rosterMatcher struct {
	name string
	re   *regexp.Regexp
}

func compileRoster(roster []string) []rosterMatcher {
	matchers := make([]rosterMatcher, 0, len(roster))
	for _, name := range roster {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + wordStart + regexp.QuoteMeta(name) + wordEnd)
		if err != nil {
			continue
		}
		matchers = append(matchers, rosterMatcher{name: name, re: re})
	}
	return matchers
}

func ownerFromRoster(in OwnerInput) (string, bool) {
	matchers := in.matchers
	if matchers == nil {
		matchers = compileRoster(in.Roster)
	}
	for _, m := range matchers {
		if m.re.MatchString(in.Blob) {
			return m.name, true
		}
	}
	return "", false
}

func ownerFromPatterns(in OwnerInput) (string, bool) {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(in.Blob); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// sharedWords counts distinct lower-cased whitespace-separated words common to a and b.
func sharedWords(a, b string) int {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(a)) {
		words[w] = struct{}{}
	}
	n := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if _, ok := words[w]; ok {
			n++
			delete(words, w)
		}
	}
	return n
}

// ParseSpeakerLines extracts the "Name: content" lines of a transcript in
// document order. Names must start with an upper-case letter and contain no
// spaces, except for diarizer labels such as "Speaker 2".
func ParseSpeakerLines(transcript string) []SpeakerLine {
	var lines []SpeakerLine
	for _, raw := range strings.Split(transcript, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := speakerLinePattern.FindStringSubmatch(line); m != nil {
			lines = append(lines, SpeakerLine{Speaker: m[1], Content: m[2]})
		}
	}
	return lines
}

// sentinelOwners mark an owner as deliberately absent.
var sentinelOwners = map[string]bool{
	"unassigned":    true,
	"none":          true,
	"not specified": true,
}

// hasOwner reports whether the item already names a real owner.
func hasOwner(item RawItem) bool {
	owner := strings.TrimSpace(stringField(item, KeyOwner))
	return owner != "" && !sentinelOwners[strings.ToLower(owner)]
}

// ownerContext is the per-transcript state shared by every item.
type ownerContext struct {
	transcript string
	lines      []SpeakerLine
	roster     []string
	matchers   []rosterMatcher
	strategies []OwnerStrategy
}

func newOwnerContext(transcript string, roster []string, strategies []OwnerStrategy) ownerContext {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return ownerContext{
		transcript: transcript,
		lines:      ParseSpeakerLines(transcript),
		roster:     roster,
		matchers:   compileRoster(roster),
		strategies: strategies,
	}
}

// assign returns a copy of item with owner fields set, and the name of the
// strategy that resolved it ("existing" or "" when unresolved).
func (oc ownerContext) assign(item RawItem) (RawItem, string) {
	out := clone(item)
	if hasOwner(item) {
		out[KeyOwnerInferred] = false
		return out, "existing"
	}

	source := strings.TrimSpace(stringField(item, KeySourceText))
	in := OwnerInput{
		SourceText: source,
		Transcript: oc.transcript,
		Blob:       strings.TrimSpace(source + "\n" + oc.transcript),
		Lines:      oc.lines,
		Roster:     oc.roster,
		matchers:   oc.matchers,
	}
	for _, s := range oc.strategies {
		if owner, ok := s.Resolve(in); ok && strings.TrimSpace(owner) != "" {
			out[KeyOwner] = owner
			out[KeyOwnerInferred] = true
			return out, s.Name()
		}
	}

	out[KeyOwner] = Unassigned
	out[KeyOwnerInferred] = false
	return out, ""
}

// AssignOwners returns copies of items with owner and owner_inferred set.
// Items that already name an owner keep it. The rest go through strategies
// (DefaultStrategies when none are given) and fall back to Unassigned.
func AssignOwners(items []RawItem, transcript string, roster []string, strategies ...OwnerStrategy) []RawItem {
	oc := newOwnerContext(transcript, roster, strategies)
	out := make([]RawItem, len(items))
	for i, item := range items {
		out[i], _ = oc.assign(item)
	}
	return out
}
