package attribution

import (
	"reflect"
	"testing"

	"github.com/kbukum/minutes/segment"
)

func TestAssignOwners(t *testing.T) {
	tests := []struct {
		name         string
		item         RawItem
		transcript   string
		roster       []string
		wantOwner    string
		wantInferred bool
	}{
		{
			name:         "email in source text wins over roster",
			item:         RawItem{"source_text": "send the deck to alice@example.com"},
			transcript:   "Bob: sounds good",
			roster:       []string{"Bob"},
			wantOwner:    "alice@example.com",
			wantInferred: true,
		},
		{
			name:         "email in transcript",
			item:         RawItem{"source_text": "update the roadmap"},
			transcript:   "Reach me at dana.k@corp.io if needed",
			wantOwner:    "dana.k@corp.io",
			wantInferred: true,
		},
		{
			name:         "speaker line quoting the source text",
			item:         RawItem{"description": "Finish frontend", "source_text": "I'll finish it by Friday.", "confidence": 0.9},
			transcript:   "Mike: where are we on the UI?\nSarah: I'll finish it by Friday.",
			wantOwner:    "Sarah",
			wantInferred: true,
		},
		{
			name:         "speaker line with cue and word overlap",
			item:         RawItem{"source_text": "review the budget numbers"},
			transcript:   "Tom: I will review the budget before Monday",
			wantOwner:    "Tom",
			wantInferred: true,
		},
		{
			name:         "cue with a single shared word is not enough",
			item:         RawItem{"source_text": "budget"},
			transcript:   "Tom: I will look at it",
			wantOwner:    Unassigned,
			wantInferred: false,
		},
		{
			name:         "roster match is whole-word and case-insensitive",
			item:         RawItem{"source_text": "ping PRIYA about the contract"},
			transcript:   "",
			roster:       []string{"Pri", "Priya"},
			wantOwner:    "Priya",
			wantInferred: true,
		},
		{
			name:         "roster order decides between several mentions",
			item:         RawItem{"source_text": "Lee and Ana should sync"},
			roster:       []string{"Ana", "Lee"},
			wantOwner:    "Ana",
			wantInferred: true,
		},
		{
			name:         "roster name with accented final letter",
			item:         RawItem{"source_text": "review budget"},
			transcript:   "we think José should review the budget",
			roster:       []string{"José"},
			wantOwner:    "José",
			wantInferred: true,
		},
		{
			name:         "roster name with diaeresis",
			item:         RawItem{"source_text": "review budget"},
			transcript:   "we think Zoë should review the budget",
			roster:       []string{"Zoë"},
			wantOwner:    "Zoë",
			wantInferred: true,
		},
		{
			name:         "roster name with non-ASCII first letter",
			item:         RawItem{"source_text": "review budget"},
			transcript:   "we think øyvind should review the budget",
			roster:       []string{"Øyvind"},
			wantOwner:    "Øyvind",
			wantInferred: true,
		},
		{
			name:         "roster name inside a longer accented word does not match",
			item:         RawItem{"source_text": "the Joséphine account"},
			roster:       []string{"José"},
			wantOwner:    Unassigned,
			wantInferred: false,
		},
		{
			name:         "non-ASCII email",
			item:         RawItem{"source_text": "send the notes to josé@example.com"},
			wantOwner:    "josé@example.com",
			wantInferred: true,
		},
		{
			name:         "non-ASCII name will pattern",
			item:         RawItem{"source_text": "then Øyvind will book the room"},
			wantOwner:    "Øyvind",
			wantInferred: true,
		},
		{
			name:         "diarizer speaker label",
			item:         RawItem{"source_text": "I'll send the invoice."},
			transcript:   "Speaker 1: any blockers?\nSpeaker 2: I'll send the invoice.",
			wantOwner:    "Speaker 2",
			wantInferred: true,
		},
		{
			name:         "unknown speaker line is not an owner",
			item:         RawItem{"source_text": "I'll finish it by Friday."},
			transcript:   "Unknown: I'll finish it by Friday.",
			wantOwner:    Unassigned,
			wantInferred: false,
		},
		{
			name:         "name will pattern",
			item:         RawItem{"source_text": "Jordan will draft the memo"},
			wantOwner:    "Jordan",
			wantInferred: true,
		},
		{
			name:         "two-word name pattern",
			item:         RawItem{"source_text": "Mary Ellen is going to call the vendor"},
			wantOwner:    "Mary Ellen",
			wantInferred: true,
		},
		{
			name:         "can name pattern",
			item:         RawItem{"source_text": "can Omar send the notes"},
			wantOwner:    "Omar",
			wantInferred: true,
		},
		{
			name:         "assigned to pattern",
			item:         RawItem{"source_text": "this was assigned to Kim"},
			wantOwner:    "Kim",
			wantInferred: true,
		},
		{
			name:         "existing owner kept",
			item:         RawItem{"owner": "Raj", "source_text": "contact bob@example.com"},
			wantOwner:    "Raj",
			wantInferred: false,
		},
		{
			name:         "sentinel owner is replaced",
			item:         RawItem{"owner": "Not Specified", "source_text": "Jordan will draft the memo"},
			wantOwner:    "Jordan",
			wantInferred: true,
		},
		{
			name:         "nothing matches",
			item:         RawItem{"owner": "none", "source_text": "the report needs work"},
			transcript:   "we talked about the report",
			wantOwner:    Unassigned,
			wantInferred: false,
		},
		{
			name:         "missing source text and empty transcript",
			item:         RawItem{},
			wantOwner:    Unassigned,
			wantInferred: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AssignOwners([]RawItem{tc.item}, tc.transcript, tc.roster)
			if len(got) != 1 {
				t.Fatalf("expected 1 item, got %d", len(got))
			}
			if got[0][KeyOwner] != tc.wantOwner {
				t.Errorf("owner = %v, want %q", got[0][KeyOwner], tc.wantOwner)
			}
			if got[0][KeyOwnerInferred] != tc.wantInferred {
				t.Errorf("owner_inferred = %v, want %v", got[0][KeyOwnerInferred], tc.wantInferred)
			}
		})
	}
}

func TestAssignOwners_DoesNotMutateInput(t *testing.T) {
	item := RawItem{"source_text": "Jordan will draft the memo"}
	roster := []string{"Jordan"}
	before := RawItem{"source_text": "Jordan will draft the memo"}

	out := AssignOwners([]RawItem{item}, "", roster)
	if !reflect.DeepEqual(item, before) {
		t.Errorf("input item was modified: %v", item)
	}
	if roster[0] != "Jordan" {
		t.Error("roster was modified")
	}
	out[0]["owner"] = "changed"
	if _, ok := item["owner"]; ok {
		t.Error("output shares storage with input")
	}
}

func TestAssignOwners_CustomStrategies(t *testing.T) {
	always := NewStrategy("fixed", func(OwnerInput) (string, bool) { return "Ops", true })
	blank := NewStrategy("blank", func(OwnerInput) (string, bool) { return " ", true })

	got := AssignOwners([]RawItem{{"source_text": "x@y.z"}}, "", nil, blank, always)
	if got[0][KeyOwner] != "Ops" {
		t.Errorf("owner = %v, want Ops (blank results are skipped)", got[0][KeyOwner])
	}
}

func TestDefaultStrategiesOrder(t *testing.T) {
	var names []string
	for _, s := range DefaultStrategies() {
		names = append(names, s.Name())
	}
	want := []string{"email", "speaker_line", "roster", "pattern"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("strategies = %v, want %v", names, want)
	}
}

func TestParseSpeakerLines(t *testing.T) {
	transcript := "  Sarah: I'll take it  \n\nSpeaker 1: from the diarizer\nnotes without speaker\nMike-2 : fine\nsam: lower case\nÅsa: ok\n"
	got := ParseSpeakerLines(transcript)
	want := []SpeakerLine{
		{Speaker: "Sarah", Content: "I'll take it"},
		{Speaker: "Speaker 1", Content: "from the diarizer"},
		{Speaker: "Mike-2", Content: "fine"},
		{Speaker: "Åsa", Content: "ok"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseSpeakerLines = %+v, want %+v", got, want)
	}
}

func TestAssignOwners_FormattedTurns(t *testing.T) {
	tok := func(text string, start float64, speaker *string) segment.Token {
		return segment.Token{Text: text, StartTime: start, EndTime: start + 0.4, SpeakerTag: speaker, Confidence: 0.9}
	}
	words := func(start float64, speaker *string, texts ...string) []segment.Token {
		out := make([]segment.Token, len(texts))
		for i, w := range texts {
			out[i] = tok(w, start+float64(i)*0.5, speaker)
		}
		return out
	}

	tests := []struct {
		name         string
		tokens       []segment.Token
		wantOwner    string
		wantInferred bool
	}{
		{
			name: "diarized speaker",
			tokens: append(
				words(0, segment.Tag("Speaker 1"), "any", "updates?"),
				words(2, segment.Tag("Speaker 2"), "I'll", "finish", "it", "by", "Friday.")...),
			wantOwner:    "Speaker 2",
			wantInferred: true,
		},
		{
			name:         "untagged tokens",
			tokens:       words(0, nil, "I'll", "finish", "it", "by", "Friday."),
			wantOwner:    Unassigned,
			wantInferred: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transcript := segment.FormatTranscript(segment.BuildTurns(tc.tokens))
			got := AssignOwners([]RawItem{{"source_text": "I'll finish it by Friday."}}, transcript, nil)
			if got[0][KeyOwner] != tc.wantOwner {
				t.Errorf("owner = %v, want %q (transcript %q)", got[0][KeyOwner], tc.wantOwner, transcript)
			}
			if got[0][KeyOwnerInferred] != tc.wantInferred {
				t.Errorf("owner_inferred = %v, want %v", got[0][KeyOwnerInferred], tc.wantInferred)
			}
		})
	}
}

func TestOwnerFromRoster_CompilesWithoutContext(t *testing.T) {
	owner, ok := RosterStrategy.Resolve(OwnerInput{Blob: "ask zoë first", Roster: []string{" ", "Zoë"}})
	if !ok || owner != "Zoë" {
		t.Errorf("Resolve = %q, %v; want Zoë, true", owner, ok)
	}
	if m := compileRoster([]string{"", "  Ana "}); len(m) != 1 || m[0].name != "Ana" {
		t.Errorf("compileRoster = %+v, want one matcher for Ana", m)
	}
}

func TestSharedWords(t *testing.T) {
	if n := sharedWords("Review the Budget", "i will review the budget the end"); n != 3 {
		t.Errorf("sharedWords = %d, want 3", n)
	}
	if n := sharedWords("", "anything"); n != 0 {
		t.Errorf("sharedWords with empty = %d", n)
	}
}
