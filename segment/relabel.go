package segment

import "strings"

// Relabel renames speakers according to mapping (e.g. "Speaker 1" -> "Alice")
// and returns freshly built turns. Speakers absent from mapping keep their
// label. Adjacent turns whose speakers map to the same name are merged.
func Relabel(turns []Turn, mapping map[string]string) []Turn {
	tokens := Flatten(turns)
	relabeled := make([]Token, len(tokens))
	for i, tok := range tokens {
		if name, ok := lookup(mapping, tok.Speaker()); ok {
			tok.SpeakerTag = Tag(name)
		}
		relabeled[i] = tok
	}
	return BuildTurns(relabeled)
}

func lookup(mapping map[string]string, speaker string) (string, bool) {
	name, ok := mapping[speaker]
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}
