// Package segment groups word-level speech recognition output into speaker
// turns and derives per-speaker statistics.
//
// A Turn is a maximal run of consecutive tokens sharing one speaker tag.
// Tokens without a tag belong to the speaker "Unknown". All functions are
// pure: inputs are never modified and every call recomputes from scratch.
//
//	turns := segment.BuildTurns(tokens)
//	stats := segment.ExtractSpeakerStats(turns)
package segment
