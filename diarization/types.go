package diarization

import (
	"fmt"
	"sort"
)

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the path to the audio file to diarize.
	AudioPath string `json:"audio_path"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Result holds the speaker segments of one audio file.
type Result struct {
	Segments    []Segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
}

// Segment is a time range attributed to one speaker. Start and End are
// seconds from the start of the audio.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Overlap returns how many seconds [start, end] shares with the segment.
func (s Segment) Overlap(start, end float64) float64 {
	lo, hi := max(s.Start, start), min(s.End, end)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Normalize sorts segments by start time and renames backend speaker IDs
// (e.g. "SPEAKER_00") to "Speaker 1", "Speaker 2", ... in order of first
// appearance.
func Normalize(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	labels := make(map[string]string)
	for i := range out {
		label, ok := labels[out[i].Speaker]
		if !ok {
			label = fmt.Sprintf("Speaker %d", len(labels)+1)
			labels[out[i].Speaker] = label
		}
		out[i].Speaker = label
	}
	return out
}
