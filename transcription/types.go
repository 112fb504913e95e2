package transcription

import "github.com/kbukum/minutes/segment"

// Request holds parameters for recognizing one audio file.
type Request struct {
	// AudioPath is the path to the audio file.
	AudioPath string `json:"audio_path"`
	// Language is the expected language (e.g. "en"); empty lets the backend detect it.
	Language string `json:"language,omitempty"`
	// Model overrides the backend's configured model.
	Model string `json:"model,omitempty"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
	MinSpeakers int `json:"min_speakers,omitempty"`
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Word is one recognized word with its timing in seconds.
type Word struct {
	Text        string  `json:"text"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Result is a speech-to-text backend's answer.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration"`
	Words    []Word  `json:"words"`
}

// Output is a recognized, speaker-tagged transcript.
type Output struct {
	segment.Transcript
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration"`
	// Diarized is false when no diarizer ran or it failed; every token is
	// then attributed to the unknown speaker.
	Diarized bool `json:"diarized"`
}
