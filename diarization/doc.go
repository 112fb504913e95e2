// Package diarization defines the speaker diarization backend interface.
// A diarizer answers "who spoke when" for an audio file; the transcription
// package aligns its segments with recognized words.
//
// # Backends
//
//   - diarization/pyannote: pyannote HTTP sidecar
package diarization
