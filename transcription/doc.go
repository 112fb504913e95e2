// Package transcription turns an audio file into diarized tokens: a
// speech-to-text backend supplies timed words, an optional diarization
// backend supplies speaker segments, and Align tags every word with the
// speaker whose segment covers it. The result feeds segment.NewTranscript.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - diarization/pyannote: pyannote HTTP sidecar
//
// # Usage
//
//	svc, err := transcription.NewService(whisper.NewProvider(cfg.Whisper),
//	    transcription.WithDiarizer(pyannote.NewProvider(cfg.Pyannote)))
//	out, err := svc.Recognize(ctx, transcription.Request{AudioPath: "standup.wav"})
package transcription
