// Package record persists the JSON output records of a run: the structured
// transcript and the meeting analysis.
//
// Records are written through a storage.Storage, so the same writer works
// against a local output directory or an S3 bucket:
//
//	store, _ := storage.New(ctx, cfg.Record.Storage, log)
//	w := record.NewWriter(store)
//	rec, err := w.WriteTranscript(ctx, "standup", transcript)
//	// rec.Key == "standup_transcript_20240506_090000.json"
//
// A written transcript can be read back and relabelled in place once the
// real speaker names are known:
//
//	rec, err = w.RelabelFile(ctx, rec.Key, map[string]string{"Speaker 1": "Alice"})
package record
