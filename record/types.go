package record

import (
	"time"

	"github.com/kbukum/minutes/analysis"
	"github.com/kbukum/minutes/segment"
)

// TranscriptRecord is the stored form of a structured transcript.
type TranscriptRecord struct {
	// Key is the storage key the record was read from or written to.
	Key string `json:"-"`

	ID        string    `json:"id"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	segment.Transcript
}

// AnalysisRecord is the stored form of a meeting analysis.
type AnalysisRecord struct {
	Key string `json:"-"`

	ID        string             `json:"id"`
	Source    string             `json:"source,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Metadata  *analysis.Metadata `json:"metadata,omitempty"`
	Analysis  *analysis.Report   `json:"analysis"`
}
