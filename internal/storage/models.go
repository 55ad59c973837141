package storage

import (
	"time"
)

// NoteRecord is one generated video note.
type NoteRecord struct {
	ID           string // UUID
	VideoID      string
	URL          string // Canonical watch URL
	Title        string
	RelPath      string // Relative path from vault root
	Provider     string // LLM backend that produced the summary
	ChunkCount   int
	HeadingCount int
	LinkedCount  int
	CreatedAt    time.Time
}

// HeadingRecord is the timestamp resolution of one heading in a note.
type HeadingRecord struct {
	NoteID     string
	Position   int // Index of the heading within the note
	Level      int
	Text       string
	ChunkID    int
	Outcome    string // linked, no_match, suppressed or malformed
	Offset     *float64
	Confidence float64
}
