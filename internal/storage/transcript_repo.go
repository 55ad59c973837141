package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"videonotes/internal/transcript"
)

// TranscriptStore caches fetched transcripts by video ID.
type TranscriptStore interface {
	// Get returns a cached transcript fetched within maxAge. A non-positive
	// maxAge accepts any age. Returns ErrNotFound when missing or stale.
	Get(ctx context.Context, videoID string, maxAge time.Duration) (*transcript.Transcript, error)
	// Put stores or replaces the cached transcript for t.VideoID.
	Put(ctx context.Context, t *transcript.Transcript) error
}

// TranscriptRepo provides methods for the transcript cache.
// It implements the TranscriptStore interface.
type TranscriptRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTranscriptRepo creates a new TranscriptRepo.
func NewTranscriptRepo(db *sql.DB) *TranscriptRepo {
	return &TranscriptRepo{db: db, now: time.Now}
}

// Get returns a cached transcript fetched within maxAge.
func (r *TranscriptRepo) Get(ctx context.Context, videoID string, maxAge time.Duration) (*transcript.Transcript, error) {
	var (
		t         transcript.Transcript
		duration  int64
		cuesJSON  string
		fetchedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT video_id, title, author, language, duration_seconds, cues_json, fetched_at
		 FROM transcripts WHERE video_id = ?`,
		videoID,
	).Scan(&t.VideoID, &t.Title, &t.Author, &t.Language, &duration, &cuesJSON, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}

	fetched, err := time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at timestamp: %w", err)
	}
	if maxAge > 0 && r.now().Sub(fetched) > maxAge {
		return nil, ErrNotFound
	}

	if err := json.Unmarshal([]byte(cuesJSON), &t.Cues); err != nil {
		return nil, fmt.Errorf("failed to decode cues: %w", err)
	}
	t.Duration = time.Duration(duration) * time.Second
	return &t, nil
}

// Put stores or replaces the cached transcript for t.VideoID.
func (r *TranscriptRepo) Put(ctx context.Context, t *transcript.Transcript) error {
	cues, err := json.Marshal(t.Cues)
	if err != nil {
		return fmt.Errorf("failed to encode cues: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, title, author, language, duration_seconds, cues_json, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (video_id) DO UPDATE SET
		 title = excluded.title, author = excluded.author, language = excluded.language,
		 duration_seconds = excluded.duration_seconds, cues_json = excluded.cues_json,
		 fetched_at = excluded.fetched_at`,
		t.VideoID, t.Title, t.Author, t.Language, int64(t.Duration/time.Second), string(cues),
		r.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transcript: %w", err)
	}
	return nil
}
