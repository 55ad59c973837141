package service

import (
	"context"
	"errors"
	"time"

	"videonotes/internal/contextutil"
	"videonotes/internal/storage"
	"videonotes/internal/transcript"
)

// CachedSource serves transcripts from the sqlite cache and falls back to the
// wrapped source, storing what it fetches. Cache failures are logged and never
// fail the fetch.
type CachedSource struct {
	source TranscriptSource
	store  storage.TranscriptStore
	ttl    time.Duration
}

// NewCachedSource creates a CachedSource. A non-positive ttl keeps cached
// transcripts forever.
func NewCachedSource(source TranscriptSource, store storage.TranscriptStore, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		store:  store,
		ttl:    ttl,
	}
}

// FetchTranscript implements TranscriptSource.
func (c *CachedSource) FetchTranscript(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	logger := contextutil.LoggerFromContext(ctx)

	cached, err := c.store.Get(ctx, videoID, c.ttl)
	switch {
	case err == nil:
		logger.DebugContext(ctx, "transcript cache hit", "video_id", videoID, "cues", len(cached.Cues))
		return cached, nil
	case errors.Is(err, storage.ErrNotFound):
		logger.DebugContext(ctx, "transcript cache miss", "video_id", videoID)
	default:
		logger.WarnContext(ctx, "transcript cache read failed", "video_id", videoID, "error", err)
	}

	fetched, err := c.source.FetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, fetched); err != nil {
		logger.WarnContext(ctx, "transcript cache write failed", "video_id", videoID, "error", err)
	}
	return fetched, nil
}
