package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"videonotes/internal/transcript"
)

func TestTranscriptRepo_PutAndGet(t *testing.T) {
	repo := NewTranscriptRepo(newTestDB(t))
	ctx := context.Background()

	want := &transcript.Transcript{
		VideoID:  "dQw4w9WgXcQ",
		Title:    "Sorting",
		Author:   "CS Channel",
		Language: "en",
		Duration: 612 * time.Second,
		Cues: []transcript.Cue{
			{Start: 0, Text: "intro to sorting"},
			{Start: 5.5, Text: "bubble sort basics"},
		},
	}
	if err := repo.Put(ctx, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := repo.Get(ctx, want.VideoID, time.Hour)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestTranscriptRepo_Get_Expired(t *testing.T) {
	repo := NewTranscriptRepo(newTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	if err := repo.Put(ctx, &transcript.Transcript{VideoID: "v", Cues: []transcript.Cue{{Start: 1, Text: "a"}}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := repo.Get(ctx, "v", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() stale error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get(ctx, "v", 0); err != nil {
		t.Errorf("Get() with no max age error = %v", err)
	}
}

func TestTranscriptRepo_Put_Replaces(t *testing.T) {
	repo := NewTranscriptRepo(newTestDB(t))
	ctx := context.Background()

	_ = repo.Put(ctx, &transcript.Transcript{VideoID: "v", Title: "old", Cues: []transcript.Cue{{Start: 1, Text: "a"}}})
	if err := repo.Put(ctx, &transcript.Transcript{VideoID: "v", Title: "new", Cues: []transcript.Cue{{Start: 2, Text: "b"}}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := repo.Get(ctx, "v", 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "new" || len(got.Cues) != 1 || got.Cues[0].Text != "b" {
		t.Errorf("Get() = %+v, want replaced transcript", got)
	}
}

func TestTranscriptRepo_Get_Missing(t *testing.T) {
	repo := NewTranscriptRepo(newTestDB(t))

	if _, err := repo.Get(context.Background(), "missing", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
