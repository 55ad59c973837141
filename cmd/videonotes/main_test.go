package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"videonotes/internal/service"
	"videonotes/internal/service/mocks"
	"videonotes/internal/storage"
	"videonotes/internal/timestamps"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mockOpen(m service.NoteService, closed *bool) openFunc {
	return func(ctx context.Context) (service.NoteService, func() error, error) {
		return m, func() error { *closed = true; return nil }, nil
	}
}

func TestGenerateCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockNoteService(ctrl)
	m.EXPECT().Generate(gomock.Any(), service.GenerateRequest{
		URL:      "https://youtu.be/dQw4w9WgXcQ",
		Title:    "Bread",
		Provider: "gemini",
	}).Return(&service.GenerateResult{
		ID:       "id-1",
		Path:     "Video Notes/Bread.md",
		Provider: "gemini",
		Chunks:   1,
		Outcomes: timestamps.Summary{Linked: 2},
	}, nil)

	var out bytes.Buffer
	var closed bool
	err := newCommand(mockOpen(m, &closed), &out).Run(context.Background(),
		[]string{"videonotes", "generate", "--title", "Bread", "--provider", "gemini", "https://youtu.be/dQw4w9WgXcQ"})

	require.NoError(t, err)
	assert.Equal(t, "Video Notes/Bread.md\n", out.String())
	assert.True(t, closed)
}

func TestGenerateCommand_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		var closed bool
		err := newCommand(mockOpen(nil, &closed), io.Discard).Run(context.Background(), []string{"videonotes", "generate"})
		assert.Error(t, err)
		assert.False(t, closed)
	})

	t.Run("service error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		m := mocks.NewMockNoteService(ctrl)
		m.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, service.ErrNotFound)

		var closed bool
		err := newCommand(mockOpen(m, &closed), io.Discard).Run(context.Background(),
			[]string{"videonotes", "generate", "https://youtu.be/dQw4w9WgXcQ"})
		assert.True(t, errors.Is(err, service.ErrNotFound))
		assert.True(t, closed)
	})
}

func TestListCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockNoteService(ctrl)
	m.EXPECT().List(gomock.Any(), 5).Return([]storage.NoteRecord{
		{
			Title:        "Bread",
			RelPath:      "Video Notes/Bread.md",
			HeadingCount: 4,
			LinkedCount:  3,
			CreatedAt:    time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local),
		},
	}, nil)

	var out bytes.Buffer
	var closed bool
	err := newCommand(mockOpen(m, &closed), &out).Run(context.Background(), []string{"videonotes", "list", "--limit", "5"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "CREATED")
	assert.Contains(t, out.String(), "2026-01-02 03:04")
	assert.Contains(t, out.String(), "3/4")
	assert.Contains(t, out.String(), "Video Notes/Bread.md")
}
